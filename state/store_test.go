package state

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestStore_SaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")

	s := NewStore(path, discard())
	s.MarkAnnounced("100")
	s.MarkAnnounced("200")
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	s.SetLastPoll(now)
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	reloaded := NewStore(path, discard())
	if !reloaded.HasAnnounced("100") || !reloaded.HasAnnounced("200") {
		t.Error("announced ids lost across reload")
	}
	snap := reloaded.Snapshot()
	if snap.TotalTweetsSent != 2 {
		t.Errorf("TotalTweetsSent = %d, want 2", snap.TotalTweetsSent)
	}
	if snap.LastPollTime == nil || !snap.LastPollTime.Equal(now) {
		t.Errorf("LastPollTime = %v, want %v", snap.LastPollTime, now)
	}
}

func TestStore_FileSchema(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")

	s := NewStore(path, discard())
	s.MarkAnnounced("7")
	if err := s.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	b, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read state file: %v", err)
	}
	var doc map[string]json.RawMessage
	if err := json.Unmarshal(b, &doc); err != nil {
		t.Fatalf("state file not valid JSON: %v", err)
	}
	for _, key := range []string{"tweeted_event_ids", "total_tweets_sent", "last_poll_time"} {
		if _, ok := doc[key]; !ok {
			t.Errorf("state file missing %q key", key)
		}
	}
}

func TestStore_CorruptFileStartsFresh(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, discard())
	if s.HasAnnounced("anything") {
		t.Error("corrupt file should yield an empty store")
	}
	if got := s.Snapshot().TotalTweetsSent; got != 0 {
		t.Errorf("TotalTweetsSent = %d, want 0", got)
	}
	// The store must still be usable and saveable.
	s.MarkAnnounced("1")
	if err := s.Save(); err != nil {
		t.Fatalf("Save after corrupt load: %v", err)
	}
}

func TestStore_HistoryCapEvictsOldest(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "bot_state.json"), discard())

	for i := 0; i < MaxAnnouncedIDs+10; i++ {
		s.MarkAnnounced(fmt.Sprintf("ev-%d", i))
	}

	snap := s.Snapshot()
	if len(snap.TweetedEventIDs) != MaxAnnouncedIDs {
		t.Fatalf("history length = %d, want %d", len(snap.TweetedEventIDs), MaxAnnouncedIDs)
	}
	if s.HasAnnounced("ev-0") {
		t.Error("oldest id should have been evicted")
	}
	if !s.HasAnnounced(fmt.Sprintf("ev-%d", MaxAnnouncedIDs+9)) {
		t.Error("newest id should still be present")
	}
	// The counter tracks sends, not history size.
	if snap.TotalTweetsSent != MaxAnnouncedIDs+10 {
		t.Errorf("TotalTweetsSent = %d, want %d", snap.TotalTweetsSent, MaxAnnouncedIDs+10)
	}
}

func TestStore_DuplicateMarkKeepsSingleEntry(t *testing.T) {
	s := NewStore(filepath.Join(t.TempDir(), "bot_state.json"), discard())

	s.MarkAnnounced("dup")
	s.MarkAnnounced("dup")

	snap := s.Snapshot()
	if len(snap.TweetedEventIDs) != 1 {
		t.Errorf("history length = %d, want 1", len(snap.TweetedEventIDs))
	}
	// Each mark is a publish, so the counter still advances.
	if snap.TotalTweetsSent != 2 {
		t.Errorf("TotalTweetsSent = %d, want 2", snap.TotalTweetsSent)
	}
}

func TestStore_OversizedFileTruncatedOnLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bot_state.json")

	ids := make([]string, MaxAnnouncedIDs+50)
	for i := range ids {
		ids[i] = fmt.Sprintf("ev-%d", i)
	}
	b, _ := json.Marshal(State{TweetedEventIDs: ids, TotalTweetsSent: len(ids)})
	if err := os.WriteFile(path, b, 0o644); err != nil {
		t.Fatal(err)
	}

	s := NewStore(path, discard())
	snap := s.Snapshot()
	if len(snap.TweetedEventIDs) != MaxAnnouncedIDs {
		t.Fatalf("history length = %d, want %d", len(snap.TweetedEventIDs), MaxAnnouncedIDs)
	}
	if s.HasAnnounced("ev-0") {
		t.Error("oldest ids should drop when a too-large file is loaded")
	}
	if !s.HasAnnounced(fmt.Sprintf("ev-%d", MaxAnnouncedIDs+49)) {
		t.Error("newest ids should survive load truncation")
	}
}
