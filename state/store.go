// Package state persists which events have already been announced, so
// restarts never tweet the same event twice.
package state

import (
	"encoding/json"
	"errors"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// MaxAnnouncedIDs bounds the dedup history. Oldest ids are evicted first.
const MaxAnnouncedIDs = 500

// State is the on-disk document.
type State struct {
	TweetedEventIDs []string   `json:"tweeted_event_ids"`
	TotalTweetsSent int        `json:"total_tweets_sent"`
	LastPollTime    *time.Time `json:"last_poll_time"`
}

// Store owns the state file. The poll loop is the only writer; the debug
// HTTP server reads snapshots, hence the mutex.
type Store struct {
	mu     sync.Mutex
	path   string
	logger *slog.Logger
	state  State
	seen   map[string]struct{}
}

// NewStore loads the state file at path. A missing or corrupt file is not an
// error: the store starts fresh and logs what happened.
func NewStore(path string, logger *slog.Logger) *Store {
	if logger == nil {
		logger = slog.Default()
	}
	s := &Store{
		path:   path,
		logger: logger,
		seen:   make(map[string]struct{}),
	}
	s.load()
	return s
}

func (s *Store) load() {
	b, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			s.logger.Info("no state file; starting fresh", "path", s.path)
		} else {
			s.logger.Warn("state file unreadable; starting fresh", "path", s.path, "err", err)
		}
		return
	}

	var loaded State
	if err := json.Unmarshal(b, &loaded); err != nil {
		s.logger.Warn("state file corrupt; starting fresh", "path", s.path, "err", err)
		return
	}

	if len(loaded.TweetedEventIDs) > MaxAnnouncedIDs {
		loaded.TweetedEventIDs = loaded.TweetedEventIDs[len(loaded.TweetedEventIDs)-MaxAnnouncedIDs:]
	}
	s.state = loaded
	for _, id := range loaded.TweetedEventIDs {
		s.seen[id] = struct{}{}
	}
	s.logger.Info("state loaded",
		"path", s.path,
		"announced_ids", len(loaded.TweetedEventIDs),
		"total_tweets_sent", loaded.TotalTweetsSent)
}

// HasAnnounced reports whether id is in the dedup history.
func (s *Store) HasAnnounced(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.seen[id]
	return ok
}

// MarkAnnounced records id in the dedup history and bumps the sent counter.
// The counter counts successful publishes, not unique events, so marking an
// id already in the history still increments it. When the history exceeds
// MaxAnnouncedIDs the oldest entries fall off.
func (s *Store) MarkAnnounced(id string) {
	if id == "" {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.seen[id]; !ok {
		s.state.TweetedEventIDs = append(s.state.TweetedEventIDs, id)
		s.seen[id] = struct{}{}
		for len(s.state.TweetedEventIDs) > MaxAnnouncedIDs {
			oldest := s.state.TweetedEventIDs[0]
			s.state.TweetedEventIDs = s.state.TweetedEventIDs[1:]
			delete(s.seen, oldest)
		}
	}
	s.state.TotalTweetsSent++
}

// SetLastPoll records the completion time of the latest cycle.
func (s *Store) SetLastPoll(t time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	t = t.UTC()
	s.state.LastPollTime = &t
}

// Snapshot returns a copy of the current state for status reporting.
func (s *Store) Snapshot() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := State{
		TweetedEventIDs: append([]string(nil), s.state.TweetedEventIDs...),
		TotalTweetsSent: s.state.TotalTweetsSent,
	}
	if s.state.LastPollTime != nil {
		t := *s.state.LastPollTime
		out.LastPollTime = &t
	}
	return out
}

// Save writes the state file via a temp file and rename, so a crash mid-write
// never leaves a truncated document behind.
func (s *Store) Save() error {
	s.mu.Lock()
	b, err := json.MarshalIndent(s.state, "", "  ")
	s.mu.Unlock()
	if err != nil {
		return err
	}
	b = append(b, '\n')

	if dir := filepath.Dir(s.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o644); err != nil {
		return err
	}
	return os.Rename(tmp, s.path)
}
