package gamma

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func newTestClient(t *testing.T, srvURL string, now time.Time) *Client {
	t.Helper()
	c, err := NewClient(srvURL)
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	c.now = func() time.Time { return now }
	return c
}

func TestRecentEvents_CutsAtLookbackWindow(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/events" {
			http.NotFound(w, r)
			return
		}
		q := r.URL.Query()
		if q.Get("order") != "createdAt" || q.Get("ascending") != "false" || q.Get("closed") != "false" {
			http.Error(w, "bad query", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		// Descending createdAt: 2m, 5m, 20m old. The 20m one is past the
		// 10m cutoff, so the scan must stop there.
		_, _ = w.Write([]byte(`[
  {"id": "1", "title": "Fresh", "slug": "fresh", "createdAt": "2026-03-01T11:58:00Z", "volume": 100},
  {"id": "2", "title": "Recent", "slug": "recent", "createdAt": "2026-03-01T11:55:00Z", "volume": "250.5"},
  {"id": "3", "title": "Stale", "slug": "stale", "createdAt": "2026-03-01T11:40:00Z", "volume": 9999}
]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, now)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	events, err := c.RecentEvents(ctx, 10*time.Minute)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("expected 2 recent events, got %d", len(events))
	}
	if events[0].ID.String() != "1" || events[1].ID.String() != "2" {
		t.Fatalf("unexpected event ids: %s, %s", events[0].ID, events[1].ID)
	}
	if got := events[1].Volume.Value(); got != 250.5 {
		t.Fatalf("string-typed volume not decoded, got %v", got)
	}
}

func TestRecentEvents_ExactCutoffKept(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"id": 42, "title": "Edge", "slug": "edge", "createdAt": "2026-03-01T11:50:00Z"}
]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, now)

	events, err := c.RecentEvents(context.Background(), 10*time.Minute)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("event created exactly at cutoff should be kept, got %d events", len(events))
	}
	if events[0].ID.String() != "42" {
		t.Fatalf("numeric id not decoded, got %q", events[0].ID)
	}
}

func TestRecentEvents_MissingCreatedAtStopsScan(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[
  {"id": "1", "title": "Fresh", "createdAt": "2026-03-01T11:59:00Z"},
  {"id": "2", "title": "No timestamp"},
  {"id": "3", "title": "Also fresh", "createdAt": "2026-03-01T11:58:00Z"}
]`))
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, now)

	events, err := c.RecentEvents(context.Background(), 10*time.Minute)
	if err != nil {
		t.Fatalf("RecentEvents: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("scan should stop at the event without createdAt, got %d events", len(events))
	}
}

func TestRecentEvents_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream down", http.StatusBadGateway)
	}))
	defer srv.Close()

	c := newTestClient(t, srv.URL, time.Now())

	if _, err := c.RecentEvents(context.Background(), 10*time.Minute); err == nil {
		t.Fatal("expected error on non-200 status")
	}
}

func TestNewClient_RejectsBadScheme(t *testing.T) {
	if _, err := NewClient("ftp://example.com"); err == nil {
		t.Fatal("expected error for non-http(s) scheme")
	}
}
