// Package announcer implements the poll cycle: fetch recent events, filter,
// pick the highest-volume one and publish a tweet about it.
package announcer

import (
	"context"
	"log/slog"
	"time"

	"github.com/frtsoysal/4castytwitterbot/gamma"
	"github.com/frtsoysal/4castytwitterbot/jsonl"
	"github.com/frtsoysal/4castytwitterbot/state"
	"github.com/frtsoysal/4castytwitterbot/twitter"
)

// MarketSource provides recently created events. *gamma.Client satisfies it.
type MarketSource interface {
	RecentEvents(ctx context.Context, lookback time.Duration) ([]gamma.Event, error)
}

// auditRecord is one line in the JSONL audit log, written after every
// successful publish.
type auditRecord struct {
	TS       time.Time `json:"ts"`
	EventID  string    `json:"event_id"`
	Title    string    `json:"title"`
	Volume   float64   `json:"volume"`
	TweetLen int       `json:"tweet_len"`
	Image    bool      `json:"image"`
}

// Announcer runs one fetch-filter-select-publish cycle at a time.
type Announcer struct {
	cfg    Config
	source MarketSource
	pub    twitter.Publisher
	store  *state.Store
	audit  *jsonl.Writer
	logger *slog.Logger
	now    func() time.Time
}

// New wires the cycle together. audit may carry an empty path, in which case
// no audit log is written.
func New(cfg Config, source MarketSource, pub twitter.Publisher, store *state.Store, audit *jsonl.Writer, logger *slog.Logger) *Announcer {
	if logger == nil {
		logger = slog.Default()
	}
	return &Announcer{
		cfg:    cfg,
		source: source,
		pub:    pub,
		store:  store,
		audit:  audit,
		logger: logger,
		now:    time.Now,
	}
}

// RunCycle performs one poll iteration. Fetch errors degrade to an empty
// event list so one bad cycle never stops the loop; state is saved at the
// end regardless of whether anything was announced.
func (a *Announcer) RunCycle(ctx context.Context) {
	now := a.now().UTC()

	events, err := a.source.RecentEvents(ctx, a.cfg.Lookback)
	if err != nil {
		a.logger.Warn("event fetch failed; continuing with empty batch", "err", err)
		events = nil
	}
	eventsFetchedTotal.Add(float64(len(events)))

	f := newFilterCtx(now, a.cfg.MinVolume, a.cfg.SportsSeries, a.store.HasAnnounced)
	candidates := f.filterEvents(events)
	a.logger.Info("cycle scanned events", "fetched", len(events), "candidates", len(candidates))

	if best, ok := selectBest(candidates); ok {
		a.announce(ctx, best)
	}

	a.store.SetLastPoll(now)
	if err := a.store.Save(); err != nil {
		a.logger.Warn("state save failed", "err", err)
	}

	cyclesTotal.Inc()
	lastCycleTimestamp.Set(float64(now.Unix()))
}

func (a *Announcer) announce(ctx context.Context, ev gamma.Event) {
	text := composeTweet(ev, a.cfg.SiteURL)
	imageURL := ev.ImageURL()

	if err := a.pub.Publish(ctx, text, imageURL); err != nil {
		publishFailuresTotal.Inc()
		a.logger.Warn("publish failed", "event_id", ev.ID.String(), "title", truncateRunes(ev.Title, 60), "err", err)
		return
	}

	a.store.MarkAnnounced(ev.ID.String())
	tweetsSentTotal.Inc()
	a.logger.Info("announced event",
		"event_id", ev.ID.String(),
		"title", truncateRunes(ev.Title, 60),
		"volume", ev.Volume.Value(),
		"tweet_len", len([]rune(text)),
		"image", imageURL != "")

	if err := a.audit.Append(auditRecord{
		TS:       a.now().UTC(),
		EventID:  ev.ID.String(),
		Title:    ev.Title,
		Volume:   ev.Volume.Value(),
		TweetLen: len([]rune(text)),
		Image:    imageURL != "",
	}); err != nil {
		a.logger.Warn("audit log write failed", "err", err)
	}
}
