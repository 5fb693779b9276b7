package announcer

import (
	"strings"
	"time"

	"github.com/frtsoysal/4castytwitterbot/gamma"
)

// DefaultSportsSeries lists the series slugs treated as sports content.
func DefaultSportsSeries() []string {
	return []string{
		"nba", "nfl", "nhl", "mlb", "mls", "wnba",
		"nba-2026", "nfl-2025", "nhl-2026",
		"cfb", "cfb-2025",
		"premier-league", "premier-league-2025",
		"bundesliga", "bundesliga-2025",
		"la-liga", "serie-a", "ligue-1",
		"champions-league", "europa-league", "ucl-2025", "uel-2025",
	}
}

var sportsSlugKeywords = []string{"nba", "nfl", "nhl", "mlb", "soccer", "football", "basketball"}

var sportsTitlePatterns = []string{" vs ", " vs. ", "o/u ", "spread:", "moneyline", "over/under"}

var spamTitlePhrases = []string{"up or down"}

// filterCtx carries the per-cycle inputs the predicates need.
type filterCtx struct {
	now          time.Time
	minVolume    float64
	sportsSeries map[string]struct{}
	announced    func(id string) bool
}

func newFilterCtx(now time.Time, minVolume float64, sportsSeries []string, announced func(string) bool) filterCtx {
	set := make(map[string]struct{}, len(sportsSeries))
	for _, s := range sportsSeries {
		set[strings.ToLower(strings.TrimSpace(s))] = struct{}{}
	}
	if announced == nil {
		announced = func(string) bool { return false }
	}
	return filterCtx{now: now, minVolume: minVolume, sportsSeries: set, announced: announced}
}

// isSportsEvent matches each series tag against the denylist and the league
// keywords, then falls back to sportsbook phrasing in the title.
func (f filterCtx) isSportsEvent(ev gamma.Event) bool {
	for _, s := range ev.Series {
		slug := strings.ToLower(s.Slug)
		if _, ok := f.sportsSeries[slug]; ok {
			return true
		}
		for _, kw := range sportsSlugKeywords {
			if strings.Contains(slug, kw) {
				return true
			}
		}
	}
	title := strings.ToLower(ev.Title)
	for _, pat := range sportsTitlePatterns {
		if strings.Contains(title, pat) {
			return true
		}
	}
	return false
}

func isSpamEvent(ev gamma.Event) bool {
	title := strings.ToLower(ev.Title)
	for _, phrase := range spamTitlePhrases {
		if strings.Contains(title, phrase) {
			return true
		}
	}
	return false
}

// isExpired reports whether the event's end date is already in the past.
// Events with no parseable end date are kept.
func (f filterCtx) isExpired(ev gamma.Event) bool {
	return !ev.EndDate.IsZero() && ev.EndDate.Time().Before(f.now)
}

// skipReason classifies why an event was dropped; the empty string means the
// event passed. Checks run cheapest-first and short-circuit.
func (f filterCtx) skipReason(ev gamma.Event) string {
	switch {
	case f.announced(ev.ID.String()):
		return "dedup"
	case f.isSportsEvent(ev):
		return "sports"
	case isSpamEvent(ev):
		return "spam"
	case f.isExpired(ev):
		return "expired"
	case ev.Volume.Value() < f.minVolume:
		return "volume"
	default:
		return ""
	}
}

// filterEvents returns the events worth announcing and counts each skip
// reason in the metrics.
func (f filterCtx) filterEvents(events []gamma.Event) []gamma.Event {
	var kept []gamma.Event
	for _, ev := range events {
		if reason := f.skipReason(ev); reason != "" {
			eventsSkippedTotal.WithLabelValues(reason).Inc()
			continue
		}
		kept = append(kept, ev)
	}
	return kept
}
