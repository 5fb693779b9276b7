package announcer

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	cyclesTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_cycles_total",
		Help: "Completed poll cycles.",
	})
	eventsFetchedTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_events_fetched_total",
		Help: "Events returned by the market API within the lookback window.",
	})
	eventsSkippedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "bot_events_skipped_total",
		Help: "Events dropped by the filter, by reason.",
	}, []string{"reason"})
	tweetsSentTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_tweets_sent_total",
		Help: "Announcements successfully published.",
	})
	publishFailuresTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "bot_publish_failures_total",
		Help: "Publish attempts that returned an error.",
	})
	lastCycleTimestamp = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "bot_last_cycle_timestamp_seconds",
		Help: "Unix time of the most recent completed cycle.",
	})
)

func init() {
	prometheus.MustRegister(
		cyclesTotal,
		eventsFetchedTotal,
		eventsSkippedTotal,
		tweetsSentTotal,
		publishFailuresTotal,
		lastCycleTimestamp,
	)
}
