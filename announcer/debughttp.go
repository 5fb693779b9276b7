package announcer

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/frtsoysal/4castytwitterbot/state"
)

// DebugServer exposes /healthz, /status and /metrics for operating the bot.
type DebugServer struct {
	srv    *http.Server
	logger *slog.Logger
}

// StartDebugHTTP starts the debug listener on addr. It returns immediately;
// listen errors are logged, not returned.
func StartDebugHTTP(addr string, store *state.Store, logger *slog.Logger) *DebugServer {
	if logger == nil {
		logger = slog.Default()
	}

	r := mux.NewRouter()
	r.HandleFunc("/healthz", func(w http.ResponseWriter, req *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	}).Methods(http.MethodGet)

	r.HandleFunc("/status", func(w http.ResponseWriter, req *http.Request) {
		snap := store.Snapshot()
		out := struct {
			TotalTweetsSent int        `json:"total_tweets_sent"`
			AnnouncedIDs    int        `json:"announced_ids"`
			LastPollTime    *time.Time `json:"last_poll_time"`
		}{
			TotalTweetsSent: snap.TotalTweetsSent,
			AnnouncedIDs:    len(snap.TweetedEventIDs),
			LastPollTime:    snap.LastPollTime,
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(out)
	}).Methods(http.MethodGet)

	r.Handle("/metrics", promhttp.Handler()).Methods(http.MethodGet)

	d := &DebugServer{
		srv: &http.Server{
			Addr:              addr,
			// Access lines go to stderr; stdout carries the JSON log stream.
			Handler:           handlers.RecoveryHandler()(handlers.LoggingHandler(os.Stderr, r)),
			ReadHeaderTimeout: 2 * time.Second,
			ReadTimeout:       5 * time.Second,
			WriteTimeout:      5 * time.Second,
			IdleTimeout:       30 * time.Second,
		},
		logger: logger,
	}

	go func() {
		logger.Info("debug http listening", "addr", addr)
		if err := d.srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Warn("debug http server stopped", "err", err)
		}
	}()
	return d
}

// Stop shuts the listener down, waiting up to a few seconds for in-flight
// requests.
func (d *DebugServer) Stop() {
	if d == nil || d.srv == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := d.srv.Shutdown(ctx); err != nil {
		d.logger.Warn("debug http shutdown", "err", err)
	}
}
