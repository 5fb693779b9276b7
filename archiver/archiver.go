package archiver

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path"
	"strings"
	"time"
)

// Sink is the object-store surface the runner needs. *S3Sink satisfies it.
type Sink interface {
	Exists(ctx context.Context, key string) (bool, error)
	PutGzip(ctx context.Context, key string, fill func(w io.Writer) error) error
	PutMarker(ctx context.Context, key string) error
}

// Runner snapshots the audit log for the previous UTC day. RunOnce is
// idempotent, so it can fire on every tick of an hourly schedule and only
// the first run per day uploads anything.
type Runner struct {
	Sink    Sink
	LogPath string
	Prefix  string
	Logger  *slog.Logger
}

func snapshotKeys(prefix, day string) (key, marker string) {
	dir := fmt.Sprintf("%s/dt=%s", strings.TrimSuffix(prefix, "/"), day)
	return path.Join(dir, "announcements.json.gz"), path.Join(dir, "_SUCCESS")
}

// RunOnce archives the audit log as of the day before now. Missing log file
// and already-archived day are both quiet no-ops.
func (r *Runner) RunOnce(ctx context.Context, now time.Time) error {
	logger := r.Logger
	if logger == nil {
		logger = slog.Default()
	}

	day := now.UTC().AddDate(0, 0, -1).Format("2006-01-02")
	key, marker := snapshotKeys(r.Prefix, day)

	exists, err := r.Sink.Exists(ctx, key)
	if err != nil {
		logger.Warn("archive head check failed; continuing", "key", key, "err", err)
	} else if exists {
		logger.Debug("archive skip: already uploaded", "key", key)
		return nil
	}

	f, err := os.Open(r.LogPath)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Debug("archive skip: no audit log yet", "path", r.LogPath)
			return nil
		}
		return fmt.Errorf("open audit log: %w", err)
	}
	defer f.Close()

	if err := r.Sink.PutGzip(ctx, key, func(w io.Writer) error {
		_, cerr := io.Copy(w, f)
		return cerr
	}); err != nil {
		return fmt.Errorf("archive upload: %w", err)
	}
	if err := r.Sink.PutMarker(ctx, marker); err != nil {
		logger.Warn("archive marker write failed", "key", marker, "err", err)
	}

	logger.Info("archive uploaded", "day", day, "key", key)
	return nil
}

// Task adapts RunOnce to a scheduler task, swallowing errors into logs.
func (r *Runner) Task(ctx context.Context) {
	if err := r.RunOnce(ctx, time.Now()); err != nil {
		logger := r.Logger
		if logger == nil {
			logger = slog.Default()
		}
		logger.Warn("archive run failed", "err", err)
	}
}
