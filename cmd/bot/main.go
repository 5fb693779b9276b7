package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/frtsoysal/4castytwitterbot/announcer"
	"github.com/frtsoysal/4castytwitterbot/archiver"
	"github.com/frtsoysal/4castytwitterbot/gamma"
	"github.com/frtsoysal/4castytwitterbot/jsonl"
	"github.com/frtsoysal/4castytwitterbot/scheduler"
	"github.com/frtsoysal/4castytwitterbot/state"
	"github.com/frtsoysal/4castytwitterbot/twitter"
)

func main() {
	// Load env
	_ = godotenv.Load()

	var (
		configPath = flag.String("config", "", "path to YAML config file")
		once       = flag.Bool("once", false, "run a single poll cycle and exit")
	)
	flag.Parse()

	// Logger
	logLevel := slog.LevelInfo
	if os.Getenv("DEBUG") == "true" {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)

	cfg, err := announcer.LoadConfig(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}

	store := state.NewStore(cfg.StatePath, logger)

	source, err := gamma.NewClient(cfg.GammaURL)
	if err != nil {
		log.Fatalf("gamma client: %v", err)
	}

	var pub twitter.Publisher
	creds := twitter.CredentialsFromEnv()
	if creds.Complete() {
		client, err := twitter.NewClient(creds, logger)
		if err != nil {
			log.Fatalf("twitter client: %v", err)
		}
		client.SetCooldown(cfg.RateLimitCooldown)
		pub = client
		logger.Info("publishing live to X API")
	} else {
		pub = twitter.NewDryRun(logger)
		logger.Warn("X API credentials incomplete; running in dry-run mode")
	}

	audit := jsonl.NewWriter(cfg.AuditLogPath)
	defer audit.Close()

	a := announcer.New(cfg, source, pub, store, audit, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.DebugAddr != "" {
		debug := announcer.StartDebugHTTP(cfg.DebugAddr, store, logger)
		defer debug.Stop()
	}

	if *once {
		a.RunCycle(ctx)
		if err := store.Save(); err != nil {
			logger.Error("final state save failed", "err", err)
		}
		return
	}

	sched := scheduler.New(logger)
	sched.Every(cfg.PollInterval, "poll", a.RunCycle)

	if cfg.Archive.Bucket != "" && cfg.AuditLogPath == "" {
		logger.Warn("archive bucket set but no audit log path; archiving disabled")
	} else if cfg.Archive.Bucket != "" {
		sink, err := archiver.NewS3Sink(ctx, cfg.Archive.Bucket, cfg.Archive.Region)
		if err != nil {
			log.Fatalf("s3 sink: %v", err)
		}
		runner := &archiver.Runner{
			Sink:    sink,
			LogPath: cfg.AuditLogPath,
			Prefix:  cfg.Archive.Prefix,
			Logger:  logger,
		}
		sched.Every(time.Hour, "archive", runner.Task)
	}

	go func() {
		sig := make(chan os.Signal, 1)
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		s := <-sig
		logger.Info("shutdown signal received", "signal", s.String())
		cancel()
	}()

	sched.Run(ctx)

	if err := store.Save(); err != nil {
		logger.Error("final state save failed", "err", err)
	}
	logger.Info("bot exited")
}
