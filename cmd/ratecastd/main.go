package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"RateCast/internal/config"
	"RateCast/internal/feed"
	"RateCast/internal/logger"
	"RateCast/internal/model"
	"RateCast/internal/pipeline"
	"RateCast/internal/runmark"
	"RateCast/internal/scheduler"
	"RateCast/internal/series"
	"RateCast/internal/store"
	"RateCast/internal/trainer"
)

func main() {
	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("RATECAST_CONFIG"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		errLog := logger.New("error", false)
		errLog.Fatal().Err(err).Msg("load config")
	}

	log := logger.New(cfg.Log.Level, cfg.Log.Pretty)
	log.Info().Msg("RateCast starting...")

	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("config validation")
	}

	// Init feed
	f := feed.NewNBPFeed(cfg.Feed.BaseURL, cfg.Feed.Timeout)
	log.Info().Str("feed", f.Name()).Msg("rate feed initialized")

	// Init store
	st, err := store.NewSQLiteStore(cfg.Database.SQLitePath)
	if err != nil {
		log.Fatal().Err(err).Msg("init sqlite store")
	}
	defer st.Close()
	log.Info().Str("path", cfg.Database.SQLitePath).Msg("sqlite store opened")

	// Init run marker
	marker, err := runmark.NewManager(cfg.State.MarkerFile)
	if err != nil {
		log.Fatal().Err(err).Msg("init run marker")
	}

	// Init pipeline
	adapter := series.NewAdapter(f, st, cfg.Pipeline.MinHistory, cfg.Pipeline.MaxGapFill, log)
	tr := trainer.New(model.FeatureSpec{
		Lags:           cfg.Model.Lags,
		SeasonalLag:    cfg.Model.SeasonalLag,
		RollingWindows: cfg.Model.RollingWindows,
	}, cfg.Pipeline.SplitRatio)
	p := pipeline.New(pipeline.Config{
		Currencies:      cfg.Currencies,
		ForecastHorizon: cfg.Pipeline.ForecastHorizon,
		Parallelism:     cfg.Pipeline.Parallelism,
		RunTimeout:      cfg.Pipeline.RunTimeout,
		MinMovement:     cfg.Pipeline.MinMovement,
	}, f, adapter, tr, st, marker, log)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, p, log)
	if err := sched.Register(cfg.Schedule.DailyCron); err != nil {
		log.Fatal().Err(err).Msg("register cron task")
	}
	sched.Start()
	defer sched.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Info().Msg("RUN_ON_START enabled, executing daily run now")
		go sched.RunNow()
	}

	log.Info().Msg("RateCast is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Info().Msg("shutdown signal received, stopping...")
	cancel()
	log.Info().Msg("RateCast stopped")
}
