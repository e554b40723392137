package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"MissionSentinel/internal/cache"
	"MissionSentinel/internal/config"
	"MissionSentinel/internal/feed"
	"MissionSentinel/internal/notifier"
	"MissionSentinel/internal/recorder"
	"MissionSentinel/internal/scheduler"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] MissionSentinel starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Init feed fetcher
	fetcher := feed.NewDoubleXPFetcher(cfg.Feed.BaseURL, cfg.Proxy)
	log.Printf("[INFO] feed source: %s (%s)", fetcher.Name(), cfg.Feed.BaseURL)

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Init caches
	missions := cache.NewMissionCache(fetcher, rec)
	deepDives := cache.NewDeepDiveCache(fetcher, rec)

	// Init Telegram notifier
	tn := notifier.NewTelegramNotifier(cfg.Telegram.BotToken, cfg.Telegram.ChatID, cfg.Proxy)

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init scheduler
	sched := scheduler.NewScheduler(ctx, missions, deepDives, tn)
	if err := sched.RegisterAll(cfg.Schedule.MissionsCron, cfg.Schedule.DeepDiveCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	sched.Start()
	defer sched.Stop()

	// Start Telegram polling
	go tn.StartPolling(ctx, sched.HandleCommand)
	log.Println("[INFO] Telegram polling started")

	// Optional: warm the caches on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, refreshing caches now")
		go sched.RunRefreshNow()
	}

	log.Println("[INFO] MissionSentinel is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	log.Println("[INFO] MissionSentinel stopped")
}
