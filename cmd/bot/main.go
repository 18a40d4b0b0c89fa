package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"band-trading-bot/internal/logger"
	"band-trading-bot/internal/summary"
	"band-trading-bot/internal/trace"
	"band-trading-bot/internal/watchdog"
)

func must(err error) {
	if err != nil {
		log.Fatal(err)
	}
}

func main() {
	must(initializeSystem())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	cfg, err := loadConfig(ctx)
	must(err)

	compressOldLogs(ctx)

	notifier := initializeNotifier(ctx)
	client, ex, err := initializeExchange(ctx, cfg)
	must(err)
	eng := initializeEngine(cfg, client, ex, notifier)

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, syscall.SIGINT, syscall.SIGTERM)

	wd := watchdog.New(cfg.WatchdogStall(), cfg.WatchdogInterval(), func(elapsed time.Duration) {
		logger.Error(ctx, "Poll loop stalled", "elapsed", elapsed, "threshold", cfg.WatchdogStall())
		if err := notifier.SendMessage(ctx, fmt.Sprintf("🛑 Watchdog: no completed cycle for %s", elapsed.Round(time.Second))); err != nil {
			logger.Warn(ctx, "Watchdog notification failed", "error", err)
		}
	})
	go wd.Run(ctx)

	tick := time.NewTicker(cfg.PollInterval())
	defer tick.Stop()
	summaryTick := time.NewTicker(60 * time.Second)
	defer summaryTick.Stop()

	logger.Info(ctx, "Bot started",
		"mode", cfg.Mode,
		"instruments", len(cfg.Instruments),
		"poll_seconds", cfg.PollSeconds,
	)
	if err := notifier.SendMessage(ctx, fmt.Sprintf("🤖 Bot started (%s, %d instruments)", cfg.Mode, len(cfg.Instruments))); err != nil {
		logger.Warn(ctx, "Startup notification failed", "error", err)
	}

	for {
		select {
		case <-tick.C:
			eng.Cycle(ctx)
			wd.Beat()
		case <-summaryTick.C:
			if !cfg.Summary.Enabled {
				continue
			}
			if ok, _ := summary.ShouldRunNow(cfg.Summary.After); ok {
				p, err := summary.SummarizeToday()
				if err != nil {
					logger.Warn(ctx, "Daily summary failed", "error", err)
					continue
				}
				if p != "" {
					logger.Info(ctx, "Daily summary written", "path", p)
					if err := notifier.SendDocument(ctx, p, "Daily signal summary"); err != nil {
						logger.Warn(ctx, "Summary delivery failed", "error", err)
					}
				}
			}
		case <-sigc:
			logger.Info(ctx, "Shutting down")
			if err := notifier.SendMessage(ctx, "🛑 Bot shutting down"); err != nil {
				logger.Warn(ctx, "Shutdown notification failed", "error", err)
			}
			shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
			_ = trace.Shutdown(shutdownCtx)
			shutdownCancel()
			return
		case <-ctx.Done():
			return
		}
	}
}
