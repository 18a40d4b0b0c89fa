package main

import (
	"context"
	"fmt"
	"os"
	"strconv"
	"time"

	"band-trading-bot/internal/api"
	"band-trading-bot/internal/engine"
	"band-trading-bot/internal/engine/engineobs"
	"band-trading-bot/internal/exchange/exchangeobs"
	"band-trading-bot/internal/exchange/mexc"
	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/logger"
	"band-trading-bot/internal/notify"
	"band-trading-bot/internal/siglog"
	"band-trading-bot/internal/store"
	"band-trading-bot/internal/trace"

	"github.com/joho/godotenv"
)

// initializeSystem initializes the logger and tracer
func initializeSystem() error {
	// Load environment variables
	_ = godotenv.Load()

	// Initialize logger
	if err := logger.Init(); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	// Initialize tracer
	if err := trace.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize tracer: %v\n", err)
	}

	return nil
}

// loadConfig loads and returns the configuration
func loadConfig(ctx context.Context) (*store.Config, error) {
	cfg, err := store.LoadConfig("config.yaml")
	if err != nil {
		logger.ErrorWithErr(ctx, "Failed to load config", err)
		return nil, err
	}
	return cfg, nil
}

// compressOldLogs compresses old signal log files if retention is configured
func compressOldLogs(ctx context.Context) {
	v := os.Getenv("SIGNAL_LOG_RETENTION_DAYS")
	if v == "" {
		return
	}
	n, err := parseRetentionDays(v)
	if err != nil {
		logger.Warn(ctx, "Ignoring invalid SIGNAL_LOG_RETENTION_DAYS", "value", v, "error", err)
		return
	}
	if err := siglog.CompressOlder(n); err != nil {
		logger.Warn(ctx, "Failed to compress old signal logs", "error", err)
	}
}

func parseRetentionDays(v string) (int, error) {
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, err
	}
	if n < 0 {
		return 0, fmt.Errorf("retention days cannot be negative, got %d", n)
	}
	return n, nil
}

// initializeExchange builds the MEXC client with observability
func initializeExchange(ctx context.Context, cfg *store.Config) (*mexc.Client, interfaces.Exchange, error) {
	client, err := mexc.NewClient(mexc.Params{
		Mode:      cfg.Mode,
		APIKey:    os.Getenv("MEXC_API_KEY"),
		APISecret: os.Getenv("MEXC_API_SECRET"),
		Retry:     retryFromConfig(cfg),
	})
	if err != nil {
		return nil, nil, err
	}

	if cfg.Mode == "DRY_RUN" {
		logger.Warn(ctx, "Running in DRY_RUN mode - orders will be simulated")
	} else {
		logger.Info(ctx, "Running in LIVE mode against MEXC")
	}

	// The same client serves candles directly and orders through the
	// observability middleware.
	return client, exchangeobs.Wrap(client), nil
}

func retryFromConfig(cfg *store.Config) *api.RetryConfig {
	return &api.RetryConfig{
		MaxAttempts: cfg.Retry.MaxAttempts,
		InitialWait: time.Duration(cfg.Retry.InitialWaitMs) * time.Millisecond,
		MaxWait:     time.Duration(cfg.Retry.MaxWaitMs) * time.Millisecond,
	}
}

// initializeNotifier returns the Telegram notifier when configured,
// otherwise a no-op
func initializeNotifier(ctx context.Context) interfaces.Notifier {
	token := os.Getenv("TELEGRAM_BOT_TOKEN")
	chatID := os.Getenv("TELEGRAM_CHAT_ID")
	if token == "" || chatID == "" {
		logger.Warn(ctx, "Telegram credentials not set - notifications disabled")
		return notify.NewNoop()
	}
	return notify.NewTelegram(token, chatID)
}

// initializeEngine initializes and returns the engine with observability
func initializeEngine(cfg *store.Config, md interfaces.MarketData, ex interfaces.Exchange, n interfaces.Notifier) interfaces.Engine {
	eng := engine.New(cfg, md, ex, n)
	return engineobs.Wrap(eng)
}
