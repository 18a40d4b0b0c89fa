package interfaces

import (
	"context"
	"time"

	"band-trading-bot/internal/types"
)

// Exchange is the authoritative source of truth for open positions.
type Exchange interface {
	HasOpenPosition(ctx context.Context, contract string) (bool, error)
	// SubmitMarketOrder returns the average fill price. A zero price
	// means the venue did not report one (simulated fills).
	SubmitMarketOrder(ctx context.Context, contract string, side types.Side, qty float64) (float64, error)
	SubmitStopLoss(ctx context.Context, contract string, side types.Side, trigger, qty float64) error
	SubmitTakeProfit(ctx context.Context, contract string, side types.Side, trigger, qty float64) error
	// Ping is a lightweight reachability check returning the measured
	// round-trip latency.
	Ping(ctx context.Context) (time.Duration, error)
}
