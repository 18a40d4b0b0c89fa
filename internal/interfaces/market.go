package interfaces

import (
	"context"

	"band-trading-bot/internal/types"
)

// MarketData serves candle history. Implementations must never return
// an empty-but-valid series; empty or malformed payloads are errors.
type MarketData interface {
	Candles(ctx context.Context, symbol, interval string, limit int) ([]types.Candle, error)
}
