package interfaces

import (
	"context"

	"band-trading-bot/internal/store"
	"band-trading-bot/internal/types"
)

type Engine interface {
	// Cycle runs one pass over all configured instruments, isolating
	// per-instrument failures.
	Cycle(ctx context.Context)
	Step(ctx context.Context, inst store.Instrument) (*types.StepResult, error)
}
