package engineobs

import (
	"context"
	"time"

	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/logger"
	"band-trading-bot/internal/store"
	"band-trading-bot/internal/trace"
	"band-trading-bot/internal/types"
)

type observableEngine struct {
	engine interfaces.Engine
}

var _ interfaces.Engine = (*observableEngine)(nil)

func Wrap(eng interfaces.Engine) interfaces.Engine {
	return &observableEngine{
		engine: eng,
	}
}

func (oe *observableEngine) Cycle(ctx context.Context) {
	ctx, span := trace.StartSpan(ctx, "engine.Cycle")
	defer span.End()

	start := time.Now()
	oe.engine.Cycle(ctx)

	logger.DebugSkip(ctx, 1, "Poll cycle completed",
		"duration_ms", time.Since(start).Milliseconds(),
	)
}

func (oe *observableEngine) Step(ctx context.Context, inst store.Instrument) (*types.StepResult, error) {
	ctx, span := trace.StartSpan(ctx, "engine.Step")
	defer span.End()

	start := time.Now()

	logger.DebugSkip(ctx, 1, "Starting instrument step",
		"instrument", inst.Symbol,
		"strategy", inst.Strategy,
	)

	result, err := oe.engine.Step(ctx, inst)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Instrument step failed", err,
			"instrument", inst.Symbol,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return nil, err
	}

	logger.InfoSkip(ctx, 1, "Instrument step completed",
		"instrument", inst.Symbol,
		"price", result.Price,
		"alert", result.Alert != nil,
		"entry", result.Entry != nil,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return result, nil
}
