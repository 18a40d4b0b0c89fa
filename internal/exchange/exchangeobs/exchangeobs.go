package exchangeobs

import (
	"context"
	"time"

	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/logger"
	"band-trading-bot/internal/trace"
	"band-trading-bot/internal/types"
)

type observableExchange struct {
	ex interfaces.Exchange
}

var _ interfaces.Exchange = (*observableExchange)(nil)

func Wrap(ex interfaces.Exchange) interfaces.Exchange {
	return &observableExchange{
		ex: ex,
	}
}

func (oe *observableExchange) HasOpenPosition(ctx context.Context, contract string) (bool, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.HasOpenPosition")
	defer span.End()

	open, err := oe.ex.HasOpenPosition(ctx, contract)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Open position query failed", err,
			"contract", contract,
		)
		return false, err
	}

	logger.DebugSkip(ctx, 1, "Open position query completed",
		"contract", contract,
		"open", open,
	)
	return open, nil
}

func (oe *observableExchange) SubmitMarketOrder(ctx context.Context, contract string, side types.Side, qty float64) (float64, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.SubmitMarketOrder")
	defer span.End()

	start := time.Now()
	fill, err := oe.ex.SubmitMarketOrder(ctx, contract, side, qty)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Market order failed", err,
			"contract", contract,
			"side", side,
			"qty", qty,
			"duration_ms", time.Since(start).Milliseconds(),
		)
		return 0, err
	}

	logger.InfoSkip(ctx, 1, "Market order submitted",
		"contract", contract,
		"side", side,
		"qty", qty,
		"fill_price", fill,
		"duration_ms", time.Since(start).Milliseconds(),
	)
	return fill, nil
}

func (oe *observableExchange) SubmitStopLoss(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	ctx, span := trace.StartSpan(ctx, "exchange.SubmitStopLoss")
	defer span.End()

	if err := oe.ex.SubmitStopLoss(ctx, contract, side, trigger, qty); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Stop-loss order failed", err,
			"contract", contract,
			"trigger", trigger,
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Stop-loss order submitted",
		"contract", contract,
		"side", side,
		"trigger", trigger,
	)
	return nil
}

func (oe *observableExchange) SubmitTakeProfit(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	ctx, span := trace.StartSpan(ctx, "exchange.SubmitTakeProfit")
	defer span.End()

	if err := oe.ex.SubmitTakeProfit(ctx, contract, side, trigger, qty); err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Take-profit order failed", err,
			"contract", contract,
			"trigger", trigger,
		)
		return err
	}

	logger.InfoSkip(ctx, 1, "Take-profit order submitted",
		"contract", contract,
		"side", side,
		"trigger", trigger,
	)
	return nil
}

func (oe *observableExchange) Ping(ctx context.Context) (time.Duration, error) {
	ctx, span := trace.StartSpan(ctx, "exchange.Ping")
	defer span.End()

	latency, err := oe.ex.Ping(ctx)
	if err != nil {
		logger.ErrorWithErrSkip(ctx, 1, "Connectivity probe failed", err)
		return 0, err
	}

	logger.DebugSkip(ctx, 1, "Connectivity probe completed",
		"latency_ms", latency.Milliseconds(),
	)
	return latency, nil
}
