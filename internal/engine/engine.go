package engine

import (
	"context"
	"errors"
	"fmt"
	"time"

	"band-trading-bot/internal/detector"
	"band-trading-bot/internal/faults"
	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/lifecycle"
	"band-trading-bot/internal/logger"
	"band-trading-bot/internal/siglog"
	"band-trading-bot/internal/store"
	"band-trading-bot/internal/types"
)

type engine struct {
	cfg      *store.Config
	md       interfaces.MarketData
	ex       interfaces.Exchange
	notifier interfaces.Notifier
	trades   *lifecycle.Manager

	// Per-instrument detector state, keyed by symbol. Created on first
	// observation, never destroyed while the process runs.
	states map[string]*detector.State

	cooldownUntil time.Time
}

func New(cfg *store.Config, md interfaces.MarketData, ex interfaces.Exchange, n interfaces.Notifier) interfaces.Engine {
	return &engine{
		cfg:      cfg,
		md:       md,
		ex:       ex,
		notifier: n,
		trades:   lifecycle.New(ex, cfg.Stop.LossPct, cfg.Stop.ProfitPct),
		states:   make(map[string]*detector.State),
	}
}

// Cycle runs one pass over all instruments. A failing instrument is
// logged and skipped; it never aborts the cycle for the others.
func (e *engine) Cycle(ctx context.Context) {
	if time.Now().Before(e.cooldownUntil) {
		logger.Debug(ctx, "Cycle skipped during connectivity cooldown", "until", e.cooldownUntil)
		return
	}

	if e.cfg.Probe.Enabled {
		probeCtx, cancel := context.WithTimeout(ctx, e.cfg.ProbeTimeout())
		latency, err := e.ex.Ping(probeCtx)
		cancel()
		if err != nil {
			e.cooldownUntil = time.Now().Add(e.cfg.ProbeCooldown())
			logger.Warn(ctx, "Connectivity probe failed, pausing all instruments",
				"cooldown", e.cfg.ProbeCooldown(), "error", err)
			return
		}
		logger.Debug(ctx, "Connectivity probe ok", "latency", latency)
	}

	for _, inst := range e.cfg.Instruments {
		if ctx.Err() != nil {
			return
		}
		res, err := e.safeStep(ctx, inst)
		if err != nil {
			logger.ErrorWithErr(ctx, "Instrument step failed, skipping this cycle", err,
				"instrument", inst.Symbol, "fault", faults.KindOf(err).String())
			continue
		}
		logger.Debug(ctx, "Instrument step completed",
			"instrument", inst.Symbol, "price", res.Price, "reason", res.Reason)
	}
}

// safeStep keeps a single bad iteration from terminating the process.
func (e *engine) safeStep(ctx context.Context, inst store.Instrument) (res *types.StepResult, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("step panicked: %v", r)
		}
	}()
	return e.Step(ctx, inst)
}

func (e *engine) Step(ctx context.Context, inst store.Instrument) (*types.StepResult, error) {
	candles, err := e.md.Candles(ctx, inst.Symbol, e.cfg.Interval, e.cfg.CandleLimit)
	if err != nil {
		return nil, err
	}
	if len(candles) < 2 {
		return nil, faults.BadData("engine.step", fmt.Errorf("got %d candles, need at least 2", len(candles)))
	}

	// The last candle is still forming; only closed candles feed the
	// indicators.
	candles = candles[:len(candles)-1]
	latest := candles[len(candles)-1]
	price := latest.Close

	res := &types.StepResult{Instrument: inst.Symbol, Price: price, Time: latest.Ts}

	// Reconcile first so a slot freed by the protective orders is
	// usable in this same cycle.
	if freed, rerr := e.trades.Reconcile(ctx, inst.Contract); rerr != nil {
		logger.Warn(ctx, "Reconciliation failed, keeping local trade state",
			"instrument", inst.Symbol, "error", rerr)
	} else if freed {
		logger.Trade(ctx, inst.Symbol, "CLOSED", "", price, 0)
		e.notify(ctx, fmt.Sprintf("🔁 %s trade closed, instrument released", inst.Symbol))
	}

	snap, ok := buildSnapshot(inst, candles)
	if !ok {
		res.Reason = "insufficient history"
		return res, nil
	}

	st := e.states[inst.Symbol]
	if st == nil {
		st = &detector.State{}
		e.states[inst.Symbol] = st
	}

	ev := detector.Evaluate(inst, snap, st, e.trades.Active(inst.Contract))
	if ev.Alert != nil {
		e.handleAlert(ctx, inst, snap, ev.Alert)
		res.Alert = ev.Alert
	}
	if ev.Entry != nil {
		if e.handleEntry(ctx, inst, ev.Entry) {
			res.Entry = ev.Entry
		} else {
			res.Reason = "entry not executed"
		}
	}
	return res, nil
}

func (e *engine) handleAlert(ctx context.Context, inst store.Instrument, snap types.Snapshot, sig *types.Signal) {
	logger.Signal(ctx, sig.Instrument, string(sig.Kind), string(sig.Side), sig.Price,
		"breakout_pct", sig.BreakoutPct, "reason", sig.Reason)

	if err := siglog.Append(siglog.Entry{
		Instrument:  sig.Instrument,
		Kind:        string(sig.Kind),
		Side:        string(sig.Side),
		Price:       sig.Price,
		BreakoutPct: sig.BreakoutPct,
		Indicators:  snapshotIndicators(snap),
	}); err != nil {
		logger.Warn(ctx, "Signal log append failed", "error", err)
	}

	e.notify(ctx, fmt.Sprintf("⚠️ ALERT %s %s\nPrice: %.8f\nBreakout: %.2f%%",
		sig.Side, sig.Instrument, sig.Price, sig.BreakoutPct))
}

// handleEntry opens the position and attaches protection. Returns true
// when a position was actually opened.
func (e *engine) handleEntry(ctx context.Context, inst store.Instrument, sig *types.Signal) bool {
	rec, err := e.trades.Open(ctx, inst.Contract, sig.Side, inst.Qty, sig.Price)
	if errors.Is(err, lifecycle.ErrAlreadyOpen) {
		logger.Info(ctx, "Entry skipped, position already open",
			"instrument", inst.Symbol, "contract", inst.Contract)
		return false
	}
	if err != nil {
		logger.ErrorWithErr(ctx, "Entry order failed, lifecycle unchanged", err,
			"instrument", inst.Symbol, "side", sig.Side, "fault", faults.KindOf(err).String())
		return false
	}

	logger.Trade(ctx, inst.Symbol, "OPENED", string(rec.Side), rec.EntryPrice, rec.Qty)

	stop, target, perr := e.trades.AttachProtection(ctx, inst.Contract)
	if perr != nil {
		// Entered with protection pending or partial; the position is
		// not rolled back.
		logger.ErrorWithErr(ctx, "Protective order submission incomplete", perr,
			"instrument", inst.Symbol, "stop", stop, "target", target)
	}

	if err := siglog.Append(siglog.Entry{
		Instrument:  sig.Instrument,
		Kind:        string(sig.Kind),
		Side:        string(sig.Side),
		Price:       rec.EntryPrice,
		BreakoutPct: sig.BreakoutPct,
		StopPrice:   stop,
		TargetPrice: target,
	}); err != nil {
		logger.Warn(ctx, "Signal log append failed", "error", err)
	}

	e.notify(ctx, fmt.Sprintf("%s %s ENTRY EXECUTED\nEntry: %.8f\nSL: %.8f | TP: %.8f",
		sideEmoji(rec.Side), sig.Side, rec.EntryPrice, stop, target))
	return true
}

func (e *engine) notify(ctx context.Context, text string) {
	if err := e.notifier.SendMessage(ctx, text); err != nil {
		logger.Warn(ctx, "Notification delivery failed", "error", err)
	}
}

func sideEmoji(side types.Side) string {
	if side == types.SideLong {
		return "🟢"
	}
	return "🔴"
}
