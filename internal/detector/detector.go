// Package detector turns an indicator snapshot into alert and entry
// events. State is per instrument, owned by the orchestrator and
// passed in by reference; the detector itself holds nothing.
package detector

import (
	"fmt"
	"math"

	"band-trading-bot/internal/store"
	"band-trading-bot/internal/ta"
	"band-trading-bot/internal/types"
)

// State carries the per-instrument latch and de-dup memory across
// cycles. Latched is the breakout side that already produced an alert,
// cleared when price returns inside neutral territory. LastEmitted is
// the side of the last signal of any kind, used by strategies without
// a latch.
type State struct {
	Latched     types.Side
	LastEmitted types.Side
}

// Evaluation is one cycle's outcome. Alert and Entry are distinct
// events and may both be set in the same cycle.
type Evaluation struct {
	Alert *types.Signal
	Entry *types.Signal
}

// Evaluate applies the instrument's strategy to the snapshot. With
// insufficient history it emits nothing and leaves the state untouched.
// When both sides' conditions hold simultaneously it emits no signal.
func Evaluate(inst store.Instrument, snap types.Snapshot, st *State, tradeActive bool) Evaluation {
	switch inst.Strategy {
	case store.StrategyTripleSMA:
		return evalTripleSMA(inst, snap, st, tradeActive)
	default:
		return evalBollinger(inst, snap, st, tradeActive)
	}
}

func evalBollinger(inst store.Instrument, snap types.Snapshot, st *State, tradeActive bool) Evaluation {
	var ev Evaluation
	if !snap.BollOK {
		return ev
	}

	// A breakout above the upper band arms a SHORT, below the lower
	// band a LONG (mean reversion back into the band).
	short := snap.BollUpper > 0 && snap.Price > snap.BollUpper
	long := snap.BollLower > 0 && snap.Price < snap.BollLower

	switch {
	case long && short:
		// Degenerate band; emit nothing.
		return ev
	case short:
		pct := (snap.Price - snap.BollUpper) / snap.BollUpper * 100
		return bollingerSide(inst, snap, st, types.SideShort, pct, tradeActive)
	case long:
		pct := (snap.BollLower - snap.Price) / snap.BollLower * 100
		return bollingerSide(inst, snap, st, types.SideLong, pct, tradeActive)
	default:
		// Price back inside the bands re-arms the alert latch.
		st.Latched = types.SideNone
		return ev
	}
}

func bollingerSide(inst store.Instrument, snap types.Snapshot, st *State, side types.Side, pct float64, tradeActive bool) Evaluation {
	var ev Evaluation

	if st.Latched != side {
		st.Latched = side
		st.LastEmitted = side
		ev.Alert = &types.Signal{
			Instrument:  inst.Symbol,
			Kind:        types.KindAlert,
			Side:        side,
			Price:       snap.Price,
			BreakoutPct: pct,
			Reason:      fmt.Sprintf("close beyond band by %.2f%%", pct),
		}
	}

	if pct >= inst.Boll.EntryPct && !tradeActive {
		ev.Entry = &types.Signal{
			Instrument:  inst.Symbol,
			Kind:        types.KindEntry,
			Side:        side,
			Price:       snap.Price,
			BreakoutPct: pct,
			Reason:      fmt.Sprintf("breakout %.2f%% >= entry threshold %.2f%%", pct, inst.Boll.EntryPct),
		}
	}
	return ev
}

func evalTripleSMA(inst store.Instrument, snap types.Snapshot, st *State, tradeActive bool) Evaluation {
	var ev Evaluation
	if !snap.TripleOK || !snap.ADXOK || !snap.PrevExtremeOK {
		return ev
	}

	cross := ta.CrossDirection(snap.PrevFastSMA, snap.PrevMidSMA, snap.FastSMA, snap.MidSMA)

	var slopePct float64
	if snap.PrevFastSMA != 0 {
		slopePct = (snap.FastSMA - snap.PrevFastSMA) / snap.PrevFastSMA * 100
	}
	var sepPct float64
	if snap.MidSMA != 0 {
		sepPct = math.Abs(snap.FastSMA-snap.MidSMA) / snap.MidSMA * 100
	}
	common := sepPct >= inst.Triple.MinSeparationPct && snap.ADX >= inst.Triple.MinADX

	long := cross == ta.CrossUp &&
		snap.FastSMA > snap.MidSMA && snap.MidSMA > snap.SlowSMA &&
		slopePct >= inst.Triple.MinSlopePct &&
		common &&
		snap.Price > snap.PrevHigh

	short := cross == ta.CrossDown &&
		snap.FastSMA < snap.MidSMA && snap.MidSMA < snap.SlowSMA &&
		slopePct <= -inst.Triple.MinSlopePct &&
		common &&
		snap.Price < snap.PrevLow

	var side types.Side
	switch {
	case long && !short:
		side = types.SideLong
	case short && !long:
		side = types.SideShort
	default:
		return ev
	}

	// De-dup memory: an identical consecutive signal is suppressed
	// until the opposite side fires.
	if st.LastEmitted == side {
		return ev
	}
	st.LastEmitted = side

	reason := fmt.Sprintf("triple SMA cross %s with alignment, slope %.2f%%, separation %.2f%%, ADX %.1f, prior-extreme breakout",
		side, slopePct, sepPct, snap.ADX)
	ev.Alert = &types.Signal{
		Instrument: inst.Symbol,
		Kind:       types.KindAlert,
		Side:       side,
		Price:      snap.Price,
		Reason:     reason,
	}
	if !tradeActive {
		ev.Entry = &types.Signal{
			Instrument: inst.Symbol,
			Kind:       types.KindEntry,
			Side:       side,
			Price:      snap.Price,
			Reason:     reason,
		}
	}
	return ev
}
