package engine

import (
	"band-trading-bot/internal/store"
	"band-trading-bot/internal/ta"
	"band-trading-bot/internal/types"
)

// atrPeriod is only used for the audit trail; no strategy gates on ATR.
const atrPeriod = 14

// buildSnapshot computes the indicator snapshot for one instrument from
// the closed candles. ok is false when the instrument's strategy does
// not have enough history yet; informational indicators carry their own
// OK flags and never fail the build.
func buildSnapshot(inst store.Instrument, candles []types.Candle) (types.Snapshot, bool) {
	n := len(candles)
	closes := make([]float64, n)
	highs := make([]float64, n)
	lows := make([]float64, n)
	for i, c := range candles {
		closes[i] = c.Close
		highs[i] = c.High
		lows[i] = c.Low
	}

	var snap types.Snapshot
	snap.Price = closes[n-1]
	snap.ATR, snap.ATROK = ta.ATR(highs, lows, closes, atrPeriod)

	switch inst.Strategy {
	case store.StrategyTripleSMA:
		return buildTriple(inst, snap, highs, lows, closes)
	default:
		return buildBollinger(inst, snap, closes)
	}
}

func buildBollinger(inst store.Instrument, snap types.Snapshot, closes []float64) (types.Snapshot, bool) {
	mid, upper, lower, ok := ta.Bollinger(closes, inst.Boll.Period, inst.Boll.StdDev)
	if !ok {
		return snap, false
	}
	snap.BollMid, snap.BollUpper, snap.BollLower = mid, upper, lower
	snap.BandWidth, _ = ta.BandWidth(mid, upper, lower)
	snap.BollOK = true
	return snap, true
}

func buildTriple(inst store.Instrument, snap types.Snapshot, highs, lows, closes []float64) (types.Snapshot, bool) {
	t := inst.Triple

	fast, ok1 := ta.FullSMA(closes, t.Fast)
	mid, ok2 := ta.FullSMA(closes, t.Mid)
	slow, ok3 := ta.FullSMA(closes, t.Slow)
	prev := closes[:len(closes)-1]
	prevFast, ok4 := ta.FullSMA(prev, t.Fast)
	prevMid, ok5 := ta.FullSMA(prev, t.Mid)
	if ok1 && ok2 && ok3 && ok4 && ok5 {
		snap.FastSMA, snap.MidSMA, snap.SlowSMA = fast, mid, slow
		snap.PrevFastSMA, snap.PrevMidSMA = prevFast, prevMid
		snap.TripleOK = true
	}

	snap.ADX, snap.ADXPrev, snap.ADXOK = ta.ADX(highs, lows, closes, t.ADXPeriod)

	// Breakout reference excludes the current bar.
	ph, ok6 := ta.Highest(highs[:len(highs)-1], t.BreakoutLookback)
	pl, ok7 := ta.Lowest(lows[:len(lows)-1], t.BreakoutLookback)
	if ok6 && ok7 {
		snap.PrevHigh, snap.PrevLow = ph, pl
		snap.PrevExtremeOK = true
	}

	return snap, snap.TripleOK && snap.ADXOK && snap.PrevExtremeOK
}

// snapshotIndicators flattens the available indicator values for the
// signal log.
func snapshotIndicators(snap types.Snapshot) map[string]float64 {
	out := map[string]float64{}
	if snap.BollOK {
		out["boll_mid"] = snap.BollMid
		out["boll_upper"] = snap.BollUpper
		out["boll_lower"] = snap.BollLower
		out["band_width"] = snap.BandWidth
	}
	if snap.ATROK {
		out["atr"] = snap.ATR
	}
	if snap.ADXOK {
		out["adx"] = snap.ADX
	}
	if snap.TripleOK {
		out["sma_fast"] = snap.FastSMA
		out["sma_mid"] = snap.MidSMA
		out["sma_slow"] = snap.SlowSMA
	}
	return out
}
