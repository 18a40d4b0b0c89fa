// Package ta holds pure indicator math over candle windows. Every
// function reports ok=false instead of a guessed number when the
// window is too short for the requested period.
package ta

import "math"

// SMA is the trailing mean over at most n samples. Partial windows are
// allowed: with fewer than n samples it averages what is there.
func SMA(vals []float64, n int) (float64, bool) {
	if n <= 0 || len(vals) == 0 {
		return 0, false
	}
	if len(vals) < n {
		n = len(vals)
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n), true
}

// FullSMA is the trailing mean over exactly n samples.
func FullSMA(vals []float64, n int) (float64, bool) {
	if n <= 0 || len(vals) < n {
		return 0, false
	}
	sum := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		sum += vals[i]
	}
	return sum / float64(n), true
}

// StdDev is the trailing population standard deviation over n samples.
func StdDev(vals []float64, n int) (float64, bool) {
	m, ok := FullSMA(vals, n)
	if !ok {
		return 0, false
	}
	s := 0.0
	for i := len(vals) - n; i < len(vals); i++ {
		d := vals[i] - m
		s += d * d
	}
	return math.Sqrt(s / float64(n)), true
}

func Bollinger(closes []float64, n int, k float64) (mid, upper, lower float64, ok bool) {
	mid, ok = FullSMA(closes, n)
	if !ok {
		return 0, 0, 0, false
	}
	sd, ok := StdDev(closes, n)
	if !ok {
		return 0, 0, 0, false
	}
	return mid, mid + k*sd, mid - k*sd, true
}

// BandWidth is (upper-lower)/mid. A zero midline has no meaningful
// width and is not a signal.
func BandWidth(mid, upper, lower float64) (float64, bool) {
	if mid == 0 {
		return 0, false
	}
	return (upper - lower) / mid, true
}

func TrueRange(high, low, prevClose float64) float64 {
	tr := high - low
	if v := math.Abs(high - prevClose); v > tr {
		tr = v
	}
	if v := math.Abs(low - prevClose); v > tr {
		tr = v
	}
	return tr
}

// ATR is the rolling mean of true range over period, defined only once
// a full period (plus the seed close) has elapsed.
func ATR(highs, lows, closes []float64, period int) (float64, bool) {
	if period <= 0 || len(highs) != len(lows) || len(lows) != len(closes) {
		return 0, false
	}
	if len(closes) < period+1 {
		return 0, false
	}
	sum := 0.0
	for i := len(closes) - period; i < len(closes); i++ {
		sum += TrueRange(highs[i], lows[i], closes[i-1])
	}
	return sum / float64(period), true
}

// ADX returns the current and prior-bar Average Directional Index.
// Directional movement is smoothed with the same rolling mean as ATR;
// DX is 0 when +DI and -DI cancel out. Needs 2*period+1 candles.
func ADX(highs, lows, closes []float64, period int) (cur, prev float64, ok bool) {
	if period <= 0 || len(highs) != len(lows) || len(lows) != len(closes) {
		return 0, 0, false
	}
	n := len(closes)
	if n < 2*period+1 {
		return 0, 0, false
	}

	trs := make([]float64, n-1)
	plusDM := make([]float64, n-1)
	minusDM := make([]float64, n-1)
	for i := 1; i < n; i++ {
		trs[i-1] = TrueRange(highs[i], lows[i], closes[i-1])
		up := highs[i] - highs[i-1]
		down := lows[i-1] - lows[i]
		if up > down && up > 0 {
			plusDM[i-1] = up
		}
		if down > up && down > 0 {
			minusDM[i-1] = down
		}
	}

	dx := make([]float64, 0, len(trs)-period+1)
	for i := period - 1; i < len(trs); i++ {
		var trSum, pSum, mSum float64
		for j := i - period + 1; j <= i; j++ {
			trSum += trs[j]
			pSum += plusDM[j]
			mSum += minusDM[j]
		}
		var pdi, mdi float64
		if trSum > 0 {
			pdi = 100 * pSum / trSum
			mdi = 100 * mSum / trSum
		}
		if pdi+mdi == 0 {
			dx = append(dx, 0)
			continue
		}
		dx = append(dx, 100*math.Abs(pdi-mdi)/(pdi+mdi))
	}
	if len(dx) < period+1 {
		return 0, 0, false
	}

	mean := func(end int) float64 {
		s := 0.0
		for i := end - period; i < end; i++ {
			s += dx[i]
		}
		return s / float64(period)
	}
	return mean(len(dx)), mean(len(dx) - 1), true
}

type Cross int

const (
	CrossNone Cross = iota
	CrossUp
	CrossDown
)

// CrossDirection reports whether the fast/mid ordering flipped between
// the previous and current bar.
func CrossDirection(prevFast, prevMid, fast, mid float64) Cross {
	switch {
	case prevFast <= prevMid && fast > mid:
		return CrossUp
	case prevFast >= prevMid && fast < mid:
		return CrossDown
	}
	return CrossNone
}

// Highest is the maximum over the trailing n samples.
func Highest(vals []float64, n int) (float64, bool) {
	if n <= 0 || len(vals) < n {
		return 0, false
	}
	hi := vals[len(vals)-n]
	for _, v := range vals[len(vals)-n:] {
		if v > hi {
			hi = v
		}
	}
	return hi, true
}

// Lowest is the minimum over the trailing n samples.
func Lowest(vals []float64, n int) (float64, bool) {
	if n <= 0 || len(vals) < n {
		return 0, false
	}
	lo := vals[len(vals)-n]
	for _, v := range vals[len(vals)-n:] {
		if v < lo {
			lo = v
		}
	}
	return lo, true
}
