package ta

import (
	"math"
	"testing"
)

func almostEqual(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

func TestSMAPartialWindow(t *testing.T) {
	got, ok := SMA([]float64{2, 4}, 5)
	if !ok {
		t.Fatal("expected partial-window SMA to be defined")
	}
	if !almostEqual(got, 3) {
		t.Errorf("expected 3, got %f", got)
	}
}

func TestSMAEmpty(t *testing.T) {
	if _, ok := SMA(nil, 3); ok {
		t.Error("expected SMA of empty input to be undefined")
	}
}

func TestFullSMAInsufficient(t *testing.T) {
	if _, ok := FullSMA([]float64{1, 2}, 3); ok {
		t.Error("expected FullSMA with short window to be undefined")
	}
}

func TestBollingerBandsSymmetric(t *testing.T) {
	closes := []float64{10, 11, 12, 11, 10, 11, 12, 13}
	mid, upper, lower, ok := Bollinger(closes, 8, 2.0)
	if !ok {
		t.Fatal("expected bands to be defined with a full window")
	}

	sd, _ := StdDev(closes, 8)
	if !almostEqual(upper-mid, 2.0*sd) {
		t.Errorf("upper offset: expected %f, got %f", 2.0*sd, upper-mid)
	}
	if !almostEqual(mid-lower, 2.0*sd) {
		t.Errorf("lower offset: expected %f, got %f", 2.0*sd, mid-lower)
	}
	if !almostEqual(upper-mid, mid-lower) {
		t.Error("expected bands symmetric around the midline")
	}
}

func TestBollingerConstantSeries(t *testing.T) {
	closes := []float64{5, 5, 5, 5, 5}
	mid, upper, lower, ok := Bollinger(closes, 5, 2.0)
	if !ok {
		t.Fatal("expected bands to be defined")
	}
	if mid != 5 || upper != 5 || lower != 5 {
		t.Errorf("constant series should collapse the bands, got %f/%f/%f", lower, mid, upper)
	}
}

func TestBollingerInsufficient(t *testing.T) {
	if _, _, _, ok := Bollinger([]float64{1, 2, 3}, 8, 2.0); ok {
		t.Error("expected bands to be undefined with 3 of 8 candles")
	}
}

func TestBandWidthZeroMid(t *testing.T) {
	if _, ok := BandWidth(0, 1, -1); ok {
		t.Error("expected width of a zero midline to be undefined")
	}
	w, ok := BandWidth(10, 11, 9)
	if !ok || !almostEqual(w, 0.2) {
		t.Errorf("expected width 0.2, got %f (ok=%v)", w, ok)
	}
}

func TestTrueRangeUsesGaps(t *testing.T) {
	// Gap up: previous close far below the low.
	if got := TrueRange(12, 11, 9); !almostEqual(got, 3) {
		t.Errorf("expected 3, got %f", got)
	}
	// Gap down: previous close far above the high.
	if got := TrueRange(10, 9, 12); !almostEqual(got, 3) {
		t.Errorf("expected 3, got %f", got)
	}
}

func TestATRNeedsSeedClose(t *testing.T) {
	highs := []float64{2, 2, 2}
	lows := []float64{1, 1, 1}
	closes := []float64{1.5, 1.5, 1.5}
	if _, ok := ATR(highs, lows, closes, 3); ok {
		t.Error("expected ATR to need period+1 candles")
	}
	atr, ok := ATR(append([]float64{2}, highs...), append([]float64{1}, lows...), append([]float64{1.5}, closes...), 3)
	if !ok {
		t.Fatal("expected ATR to be defined with period+1 candles")
	}
	if !almostEqual(atr, 1) {
		t.Errorf("expected ATR 1, got %f", atr)
	}
}

func TestADXBoundsAndHistory(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		base := 100 + float64(i) // steady uptrend
		highs[i] = base + 1
		lows[i] = base - 1
		closes[i] = base
	}

	cur, prev, ok := ADX(highs, lows, closes, 14)
	if !ok {
		t.Fatal("expected ADX to be defined with 40 candles at period 14")
	}
	for _, v := range []float64{cur, prev} {
		if v < 0 || v > 100 {
			t.Errorf("ADX out of bounds: %f", v)
		}
	}
	// A one-directional trend should read as strongly directional.
	if cur < 50 {
		t.Errorf("expected a strong trend reading, got %f", cur)
	}

	if _, _, ok := ADX(highs[:20], lows[:20], closes[:20], 14); ok {
		t.Error("expected ADX to need 2*period+1 candles")
	}
}

func TestADXFlatSeriesIsZero(t *testing.T) {
	n := 40
	highs := make([]float64, n)
	lows := make([]float64, n)
	closes := make([]float64, n)
	for i := 0; i < n; i++ {
		highs[i], lows[i], closes[i] = 10, 10, 10
	}
	cur, _, ok := ADX(highs, lows, closes, 14)
	if !ok {
		t.Fatal("expected ADX to be defined")
	}
	if cur != 0 {
		t.Errorf("expected 0 for a flat series, got %f", cur)
	}
}

func TestCrossDirection(t *testing.T) {
	cases := []struct {
		name                     string
		prevFast, prevMid        float64
		fast, mid                float64
		want                     Cross
	}{
		{"up", 9, 10, 11, 10, CrossUp},
		{"down", 11, 10, 9, 10, CrossDown},
		{"touch then up", 10, 10, 11, 10, CrossUp},
		{"no cross above", 11, 10, 12, 10, CrossNone},
		{"no cross below", 9, 10, 8, 10, CrossNone},
	}
	for _, c := range cases {
		if got := CrossDirection(c.prevFast, c.prevMid, c.fast, c.mid); got != c.want {
			t.Errorf("%s: expected %v, got %v", c.name, c.want, got)
		}
	}
}

func TestHighestLowest(t *testing.T) {
	vals := []float64{3, 9, 1, 7, 5}
	hi, ok := Highest(vals, 3)
	if !ok || hi != 7 {
		t.Errorf("expected highest of last 3 to be 7, got %f", hi)
	}
	lo, ok := Lowest(vals, 3)
	if !ok || lo != 1 {
		t.Errorf("expected lowest of last 3 to be 1, got %f", lo)
	}
	if _, ok := Highest(vals, 6); ok {
		t.Error("expected lookback longer than history to be undefined")
	}
}
