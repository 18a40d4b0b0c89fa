package types

type Side string

const (
	SideNone  Side = ""
	SideLong  Side = "LONG"
	SideShort Side = "SHORT"
)

type SignalKind string

const (
	KindAlert SignalKind = "ALERT"
	KindEntry SignalKind = "ENTRY"
)

type Candle struct {
	Ts                          int64
	Open, High, Low, Close, Vol float64
}

// Snapshot is recomputed from the candle window every cycle. The OK
// flags distinguish "not enough history" from a genuine zero value.
type Snapshot struct {
	Price float64

	BollMid, BollUpper, BollLower float64
	BandWidth                     float64
	BollOK                        bool

	ATR   float64
	ATROK bool

	ADX, ADXPrev float64
	ADXOK        bool

	FastSMA, MidSMA, SlowSMA float64
	PrevFastSMA, PrevMidSMA  float64
	TripleOK                 bool
	PrevHigh, PrevLow        float64
	PrevExtremeOK            bool
}

type Signal struct {
	Instrument  string     `json:"instrument"`
	Kind        SignalKind `json:"kind"`
	Side        Side       `json:"side"`
	Price       float64    `json:"price"`
	BreakoutPct float64    `json:"breakout_pct,omitempty"`
	Reason      string     `json:"reason"`
}

type StepResult struct {
	Instrument string  `json:"instrument"`
	Price      float64 `json:"price"`
	Time       int64   `json:"time"`
	Alert      *Signal `json:"alert,omitempty"`
	Entry      *Signal `json:"entry,omitempty"`
	Reason     string  `json:"reason"`
}
