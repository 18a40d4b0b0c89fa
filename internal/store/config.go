package store

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	StrategyBollinger = "BOLLINGER"
	StrategyTripleSMA = "TRIPLE_SMA"
)

type Instrument struct {
	Symbol   string  `yaml:"symbol"`   // spot symbol used for candles, e.g. ARPAUSDT
	Contract string  `yaml:"contract"` // futures contract used for orders, e.g. ARPA_USDT
	Strategy string  `yaml:"strategy"`
	Qty      float64 `yaml:"qty"`

	Boll struct {
		Period   int     `yaml:"period"`
		StdDev   float64 `yaml:"stddev"`
		EntryPct float64 `yaml:"entry_pct"` // % beyond the band required for an entry
	} `yaml:"boll"`

	Triple struct {
		Fast             int     `yaml:"fast"`
		Mid              int     `yaml:"mid"`
		Slow             int     `yaml:"slow"`
		ADXPeriod        int     `yaml:"adx_period"`
		MinADX           float64 `yaml:"min_adx"`
		MinSlopePct      float64 `yaml:"min_slope_pct"`
		MinSeparationPct float64 `yaml:"min_separation_pct"`
		BreakoutLookback int     `yaml:"breakout_lookback"`
	} `yaml:"triple"`
}

type Config struct {
	Mode        string       `yaml:"mode"` // DRY_RUN or LIVE
	PollSeconds int          `yaml:"poll_seconds"`
	Interval    string       `yaml:"interval"`
	CandleLimit int          `yaml:"candle_limit"`
	Instruments []Instrument `yaml:"instruments"`

	Stop struct {
		LossPct   float64 `yaml:"loss_pct"`   // tighter, e.g. 1.0
		ProfitPct float64 `yaml:"profit_pct"` // wider, e.g. 2.0
	} `yaml:"stop"`

	Retry struct {
		MaxAttempts   int `yaml:"max_attempts"`
		InitialWaitMs int `yaml:"initial_wait_ms"`
		MaxWaitMs     int `yaml:"max_wait_ms"`
	} `yaml:"retry"`

	Probe struct {
		Enabled         bool `yaml:"enabled"`
		TimeoutMs       int  `yaml:"timeout_ms"`
		CooldownSeconds int  `yaml:"cooldown_seconds"`
	} `yaml:"probe"`

	Watchdog struct {
		StallSeconds    int `yaml:"stall_seconds"`
		IntervalSeconds int `yaml:"interval_seconds"`
	} `yaml:"watchdog"`

	Summary struct {
		Enabled bool   `yaml:"enabled"`
		After   string `yaml:"after"` // local HH:MM cutoff, e.g. "23:50"
	} `yaml:"summary"`
}

func (c *Config) Validate() error {
	if c.Mode != "DRY_RUN" && c.Mode != "LIVE" {
		return fmt.Errorf("invalid mode '%s': must be 'DRY_RUN' or 'LIVE'", c.Mode)
	}
	if len(c.Instruments) == 0 {
		return errors.New("instruments cannot be empty")
	}
	for i, inst := range c.Instruments {
		if inst.Symbol == "" {
			return fmt.Errorf("instruments[%d]: symbol is required", i)
		}
		if inst.Contract == "" {
			return fmt.Errorf("instruments[%d] (%s): contract is required", i, inst.Symbol)
		}
		if inst.Qty <= 0 {
			return fmt.Errorf("instruments[%d] (%s): qty must be positive", i, inst.Symbol)
		}
		switch inst.Strategy {
		case StrategyBollinger:
			if inst.Boll.Period < 2 {
				return fmt.Errorf("instruments[%d] (%s): boll.period must be >= 2", i, inst.Symbol)
			}
			if inst.Boll.StdDev <= 0 {
				return fmt.Errorf("instruments[%d] (%s): boll.stddev must be positive", i, inst.Symbol)
			}
			if inst.Boll.EntryPct < 0 {
				return fmt.Errorf("instruments[%d] (%s): boll.entry_pct cannot be negative", i, inst.Symbol)
			}
		case StrategyTripleSMA:
			t := inst.Triple
			if !(t.Fast > 0 && t.Fast < t.Mid && t.Mid < t.Slow) {
				return fmt.Errorf("instruments[%d] (%s): triple periods must satisfy 0 < fast < mid < slow", i, inst.Symbol)
			}
			if t.BreakoutLookback < 1 {
				return fmt.Errorf("instruments[%d] (%s): triple.breakout_lookback must be >= 1", i, inst.Symbol)
			}
		default:
			return fmt.Errorf("instruments[%d] (%s): strategy must be '%s' or '%s', got '%s'",
				i, inst.Symbol, StrategyBollinger, StrategyTripleSMA, inst.Strategy)
		}
	}
	if c.Stop.LossPct <= 0 || c.Stop.ProfitPct <= 0 {
		return errors.New("stop.loss_pct and stop.profit_pct must be positive")
	}
	if c.Stop.LossPct >= c.Stop.ProfitPct {
		return fmt.Errorf("stop.loss_pct (%.2f) must be tighter than stop.profit_pct (%.2f)",
			c.Stop.LossPct, c.Stop.ProfitPct)
	}
	if c.Retry.MaxAttempts < 1 {
		return errors.New("retry.max_attempts must be >= 1")
	}
	return nil
}

func LoadConfig(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, err
	}

	if c.Mode == "" {
		c.Mode = "DRY_RUN"
	}
	if c.PollSeconds == 0 {
		c.PollSeconds = 15
	}
	if c.Interval == "" {
		c.Interval = "1m"
	}
	if c.CandleLimit == 0 {
		c.CandleLimit = 200
	}
	if c.Retry.MaxAttempts == 0 {
		c.Retry.MaxAttempts = 3
	}
	if c.Retry.InitialWaitMs == 0 {
		c.Retry.InitialWaitMs = 1000
	}
	if c.Retry.MaxWaitMs == 0 {
		c.Retry.MaxWaitMs = 5000
	}
	if c.Probe.TimeoutMs == 0 {
		c.Probe.TimeoutMs = 3000
	}
	if c.Probe.CooldownSeconds == 0 {
		c.Probe.CooldownSeconds = 30
	}
	if c.Watchdog.StallSeconds == 0 {
		c.Watchdog.StallSeconds = 120
	}
	if c.Watchdog.IntervalSeconds == 0 {
		c.Watchdog.IntervalSeconds = 15
	}
	if c.Summary.After == "" {
		c.Summary.After = "23:50"
	}
	for i := range c.Instruments {
		if c.Instruments[i].Strategy == StrategyTripleSMA && c.Instruments[i].Triple.ADXPeriod == 0 {
			c.Instruments[i].Triple.ADXPeriod = 14
		}
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}
	return &c, nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.PollSeconds) * time.Second
}

func (c *Config) ProbeTimeout() time.Duration {
	return time.Duration(c.Probe.TimeoutMs) * time.Millisecond
}

func (c *Config) ProbeCooldown() time.Duration {
	return time.Duration(c.Probe.CooldownSeconds) * time.Second
}

func (c *Config) WatchdogStall() time.Duration {
	return time.Duration(c.Watchdog.StallSeconds) * time.Second
}

func (c *Config) WatchdogInterval() time.Duration {
	return time.Duration(c.Watchdog.IntervalSeconds) * time.Second
}
