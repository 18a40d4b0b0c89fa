// Package watchdog detects a stalled poll loop. It only observes: the
// main loop writes a heartbeat after each completed cycle and the
// watchdog reports when too much wall-clock time has passed since the
// last one. It never restarts or kills anything.
package watchdog

import (
	"context"
	"sync/atomic"
	"time"
)

type Watchdog struct {
	last     atomic.Int64 // unix nanos of last completed cycle
	stall    time.Duration
	interval time.Duration
	onStall  func(elapsed time.Duration)
	reported bool
}

// New builds a watchdog that calls onStall once per stall episode when
// the time since the last heartbeat exceeds stall.
func New(stall, interval time.Duration, onStall func(elapsed time.Duration)) *Watchdog {
	w := &Watchdog{
		stall:    stall,
		interval: interval,
		onStall:  onStall,
	}
	w.last.Store(time.Now().UnixNano())
	return w
}

// Beat records a completed cycle. Safe to call from the main loop
// while Run ticks on its own goroutine.
func (w *Watchdog) Beat() {
	w.last.Store(time.Now().UnixNano())
}

// Elapsed returns the time since the last heartbeat.
func (w *Watchdog) Elapsed() time.Duration {
	return time.Since(time.Unix(0, w.last.Load()))
}

// Run blocks until ctx is cancelled, checking the heartbeat on every
// tick.
func (w *Watchdog) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.check()
		}
	}
}

func (w *Watchdog) check() {
	elapsed := w.Elapsed()
	if elapsed <= w.stall {
		w.reported = false
		return
	}
	if w.reported {
		return
	}
	w.reported = true
	if w.onStall != nil {
		w.onStall(elapsed)
	}
}
