// Package lifecycle tracks at most one position per instrument and its
// protective exit orders. Local records are a cache; the exchange's
// open-position query is the source of truth and is re-checked before
// every open.
package lifecycle

import (
	"context"
	"errors"

	"band-trading-bot/internal/interfaces"
	"band-trading-bot/internal/types"
)

type TradeState int

const (
	StateNone TradeState = iota
	StateOpening
	StateActive
)

func (s TradeState) String() string {
	switch s {
	case StateOpening:
		return "OPENING"
	case StateActive:
		return "ACTIVE"
	}
	return "NONE"
}

// ErrAlreadyOpen reports that the exchange or the local record already
// holds a position for the contract. Opening is a no-op in that case.
var ErrAlreadyOpen = errors.New("position already open")

type Record struct {
	State      TradeState
	Side       types.Side
	EntryPrice float64
	Qty        float64
}

type Manager struct {
	ex        interfaces.Exchange
	lossPct   float64
	profitPct float64
	trades    map[string]*Record
}

func New(ex interfaces.Exchange, lossPct, profitPct float64) *Manager {
	return &Manager{
		ex:        ex,
		lossPct:   lossPct,
		profitPct: profitPct,
		trades:    make(map[string]*Record),
	}
}

func (m *Manager) record(contract string) *Record {
	rec := m.trades[contract]
	if rec == nil {
		rec = &Record{}
		m.trades[contract] = rec
	}
	return rec
}

// Active reports the local view. It is only a fast path; Open still
// re-confirms with the exchange.
func (m *Manager) Active(contract string) bool {
	rec := m.trades[contract]
	return rec != nil && rec.State != StateNone
}

// Lookup returns the current record, or nil when none exists.
func (m *Manager) Lookup(contract string) *Record {
	return m.trades[contract]
}

// Open submits a market order after re-verifying against the exchange
// that the slot is free. refPrice fills in when the venue reports no
// fill price (simulated orders).
func (m *Manager) Open(ctx context.Context, contract string, side types.Side, qty, refPrice float64) (*Record, error) {
	rec := m.record(contract)
	if rec.State != StateNone {
		return rec, ErrAlreadyOpen
	}

	open, err := m.ex.HasOpenPosition(ctx, contract)
	if err != nil {
		return nil, err
	}
	if open {
		// The exchange knows about a position we do not; adopt it so
		// the at-most-one invariant holds until reconciliation.
		rec.State = StateActive
		return rec, ErrAlreadyOpen
	}

	rec.State = StateOpening
	rec.Side = side

	fill, err := m.ex.SubmitMarketOrder(ctx, contract, side, qty)
	if err != nil {
		*rec = Record{}
		return nil, err
	}
	if fill <= 0 {
		fill = refPrice
	}

	rec.State = StateActive
	rec.EntryPrice = fill
	rec.Qty = qty
	return rec, nil
}

// ProtectionLevels derives the stop-loss and take-profit triggers from
// the entry price. The stop is tighter than the target.
func (m *Manager) ProtectionLevels(rec *Record) (stop, target float64) {
	if rec.Side == types.SideLong {
		return rec.EntryPrice * (1 - m.lossPct/100), rec.EntryPrice * (1 + m.profitPct/100)
	}
	return rec.EntryPrice * (1 + m.lossPct/100), rec.EntryPrice * (1 - m.profitPct/100)
}

// AttachProtection submits both conditional close orders. A failed
// submission does not roll back the entry: the position stays accepted
// with protection pending or partial, and the joined error goes back
// to the caller for logging only.
func (m *Manager) AttachProtection(ctx context.Context, contract string) (stop, target float64, err error) {
	rec := m.trades[contract]
	if rec == nil || rec.State != StateActive {
		return 0, 0, errors.New("no active trade to protect")
	}

	stop, target = m.ProtectionLevels(rec)
	var errs []error
	if e := m.ex.SubmitStopLoss(ctx, contract, rec.Side, stop, rec.Qty); e != nil {
		errs = append(errs, e)
	}
	if e := m.ex.SubmitTakeProfit(ctx, contract, rec.Side, target, rec.Qty); e != nil {
		errs = append(errs, e)
	}
	return stop, target, errors.Join(errs...)
}

// Reconcile frees the slot when the exchange reports no open position
// for a contract the local state believes is active. This is the only
// way a close by the protective orders is observed.
func (m *Manager) Reconcile(ctx context.Context, contract string) (freed bool, err error) {
	rec := m.trades[contract]
	if rec == nil || rec.State != StateActive {
		return false, nil
	}

	open, err := m.ex.HasOpenPosition(ctx, contract)
	if err != nil {
		return false, err
	}
	if !open {
		*rec = Record{}
		return true, nil
	}
	return false, nil
}
