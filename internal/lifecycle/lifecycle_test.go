package lifecycle

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"band-trading-bot/internal/types"
)

type fakeExchange struct {
	open    bool
	openErr error

	fill     float64
	orderErr error
	slErr    error
	tpErr    error

	marketCalls int
	slCalls     int
	tpCalls     int
	slTrigger   float64
	tpTrigger   float64
}

func (f *fakeExchange) HasOpenPosition(ctx context.Context, contract string) (bool, error) {
	return f.open, f.openErr
}

func (f *fakeExchange) SubmitMarketOrder(ctx context.Context, contract string, side types.Side, qty float64) (float64, error) {
	f.marketCalls++
	if f.orderErr != nil {
		return 0, f.orderErr
	}
	return f.fill, nil
}

func (f *fakeExchange) SubmitStopLoss(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	f.slCalls++
	f.slTrigger = trigger
	return f.slErr
}

func (f *fakeExchange) SubmitTakeProfit(ctx context.Context, contract string, side types.Side, trigger, qty float64) error {
	f.tpCalls++
	f.tpTrigger = trigger
	return f.tpErr
}

func (f *fakeExchange) Ping(ctx context.Context) (time.Duration, error) {
	return 0, nil
}

const contract = "ARPA_USDT"

func TestOpenRecordsFill(t *testing.T) {
	ex := &fakeExchange{fill: 0.045}
	m := New(ex, 1.0, 2.0)

	rec, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.State != StateActive {
		t.Errorf("expected ACTIVE, got %s", rec.State)
	}
	if rec.EntryPrice != 0.045 {
		t.Errorf("expected venue fill price, got %f", rec.EntryPrice)
	}
	if !m.Active(contract) {
		t.Error("expected the slot to be occupied")
	}
	if got := m.Lookup(contract); got == nil || got.Side != types.SideLong || got.Qty != 40 {
		t.Errorf("unexpected record: %+v", got)
	}
}

func TestOpenFallsBackToReferencePrice(t *testing.T) {
	ex := &fakeExchange{fill: 0}
	m := New(ex, 1.0, 2.0)

	rec, err := m.Open(context.Background(), contract, types.SideShort, 40, 0.044)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if rec.EntryPrice != 0.044 {
		t.Errorf("expected reference price fallback, got %f", rec.EntryPrice)
	}
}

func TestOpenWhileActiveIsNoOp(t *testing.T) {
	ex := &fakeExchange{fill: 0.045}
	m := New(ex, 1.0, 2.0)

	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	_, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044)
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
	if ex.marketCalls != 1 {
		t.Errorf("expected exactly one market order, got %d", ex.marketCalls)
	}
}

func TestOpenAdoptsExchangePosition(t *testing.T) {
	ex := &fakeExchange{open: true}
	m := New(ex, 1.0, 2.0)

	rec, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044)
	if !errors.Is(err, ErrAlreadyOpen) {
		t.Fatalf("expected ErrAlreadyOpen, got %v", err)
	}
	if rec.State != StateActive {
		t.Errorf("expected the unknown position to be adopted as ACTIVE, got %s", rec.State)
	}
	if ex.marketCalls != 0 {
		t.Error("no order may be submitted when the exchange already holds a position")
	}
}

func TestOpenVerificationFailureBlocksOrder(t *testing.T) {
	ex := &fakeExchange{openErr: errors.New("timeout")}
	m := New(ex, 1.0, 2.0)

	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044); err == nil {
		t.Fatal("expected error")
	}
	if ex.marketCalls != 0 {
		t.Error("verification failure must not reach order submission")
	}
	if m.Active(contract) {
		t.Error("expected the slot to stay free")
	}
}

func TestOpenOrderFailureResetsState(t *testing.T) {
	ex := &fakeExchange{orderErr: errors.New("rejected")}
	m := New(ex, 1.0, 2.0)

	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 0.044); err == nil {
		t.Fatal("expected error")
	}
	if m.Active(contract) {
		t.Error("failed entry must free the slot")
	}
}

func TestProtectionLevelsAsymmetric(t *testing.T) {
	m := New(&fakeExchange{}, 1.0, 2.0)

	long := &Record{State: StateActive, Side: types.SideLong, EntryPrice: 100}
	stop, target := m.ProtectionLevels(long)
	if math.Abs(stop-99) > 1e-9 || math.Abs(target-102) > 1e-9 {
		t.Errorf("long: expected 99/102, got %f/%f", stop, target)
	}

	short := &Record{State: StateActive, Side: types.SideShort, EntryPrice: 100}
	stop, target = m.ProtectionLevels(short)
	if math.Abs(stop-101) > 1e-9 || math.Abs(target-98) > 1e-9 {
		t.Errorf("short: expected 101/98, got %f/%f", stop, target)
	}
}

func TestAttachProtectionSubmitsBoth(t *testing.T) {
	ex := &fakeExchange{fill: 100}
	m := New(ex, 1.0, 2.0)
	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	stop, target, err := m.AttachProtection(context.Background(), contract)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if ex.slCalls != 1 || ex.tpCalls != 1 {
		t.Errorf("expected one stop and one target order, got %d/%d", ex.slCalls, ex.tpCalls)
	}
	if ex.slTrigger != stop || ex.tpTrigger != target {
		t.Error("triggers sent to the exchange must match the returned levels")
	}
}

func TestAttachProtectionFailureKeepsPosition(t *testing.T) {
	ex := &fakeExchange{fill: 100, slErr: errors.New("rejected")}
	m := New(ex, 1.0, 2.0)
	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, _, err := m.AttachProtection(context.Background(), contract)
	if err == nil {
		t.Fatal("expected error from the failed stop order")
	}
	if !m.Active(contract) {
		t.Error("a protection failure must not roll back the position")
	}
	if ex.tpCalls != 1 {
		t.Error("the take-profit must still be attempted after a stop failure")
	}
}

func TestReconcileFreesClosedSlot(t *testing.T) {
	ex := &fakeExchange{fill: 100}
	m := New(ex, 1.0, 2.0)
	if _, err := m.Open(context.Background(), contract, types.SideLong, 40, 100); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Still open on the venue: nothing changes.
	ex.open = true
	freed, err := m.Reconcile(context.Background(), contract)
	if err != nil || freed {
		t.Fatalf("expected no-op, got freed=%v err=%v", freed, err)
	}

	// Venue reports flat: the slot opens up.
	ex.open = false
	freed, err = m.Reconcile(context.Background(), contract)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !freed {
		t.Fatal("expected the slot to be freed")
	}
	if m.Active(contract) {
		t.Error("expected no active trade after reconciliation")
	}
}

func TestReconcileWithoutTradeIsNoOp(t *testing.T) {
	m := New(&fakeExchange{}, 1.0, 2.0)
	freed, err := m.Reconcile(context.Background(), contract)
	if err != nil || freed {
		t.Errorf("expected no-op, got freed=%v err=%v", freed, err)
	}
}
