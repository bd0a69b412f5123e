package rigstate

import (
	"testing"

	"github.com/bturbeville/wfview-sub001/internal/rigcat"
)

func TestSetMarksUpdatedAndConfirmClearsIt(t *testing.T) {
	r := NewRegister()
	r.Set(VFOAFreq, IntValue(14_250_000))
	e := r.Get(VFOAFreq)
	if !e.Updated || e.Valid {
		t.Fatalf("after Set: got Updated=%v Valid=%v, want true,false", e.Updated, e.Valid)
	}

	r.Confirm(VFOAFreq, IntValue(14_250_000))
	e = r.Get(VFOAFreq)
	if e.Updated || !e.Valid {
		t.Fatalf("after Confirm: got Updated=%v Valid=%v, want false,true", e.Updated, e.Valid)
	}
}

func TestDirtyIsDeterministicEnumerationOrder(t *testing.T) {
	r := NewRegister()
	r.Set(MeterS, IntValue(5))
	r.Set(VFOAFreq, IntValue(1))
	r.Set(PTT, BoolValue(true))

	dirty := r.Dirty()
	// VFOAFreq < PTT < MeterS in enumeration order (see keys.go)
	if len(dirty) != 3 {
		t.Fatalf("expected 3 dirty keys, got %d", len(dirty))
	}
	if !(dirty[0] == VFOAFreq && dirty[1] == PTT && dirty[2] == MeterS) {
		t.Fatalf("dirty keys not in enumeration order: %v", dirty)
	}
}

func TestReconciliationClearsAllUpdatedFlags(t *testing.T) {
	r := NewRegister()
	for _, k := range []Key{VFOAFreq, Mode, PTT} {
		r.Set(k, IntValue(1))
	}
	for _, k := range r.Dirty() {
		r.ClearUpdated(k)
	}
	if len(r.Dirty()) != 0 {
		t.Fatalf("expected no dirty keys after reconciliation, got %v", r.Dirty())
	}
}

func TestSubscribeReceivesChangeAndNeverBlocks(t *testing.T) {
	r := NewRegister()
	ch := make(chan Change, 1)
	r.Subscribe(ch)
	r.Set(VFOAFreq, IntValue(7_000_000))
	select {
	case c := <-ch:
		if c.Key != VFOAFreq {
			t.Fatalf("got change for %v, want VFOAFreq", c.Key)
		}
	default:
		t.Fatalf("expected a buffered change")
	}
	// channel is now empty again; a second Set with a full buffer must not block
	ch2 := make(chan Change) // unbuffered, will never be drained
	r.Subscribe(ch2)
	done := make(chan struct{})
	go func() {
		r.Set(Mode, IntValue(1))
		close(done)
	}()
	<-done // if Set blocked on ch2, this would hang and the test would time out
}

func TestDefaultPassbandOverriddenByRigReportedValue(t *testing.T) {
	hz, ok := DefaultPassband(rigcat.USB, 1, false)
	if !ok || hz != 3000 {
		t.Fatalf("DefaultPassband(USB,1) = %d,%v want 3000,true", hz, ok)
	}

	r := NewRegister()
	// Passband not yet valid: caller falls back to DefaultPassband.
	if r.Get(Passband).Valid {
		t.Fatalf("Passband should start invalid")
	}
	// Rig reports an actual value: it must take precedence from then on.
	r.Confirm(Passband, IntValue(2700))
	e := r.Get(Passband)
	if !e.Valid {
		t.Fatalf("Passband should be valid after rig confirmation")
	}
	got, _ := e.Value.Int()
	if got != 2700 {
		t.Fatalf("rig-reported passband = %d, want 2700 (must not be overwritten by the default table)", got)
	}
}
