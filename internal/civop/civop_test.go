package civop

import (
	"bytes"
	"testing"

	"github.com/bturbeville/wfview-sub001/internal/bcd"
	"github.com/bturbeville/wfview-sub001/internal/civframe"
	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

func TestIdentifyBroadcastFrame(t *testing.T) {
	got := IdentifyBroadcast(DefaultControllerAddr)
	want := []byte{0xFE, 0xFE, 0x00, 0xE1, 0x19, 0x00, 0xFD}
	if !bytes.Equal(got, want) {
		t.Fatalf("IdentifyBroadcast() = % X, want % X", got, want)
	}
}

// Scenario 1 (spec.md §8): a broadcast rig-ID query, answered by an
// IC-7300, binds the controller's target address and resolves the
// catalogue entry.
func TestScenario1_IdentificationBindsIC7300(t *testing.T) {
	frames := civframe.Split([]byte{0xFE, 0xFE, 0xE1, 0x94, 0x19, 0x00, 0x94, 0xFD})
	if len(frames) != 1 {
		t.Fatalf("expected 1 parsed frame, got %d", len(frames))
	}
	id := NewIdentifier(nil)
	ident, event, ok := id.Feed(frames[0])
	if !ok {
		t.Fatalf("Feed did not recognize the rig-ID reply")
	}
	if event != "discovered_rig_id" {
		t.Fatalf("event = %q, want discovered_rig_id", event)
	}
	if ident.RigAddr != 0x94 {
		t.Fatalf("RigAddr = %#x, want 0x94", ident.RigAddr)
	}
	if !ident.Known || ident.Caps.ModelName != "IC-7300" {
		t.Fatalf("Caps = %+v, want known IC-7300", ident.Caps)
	}

	// A second reply to the same broadcast is a have_rig_id, not a
	// second discovery.
	_, event2, ok := id.Feed(frames[0])
	if !ok || event2 != "have_rig_id" {
		t.Fatalf("second reply: event = %q, ok=%v, want have_rig_id,true", event2, ok)
	}
}

// Scenario 2 (spec.md §8): a frequency-read reply decodes to 14,456,000 Hz
// and marks VFOAFREQ valid.
func TestScenario2_FrequencyReplyUpdatesRegister(t *testing.T) {
	frames := civframe.Split([]byte{0xFE, 0xFE, 0xE1, 0x94, 0x03, 0x00, 0x60, 0x45, 0x14, 0x00, 0x00, 0xFD})
	if len(frames) != 1 {
		t.Fatalf("expected 1 parsed frame, got %d", len(frames))
	}
	caps, _ := rigcat.Lookup(0x94)
	p := NewParser(Identification{RigAddr: 0x94, Caps: caps}, DefaultControllerAddr)
	reg := rigstate.NewRegister()

	ack, err := p.Parse(frames[0], reg)
	if ack != NoAck || err != nil {
		t.Fatalf("Parse() = %v, %v, want NoAck, nil", ack, err)
	}
	e := reg.Get(rigstate.VFOAFreq)
	if !e.Valid {
		t.Fatalf("VFOAFreq not marked valid")
	}
	hz, _ := e.Value.Int()
	if hz != 14_456_000 {
		t.Fatalf("VFOAFreq = %d, want 14456000", hz)
	}
}

// Scenario 3 (spec.md §8): setting 14,250,000 Hz on an IC-7300 session
// emits the exact wire frame the spec names.
func TestScenario3_SetFrequencyEmitsWireFrame(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	b := NewBuilder(0x94, caps, DefaultControllerAddr)
	got := b.SetFrequency(14_250_000)
	want := []byte{0xFE, 0xFE, 0x94, 0xE1, 0x05, 0x00, 0x00, 0x25, 0x14, 0x00, 0xFD}
	if !bytes.Equal(got, want) {
		t.Fatalf("SetFrequency(14250000) = % X, want % X", got, want)
	}
}

// Scenario 5 (spec.md §8): a frame from an address other than the bound
// rig's CI-V address is ignored outright.
func TestScenario5_FrameFromWrongAddressIgnored(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	p := NewParser(Identification{RigAddr: 0x94, Caps: caps}, DefaultControllerAddr)
	reg := rigstate.NewRegister()

	wrong := civframe.Frame{To: DefaultControllerAddr, From: 0xAA, Cmd: cmdReadFreq, Payload: []byte{0x00, 0x60, 0x45, 0x14, 0x00}}
	_, err := p.Parse(wrong, reg)
	if err != nil {
		t.Fatalf("Parse() returned an error for a frame that should be silently ignored: %v", err)
	}
	if reg.Get(rigstate.VFOAFreq).Valid {
		t.Fatalf("a frame from the wrong address must not update state")
	}
}

func TestUnknownSubCommandIgnoredWithoutAbortingTheStream(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	p := NewParser(Identification{RigAddr: 0x94, Caps: caps}, DefaultControllerAddr)
	reg := rigstate.NewRegister()

	unknown := civframe.Frame{To: DefaultControllerAddr, From: 0x94, Cmd: cmdLevel, Payload: []byte{0x7F, 0x00, 0x00}}
	ack, err := p.Parse(unknown, reg)
	if ack != NoAck || err != nil {
		t.Fatalf("unknown sub-command must not surface an error: ack=%v err=%v", ack, err)
	}

	// the stream continues normally afterward
	ok := civframe.Frame{To: DefaultControllerAddr, From: 0x94, Cmd: cmdLevel, Payload: []byte{LevelAF, 0x02, 0x55}}
	if _, err := p.Parse(ok, reg); err != nil {
		t.Fatalf("subsequent valid frame failed to parse: %v", err)
	}
	if !reg.Get(rigstate.AFLevel).Valid {
		t.Fatalf("AFLevel should have been confirmed by the valid frame")
	}
}

func TestNegativeAckReportedWithoutTouchingState(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	p := NewParser(Identification{RigAddr: 0x94, Caps: caps}, DefaultControllerAddr)
	reg := rigstate.NewRegister()

	f := civframe.Frame{To: DefaultControllerAddr, From: 0x94, Cmd: 0xFA}
	ack, err := p.Parse(f, reg)
	if ack != NegativeAck || err == nil {
		t.Fatalf("Parse(FA) = %v, %v, want NegativeAck, non-nil", ack, err)
	}
}

// SPEC_FULL.md §3.1: a model with HasQuickSplitCmd routes Split writes
// through its quick-split command instead of the 0F 00/01 convention.
func TestReconcilerUsesQuickSplitWhenModelHasIt(t *testing.T) {
	caps, known := rigcat.Lookup(0x88)
	if !known || !caps.Flags.HasQuickSplitCmd {
		t.Fatalf("IC-7100 fixture must have HasQuickSplitCmd set")
	}
	b := NewBuilder(0x88, caps, DefaultControllerAddr)
	r := Reconciler{Builder: b}
	reg := rigstate.NewRegister()
	reg.Set(rigstate.Split, rigstate.BoolValue(true))

	frames := r.Reconcile(reg)
	wantWrite := b.SetQuickSplit(true)
	if len(frames) != 2 || !bytes.Equal(frames[0], wantWrite) {
		t.Fatalf("Reconcile() = % X, want quick-split write % X first", frames, wantWrite)
	}
}

func TestSetQuickSplitNilWithoutModelCommand(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94) // IC-7300 has no quick-split command
	b := NewBuilder(0x94, caps, DefaultControllerAddr)
	if got := b.SetQuickSplit(true); got != nil {
		t.Fatalf("SetQuickSplit() = % X on a model with no quick-split command, want nil", got)
	}
}

func TestEnableTransceiveUsesPerModelAddress(t *testing.T) {
	caps, _ := rigcat.Lookup(0x88)
	b := NewBuilder(0x88, caps, DefaultControllerAddr)
	got := b.EnableTransceive()
	want := b.PerModel(caps.Addresses.TransceiveEnable, 0x01)
	if !bytes.Equal(got, want) {
		t.Fatalf("EnableTransceive() = % X, want % X", got, want)
	}
}

func TestEnableTransceiveNilWhenUnsupported(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94) // IC-7300 leaves TransceiveEnable at its zero default
	b := NewBuilder(0x94, caps, DefaultControllerAddr)
	if got := b.EnableTransceive(); got != nil {
		t.Fatalf("EnableTransceive() = % X, want nil", got)
	}
}

// SPEC_FULL.md §3.1: a band-stack read reply lands in the side table, not
// in the live rigstate.Register keys.
func TestBandStackReplyPopulatesSideTable(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	p := NewParser(Identification{RigAddr: 0x94, Caps: caps}, DefaultControllerAddr)
	reg := rigstate.NewRegister()

	payload := []byte{Sub1ABandStack, 0x02, 0x01} // band 2, slot 1
	payload = append(payload, bcd.EncodeFrequency(14_250_000, frequencyWireBytes)...)
	payload = append(payload, 0x01, 0x02, 0x00)
	payload = append(payload, civframe.EncodeTone(civframe.Tone{Value: 885})...)
	f := civframe.Frame{To: civframe.Broadcast, From: 0x94, Cmd: cmdGeneric1A, Payload: payload}

	if _, err := p.Parse(f, reg); err != nil {
		t.Fatalf("Parse() error: %v", err)
	}
	got := p.BandStack.Get(0x02, 0x01)
	if got.Frequency != 14_250_000 || got.Mode != 0x01 || got.Filter != 0x02 || got.Tone != 885 {
		t.Fatalf("BandStack.Get(2,1) = %+v, want freq=14250000 mode=1 filter=2 tone=885", got)
	}
}

func TestSetBandStackEmitsWireFrame(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	b := NewBuilder(0x94, caps, DefaultControllerAddr)
	got := b.SetBandStack(0x02, 0x01, 14_250_000, 0x01, 0x02, false, civframe.Tone{Value: 885})
	if len(got) < 6 || got[4] != cmdGeneric1A || got[5] != Sub1ABandStack {
		t.Fatalf("SetBandStack() = % X, want cmd 1A sub 01 frame", got)
	}
}

func TestReconcilerEmitsWriteThenReadAndClearsUpdated(t *testing.T) {
	caps, _ := rigcat.Lookup(0x94)
	b := NewBuilder(0x94, caps, DefaultControllerAddr)
	r := Reconciler{Builder: b}
	reg := rigstate.NewRegister()
	reg.Set(rigstate.PTT, rigstate.BoolValue(true))

	frames := r.Reconcile(reg)
	if len(frames) != 2 {
		t.Fatalf("expected write+read frame pair, got %d frames", len(frames))
	}
	wantWrite := b.SetPTT(true)
	wantRead := b.ReadPTT()
	if !bytes.Equal(frames[0], wantWrite) || !bytes.Equal(frames[1], wantRead) {
		t.Fatalf("Reconcile() = % X, want write % X then read % X", frames, wantWrite, wantRead)
	}
	e := reg.Get(rigstate.PTT)
	if e.Updated || !e.Valid {
		t.Fatalf("after reconciliation: Updated=%v Valid=%v, want false,true", e.Updated, e.Valid)
	}
}
