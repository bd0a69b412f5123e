package civop

import "github.com/bturbeville/wfview-sub001/internal/rigstate"

// Reconciler drives the write-then-read discipline spec.md §4.3/§4.4
// describe: for each key an external agent marked Updated, it emits the
// write command, then the matching read command, then optimistically
// marks the key reconciled.
type Reconciler struct {
	Builder Builder
}

// Reconcile visits reg.Dirty() in key-enumeration order (spec.md §5:
// "the reconciler writing multiple keys issues their commands in
// key-enumeration order") and returns the frames to transmit, write
// before its matching read, for every key this builder knows how to
// drive. A key with no wire mapping is marked reconciled without
// producing any frame, rather than left dirty forever.
func (r Reconciler) Reconcile(reg *rigstate.Register) [][]byte {
	var frames [][]byte
	for _, k := range reg.Dirty() {
		e := reg.Get(k)
		if wf, rf, ok := r.commandsFor(k, e); ok {
			if wf != nil {
				frames = append(frames, wf)
			}
			if rf != nil {
				frames = append(frames, rf)
			}
		}
		reg.MarkReconciled(k)
	}
	return frames
}

func boolOf(v rigstate.Value) bool {
	b, _ := v.Bool()
	return b
}

func intOf(v rigstate.Value) int64 {
	i, _ := v.Int()
	return i
}

// commandsFor returns the write and read frames for one dirty key. ok is
// false for keys that are read-only (meters) or have no wire mapping;
// such keys are still cleared by the caller so they don't stay dirty.
func (r Reconciler) commandsFor(k rigstate.Key, e rigstate.Entry) (write, read []byte, ok bool) {
	b := r.Builder
	switch k {
	case rigstate.VFOAFreq:
		return b.SetFrequencyVFO(SubVFOSelectMain, uint64(intOf(e.Value))), b.ReadFrequencyVFO(SubVFOSelectMain), true
	case rigstate.VFOBFreq:
		return b.SetFrequencyVFO(SubVFOSelectSub, uint64(intOf(e.Value))), b.ReadFrequencyVFO(SubVFOSelectSub), true
	case rigstate.CurrentVFO:
		sub := byte(SubVFOSelectMain)
		if intOf(e.Value) == 1 {
			sub = SubVFOSelectSub
		}
		return b.SelectVFO(sub), nil, true
	case rigstate.PTT:
		return b.SetPTT(boolOf(e.Value)), b.ReadPTT(), true
	case rigstate.Split:
		if b.Caps.Flags.HasQuickSplitCmd {
			return b.SetQuickSplit(boolOf(e.Value)), b.ReadSplit(), true
		}
		return b.SetSplit(boolOf(e.Value)), b.ReadSplit(), true
	case rigstate.RITValue:
		return b.SetRIT(int(intOf(e.Value))), b.ReadRIT(), true
	case rigstate.RITEnable:
		return b.SetRITEnable(boolOf(e.Value)), b.ReadRITEnable(), true
	case rigstate.Attenuator:
		return b.SetAttenuator(byte(intOf(e.Value))), b.ReadAttenuator(), true
	case rigstate.Antenna:
		return b.SetAntenna(byte(intOf(e.Value)), nil), b.ReadAntenna(), true
	case rigstate.Passband:
		return b.SetPassbandWidth(byte(intOf(e.Value))), b.ReadPassbandWidth(), true
	case rigstate.AGCFunc:
		return b.SetAGC(byte(intOf(e.Value))), b.ReadAGC(), true
	case rigstate.DataMode:
		return b.SetDataMode(boolOf(e.Value), 0x01), b.ReadDataMode(), true
	case rigstate.PowerOnOff:
		if boolOf(e.Value) {
			return b.PowerOn(9600), nil, true
		}
		return b.PowerOff(), nil, true
	case rigstate.CTCSSTone:
		return b.SetCTCSSTone(uint16(intOf(e.Value))), b.ReadTone(SubToneCTCSS), true
	case rigstate.TSQLTone:
		return b.SetTSQLTone(uint16(intOf(e.Value))), b.ReadTone(SubToneTSQL), true
	case rigstate.CSQLCode:
		return b.SetCSQLCode(byte(intOf(e.Value))), b.ReadTone(SubToneCSQL), true
	}
	if sub, isLevel := levelSubFor(k); isLevel {
		return b.SetLevel(sub, byte(intOf(e.Value))), b.ReadLevel(sub), true
	}
	if sub, isFunc := funcSubFor(k); isFunc {
		return b.SetFunc(sub, boolOf(e.Value)), b.ReadFunc(sub), true
	}
	return nil, nil, false
}

// levelSubFor is the inverse of levelKeys (parser.go), used by the
// reconciler to find the wire sub-byte for a level-family key.
func levelSubFor(k rigstate.Key) (byte, bool) {
	for sub, key := range levelKeys {
		if key == k {
			return sub, true
		}
	}
	return 0, false
}

// funcSubFor is the inverse of funcKeys (parser.go), used by the
// reconciler to find the wire sub-byte for a toggle-family key.
func funcSubFor(k rigstate.Key) (byte, bool) {
	for sub, key := range funcKeys {
		if key == k {
			return sub, true
		}
	}
	return 0, false
}
