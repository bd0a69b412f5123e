// Package spectrum reassembles the multi-fragment CI-V scope/waterfall
// frames (command 0x27, sub-command 0x00) into one pixel line per
// sweep. A sweep arrives as 1..spect_seq_max fragments on whatever
// transport carries CI-V traffic; fragment 1 carries the sweep header
// (scope mode, frequency edges, out-of-range flag) and no pixels,
// fragments 2..N carry pixel bytes, and the assembled line is only
// delivered once fragment N (== the rig's spect_seq_max) arrives in
// order.
package spectrum

import (
	"github.com/bturbeville/wfview-sub001/internal/bcd"
	"github.com/bturbeville/wfview-sub001/internal/civframe"
)

// Mode is the scope's frequency-axis layout, carried in fragment 1.
type Mode int

const (
	ModeCenter  Mode = 0
	ModeFixed   Mode = 1
	ModeScrollC Mode = 2
	ModeScrollF Mode = 3
)

const (
	spectrumCmd    = 0x27
	fragmentSubCmd = 0x00

	idxVFO           = 1
	idxSequence      = 2
	idxMode          = 4
	startFreqOffset  = 8
	endFreqOffset    = 13
	freqFieldLen     = 5
	outOfRangeIdx    = 15
	minLenOutOfRange = outOfRangeIdx + 1
	pixelHeaderLen   = 4
)

// Line is one fully reassembled sweep: a start/end frequency pair and
// the pixel amplitude bytes (0..amp_max) spanning them.
type Line struct {
	Mode       Mode
	StartHz    uint64
	EndHz      uint64
	OutOfRange bool
	Pixels     []byte
}

// Assembler accumulates fragments for a single rig's scope stream.
// It is not safe for concurrent use; callers serialize access per rig
// the same way the rig-state register serializes access per key.
type Assembler struct {
	seqMax int

	active  bool
	nextSeq int

	mode       Mode
	outOfRange bool
	startHz    uint64
	endHz      uint64
	pixels     []byte
}

// NewAssembler builds an assembler for a rig whose capability record
// gives spect_seq_max as the final fragment number of a complete sweep.
func NewAssembler(seqMax int) *Assembler {
	return &Assembler{seqMax: seqMax}
}

// Feed processes one decoded CI-V frame. It returns a non-nil Line and
// ok=true only when the frame completes a sweep (its fragment number
// equals seqMax and every prior fragment arrived in order). Frames that
// are not spectrum-fragment frames, that address the non-primary VFO,
// or that arrive out of sequence are consumed with ok=false; an
// out-of-sequence fragment discards whatever was accumulated so far.
func (a *Assembler) Feed(f civframe.Frame) (*Line, bool) {
	if f.Cmd != spectrumCmd || len(f.Payload) <= idxSequence {
		return nil, false
	}
	if f.Payload[0] != fragmentSubCmd {
		return nil, false
	}

	vfo, ok := bcd.DecodeByte(f.Payload[idxVFO])
	if !ok {
		a.reset()
		return nil, false
	}
	if vfo != 0 {
		// Non-primary VFO: discarded without disturbing an in-progress
		// reassembly on the primary VFO.
		return nil, false
	}

	seq, ok := bcd.DecodeByte(f.Payload[idxSequence])
	if !ok {
		a.reset()
		return nil, false
	}
	seqN := int(seq)

	switch {
	case seqN == 1:
		a.beginSweep(f.Payload)
		return nil, false

	case a.active && seqN == a.nextSeq && seqN > 1 && seqN < a.seqMax:
		a.appendPixels(f.Payload)
		a.nextSeq++
		return nil, false

	case a.active && seqN == a.nextSeq && seqN == a.seqMax:
		a.appendPixels(f.Payload)
		line := &Line{
			Mode:       a.mode,
			StartHz:    a.startHz,
			EndHz:      a.endHz,
			OutOfRange: a.outOfRange,
			Pixels:     append([]byte(nil), a.pixels...),
		}
		a.reset()
		return line, true

	default:
		a.reset()
		return nil, false
	}
}

func (a *Assembler) beginSweep(payload []byte) {
	a.reset()
	if len(payload) <= idxMode {
		return
	}
	modeRaw, ok := bcd.DecodeByte(payload[idxMode])
	if !ok {
		return
	}
	a.mode = Mode(modeRaw)

	if len(payload) >= minLenOutOfRange {
		a.outOfRange = payload[outOfRangeIdx] != 0
	}

	if len(payload) >= endFreqOffset+freqFieldLen {
		first, ok1 := bcd.DecodeUint(payload[startFreqOffset : startFreqOffset+freqFieldLen])
		second, ok2 := bcd.DecodeUint(payload[endFreqOffset : endFreqOffset+freqFieldLen])
		if ok1 && ok2 {
			if a.mode == ModeCenter {
				center, halfSpan := first, second
				a.startHz = center - halfSpan
				a.endHz = center + halfSpan
			} else {
				a.startHz = first
				a.endHz = second
			}
		}
	}

	a.active = true
	a.nextSeq = 2
}

func (a *Assembler) appendPixels(payload []byte) {
	if len(payload) > pixelHeaderLen {
		a.pixels = append(a.pixels, payload[pixelHeaderLen:]...)
	}
}

// reset discards any in-progress sweep. Called on out-of-order
// fragments and after a sweep completes, per spec: any fragment
// received out of order restarts accumulation rather than repairing it.
func (a *Assembler) reset() {
	a.active = false
	a.nextSeq = 0
	a.mode = 0
	a.outOfRange = false
	a.startHz = 0
	a.endHz = 0
	a.pixels = nil
}
