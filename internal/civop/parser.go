package civop

import (
	"github.com/bturbeville/wfview-sub001/internal/bcd"
	"github.com/bturbeville/wfview-sub001/internal/civerr"
	"github.com/bturbeville/wfview-sub001/internal/civframe"
	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

// Ack distinguishes the two acknowledgement frames a rig can send in
// reply to a command (cmd 0xFA/0xFB, spec.md §4.3).
type Ack int

const (
	NoAck Ack = iota
	PositiveAck
	NegativeAck
)

// Parser dispatches inbound CI-V frames from an identified rig into a
// rigstate.Register. Unknown (cmd, sub) pairs are silently ignored, per
// spec.md §4.3's parser invariant; Parse never returns an error for them.
type Parser struct {
	RigAddr        byte
	Caps           rigcat.Capability
	ControllerAddr byte
	BandStack      *rigstate.BandStack
}

// NewParser constructs a Parser bound to the rig identification bound by
// the Identifier. ctrlAddr is this session's controller identity, the
// same value passed to NewBuilder and IdentifyBroadcast.
func NewParser(ident Identification, ctrlAddr byte) Parser {
	return Parser{
		RigAddr:        ident.RigAddr,
		Caps:           ident.Caps,
		ControllerAddr: ctrlAddr,
		BandStack:      rigstate.NewBandStack(),
	}
}

// Parse applies one frame's state to reg. It returns the ack kind if the
// frame was a bare FA/FB acknowledgement (in which case no state is
// touched), or NoAck for a normal data frame. Frames from any address
// other than the bound rig, or that are our own local echo, are ignored
// and Parse returns (NoAck, nil) without consulting reg.
func (p Parser) Parse(f civframe.Frame, reg *rigstate.Register) (Ack, error) {
	if civframe.IsLocalEcho(f, p.ControllerAddr) {
		return NoAck, nil
	}
	if f.From != p.RigAddr {
		return NoAck, nil
	}
	switch f.Cmd {
	case cmdNegativeAck:
		return NegativeAck, civerr.New(civerr.NegativeAck, "rig rejected the last command")
	case cmdPositiveAck:
		return PositiveAck, nil
	}
	p.dispatch(f, reg)
	return NoAck, nil
}

func (p Parser) currentVFOIsB(reg *rigstate.Register) bool {
	v, ok := reg.Get(rigstate.CurrentVFO).Value.Int()
	return ok && v == 1
}

// dispatch is the payload[0]/payload[1] switch spec.md §4.3 describes.
// Malformed payloads (wrong length, bad BCD nibbles) are dropped exactly
// like an unrecognized (cmd, sub) pair: the stream is never aborted.
func (p Parser) dispatch(f civframe.Frame, reg *rigstate.Register) {
	switch f.Cmd {
	case cmdReadFreq:
		p.confirmFrequency(reg, f.Payload)
	case cmdVFOFreq:
		if len(f.Payload) < 2 {
			return
		}
		p.confirmFrequencyForVFO(reg, f.Payload[0], f.Payload[1:])
	case cmdReadMode, cmdSetMode:
		p.confirmMode(reg, f.Payload)
	case cmdVFOMode:
		if len(f.Payload) < 3 {
			return
		}
		p.confirmMode(reg, f.Payload[1:])
	case cmdSelectVFO:
		p.confirmSelectVFO(reg, f.Payload)
	case cmdRptOffsetRead, cmdRptOffsetSet:
		p.confirmRepeaterOffset(reg, f.Payload)
	case cmdSplit:
		p.confirmSplit(reg, f.Payload)
	case cmdAttenuator:
		p.confirmByteLevel(reg, rigstate.Attenuator, f.Payload)
	case cmdAntenna:
		p.confirmAntenna(reg, f.Payload)
	case cmdLevel:
		p.confirmLevel(reg, f.Payload)
	case cmdMeter:
		p.confirmMeter(reg, f.Payload)
	case cmdFunc:
		p.confirmFunc(reg, f.Payload)
	case cmdPower:
		p.confirmByteLevel(reg, rigstate.PowerOnOff, f.Payload)
	case cmdGeneric1A:
		p.confirm1A(reg, f.Payload)
	case cmdTone:
		p.confirmTone(reg, f.Payload)
	case cmdPTTATU:
		p.confirmPTTATU(reg, f.Payload)
	case cmdRIT:
		p.confirmRIT(reg, f.Payload)
	}
}

func (p Parser) confirmFrequency(reg *rigstate.Register, payload []byte) {
	hz, ok := bcd.DecodeFrequency(payload)
	if !ok {
		return
	}
	key := rigstate.VFOAFreq
	if p.currentVFOIsB(reg) {
		key = rigstate.VFOBFreq
	}
	reg.Confirm(key, rigstate.IntValue(int64(hz)))
}

func (p Parser) confirmFrequencyForVFO(reg *rigstate.Register, vfo byte, body []byte) {
	hz, ok := bcd.DecodeFrequency(body)
	if !ok {
		return
	}
	key := rigstate.VFOAFreq
	if vfo == SubVFOSelectSub {
		key = rigstate.VFOBFreq
	}
	reg.Confirm(key, rigstate.IntValue(int64(hz)))
}

func (p Parser) confirmMode(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	kind, ok := p.Caps.ModeKindForByte(payload[0])
	if ok {
		reg.Confirm(rigstate.Mode, rigstate.IntValue(int64(kind)))
	}
	if len(payload) >= 2 {
		reg.Confirm(rigstate.Filter, rigstate.IntValue(int64(payload[1])))
	}
}

func (p Parser) confirmSelectVFO(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	switch payload[0] {
	case SubVFOSelectMain:
		reg.Confirm(rigstate.CurrentVFO, rigstate.IntValue(0))
	case SubVFOSelectSub:
		reg.Confirm(rigstate.CurrentVFO, rigstate.IntValue(1))
	}
}

func (p Parser) confirmRepeaterOffset(reg *rigstate.Register, payload []byte) {
	v, ok := bcd.DecodeUint(payload)
	if !ok {
		return
	}
	reg.Confirm(rigstate.Duplex, rigstate.IntValue(int64(v)*10))
}

func (p Parser) confirmSplit(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	reg.Confirm(rigstate.Split, rigstate.BoolValue(payload[0] == SubSplitOn))
}

func (p Parser) confirmByteLevel(reg *rigstate.Register, key rigstate.Key, payload []byte) {
	if len(payload) < 1 {
		return
	}
	reg.Confirm(key, rigstate.IntValue(int64(payload[0])))
}

func (p Parser) confirmAntenna(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	reg.Confirm(rigstate.Antenna, rigstate.IntValue(int64(payload[0])))
	if len(payload) >= 2 {
		reg.Confirm(rigstate.AntennaType, rigstate.IntValue(int64(payload[1])))
	}
}

// levelKeys maps a 14-family sub-byte to its register key.
var levelKeys = map[byte]rigstate.Key{
	LevelAF:        rigstate.AFLevel,
	LevelRF:        rigstate.RFLevel,
	LevelSQL:       rigstate.SQLLevel,
	LevelIFShift:   rigstate.IFShift,
	LevelTBPFInner: rigstate.TBPFInner,
	LevelTBPFOuter: rigstate.TBPFOuter,
	LevelCWPitch:   rigstate.CWPitch,
	LevelMic:       rigstate.MicLevel,
	LevelKeySpeed:  rigstate.KeySpeed,
	LevelNotch:     rigstate.KeyNotch,
	LevelComp:      rigstate.CompLevel,
	LevelMonitor:   rigstate.MonitorLevel,
	LevelVOX:       rigstate.VOXLevel,
	LevelAntiVOX:   rigstate.AntiVOXLevel,
}

func (p Parser) confirmLevel(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	key, ok := levelKeys[payload[0]]
	if !ok {
		return
	}
	v, ok := bcd.DecodeUint(payload[1:])
	if !ok {
		return
	}
	reg.Confirm(key, rigstate.IntValue(int64(v)))
}

// meterKeys maps a 15-family sub-byte to its register key.
var meterKeys = map[byte]rigstate.Key{
	MeterS:      rigstate.MeterS,
	MeterCenter: rigstate.MeterCenter,
	MeterPower:  rigstate.MeterPower,
	MeterSWR:    rigstate.MeterSWR,
	MeterALC:    rigstate.MeterALC,
	MeterComp:   rigstate.MeterComp,
	MeterVd:     rigstate.MeterVd,
	MeterId:     rigstate.MeterId,
}

func (p Parser) confirmMeter(reg *rigstate.Register, payload []byte) {
	if len(payload) < 1 {
		return
	}
	key, ok := meterKeys[payload[0]]
	if !ok {
		return
	}
	v, ok := bcd.DecodeUint(payload[1:])
	if !ok {
		return
	}
	// Meter updates are high-frequency telemetry; callers (C11) should not
	// log every one (spec.md §4.3: "volume too high").
	reg.Confirm(key, rigstate.IntValue(int64(v)))
}

// funcKeys maps a 16-family sub-byte to its register key.
var funcKeys = map[byte]rigstate.Key{
	FuncNB:          rigstate.NBFunc,
	FuncNR:          rigstate.NRFunc,
	FuncANF:         rigstate.ANFFunc,
	FuncTone:        rigstate.ToneFunc,
	FuncTSQL:        rigstate.TSQLFunc,
	FuncComp:        rigstate.CompFunc,
	FuncMon:         rigstate.MonFunc,
	FuncVOX:         rigstate.VOXFunc,
	FuncBreakInSemi: rigstate.BreakInSemi,
	FuncBreakInFull: rigstate.BreakInFull,
	FuncMN:          rigstate.MNFunc,
	FuncTuner:       rigstate.TunerFunc,
	FuncLock:        rigstate.LockFunc,
	FuncScope:       rigstate.ScopeFunc,
	FuncSatellite:   rigstate.SatelliteFunc,
}

func (p Parser) confirmFunc(reg *rigstate.Register, payload []byte) {
	if len(payload) < 2 {
		return
	}
	key, ok := funcKeys[payload[0]]
	if !ok {
		return
	}
	reg.Confirm(key, rigstate.BoolValue(payload[1] != 0))
}

func (p Parser) confirm1A(reg *rigstate.Register, payload []byte) {
	if len(payload) < 2 {
		return
	}
	switch payload[0] {
	case Sub1ABandStack:
		p.confirmBandStack(payload[1:])
	case Sub1APassbandWidth:
		reg.Confirm(rigstate.Passband, rigstate.IntValue(int64(payload[1])))
	case Sub1AAGC:
		reg.Confirm(rigstate.AGCFunc, rigstate.IntValue(int64(payload[1])))
	case Sub1ADataMode:
		reg.Confirm(rigstate.DataMode, rigstate.BoolValue(payload[1] != 0))
	}
}

// bandStackRegWireBytes is band+slot (2 bytes) followed by a
// BandStackReg: a frequencyWireBytes BCD frequency, mode, filter,
// data-mode flag, and a 3-byte tone field (spec.md §3.1).
const bandStackRegWireBytes = 2 + frequencyWireBytes + 1 + 1 + 1 + 3

// confirmBandStack decodes a 1A/01 reply body (band, slot, register
// contents) into p.BandStack. It never touches reg: a band-stack slot is
// a saved memory, not current rig state.
func (p Parser) confirmBandStack(body []byte) {
	if p.BandStack == nil || len(body) < bandStackRegWireBytes {
		return
	}
	band, slot := body[0], body[1]
	rest := body[2:]
	freq, ok := bcd.DecodeFrequency(rest[:frequencyWireBytes])
	if !ok {
		return
	}
	rest = rest[frequencyWireBytes:]
	modeByte, filter, dataModeByte := rest[0], rest[1], rest[2]
	tone, ok := civframe.DecodeTone(rest[3:6])
	if !ok {
		return
	}
	p.BandStack.Set(band, slot, rigstate.BandStackReg{
		Frequency: freq,
		Mode:      modeByte,
		Filter:    filter,
		DataMode:  dataModeByte != 0,
		Tone:      tone.Value,
	})
}

func (p Parser) confirmTone(reg *rigstate.Register, payload []byte) {
	if len(payload) < 2 {
		return
	}
	switch payload[0] {
	case SubToneCTCSS:
		if v, ok := bcd.DecodeUint(payload[1:]); ok {
			reg.Confirm(rigstate.CTCSSTone, rigstate.IntValue(int64(v)))
		}
	case SubToneTSQL:
		if v, ok := bcd.DecodeUint(payload[1:]); ok {
			reg.Confirm(rigstate.TSQLTone, rigstate.IntValue(int64(v)))
		}
	case SubToneDTCS:
		if len(payload) >= 4 {
			if v, ok := bcd.DecodeUint(payload[2:]); ok {
				reg.Confirm(rigstate.DTCSCode, rigstate.IntValue(int64(v)))
			}
		}
	case SubToneCSQL:
		reg.Confirm(rigstate.CSQLCode, rigstate.IntValue(int64(payload[1])))
	}
}

func (p Parser) confirmPTTATU(reg *rigstate.Register, payload []byte) {
	if len(payload) < 2 {
		return
	}
	switch payload[0] {
	case SubPTT:
		reg.Confirm(rigstate.PTT, rigstate.BoolValue(payload[1] != 0))
	case SubATU:
		reg.Confirm(rigstate.TunerFunc, rigstate.BoolValue(payload[1] != 0))
	}
}

func (p Parser) confirmRIT(reg *rigstate.Register, payload []byte) {
	if len(payload) < 2 {
		return
	}
	switch payload[0] {
	case SubRITValue:
		if len(payload) < 4 {
			return
		}
		u, ok := bcd.DecodeUint(payload[2:])
		if !ok {
			return
		}
		v := int64(u)
		if payload[1] != 0 {
			v = -v
		}
		reg.Confirm(rigstate.RITValue, rigstate.IntValue(v))
	case SubRITEnable:
		reg.Confirm(rigstate.RITEnable, rigstate.BoolValue(payload[1] != 0))
	}
}
