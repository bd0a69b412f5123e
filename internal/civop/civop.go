// Package civop is the command builder and parser (C3): for each rig
// operation it emits the matching CI-V cmd+sub+payload, and dispatches
// inbound frames into a rigstate.Register. The full command space follows
// spec.md §6; sub-command assignments not pinned down by a concrete wire
// byte in that table are taken in the listed order, grounded against the
// real Icom CI-V reference where the table is silent.
package civop

import (
	"github.com/bturbeville/wfview-sub001/internal/civframe"
	"github.com/bturbeville/wfview-sub001/internal/rigcat"
)

// CI-V command bytes (spec.md §6).
const (
	cmdReadFreq       byte = 0x03
	cmdReadMode       byte = 0x04
	cmdSetFreq        byte = 0x05
	cmdSetMode        byte = 0x06
	cmdSelectVFO      byte = 0x07
	cmdRptOffsetRead  byte = 0x0C
	cmdRptOffsetSet   byte = 0x0D
	cmdSplit          byte = 0x0F
	cmdAttenuator     byte = 0x11
	cmdAntenna        byte = 0x12
	cmdLevel          byte = 0x14
	cmdMeter          byte = 0x15
	cmdFunc           byte = 0x16
	cmdSendCW         byte = 0x17
	cmdPower          byte = 0x18
	cmdReadID         byte = 0x19
	cmdGeneric1A      byte = 0x1A
	cmdTone           byte = 0x1B
	cmdPTTATU         byte = 0x1C
	cmdRIT            byte = 0x21
	cmdVFOFreq        byte = 0x25
	cmdVFOMode        byte = 0x26
	cmdSpectrum       byte = 0x27
	cmdNegativeAck    byte = 0xFA
	cmdPositiveAck    byte = 0xFB
)

// Sub-command bytes for the 07 select/exchange-VFO family.
const (
	SubVFOSelectMain byte = 0x00
	SubVFOSelectSub  byte = 0x01
	SubVFOEqualize   byte = 0xA0
	SubVFOMainToSub  byte = 0xB0
	SubVFOSubToMain  byte = 0xB1
)

// Sub-command bytes for the 0F split family.
const (
	SubSplitOff byte = 0x00
	SubSplitOn  byte = 0x01
)

// Sub-command bytes for the 14 level family (spec.md §6: "01..17").
// AF/RF/SQL and the tail (key-speed through anti-VOX) are pinned down by
// the original CI-V reference; the middle of the range is assigned in the
// order the spec's parenthetical list gives the names.
const (
	LevelAF        byte = 0x01
	LevelRF        byte = 0x02
	LevelSQL       byte = 0x03
	LevelIFShift   byte = 0x05
	LevelNR        byte = 0x06
	LevelTBPFInner byte = 0x07
	LevelTBPFOuter byte = 0x08
	LevelCWPitch   byte = 0x09
	LevelTXPower   byte = 0x0A
	LevelMic       byte = 0x0B
	LevelKeySpeed  byte = 0x0C
	LevelNotch     byte = 0x0D
	LevelComp      byte = 0x0E
	LevelNB        byte = 0x12
	LevelMonitor   byte = 0x15
	LevelVOX       byte = 0x16
	LevelAntiVOX   byte = 0x17
)

// Sub-command bytes for the 15 meter family (spec.md §6: "02..16"),
// grounded directly on the Icom CI-V reference's meter table.
const (
	MeterS      byte = 0x02
	MeterCenter byte = 0x04
	MeterPower  byte = 0x11
	MeterSWR    byte = 0x12
	MeterALC    byte = 0x13
	MeterComp   byte = 0x14
	MeterVd     byte = 0x15
	MeterId     byte = 0x16
)

// Sub-command bytes for the 16 feature-toggle family (spec.md §6:
// "02/22/40-48/50/5A/5D/65"), assigned in the order the wire values list.
const (
	FuncNB          byte = 0x02
	FuncNR          byte = 0x22
	FuncANF         byte = 0x40
	FuncTone        byte = 0x41
	FuncTSQL        byte = 0x42
	FuncComp        byte = 0x43
	FuncMon         byte = 0x44
	FuncVOX         byte = 0x45
	FuncBreakInSemi byte = 0x46
	FuncBreakInFull byte = 0x47
	FuncMN          byte = 0x48
	FuncTuner       byte = 0x50
	FuncLock        byte = 0x5A
	FuncScope       byte = 0x5D
	FuncSatellite   byte = 0x65
)

// Sub-command bytes for the 1A generic family (spec.md §6:
// "01/03/04/05/06/07/09").
const (
	Sub1ABandStack     byte = 0x01
	Sub1APassbandWidth byte = 0x03
	Sub1AAGC           byte = 0x04
	Sub1ADataMode      byte = 0x05
	Sub1AIPPlus        byte = 0x06
	Sub1AMute          byte = 0x07
	Sub1APerModel      byte = 0x09
)

// Sub-command bytes for the 1B tone family (spec.md §6: "00/01/02/07").
const (
	SubToneCTCSS byte = 0x00
	SubToneTSQL  byte = 0x01
	SubToneDTCS  byte = 0x02
	SubToneCSQL  byte = 0x07
)

// Sub-command bytes for the 1C PTT/ATU family.
const (
	SubPTT byte = 0x00
	SubATU byte = 0x01
)

// Sub-command bytes for the 21 RIT family.
const (
	SubRITValue  byte = 0x00
	SubRITEnable byte = 0x01
)

// Sub-command bytes for the 27 spectrum family (spec.md §6:
// "00/10/11/14/15/16/19/1E").
const (
	SubSpectrumFragment  byte = 0x00
	SubSpectrumDisplay   byte = 0x10
	SubSpectrumOutput    byte = 0x11
	SubSpectrumMode      byte = 0x14
	SubSpectrumSpan      byte = 0x15
	SubSpectrumEdge      byte = 0x16
	SubSpectrumReference byte = 0x19
	SubSpectrumBounds    byte = 0x1E
)

// DefaultControllerAddr is the CI-V controller identity used when a
// session's configuration leaves it unset (spec.md §6).
const DefaultControllerAddr byte = 0xE1

// frequencyWireBytes is the BCD width for a frequency field on the wire.
// Write commands use 5 bytes (spec.md §8 scenario 3); the parser accepts
// whatever width a reply actually carries (bcd.DecodeUint is
// length-agnostic), since rig-originated replies have been observed at
// both 5 and 6 bytes (spec.md §8 scenario 2).
const frequencyWireBytes = 5

// Builder emits CI-V frames for rig operations once identification has
// bound a session to a capability record and a rig CI-V address. The
// controller address lives on the Builder, not as a process-wide
// constant, so multiple sessions in one process can each answer to a
// different controller identity (spec.md §9).
type Builder struct {
	RigAddr        byte
	Caps           rigcat.Capability
	ControllerAddr byte
}

// NewBuilder constructs a Builder bound to an identified rig. Use
// IdentifyBroadcast (a package-level function, since it needs no binding)
// to discover RigAddr and Caps in the first place. ctrlAddr is this
// session's controller identity (cfg.CIV.ControllerAddress); pass
// DefaultControllerAddr when the operator hasn't overridden it.
func NewBuilder(rigAddr byte, caps rigcat.Capability, ctrlAddr byte) Builder {
	return Builder{RigAddr: rigAddr, Caps: caps, ControllerAddr: ctrlAddr}
}

func (b Builder) encode(cmd byte, payload []byte) []byte {
	return civframe.Encode(b.RigAddr, b.ControllerAddr, cmd, payload)
}

// IdentifyBroadcast emits the rig-identification broadcast (spec.md §4.3
// step 1): "FE FE 00 <ctrlAddr> 19 00 FD".
func IdentifyBroadcast(ctrlAddr byte) []byte {
	return civframe.Encode(civframe.Broadcast, ctrlAddr, cmdReadID, []byte{0x00})
}
