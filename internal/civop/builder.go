package civop

import (
	"github.com/bturbeville/wfview-sub001/internal/bcd"
	"github.com/bturbeville/wfview-sub001/internal/civframe"
)

// ReadFrequency reads the currently-selected VFO's frequency (cmd 03).
func (b Builder) ReadFrequency() []byte { return b.encode(cmdReadFreq, nil) }

// SetFrequency sets the currently-selected VFO's frequency (cmd 05).
func (b Builder) SetFrequency(hz uint64) []byte {
	return b.encode(cmdSetFreq, bcd.EncodeFrequency(hz, frequencyWireBytes))
}

// ReadFrequencyVFO reads a specific VFO's frequency (cmd 25).
func (b Builder) ReadFrequencyVFO(vfo byte) []byte {
	return b.encode(cmdVFOFreq, []byte{vfo})
}

// SetFrequencyVFO sets a specific VFO's frequency (cmd 25). Requires
// Caps.Flags.HasVFOAB or HasVFOMS; callers check capability before use.
func (b Builder) SetFrequencyVFO(vfo byte, hz uint64) []byte {
	payload := append([]byte{vfo}, bcd.EncodeFrequency(hz, frequencyWireBytes)...)
	return b.encode(cmdVFOFreq, payload)
}

// ReadMode reads the currently-selected VFO's mode and filter (cmd 04).
func (b Builder) ReadMode() []byte { return b.encode(cmdReadMode, nil) }

// SetMode sets mode and filter on the currently-selected VFO (cmd 06).
func (b Builder) SetMode(modeByte, filter byte) []byte {
	return b.encode(cmdSetMode, []byte{modeByte, filter})
}

// ReadModeVFO reads a specific VFO's mode (cmd 26).
func (b Builder) ReadModeVFO(vfo byte) []byte {
	return b.encode(cmdVFOMode, []byte{vfo})
}

// SetModeVFO sets a specific VFO's mode and filter (cmd 26).
func (b Builder) SetModeVFO(vfo, modeByte, filter byte) []byte {
	return b.encode(cmdVFOMode, []byte{vfo, modeByte, filter})
}

// SelectVFO chooses the active VFO or exchanges/equalizes VFO A/B (cmd 07).
func (b Builder) SelectVFO(sub byte) []byte { return b.encode(cmdSelectVFO, []byte{sub}) }

// ReadRepeaterOffset reads the repeater offset (cmd 0C).
func (b Builder) ReadRepeaterOffset() []byte { return b.encode(cmdRptOffsetRead, nil) }

// SetRepeaterOffset sets the repeater offset in Hz (cmd 0D). The wire
// field is a 3-byte BCD value in units of 10 Hz, per the Icom CI-V
// reference's repeater-offset encoding.
func (b Builder) SetRepeaterOffset(offsetHz uint64) []byte {
	return b.encode(cmdRptOffsetSet, bcd.EncodeUint(offsetHz/10, 6))
}

// ReadSplit reads the split-operation flag (cmd 0F).
func (b Builder) ReadSplit() []byte { return b.encode(cmdSplit, nil) }

// SetSplit enables or disables split operation (cmd 0F).
func (b Builder) SetSplit(on bool) []byte {
	if on {
		return b.encode(cmdSplit, []byte{SubSplitOn})
	}
	return b.encode(cmdSplit, []byte{SubSplitOff})
}

// SetQuickSplit toggles split using a model's quick-split command
// (Caps.Addresses.QuickSplitCommand: cmd byte followed by any fixed
// leading sub-command bytes) instead of the 0F on/off convention, for
// models whose Caps.Flags.HasQuickSplitCmd is set (spec.md §3.1). It
// returns nil when the model has no quick-split command.
func (b Builder) SetQuickSplit(on bool) []byte {
	raw := b.Caps.Addresses.QuickSplitCommand
	if len(raw) == 0 {
		return nil
	}
	var v byte
	if on {
		v = SubSplitOn
	} else {
		v = SubSplitOff
	}
	payload := append(append([]byte{}, raw[1:]...), v)
	return b.encode(raw[0], payload)
}

// ReadAttenuator reads the attenuator setting (cmd 11).
func (b Builder) ReadAttenuator() []byte { return b.encode(cmdAttenuator, nil) }

// SetAttenuator sets the attenuator to one of Caps.Attenuators (cmd 11).
func (b Builder) SetAttenuator(level byte) []byte { return b.encode(cmdAttenuator, []byte{level}) }

// ReadAntenna reads the selected antenna (cmd 12).
func (b Builder) ReadAntenna() []byte { return b.encode(cmdAntenna, nil) }

// SetAntenna selects an antenna, optionally routing RX to a separate
// antenna on models with Caps.Flags.HasRXAntenna (cmd 12).
func (b Builder) SetAntenna(ant byte, rx *byte) []byte {
	if rx != nil {
		return b.encode(cmdAntenna, []byte{ant, *rx})
	}
	return b.encode(cmdAntenna, []byte{ant})
}

// ReadLevel reads a level register (cmd 14, read form: sub only).
func (b Builder) ReadLevel(sub byte) []byte { return b.encode(cmdLevel, []byte{sub}) }

// SetLevel sets a level register to a 0-255 value encoded as a 2-byte
// BCD field (cmd 14), matching Hamlib's internal 0-255 gain scale.
func (b Builder) SetLevel(sub byte, value uint8) []byte {
	payload := append([]byte{sub}, bcd.EncodeUint(uint64(value), 4)...)
	return b.encode(cmdLevel, payload)
}

// ReadMeter reads a read-only meter register (cmd 15).
func (b Builder) ReadMeter(sub byte) []byte { return b.encode(cmdMeter, []byte{sub}) }

// ReadFunc reads a feature-toggle register (cmd 16, read form: sub only).
func (b Builder) ReadFunc(sub byte) []byte { return b.encode(cmdFunc, []byte{sub}) }

// SetFunc toggles a feature on or off (cmd 16).
func (b Builder) SetFunc(sub byte, on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdFunc, []byte{sub, v})
}

// maxCWChars is the CW text send length limit (spec.md §6).
const maxCWChars = 30

// SendCW transmits text as CW keying (cmd 17). Text longer than 30
// characters is truncated; characters outside printable ASCII are
// replaced with '?'.
func (b Builder) SendCW(text string) []byte {
	if len(text) > maxCWChars {
		text = text[:maxCWChars]
	}
	out := make([]byte, len(text))
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c > 0x7E {
			c = '?'
		}
		out[i] = c
	}
	return b.encode(cmdSendCW, out)
}

// wakeByteCounts maps a serial baud rate to the number of 0xFE wake bytes
// that must precede a power-on command, per spec.md §6.
var wakeByteCounts = map[int]int{
	9600:  13,
	19200: 25,
	38400: 50,
	57600: 75,
}

const defaultWakeByteCount = 150

// PowerOn builds the full byte sequence to power on a sleeping rig: a run
// of 0xFE wake bytes (count scaled by baud rate) followed by the power-on
// command frame (cmd 18 sub 01).
func (b Builder) PowerOn(baud int) []byte {
	n, ok := wakeByteCounts[baud]
	if !ok {
		n = defaultWakeByteCount
	}
	out := make([]byte, n, n+8)
	for i := range out {
		out[i] = 0xFE
	}
	return append(out, b.encode(cmdPower, []byte{0x01})...)
}

// PowerOff builds the power-off command frame (cmd 18 sub 00).
func (b Builder) PowerOff() []byte { return b.encode(cmdPower, []byte{0x00}) }

// ReadBandStack reads one band-stack register (cmd 1A sub 01).
func (b Builder) ReadBandStack(band byte, reg byte) []byte {
	return b.encode(cmdGeneric1A, []byte{Sub1ABandStack, band, reg})
}

// SetBandStack writes one band-stack register (cmd 1A sub 01): the
// frequency/mode/filter/data-mode/tone combination a rig recalls when
// that band's stacking register is selected (spec.md §3.1,
// original_source freqmemory.h/.cpp's BandStackReg).
func (b Builder) SetBandStack(band, reg byte, freqHz uint64, modeByte, filter byte, dataMode bool, tone civframe.Tone) []byte {
	payload := []byte{Sub1ABandStack, band, reg}
	payload = append(payload, bcd.EncodeFrequency(freqHz, frequencyWireBytes)...)
	var dm byte
	if dataMode {
		dm = 0x01
	}
	payload = append(payload, modeByte, filter, dm)
	payload = append(payload, civframe.EncodeTone(tone)...)
	return b.encode(cmdGeneric1A, payload)
}

// ReadPassbandWidth reads the IF passband width (cmd 1A sub 03).
func (b Builder) ReadPassbandWidth() []byte {
	return b.encode(cmdGeneric1A, []byte{Sub1APassbandWidth})
}

// SetPassbandWidth sets the IF passband width index (cmd 1A sub 03).
func (b Builder) SetPassbandWidth(index byte) []byte {
	return b.encode(cmdGeneric1A, []byte{Sub1APassbandWidth, index})
}

// ReadAGC reads the AGC time-constant setting (cmd 1A sub 04).
func (b Builder) ReadAGC() []byte { return b.encode(cmdGeneric1A, []byte{Sub1AAGC}) }

// SetAGC sets the AGC time-constant setting (cmd 1A sub 04).
func (b Builder) SetAGC(value byte) []byte {
	return b.encode(cmdGeneric1A, []byte{Sub1AAGC, value})
}

// ReadDataMode reads the data-mode flag (cmd 1A sub 05).
func (b Builder) ReadDataMode() []byte { return b.encode(cmdGeneric1A, []byte{Sub1ADataMode}) }

// SetDataMode enables or disables data mode, optionally selecting a
// filter (cmd 1A sub 05). Requires Caps.Flags.HasDataModes.
func (b Builder) SetDataMode(on bool, filter byte) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdGeneric1A, []byte{Sub1ADataMode, v, filter})
}

// SetIPPlus enables or disables IP+ linearization (cmd 1A sub 06).
func (b Builder) SetIPPlus(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdGeneric1A, []byte{Sub1AIPPlus, v})
}

// SetMute enables or disables receiver mute (cmd 1A sub 07).
func (b Builder) SetMute(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdGeneric1A, []byte{Sub1AMute, v})
}

// PerModel issues one of a model's idiosyncratic 1A-09 subcommands (quick
// split, transceive enable, and similar registers from Caps.Addresses).
func (b Builder) PerModel(args ...byte) []byte {
	payload := append([]byte{Sub1APerModel}, args...)
	return b.encode(cmdGeneric1A, payload)
}

// EnableTransceive turns on a model's unsolicited auto-notify broadcast
// of frequency/mode changes, via Caps.Addresses.TransceiveEnable (spec.md
// §3.1). Models that leave TransceiveEnable at its zero default have no
// such register; EnableTransceive returns nil for them.
func (b Builder) EnableTransceive() []byte {
	if b.Caps.Addresses.TransceiveEnable == 0 {
		return nil
	}
	return b.PerModel(b.Caps.Addresses.TransceiveEnable, 0x01)
}

// ReadTone reads a CTCSS/TSQL/DTCS/CSQL register (cmd 1B).
func (b Builder) ReadTone(sub byte) []byte { return b.encode(cmdTone, []byte{sub}) }

// SetCTCSSTone sets the transmit CTCSS tone frequency, hertz x10 (cmd 1B
// sub 00). Requires Caps.Flags.HasCTCSS.
func (b Builder) SetCTCSSTone(hz10 uint16) []byte {
	return b.encode(cmdTone, append([]byte{SubToneCTCSS}, bcd.EncodeUint(uint64(hz10), 4)...))
}

// SetTSQLTone sets the tone-squelch tone frequency, hertz x10 (cmd 1B
// sub 01).
func (b Builder) SetTSQLTone(hz10 uint16) []byte {
	return b.encode(cmdTone, append([]byte{SubToneTSQL}, bcd.EncodeUint(uint64(hz10), 4)...))
}

// SetDTCSCode sets the DTCS code and polarity (cmd 1B sub 02). Requires
// Caps.Flags.HasDTCS.
func (b Builder) SetDTCSCode(code uint16, invertTX, invertRX bool) []byte {
	var flags byte
	if invertTX {
		flags |= 0x01
	}
	if invertRX {
		flags |= 0x02
	}
	payload := append([]byte{SubToneDTCS, flags}, bcd.EncodeUint(uint64(code), 4)...)
	return b.encode(cmdTone, payload)
}

// SetCSQLCode sets the tone-squelch code for models using a numeric code
// table rather than a direct tone frequency (cmd 1B sub 07).
func (b Builder) SetCSQLCode(code byte) []byte {
	return b.encode(cmdTone, []byte{SubToneCSQL, code})
}

// ReadPTT reads transmit status (cmd 1C sub 00).
func (b Builder) ReadPTT() []byte { return b.encode(cmdPTTATU, []byte{SubPTT}) }

// SetPTT keys or unkeys the transmitter (cmd 1C sub 00). Models with
// Caps.Flags.UseRTSForPTT use the serial RTS line instead (C5); this
// builder method is for HasPTTCmd models only.
func (b Builder) SetPTT(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdPTTATU, []byte{SubPTT, v})
}

// ReadATU reads the antenna tuner status (cmd 1C sub 01). Requires
// Caps.Flags.HasATU.
func (b Builder) ReadATU() []byte { return b.encode(cmdPTTATU, []byte{SubATU}) }

// SetATU starts a tune cycle or switches the tuner in/out of line (cmd
// 1C sub 01).
func (b Builder) SetATU(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdPTTATU, []byte{SubATU, v})
}

// ReadRIT reads the RIT offset value (cmd 21 sub 00).
func (b Builder) ReadRIT() []byte { return b.encode(cmdRIT, []byte{SubRITValue}) }

// SetRIT sets the RIT offset in Hz, signed (cmd 21 sub 00). The wire
// field is 2-byte BCD magnitude plus a leading sign byte.
func (b Builder) SetRIT(offsetHz int) []byte {
	sign := byte(0x00)
	mag := offsetHz
	if mag < 0 {
		sign = 0x01
		mag = -mag
	}
	payload := append([]byte{SubRITValue, sign}, bcd.EncodeUint(uint64(mag), 4)...)
	return b.encode(cmdRIT, payload)
}

// ReadRITEnable reads whether RIT is engaged (cmd 21 sub 01).
func (b Builder) ReadRITEnable() []byte { return b.encode(cmdRIT, []byte{SubRITEnable}) }

// SetRITEnable engages or disengages RIT (cmd 21 sub 01).
func (b Builder) SetRITEnable(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdRIT, []byte{SubRITEnable, v})
}

// SetSpectrumDisplay turns the scope display stream on or off (cmd 27
// sub 10). Requires Caps.Flags.HasSpectrum.
func (b Builder) SetSpectrumDisplay(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdSpectrum, []byte{SubSpectrumDisplay, v})
}

// SetSpectrumOutput turns scope data output over this link on or off
// (cmd 27 sub 11).
func (b Builder) SetSpectrumOutput(on bool) []byte {
	var v byte
	if on {
		v = 0x01
	}
	return b.encode(cmdSpectrum, []byte{SubSpectrumOutput, v})
}

// SetSpectrumSpan selects one of Caps.CenterSpans by index (cmd 27 sub
// 15).
func (b Builder) SetSpectrumSpan(spanIndex byte) []byte {
	return b.encode(cmdSpectrum, []byte{SubSpectrumSpan, spanIndex})
}
