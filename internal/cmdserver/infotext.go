package cmdserver

import (
	"fmt"
	"strings"

	"github.com/bturbeville/wfview-sub001/internal/rigcat"
	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

func (c *conn) getVFOInfo(args []string, longReply bool) []string {
	reg := c.server.Register
	vfoB := len(args) > 0 && args[0] == "VFOB"
	freqKey := rigstate.VFOAFreq
	if vfoB {
		freqKey = rigstate.VFOBFreq
	}
	freq, _ := reg.Get(freqKey).Value.Int()
	modeVal, _ := reg.Get(rigstate.Mode).Value.Int()
	dataMode, _ := reg.Get(rigstate.DataMode).Value.Bool()
	width, _ := reg.Get(rigstate.Passband).Value.Int()
	split, _ := reg.Get(rigstate.Split).Value.Bool()

	return []string{
		labeled(longReply, "Freq", fmt.Sprintf("%d", freq)),
		labeled(longReply, "Mode", modeName(modeKindFromInt(modeVal), dataMode)),
		labeled(longReply, "Width", fmt.Sprintf("%d", width)),
		labeled(longReply, "Split", boolToDigit(split)),
		labeled(longReply, "SatMode", "0"),
	}
}

// getRigInfo renders spec.md §4.7's get_rig_info payload, trailing it
// with the Ethernet CRC-32 over the preceding text exactly as
// rigCtlClient::getCalibratedValue's sibling doCrc does.
func (c *conn) getRigInfo() string {
	reg := c.server.Register
	caps := c.server.Caps

	modeVal, _ := reg.Get(rigstate.Mode).Value.Int()
	dataMode, _ := reg.Get(rigstate.DataMode).Value.Bool()
	width, _ := reg.Get(rigstate.Passband).Value.Int()
	freqA, _ := reg.Get(rigstate.VFOAFreq).Value.Int()
	freqB, _ := reg.Get(rigstate.VFOBFreq).Value.Int()
	split, _ := reg.Get(rigstate.Split).Value.Bool()
	satMode, _ := reg.Get(rigstate.SatelliteFunc).Value.Bool()

	rxa, txa, rxb, txb := 1, 0, 0, 1
	if !split {
		txa, txb = 1, 0
	}

	mode := modeName(modeKindFromInt(modeVal), dataMode)
	var b strings.Builder
	fmt.Fprintf(&b, "VFO=%s Freq=%d Mode=%s Width=%d RX=%d TX=%d\n", "VFOA", freqA, mode, width, rxa, txa)
	fmt.Fprintf(&b, "VFO=%s Freq=%d Mode=%s Width=%d RX=%d TX=%d\n", "VFOB", freqB, mode, width, rxb, txb)
	fmt.Fprintf(&b, "Split=%s SatMode=%s\n", boolToDigit(split), boolToDigit(satMode))
	fmt.Fprintf(&b, "Rig=%s\n", caps.ModelName)
	fmt.Fprintf(&b, "App=civd\n")
	fmt.Fprintf(&b, "Version=%s\n", c.server.AppVersion)

	sum := crcOf(b.String())
	fmt.Fprintf(&b, "CRC=0x%08x\n", sum)
	return b.String()
}

// dumpState renders the Hamlib protocol v1 capability dump (spec.md §4.7).
func (c *conn) dumpState() []string {
	caps := c.server.Caps
	var lines []string
	lines = append(lines, "1")
	lines = append(lines, fmt.Sprintf("%d", caps.HamlibModel))
	lines = append(lines, "0")

	var lowHz, highHz uint64
	for _, band := range caps.Bands {
		if lowHz == 0 || band.LowHz < lowHz {
			lowHz = band.LowHz
		}
		if band.HighHz > highHz {
			highHz = band.HighHz
		}
	}
	modesMask := modesBitmask(caps)
	lines = append(lines, fmt.Sprintf("%d.000000 %d.000000 0x%x -1 -1 0x16000000 0x%x", lowHz, highHz, modesMask, antennaBitmask(caps)))
	lines = append(lines, "0 0 0 0 0 0 0")

	if caps.Flags.HasTransmit {
		for _, band := range caps.Bands {
			lines = append(lines, fmt.Sprintf("%d.000000 %d.000000 0x%x 2000 100000 0x16000000 0x%x", band.LowHz, band.HighHz, modesMask, antennaBitmask(caps)))
		}
	}
	lines = append(lines, "0 0 0 0 0 0 0")

	for _, step := range []int{1, 10, 100, 1000, 2500, 5000, 6125, 8333, 10000, 12500, 25000, 100000, 250000, 1000000} {
		lines = append(lines, fmt.Sprintf("0x%x %d", modesMask, step))
	}
	lines = append(lines, "0 0")

	for _, fw := range filterWidths(caps) {
		lines = append(lines, fw)
	}
	lines = append(lines, "0 0")
	lines = append(lines, "9900")
	lines = append(lines, "9900")
	lines = append(lines, "10000")
	lines = append(lines, "0")

	lines = append(lines, joinNonzeroDecimal(caps.Preamps, 10))
	lines = append(lines, joinNonzeroHex(caps.Attenuators))

	for i := 0; i < 6; i++ {
		lines = append(lines, "0xffffffffffffffff")
	}

	if c.chkVfoCalled {
		ptt := 0
		if caps.Flags.HasTransmit {
			ptt = 1
		}
		lines = append(lines,
			"vfo_ops=0xff",
			fmt.Sprintf("ptt_type=0x%x", ptt),
			"has_set_vfo=0x1",
			"has_get_vfo=0x1",
			"has_set_freq=0x1",
			"has_get_freq=0x1",
			"has_set_conf=0x1",
			"has_get_conf=0x1",
			"has_power2mW=0x1",
			"has_mW2power=0x1",
			"timeout=0x3e8",
			"done",
		)
	}
	return lines
}

func (c *conn) dumpCaps() []string {
	caps := c.server.Caps
	rigType := "Receiver"
	if caps.Flags.HasTransmit {
		rigType = "Transceiver"
	}
	lines := []string{
		fmt.Sprintf("Caps dump for model: %d", caps.ModelID),
		fmt.Sprintf("Model Name:\t%s", caps.ModelName),
		"Mfg Name:\tIcom",
		"Backend version:\t0.1",
		"Backend copyright:\t2021",
		"Rig type:\t" + rigType,
	}
	if caps.Flags.HasPTTCmd {
		lines = append(lines, "PTT type:\tRig capable")
	}
	lines = append(lines, "DCD type:\tRig capable", "Port type:\tNetwork link")
	return lines
}

func modesBitmask(caps rigcat.Capability) uint64 {
	var mask uint64
	for _, m := range caps.Modes {
		mask |= 1 << uint(m.Kind)
	}
	return mask
}

func antennaBitmask(caps rigcat.Capability) uint64 {
	var mask uint64
	for _, a := range caps.Antennas {
		mask |= 1 << uint(a)
	}
	return mask
}

func filterWidths(caps rigcat.Capability) []string {
	var out []string
	modesMask := modesBitmask(caps)
	for _, w := range []int{3000, 2400, 1800} {
		out = append(out, fmt.Sprintf("0x%x %d", modesMask, w))
	}
	for _, w := range []int{9000, 6000, 3000} {
		out = append(out, fmt.Sprintf("0x%x %d", modesMask, w))
	}
	for _, w := range []int{1200, 500, 200} {
		out = append(out, fmt.Sprintf("0x%x %d", modesMask, w))
	}
	return out
}

func joinNonzeroDecimal(vals []byte, scale int) string {
	var parts []string
	for _, v := range vals {
		if v == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%d", int(v)*scale))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " ")
}

func joinNonzeroHex(vals []byte) string {
	var parts []string
	for _, v := range vals {
		if v == 0 {
			continue
		}
		parts = append(parts, fmt.Sprintf("%x", v))
	}
	if len(parts) == 0 {
		return "0"
	}
	return strings.Join(parts, " ")
}
