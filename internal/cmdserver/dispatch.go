package cmdserver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/hashicorp/go-version"

	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

// levelKeys names the set_level/get_level vocabulary this server
// exposes, mapped to the backing register key. Names follow Hamlib's
// RIG_LEVEL_* tokens where one exists.
var levelKeys = map[string]rigstate.Key{
	"AF": rigstate.AFLevel, "RF": rigstate.RFLevel, "SQL": rigstate.SQLLevel,
	"MICGAIN": rigstate.MicLevel, "COMP": rigstate.CompLevel,
	"MONITOR_GAIN": rigstate.MonitorLevel, "VOXGAIN": rigstate.VOXLevel,
	"ANTIVOX": rigstate.AntiVOXLevel, "CWPITCH": rigstate.CWPitch,
	"KEYSPD": rigstate.KeySpeed, "NOTCHF": rigstate.KeyNotch, "IF": rigstate.IFShift,
}

// funcKeys names the set_func/get_func vocabulary, mapped to the
// backing boolean register key.
var funcKeys = map[string]rigstate.Key{
	"NB": rigstate.NBFunc, "NR": rigstate.NRFunc, "ANF": rigstate.ANFFunc,
	"TONE": rigstate.ToneFunc, "TSQL": rigstate.TSQLFunc, "COMP": rigstate.CompFunc,
	"MON": rigstate.MonFunc, "VOX": rigstate.VOXFunc, "LOCK": rigstate.LockFunc,
	"TUNER": rigstate.TunerFunc, "SATMODE": rigstate.SatelliteFunc,
	"SCOPE": rigstate.ScopeFunc, "MN": rigstate.MNFunc,
	"BREAKIN_SEMI": rigstate.BreakInSemi, "BREAKIN_FULL": rigstate.BreakInFull,
}

// dispatch handles one already-CR-stripped input line, returning the
// text to write back (already newline-terminated) and whether the
// connection should close.
func (c *conn) dispatch(line string) (reply string, quit bool) {
	sep := "\n"
	longReply := false
	i := 0
	if i < len(line) {
		switch line[i] {
		case ';', '|', ',':
			sep = string(line[i])
			i++
		case '+':
			longReply = true
			i++
		case '#':
			return "", false
		}
	}
	if i < len(line) && strings.ToLower(line[i:i+1]) == "q" && (i+1 == len(line) || line[i+1] == ' ') {
		return "", true
	}
	if i < len(line) && line[i] == '\\' {
		i++
	}

	fields := strings.Fields(line[i:])
	if len(fields) == 0 {
		return "", false
	}
	cmd := fields[0]
	args := fields[1:]

	reg := c.server.Register
	caps := c.server.Caps

	var lines []string
	rprt := 0
	dataReply := false

	switch cmd {
	case "F", "set_freq":
		vfo, val, ok := parseOptVFOInt(args)
		if !ok {
			rprt = -1
			break
		}
		key := rigstate.VFOAFreq
		if vfo == 1 {
			key = rigstate.VFOBFreq
		}
		reg.Set(key, rigstate.IntValue(val))

	case "f", "get_freq":
		val, _ := reg.Get(currentFreqKey(reg)).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "Frequency", fmt.Sprintf("%d", val)))

	case "M", "set_mode":
		if len(args) < 1 {
			rprt = -1
			break
		}
		kind, dataMode, ok := modeKindByName(args[0])
		if !ok {
			rprt = -1
			break
		}
		if _, known := caps.ModeByte(kind); !known {
			rprt = -11
			break
		}
		reg.Set(rigstate.Mode, rigstate.IntValue(int64(kind)))
		reg.Set(rigstate.DataMode, rigstate.BoolValue(dataMode))
		if len(args) >= 2 {
			if width, err := strconv.Atoi(args[1]); err == nil && width > 0 {
				reg.Set(rigstate.Passband, rigstate.IntValue(int64(width)))
			}
		}

	case "m", "get_mode":
		modeVal, _ := reg.Get(rigstate.Mode).Value.Int()
		dataMode, _ := reg.Get(rigstate.DataMode).Value.Bool()
		width, _ := reg.Get(rigstate.Passband).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "Mode", modeName(modeKindFromInt(modeVal), dataMode)))
		lines = append(lines, labeled(longReply, "Passband", fmt.Sprintf("%d", width)))

	case "V", "set_vfo":
		if len(args) < 1 {
			rprt = -1
			break
		}
		vfo := int64(0)
		if args[0] == "VFOB" {
			vfo = 1
		}
		reg.Set(rigstate.CurrentVFO, rigstate.IntValue(vfo))

	case "v", "get_vfo":
		vfo, _ := reg.Get(rigstate.CurrentVFO).Value.Int()
		dataReply = true
		name := "VFOA"
		if vfo == 1 {
			name = "VFOB"
		}
		lines = append(lines, labeled(longReply, "VFO", name))

	case "J", "set_rit":
		n, err := parseInt(args, 0)
		if err != nil {
			rprt = -1
			break
		}
		reg.Set(rigstate.RITValue, rigstate.IntValue(n))

	case "j", "get_rit":
		n, _ := reg.Get(rigstate.RITValue).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "RIT", fmt.Sprintf("%d", n)))

	case "T", "set_ptt":
		n, err := parseInt(args, 0)
		if err != nil {
			rprt = -1
			break
		}
		reg.Set(rigstate.PTT, rigstate.BoolValue(n != 0))

	case "t", "get_ptt":
		on, _ := reg.Get(rigstate.PTT).Value.Bool()
		dataReply = true
		lines = append(lines, labeled(longReply, "PTT", boolToDigit(on)))

	case "S", "set_split_vfo":
		if len(args) < 1 {
			rprt = -1
			break
		}
		reg.Set(rigstate.Split, rigstate.BoolValue(args[0] == "1"))

	case "s", "get_split_vfo":
		on, _ := reg.Get(rigstate.Split).Value.Bool()
		dataReply = true
		lines = append(lines, labeled(longReply, "Split", boolToDigit(on)))
		lines = append(lines, labeled(longReply, "TX VFO", "VFOB"))

	case "I", "set_split_freq":
		n, err := parseInt(args, 0)
		if err != nil {
			rprt = -1
			break
		}
		reg.Set(rigstate.SplitTXFreq, rigstate.IntValue(n))

	case "i", "get_split_freq":
		n, _ := reg.Get(rigstate.SplitTXFreq).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "TX Frequency", fmt.Sprintf("%d", n)))

	case "U", "set_func":
		if len(args) < 2 {
			rprt = -1
			break
		}
		key, ok := funcKeys[strings.ToUpper(args[0])]
		if !ok {
			rprt = -11
			break
		}
		reg.Set(key, rigstate.BoolValue(args[1] == "1"))

	case "u", "get_func":
		if len(args) < 1 {
			rprt = -1
			break
		}
		key, ok := funcKeys[strings.ToUpper(args[0])]
		if !ok {
			rprt = -11
			break
		}
		on, _ := reg.Get(key).Value.Bool()
		dataReply = true
		lines = append(lines, boolToDigit(on))

	case "L", "set_level":
		if len(args) < 2 {
			rprt = -1
			break
		}
		key, ok := levelKeys[strings.ToUpper(args[0])]
		if !ok {
			rprt = -11
			break
		}
		f, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			rprt = -1
			break
		}
		reg.Set(key, levelToRegisterValue(strings.ToUpper(args[0]), f))

	case "l", "get_level":
		if len(args) < 1 {
			rprt = -1
			break
		}
		name := strings.ToUpper(args[0])
		dataReply = true
		if name == "STRENGTH" {
			raw, _ := reg.Get(rigstate.MeterS).Value.Int()
			lines = append(lines, labeled(longReply, "Level Value", fmt.Sprintf("%d", calibrateSMeter(int(raw), caps.ModelName))))
			break
		}
		key, ok := levelKeys[name]
		if !ok {
			rprt = -11
			break
		}
		lines = append(lines, labeled(longReply, "Level Value", formatLevelValue(name, reg.Get(key).Value)))

	case "Y", "set_ant":
		if len(args) < 1 {
			rprt = -1
			break
		}
		idx, ok := antennaIndexByName(args[0])
		if !ok {
			rprt = -1
			break
		}
		reg.Set(rigstate.Antenna, rigstate.IntValue(int64(idx)))

	case "y", "get_ant":
		idx, _ := reg.Get(rigstate.Antenna).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "Antenna", antennaName(int(idx))))

	case "chk_vfo", "\xf0":
		c.chkVfoCalled = true
		vfo, _ := reg.Get(rigstate.CurrentVFO).Value.Int()
		dataReply = true
		lines = append(lines, labeled(longReply, "ChkVFO", fmt.Sprintf("%d", vfo)))

	case "get_powerstat", "\x88":
		on, _ := reg.Get(rigstate.PowerOnOff).Value.Bool()
		dataReply = true
		lines = append(lines, labeled(longReply, "Power Status", boolToDigit(on)))

	case "set_powerstat", "\x87":
		n, err := parseInt(args, 0)
		if err != nil {
			rprt = -1
			break
		}
		reg.Set(rigstate.PowerOnOff, rigstate.BoolValue(n != 0))

	case "get_lock_mode", "\xa3":
		on, _ := reg.Get(rigstate.LockFunc).Value.Bool()
		dataReply = true
		lines = append(lines, labeled(longReply, "Lock Mode", boolToDigit(on)))

	case "get_vfo_info", "\xf3":
		dataReply = true
		lines = c.getVFOInfo(args, longReply)

	case "get_rig_info", "\xf5":
		if !c.protocolAccepted() {
			rprt = -1
			break
		}
		dataReply = true
		return c.getRigInfo(), false

	case "dump_state":
		if !c.protocolAccepted() {
			rprt = -1
			break
		}
		dataReply = true
		lines = c.dumpState()

	case "1", "dump_caps":
		dataReply = true
		lines = c.dumpCaps()

	case "set_proto":
		if len(args) < 1 {
			rprt = -1
			break
		}
		v, err := version.NewVersion(args[0])
		if err != nil {
			rprt = -1
			break
		}
		c.protoVer = v

	default:
		rprt = -11
	}

	return formatReply(lines, rprt, sep, dataReply || len(lines) > 0), false
}

func (c *conn) protocolAccepted() bool {
	return c.protoVer.GreaterThanOrEqual(supportedProtocolFloor)
}

// currentFreqKey picks VFOAFreq/VFOBFreq by CurrentVFO, mirroring "fmv"
// style current-VFO dispatch in the original command server.
func currentFreqKey(reg *rigstate.Register) rigstate.Key {
	vfo, _ := reg.Get(rigstate.CurrentVFO).Value.Int()
	if vfo == 1 {
		return rigstate.VFOBFreq
	}
	return rigstate.VFOAFreq
}

func parseOptVFOInt(args []string) (vfo int, val int64, ok bool) {
	switch len(args) {
	case 1:
		n, err := strconv.ParseInt(args[0], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		return 0, n, true
	case 2:
		v := 0
		if args[0] == "VFOB" {
			v = 1
		}
		n, err := strconv.ParseInt(args[1], 10, 64)
		if err != nil {
			return 0, 0, false
		}
		return v, n, true
	}
	return 0, 0, false
}

func parseInt(args []string, index int) (int64, error) {
	if index >= len(args) {
		return 0, fmt.Errorf("missing argument")
	}
	return strconv.ParseInt(args[index], 10, 64)
}

func boolToDigit(b bool) string {
	if b {
		return "1"
	}
	return "0"
}

func labeled(longReply bool, label, value string) string {
	if longReply {
		return label + ": " + value
	}
	return value
}

func formatReply(lines []string, rprt int, sep string, hadData bool) string {
	var b strings.Builder
	for _, l := range lines {
		b.WriteString(l)
		b.WriteString(sep)
	}
	if !hadData || rprt != 0 {
		b.WriteString(fmt.Sprintf("RPRT %d", rprt))
		b.WriteString("\n")
	}
	return b.String()
}

func antennaIndexByName(name string) (int, bool) {
	switch name {
	case "ANT1":
		return 1, true
	case "ANT2":
		return 2, true
	case "ANT3":
		return 3, true
	case "ANT4":
		return 4, true
	case "ANT5":
		return 5, true
	case "ANT_CURR":
		return 31, true
	}
	return 0, false
}
