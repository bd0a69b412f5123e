package cmdserver

import (
	"strconv"

	"github.com/bturbeville/wfview-sub001/internal/rigcat"
)

// modeName renders a ModeKind as the Hamlib mode token, prefixing "PKT"
// for the data-mode variants the way rigctld.cpp's getMode(mode,
// datamode) does.
func modeName(kind rigcat.ModeKind, dataMode bool) string {
	plain := map[rigcat.ModeKind]string{
		rigcat.LSB: "LSB", rigcat.USB: "USB", rigcat.AM: "AM", rigcat.CW: "CW",
		rigcat.RTTY: "RTTY", rigcat.FM: "FM", rigcat.WFM: "WFM", rigcat.CWR: "CWR",
		rigcat.RTTYR: "RTTYR", rigcat.PSK: "USB",
	}
	name, ok := plain[kind]
	if !ok {
		name = "LSB"
	}
	if dataMode {
		switch kind {
		case rigcat.LSB, rigcat.USB, rigcat.AM, rigcat.FM, rigcat.PSK:
			return "PKT" + name
		}
	}
	return name
}

// modeKindFromInt recovers the ModeKind stored raw in the register.
func modeKindFromInt(v int64) rigcat.ModeKind { return rigcat.ModeKind(v) }

// modeKindByName is the inverse of modeName for the set_mode command.
func modeKindByName(name string) (rigcat.ModeKind, bool, bool) {
	switch name {
	case "LSB":
		return rigcat.LSB, false, true
	case "USB":
		return rigcat.USB, false, true
	case "AM":
		return rigcat.AM, false, true
	case "CW":
		return rigcat.CW, false, true
	case "RTTY":
		return rigcat.RTTY, false, true
	case "FM":
		return rigcat.FM, false, true
	case "WFM":
		return rigcat.WFM, false, true
	case "CWR":
		return rigcat.CWR, false, true
	case "RTTYR":
		return rigcat.RTTYR, false, true
	case "PKTLSB":
		return rigcat.LSB, true, true
	case "PKTUSB":
		return rigcat.USB, true, true
	case "PKTAM":
		return rigcat.AM, true, true
	case "PKTFM":
		return rigcat.FM, true, true
	}
	return 0, false, false
}

// antennaName maps an antenna index to its canonical Hamlib token
// (spec.md §4.7).
func antennaName(index int) string {
	switch {
	case index >= 1 && index <= 5:
		return "ANT" + strconv.Itoa(index)
	case index == 31:
		return "ANT_CURR"
	default:
		return "ANT_UNKNOWN"
	}
}
