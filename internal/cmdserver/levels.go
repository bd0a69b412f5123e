package cmdserver

import (
	"strconv"

	"github.com/bturbeville/wfview-sub001/internal/rigstate"
)

// gainLevels are the level names Hamlib expresses as a float in [0,1],
// scaled to the CI-V wire range of 0..255 (spec.md §4.7). Every other
// known level name carries a plain integer (Hz for CWPITCH/NOTCHF/IF,
// WPM for KEYSPD).
var gainLevels = map[string]bool{
	"AF": true, "RF": true, "SQL": true, "MICGAIN": true, "COMP": true,
	"MONITOR_GAIN": true, "VOXGAIN": true, "ANTIVOX": true,
}

// levelToRegisterValue converts a Hamlib set_level argument to the
// register's native representation for that level name.
func levelToRegisterValue(name string, f float64) rigstate.Value {
	if gainLevels[name] {
		raw := int64(f*255 + 0.5)
		if raw < 0 {
			raw = 0
		}
		if raw > 255 {
			raw = 255
		}
		return rigstate.IntValue(raw)
	}
	return rigstate.IntValue(int64(f))
}

// formatLevelValue renders a register value back to Hamlib's get_level
// textual convention for the named level.
func formatLevelValue(name string, v rigstate.Value) string {
	raw, _ := v.Int()
	if gainLevels[name] {
		return strconv.FormatFloat(float64(raw)/255.0, 'f', 3, 64)
	}
	return strconv.FormatInt(raw, 10)
}
