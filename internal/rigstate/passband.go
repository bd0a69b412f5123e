package rigstate

import "github.com/bturbeville/wfview-sub001/internal/rigcat"

// passbandDefaults is the mode/filter -> passband fallback table from
// spec.md §4.4. It is consulted only while Passband.Valid is false; any
// rig-reported passband overwrites it (spec.md §9 DESIGN NOTES).
var passbandDefaults = map[rigcat.ModeKind]map[int]int{
	rigcat.LSB:   {1: 3000, 2: 2400, 3: 1800},
	rigcat.USB:   {1: 3000, 2: 2400, 3: 1800},
	rigcat.AM:    {1: 9000, 2: 6000, 3: 3000},
	rigcat.SAM:   {1: 9000, 2: 6000, 3: 3000},
	rigcat.FM:    {1: 15000, 2: 10000, 3: 7000},
	rigcat.WFM:   {1: 15000, 2: 10000, 3: 7000},
	rigcat.CW:    {1: 1200, 2: 500, 3: 250},
	rigcat.CWR:   {1: 1200, 2: 500, 3: 250},
	rigcat.RTTY:  {1: 1200, 2: 500, 3: 250},
	rigcat.RTTYR: {1: 1200, 2: 500, 3: 250},
	rigcat.PSK:   {1: 1200, 2: 500, 3: 250},
	rigcat.PSKR:  {1: 1200, 2: 500, 3: 250},
}

// dataModePassbandDefaults overrides passbandDefaults when DataMode is set
// on an SSB mode (spec.md §4.4: "Data-SSB").
var dataModePassbandDefaults = map[int]int{1: 2400, 2: 500, 3: 250}

// DefaultPassband derives a conventional passband width in Hz from mode,
// filter index, and whether data mode is engaged, for use only as a
// fallback when the rig has not yet reported one. ok is false for an
// out-of-range filter index or a mode with no conventional default.
func DefaultPassband(mode rigcat.ModeKind, filter int, dataMode bool) (hz int, ok bool) {
	if filter < 1 || filter > 3 {
		return 0, false
	}
	if dataMode && (mode == rigcat.USB || mode == rigcat.LSB) {
		return dataModePassbandDefaults[filter], true
	}
	table, ok := passbandDefaults[mode]
	if !ok {
		return 0, false
	}
	hz, ok = table[filter]
	return hz, ok
}
