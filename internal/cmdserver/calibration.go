package cmdserver

// calPoint is one (raw, dB) plot in an S-meter calibration curve.
// Grounded directly on original_source/rigctld.h's cal_table/
// IC7300_STR_CAL / IC7610_STR_CAL / IC7850_STR_CAL macros.
type calPoint struct {
	raw int
	val int
}

var ic7300Cal = []calPoint{
	{0, -54}, {10, -48}, {30, -36}, {60, -24}, {90, -12}, {120, 0}, {241, 64},
}

var ic7610Cal = []calPoint{
	{0, -54}, {11, -48}, {21, -42}, {34, -36}, {50, -30}, {59, -24}, {75, -18},
	{93, -12}, {103, -6}, {124, 0}, {145, 10}, {160, 20}, {183, 30}, {204, 40},
	{222, 50}, {246, 60},
}

var ic7850Cal = []calPoint{
	{0, -54}, {120, 0}, {241, 60},
}

// calTableFor picks a model's calibration curve, falling back to the
// IC-7300 table for any model without a dedicated one (spec.md §4.7).
func calTableFor(modelName string) []calPoint {
	switch modelName {
	case "IC-7610":
		return ic7610Cal
	case "IC-7850", "IC-7851":
		return ic7850Cal
	default:
		return ic7300Cal
	}
}

// calibrateSMeter maps a raw CI-V S-meter reading (0..255) to a
// calibrated dB-relative-to-S9 value via linear interpolation between
// the two bracketing table points, exactly as
// rigCtlClient::getCalibratedValue does.
func calibrateSMeter(raw int, modelName string) int {
	table := calTableFor(modelName)
	i := 0
	for ; i < len(table); i++ {
		if raw < table[i].raw {
			break
		}
	}
	switch {
	case i == 0:
		return table[0].val
	case i >= len(table):
		return table[len(table)-1].val
	case table[i].raw == table[i-1].raw:
		return table[i].val
	}
	interp := (table[i].raw - raw) * (table[i].val - table[i-1].val) / (table[i].raw - table[i-1].raw)
	return table[i].val - interp
}
