// Package rigcat is the model catalogue (C2): a static table mapping the
// model-ID byte returned by CI-V command 19 00 to an immutable capability
// record. Unknown IDs synthesize a minimal default record rather than
// failing, per spec.md's UnknownModel error taxonomy entry.
package rigcat

import "strings"

// ModeKind enumerates the CI-V mode family a ModeEntry names.
type ModeKind int

const (
	LSB ModeKind = iota
	USB
	AM
	CW
	RTTY
	FM
	WFM
	CWR
	RTTYR
	DV
	DD
	PSK
	PSKR
	SAM
	P25
	DPMR
	NXDN
	DCR
	ATV
)

var modeKindNames = map[ModeKind]string{
	LSB: "LSB", USB: "USB", AM: "AM", CW: "CW", RTTY: "RTTY", FM: "FM",
	WFM: "WFM", CWR: "CW-R", RTTYR: "RTTY-R", DV: "DV", DD: "DD",
	PSK: "PSK", PSKR: "PSK-R", SAM: "SAM", P25: "P25", DPMR: "DPMR",
	NXDN: "NXDN", DCR: "DCR", ATV: "ATV",
}

// String returns the mode's conventional name, e.g. "USB" or "CW-R".
func (k ModeKind) String() string {
	if name, ok := modeKindNames[k]; ok {
		return name
	}
	return "UNKNOWN"
}

// ModeKindByName is the inverse of ModeKind.String, matched
// case-insensitively so operator input like "usb" resolves.
func ModeKindByName(name string) (ModeKind, bool) {
	for k, n := range modeKindNames {
		if strings.EqualFold(n, name) {
			return k, true
		}
	}
	return 0, false
}

// ModeEntry maps one ModeKind to its CI-V wire byte.
type ModeEntry struct {
	Kind ModeKind
	Byte byte
}

// Band is one entry in a rig's supported frequency range table.
type Band struct {
	Name      string
	LowHz     uint64
	HighHz    uint64
	DefaultMode ModeKind
}

// CenterSpan is one supported scope center-span width.
type CenterSpan struct {
	Name string
	Hz   uint64
}

// AddressTable holds the per-model register addresses that the CI-V
// reference assigns differently per rig (spec.md §9: "unavoidably remain
// per-model because the wire bytes differ").
type AddressTable struct {
	USBGainReg        byte
	LANGainReg        byte
	ACCGainReg        byte
	DateReg           byte
	TimeReg           byte
	UTCOffsetReg      byte
	ModInputReg       byte
	TransceiveEnable  byte
	QuickSplitCommand []byte
}

// Flags are the per-model feature toggles from spec.md §3's Capability record.
type Flags struct {
	HasSpectrum               bool
	HasATU                    bool
	HasCTCSS                  bool
	HasDTCS                   bool
	HasTBPF                   bool
	HasTransmit               bool
	HasPTTCmd                 bool
	UseRTSForPTT              bool
	HasDataModes              bool
	HasRXAntenna              bool
	HasVFOMS                  bool
	HasVFOAB                  bool
	HasQuickSplitCmd          bool
	HasAdvancedRptrToneCmds   bool
	HasSpecifyMainSubCmd      bool
}

// Capability is the immutable per-model record. Once identification (C3
// §4.3) has bound a session to a model, this record never changes.
type Capability struct {
	ModelID     byte
	ModelName   string
	HamlibModel int

	Flags Flags

	SpectSeqMax int
	SpectAmpMax int
	SpectLenMax int

	Addresses AddressTable

	Bands       []Band
	Modes       []ModeEntry
	BandStackNums []int // band-stack register indices, typically {0,1,2} per band
	Attenuators []byte
	Preamps     []byte
	Antennas    []byte
	CenterSpans []CenterSpan
}

// ModeByte looks up the CI-V wire byte for a ModeKind, or (0, false) if
// this model's table doesn't carry that mode.
func (c Capability) ModeByte(kind ModeKind) (byte, bool) {
	for _, m := range c.Modes {
		if m.Kind == kind {
			return m.Byte, true
		}
	}
	return 0, false
}

// ModeKindForByte is the inverse of ModeByte, used when parsing a mode
// reply from the rig.
func (c Capability) ModeKindForByte(b byte) (ModeKind, bool) {
	for _, m := range c.Modes {
		if m.Byte == b {
			return m.Kind, true
		}
	}
	return 0, false
}

// ModeName returns kind's display name if this model supports it.
func (c Capability) ModeName(kind ModeKind) (string, bool) {
	if _, ok := c.ModeByte(kind); !ok {
		return "", false
	}
	return kind.String(), true
}

// ModeKindByName resolves a mode name to a ModeKind this model supports.
func (c Capability) ModeKindByName(name string) (ModeKind, bool) {
	kind, ok := ModeKindByName(name)
	if !ok {
		return 0, false
	}
	if _, ok := c.ModeByte(kind); !ok {
		return 0, false
	}
	return kind, true
}

var commonModes = []ModeEntry{
	{LSB, 0x00}, {USB, 0x01}, {AM, 0x02}, {CW, 0x03},
	{RTTY, 0x04}, {FM, 0x05}, {WFM, 0x06}, {CWR, 0x07},
	{RTTYR, 0x08}, {DV, 0x17},
}

var commonHFBands = []Band{
	{"160m", 1_800_000, 2_000_000, LSB},
	{"80m", 3_500_000, 4_000_000, LSB},
	{"60m", 5_250_000, 5_450_000, USB},
	{"40m", 7_000_000, 7_300_000, LSB},
	{"30m", 10_100_000, 10_150_000, CW},
	{"20m", 14_000_000, 14_350_000, USB},
	{"17m", 18_068_000, 18_168_000, USB},
	{"15m", 21_000_000, 21_450_000, USB},
	{"12m", 24_890_000, 24_990_000, USB},
	{"10m", 28_000_000, 29_700_000, USB},
}

func defaultAddressTable() AddressTable {
	return AddressTable{
		USBGainReg:       0x0A,
		LANGainReg:       0x0B,
		ACCGainReg:       0x0C,
		DateReg:          0x94,
		TimeReg:          0x95,
		UTCOffsetReg:     0x96,
		ModInputReg:      0x06,
		TransceiveEnable: 0x00,
	}
}

// catalogue is the static model-ID -> Capability table. Entries are
// grounded on wfview's rigidentities.h model_kind enum and rigcommander.cpp's
// per-model capability construction.
var catalogue = map[byte]Capability{
	0x94: { // IC-7300
		ModelID: 0x94, ModelName: "IC-7300", HamlibModel: 3081,
		Flags: Flags{
			HasSpectrum: true, HasATU: true, HasCTCSS: true, HasDTCS: true,
			HasTBPF: true, HasTransmit: true, HasPTTCmd: true,
			HasDataModes: true, HasVFOAB: true,
		},
		SpectSeqMax: 11, SpectAmpMax: 144, SpectLenMax: 475,
		Addresses:   defaultAddressTable(),
		Bands:       commonHFBands,
		Modes:       append(append([]ModeEntry{}, commonModes...), ModeEntry{PSK, 0x12}),
		BandStackNums: []int{0, 1, 2},
		Attenuators: []byte{0x00, 0x06, 0x12, 0x18},
		Preamps:     []byte{0x00, 0x01, 0x02},
		Antennas:    []byte{0x00, 0x01},
		CenterSpans: []CenterSpan{{"2.5k", 2500}, {"5k", 5000}, {"10k", 10_000}, {"25k", 25_000}, {"50k", 50_000}, {"100k", 100_000}, {"250k", 250_000}},
	},
	0x98: { // IC-7610
		ModelID: 0x98, ModelName: "IC-7610", HamlibModel: 3100,
		Flags: Flags{
			HasSpectrum: true, HasATU: true, HasCTCSS: true, HasDTCS: true,
			HasTBPF: true, HasTransmit: true, HasPTTCmd: true,
			HasDataModes: true, HasVFOAB: true, HasSpecifyMainSubCmd: true,
		},
		SpectSeqMax: 11, SpectAmpMax: 144, SpectLenMax: 475,
		Addresses:   defaultAddressTable(),
		Bands:       commonHFBands,
		Modes:       append(append([]ModeEntry{}, commonModes...), ModeEntry{PSK, 0x12}),
		BandStackNums: []int{0, 1, 2},
		Attenuators: []byte{0x00, 0x06, 0x12, 0x18},
		Preamps:     []byte{0x00, 0x01, 0x02},
		Antennas:    []byte{0x00, 0x01},
		CenterSpans: []CenterSpan{{"2.5k", 2500}, {"5k", 5000}, {"10k", 10_000}, {"25k", 25_000}, {"50k", 50_000}, {"100k", 100_000}, {"250k", 250_000}, {"500k", 500_000}},
	},
	0x8E: { // IC-7850 (and 7851, identical)
		ModelID: 0x8E, ModelName: "IC-7850", HamlibModel: 3093,
		Flags: Flags{
			HasSpectrum: true, HasATU: true, HasCTCSS: true, HasDTCS: true,
			HasTBPF: true, HasTransmit: true, HasPTTCmd: true,
			HasDataModes: true, HasVFOAB: true, HasSpecifyMainSubCmd: true,
		},
		SpectSeqMax: 15, SpectAmpMax: 144, SpectLenMax: 689,
		Addresses:   defaultAddressTable(),
		Bands:       commonHFBands,
		Modes:       append(append([]ModeEntry{}, commonModes...), ModeEntry{PSK, 0x12}),
		BandStackNums: []int{0, 1, 2},
		Attenuators: []byte{0x00, 0x06, 0x12, 0x18},
		Preamps:     []byte{0x00, 0x01, 0x02},
		Antennas:    []byte{0x00, 0x01},
	},
	0xA2: { // IC-9700
		ModelID: 0xA2, ModelName: "IC-9700", HamlibModel: 3101,
		Flags: Flags{
			HasSpectrum: true, HasCTCSS: true, HasDTCS: true,
			HasTBPF: true, HasTransmit: true, HasPTTCmd: true,
			HasDataModes: true, HasVFOAB: true, HasVFOMS: true,
			HasAdvancedRptrToneCmds: true,
		},
		SpectSeqMax: 11, SpectAmpMax: 144, SpectLenMax: 475,
		Addresses: defaultAddressTable(),
		Bands: []Band{
			{"2m", 144_000_000, 148_000_000, FM},
			{"70cm", 430_000_000, 450_000_000, FM},
			{"23cm", 1_240_000_000, 1_300_000_000, FM},
		},
		Modes:         append(append([]ModeEntry{}, commonModes...), ModeEntry{DD, 0x0A}, ModeEntry{DV, 0x17}),
		BandStackNums: []int{0, 1, 2},
		Antennas:      []byte{0x00},
	},
	0xA4: { // IC-705
		ModelID: 0xA4, ModelName: "IC-705", HamlibModel: 3085,
		Flags: Flags{
			HasSpectrum: true, HasATU: true, HasCTCSS: true, HasDTCS: true,
			HasTBPF: true, HasTransmit: true, HasPTTCmd: true,
			HasDataModes: true, HasVFOAB: true, HasVFOMS: true,
		},
		SpectSeqMax: 11, SpectAmpMax: 144, SpectLenMax: 475,
		Addresses:   defaultAddressTable(),
		Bands:       commonHFBands,
		Modes:       append(append([]ModeEntry{}, commonModes...), ModeEntry{PSK, 0x12}),
		BandStackNums: []int{0, 1, 2},
		Attenuators: []byte{0x00, 0x06, 0x12, 0x18},
		Preamps:     []byte{0x00, 0x01, 0x02},
		Antennas:    []byte{0x00},
	},
	0x96: { // IC-R8600 (receiver only)
		ModelID: 0x96, ModelName: "IC-R8600", HamlibModel: 3090,
		Flags: Flags{
			HasSpectrum: true, HasCTCSS: true, HasDTCS: true, HasTBPF: true,
			HasVFOAB: true, HasRXAntenna: true,
		},
		SpectSeqMax: 11, SpectAmpMax: 144, SpectLenMax: 475,
		Addresses:   defaultAddressTable(),
		Bands:       []Band{{"Gen", 10_000, 3_000_000_000, WFM}},
		Modes:       commonModes,
		BandStackNums: []int{0, 1, 2},
		Antennas:    []byte{0x00, 0x01, 0x02},
	},
	0x88: { // IC-7100
		ModelID: 0x88, ModelName: "IC-7100", HamlibModel: 3073,
		Flags: Flags{
			HasSpectrum: false, HasATU: true, HasCTCSS: true, HasDTCS: true,
			HasTransmit: true, HasPTTCmd: true, HasDataModes: true, HasVFOAB: true,
			HasQuickSplitCmd: true,
		},
		Addresses: func() AddressTable {
			a := defaultAddressTable()
			a.QuickSplitCommand = []byte{0x0F, 0x02} // simplex/duplex-offset quick split, not the 0F 00/01 convention
			a.TransceiveEnable = 0x75
			return a
		}(),
		Bands:       commonHFBands,
		Modes:       commonModes,
		BandStackNums: []int{0, 1, 2},
		Antennas:    []byte{0x00, 0x01},
	},
}

// defaultBands is what an unrecognized rig is assumed to tune, per
// spec.md §4.2 ("minimal flags, and common HF bands").
var defaultBands = commonHFBands

// Lookup returns the capability record for modelID, or a synthetic
// default record if the ID has no catalogue entry. The second return
// value is true only for a known model.
func Lookup(modelID byte) (Capability, bool) {
	if cap, ok := catalogue[modelID]; ok {
		return cap, true
	}
	return defaultCapability(modelID), false
}

func defaultCapability(modelID byte) Capability {
	return Capability{
		ModelID:   modelID,
		ModelName: defaultModelName(modelID),
		Flags: Flags{
			HasVFOAB: true,
		},
		Addresses:     defaultAddressTable(),
		Bands:         defaultBands,
		Modes:         commonModes,
		BandStackNums: []int{0, 1, 2},
	}
}

func defaultModelName(modelID byte) string {
	const hexDigits = "0123456789abcdef"
	return "IC-0x" + string([]byte{hexDigits[modelID>>4], hexDigits[modelID&0x0f]})
}
