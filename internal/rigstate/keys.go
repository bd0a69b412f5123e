// Package rigstate implements the rig-state register (C4): an observable
// key-value store of rig properties, each carrying valid/updated flags,
// shared between the rig-commander worker and the command server.
package rigstate

// Key enumerates every state register slot. Order here is the
// key-enumeration order spec.md §5 requires reconciliation to be
// deterministic over: add new keys at the end, never renumber existing
// ones, so iteration order stays stable across releases.
type Key int

const (
	CurrentVFO Key = iota
	VFOAFreq
	VFOBFreq
	Mode
	Filter
	DataMode
	Passband
	PTT
	Duplex
	RITValue
	RITEnable
	Preamp
	Attenuator
	AFLevel
	RFLevel
	SQLLevel
	MicLevel
	CompLevel
	MonitorLevel
	VOXLevel
	AntiVOXLevel
	NBFunc
	NRFunc
	ANFFunc
	ToneFunc
	TSQLFunc
	CompFunc
	MonFunc
	VOXFunc
	BreakInSemi
	BreakInFull
	MNFunc
	TunerFunc
	LockFunc
	ScopeFunc
	SatelliteFunc
	MeterS
	MeterPower
	MeterSWR
	MeterALC
	MeterComp
	MeterVd
	MeterId
	MeterCenter
	CWPitch
	KeySpeed
	KeyNotch
	IFShift
	TBPFInner
	TBPFOuter
	Antenna
	AntennaType
	CTCSSTone
	TSQLTone
	DTCSCode
	CSQLCode
	ClockDate
	ClockTime
	ClockUTCOffset
	PowerOnOff
	AGCFunc
	Split
	SplitTXFreq

	numKeys // sentinel: count of keys, also the canonical enumeration length
)

// AllKeys returns every register key in deterministic enumeration order.
func AllKeys() []Key {
	keys := make([]Key, numKeys)
	for i := range keys {
		keys[i] = Key(i)
	}
	return keys
}

// String names a key for logging.
func (k Key) String() string {
	if name, ok := keyNames[k]; ok {
		return name
	}
	return "UNKNOWN_KEY"
}

var keyNames = map[Key]string{
	CurrentVFO: "CURRENTVFO", VFOAFreq: "VFOAFREQ", VFOBFreq: "VFOBFREQ",
	Mode: "MODE", Filter: "FILTER", DataMode: "DATAMODE", Passband: "PASSBAND",
	PTT: "PTT", Duplex: "DUPLEX", RITValue: "RITVALUE", RITEnable: "RITENABLE",
	Preamp: "PREAMP", Attenuator: "ATTENUATOR", AFLevel: "AFLEVEL",
	RFLevel: "RFLEVEL", SQLLevel: "SQLLEVEL", MicLevel: "MICLEVEL",
	CompLevel: "COMPLEVEL", MonitorLevel: "MONITORLEVEL", VOXLevel: "VOXLEVEL",
	AntiVOXLevel: "ANTIVOXLEVEL", NBFunc: "NB", NRFunc: "NR", ANFFunc: "ANF",
	ToneFunc: "TONE", TSQLFunc: "TSQL", CompFunc: "COMP", MonFunc: "MON",
	VOXFunc: "VOX", BreakInSemi: "BREAKINSEMI", BreakInFull: "BREAKINFULL",
	MNFunc: "MN", TunerFunc: "TUNER", LockFunc: "LOCK", ScopeFunc: "SCOPE",
	SatelliteFunc: "SATMODE", MeterS: "METERS", MeterPower: "METERPOWER",
	MeterSWR: "METERSWR", MeterALC: "METERALC", MeterComp: "METERCOMP",
	MeterVd: "METERVD", MeterId: "METERID", MeterCenter: "METERCENTER",
	CWPitch: "CWPITCH", KeySpeed: "KEYSPEED", KeyNotch: "KEYNOTCH",
	IFShift: "IFSHIFT", TBPFInner: "TBPFINNER", TBPFOuter: "TBPFOUTER",
	Antenna: "ANTENNA", AntennaType: "ANTENNATYPE", CTCSSTone: "CTCSSTONE",
	TSQLTone: "TSQLTONE", DTCSCode: "DTCSCODE", CSQLCode: "CSQLCODE",
	ClockDate: "CLOCKDATE", ClockTime: "CLOCKTIME", ClockUTCOffset: "CLOCKUTCOFFSET",
	PowerOnOff: "POWERONOFF", AGCFunc: "AGC", Split: "SPLIT", SplitTXFreq: "SPLITTXFREQ",
}
