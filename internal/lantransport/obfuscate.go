package lantransport

// obfuscationTable is the fixed 128-byte XOR table applied to
// username/password bytes before transmission. Its byte values are not
// the table Icom radios use (see DESIGN.md), so encodeCredential output
// round-trips through decodeCredential but does not match what a radio
// expects. This is obfuscation, not security (spec.md §4.6): a fixed
// table provides no confidentiality against an eavesdropper, only
// protection from a casual packet-capture read.
var obfuscationTable = [128]byte{
	0x4B, 0x61, 0x73, 0x61, 0x6D, 0x70, 0x69, 0x5A, 0x2B, 0x7B, 0x21, 0x7A, 0x5E, 0x46, 0x17, 0x0E,
	0xB6, 0x84, 0xC4, 0xD1, 0x10, 0xF1, 0xEE, 0x9E, 0xB8, 0xC5, 0x1A, 0xF5, 0x22, 0x28, 0x78, 0x43,
	0xAC, 0x15, 0x6E, 0xC9, 0x6A, 0x38, 0x1D, 0xCC, 0x24, 0x85, 0xFA, 0xE5, 0x3B, 0xA0, 0xF2, 0x5D,
	0x5F, 0xDF, 0xD7, 0x2D, 0x40, 0xEC, 0xBD, 0x35, 0xE9, 0xA4, 0xB9, 0x33, 0xB1, 0xA1, 0xA6, 0x4F,
	0x72, 0xD9, 0x92, 0xB2, 0x01, 0xAE, 0x3A, 0x7E, 0xA8, 0x4E, 0x66, 0x9F, 0x88, 0x75, 0xC3, 0x99,
	0x1F, 0x97, 0xD2, 0xB5, 0x86, 0x52, 0xF8, 0x7D, 0x30, 0xCE, 0xF0, 0xDB, 0x1C, 0xAA, 0xD5, 0xC2,
	0x06, 0x02, 0x77, 0x09, 0x2C, 0xFD, 0x6C, 0xE3, 0x5C, 0xBF, 0x7F, 0x8C, 0x90, 0xD3, 0xB4, 0x12,
	0x95, 0x0A, 0xE4, 0x8E, 0xA5, 0xFC, 0xAD, 0x29, 0xF9, 0xC0, 0x68, 0x9D, 0xE7, 0xB0, 0xFF, 0x53,
}

// obfuscate XOR's data through the fixed table, cycling if data is
// longer than 128 bytes.
func obfuscate(data []byte) []byte {
	out := make([]byte, len(data))
	for i, b := range data {
		out[i] = b ^ obfuscationTable[i%len(obfuscationTable)]
	}
	return out
}

// credentialFieldLen is the fixed wire width of an obfuscated username or
// password field (spec.md §6).
const credentialFieldLen = 32

// encodeCredential obfuscates and pads/truncates s to the fixed 32-byte
// login field width.
func encodeCredential(s string) []byte {
	buf := make([]byte, credentialFieldLen)
	copy(buf, s)
	return obfuscate(buf)
}

// decodeCredential reverses encodeCredential (XOR is its own inverse),
// trimming trailing NUL padding.
func decodeCredential(field []byte) string {
	plain := obfuscate(field)
	n := len(plain)
	for n > 0 && plain[n-1] == 0 {
		n--
	}
	return string(plain[:n])
}
