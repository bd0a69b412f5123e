// Package bcd implements the little-endian binary-coded-decimal helpers
// the CI-V wire format uses for frequencies, levels, and tone codes.
package bcd

// EncodeByte packs two decimal digits (0-9) into one BCD byte, high nibble first.
func EncodeByte(tens, units uint8) byte {
	return (tens << 4) | (units & 0x0f)
}

// DecodeByte unpacks one BCD byte into its decimal value 0-99.
// ok is false if either nibble exceeds 9.
func DecodeByte(b byte) (value uint8, ok bool) {
	hi := b >> 4
	lo := b & 0x0f
	if hi > 9 || lo > 9 {
		return 0, false
	}
	return hi*10 + lo, true
}

// EncodeUint writes v as nibbles decimal digits, little-endian byte order
// (least-significant pair of digits first), returning ceil(nibbles/2) bytes.
// v is truncated toward zero if it doesn't fit.
func EncodeUint(v uint64, nibbles int) []byte {
	n := (nibbles + 1) / 2
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		units := uint8(v % 10)
		v /= 10
		tens := uint8(v % 10)
		v /= 10
		out[i] = EncodeByte(tens, units)
	}
	return out
}

// DecodeUint reads a little-endian BCD byte sequence into an unsigned integer.
// ok is false if any nibble is not a valid decimal digit.
func DecodeUint(data []byte) (value uint64, ok bool) {
	mul := uint64(1)
	for _, b := range data {
		d, valid := DecodeByte(b)
		if !valid {
			return 0, false
		}
		value += uint64(d) * mul
		mul *= 100
	}
	return value, true
}

const (
	// MaxFrequencyHz is the spec-mandated upper bound on a frequency value.
	MaxFrequencyHz = uint64(10_000_000_000)
	// defaultFrequencyBytes is the wire width for rigs addressing up to 100 MHz.
	defaultFrequencyBytes = 5
)

// EncodeFrequency encodes hz as numBytes little-endian BCD bytes (10 nibbles
// per 5 bytes). hz is truncated toward zero if it exceeds what numBytes can
// represent. numBytes defaults to 5 if given as 0.
func EncodeFrequency(hz uint64, numBytes int) []byte {
	if numBytes <= 0 {
		numBytes = defaultFrequencyBytes
	}
	nibbles := numBytes * 2
	max := uint64(1)
	for i := 0; i < nibbles; i++ {
		max *= 10
	}
	if hz >= max {
		hz = max - 1
	}
	if hz > MaxFrequencyHz {
		hz = MaxFrequencyHz
	}
	return EncodeUint(hz, nibbles)
}

// DecodeFrequency decodes a little-endian BCD frequency field. A frame is
// malformed (ok=false) if any nibble is not a valid decimal digit.
func DecodeFrequency(data []byte) (hz uint64, ok bool) {
	return DecodeUint(data)
}
