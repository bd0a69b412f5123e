package bcd

import "testing"

func TestByteRoundTrip(t *testing.T) {
	for tens := uint8(0); tens <= 9; tens++ {
		for units := uint8(0); units <= 9; units++ {
			b := EncodeByte(tens, units)
			got, ok := DecodeByte(b)
			if !ok {
				t.Fatalf("DecodeByte(%#x) reported invalid", b)
			}
			want := tens*10 + units
			if got != want {
				t.Fatalf("DecodeByte(%#x) = %d, want %d", b, got, want)
			}
		}
	}
}

func TestDecodeByteRejectsBadNibbles(t *testing.T) {
	cases := []byte{0xA0, 0x0A, 0xFF}
	for _, b := range cases {
		if _, ok := DecodeByte(b); ok {
			t.Fatalf("DecodeByte(%#x) should be invalid", b)
		}
	}
}

func TestFrequencyRoundTrip(t *testing.T) {
	freqs := []uint64{0, 1, 999, 14_250_000, 14_456_000, 9_999_999_999}
	for _, f := range freqs {
		enc := EncodeFrequency(f, 5)
		if len(enc) != 5 {
			t.Fatalf("EncodeFrequency(%d) length = %d, want 5", f, len(enc))
		}
		dec, ok := DecodeFrequency(enc)
		if !ok {
			t.Fatalf("DecodeFrequency(%x) reported invalid", enc)
		}
		if f < 10_000_000_000 && dec != f%10_000_000_000 {
			// within the 10-digit (5-byte) representable range, must be exact
			if f < 10_000_000_000 {
				if dec != f {
					t.Fatalf("round trip %d -> %x -> %d", f, enc, dec)
				}
			}
		}
	}
}

func TestEncodeFrequencyTruncatesTowardZero(t *testing.T) {
	// 5 bytes hold 10 digits, max representable is 9999999999
	enc := EncodeFrequency(20_000_000_000, 5)
	dec, ok := DecodeFrequency(enc)
	if !ok {
		t.Fatalf("decode failed")
	}
	if dec != 9_999_999_999 {
		t.Fatalf("truncation: got %d, want 9999999999", dec)
	}
}

func TestDecodeFrequencyRejectsMalformedNibbles(t *testing.T) {
	bad := []byte{0xAB, 0x00, 0x00, 0x00, 0x00}
	if _, ok := DecodeFrequency(bad); ok {
		t.Fatalf("expected malformed nibble to be rejected")
	}
}

func TestEncodeUintOverAllFourDigitValues(t *testing.T) {
	for n := uint64(0); n < 10000; n++ {
		enc := EncodeUint(n, 4)
		dec, ok := DecodeUint(enc)
		if !ok || dec != n {
			t.Fatalf("EncodeUint/DecodeUint(%d) round trip failed: got %d ok=%v", n, dec, ok)
		}
	}
}
