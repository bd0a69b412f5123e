package civframe

import (
	"bytes"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	payload := []byte{0x00, 0x94}
	raw := Encode(0xE1, 0x94, 0x19, payload)
	want := []byte{0xFE, 0xFE, 0xE1, 0x94, 0x19, 0x00, 0x94, 0xFD}
	if !bytes.Equal(raw, want) {
		t.Fatalf("Encode = % x, want % x", raw, want)
	}
	frames := Split(raw)
	if len(frames) != 1 {
		t.Fatalf("Split returned %d frames, want 1", len(frames))
	}
	f := frames[0]
	if f.To != 0xE1 || f.From != 0x94 || f.Cmd != 0x19 || !bytes.Equal(f.Payload, payload) {
		t.Fatalf("decoded frame mismatch: %+v", f)
	}
}

func TestSplitNeverPanicsOnArbitraryBytes(t *testing.T) {
	samples := [][]byte{
		nil,
		{},
		{0xFD},
		{0xFE},
		{0xFE, 0xFE},
		{0xFE, 0xFE, 0x01, 0x02, 0xFD, 0xFE, 0xFE, 0x03},
		bytes.Repeat([]byte{0xFE}, 64),
		bytes.Repeat([]byte{0xFD}, 64),
	}
	for _, s := range samples {
		frames := Split(s)
		for _, f := range frames {
			_ = f.To
			_ = f.From
			_ = f.Cmd
		}
	}
}

func TestSplitDropsFragmentWithStrayFEInPayload(t *testing.T) {
	raw := []byte{0xFE, 0xFE, 0xE1, 0x94, 0x19, 0xFE, 0x01, 0xFD}
	frames := Split(raw)
	if len(frames) != 0 {
		t.Fatalf("expected stray FE in payload to be dropped, got %+v", frames)
	}
}

func TestSplitRecoversSingleLeadingFE(t *testing.T) {
	raw := []byte{0xFE, 0xE1, 0x94, 0x19, 0x00, 0xFD}
	frames := Split(raw)
	if len(frames) != 1 {
		t.Fatalf("expected legacy echo recovery to yield 1 frame, got %d", len(frames))
	}
	if frames[0].To != 0xE1 || frames[0].From != 0x94 {
		t.Fatalf("recovered frame mismatch: %+v", frames[0])
	}
}

func TestSplitDropsFragmentNotStartingWithFE(t *testing.T) {
	raw := []byte{0x01, 0x02, 0x03, 0xFD}
	frames := Split(raw)
	if len(frames) != 0 {
		t.Fatalf("expected non-FE-prefixed fragment to be dropped, got %+v", frames)
	}
}

func TestSplitHandlesMultipleConcatenatedFrames(t *testing.T) {
	raw := append(Encode(0xE1, 0x94, 0x03, nil), Encode(0xE1, 0x94, 0x04, []byte{0x01})...)
	frames := Split(raw)
	if len(frames) != 2 {
		t.Fatalf("expected 2 frames, got %d", len(frames))
	}
	if frames[0].Cmd != 0x03 || frames[1].Cmd != 0x04 {
		t.Fatalf("frames out of order or wrong: %+v", frames)
	}
}

func TestAddressClassification(t *testing.T) {
	const us = 0xE1
	reply := Frame{To: us, From: 0x94}
	if !IsReplyToUs(reply, us) {
		t.Fatalf("expected reply to be addressed to us")
	}
	unsolicited := Frame{To: Broadcast, From: 0x94}
	if !IsUnsolicited(unsolicited) {
		t.Fatalf("expected broadcast-to frame to be unsolicited")
	}
	echo := Frame{To: 0x94, From: us}
	if !IsLocalEcho(echo, us) {
		t.Fatalf("expected frame from our own address to be a local echo")
	}
}

func TestToneRoundTripAllFourDigitCodesAndInvertBits(t *testing.T) {
	for v := 0; v <= 9999; v++ {
		value := uint16(v)
		for _, txInv := range []bool{false, true} {
			for _, rxInv := range []bool{false, true} {
				tone := Tone{Value: value, InvertTX: txInv, InvertRX: rxInv}
				enc := EncodeTone(tone)
				if len(enc) != 3 {
					t.Fatalf("EncodeTone length = %d, want 3", len(enc))
				}
				dec, ok := DecodeTone(enc)
				if !ok {
					t.Fatalf("DecodeTone(%x) reported invalid", enc)
				}
				if dec != tone {
					t.Fatalf("tone round trip: got %+v, want %+v", dec, tone)
				}
			}
		}
	}
}
