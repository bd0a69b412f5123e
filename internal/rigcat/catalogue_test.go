package rigcat

import "testing"

func TestLookupKnownModel(t *testing.T) {
	cap, known := Lookup(0x94)
	if !known {
		t.Fatalf("IC-7300 model ID should be known")
	}
	if cap.ModelName != "IC-7300" {
		t.Fatalf("ModelName = %q, want IC-7300", cap.ModelName)
	}
	if !cap.Flags.HasSpectrum {
		t.Fatalf("IC-7300 should have spectrum support")
	}
}

func TestLookupUnknownModelSynthesizesDefault(t *testing.T) {
	cap, known := Lookup(0xF1)
	if known {
		t.Fatalf("0xF1 should not be a known model")
	}
	if cap.ModelName != "IC-0xf1" {
		t.Fatalf("ModelName = %q, want IC-0xf1", cap.ModelName)
	}
	if len(cap.Bands) == 0 {
		t.Fatalf("unknown model should still get common HF bands")
	}
	if cap.Flags.HasSpectrum {
		t.Fatalf("unknown model should have minimal (false) flags")
	}
}

func TestModeByteRoundTrip(t *testing.T) {
	cap, _ := Lookup(0x94)
	b, ok := cap.ModeByte(USB)
	if !ok {
		t.Fatalf("expected USB mode byte for IC-7300")
	}
	kind, ok := cap.ModeKindForByte(b)
	if !ok || kind != USB {
		t.Fatalf("ModeKindForByte(%x) = %v, %v; want USB, true", b, kind, ok)
	}
}

func TestModeByteUnknownKind(t *testing.T) {
	cap, _ := Lookup(0x94)
	if _, ok := cap.ModeByte(NXDN); ok {
		t.Fatalf("IC-7300 should not carry NXDN in its mode table")
	}
}
