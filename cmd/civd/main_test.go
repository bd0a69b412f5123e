package main

import (
	"testing"

	"github.com/bturbeville/wfview-sub001/internal/civframe"
)

func TestDecodeLoginReplyRejected(t *testing.T) {
	accepted, token, ok := decodeLoginReply([]byte{0x00})
	if !ok {
		t.Fatalf("ok = false, want true")
	}
	if accepted {
		t.Fatalf("accepted = true, want false")
	}
	if token != 0 {
		t.Fatalf("token = %d, want 0", token)
	}
}

func TestDecodeLoginReplyAccepted(t *testing.T) {
	accepted, token, ok := decodeLoginReply([]byte{0x01, 0x00, 0x00, 0x12, 0x34})
	if !ok || !accepted {
		t.Fatalf("ok=%v accepted=%v, want true true", ok, accepted)
	}
	if token != 0x1234 {
		t.Fatalf("token = %#x, want 0x1234", token)
	}
}

func TestDecodeLoginReplyAcceptedShortTrailer(t *testing.T) {
	accepted, token, ok := decodeLoginReply([]byte{0x01, 0x05})
	if !ok || !accepted {
		t.Fatalf("ok=%v accepted=%v, want true true", ok, accepted)
	}
	if token != 5 {
		t.Fatalf("token = %d, want 5", token)
	}
}

func TestDecodeLoginReplyEmptyIsNotOK(t *testing.T) {
	if _, _, ok := decodeLoginReply(nil); ok {
		t.Fatalf("ok = true for empty datagram, want false")
	}
}

func TestConsumeFramesSplitsCompleteFramesAndKeepsTrailingPartial(t *testing.T) {
	complete := civframe.Encode(0xE1, 0x94, 0x03, nil)
	partial := []byte{0xFE, 0xFE, 0x94, 0xE1, 0x04}

	var got []civframe.Frame
	remainder, consumed := consumeFrames(append(append([]byte{}, complete...), partial...), func(f civframe.Frame) {
		got = append(got, f)
	})

	if len(got) != 1 {
		t.Fatalf("got %d frames, want 1", len(got))
	}
	if got[0].Cmd != 0x03 {
		t.Fatalf("frame cmd = %#x, want 0x03", got[0].Cmd)
	}
	if consumed != len(complete) {
		t.Fatalf("consumed = %d, want %d", consumed, len(complete))
	}
	if string(remainder) != string(partial) {
		t.Fatalf("remainder = %v, want %v", remainder, partial)
	}
}

func TestConsumeFramesNoTerminatorKeepsEverything(t *testing.T) {
	buf := []byte{0xFE, 0xFE, 0x94, 0xE1}
	remainder, consumed := consumeFrames(buf, func(civframe.Frame) {
		t.Fatalf("handle called with no terminator present")
	})
	if consumed != 0 {
		t.Fatalf("consumed = %d, want 0", consumed)
	}
	if string(remainder) != string(buf) {
		t.Fatalf("remainder = %v, want %v", remainder, buf)
	}
}

func TestConsumeFramesMultipleCompleteFrames(t *testing.T) {
	first := civframe.Encode(0xE1, 0x94, 0x03, nil)
	second := civframe.Encode(0xE1, 0x94, 0x04, []byte{0x01})
	buf := append(append([]byte{}, first...), second...)

	var got []civframe.Frame
	remainder, consumed := consumeFrames(buf, func(f civframe.Frame) {
		got = append(got, f)
	})

	if len(got) != 2 {
		t.Fatalf("got %d frames, want 2", len(got))
	}
	if consumed != len(buf) {
		t.Fatalf("consumed = %d, want %d", consumed, len(buf))
	}
	if len(remainder) != 0 {
		t.Fatalf("remainder = %v, want empty", remainder)
	}
}
