// Package civframe implements the CI-V frame codec (C1): encoding and
// decoding of "FE FE to from cmd [sub] payload FD" byte sequences, and
// the small BCD-based tone encoding that rides inside CI-V payloads.
//
// The codec never blocks and never allocates beyond its output buffer;
// malformed input is dropped rather than surfaced as an error, per the
// "codec never blocks" concurrency contract. Sub-commands and their
// arguments are not split out here: a Frame's Payload is everything
// after the command byte, and C3's dispatch table reads payload[0] as
// the sub-command and payload[1:] as arguments when a given Cmd uses one.
package civframe

import "github.com/bturbeville/wfview-sub001/internal/bcd"

const (
	preamble   = 0xFE
	terminator = 0xFD
	// Broadcast is the "to" address used for rig-identification queries.
	Broadcast byte = 0x00
)

// Frame is a single decoded CI-V message, header fields split out from
// its command payload.
type Frame struct {
	To      byte
	From    byte
	Cmd     byte
	Payload []byte // bytes after cmd, excluding the FD terminator
}

// Encode serializes a frame as FE FE to from cmd payload FD.
func Encode(to, from, cmd byte, payload []byte) []byte {
	out := make([]byte, 0, 5+len(payload))
	out = append(out, preamble, preamble, to, from, cmd)
	out = append(out, payload...)
	out = append(out, terminator)
	return out
}

// Split breaks a possibly-multi-frame byte buffer on FD terminators and
// parses each fragment. Fragments not beginning with "FE FE" are dropped,
// except a fragment beginning with a single FE, which has a leading FE
// prepended before parsing (legacy echo recovery). Fragments whose body
// contains a stray FE byte are dropped as corrupt. Split never panics
// and never returns a Frame with fewer than 3 header bytes consumed.
func Split(buf []byte) []Frame {
	var frames []Frame
	start := 0
	for i := 0; i < len(buf); i++ {
		if buf[i] != terminator {
			continue
		}
		frag := buf[start : i+1]
		start = i + 1
		if f, ok := parseFragment(frag); ok {
			frames = append(frames, f)
		}
	}
	return frames
}

// parseFragment parses one FD-terminated fragment, FE FE included.
func parseFragment(frag []byte) (Frame, bool) {
	if len(frag) == 0 || frag[len(frag)-1] != terminator {
		return Frame{}, false
	}
	if frag[0] == preamble && (len(frag) < 2 || frag[1] != preamble) {
		// single leading FE: legacy echo recovery, prepend the missing one
		recovered := make([]byte, 0, len(frag)+1)
		recovered = append(recovered, preamble)
		recovered = append(recovered, frag...)
		frag = recovered
	}
	if len(frag) < 2 || frag[0] != preamble || frag[1] != preamble {
		return Frame{}, false
	}
	body := frag[2 : len(frag)-1] // to, from, cmd, payload...
	if len(body) < 3 {
		return Frame{}, false
	}
	payload := body[3:]
	for _, b := range payload {
		if b == preamble {
			// stray FE in the payload: corrupt frame
			return Frame{}, false
		}
	}
	return Frame{
		To:      body[0],
		From:    body[1],
		Cmd:     body[2],
		Payload: append([]byte(nil), payload...),
	}, true
}

// IsReplyToUs reports whether a rig-originated frame is addressed to our
// controller identity.
func IsReplyToUs(f Frame, ourAddr byte) bool {
	return f.To == ourAddr
}

// IsUnsolicited reports whether a frame is a rig-initiated update not sent
// in reply to any particular request (broadcast to address 0x00).
func IsUnsolicited(f Frame) bool {
	return f.To == Broadcast
}

// IsLocalEcho reports whether a frame is our own transmission echoed back
// to us by a half-duplex serial link.
func IsLocalEcho(f Frame, ourAddr byte) bool {
	return f.From == ourAddr
}

// Tone is a CTCSS (hertz x10) or DTCS code value with independent TX/RX
// invert flags, as carried by the 1B-family commands.
type Tone struct {
	Value    uint16
	InvertTX bool
	InvertRX bool
}

const (
	toneInvertTXBit = 1 << 0
	toneInvertRXBit = 1 << 1
)

// EncodeTone packs a Tone into its 3-byte wire form: one invert-flags byte
// followed by two BCD bytes holding the 4-digit value.
func EncodeTone(t Tone) []byte {
	var flags byte
	if t.InvertTX {
		flags |= toneInvertTXBit
	}
	if t.InvertRX {
		flags |= toneInvertRXBit
	}
	digits := bcd.EncodeUint(uint64(t.Value), 4)
	return append([]byte{flags}, digits...)
}

// DecodeTone unpacks a 3-byte tone field. ok is false if the BCD digits
// are malformed.
func DecodeTone(data []byte) (Tone, bool) {
	if len(data) != 3 {
		return Tone{}, false
	}
	value, ok := bcd.DecodeUint(data[1:3])
	if !ok {
		return Tone{}, false
	}
	return Tone{
		Value:    uint16(value),
		InvertTX: data[0]&toneInvertTXBit != 0,
		InvertRX: data[0]&toneInvertRXBit != 0,
	}, true
}
