//go:build !opus
// +build !opus

package lantransport

import "log"

// OpusCodec is the no-Opus stub: Encode/Decode always pass PCM through
// unchanged. Build with -tags opus and libopus installed to compress the
// audio subchannel instead.
type OpusCodec struct{}

// NewOpusCodec logs a warning if the caller asked for compression this
// build can't provide, then returns a pass-through codec.
func NewOpusCodec(sampleRate int, enabled bool) *OpusCodec {
	if enabled {
		log.Printf("lantransport: opus compression requested but not compiled in (build with -tags opus)")
	}
	return &OpusCodec{}
}

func (c *OpusCodec) Encode(pcm []int16) ([]byte, error) { return int16ToBytes(pcm), nil }

func (c *OpusCodec) Decode(frame []byte, frameSize int) ([]int16, error) {
	return bytesToInt16(frame), nil
}

func (c *OpusCodec) IsEnabled() bool { return false }
