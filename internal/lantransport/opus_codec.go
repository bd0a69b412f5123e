//go:build opus
// +build opus

package lantransport

import (
	"log"

	opus "gopkg.in/hraban/opus.v2"
)

// OpusCodec wraps an Opus encoder/decoder pair for the audio subchannel.
// Icom LAN radios negotiate Opus compression to cut bandwidth on slow
// links; PCM is always an acceptable fallback.
type OpusCodec struct {
	encoder *opus.Encoder
	decoder *opus.Decoder
	enabled bool
}

// NewOpusCodec builds a codec for the given sample rate. enabled selects
// whether Encode actually compresses or passes PCM through unchanged.
func NewOpusCodec(sampleRate int, enabled bool) *OpusCodec {
	c := &OpusCodec{}
	if !enabled {
		return c
	}
	enc, err := opus.NewEncoder(sampleRate, 1, opus.AppVoIP)
	if err != nil {
		log.Printf("lantransport: opus encoder unavailable, falling back to PCM: %v", err)
		return c
	}
	dec, err := opus.NewDecoder(sampleRate, 1)
	if err != nil {
		log.Printf("lantransport: opus decoder unavailable, falling back to PCM: %v", err)
		return c
	}
	c.encoder, c.decoder, c.enabled = enc, dec, true
	return c
}

// Encode compresses PCM samples to an Opus frame, or returns them
// unchanged (as bytes) if Opus isn't enabled.
func (c *OpusCodec) Encode(pcm []int16) ([]byte, error) {
	if !c.enabled {
		return int16ToBytes(pcm), nil
	}
	out := make([]byte, 4000)
	n, err := c.encoder.Encode(pcm, out)
	if err != nil {
		return int16ToBytes(pcm), err
	}
	return out[:n], nil
}

// Decode expands an Opus frame back to PCM samples.
func (c *OpusCodec) Decode(frame []byte, frameSize int) ([]int16, error) {
	if !c.enabled {
		return bytesToInt16(frame), nil
	}
	out := make([]int16, frameSize)
	n, err := c.decoder.Decode(frame, out)
	if err != nil {
		return nil, err
	}
	return out[:n], nil
}

// IsEnabled reports whether this codec is actually compressing.
func (c *OpusCodec) IsEnabled() bool { return c.enabled }
