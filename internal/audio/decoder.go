package audio

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/jfreymuth/oggvorbis"
	"github.com/lexicc/lexicc/internal/tts"
)

// OggDecoder decodes Ogg Vorbis into 16-bit PCM with a fixed output layout.
type OggDecoder struct {
	sampleRate int
	channels   int
}

// NewOggDecoder creates a decoder producing PCM at sampleRate with the given
// channel count.
func NewOggDecoder(sampleRate, channels int) *OggDecoder {
	return &OggDecoder{sampleRate: sampleRate, channels: channels}
}

// Decode implements tts.Decoder.
func (d *OggDecoder) Decode(data []byte) (tts.Unit, error) {
	samples, format, err := oggvorbis.ReadAll(bytes.NewReader(data))
	if err != nil {
		return tts.Unit{}, tts.NewError(tts.KindDecode, "decode ogg vorbis", err)
	}
	if format.SampleRate != d.sampleRate {
		return tts.Unit{}, tts.NewError(tts.KindDecode, "decode ogg vorbis",
			fmt.Errorf("%w: got %d Hz, want %d Hz", tts.ErrFormatMismatch, format.SampleRate, d.sampleRate))
	}

	samples, err = remix(samples, format.Channels, d.channels)
	if err != nil {
		return tts.Unit{}, tts.NewError(tts.KindDecode, "decode ogg vorbis", err)
	}

	return tts.Unit{
		Audio:      toPCM16(samples),
		SampleRate: d.sampleRate,
		Channels:   d.channels,
	}, nil
}

// remix converts interleaved samples between mono and stereo.
func remix(samples []float32, from, to int) ([]float32, error) {
	switch {
	case from == to:
		return samples, nil
	case from == 2 && to == 1:
		out := make([]float32, len(samples)/2)
		for i := range out {
			out[i] = (samples[2*i] + samples[2*i+1]) / 2
		}
		return out, nil
	case from == 1 && to == 2:
		out := make([]float32, len(samples)*2)
		for i, s := range samples {
			out[2*i] = s
			out[2*i+1] = s
		}
		return out, nil
	default:
		return nil, fmt.Errorf("%w: cannot map %d channels to %d", tts.ErrFormatMismatch, from, to)
	}
}

// toPCM16 converts float samples in [-1, 1] to signed 16-bit little endian.
func toPCM16(samples []float32) []byte {
	pcm := make([]byte, len(samples)*2)
	for i, s := range samples {
		if s > 1 {
			s = 1
		} else if s < -1 {
			s = -1
		}
		binary.LittleEndian.PutUint16(pcm[2*i:], uint16(int16(s*32767)))
	}
	return pcm
}

var _ tts.Decoder = (*OggDecoder)(nil)
