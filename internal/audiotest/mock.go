// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"io"
	"math"
)

// PCMSource plays back a fixed interleaved buffer as an audio.Source and
// returns io.EOF together with the last samples.
type PCMSource struct {
	rate     int
	channels int
	pcm      []float32
	pos      int
}

func NewPCMSource(rate, channels int, pcm []float32) *PCMSource {
	return &PCMSource{rate: rate, channels: channels, pcm: pcm}
}

// NewConstantSource holds value in every sample of frames frames.
func NewConstantSource(rate, channels, frames int, value float32) *PCMSource {
	pcm := make([]float32, frames*channels)
	for i := range pcm {
		pcm[i] = value
	}

	return NewPCMSource(rate, channels, pcm)
}

// NewSineSource is a full scale sine at freq Hz, the same on every channel.
func NewSineSource(rate, channels, frames int, freq float64) *PCMSource {
	pcm := make([]float32, frames*channels)
	for f := range frames {
		v := float32(math.Sin(2 * math.Pi * freq * float64(f) / float64(rate)))
		for ch := range channels {
			pcm[f*channels+ch] = v
		}
	}

	return NewPCMSource(rate, channels, pcm)
}

func (p *PCMSource) SampleRate() int { return p.rate }
func (p *PCMSource) Channels() int   { return p.channels }
func (p *PCMSource) BufSize() int    { return 4096 }
func (p *PCMSource) Close() error    { return nil }

func (p *PCMSource) ReadSamples(dst []float32) (int, error) {
	if p.pos >= len(p.pcm) {
		return 0, io.EOF
	}

	n := copy(dst[:len(dst)-len(dst)%p.channels], p.pcm[p.pos:])
	p.pos += n

	if p.pos >= len(p.pcm) {
		return n, io.EOF
	}

	return n, nil
}
