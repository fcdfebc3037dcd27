// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"math"
)

// mockSource synthesizes totalSamples frames from waveform. Tests rewind it
// by zeroing generated.
type mockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames
	generated    int // frames handed out so far
	waveform     func(frame, channel int) float32
}

func newMockSource(sampleRate, channels, totalSamples int, waveform func(frame, channel int) float32) *mockSource {
	return &mockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

func newSilentSource(sampleRate, channels, frames int) *mockSource {
	return newConstantSource(sampleRate, channels, frames, 0)
}

func newSineSource(sampleRate, channels, frames int, freq float64) *mockSource {
	step := 2 * math.Pi * freq / float64(sampleRate)
	return newMockSource(sampleRate, channels, frames, func(frame, _ int) float32 {
		return float32(math.Sin(step * float64(frame)))
	})
}

func newConstantSource(sampleRate, channels, frames int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *mockSource) SampleRate() int { return m.sampleRate }
func (m *mockSource) Channels() int   { return m.channels }
func (m *mockSource) BufSize() int    { return 4096 }
func (m *mockSource) Close() error    { return nil }

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	left := m.totalSamples - m.generated
	if left <= 0 {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, left)
	for f := range frames {
		for ch := range m.channels {
			dst[f*m.channels+ch] = m.waveform(m.generated+f, ch)
		}
	}
	m.generated += frames

	if frames == left {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}
