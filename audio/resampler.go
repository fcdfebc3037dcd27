// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/sndmgr/utils"
)

// Resampler streams from src to a target sample rate using cubic
// interpolation. The conversion ratio can change while streaming, which is
// how voice pitch is applied. Works on interleaved samples and preserves the
// channel count.
type Resampler struct {
	src      Source
	dstRate  float64
	pitch    float64
	ratio    float64 // source frames consumed per output frame
	channels int

	// frames[0] = t-1, frames[1] = t0, frames[2] = t+1, frames[3] = t+2
	frames   [4][]float32
	hasFrame [4]bool

	pos float64

	srcBuf []float32
	eof    bool
	done   bool // io.EOF was returned to the caller

	// one-pole low-pass used while downsampling
	filterState []float32
	useFilter   bool
	filterAlpha float32
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := max(src.Channels(), 1)

	r := &Resampler{
		src:         src,
		dstRate:     float64(dstRate),
		pitch:       1,
		channels:    channels,
		srcBuf:      make([]float32, 4096),
		filterState: make([]float32, channels),
		filterAlpha: 0.5,
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}
	r.updateRatio()

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }
func (r *Resampler) BufSize() int    { return r.src.BufSize() }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// SetPitch scales playback speed; 1 keeps the source rate.
func (r *Resampler) SetPitch(pitch float64) {
	if pitch <= 0 {
		return
	}
	r.pitch = pitch
	r.updateRatio()
}

// Reset forgets the interpolation history and any end-of-stream state so
// reading starts over from whatever src yields next. The source rate is
// sampled again.
func (r *Resampler) Reset() {
	for i := range r.hasFrame {
		r.hasFrame[i] = false
	}
	clear(r.filterState)
	r.pos = 0
	r.eof = false
	r.done = false
	r.updateRatio()
}

func (r *Resampler) updateRatio() {
	srcRate := float64(r.src.SampleRate())
	if srcRate <= 0 || r.dstRate <= 0 {
		r.ratio = 1
		return
	}

	r.ratio = srcRate * r.pitch / r.dstRate
	r.useFilter = r.ratio > 1.0
}

// fetchNextFrame shifts the window and reads one frame into frames[3].
func (r *Resampler) fetchNextFrame() error {
	if r.eof {
		return io.EOF
	}

	copy(r.frames[0], r.frames[1])
	copy(r.frames[1], r.frames[2])
	copy(r.frames[2], r.frames[3])
	r.hasFrame[0] = r.hasFrame[1]
	r.hasFrame[1] = r.hasFrame[2]
	r.hasFrame[2] = r.hasFrame[3]

	n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
	if n > 0 {
		copy(r.frames[3], r.srcBuf[:n])
		r.hasFrame[3] = true
		r.filter(r.frames[3])
	} else {
		r.hasFrame[3] = false
	}

	if err == io.EOF {
		r.eof = true
		if !r.hasFrame[3] {
			return io.EOF
		}
	} else if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (r *Resampler) filter(frame []float32) {
	if !r.useFilter {
		return
	}
	for c := range r.channels {
		frame[c] = r.filterAlpha*frame[c] + (1-r.filterAlpha)*r.filterState[c]
		r.filterState[c] = frame[c]
	}
}

func (r *Resampler) prime() error {
	for i := range 4 {
		n, err := r.src.ReadSamples(r.srcBuf[:r.channels])
		if n > 0 {
			copy(r.frames[i], r.srcBuf[:n])
			r.hasFrame[i] = true
			if i == 0 && r.useFilter {
				copy(r.filterState, r.srcBuf[:n])
			}
		}

		if err == io.EOF {
			r.eof = true
			if i == 0 && n == 0 {
				return io.EOF
			}
			last := i
			if n == 0 {
				last = i - 1
			}
			for j := last + 1; j < 4; j++ {
				copy(r.frames[j], r.frames[last])
				r.hasFrame[j] = true
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// ReadSamples produces resampled frames into dst, whose length must be a
// multiple of the channel count. Returns the number of values written.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}
	if r.done {
		return 0, io.EOF
	}

	if !r.hasFrame[1] {
		if err := r.prime(); err != nil {
			if err == io.EOF {
				r.done = true
			}
			return 0, err
		}
	}

	written := 0
	framesNeeded := len(dst) / r.channels

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.fetchNextFrame(); err != nil {
				if err == io.EOF {
					r.done = true
					return written * r.channels, io.EOF
				}
				return written * r.channels, err
			}
		}

		if !r.hasFrame[1] || !r.hasFrame[2] {
			r.done = true
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		for c := range r.channels {
			y1 := r.frames[1][c]
			y2 := r.frames[2][c]
			y0, y3 := y1, y2
			if r.hasFrame[0] {
				y0 = r.frames[0][c]
			}
			if r.hasFrame[3] {
				y3 = r.frames[3][c]
			}

			dst[written*r.channels+c] = utils.CubicInterpolate(y0, y1, y2, y3, alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
