// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	"github.com/go-audio/audio"
	"github.com/go-audio/wav"

	"github.com/ik5/sndmgr/utils"
)

const (
	bitDepth  = 16
	formatPCM = 1
)

// Writer encodes interleaved float32 samples as a 16-bit PCM WAV file.
// The header sizes are patched on Close, so the destination must seek.
type Writer struct {
	enc      *wav.Encoder
	buf      *audio.IntBuffer
	channels int
	frames   int
	wrote    bool
	closed   bool
}

func NewWriter(ws io.WriteSeeker, sampleRate, channels int) (*Writer, error) {
	if channels != 1 && channels != 2 {
		return nil, ErrInvalidChannels
	}
	if sampleRate <= 0 {
		return nil, ErrInvalidRate
	}

	return &Writer{
		enc: wav.NewEncoder(ws, sampleRate, bitDepth, channels, formatPCM),
		buf: &audio.IntBuffer{
			Format:         &audio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		channels: channels,
	}, nil
}

// WriteSamples appends whole frames. Values outside [-1, 1] are clipped.
func (w *Writer) WriteSamples(samples []float32) error {
	if w.closed {
		return ErrWriterClosed
	}
	if len(samples)%w.channels != 0 {
		return ErrPartialFrame
	}

	w.buf.Data = utils.FloatsToPCM16(w.buf.Data, samples)
	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	w.wrote = true
	w.frames += len(samples) / w.channels

	return nil
}

// Frames reports how many frames were written so far.
func (w *Writer) Frames() int { return w.frames }

// Close finalizes the headers. It does not close the destination.
func (w *Writer) Close() error {
	if w.closed {
		return nil
	}
	w.closed = true

	// the encoder emits its headers on the first write only
	if !w.wrote {
		w.buf.Data = w.buf.Data[:0]
		if err := w.enc.Write(w.buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
