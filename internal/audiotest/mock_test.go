// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"math"
	"testing"
)

func TestPCMSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := NewPCMSource(8000, 2, []float32{1, 2, 3, 4, 5, 6})

	// odd buffers are cut to whole frames
	dst := make([]float32, 3)
	n, err := src.ReadSamples(dst)
	if n != 2 || err != nil {
		t.Fatalf("ReadSamples() = %d, %v, want 2, nil", n, err)
	}

	dst = make([]float32, 8)
	n, err = src.ReadSamples(dst)
	if n != 4 || !errors.Is(err, io.EOF) {
		t.Fatalf("ReadSamples() = %d, %v, want 4, %v", n, err, io.EOF)
	}
	if dst[0] != 3 || dst[3] != 6 {
		t.Errorf("ReadSamples() = %v, want [3 4 5 6]", dst[:n])
	}

	if n, err = src.ReadSamples(dst); n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() after end = %d, %v, want 0, %v", n, err, io.EOF)
	}
}

func TestPCMSource_Constructors(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		src   *PCMSource
		index int
		want  float32
	}{
		{name: "constant", src: NewConstantSource(8000, 4, 8, 0.5), index: 31, want: 0.5},
		{name: "sine start", src: NewSineSource(8000, 1, 8, 1000), index: 0, want: 0},
		{name: "sine peak", src: NewSineSource(8000, 1, 8, 1000), index: 2, want: 1},
		{name: "sine right channel", src: NewSineSource(8000, 2, 8, 1000), index: 5, want: 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := len(tt.src.pcm); got != 8*tt.src.Channels() {
				t.Fatalf("len(pcm) = %d, want %d", got, 8*tt.src.Channels())
			}
			if got := tt.src.pcm[tt.index]; math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("pcm[%d] = %v, want %v", tt.index, got, tt.want)
			}
		})
	}
}
