// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sndmgr/audio"
)

// PassthroughRate is the sample rate PassthroughDecoder reports.
const PassthroughRate = 8000

var ErrEmptyInput = errors.New("audiotest: empty input")

func byteSample(b byte) float32 { return float32(b) / 255 }

// PassthroughDecoder turns every input byte into one mono sample b/255.
// It decodes clips and streams, which makes buffer accounting easy to
// follow in tests.
type PassthroughDecoder struct{}

func (PassthroughDecoder) Decode(r io.Reader) (audio.Source, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}
	if len(raw) == 0 {
		return nil, ErrEmptyInput
	}

	pcm := make([]float32, len(raw))
	for i, b := range raw {
		pcm[i] = byteSample(b)
	}

	return NewPCMSource(PassthroughRate, 1, pcm), nil
}

func (PassthroughDecoder) NewStream() audio.StreamDecoder {
	return &passthroughStream{}
}

type passthroughStream struct {
	pending []byte
	ended   bool
	seen    bool
}

func (p *passthroughStream) Feed(raw []byte) {
	p.pending = append(p.pending, raw...)
	p.seen = p.seen || len(raw) > 0
}

func (p *passthroughStream) FeedEnd() { p.ended = true }

func (p *passthroughStream) Format() (int, int, error) {
	if !p.seen && !p.ended {
		return 0, 0, audio.ErrNeedMoreData
	}

	return 1, PassthroughRate, nil
}

func (p *passthroughStream) Read(dst []float32) (int, error) {
	n := min(len(dst), len(p.pending))
	for i := range n {
		dst[i] = byteSample(p.pending[i])
	}
	p.pending = p.pending[n:]

	if len(p.pending) == 0 && p.ended {
		return n, io.EOF
	}

	return n, nil
}

func (p *passthroughStream) Reset() {
	*p = passthroughStream{}
}

// ClipDecoder decodes like PassthroughDecoder but cannot stream.
type ClipDecoder struct{}

func (ClipDecoder) Decode(r io.Reader) (audio.Source, error) {
	return PassthroughDecoder{}.Decode(r)
}

// FailingDecoder rejects every input with Err.
type FailingDecoder struct {
	Err error
}

func (f FailingDecoder) Decode(io.Reader) (audio.Source, error) {
	return nil, f.Err
}

var (
	_ audio.StreamingDecoder = PassthroughDecoder{}
	_ audio.Decoder          = ClipDecoder{}
)
