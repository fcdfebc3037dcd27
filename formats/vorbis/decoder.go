// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/sndmgr/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	// Read returns the number of float32 values decoded, always a multiple
	// of Channels.
	Read([]float32) (int, error)
}

func openOgg(r io.Reader) (oggReader, error) {
	return oggvorbis.NewReader(r)
}

type source struct {
	dec        oggReader
	sampleRate int
	channels   int
	bufSize    int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return s.bufSize }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// the decoder only hands out whole frames
	usable := len(dst) - len(dst)%max(s.channels, 1)
	if usable == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:usable])
	if n == 0 && err != nil {
		return 0, err
	}

	return n, err
}

// Decoder decodes Ogg Vorbis. It is the only container the sound engine
// accepts, for both clips and streams.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := openOgg(r)
	if err != nil {
		return nil, fmt.Errorf("%w", err)
	}

	return &source{
		dec:        dec,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
		bufSize:    4096 * max(dec.Channels(), 1),
	}, nil
}

// NewStream returns a push-fed decoder for one stream.
func (Decoder) NewStream() audio.StreamDecoder {
	return newStreamDecoder(openOgg)
}

var _ audio.StreamingDecoder = Decoder{}
