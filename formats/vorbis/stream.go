// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sndmgr/audio"
)

const (
	pageHeaderSize = 27

	// A packet read runs only while this many whole pages wait in the feed
	// buffer (or the input is complete), so the pull-based decoder never
	// reads past what was fed.
	pagesAhead = 2

	// Reads smaller than the shortest Vorbis block decode at most one
	// packet per call.
	packetFrames = 32
)

// wholePages counts the complete Ogg pages at the start of b, up to limit.
func wholePages(b []byte, limit int) int {
	n := 0
	for n < limit && len(b) >= pageHeaderSize {
		segments := int(b[pageHeaderSize-1])
		size := pageHeaderSize + segments
		if len(b) < size {
			break
		}
		for _, lacing := range b[pageHeaderSize:size] {
			size += int(lacing)
		}
		if len(b) < size {
			break
		}
		b = b[size:]
		n++
	}

	return n
}

// feedBuffer is the io.Reader the Ogg decoder pulls from.
type feedBuffer struct {
	data  []byte
	off   int
	ended bool
}

func (f *feedBuffer) Read(p []byte) (int, error) {
	if f.off >= len(f.data) {
		if f.ended {
			return 0, io.EOF
		}
		return 0, ErrStarved
	}

	n := copy(p, f.data[f.off:])
	f.off += n

	return n, nil
}

func (f *feedBuffer) feed(raw []byte) {
	// drop consumed bytes once they make up half the buffer
	if f.off > 0 && f.off >= len(f.data)/2 {
		n := copy(f.data, f.data[f.off:])
		f.data = f.data[:n]
		f.off = 0
	}
	f.data = append(f.data, raw...)
}

func (f *feedBuffer) buffered() int { return len(f.data) - f.off }

func (f *feedBuffer) pending() []byte { return f.data[f.off:] }

type streamDecoder struct {
	in   feedBuffer
	open func(io.Reader) (oggReader, error)
	dec  oggReader
	err  error
}

func newStreamDecoder(open func(io.Reader) (oggReader, error)) *streamDecoder {
	return &streamDecoder{open: open}
}

func (s *streamDecoder) Feed(raw []byte) { s.in.feed(raw) }
func (s *streamDecoder) FeedEnd()        { s.in.ended = true }

func (s *streamDecoder) Reset() {
	s.in = feedBuffer{}
	s.dec = nil
	s.err = nil
}

func (s *streamDecoder) canRead() bool {
	return s.in.ended || wholePages(s.in.pending(), pagesAhead) == pagesAhead
}

func (s *streamDecoder) init() error {
	if s.dec != nil {
		return nil
	}
	if s.err != nil {
		return s.err
	}
	if !s.canRead() {
		return audio.ErrNeedMoreData
	}

	// headers may need more pages than the lookahead holds; opening is
	// retried from the start once more input arrives
	start := s.in.off
	dec, err := s.open(&s.in)
	if errors.Is(err, ErrStarved) {
		s.in.off = start
		return audio.ErrNeedMoreData
	}
	if err != nil {
		s.err = fmt.Errorf("%w", err)
		return s.err
	}
	s.dec = dec

	return nil
}

func (s *streamDecoder) Format() (int, int, error) {
	if err := s.init(); err != nil {
		return 0, 0, err
	}

	return s.dec.Channels(), s.dec.SampleRate(), nil
}

func (s *streamDecoder) Read(dst []float32) (int, error) {
	if err := s.init(); err != nil {
		if errors.Is(err, audio.ErrNeedMoreData) {
			return 0, nil
		}
		return 0, err
	}

	channels := max(s.dec.Channels(), 1)
	total := 0

	for s.canRead() {
		want := min(len(dst)-total, packetFrames*channels)
		want -= want % channels
		if want == 0 {
			break
		}

		n, err := s.dec.Read(dst[total : total+want])
		total += n

		if err == io.EOF {
			return total, io.EOF
		}
		if err != nil {
			s.err = fmt.Errorf("%w", err)
			return total, s.err
		}
		if n == 0 {
			break
		}
	}

	return total, nil
}
