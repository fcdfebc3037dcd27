// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/ik5/sndmgr/aio"
	"github.com/ik5/sndmgr/audio"
	"github.com/ik5/sndmgr/backend"
)

type bufferStatus int

const (
	bufferMore bufferStatus = iota
	bufferLast
	bufferNotReady
)

func (s bufferStatus) String() string {
	switch s {
	case bufferMore:
		return "more"
	case bufferLast:
		return "last"
	case bufferNotReady:
		return "not ready"
	}
	return "unknown"
}

const minDecodeChunk = 8192

// loader turns file names into sound data.
type loader struct {
	be      backend.Backend
	fs      aio.FileSystem
	codecs  *audio.Registry
	streams *streamSystem
}

// soundData backs a sound either with one resident backend buffer (clip)
// or with a stream reader that produces a backend buffer per chunk.
type soundData struct {
	name   string
	stream bool
	be     backend.Backend

	clip backend.BufferID

	reader   *streamReader
	dec      audio.StreamDecoder
	channels int
	rate     int
	fedEnd   bool
	decEOF   bool
	scratch  []float32
	out      int // stream buffers handed out and not released
}

func (l *loader) load(name string, stream bool) (*soundData, error) {
	dec, ok := l.codecs.ForFile(name)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFormat, name)
	}

	if !stream {
		return l.loadClip(name, dec)
	}

	sdec, ok := dec.(audio.StreamingDecoder)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStreamUnsupported, name)
	}

	return l.openStream(name, sdec)
}

func (l *loader) loadClip(name string, dec audio.Decoder) (*soundData, error) {
	raw, err := l.fs.ReadFile(name)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", name, err)
	}

	var src audio.Source
	src, err = dec.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	defer src.Close()

	channels := src.Channels()
	if channels > 2 {
		src = audio.NewMonoMixer(src)
		channels = 1
	}

	pcm, err := audio.ReadAll(src)
	if err != nil {
		return nil, fmt.Errorf("decode %s: %w", name, err)
	}
	if len(pcm) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrEmptyClip, name)
	}

	id, err := l.be.NewBuffer(pcm, channels, src.SampleRate())
	if err != nil {
		return nil, fmt.Errorf("upload %s: %w", name, err)
	}

	return &soundData{name: name, be: l.be, clip: id}, nil
}

func (l *loader) openStream(name string, dec audio.StreamingDecoder) (*soundData, error) {
	r, err := l.streams.openReader(name)
	if err != nil {
		return nil, err
	}

	return &soundData{
		name:    name,
		stream:  true,
		be:      l.be,
		reader:  r,
		dec:     dec.NewStream(),
		scratch: make([]float32, minDecodeChunk),
	}, nil
}

// nextBuffer returns the next backend buffer to queue. A zero id comes with
// bufferNotReady, or with bufferLast when the end produced no more samples.
func (d *soundData) nextBuffer() (backend.BufferID, bufferStatus, error) {
	if !d.stream {
		return d.clip, bufferLast, nil
	}

	for !d.decEOF {
		n, err := d.decode()
		if err != nil {
			return 0, bufferNotReady, err
		}
		if n > 0 {
			return d.upload(n)
		}
		if d.decEOF {
			break
		}

		raw, err := d.reader.takeBuffer()
		switch {
		case errors.Is(err, ErrNotReady):
			return 0, bufferNotReady, nil
		case errors.Is(err, io.EOF):
			d.dec.FeedEnd()
			d.fedEnd = true
			continue
		case err != nil:
			_ = d.reader.discardBuffer()
			return 0, bufferNotReady, err
		}

		d.dec.Feed(raw)
		if err := d.reader.discardBuffer(); err != nil {
			return 0, bufferNotReady, err
		}
		if err := d.reader.issueNext(); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, ErrNoIOBuffer) {
			return 0, bufferNotReady, err
		}
	}

	return 0, bufferLast, nil
}

// decode fills scratch at most once from the input fed so far, so every
// stream buffer holds no more than minDecodeChunk samples.
func (d *soundData) decode() (int, error) {
	if d.channels == 0 {
		channels, rate, err := d.dec.Format()
		if errors.Is(err, audio.ErrNeedMoreData) {
			if d.fedEnd {
				d.decEOF = true
			}
			return 0, nil
		}
		if err != nil {
			return 0, fmt.Errorf("decode %s: %w", d.name, err)
		}
		if channels < 1 || channels > 2 {
			return 0, fmt.Errorf("%w: %s has %d channels", ErrUnsupportedFormat, d.name, channels)
		}
		d.channels, d.rate = channels, rate
	}

	total := 0
	for total < len(d.scratch) {
		n, err := d.dec.Read(d.scratch[total:])
		total += n

		if errors.Is(err, io.EOF) {
			d.decEOF = true
			return total, nil
		}
		if err != nil {
			return total, fmt.Errorf("decode %s: %w", d.name, err)
		}
		if n == 0 {
			if d.fedEnd {
				d.decEOF = true
			}
			return total, nil
		}
	}

	return total, nil
}

func (d *soundData) upload(n int) (backend.BufferID, bufferStatus, error) {
	n -= n % d.channels

	id, err := d.be.NewBuffer(d.scratch[:n], d.channels, d.rate)
	if err != nil {
		return 0, bufferNotReady, fmt.Errorf("upload %s: %w", d.name, err)
	}
	d.out++

	if d.decEOF {
		return id, bufferLast, nil
	}

	return id, bufferMore, nil
}

// releaseBuffer gives back a buffer returned by nextBuffer once the backend
// is done with it.
func (d *soundData) releaseBuffer(id backend.BufferID) error {
	if !d.stream || id == 0 {
		return nil
	}

	d.out--
	if err := d.be.DeleteBuffer(id); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

// rewind restarts a stream from the beginning of its file.
func (d *soundData) rewind() error {
	if !d.stream {
		return nil
	}

	d.dec.Reset()
	d.fedEnd, d.decEOF = false, false
	d.channels, d.rate = 0, 0

	return d.reader.rewind()
}

func (d *soundData) destroy() {
	if d.stream {
		d.reader.close()
		return
	}

	if d.clip != 0 {
		_ = d.be.DeleteBuffer(d.clip)
		d.clip = 0
	}
}
