// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"io"
	"path/filepath"
	"strings"
	"sync"
)

type Source interface {
	// SampleRate of the PCM stream in Hz.
	SampleRate() int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels() int
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). When n == 0 with err == io.EOF, the stream is finished.
	ReadSamples(dst []float32) (n int, err error)

	BufSize() int

	// Close releases any resources.
	Close() error
}

// Decoder constructs a Source from an input reader holding a whole file.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
}

// StreamDecoder decodes a container that arrives in raw chunks.
// It never blocks waiting for input: Read returns 0, nil when it needs more
// bytes than were fed so far.
type StreamDecoder interface {
	// Feed appends raw container bytes. The decoder copies what it keeps.
	Feed(raw []byte)
	// FeedEnd marks the input as complete so the tail can be decoded.
	FeedEnd()
	// Format reports channels and sample rate, or ErrNeedMoreData while the
	// stream headers have not arrived yet.
	Format() (channels, sampleRate int, err error)
	// Read decodes interleaved samples into dst. io.EOF follows the last
	// sample once FeedEnd was called.
	Read(dst []float32) (int, error)
	// Reset drops all fed data so the stream can start over.
	Reset()
}

// StreamingDecoder is a Decoder that can also decode incrementally.
type StreamingDecoder interface {
	Decoder
	NewStream() StreamDecoder
}

// Registry for decoders by format key (file extension without the dot,
// e.g. "ogg"). Keys are case-insensitive.
type Registry struct {
	codecs map[string]Decoder

	mtx *sync.Mutex
}

func NewRegistry() *Registry {
	return &Registry{
		codecs: make(map[string]Decoder),
		mtx:    &sync.Mutex{},
	}
}

func (r *Registry) Register(format string, d Decoder) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	r.codecs[strings.ToLower(format)] = d
}

func (r *Registry) Get(format string) (Decoder, bool) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	d, ok := r.codecs[strings.ToLower(format)]
	return d, ok
}

// ForFile looks up the decoder registered for the extension of name.
func (r *Registry) ForFile(name string) (Decoder, bool) {
	ext := strings.TrimPrefix(filepath.Ext(name), ".")
	if ext == "" {
		return nil, false
	}

	return r.Get(ext)
}

// ReadAll drains src into a single interleaved buffer.
func ReadAll(src Source) ([]float32, error) {
	bufSize := src.BufSize()
	if bufSize <= 0 {
		bufSize = 4096
	}
	// keep reads frame aligned
	if ch := src.Channels(); ch > 1 {
		bufSize -= bufSize % ch
	}

	var out []float32
	buf := make([]float32, bufSize)
	idle := 0

	for {
		n, err := src.ReadSamples(buf)
		out = append(out, buf[:n]...)

		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}

		if n > 0 {
			idle = 0
			continue
		}
		// a source that keeps making no progress without an error is finished
		idle++
		if idle >= maxIdleReads {
			return out, nil
		}
	}
}

const maxIdleReads = 8
