// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"encoding/binary"
	"fmt"
	"io"
	"math"
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ik5/sndmgr/backend"
)

const (
	DefaultSampleRate = 44100
	DefaultMaxSources = 64
)

type Options struct {
	// SampleRate of the mixed output. Defaults to DefaultSampleRate.
	SampleRate int
	// MaxSources bounds NewSource. Defaults to DefaultMaxSources.
	MaxSources int
	// Output receives the mix. Defaults to DefaultOutput().
	Output Output
}

// Backend mixes all playing sources in software into one stereo signal.
// It is safe for concurrent use; the output device pulls from Read on its
// own goroutine.
type Backend struct {
	opts Options

	mtx     *sync.Mutex
	out     io.Closer
	device  string
	sources map[backend.SourceID]*voice
	buffers map[backend.BufferID]*pcmBuffer
	lastSrc uint32
	lastBuf uint32
	lis     listener

	mix     []float32
	scratch []float32
}

func New(opts Options) *Backend {
	if opts.SampleRate <= 0 {
		opts.SampleRate = DefaultSampleRate
	}
	if opts.MaxSources <= 0 {
		opts.MaxSources = DefaultMaxSources
	}
	if opts.Output == nil {
		opts.Output = DefaultOutput()
	}

	return &Backend{
		opts:    opts,
		mtx:     &sync.Mutex{},
		sources: make(map[backend.SourceID]*voice),
		buffers: make(map[backend.BufferID]*pcmBuffer),
		lis: listener{
			dir:  mgl32.Vec3{0, 0, -1},
			up:   mgl32.Vec3{0, 1, 0},
			gain: 1,
		},
	}
}

func (b *Backend) SampleRate() int { return b.opts.SampleRate }

// OpenDevice starts output on the named device, closing any open one.
func (b *Backend) OpenDevice(name string) error {
	// the output may pull from Read while opening, which takes the lock
	if err := b.CloseDevice(); err != nil {
		return err
	}

	out, err := b.opts.Output.Open(name, b.opts.SampleRate, b)
	if err != nil {
		return fmt.Errorf("%w", err)
	}

	b.mtx.Lock()
	b.out = out
	b.device = name
	b.mtx.Unlock()

	return nil
}

// CloseDevice stops output. Sources and buffers that are still alive are
// dropped.
func (b *Backend) CloseDevice() error {
	b.mtx.Lock()
	out := b.out
	b.out = nil
	b.device = ""
	clear(b.sources)
	clear(b.buffers)
	b.mtx.Unlock()

	if out == nil {
		return nil
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}

func (b *Backend) Device() string {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	return b.device
}

func (b *Backend) Devices() ([]string, error) {
	return b.opts.Output.Devices()
}

func (b *Backend) NewSource() (backend.SourceID, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.out == nil {
		return 0, backend.ErrDeviceClosed
	}
	if len(b.sources) >= b.opts.MaxSources {
		return 0, backend.ErrNoSources
	}

	b.lastSrc++
	id := backend.SourceID(b.lastSrc)
	b.sources[id] = newVoice(b.opts.SampleRate)

	return id, nil
}

func (b *Backend) DeleteSource(id backend.SourceID) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, ok := b.sources[id]
	if !ok {
		return backend.ErrInvalidSource
	}

	for _, buf := range v.in.bufs {
		buf.queued--
	}
	delete(b.sources, id)

	return nil
}

func (b *Backend) NewBuffer(pcm []float32, channels, sampleRate int) (backend.BufferID, error) {
	if channels != 1 && channels != 2 {
		return 0, fmt.Errorf("%w: %d channels", backend.ErrInvalidFormat, channels)
	}
	if sampleRate <= 0 || len(pcm)%channels != 0 {
		return 0, backend.ErrInvalidFormat
	}

	b.mtx.Lock()
	defer b.mtx.Unlock()

	if b.out == nil {
		return 0, backend.ErrDeviceClosed
	}

	b.lastBuf++
	id := backend.BufferID(b.lastBuf)
	b.buffers[id] = &pcmBuffer{
		data:       slices.Clone(pcm),
		channels:   channels,
		sampleRate: sampleRate,
	}

	return id, nil
}

func (b *Backend) DeleteBuffer(id backend.BufferID) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	buf, ok := b.buffers[id]
	if !ok {
		return backend.ErrInvalidBuffer
	}
	if buf.queued > 0 {
		return backend.ErrBufferQueued
	}
	delete(b.buffers, id)

	return nil
}

func (b *Backend) source(id backend.SourceID) (*voice, error) {
	v, ok := b.sources[id]
	if !ok {
		return nil, backend.ErrInvalidSource
	}

	return v, nil
}

func (b *Backend) QueueBuffers(id backend.SourceID, ids ...backend.BufferID) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return err
	}

	bufs := make([]*pcmBuffer, 0, len(ids))
	for _, bid := range ids {
		buf, ok := b.buffers[bid]
		if !ok {
			return backend.ErrInvalidBuffer
		}
		bufs = append(bufs, buf)
	}

	for i, buf := range bufs {
		buf.queued++
		v.in.bufs = append(v.in.bufs, buf)
		v.in.ids = append(v.in.ids, ids[i])
	}

	return nil
}

func (b *Backend) UnqueueBuffers(id backend.SourceID, n int) ([]backend.BufferID, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > v.in.head || (n > 0 && v.in.looping && v.playing) {
		return nil, backend.ErrNotProcessed
	}

	out := slices.Clone(v.in.ids[:n])
	for _, buf := range v.in.bufs[:n] {
		buf.queued--
	}
	v.in.ids = slices.Delete(v.in.ids, 0, n)
	v.in.bufs = slices.Delete(v.in.bufs, 0, n)
	v.in.head -= n

	return out, nil
}

func (b *Backend) BuffersProcessed(id backend.SourceID) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return 0, err
	}
	if v.in.looping && v.playing {
		return 0, nil
	}

	return v.in.head, nil
}

func (b *Backend) BuffersQueued(id backend.SourceID) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return 0, err
	}

	return len(v.in.bufs), nil
}

func (b *Backend) Play(id backend.SourceID) error {
	return b.withSource(id, func(v *voice) { v.play() })
}

func (b *Backend) Stop(id backend.SourceID) error {
	return b.withSource(id, func(v *voice) { v.stop() })
}

func (b *Backend) Playing(id backend.SourceID) (bool, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return false, err
	}

	return v.playing, nil
}

func (b *Backend) withSource(id backend.SourceID, fn func(*voice)) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	v, err := b.source(id)
	if err != nil {
		return err
	}
	fn(v)

	return nil
}

func (b *Backend) SetGain(id backend.SourceID, gain float32) error {
	return b.withSource(id, func(v *voice) { v.gain = gain })
}

func (b *Backend) SetPitch(id backend.SourceID, pitch float32) error {
	return b.withSource(id, func(v *voice) {
		v.pitch = pitch
		v.out.SetPitch(float64(pitch))
	})
}

func (b *Backend) SetPosition(id backend.SourceID, pos mgl32.Vec3) error {
	return b.withSource(id, func(v *voice) { v.position = pos })
}

func (b *Backend) SetRelative(id backend.SourceID, relative bool) error {
	return b.withSource(id, func(v *voice) { v.relative = relative })
}

func (b *Backend) SetLooping(id backend.SourceID, looping bool) error {
	return b.withSource(id, func(v *voice) { v.in.looping = looping })
}

func (b *Backend) SetAttenuation(id backend.SourceID, ref, rolloff float32) error {
	return b.withSource(id, func(v *voice) {
		v.refDist = ref
		v.rolloff = rolloff
	})
}

func (b *Backend) SetListener(pos, dir, up mgl32.Vec3) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.lis.pos, b.lis.dir, b.lis.up = pos, dir, up

	return nil
}

func (b *Backend) SetListenerGain(gain float32) error {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.lis.gain = gain

	return nil
}

// Render mixes len(out)/2 stereo frames of every playing source into out,
// overwriting it.
func (b *Backend) Render(out []float32) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	b.render(out)
}

func (b *Backend) render(out []float32) {
	clear(out)

	frames := len(out) / 2
	if cap(b.scratch) < frames {
		b.scratch = make([]float32, frames)
	}

	for _, v := range b.sources {
		if v.playing {
			v.render(out, b.scratch[:frames], &b.lis)
		}
	}

	for i, x := range out {
		out[i] = mgl32.Clamp(x, -1, 1)
	}
}

// Read renders the mix as little-endian float32 stereo, the layout the
// output device pulls.
func (b *Backend) Read(p []byte) (int, error) {
	b.mtx.Lock()
	defer b.mtx.Unlock()

	values := len(p) / 4
	values -= values % 2
	if cap(b.mix) < values {
		b.mix = make([]float32, values)
	}
	mix := b.mix[:values]
	b.render(mix)

	for i, x := range mix {
		binary.LittleEndian.PutUint32(p[i*4:], math.Float32bits(x))
	}
	clear(p[values*4:])

	return len(p), nil
}

var _ backend.Backend = (*Backend)(nil)
