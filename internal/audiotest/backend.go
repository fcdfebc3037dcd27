// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"slices"
	"sync"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ik5/sndmgr/backend"
)

// FakeSource is the recorded state of one fake backend source.
type FakeSource struct {
	Gain      float32
	Pitch     float32
	Position  mgl32.Vec3
	Relative  bool
	Looping   bool
	Playing   bool
	RefDist   float32
	Rolloff   float32
	Queue     []backend.BufferID
	Processed int
	Plays     int
}

type FakeBuffer struct {
	PCM        []float32
	Channels   int
	SampleRate int
}

// FakeBackend records what the engine asks of a device. Playback only
// advances when the test calls Finish.
type FakeBackend struct {
	// Voices bounds NewSource.
	Voices int
	// DeviceNames is reported by Devices; nil means enumeration is
	// unsupported.
	DeviceNames []string
	// OpenErr fails OpenDevice.
	OpenErr error

	mtx     sync.Mutex
	device  string
	opened  bool
	opens   int
	sources map[backend.SourceID]*FakeSource
	buffers map[backend.BufferID]*FakeBuffer
	lastSrc uint32
	lastBuf uint32
	lisPos  mgl32.Vec3
	lisGain float32
}

func NewFakeBackend(voices int) *FakeBackend {
	return &FakeBackend{
		Voices:  voices,
		sources: make(map[backend.SourceID]*FakeSource),
		buffers: make(map[backend.BufferID]*FakeBuffer),
		lisGain: 1,
	}
}

func (f *FakeBackend) OpenDevice(name string) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if f.OpenErr != nil {
		return f.OpenErr
	}
	if name != "" && f.DeviceNames != nil && !slices.Contains(f.DeviceNames, name) {
		return backend.ErrUnknownDevice
	}

	f.device = name
	f.opened = true
	f.opens++

	return nil
}

func (f *FakeBackend) CloseDevice() error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.opened = false
	clear(f.sources)
	clear(f.buffers)

	return nil
}

func (f *FakeBackend) Devices() ([]string, error) {
	if f.DeviceNames == nil {
		return nil, backend.ErrEnumUnsupported
	}

	return slices.Clone(f.DeviceNames), nil
}

func (f *FakeBackend) NewSource() (backend.SourceID, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if !f.opened {
		return 0, backend.ErrDeviceClosed
	}
	if len(f.sources) >= f.Voices {
		return 0, backend.ErrNoSources
	}

	f.lastSrc++
	id := backend.SourceID(f.lastSrc)
	f.sources[id] = &FakeSource{Gain: 1, Pitch: 1, RefDist: 1, Rolloff: 1}

	return id, nil
}

func (f *FakeBackend) DeleteSource(id backend.SourceID) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if _, ok := f.sources[id]; !ok {
		return backend.ErrInvalidSource
	}
	delete(f.sources, id)

	return nil
}

func (f *FakeBackend) NewBuffer(pcm []float32, channels, sampleRate int) (backend.BufferID, error) {
	if channels != 1 && channels != 2 {
		return 0, backend.ErrInvalidFormat
	}

	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.lastBuf++
	id := backend.BufferID(f.lastBuf)
	f.buffers[id] = &FakeBuffer{PCM: slices.Clone(pcm), Channels: channels, SampleRate: sampleRate}

	return id, nil
}

func (f *FakeBackend) DeleteBuffer(id backend.BufferID) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	if _, ok := f.buffers[id]; !ok {
		return backend.ErrInvalidBuffer
	}
	for _, s := range f.sources {
		if slices.Contains(s.Queue, id) {
			return backend.ErrBufferQueued
		}
	}
	delete(f.buffers, id)

	return nil
}

func (f *FakeBackend) source(id backend.SourceID) (*FakeSource, error) {
	s, ok := f.sources[id]
	if !ok {
		return nil, backend.ErrInvalidSource
	}

	return s, nil
}

func (f *FakeBackend) with(id backend.SourceID, fn func(*FakeSource)) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return err
	}
	fn(s)

	return nil
}

func (f *FakeBackend) QueueBuffers(id backend.SourceID, ids ...backend.BufferID) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return err
	}
	for _, b := range ids {
		if _, ok := f.buffers[b]; !ok {
			return backend.ErrInvalidBuffer
		}
	}
	s.Queue = append(s.Queue, ids...)

	return nil
}

func (f *FakeBackend) UnqueueBuffers(id backend.SourceID, n int) ([]backend.BufferID, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return nil, err
	}
	if n < 0 || n > s.Processed {
		return nil, backend.ErrNotProcessed
	}

	out := slices.Clone(s.Queue[:n])
	s.Queue = slices.Delete(s.Queue, 0, n)
	s.Processed -= n

	return out, nil
}

func (f *FakeBackend) BuffersProcessed(id backend.SourceID) (int, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return 0, err
	}

	return s.Processed, nil
}

func (f *FakeBackend) BuffersQueued(id backend.SourceID) (int, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return 0, err
	}

	return len(s.Queue), nil
}

func (f *FakeBackend) Play(id backend.SourceID) error {
	return f.with(id, func(s *FakeSource) {
		if s.Playing {
			return
		}
		s.Processed = 0
		s.Playing = len(s.Queue) > 0
		s.Plays++
	})
}

func (f *FakeBackend) Stop(id backend.SourceID) error {
	return f.with(id, func(s *FakeSource) {
		s.Playing = false
		s.Processed = len(s.Queue)
	})
}

func (f *FakeBackend) Playing(id backend.SourceID) (bool, error) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, err := f.source(id)
	if err != nil {
		return false, err
	}

	return s.Playing, nil
}

func (f *FakeBackend) SetGain(id backend.SourceID, gain float32) error {
	return f.with(id, func(s *FakeSource) { s.Gain = gain })
}

func (f *FakeBackend) SetPitch(id backend.SourceID, pitch float32) error {
	return f.with(id, func(s *FakeSource) { s.Pitch = pitch })
}

func (f *FakeBackend) SetPosition(id backend.SourceID, pos mgl32.Vec3) error {
	return f.with(id, func(s *FakeSource) { s.Position = pos })
}

func (f *FakeBackend) SetRelative(id backend.SourceID, relative bool) error {
	return f.with(id, func(s *FakeSource) { s.Relative = relative })
}

func (f *FakeBackend) SetLooping(id backend.SourceID, looping bool) error {
	return f.with(id, func(s *FakeSource) { s.Looping = looping })
}

func (f *FakeBackend) SetAttenuation(id backend.SourceID, ref, rolloff float32) error {
	return f.with(id, func(s *FakeSource) {
		s.RefDist = ref
		s.Rolloff = rolloff
	})
}

func (f *FakeBackend) SetListener(pos, _, _ mgl32.Vec3) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.lisPos = pos

	return nil
}

func (f *FakeBackend) SetListenerGain(gain float32) error {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	f.lisGain = gain

	return nil
}

// Finish plays n more queued buffers to the end. A non-looping source
// whose queue is fully processed stops.
func (f *FakeBackend) Finish(id backend.SourceID, n int) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, ok := f.sources[id]
	if !ok || !s.Playing || s.Looping {
		return
	}

	s.Processed = min(s.Processed+n, len(s.Queue))
	if s.Processed == len(s.Queue) {
		s.Playing = false
	}
}

// Source returns a copy of the state of id.
func (f *FakeBackend) Source(id backend.SourceID) (FakeSource, bool) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, ok := f.sources[id]
	if !ok {
		return FakeSource{}, false
	}
	c := *s
	c.Queue = slices.Clone(s.Queue)

	return c, true
}

// PlayingSources lists the ids of sources that are playing.
func (f *FakeBackend) PlayingSources() []backend.SourceID {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	var ids []backend.SourceID
	for id, s := range f.sources {
		if s.Playing {
			ids = append(ids, id)
		}
	}
	slices.Sort(ids)

	return ids
}

// Buffer returns the PCM uploaded as id.
func (f *FakeBackend) Buffer(id backend.BufferID) (FakeBuffer, bool) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	b, ok := f.buffers[id]
	if !ok {
		return FakeBuffer{}, false
	}

	return *b, true
}

// EffectiveGain is the source gain scaled by the listener gain.
func (f *FakeBackend) EffectiveGain(id backend.SourceID) float32 {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	s, ok := f.sources[id]
	if !ok {
		return 0
	}

	return s.Gain * f.lisGain
}

func (f *FakeBackend) ListenerGain() float32 {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.lisGain
}

// LiveBuffers counts buffers created and not deleted.
func (f *FakeBackend) LiveBuffers() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return len(f.buffers)
}

// LiveSources counts sources created and not deleted.
func (f *FakeBackend) LiveSources() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return len(f.sources)
}

func (f *FakeBackend) Device() (string, bool) {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.device, f.opened
}

// Opens counts successful OpenDevice calls.
func (f *FakeBackend) Opens() int {
	f.mtx.Lock()
	defer f.mtx.Unlock()

	return f.opens
}

var _ backend.Backend = (*FakeBackend)(nil)
