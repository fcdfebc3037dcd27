// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ik5/sndmgr/aio"
	"github.com/ik5/sndmgr/audio"
	"github.com/ik5/sndmgr/backend"
	"github.com/ik5/sndmgr/backend/soft"
	"github.com/ik5/sndmgr/formats/vorbis"
)

type engineState int

const (
	stateUninit engineState = iota
	stateReady
	stateDisabled
)

func (s engineState) String() string {
	switch s {
	case stateUninit:
		return "uninitialized"
	case stateReady:
		return "ready"
	case stateDisabled:
		return "disabled"
	}
	return "unknown"
}

// Engine plays sounds through a backend with a limited number of voices.
// The device is opened on first use. An Engine is not safe for concurrent
// use; call it from the thread that drives Update.
type Engine struct {
	cfg    Config
	log    *slog.Logger
	be     backend.Backend
	fs     aio.FileSystem
	codecs *audio.Registry
	now    func() time.Duration

	state   engineState
	pool    *voicePool
	cache   *soundCache
	sources arena[*virtualSource]
	active  activeList

	lisPos     mgl32.Vec3
	lisDir     mgl32.Vec3
	lisUp      mgl32.Vec3
	masterGain float32

	devices []string
	devIdx  int
}

type Option func(*Engine)

// WithBackend replaces the default software backend.
func WithBackend(be backend.Backend) Option {
	return func(e *Engine) { e.be = be }
}

// WithFileSystem replaces the host file system.
func WithFileSystem(fs aio.FileSystem) Option {
	return func(e *Engine) { e.fs = fs }
}

// WithRegistry replaces the decoders. File extensions select the decoder.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.codecs = r }
}

func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.log = l }
}

// WithClock sets the time source fades run on.
func WithClock(now func() time.Duration) Option {
	return func(e *Engine) { e.now = now }
}

// DefaultRegistry decodes Ogg Vorbis, the only supported format.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("ogg", vorbis.Decoder{})

	return r
}

func New(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:        cfg,
		pool:       newVoicePool(cfg.Engine.MaxVoices),
		lisDir:     mgl32.Vec3{0, 0, -1},
		lisUp:      mgl32.Vec3{0, 1, 0},
		masterGain: float32(cfg.Engine.MasterGain),
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.log == nil {
		e.log = slog.Default()
	}
	if e.be == nil {
		e.be = soft.New(soft.Options{MaxSources: MaxVoices})
	}
	if e.fs == nil {
		e.fs = aio.NewOS(cfg.Stream.MaxStreams * cfg.Stream.IOsPerStream)
	}
	if e.codecs == nil {
		e.codecs = DefaultRegistry()
	}
	if e.now == nil {
		start := time.Now()
		e.now = func() time.Duration { return time.Since(start) }
	}

	e.cache = newSoundCache(&loader{
		be:      e.be,
		fs:      e.fs,
		codecs:  e.codecs,
		streams: newStreamSystem(e.fs, cfg.Stream),
	})

	if cfg.Engine.Disabled {
		e.state = stateDisabled
	}

	return e, nil
}

// Disabled reports whether the engine runs without audio.
func (e *Engine) Disabled() bool { return e.state == stateDisabled }

// Init opens the device and fills the voice pool. It does nothing when the
// engine is ready or disabled. On failure the engine stays uninitialized;
// the host may retry or call Disable.
func (e *Engine) Init() error {
	if e.state != stateUninit {
		return nil
	}

	if err := e.be.OpenDevice(e.cfg.Engine.Device); err != nil {
		return fmt.Errorf("%w %q: %w", ErrDeviceOpen, e.cfg.Engine.Device, err)
	}

	if err := e.pool.init(e.be); err != nil {
		_ = e.be.CloseDevice()
		return err
	}

	err := errors.Join(
		e.be.SetListener(e.lisPos, e.lisDir, e.lisUp),
		e.be.SetListenerGain(e.masterGain),
	)
	if err != nil {
		_ = e.pool.shutdown()
		_ = e.be.CloseDevice()
		return fmt.Errorf("%w: %w", ErrDeviceOpen, err)
	}

	e.state = stateReady
	e.log.Info("sound engine initialized",
		"device", e.cfg.Engine.Device,
		"voices", e.pool.capacity,
		"voice_limit", e.pool.limit(),
	)

	return nil
}

func (e *Engine) ensureInitialized() error {
	return e.Init()
}

// Disable shuts the engine down and turns every later call into a no-op.
func (e *Engine) Disable() error {
	if e.state == stateDisabled {
		return nil
	}

	err := e.Shutdown()
	e.state = stateDisabled
	e.log.Info("sound engine disabled")

	return err
}

// Shutdown closes every sound, frees all cached data and closes the device.
// The next call that needs the device initializes the engine again.
func (e *Engine) Shutdown() error {
	if e.state != stateReady {
		return nil
	}

	e.sources.each(func(_ Handle, s *virtualSource) {
		e.destroy(s)
	})
	e.active.compact()
	e.cache.shutdown()

	err := errors.Join(e.pool.shutdown(), e.be.CloseDevice())
	e.state = stateUninit
	e.log.Info("sound engine shut down")

	return err
}

func (e *Engine) source(h Handle) (*virtualSource, error) {
	s, ok := e.sources.get(h)
	if !ok {
		return nil, ErrInvalidHandle
	}

	return s, nil
}

// destroy closes a source: it leaves the active list, gives up its voice
// and releases its sound data.
func (e *Engine) destroy(s *virtualSource) {
	e.active.remove(s)
	s.reclaim(e)
	e.cache.release(s.data)
	e.sources.remove(s.handle)
}

// Open loads a sound and returns a handle to a new, silent source. Names
// ending in DefinitionExt are definition files naming the sound and its
// gain. A stream decodes the file while playing and is never shared.
func (e *Engine) Open(name string, stream bool) (Handle, error) {
	if e.state == stateDisabled {
		return 0, nil
	}
	if err := e.ensureInitialized(); err != nil {
		return 0, err
	}

	file, gain := name, float32(1)
	if isDefinition(name) {
		raw, err := e.fs.ReadFile(name)
		if err != nil {
			return 0, fmt.Errorf("open %s: %w", name, err)
		}
		file, gain, err = parseDefinition(name, raw)
		if err != nil {
			return 0, err
		}
	}

	data, err := e.cache.acquire(file, stream)
	if err != nil {
		return 0, err
	}

	s := newVirtualSource(data, gain)
	s.handle = e.sources.insert(s)

	e.log.Debug("sound opened", "handle", s.handle, "sound", data.name, "stream", stream)

	return s.handle, nil
}

func (e *Engine) Close(h Handle) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}
	e.destroy(s)

	return nil
}

// Play queues the source for playback with a static priority. It tries to
// get a voice right away; otherwise the next Update decides.
func (e *Engine) Play(h Handle, priority float32) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	s.static = priority
	if !s.active() {
		e.active.add(s)
	}
	s.priority = e.priorityOf(s)
	s.grant(e)

	return nil
}

// SetPosition places the source in world space, or relative to the
// listener.
func (e *Engine) SetPosition(h Handle, pos mgl32.Vec3, relative bool) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	return s.setPosition(e.be, pos, relative)
}

// SetGain sets the source gain in [0, 1]. It fails while a fade runs.
func (e *Engine) SetGain(h Handle, gain float32) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	return s.setGain(e.be, gain)
}

// SetPitch sets the playback speed factor in (0, 1].
func (e *Engine) SetPitch(h Handle, pitch float32) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	return s.setPitch(e.be, pitch)
}

func (e *Engine) SetLoop(h Handle, loop bool) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	return s.setLoop(e.be, loop)
}

// Fade moves the gain from initial to final over length. A negative initial
// starts at the current gain. A source faded to 0 is closed when the fade
// ends, which may be right away.
func (e *Engine) Fade(h Handle, initial, final float32, length time.Duration, kind FadeKind) error {
	if e.state == stateDisabled {
		return nil
	}

	s, err := e.source(h)
	if err != nil {
		return err
	}

	done, err := s.startFade(e.be, e.now(), initial, final, length, kind)
	if done {
		e.destroy(s)
	}

	return err
}

// SetMasterGain scales every source through the listener gain.
func (e *Engine) SetMasterGain(gain float32) error {
	if e.state == stateDisabled {
		return nil
	}
	if gain < 0 || gain > 1 {
		return ErrInvalidGain
	}

	e.masterGain = gain
	if e.state != stateReady {
		return nil
	}

	return e.be.SetListenerGain(gain)
}

// SetMaxVoices limits how many voices play at once. Limits above the
// device capacity keep the capacity. Sources over a lowered limit lose
// their voice on the next Update.
func (e *Engine) SetMaxVoices(n int) error {
	if e.state == stateDisabled {
		return nil
	}

	return e.pool.setSoftCap(n)
}

// Update moves the listener, re-ranks all playing sources and refills their
// queues. Call it once per frame.
func (e *Engine) Update(pos, dir, up mgl32.Vec3) error {
	if e.state != stateReady {
		return nil
	}

	e.lisPos, e.lisDir, e.lisUp = pos, dir, up
	err := errors.Join(
		e.be.SetListener(pos, dir, up),
		e.be.SetListenerGain(e.masterGain),
	)

	e.schedule(e.now())

	return err
}

// PrepareDeviceEnum snapshots the playback devices for NextDevice. It
// returns backend.ErrEnumUnsupported when the backend cannot list them.
func (e *Engine) PrepareDeviceEnum() error {
	e.devices, e.devIdx = nil, 0
	if e.state == stateDisabled {
		return backend.ErrEnumUnsupported
	}

	names, err := e.be.Devices()
	if err != nil {
		return fmt.Errorf("%w", err)
	}
	e.devices = names

	return nil
}

// NextDevice returns the next name of the snapshot taken by
// PrepareDeviceEnum.
func (e *Engine) NextDevice() (string, bool) {
	if e.devIdx >= len(e.devices) {
		return "", false
	}

	name := e.devices[e.devIdx]
	e.devIdx++

	return name, true
}

// SetDevice switches to the named device, or the default one for "". A
// running engine closes all sounds and reopens on the new device.
func (e *Engine) SetDevice(name string) error {
	if e.state == stateDisabled {
		return ErrDisabled
	}

	old := e.cfg.Engine.Device
	e.cfg.Engine.Device = name

	if e.state != stateReady {
		return nil
	}

	e.log.Info("switching sound device", "from", old, "to", name)
	if err := e.Shutdown(); err != nil {
		return err
	}

	return e.Init()
}

// Stats is a snapshot of engine resource usage.
type Stats struct {
	Sources       int // open sources
	Active        int // sources that were played and not closed
	Voiced        int // sources holding a voice
	Voices        int // voice capacity of the device
	VoiceLimit    int
	Clips         int // cached clips
	Streams       int // open streams
	FreeIOBuffers int
}

func (e *Engine) Stats() Stats {
	clips, streams := e.cache.stats()

	st := Stats{
		Sources:       e.sources.count(),
		Active:        e.active.len(),
		Voices:        e.pool.capacity,
		VoiceLimit:    e.pool.limit(),
		Clips:         clips,
		Streams:       streams,
		FreeIOBuffers: e.cache.ld.streams.pool.available(),
	}
	e.sources.each(func(_ Handle, s *virtualSource) {
		if s.voice != 0 {
			st.Voiced++
		}
	})

	return st
}

// PurgeCache frees cached clips no source uses and reports how many.
func (e *Engine) PurgeCache() int {
	n := e.cache.purge()
	if n > 0 {
		e.log.Debug("sound cache purged", "clips", n)
	}

	return n
}
