// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/ik5/sndmgr/backend"
	"github.com/ik5/sndmgr/utils"
)

// virtualSource is one sound the application wants played. It only holds a
// backend voice while the scheduler ranks it high enough.
type virtualSource struct {
	handle Handle
	data   *soundData
	voice  backend.SourceID

	pos      mgl32.Vec3
	relative bool
	gain     float32
	pitch    float32
	loop     bool

	listIdx  int // index in the active list, -1 when not playing
	eof      bool
	static   float32
	priority float32
	fade     fadeInfo
}

func newVirtualSource(data *soundData, gain float32) *virtualSource {
	return &virtualSource{
		data:    data,
		gain:    gain,
		pitch:   1,
		listIdx: -1,
	}
}

func (s *virtualSource) active() bool { return s.listIdx >= 0 }

func (s *virtualSource) setGain(be backend.Backend, gain float32) error {
	if !utils.InRange(gain, 0, 1) {
		return ErrInvalidGain
	}
	if s.fade.active() {
		return ErrFadeActive
	}

	s.gain = gain
	if s.voice == 0 {
		return nil
	}

	return be.SetGain(s.voice, gain)
}

func (s *virtualSource) setPitch(be backend.Backend, pitch float32) error {
	if pitch <= 0 || pitch > 1 {
		return ErrInvalidPitch
	}

	s.pitch = pitch
	if s.voice == 0 {
		return nil
	}

	return be.SetPitch(s.voice, pitch)
}

func (s *virtualSource) setPosition(be backend.Backend, pos mgl32.Vec3, relative bool) error {
	s.pos, s.relative = pos, relative
	if s.voice == 0 {
		return nil
	}

	if err := be.SetPosition(s.voice, pos); err != nil {
		return err
	}

	return be.SetRelative(s.voice, relative)
}

func (s *virtualSource) setLoop(be backend.Backend, loop bool) error {
	s.loop = loop
	if s.voice == 0 {
		return nil
	}

	return be.SetLooping(s.voice, s.backendLooping())
}

// backendLooping: clips loop on the device, streams rewind their file.
func (s *virtualSource) backendLooping() bool {
	return s.loop && !s.data.stream
}

// startFade begins a fade and applies its value at t=0. A negative initial
// gain starts from the current gain. done reports a fade to silence that
// completed on the spot.
func (s *virtualSource) startFade(be backend.Backend, now time.Duration, initial, final float32, length time.Duration, kind FadeKind) (bool, error) {
	if kind < FadeNone || kind > FadeAbort {
		return false, ErrInvalidFadeKind
	}
	if length < 0 {
		return false, ErrInvalidDuration
	}
	if initial < 0 {
		initial = s.gain
	}
	if !utils.InRange(initial, 0, 1) || !utils.InRange(final, 0, 1) {
		return false, ErrInvalidGain
	}

	s.fade = fadeInfo{
		kind:    kind,
		start:   now,
		length:  length,
		initial: initial,
		final:   final,
	}
	if kind == FadeNone {
		return false, nil
	}

	return s.advanceFade(be, now)
}

// advanceFade moves the fade to now. done is true when a fade to silence
// finished and the source should go away.
func (s *virtualSource) advanceFade(be backend.Backend, now time.Duration) (bool, error) {
	gain, status := s.fade.advance(now)
	switch status {
	case fadeUnchanged:
		return false, nil
	case fadeCompletedToZero:
		s.gain = 0
		return true, nil
	}

	s.gain = gain
	if s.voice == 0 {
		return false, nil
	}

	return false, be.SetGain(s.voice, gain)
}

func (s *virtualSource) latch(be backend.Backend) error {
	return errors.Join(
		be.SetPosition(s.voice, s.pos),
		be.SetRelative(s.voice, s.relative),
		be.SetGain(s.voice, s.gain),
		be.SetPitch(s.voice, s.pitch),
		be.SetLooping(s.voice, s.backendLooping()),
	)
}

// grant gives the source a voice from the pool and starts it. It reports
// whether the source holds a voice afterwards.
func (s *virtualSource) grant(e *Engine) bool {
	if s.voice != 0 {
		return true
	}

	id, ok := e.pool.alloc()
	if !ok {
		return false
	}
	s.voice = id

	err := errors.Join(
		e.be.SetAttenuation(id, float32(e.cfg.Voice.ReferenceDistance), float32(e.cfg.Voice.Rolloff)),
		s.latch(e.be),
	)
	if err != nil {
		e.log.Warn("latching source failed", "handle", s.handle, "error", err)
	}

	if _, err := s.fill(e, 0); err != nil {
		e.log.Warn("initial fill failed", "handle", s.handle, "sound", s.data.name, "error", err)
	}
	if err := e.be.Play(id); err != nil {
		e.log.Warn("starting voice failed", "handle", s.handle, "error", err)
	}

	e.log.Debug("voice granted", "handle", s.handle, "voice", id, "priority", s.priority)

	return true
}

// reclaim stops the voice, releases whatever was queued on it and returns
// it to the pool.
func (s *virtualSource) reclaim(e *Engine) {
	if s.voice == 0 {
		return
	}

	id := s.voice
	if err := e.be.Stop(id); err != nil {
		e.log.Warn("stopping voice failed", "handle", s.handle, "error", err)
	}
	s.unqueue(e, -1)
	_ = e.be.SetLooping(id, false)

	e.pool.free(id)
	s.voice = 0

	// a clip replays from its single buffer on the next grant
	if !s.data.stream {
		s.eof = false
	}

	e.log.Debug("voice reclaimed", "handle", s.handle, "voice", id)
}

// unqueue removes n processed buffers, or all processed ones when n < 0,
// and releases them. It returns how many buffers remain queued.
func (s *virtualSource) unqueue(e *Engine, n int) int {
	if n < 0 {
		processed, err := e.be.BuffersProcessed(s.voice)
		if err != nil {
			return 0
		}
		n = processed
	}

	if n > 0 {
		ids, err := e.be.UnqueueBuffers(s.voice, n)
		if err != nil {
			e.log.Warn("unqueue failed", "handle", s.handle, "error", err)
		}
		for _, id := range ids {
			if err := s.data.releaseBuffer(id); err != nil {
				e.log.Warn("releasing buffer failed", "handle", s.handle, "buffer", id, "error", err)
			}
		}
	}

	queued, _ := e.be.BuffersQueued(s.voice)

	return queued
}

// fill queues buffers until the voice holds the configured depth or the
// sound has nothing ready.
func (s *virtualSource) fill(e *Engine, queued int) (int, error) {
	rewound := false

	for queued < e.cfg.Voice.QueueDepth && !s.eof {
		id, status, err := s.data.nextBuffer()
		if err != nil {
			// a broken stream ends like a finished one
			s.eof = true
			return queued, err
		}
		if status == bufferNotReady {
			break
		}

		if id != 0 {
			if err := e.be.QueueBuffers(s.voice, id); err != nil {
				_ = s.data.releaseBuffer(id)
				return queued, fmt.Errorf("queue %s: %w", s.data.name, err)
			}
			queued++
		}

		if status != bufferLast {
			continue
		}

		if !s.loop || !s.data.stream || (rewound && id == 0) {
			s.eof = true
			break
		}
		if err := s.data.rewind(); err != nil {
			s.eof = true
			return queued, err
		}
		rewound = true
	}

	return queued, nil
}

// update runs once per tick for a voiced source. done means the source
// finished and should be closed.
func (s *virtualSource) update(e *Engine, now time.Duration) (bool, error) {
	if s.voice == 0 {
		return false, nil
	}

	done, err := s.advanceFade(e.be, now)
	if done || err != nil {
		return done, err
	}

	queued := s.unqueue(e, -1)
	if s.eof && queued == 0 {
		return true, nil
	}

	queued, err = s.fill(e, queued)

	if queued > 0 {
		playing, perr := e.be.Playing(s.voice)
		if perr == nil && !playing {
			// the queue ran dry before the refill arrived
			e.log.Debug("voice underrun", "handle", s.handle, "sound", s.data.name)
			perr = e.be.Play(s.voice)
		}
		err = errors.Join(err, perr)
	}

	return false, err
}
