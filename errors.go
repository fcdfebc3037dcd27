// SPDX-License-Identifier: EPL-2.0

package sndmgr

import "errors"

// Resource exhaustion. None of these is fatal: the caller retries on a later
// tick or gives up on that one sound.
var (
	ErrNoIOBuffer  = errors.New("no free stream I/O buffer")
	ErrStreamLimit = errors.New("too many open streams")
	ErrNotReady    = errors.New("stream read still pending")
)

// Invalid usage.
var (
	ErrInvalidGain        = errors.New("gain must be within [0, 1]")
	ErrInvalidPitch       = errors.New("pitch must be within (0, 1]")
	ErrFadeActive         = errors.New("gain cannot be set while a fade is active")
	ErrInvalidHandle      = errors.New("invalid or stale handle")
	ErrBufferNotDiscarded = errors.New("previous stream buffer was not discarded")
	ErrDisabled           = errors.New("sound engine is disabled")
	ErrInvalidVoiceLimit  = errors.New("voice limit must be positive")
	ErrInvalidFadeKind    = errors.New("unknown fade kind")
	ErrInvalidDuration    = errors.New("fade duration must not be negative")
	ErrInvalidConfig      = errors.New("invalid sound configuration")
	ErrInvalidDefinition  = errors.New("malformed sound definition file")
)

// Format.
var (
	ErrUnsupportedFormat = errors.New("unsupported sound file format")
	ErrStreamUnsupported = errors.New("format cannot be streamed")
	ErrEmptyClip         = errors.New("sound file decoded to no samples")
)

// Backend failures at init.
var (
	ErrDeviceOpen   = errors.New("cannot open sound device")
	ErrTooFewVoices = errors.New("sound device offers too few voices")
	ErrVoicesInUse  = errors.New("voices still in use")
)
