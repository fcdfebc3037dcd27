// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"math"
	"time"

	"github.com/ik5/sndmgr/utils"
)

// FadeKind selects the gain curve of a fade.
type FadeKind int

const (
	FadeNone FadeKind = iota
	FadeLinear
	FadeExponential
	FadeSCurve
	// FadeAbort jumps straight to the final gain on the next update.
	FadeAbort
)

func (k FadeKind) String() string {
	switch k {
	case FadeNone:
		return "none"
	case FadeLinear:
		return "linear"
	case FadeExponential:
		return "exponential"
	case FadeSCurve:
		return "s-curve"
	case FadeAbort:
		return "abort"
	}
	return "unknown"
}

type fadeStatus int

const (
	fadeUnchanged fadeStatus = iota
	fadeChanged
	fadeCompletedToZero
)

type fadeInfo struct {
	kind    FadeKind
	start   time.Duration
	length  time.Duration
	initial float32
	final   float32
}

func (f *fadeInfo) active() bool { return f.kind != FadeNone }

// advance computes the gain at now. A finished fade reports its exact final
// gain and resets itself.
func (f *fadeInfo) advance(now time.Duration) (float32, fadeStatus) {
	if f.kind == FadeNone {
		return 0, fadeUnchanged
	}

	if f.kind == FadeAbort || now >= f.start+f.length {
		final := f.final
		f.kind = FadeNone
		if final == 0 {
			return 0, fadeCompletedToZero
		}
		return final, fadeChanged
	}

	t := float32(max(now-f.start, 0)) / float32(f.length)

	return utils.Lerp(f.initial, f.final, curve(f.kind, t)), fadeChanged
}

func curve(kind FadeKind, t float32) float32 {
	switch kind {
	case FadeExponential:
		return t * t * t
	case FadeSCurve:
		return float32((math.Cos(float64(t)*math.Pi+math.Pi) + 1) / 2)
	default:
		return t
	}
}
