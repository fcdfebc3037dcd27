// SPDX-License-Identifier: EPL-2.0

package vorbis

import "errors"

var (
	// ErrStarved means the decoder asked for bytes that were not fed yet.
	// The stream cannot continue after it.
	ErrStarved = errors.New("vorbis stream ran out of input")
)
