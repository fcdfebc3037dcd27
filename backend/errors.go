// SPDX-License-Identifier: EPL-2.0

package backend

import "errors"

var (
	ErrInvalidSource   = errors.New("invalid source id")
	ErrInvalidBuffer   = errors.New("invalid buffer id")
	ErrNoSources       = errors.New("no more hardware sources")
	ErrEnumUnsupported = errors.New("device enumeration not supported")
	ErrUnknownDevice   = errors.New("unknown playback device")
	ErrNotProcessed    = errors.New("buffers not processed yet")
	ErrInvalidFormat   = errors.New("unsupported PCM layout")
	ErrBufferQueued    = errors.New("buffer is still queued")
	ErrDeviceClosed    = errors.New("device is not open")
)
