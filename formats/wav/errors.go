// SPDX-License-Identifier: EPL-2.0

package wav

import "errors"

var (
	ErrInvalidChannels = errors.New("WAV writer supports 1 or 2 channels")
	ErrInvalidRate     = errors.New("WAV sample rate must be positive")
	ErrPartialFrame    = errors.New("sample count is not a multiple of the channel count")
	ErrWriterClosed    = errors.New("WAV writer is closed")
)
