// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"io"
	"slices"

	"github.com/ik5/sndmgr/backend"
)

// DefaultDevice is accepted by every Output.
const DefaultDevice = "default"

// Output hands the mixed signal to a playback device. The device pulls
// interleaved stereo float32 little-endian frames from src.
type Output interface {
	Open(device string, sampleRate int, src io.Reader) (io.Closer, error)
	Devices() ([]string, error)
}

// NullOutput accepts a device and never pulls from it. Rendering is then
// driven by the caller through Backend.Render or Backend.Capture.
type NullOutput struct {
	// Names are reported by Devices. Without names enumeration is
	// unsupported.
	Names []string
}

func (n NullOutput) Open(device string, _ int, _ io.Reader) (io.Closer, error) {
	if device != "" && device != DefaultDevice && !slices.Contains(n.Names, device) {
		return nil, backend.ErrUnknownDevice
	}

	return nopCloser{}, nil
}

func (n NullOutput) Devices() ([]string, error) {
	if len(n.Names) == 0 {
		return nil, backend.ErrEnumUnsupported
	}

	return slices.Clone(n.Names), nil
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
