// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"fmt"

	"github.com/ik5/sndmgr/formats/wav"
)

// Capture renders frames stereo frames and appends them to w. Together with
// NullOutput it records the mix instead of playing it.
func (b *Backend) Capture(w *wav.Writer, frames int) error {
	if frames <= 0 {
		return nil
	}

	buf := make([]float32, frames*2)
	b.Render(buf)

	if err := w.WriteSamples(buf); err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
