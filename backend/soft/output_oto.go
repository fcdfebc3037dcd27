//go:build !headless

// SPDX-License-Identifier: EPL-2.0

package soft

import (
	"fmt"
	"io"
	"sync"

	"github.com/ebitengine/oto/v3"

	"github.com/ik5/sndmgr/backend"
)

// OtoOutput plays through the system device via oto. oto allows a single
// context per process, so the first Open fixes the sample rate.
type OtoOutput struct {
	once sync.Once
	ctx  *oto.Context
	rate int
	err  error
}

var otoOutput = &OtoOutput{}

// DefaultOutput returns the process wide oto output.
func DefaultOutput() Output { return otoOutput }

func (o *OtoOutput) init(sampleRate int) {
	op := &oto.NewContextOptions{
		SampleRate:   sampleRate,
		ChannelCount: 2,
		Format:       oto.FormatFloat32LE,
	}

	ctx, ready, err := oto.NewContext(op)
	if err != nil {
		o.err = err
		return
	}
	<-ready

	o.ctx = ctx
	o.rate = sampleRate
}

func (o *OtoOutput) Open(device string, sampleRate int, src io.Reader) (io.Closer, error) {
	if device != "" && device != DefaultDevice {
		return nil, fmt.Errorf("%w: %s", backend.ErrUnknownDevice, device)
	}

	o.once.Do(func() { o.init(sampleRate) })
	if o.err != nil {
		return nil, fmt.Errorf("%w", o.err)
	}
	if o.rate != sampleRate {
		return nil, fmt.Errorf("%w: device runs at %d Hz", backend.ErrInvalidFormat, o.rate)
	}

	player := o.ctx.NewPlayer(src)
	player.Play()

	return player, nil
}

// Devices is unsupported: oto always plays on the system default device.
func (o *OtoOutput) Devices() ([]string, error) {
	return nil, backend.ErrEnumUnsupported
}
