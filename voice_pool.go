// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"fmt"

	"github.com/ik5/sndmgr/backend"
)

// voicePool hands out backend sources. It is filled once at init with as
// many sources as the backend grants, up to MaxVoices.
type voicePool struct {
	be       backend.Backend
	idle     []backend.SourceID
	capacity int
	inUse    int
	softCap  int
}

func newVoicePool(softCap int) *voicePool {
	return &voicePool{softCap: softCap}
}

func (p *voicePool) init(be backend.Backend) error {
	p.be = be
	p.idle = p.idle[:0]

	for range MaxVoices {
		id, err := be.NewSource()
		if err != nil {
			if !errors.Is(err, backend.ErrNoSources) {
				p.release()
				return fmt.Errorf("%w: %w", ErrDeviceOpen, err)
			}
			break
		}
		p.idle = append(p.idle, id)
	}

	p.capacity = len(p.idle)
	if p.capacity < backend.MinVoices {
		p.release()
		return fmt.Errorf("%w: got %d, need %d", ErrTooFewVoices, p.capacity, backend.MinVoices)
	}

	p.softCap = min(p.softCap, p.capacity)

	return nil
}

// limit is the number of voices that may be out at once.
func (p *voicePool) limit() int {
	if p.capacity == 0 {
		return p.softCap
	}
	return min(p.softCap, p.capacity)
}

func (p *voicePool) alloc() (backend.SourceID, bool) {
	if p.inUse >= p.limit() || len(p.idle) == 0 {
		return 0, false
	}

	id := p.idle[len(p.idle)-1]
	p.idle = p.idle[:len(p.idle)-1]
	p.inUse++

	return id, true
}

// free takes back a voice the caller already stopped.
func (p *voicePool) free(id backend.SourceID) {
	p.idle = append(p.idle, id)
	p.inUse--
}

func (p *voicePool) setSoftCap(n int) error {
	if n <= 0 {
		return ErrInvalidVoiceLimit
	}

	if p.capacity > 0 && n >= p.capacity {
		p.softCap = p.capacity
		return nil
	}
	p.softCap = n

	return nil
}

func (p *voicePool) shutdown() error {
	if p.inUse != 0 {
		return fmt.Errorf("%w: %d", ErrVoicesInUse, p.inUse)
	}

	p.release()

	return nil
}

func (p *voicePool) release() {
	for _, id := range p.idle {
		_ = p.be.DeleteSource(id)
	}
	p.idle = p.idle[:0]
	p.capacity = 0
}
