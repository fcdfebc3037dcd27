// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"testing"

	"github.com/ik5/sndmgr/backend"
	"github.com/ik5/sndmgr/internal/audiotest"
)

func openFake(t *testing.T, voices int) *audiotest.FakeBackend {
	t.Helper()

	be := audiotest.NewFakeBackend(voices)
	if err := be.OpenDevice(""); err != nil {
		t.Fatalf("OpenDevice() error = %v", err)
	}
	return be
}

func TestVoicePool_Init(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name         string
		voices       int
		softCap      int
		wantCapacity int
		wantLimit    int
		wantErr      error
	}{
		{"capped at engine maximum", 100, 64, MaxVoices, MaxVoices, nil},
		{"backend refuses early", 6, 64, 6, 6, nil},
		{"soft cap below capacity", 10, 5, 10, 5, nil},
		{"exactly the minimum", backend.MinVoices, 64, backend.MinVoices, backend.MinVoices, nil},
		{"below the minimum", backend.MinVoices - 1, 64, 0, 0, ErrTooFewVoices},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			be := openFake(t, tt.voices)
			p := newVoicePool(tt.softCap)

			err := p.init(be)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("init() error = %v, want %v", err, tt.wantErr)
			}
			if p.capacity != tt.wantCapacity {
				t.Errorf("capacity = %d, want %d", p.capacity, tt.wantCapacity)
			}
			if err != nil {
				if got := be.LiveSources(); got != 0 {
					t.Errorf("LiveSources() after failed init = %d, want 0", got)
				}
				return
			}
			if got := p.limit(); got != tt.wantLimit {
				t.Errorf("limit() = %d, want %d", got, tt.wantLimit)
			}
		})
	}
}

func TestVoicePool_AllocRespectsSoftCap(t *testing.T) {
	t.Parallel()

	p := newVoicePool(64)
	if err := p.init(openFake(t, 6)); err != nil {
		t.Fatalf("init() error = %v", err)
	}
	if err := p.setSoftCap(3); err != nil {
		t.Fatalf("setSoftCap() error = %v", err)
	}

	seen := map[backend.SourceID]bool{}
	for range 3 {
		id, ok := p.alloc()
		if !ok {
			t.Fatal("alloc() failed below the soft cap")
		}
		if seen[id] {
			t.Fatalf("alloc() returned %v twice", id)
		}
		seen[id] = true
	}

	id, ok := p.alloc()
	if ok {
		t.Fatalf("alloc() = %v past the soft cap", id)
	}

	for id := range seen {
		p.free(id)
	}
	if p.inUse != 0 {
		t.Errorf("inUse = %d, want 0", p.inUse)
	}
}

func TestVoicePool_SetSoftCap(t *testing.T) {
	t.Parallel()

	p := newVoicePool(64)

	// before init the request is kept and clamped later
	if err := p.setSoftCap(100); err != nil {
		t.Fatalf("setSoftCap() error = %v", err)
	}
	if err := p.init(openFake(t, 8)); err != nil {
		t.Fatalf("init() error = %v", err)
	}
	if got := p.limit(); got != 8 {
		t.Errorf("limit() = %d, want 8", got)
	}

	if err := p.setSoftCap(2); err != nil {
		t.Fatalf("setSoftCap() error = %v", err)
	}
	if got := p.limit(); got != 2 {
		t.Errorf("limit() = %d, want 2", got)
	}

	if err := p.setSoftCap(50); err != nil {
		t.Fatalf("setSoftCap() error = %v", err)
	}
	if got := p.limit(); got != 8 {
		t.Errorf("limit() = %d, want capacity 8", got)
	}

	if err := p.setSoftCap(0); !errors.Is(err, ErrInvalidVoiceLimit) {
		t.Errorf("setSoftCap(0) error = %v, want %v", err, ErrInvalidVoiceLimit)
	}
}

func TestVoicePool_LoweredCapDoesNotEvict(t *testing.T) {
	t.Parallel()

	p := newVoicePool(64)
	if err := p.init(openFake(t, 4)); err != nil {
		t.Fatalf("init() error = %v", err)
	}

	a, _ := p.alloc()
	p.alloc()
	_ = p.setSoftCap(1)

	if p.inUse != 2 {
		t.Errorf("inUse = %d, want 2", p.inUse)
	}
	if _, ok := p.alloc(); ok {
		t.Error("alloc() succeeded over the lowered cap")
	}

	p.free(a)
	if _, ok := p.alloc(); ok {
		t.Error("alloc() succeeded with inUse == cap")
	}
}

func TestVoicePool_Shutdown(t *testing.T) {
	t.Parallel()

	be := openFake(t, 5)
	p := newVoicePool(64)
	if err := p.init(be); err != nil {
		t.Fatalf("init() error = %v", err)
	}

	id, _ := p.alloc()
	if err := p.shutdown(); !errors.Is(err, ErrVoicesInUse) {
		t.Fatalf("shutdown() error = %v, want %v", err, ErrVoicesInUse)
	}

	p.free(id)
	if err := p.shutdown(); err != nil {
		t.Fatalf("shutdown() error = %v", err)
	}
	if got := be.LiveSources(); got != 0 {
		t.Errorf("LiveSources() = %d, want 0", got)
	}
}
