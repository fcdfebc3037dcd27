// SPDX-License-Identifier: EPL-2.0

package sndmgr

// Handle refers to an open sound. The zero Handle is never valid, and a
// handle goes stale once its sound is closed, even if the slot is reused.
type Handle uint64

func makeHandle(idx, gen uint32) Handle {
	return Handle(uint64(gen)<<32 | uint64(idx))
}

func (h Handle) split() (idx, gen uint32) {
	return uint32(h), uint32(h >> 32)
}

type slot[T any] struct {
	gen  uint32
	live bool
	val  T
}

// arena stores values in reusable slots addressed by generation-checked
// handles.
type arena[T any] struct {
	slots []slot[T]
	free  []uint32
}

func (a *arena[T]) insert(v T) Handle {
	var idx uint32
	if n := len(a.free); n > 0 {
		idx = a.free[n-1]
		a.free = a.free[:n-1]
	} else {
		idx = uint32(len(a.slots))
		a.slots = append(a.slots, slot[T]{})
	}

	s := &a.slots[idx]
	s.gen++
	if s.gen == 0 {
		s.gen = 1
	}
	s.live = true
	s.val = v

	return makeHandle(idx, s.gen)
}

func (a *arena[T]) get(h Handle) (T, bool) {
	var zero T

	idx, gen := h.split()
	if gen == 0 || int(idx) >= len(a.slots) {
		return zero, false
	}

	s := &a.slots[idx]
	if !s.live || s.gen != gen {
		return zero, false
	}

	return s.val, true
}

func (a *arena[T]) remove(h Handle) bool {
	if _, ok := a.get(h); !ok {
		return false
	}

	idx, _ := h.split()
	var zero T
	a.slots[idx].live = false
	a.slots[idx].val = zero
	a.free = append(a.free, idx)

	return true
}

func (a *arena[T]) count() int {
	return len(a.slots) - len(a.free)
}

// each visits live values in slot order.
func (a *arena[T]) each(fn func(Handle, T)) {
	for i := range a.slots {
		s := &a.slots[i]
		if s.live {
			fn(makeHandle(uint32(i), s.gen), s.val)
		}
	}
}
