// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"cmp"
	"math"
	"slices"
	"time"

	"github.com/go-gl/mathgl/mgl32"
)

// activeList holds every playing source. Removal leaves a nil slot that the
// next compact drops.
type activeList struct {
	items []*virtualSource
	holes int
}

func (l *activeList) add(s *virtualSource) {
	s.listIdx = len(l.items)
	l.items = append(l.items, s)
}

func (l *activeList) remove(s *virtualSource) {
	if !s.active() {
		return
	}

	l.items[s.listIdx] = nil
	s.listIdx = -1
	l.holes++
}

func (l *activeList) compact() {
	if l.holes == 0 {
		return
	}

	l.items = slices.DeleteFunc(l.items, func(s *virtualSource) bool { return s == nil })
	l.reindex()
	l.holes = 0
}

func (l *activeList) reindex() {
	for i, s := range l.items {
		s.listIdx = i
	}
}

func (l *activeList) len() int { return len(l.items) - l.holes }

// priorityOf decays the static priority exponentially with the squared
// distance to the listener. Sources past the cutoff get -1.
func (e *Engine) priorityOf(s *virtualSource) float32 {
	ref := e.lisPos
	if s.relative {
		ref = mgl32.Vec3{}
	}

	d := s.pos.Sub(ref)
	d2 := d.Dot(d)

	maxD2 := e.cfg.maxDist2()
	if d2 > maxD2 {
		return -1
	}

	return s.static / float32(math.Pow(e.cfg.Priority.Falloff, float64(d2/maxD2)))
}

// schedule ranks the active sources and hands the voices to the top ones.
// Voices are reclaimed before any are granted so the pass never holds more
// than the voice limit.
func (e *Engine) schedule(now time.Duration) {
	e.active.compact()

	items := e.active.items
	for _, s := range items {
		s.priority = e.priorityOf(s)
	}

	slices.SortFunc(items, func(a, b *virtualSource) int {
		return cmp.Compare(b.priority, a.priority)
	})
	e.active.reindex()

	k := min(len(items), e.pool.limit())

	for _, s := range items[k:] {
		s.reclaim(e)
		if !s.loop {
			e.log.Debug("source ranked out", "handle", s.handle, "priority", s.priority)
			e.destroy(s)
		}
	}

	for _, s := range items[:k] {
		s.grant(e)
	}

	for i := range items {
		s := items[i]
		if s == nil {
			continue
		}

		done, err := s.update(e, now)
		if err != nil {
			e.log.Warn("source update failed", "handle", s.handle, "sound", s.data.name, "error", err)
		}
		if done {
			e.log.Debug("source finished", "handle", s.handle, "sound", s.data.name)
			e.destroy(s)
		}
	}
}
