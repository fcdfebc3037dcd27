// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"path/filepath"
	"sync"
)

type clipEntry struct {
	data *soundData
	refs int
}

// soundCache shares clips by file name and hands out a fresh stream per
// open. Clips stay loaded at zero references until purge or shutdown; the
// sweep set tracks every live sound data so shutdown can free it all.
type soundCache struct {
	ld *loader

	mtx   sync.Mutex
	clips map[string]*clipEntry
	sweep map[*soundData]struct{}
}

func newSoundCache(ld *loader) *soundCache {
	return &soundCache{
		ld:    ld,
		clips: make(map[string]*clipEntry),
		sweep: make(map[*soundData]struct{}),
	}
}

func (c *soundCache) acquire(name string, stream bool) (*soundData, error) {
	name = filepath.Clean(name)

	c.mtx.Lock()
	defer c.mtx.Unlock()

	if !stream {
		if e, ok := c.clips[name]; ok {
			e.refs++
			return e.data, nil
		}
	}

	d, err := c.ld.load(name, stream)
	if err != nil {
		return nil, err
	}
	c.sweep[d] = struct{}{}

	if !stream {
		c.clips[name] = &clipEntry{data: d, refs: 1}
	}

	return d, nil
}

func (c *soundCache) release(d *soundData) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	if d.stream {
		d.destroy()
		delete(c.sweep, d)
		return
	}

	if e, ok := c.clips[d.name]; ok && e.data == d && e.refs > 0 {
		e.refs--
	}
}

// purge frees clips nobody uses and reports how many went away.
func (c *soundCache) purge() int {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	n := 0
	for name, e := range c.clips {
		if e.refs == 0 {
			e.data.destroy()
			delete(c.sweep, e.data)
			delete(c.clips, name)
			n++
		}
	}

	return n
}

// shutdown frees every sound data regardless of references.
func (c *soundCache) shutdown() {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	for d := range c.sweep {
		d.destroy()
	}
	clear(c.sweep)
	clear(c.clips)
}

func (c *soundCache) stats() (clips, streams int) {
	c.mtx.Lock()
	defer c.mtx.Unlock()

	clips = len(c.clips)
	streams = len(c.sweep) - clips

	return clips, streams
}
