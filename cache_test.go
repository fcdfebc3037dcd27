// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"testing"
)

func TestSoundCache_RefCounting(t *testing.T) {
	t.Parallel()

	f := newTestLoader(t, true)
	c := newSoundCache(f.ld)

	a, err := c.acquire("clip.ogg", false)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	b, _ := c.acquire("sub/../clip.ogg", false)
	if a != b {
		t.Fatal("acquire() loaded the same clip twice")
	}
	if got := c.clips["clip.ogg"].refs; got != 2 {
		t.Errorf("refs = %d, want 2", got)
	}

	c.release(a)
	c.release(b)
	c.release(b)
	if got := c.clips["clip.ogg"].refs; got != 0 {
		t.Errorf("refs = %d, want 0", got)
	}

	// unused clips stay resident until purged
	if clips, _ := c.stats(); clips != 1 {
		t.Errorf("stats() clips = %d, want 1", clips)
	}
	if n := c.purge(); n != 1 {
		t.Errorf("purge() = %d, want 1", n)
	}
	if got := f.be.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() = %d, want 0", got)
	}

	// a purged clip loads again on the next acquire
	d, err := c.acquire("clip.ogg", false)
	if err != nil || d == a {
		t.Errorf("acquire() after purge = %p, %v, want fresh data", d, err)
	}
}

func TestSoundCache_StreamsAreNotShared(t *testing.T) {
	t.Parallel()

	f := newTestLoader(t, true)
	c := newSoundCache(f.ld)

	a, err := c.acquire("music.ogg", true)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	b, err := c.acquire("music.ogg", true)
	if err != nil {
		t.Fatalf("acquire() error = %v", err)
	}
	if a == b {
		t.Fatal("two stream opens share sound data")
	}
	if clips, streams := c.stats(); clips != 0 || streams != 2 {
		t.Errorf("stats() = %d, %d, want 0, 2", clips, streams)
	}

	c.release(a)
	if _, streams := c.stats(); streams != 1 {
		t.Errorf("streams after release = %d, want 1", streams)
	}
	if got := f.fs.OpenFiles(); got != 1 {
		t.Errorf("OpenFiles() = %d, want 1", got)
	}
}

func TestSoundCache_Shutdown(t *testing.T) {
	t.Parallel()

	f := newTestLoader(t, true)
	c := newSoundCache(f.ld)

	for _, name := range []string{"clip.ogg", "short.ogg", "clip.wav"} {
		if _, err := c.acquire(name, false); err != nil {
			t.Fatalf("acquire(%q) error = %v", name, err)
		}
	}
	if _, err := c.acquire("music.ogg", true); err != nil {
		t.Fatalf("acquire() error = %v", err)
	}

	c.shutdown()

	if clips, streams := c.stats(); clips != 0 || streams != 0 {
		t.Errorf("stats() = %d, %d, want 0, 0", clips, streams)
	}
	if got := f.be.LiveBuffers(); got != 0 {
		t.Errorf("LiveBuffers() = %d, want 0", got)
	}
	if got := f.fs.OpenFiles(); got != 0 {
		t.Errorf("OpenFiles() = %d, want 0", got)
	}
	if got := f.ld.streams.pool.available(); got != 8 {
		t.Errorf("available() = %d, want 8", got)
	}
}
