// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"bytes"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/ik5/sndmgr/audio"
	"github.com/ik5/sndmgr/backend"
	"github.com/ik5/sndmgr/internal/audiotest"
)

var errBoom = errors.New("boom")

type testClock struct {
	now time.Duration
}

func (c *testClock) Now() time.Duration { return c.now }

func testRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("ogg", audiotest.PassthroughDecoder{})
	r.Register("wav", audiotest.ClipDecoder{})
	r.Register("bad", audiotest.FailingDecoder{Err: errBoom})
	return r
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Stream.MaxStreams = 2
	cfg.Stream.IOsPerStream = 4
	cfg.Stream.BufferSize = 4
	return cfg
}

func quietLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type harness struct {
	eng   *Engine
	be    *audiotest.FakeBackend
	fs    *audiotest.FakeFS
	clock *testClock
}

func newHarness(t *testing.T, voices int, cfg Config) *harness {
	t.Helper()

	h := &harness{
		be:    audiotest.NewFakeBackend(voices),
		clock: &testClock{},
		fs: audiotest.NewFakeFS(map[string][]byte{
			"clip.ogg":     bytes.Repeat([]byte{200}, 16),
			"other.ogg":    bytes.Repeat([]byte{100}, 16),
			"music.ogg":    bytes.Repeat([]byte{50}, 32),
			"empty.ogg":    {},
			"clip.wav":     {1, 2, 3},
			"broken.bad":   {1},
			"sfx/step.txt": []byte("step.ogg 80\n"),
			"sfx/step.ogg": {10, 20, 30},
			"sfx/loud.txt": []byte("step.ogg 150"),
			"sfx/bad.txt":  []byte("step.ogg"),
		}),
	}
	h.fs.AutoComplete = true

	eng, err := New(cfg,
		WithBackend(h.be),
		WithFileSystem(h.fs),
		WithRegistry(testRegistry()),
		WithLogger(quietLogger()),
		WithClock(h.clock.Now),
	)
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	h.eng = eng

	return h
}

func (h *harness) open(t *testing.T, name string, stream bool) Handle {
	t.Helper()

	hd, err := h.eng.Open(name, stream)
	if err != nil {
		t.Fatalf("Open(%q) error = %v", name, err)
	}
	return hd
}

func (h *harness) src(t *testing.T, hd Handle) *virtualSource {
	t.Helper()

	s, ok := h.eng.sources.get(hd)
	if !ok {
		t.Fatalf("handle %v is not open", hd)
	}
	return s
}

func (h *harness) isOpen(hd Handle) bool {
	_, ok := h.eng.sources.get(hd)
	return ok
}

func (h *harness) voice(hd Handle) backend.SourceID {
	s, ok := h.eng.sources.get(hd)
	if !ok {
		return 0
	}
	return s.voice
}
