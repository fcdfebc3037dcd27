// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestDefaultConfig_MatchesEmbeddedDefaults(t *testing.T) {
	t.Parallel()

	got, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if want := DefaultConfig(); got != want {
		t.Errorf("LoadConfig(\"\") = %+v, want %+v", got, want)
	}
	if err := DefaultConfig().Validate(); err != nil {
		t.Errorf("DefaultConfig().Validate() error = %v", err)
	}
}

func TestDefaultConfig_Cutoff(t *testing.T) {
	t.Parallel()

	if got := DefaultConfig().maxDist2(); got < 999.99 || got > 1000.01 {
		t.Errorf("maxDist2() = %v, want 1000", got)
	}
}

func TestLoadConfig_Overrides(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sound.ini")
	data := "[engine]\ndevice = headset\nmax_voices = 8\n\n[voice]\nqueue_depth = 2\n"
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig() error = %v", err)
	}

	if cfg.Engine.Device != "headset" {
		t.Errorf("Device = %q, want %q", cfg.Engine.Device, "headset")
	}
	if cfg.Engine.MaxVoices != 8 {
		t.Errorf("MaxVoices = %d, want 8", cfg.Engine.MaxVoices)
	}
	if cfg.Voice.QueueDepth != 2 {
		t.Errorf("QueueDepth = %d, want 2", cfg.Voice.QueueDepth)
	}
	// untouched keys keep their defaults
	if cfg.Stream.BufferSize != 32*1024 {
		t.Errorf("BufferSize = %d, want %d", cfg.Stream.BufferSize, 32*1024)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	t.Parallel()

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "missing.ini")); err == nil {
		t.Error("LoadConfig() error = nil for a missing file")
	}

	path := filepath.Join(t.TempDir(), "bad.ini")
	if err := os.WriteFile(path, []byte("[engine]\nmax_voices = 2\n"), 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}
	if _, err := LoadConfig(path); !errors.Is(err, ErrInvalidConfig) {
		t.Errorf("LoadConfig() error = %v, want %v", err, ErrInvalidConfig)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		modify func(*Config)
	}{
		{"too few voices", func(c *Config) { c.Engine.MaxVoices = 3 }},
		{"master gain above 1", func(c *Config) { c.Engine.MasterGain = 1.5 }},
		{"negative master gain", func(c *Config) { c.Engine.MasterGain = -0.1 }},
		{"no streams", func(c *Config) { c.Stream.MaxStreams = 0 }},
		{"no ios", func(c *Config) { c.Stream.IOsPerStream = 0 }},
		{"no buffer", func(c *Config) { c.Stream.BufferSize = 0 }},
		{"no queue", func(c *Config) { c.Voice.QueueDepth = 0 }},
		{"zero reference distance", func(c *Config) { c.Voice.ReferenceDistance = 0 }},
		{"negative rolloff", func(c *Config) { c.Voice.Rolloff = -1 }},
		{"zero max distance", func(c *Config) { c.Priority.MaxDistance = 0 }},
		{"falloff below 1", func(c *Config) { c.Priority.Falloff = 0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := DefaultConfig()
			tt.modify(&cfg)
			if err := cfg.Validate(); !errors.Is(err, ErrInvalidConfig) {
				t.Errorf("Validate() error = %v, want %v", err, ErrInvalidConfig)
			}
		})
	}
}
