// SPDX-License-Identifier: EPL-2.0

package sndmgr

import (
	_ "embed"
	"fmt"

	"gopkg.in/ini.v1"

	"github.com/ik5/sndmgr/backend"
)

const (
	// MaxVoices is the most voices the engine requests from a backend.
	MaxVoices = 64

	// DefinitionExt selects definition files in Open.
	DefinitionExt = ".txt"
)

//go:embed default_config.ini
var defaultConfig []byte

type EngineConfig struct {
	Disabled   bool    `ini:"disabled"`
	Device     string  `ini:"device"`
	MaxVoices  int     `ini:"max_voices"`
	MasterGain float64 `ini:"master_gain"`
}

type StreamConfig struct {
	MaxStreams   int `ini:"max_streams"`
	IOsPerStream int `ini:"ios_per_stream"`
	BufferSize   int `ini:"buffer_size"`
}

type VoiceConfig struct {
	QueueDepth        int     `ini:"queue_depth"`
	ReferenceDistance float64 `ini:"reference_distance"`
	Rolloff           float64 `ini:"rolloff"`
}

type PriorityConfig struct {
	MaxDistance float64 `ini:"max_distance"`
	Falloff     float64 `ini:"falloff"`
}

// Config tunes the engine. The zero value is not usable; start from
// DefaultConfig or LoadConfig.
type Config struct {
	Engine   EngineConfig   `ini:"engine"`
	Stream   StreamConfig   `ini:"stream"`
	Voice    VoiceConfig    `ini:"voice"`
	Priority PriorityConfig `ini:"priority"`
}

func DefaultConfig() Config {
	return Config{
		Engine: EngineConfig{
			MaxVoices:  MaxVoices,
			MasterGain: 1,
		},
		Stream: StreamConfig{
			MaxStreams:   16,
			IOsPerStream: 4,
			BufferSize:   32 * 1024,
		},
		Voice: VoiceConfig{
			QueueDepth:        4,
			ReferenceDistance: 1,
			Rolloff:           1,
		},
		Priority: PriorityConfig{
			// squared cutoff of 1000
			MaxDistance: 31.6227766,
			Falloff:     10,
		},
	}
}

// LoadConfig reads an ini file over the built-in defaults. An empty path
// yields the defaults.
func LoadConfig(path string) (Config, error) {
	options := ini.LoadOptions{
		SkipUnrecognizableLines: true,
	}

	sources := []any{}
	if path != "" {
		sources = append(sources, path)
	}

	f, err := ini.LoadSources(options, defaultConfig, sources...)
	if err != nil {
		return Config{}, fmt.Errorf("failed to read sound config: %w", err)
	}

	var c Config
	if err := f.MapTo(&c); err != nil {
		return Config{}, fmt.Errorf("failed to map sound config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return Config{}, err
	}

	return c, nil
}

func (c Config) Validate() error {
	switch {
	case c.Engine.MaxVoices < backend.MinVoices:
		return fmt.Errorf("%w: max_voices %d is below %d", ErrInvalidConfig, c.Engine.MaxVoices, backend.MinVoices)
	case c.Engine.MasterGain < 0 || c.Engine.MasterGain > 1:
		return fmt.Errorf("%w: master_gain %v", ErrInvalidConfig, c.Engine.MasterGain)
	case c.Stream.MaxStreams < 1, c.Stream.IOsPerStream < 1, c.Stream.BufferSize < 1:
		return fmt.Errorf("%w: stream limits must be positive", ErrInvalidConfig)
	case c.Voice.QueueDepth < 1:
		return fmt.Errorf("%w: queue_depth %d", ErrInvalidConfig, c.Voice.QueueDepth)
	case c.Voice.ReferenceDistance <= 0 || c.Voice.Rolloff < 0:
		return fmt.Errorf("%w: attenuation", ErrInvalidConfig)
	case c.Priority.MaxDistance <= 0 || c.Priority.Falloff < 1:
		return fmt.Errorf("%w: priority falloff", ErrInvalidConfig)
	}

	return nil
}

func (c Config) maxDist2() float32 {
	return float32(c.Priority.MaxDistance * c.Priority.MaxDistance)
}
