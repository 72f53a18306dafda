// Package testsupport provides shared helpers and fakes for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"scenecast/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per test.
// It defaults common fields and applies any provided options.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.WorkingDir = filepath.Join(base, "work")
	cfg.Paths.OutputDir = filepath.Join(base, "output")
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.Bridge.Command = "scenecast-render"

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithKeepFrames retains the working directory after a build.
func WithKeepFrames() ConfigOption {
	return func(cfg *config.Config) {
		cfg.Video.KeepFrames = true
	}
}

// WithAudioFormat overrides the narration track format.
func WithAudioFormat(sampleRate, channels int) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Audio.SampleRate = sampleRate
		cfg.Audio.Channels = channels
	}
}
