package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}
	if cfg.Video.FPS != 30 {
		t.Fatalf("default fps = %d, want 30", cfg.Video.FPS)
	}
}

func TestLoadParsesAndExpands(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	body := `
[paths]
working_dir = "` + dir + `/work"
output_dir = "` + dir + `/out"

[video]
fps = 24
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists || resolved == "" {
		t.Fatalf("expected config file to be found")
	}
	if cfg.Video.FPS != 24 {
		t.Fatalf("fps = %d, want 24", cfg.Video.FPS)
	}
	if !filepath.IsAbs(cfg.Paths.WorkingDir) {
		t.Fatalf("working dir not expanded: %q", cfg.Paths.WorkingDir)
	}
	// Untouched sections keep defaults.
	if cfg.Audio.SampleRate != 44100 {
		t.Fatalf("sample rate = %d, want default 44100", cfg.Audio.SampleRate)
	}
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		want   string
	}{
		{"zero fps", func(c *Config) { c.Video.FPS = 0 }, "video.fps"},
		{"odd width", func(c *Config) { c.Video.Width = 1921 }, "even"},
		{"bad channels", func(c *Config) { c.Audio.Channels = 6 }, "audio.channels"},
		{"tts without command", func(c *Config) { c.TTS.Enabled = true }, "tts.command"},
		{"bad log format", func(c *Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			if err := cfg.normalize(); err != nil {
				t.Fatalf("normalize: %v", err)
			}
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestCreateSampleRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := CreateSample(path); err != nil {
		t.Fatalf("create sample: %v", err)
	}
	if _, _, _, err := Load(path); err != nil {
		t.Fatalf("sample config should load cleanly: %v", err)
	}
}
