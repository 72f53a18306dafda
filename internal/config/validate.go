package config

import (
	"errors"
	"fmt"
	"strings"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validatePaths(); err != nil {
		return err
	}
	if err := c.validateVideo(); err != nil {
		return err
	}
	if err := c.validateAudio(); err != nil {
		return err
	}
	if err := c.validateTTS(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validatePaths() error {
	if strings.TrimSpace(c.Paths.WorkingDir) == "" {
		return errors.New("paths.working_dir must be set")
	}
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		return errors.New("paths.output_dir must be set")
	}
	return nil
}

func (c *Config) validateVideo() error {
	if c.Video.Width <= 0 || c.Video.Height <= 0 {
		return fmt.Errorf("video.width and video.height must be positive (got %dx%d)", c.Video.Width, c.Video.Height)
	}
	if c.Video.Width%2 != 0 || c.Video.Height%2 != 0 {
		return errors.New("video.width and video.height must be even for yuv420p output")
	}
	if c.Video.FPS <= 0 {
		return fmt.Errorf("video.fps must be a positive integer (got %d)", c.Video.FPS)
	}
	if c.Video.Quality < 0 || c.Video.Quality > 51 {
		return fmt.Errorf("video.quality must be within 0-51 (got %d)", c.Video.Quality)
	}
	return nil
}

func (c *Config) validateAudio() error {
	if c.Audio.SampleRate <= 0 {
		return fmt.Errorf("audio.sample_rate must be positive (got %d)", c.Audio.SampleRate)
	}
	if c.Audio.Channels != 1 && c.Audio.Channels != 2 {
		return fmt.Errorf("audio.channels must be 1 or 2 (got %d)", c.Audio.Channels)
	}
	return nil
}

func (c *Config) validateTTS() error {
	if !c.TTS.Enabled {
		return nil
	}
	if strings.TrimSpace(c.TTS.Command) == "" {
		return errors.New("tts.command must be set when tts.enabled is true")
	}
	if c.TTS.WordsPerMinute <= 0 {
		return fmt.Errorf("tts.words_per_minute must be positive (got %d)", c.TTS.WordsPerMinute)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return fmt.Errorf("logging.format must be console or json (got %q)", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn, or error (got %q)", c.Logging.Level)
	}
	return nil
}
