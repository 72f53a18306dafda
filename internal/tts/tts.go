// Package tts synthesizes narration text into PCM clips through an external
// synthesizer subprocess.
package tts

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"

	"scenecast/internal/audio"
)

// Engine converts narration text into an audio clip.
type Engine interface {
	Synthesize(ctx context.Context, text string) (audio.Clip, error)
}

// CommandEngine shells out to an espeak-ng-style synthesizer: text arrives
// on stdin and a WAV file is written to the path following the -w flag.
type CommandEngine struct {
	Command string
	Voice   string
}

// Synthesize runs the synthesizer for one narration and decodes its WAV
// output. The subprocess's combined output is captured into the error on
// failure so the diagnostic names the real cause.
func (e CommandEngine) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	if strings.TrimSpace(e.Command) == "" {
		return audio.Clip{}, fmt.Errorf("tts command not configured")
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return audio.Clip{}, fmt.Errorf("narration text is empty")
	}

	dir, err := os.MkdirTemp("", "scenecast_tts_")
	if err != nil {
		return audio.Clip{}, fmt.Errorf("create tts temp dir: %w", err)
	}
	defer os.RemoveAll(dir)
	outPath := filepath.Join(dir, "narration.wav")

	args := make([]string, 0, 5)
	if strings.TrimSpace(e.Voice) != "" {
		args = append(args, "-v", e.Voice)
	}
	args = append(args, "-w", outPath, "--stdin")

	cmd := exec.CommandContext(ctx, e.Command, args...)
	cmd.Stdin = strings.NewReader(text)
	if output, err := cmd.CombinedOutput(); err != nil {
		return audio.Clip{}, fmt.Errorf("synthesizer %q failed: %w: %s",
			e.Command, err, strings.TrimSpace(string(output)))
	}

	clip, err := audio.ReadWAVFile(outPath)
	if err != nil {
		return audio.Clip{}, fmt.Errorf("decode synthesizer output: %w", err)
	}
	if clip.Empty() {
		return audio.Clip{}, fmt.Errorf("synthesizer produced an empty clip")
	}
	return clip, nil
}
