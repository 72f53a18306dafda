package encoding

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"scenecast/internal/services"
)

// Prober inspects finished media files.
type Prober struct {
	Binary string
}

// NewProber falls back to "ffprobe" when no binary is configured.
func NewProber(binary string) *Prober {
	if strings.TrimSpace(binary) == "" {
		binary = "ffprobe"
	}
	return &Prober{Binary: binary}
}

// Duration returns the container duration of a media file in seconds.
func (p *Prober) Duration(ctx context.Context, path string) (float64, error) {
	args := []string{
		"-v", "error",
		"-show_entries", "format=duration",
		"-of", "default=noprint_wrappers=1:nokey=1",
		path,
	}
	out, err := exec.CommandContext(ctx, p.Binary, args...).CombinedOutput()
	if err != nil {
		detail := fmt.Sprintf("probe %s", path)
		if tail := tailLines(string(out), 6); tail != "" {
			detail = fmt.Sprintf("%s: %s", detail, tail)
		}
		return 0, services.Wrap(services.ErrExternalTool, "encode", "probe", detail, err)
	}
	duration, err := strconv.ParseFloat(strings.TrimSpace(string(out)), 64)
	if err != nil {
		return 0, services.Wrap(services.ErrExternalTool, "encode", "probe",
			fmt.Sprintf("unexpected ffprobe output %q", strings.TrimSpace(string(out))), err)
	}
	return duration, nil
}
