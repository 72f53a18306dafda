// Package encoding drives FFmpeg to turn rendered frame sequences into video
// and to mux the assembled narration track into the final file.
package encoding

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"path/filepath"
	"strings"

	"scenecast/internal/services"
)

// framePattern matches the file names the build orchestrator writes.
const framePattern = "frame_%06d.png"

// Options describe one encode of a frame directory.
type Options struct {
	FPS     int
	Width   int
	Height  int
	Quality int
	Codec   string
}

// Encoder produces video files from rendered frames.
type Encoder interface {
	EncodeFrames(ctx context.Context, frameDir, outputPath string, opts Options) error
	MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error
}

// FFmpeg is the production encoder. Binary may be a bare name resolved via
// PATH or an explicit path from configuration.
type FFmpeg struct {
	Binary string
}

// NewFFmpeg falls back to "ffmpeg" when no binary is configured.
func NewFFmpeg(binary string) *FFmpeg {
	if strings.TrimSpace(binary) == "" {
		binary = "ffmpeg"
	}
	return &FFmpeg{Binary: binary}
}

func (f *FFmpeg) EncodeFrames(ctx context.Context, frameDir, outputPath string, opts Options) error {
	if opts.FPS <= 0 {
		return services.Wrap(services.ErrConfiguration, "encode", "frames", fmt.Sprintf("invalid fps %d", opts.FPS), nil)
	}
	args := encodeArgs(frameDir, outputPath, opts)
	return f.run(ctx, "frames", args)
}

func (f *FFmpeg) MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	return f.run(ctx, "mux", muxArgs(videoPath, audioPath, outputPath))
}

// DetectCodec probes the ffmpeg build for a hardware H.264 encoder and falls
// back to libx264. Used when the configured encoder is "auto".
func (f *FFmpeg) DetectCodec(ctx context.Context) string {
	out, err := exec.CommandContext(ctx, f.Binary, "-hide_banner", "-encoders").CombinedOutput()
	if err != nil {
		return "libx264"
	}
	for _, candidate := range []string{"h264_videotoolbox", "h264_nvenc"} {
		if strings.Contains(string(out), candidate) {
			return candidate
		}
	}
	return "libx264"
}

func (f *FFmpeg) run(ctx context.Context, operation string, args []string) error {
	cmd := exec.CommandContext(ctx, f.Binary, args...)
	var output bytes.Buffer
	cmd.Stdout = &output
	cmd.Stderr = &output
	if err := cmd.Run(); err != nil {
		detail := fmt.Sprintf("%s %s", f.Binary, strings.Join(args, " "))
		if tail := tailLines(output.String(), 12); tail != "" {
			detail = fmt.Sprintf("%s: %s", detail, tail)
		}
		return services.Wrap(services.ErrExternalTool, "encode", operation, detail, err)
	}
	return nil
}

func encodeArgs(frameDir, outputPath string, opts Options) []string {
	codec := opts.Codec
	if codec == "" || codec == "auto" {
		codec = "libx264"
	}
	args := []string{
		"-y",
		"-framerate", fmt.Sprintf("%d", opts.FPS),
		"-i", filepath.Join(frameDir, framePattern),
	}
	if opts.Width > 0 && opts.Height > 0 {
		args = append(args, "-s", fmt.Sprintf("%dx%d", opts.Width, opts.Height))
	}
	args = append(args,
		"-pix_fmt", "yuv420p",
		"-c:v", codec,
	)
	args = append(args, qualityArgs(codec, opts.Quality)...)
	args = append(args, "-movflags", "+faststart", outputPath)
	return args
}

// qualityArgs maps the single configured quality number onto whichever knob
// the selected encoder understands.
func qualityArgs(codec string, quality int) []string {
	switch codec {
	case "h264_videotoolbox":
		return []string{"-b:v", fmt.Sprintf("%dk", quality*100)}
	case "h264_nvenc":
		return []string{"-cq", fmt.Sprintf("%d", quality)}
	default:
		return []string{"-crf", fmt.Sprintf("%d", quality), "-preset", "medium"}
	}
}

func muxArgs(videoPath, audioPath, outputPath string) []string {
	return []string{
		"-y",
		"-i", videoPath,
		"-i", audioPath,
		"-c:v", "copy",
		"-c:a", "aac",
		"-shortest",
		outputPath,
	}
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
