// Package build sequences a scene into a finished video. Stages run strictly
// in order: narration synthesis resolves real segment durations before any
// frame is rendered, frames are captured one at a time through the renderer
// bridge, then FFmpeg encodes and muxes. A failure in any stage halts the
// rest; the renderer session and the working-directory lock are released on
// every exit path.
package build

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/gofrs/flock"
	"github.com/google/uuid"

	"scenecast/internal/audio"
	"scenecast/internal/bridge"
	"scenecast/internal/config"
	"scenecast/internal/encoding"
	"scenecast/internal/frame"
	"scenecast/internal/history"
	"scenecast/internal/logging"
	"scenecast/internal/scene"
	"scenecast/internal/services"
	"scenecast/internal/theme"
	"scenecast/internal/timeline"
	"scenecast/internal/tts"
)

// Request describes one build.
type Request struct {
	Scene      *scene.Scene
	SceneName  string
	Theme      string
	OutputPath string
	Progress   ProgressFunc
}

// Result reports a completed build. Duration is the timeline duration;
// MediaDuration is the container duration ffprobe measured on the muxed
// output, zero when probing is unavailable.
type Result struct {
	BuildID       string
	SceneName     string
	Frames        int
	Duration      float64
	MediaDuration float64
	OutputPath    string
	Elapsed       time.Duration
}

// Prober reports a finished media file's container duration.
type Prober interface {
	Duration(ctx context.Context, path string) (float64, error)
}

// Orchestrator owns the collaborators a build needs. Prober, engine, and
// store are optional; a nil engine falls back to the scene's estimated
// narration durations, a nil prober skips output verification, a nil store
// disables history recording.
type Orchestrator struct {
	cfg      *config.Config
	logger   *slog.Logger
	renderer bridge.Bridge
	encoder  encoding.Encoder
	prober   Prober
	engine   tts.Engine
	store    *history.Store
}

func New(cfg *config.Config, logger *slog.Logger, renderer bridge.Bridge, encoder encoding.Encoder, prober Prober, engine tts.Engine, store *history.Store) *Orchestrator {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Orchestrator{
		cfg:      cfg,
		logger:   logging.NewComponentLogger(logger, "build"),
		renderer: renderer,
		encoder:  encoder,
		prober:   prober,
		engine:   engine,
		store:    store,
	}
}

// Run executes every stage for one scene. Not safe to invoke concurrently
// against the same working directory; the flock enforces that across
// processes.
func (o *Orchestrator) Run(ctx context.Context, req Request) (Result, error) {
	buildID := uuid.NewString()
	ctx = services.WithBuildID(ctx, buildID)
	logger := o.logger.With(logging.String(logging.FieldBuildID, buildID))

	tl := req.Scene.Timeline()
	if tl.TotalFrames() == 0 {
		return Result{}, services.Wrap(services.ErrConfiguration, "build", "guard",
			"timeline renders zero frames; add narration, pauses, or animation before building", nil)
	}

	started := time.Now()
	result, err := o.run(ctx, logger, buildID, req)
	result.BuildID = buildID
	result.SceneName = req.SceneName
	result.Elapsed = time.Since(started)

	o.record(ctx, logger, req, result, started, err)
	if err != nil {
		return Result{}, err
	}
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, logger *slog.Logger, buildID string, req Request) (Result, error) {
	progress := req.Progress
	if progress == nil {
		progress = LogProgress(logger)
	}
	tl := req.Scene.Timeline()

	clips, err := o.resolveNarration(services.WithStage(ctx, "narrate"), logger, tl, progress)
	if err != nil {
		return Result{}, err
	}

	totalFrames := tl.TotalFrames()
	totalDuration := tl.TotalDuration()
	fps := tl.FPS()
	logger.Info("build plan",
		logging.Int("frames", totalFrames),
		logging.Float64("duration_seconds", totalDuration),
		logging.Int("fps", fps))

	// The lock comes before the build directory so a losing racer leaves
	// nothing behind.
	if err := os.MkdirAll(o.cfg.Paths.WorkingDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrIO, "build", "workdir",
			fmt.Sprintf("create %s", o.cfg.Paths.WorkingDir), err)
	}
	lock := flock.New(filepath.Join(o.cfg.Paths.WorkingDir, "scenecast.lock"))
	locked, err := lock.TryLock()
	if err != nil {
		return Result{}, services.Wrap(services.ErrIO, "build", "lock", "acquire working directory lock", err)
	}
	if !locked {
		return Result{}, services.Wrap(services.ErrResource, "build", "lock",
			"another build holds the working directory lock", nil)
	}
	defer func() {
		if err := lock.Unlock(); err != nil {
			logger.Warn("failed to release working directory lock", logging.Error(err))
		}
	}()

	workDir := filepath.Join(o.cfg.Paths.WorkingDir, "build-"+buildID)
	frameDir := filepath.Join(workDir, "frames")
	if err := os.MkdirAll(frameDir, 0o755); err != nil {
		return Result{}, services.Wrap(services.ErrIO, "build", "workdir",
			fmt.Sprintf("create %s", frameDir), err)
	}

	outputPath, err := o.resolveOutputPath(req)
	if err != nil {
		return Result{}, err
	}

	if err := o.renderFrames(services.WithStage(ctx, "render"), logger, req, frameDir, progress); err != nil {
		return Result{}, err
	}

	videoPath := filepath.Join(workDir, "video.mp4")
	if err := o.encode(services.WithStage(ctx, "encode"), frameDir, videoPath, fps); err != nil {
		return Result{}, err
	}
	progress(Progress{Stage: StageEncode, Current: 1, Total: 1})

	audioPath := filepath.Join(workDir, "audio.wav")
	if err := o.assembleAudio(tl, clips, audioPath); err != nil {
		return Result{}, err
	}

	if err := o.encoder.MuxAudio(services.WithStage(ctx, "mux"), videoPath, audioPath, outputPath); err != nil {
		return Result{}, err
	}
	progress(Progress{Stage: StageMux, Current: 1, Total: 1})

	mediaDuration := o.probeOutput(services.WithStage(ctx, "mux"), logger, outputPath)

	if o.cfg.Video.KeepFrames {
		logger.Info("keeping working directory", logging.String("path", workDir))
	} else if err := os.RemoveAll(workDir); err != nil {
		return Result{}, services.Wrap(services.ErrIO, "build", "cleanup",
			fmt.Sprintf("remove %s", workDir), err)
	}

	progress(Progress{Stage: StageComplete, Current: totalFrames, Total: totalFrames, Message: outputPath})
	logger.Info("build complete",
		logging.Int("frames", totalFrames),
		logging.String("output", outputPath))

	return Result{
		Frames:        totalFrames,
		Duration:      totalDuration,
		MediaDuration: mediaDuration,
		OutputPath:    outputPath,
	}, nil
}

// probeOutput measures the muxed file's container duration. Probe failures
// are logged, not fatal; the file already muxed successfully.
func (o *Orchestrator) probeOutput(ctx context.Context, logger *slog.Logger, outputPath string) float64 {
	if o.prober == nil {
		return 0
	}
	duration, err := o.prober.Duration(ctx, outputPath)
	if err != nil {
		logger.Warn("failed to probe output duration", logging.Error(err))
		return 0
	}
	logger.Info("output verified",
		logging.String("path", outputPath),
		logging.Float64("media_duration_seconds", duration))
	return duration
}

// resolveNarration synthesizes every narration segment and swaps the scene's
// estimated durations for the real clip lengths. This is the only point where
// the timeline's duration may change after scene construction.
func (o *Orchestrator) resolveNarration(ctx context.Context, logger *slog.Logger, tl *timeline.Timeline, progress ProgressFunc) ([]audio.Clip, error) {
	total := tl.NarrationCount()
	if o.engine == nil || total == 0 {
		return nil, nil
	}

	clips := make([]audio.Clip, 0, total)
	durations := make([]float64, 0, total)
	index := 0
	for _, segment := range tl.Segments() {
		if segment.Kind != timeline.SegmentNarration {
			continue
		}
		index++
		progress(Progress{Stage: StageNarrate, Current: index, Total: total})
		clip, err := o.engine.Synthesize(ctx, segment.Text)
		if err != nil {
			return nil, services.Wrap(services.ErrSynthesis, "build", "narrate",
				fmt.Sprintf("segment %d of %d (%q)", index, total, truncate(segment.Text, 60)), err)
		}
		clips = append(clips, clip)
		durations = append(durations, clip.Duration())
	}

	if err := tl.ResolveNarrationDurations(durations); err != nil {
		return nil, services.Wrap(services.ErrConfiguration, "build", "narrate", "apply synthesized durations", err)
	}
	logger.Info("narration resolved", logging.Int("segments", total))
	return clips, nil
}

// renderFrames drives the renderer session over every frame index in order.
// The session is confined to this method so it is closed before encoding
// starts, on failure as well as success.
func (o *Orchestrator) renderFrames(ctx context.Context, logger *slog.Logger, req Request, frameDir string, progress ProgressFunc) error {
	tl := req.Scene.Timeline()
	totalFrames := tl.TotalFrames()
	fps := tl.FPS()
	elements := req.Scene.Elements()
	provider, err := theme.Lookup(o.themeName(req))
	if err != nil {
		return services.Wrap(services.ErrConfiguration, "build", "render", "resolve theme", err)
	}

	session, err := o.renderer.Launch(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if err := session.Close(); err != nil {
			logger.Warn("renderer session close failed", logging.Error(err))
		}
	}()

	for i := 0; i < totalFrames; i++ {
		at := float64(i) / float64(fps)
		state := frame.Compute(elements, tl, provider, at)
		payload, err := json.Marshal(state)
		if err != nil {
			return services.Wrap(services.ErrIO, "build", "render",
				fmt.Sprintf("serialize frame %d", i), err)
		}
		image, err := session.CaptureFrame(ctx, payload)
		if err != nil {
			return err
		}
		framePath := filepath.Join(frameDir, fmt.Sprintf("frame_%06d.png", i))
		if err := os.WriteFile(framePath, image, 0o644); err != nil {
			return services.Wrap(services.ErrIO, "build", "render",
				fmt.Sprintf("write %s", framePath), err)
		}
		progress(Progress{Stage: StageRender, Current: i + 1, Total: totalFrames})
	}
	return nil
}

func (o *Orchestrator) encode(ctx context.Context, frameDir, videoPath string, fps int) error {
	codec := o.cfg.Video.Encoder
	if codec == "auto" {
		if detector, ok := o.encoder.(interface {
			DetectCodec(context.Context) string
		}); ok {
			codec = detector.DetectCodec(ctx)
		}
	}
	return o.encoder.EncodeFrames(ctx, frameDir, videoPath, encoding.Options{
		FPS:     fps,
		Width:   o.cfg.Video.Width,
		Height:  o.cfg.Video.Height,
		Quality: o.cfg.Video.Quality,
		Codec:   codec,
	})
}

func (o *Orchestrator) assembleAudio(tl *timeline.Timeline, clips []audio.Clip, audioPath string) error {
	track, err := audio.Assemble(tl, o.cfg.Audio.SampleRate, o.cfg.Audio.Channels, clips)
	if err != nil {
		return err
	}
	if err := audio.WriteWAVFile(audioPath, track); err != nil {
		return services.Wrap(services.ErrIO, "build", "audio",
			fmt.Sprintf("write %s", audioPath), err)
	}
	return nil
}

func (o *Orchestrator) resolveOutputPath(req Request) (string, error) {
	if req.OutputPath != "" {
		return req.OutputPath, nil
	}
	if err := os.MkdirAll(o.cfg.Paths.OutputDir, 0o755); err != nil {
		return "", services.Wrap(services.ErrIO, "build", "workdir",
			fmt.Sprintf("create %s", o.cfg.Paths.OutputDir), err)
	}
	name := strings.TrimSpace(req.SceneName)
	if name == "" {
		name = "scene"
	}
	return filepath.Join(o.cfg.Paths.OutputDir, sanitizeName(name)+".mp4"), nil
}

func (o *Orchestrator) themeName(req Request) string {
	if req.Theme != "" {
		return req.Theme
	}
	return o.cfg.Bridge.Theme
}

// record writes the build outcome to history when a store is configured.
// History failures are logged, never surfaced; they must not mask the build
// result.
func (o *Orchestrator) record(ctx context.Context, logger *slog.Logger, req Request, result Result, started time.Time, buildErr error) {
	if o.store == nil {
		return
	}
	duration := result.Duration
	if result.MediaDuration > 0 {
		duration = result.MediaDuration
	}
	record := history.Record{
		ID:         result.BuildID,
		SceneName:  req.SceneName,
		Status:     history.StatusCompleted,
		Frames:     result.Frames,
		Duration:   duration,
		OutputPath: result.OutputPath,
		StartedAt:  started,
		FinishedAt: time.Now(),
	}
	if buildErr != nil {
		record.Status = history.StatusFailed
		record.Error = buildErr.Error()
	}
	if err := o.store.Record(ctx, record); err != nil {
		logger.Warn("failed to record build history", logging.Error(err))
	}
}

func sanitizeName(name string) string {
	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r == ' ':
			b.WriteRune('-')
		}
	}
	if b.Len() == 0 {
		return "scene"
	}
	return b.String()
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
