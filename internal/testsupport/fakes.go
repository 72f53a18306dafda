package testsupport

import (
	"context"
	"os"
	"path/filepath"
	"sync"

	"scenecast/internal/audio"
	"scenecast/internal/bridge"
	"scenecast/internal/encoding"
)

// FakeBridge hands out in-memory renderer sessions.
type FakeBridge struct {
	mu        sync.Mutex
	LaunchErr error
	Image     []byte

	// SessionFailAt arms capture failure on every session handed out.
	SessionFailAt  int
	SessionFailErr error

	Launches int
	Session  *FakeSession
}

func (b *FakeBridge) Launch(ctx context.Context) (bridge.Session, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.Launches++
	if b.LaunchErr != nil {
		return nil, b.LaunchErr
	}
	image := b.Image
	if image == nil {
		image = []byte("png")
	}
	b.Session = &FakeSession{image: image, FailAt: b.SessionFailAt, FailErr: b.SessionFailErr}
	return b.Session, nil
}

// FakeSession records every snapshot it is asked to capture.
type FakeSession struct {
	mu    sync.Mutex
	image []byte

	// FailAt makes capture of the given zero-based call index fail.
	FailAt  int
	FailErr error

	Snapshots [][]byte
	Closed    bool
}

func (s *FakeSession) CaptureFrame(ctx context.Context, snapshot []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	call := len(s.Snapshots)
	s.Snapshots = append(s.Snapshots, append([]byte(nil), snapshot...))
	if s.FailErr != nil && call == s.FailAt {
		return nil, s.FailErr
	}
	return s.image, nil
}

func (s *FakeSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Closed = true
	return nil
}

// FakeEncoder records encode and mux invocations without running FFmpeg.
type FakeEncoder struct {
	EncodeErr error
	MuxErr    error

	EncodeCalls []EncodeCall
	MuxCalls    []MuxCall
}

type EncodeCall struct {
	FrameDir   string
	OutputPath string
	Options    encoding.Options
	FrameFiles int
}

type MuxCall struct {
	VideoPath  string
	AudioPath  string
	OutputPath string
}

func (e *FakeEncoder) EncodeFrames(ctx context.Context, frameDir, outputPath string, opts encoding.Options) error {
	call := EncodeCall{FrameDir: frameDir, OutputPath: outputPath, Options: opts}
	if entries, err := os.ReadDir(frameDir); err == nil {
		call.FrameFiles = len(entries)
	}
	e.EncodeCalls = append(e.EncodeCalls, call)
	if e.EncodeErr != nil {
		return e.EncodeErr
	}
	return os.WriteFile(outputPath, []byte("video"), 0o644)
}

func (e *FakeEncoder) MuxAudio(ctx context.Context, videoPath, audioPath, outputPath string) error {
	e.MuxCalls = append(e.MuxCalls, MuxCall{VideoPath: videoPath, AudioPath: audioPath, OutputPath: outputPath})
	if e.MuxErr != nil {
		return e.MuxErr
	}
	if err := os.MkdirAll(filepath.Dir(outputPath), 0o755); err != nil {
		return err
	}
	return os.WriteFile(outputPath, []byte("muxed"), 0o644)
}

// FakeProber reports a fixed container duration and records every probed path.
type FakeProber struct {
	MediaDuration float64
	ProbeErr      error

	Paths []string
}

func (p *FakeProber) Duration(ctx context.Context, path string) (float64, error) {
	p.Paths = append(p.Paths, path)
	if p.ProbeErr != nil {
		return 0, p.ProbeErr
	}
	return p.MediaDuration, nil
}

// FakeEngine synthesizes fixed-duration silence instead of speech.
type FakeEngine struct {
	ClipDuration float64
	SampleRate   int
	Channels     int

	// FailAt makes synthesis of the given zero-based call index fail.
	FailAt  int
	FailErr error

	Texts []string
}

func (e *FakeEngine) Synthesize(ctx context.Context, text string) (audio.Clip, error) {
	call := len(e.Texts)
	e.Texts = append(e.Texts, text)
	if e.FailErr != nil && call == e.FailAt {
		return audio.Clip{}, e.FailErr
	}
	duration := e.ClipDuration
	if duration == 0 {
		duration = 1.0
	}
	rate := e.SampleRate
	if rate == 0 {
		rate = 44100
	}
	channels := e.Channels
	if channels == 0 {
		channels = 1
	}
	return audio.Silence(duration, rate, channels), nil
}
