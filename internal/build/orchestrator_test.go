package build

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gofrs/flock"

	"scenecast/internal/history"
	"scenecast/internal/logging"
	"scenecast/internal/scene"
	"scenecast/internal/services"
	"scenecast/internal/testsupport"
)

func newScene(t *testing.T) *scene.Scene {
	t.Helper()
	scn, err := scene.New(30)
	if err != nil {
		t.Fatalf("new scene: %v", err)
	}
	return scn
}

func TestRunEmptyTimelineHasNoSideEffects(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, nil)

	_, err := orch.Run(context.Background(), Request{Scene: newScene(t), SceneName: "empty"})
	if !errors.Is(err, services.ErrConfiguration) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if renderer.Launches != 0 {
		t.Fatalf("renderer should not launch for an empty timeline")
	}
	if len(encoder.EncodeCalls) != 0 {
		t.Fatalf("encoder should not run for an empty timeline")
	}
	if _, statErr := os.Stat(cfg.Paths.WorkingDir); !os.IsNotExist(statErr) {
		t.Fatalf("working directory should not be created, stat: %v", statErr)
	}
}

func TestRunRendersEveryFrameInOrder(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, nil)

	scn := newScene(t)
	scn.AddTitle("Quarterly Results")
	if err := scn.Pause(1.0); err != nil {
		t.Fatalf("pause: %v", err)
	}

	var events []Progress
	result, err := orch.Run(context.Background(), Request{
		Scene:     scn,
		SceneName: "quarterly",
		Progress:  func(p Progress) { events = append(events, p) },
	})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if result.Frames != 30 {
		t.Fatalf("expected 30 frames, got %d", result.Frames)
	}
	if result.Duration != 1.0 {
		t.Fatalf("expected 1s duration, got %v", result.Duration)
	}
	wantOutput := filepath.Join(cfg.Paths.OutputDir, "quarterly.mp4")
	if result.OutputPath != wantOutput {
		t.Fatalf("expected output %s, got %s", wantOutput, result.OutputPath)
	}
	if _, err := os.Stat(wantOutput); err != nil {
		t.Fatalf("final output missing: %v", err)
	}

	session := renderer.Session
	if session == nil || !session.Closed {
		t.Fatalf("renderer session not closed")
	}
	if len(session.Snapshots) != 30 {
		t.Fatalf("expected 30 captures, got %d", len(session.Snapshots))
	}
	var first map[string]any
	if err := json.Unmarshal(session.Snapshots[0], &first); err != nil {
		t.Fatalf("snapshot not JSON: %v", err)
	}
	if first["frame"] != float64(0) {
		t.Fatalf("first snapshot should be frame 0, got %v", first["frame"])
	}

	if len(encoder.EncodeCalls) != 1 {
		t.Fatalf("expected one encode, got %d", len(encoder.EncodeCalls))
	}
	encode := encoder.EncodeCalls[0]
	if encode.FrameFiles != 30 {
		t.Fatalf("expected 30 frame files at encode time, got %d", encode.FrameFiles)
	}
	if encode.Options.FPS != 30 || encode.Options.Width != 1920 || encode.Options.Height != 1080 {
		t.Fatalf("unexpected encode options: %+v", encode.Options)
	}
	if len(encoder.MuxCalls) != 1 || encoder.MuxCalls[0].OutputPath != wantOutput {
		t.Fatalf("unexpected mux calls: %+v", encoder.MuxCalls)
	}

	// Working directory is removed unless frames are kept.
	entries, err := os.ReadDir(cfg.Paths.WorkingDir)
	if err != nil {
		t.Fatalf("read working dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "build-") {
			t.Fatalf("build directory not cleaned up: %s", entry.Name())
		}
	}

	if len(events) == 0 || events[len(events)-1].Stage != StageComplete {
		t.Fatalf("expected completion progress event, got %+v", events)
	}
	renderEvents := 0
	for _, event := range events {
		if event.Stage == StageRender {
			renderEvents++
		}
	}
	if renderEvents != 30 {
		t.Fatalf("expected 30 render progress events, got %d", renderEvents)
	}
}

func TestRunResolvesNarrationBeforeRendering(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	engine := &testsupport.FakeEngine{ClipDuration: 0.5}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, engine, nil)

	scn := newScene(t)
	// Two narrations estimated at 1s each; synthesis shortens both to 0.5s.
	if err := scn.Narrate("hello"); err != nil {
		t.Fatalf("narrate: %v", err)
	}
	if err := scn.Narrate("world"); err != nil {
		t.Fatalf("narrate: %v", err)
	}

	result, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "talk"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if result.Duration != 1.0 {
		t.Fatalf("expected resolved duration 1.0, got %v", result.Duration)
	}
	if result.Frames != 30 {
		t.Fatalf("expected 30 frames after resolution, got %d", result.Frames)
	}
	if len(engine.Texts) != 2 || engine.Texts[0] != "hello" || engine.Texts[1] != "world" {
		t.Fatalf("unexpected synthesized texts: %v", engine.Texts)
	}
	if len(renderer.Session.Snapshots) != 30 {
		t.Fatalf("render should use resolved frame count, got %d captures", len(renderer.Session.Snapshots))
	}
}

func TestRunSynthesisFailureIdentifiesSegment(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	engine := &testsupport.FakeEngine{FailAt: 1, FailErr: fmt.Errorf("voice crashed")}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, engine, nil)

	scn := newScene(t)
	for _, text := range []string{"first line", "second line", "third line"} {
		if err := scn.Narrate(text); err != nil {
			t.Fatalf("narrate: %v", err)
		}
	}

	_, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "talk"})
	if !errors.Is(err, services.ErrSynthesis) {
		t.Fatalf("expected synthesis error, got %v", err)
	}
	if !strings.Contains(err.Error(), "segment 2 of 3") {
		t.Fatalf("error should identify the failing segment: %v", err)
	}
	if !strings.Contains(err.Error(), "second line") {
		t.Fatalf("error should quote the failing text: %v", err)
	}
	if renderer.Launches != 0 {
		t.Fatalf("renderer should not launch after synthesis failure")
	}
	if _, statErr := os.Stat(cfg.Paths.WorkingDir); !os.IsNotExist(statErr) {
		t.Fatalf("synthesis failure should leave no directories behind")
	}
}

func TestRunCaptureFailureReleasesSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{SessionFailAt: 5, SessionFailErr: fmt.Errorf("tab crashed")}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, nil)

	scn := newScene(t)
	if err := scn.Pause(1.0); err != nil {
		t.Fatalf("pause: %v", err)
	}

	_, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "broken"})
	if err == nil || !strings.Contains(err.Error(), "tab crashed") {
		t.Fatalf("expected capture failure, got %v", err)
	}
	if !renderer.Session.Closed {
		t.Fatalf("session must be closed after capture failure")
	}
	if len(renderer.Session.Snapshots) != 6 {
		t.Fatalf("render loop should stop at the failing frame, got %d captures", len(renderer.Session.Snapshots))
	}
	if len(encoder.EncodeCalls) != 0 {
		t.Fatalf("encode must not run after capture failure")
	}
}

func TestRunKeepFramesRetainsWorkingDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithKeepFrames())
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, nil)

	scn := newScene(t)
	if err := scn.Pause(0.1); err != nil {
		t.Fatalf("pause: %v", err)
	}

	result, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "kept"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	frameDir := filepath.Join(cfg.Paths.WorkingDir, "build-"+result.BuildID, "frames")
	entries, err := os.ReadDir(frameDir)
	if err != nil {
		t.Fatalf("frames not kept: %v", err)
	}
	if len(entries) != result.Frames {
		t.Fatalf("expected %d kept frames, got %d", result.Frames, len(entries))
	}
	if entries[0].Name() != "frame_000000.png" {
		t.Fatalf("unexpected frame name: %s", entries[0].Name())
	}
}

func TestRunProbesMuxedOutput(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	prober := &testsupport.FakeProber{MediaDuration: 0.98}
	orch := New(cfg, logging.NewNop(), renderer, encoder, prober, nil, store)

	scn := newScene(t)
	if err := scn.Pause(1.0); err != nil {
		t.Fatalf("pause: %v", err)
	}
	result, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "probed"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	if len(prober.Paths) != 1 || prober.Paths[0] != result.OutputPath {
		t.Fatalf("prober should measure the muxed output, got %v", prober.Paths)
	}
	if result.MediaDuration != 0.98 {
		t.Fatalf("result media duration = %v, want 0.98", result.MediaDuration)
	}
	if result.Duration != 1.0 {
		t.Fatalf("timeline duration must stay 1.0, got %v", result.Duration)
	}
	records, err := store.Recent(context.Background(), 1)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 1 || records[0].Duration != 0.98 {
		t.Fatalf("history should carry the measured duration, got %+v", records)
	}
}

func TestRunProbeFailureDoesNotFailBuild(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	prober := &testsupport.FakeProber{ProbeErr: fmt.Errorf("ffprobe vanished")}
	orch := New(cfg, logging.NewNop(), renderer, encoder, prober, nil, nil)

	scn := newScene(t)
	if err := scn.Pause(0.5); err != nil {
		t.Fatalf("pause: %v", err)
	}
	result, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "unverified"})
	if err != nil {
		t.Fatalf("probe failure must not fail the build: %v", err)
	}
	if result.MediaDuration != 0 {
		t.Fatalf("media duration should be zero on probe failure, got %v", result.MediaDuration)
	}
}

func TestRunLockLoserLeavesNoBuildDirectory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	if err := os.MkdirAll(cfg.Paths.WorkingDir, 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	lock := flock.New(filepath.Join(cfg.Paths.WorkingDir, "scenecast.lock"))
	locked, err := lock.TryLock()
	if err != nil || !locked {
		t.Fatalf("take lock: locked=%v err=%v", locked, err)
	}
	defer lock.Unlock()

	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, nil)

	scn := newScene(t)
	if err := scn.Pause(0.5); err != nil {
		t.Fatalf("pause: %v", err)
	}
	_, err = orch.Run(context.Background(), Request{Scene: scn, SceneName: "blocked"})
	if !errors.Is(err, services.ErrResource) {
		t.Fatalf("expected resource error while lock is held, got %v", err)
	}
	entries, err := os.ReadDir(cfg.Paths.WorkingDir)
	if err != nil {
		t.Fatalf("read working dir: %v", err)
	}
	for _, entry := range entries {
		if strings.HasPrefix(entry.Name(), "build-") {
			t.Fatalf("losing build must not create %s", entry.Name())
		}
	}
	if renderer.Launches != 0 {
		t.Fatalf("renderer should not launch without the lock")
	}
}

func TestRunRecordsHistory(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, store)

	scn := newScene(t)
	if err := scn.Pause(0.5); err != nil {
		t.Fatalf("pause: %v", err)
	}
	result, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "tracked"})
	if err != nil {
		t.Fatalf("run: %v", err)
	}

	records, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("expected one history record, got %d", len(records))
	}
	if records[0].ID != result.BuildID || records[0].Status != history.StatusCompleted {
		t.Fatalf("unexpected record: %+v", records[0])
	}
	if records[0].Frames != result.Frames {
		t.Fatalf("record frames %d != result frames %d", records[0].Frames, result.Frames)
	}
}

func TestRunRecordsFailedBuilds(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store, err := history.Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	defer store.Close()

	renderer := &testsupport.FakeBridge{}
	encoder := &testsupport.FakeEncoder{EncodeErr: fmt.Errorf("encoder exploded")}
	orch := New(cfg, logging.NewNop(), renderer, encoder, nil, nil, store)

	scn := newScene(t)
	if err := scn.Pause(0.5); err != nil {
		t.Fatalf("pause: %v", err)
	}
	if _, err := orch.Run(context.Background(), Request{Scene: scn, SceneName: "doomed"}); err == nil {
		t.Fatalf("expected encode failure")
	}

	records, err := store.Recent(context.Background(), 5)
	if err != nil {
		t.Fatalf("recent: %v", err)
	}
	if len(records) != 1 || records[0].Status != history.StatusFailed {
		t.Fatalf("expected one failed record, got %+v", records)
	}
	if !strings.Contains(records[0].Error, "encoder exploded") {
		t.Fatalf("record should carry the failure: %q", records[0].Error)
	}
}

func TestSanitizeName(t *testing.T) {
	cases := map[string]string{
		"Quarterly Results": "Quarterly-Results",
		"a/b\\c":            "abc",
		"":                  "scene",
		"...":               "scene",
	}
	for input, want := range cases {
		if got := sanitizeName(input); got != want {
			t.Fatalf("sanitizeName(%q) = %q, want %q", input, got, want)
		}
	}
}
