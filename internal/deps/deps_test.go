package deps

import (
	"os"
	"path/filepath"
	"testing"

	"scenecast/internal/config"
)

func writeStub(t *testing.T, dir, name string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte("#!/bin/sh\nexit 0\n"), 0o755); err != nil {
		t.Fatalf("write stub: %v", err)
	}
	return path
}

func TestCheckBinaries(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "present")
	reqs := []Requirement{
		{Name: "Present", Command: present},
		{Name: "Missing", Command: "clearly-not-present-binary"},
		{Name: "Unset", Command: ""},
	}

	results := CheckBinaries(reqs)
	if len(results) != len(reqs) {
		t.Fatalf("expected %d results, got %d", len(reqs), len(results))
	}

	if !results[0].Available {
		t.Fatalf("expected first requirement to be available, got %#v", results[0])
	}
	if results[0].Detail != "" {
		t.Fatalf("unexpected detail for available dependency: %s", results[0].Detail)
	}

	if results[1].Available {
		t.Fatalf("expected missing binary to be unavailable")
	}
	if results[1].Detail == "" {
		t.Fatalf("expected detail message for missing binary")
	}

	if results[2].Available || results[2].Detail != "command not configured" {
		t.Fatalf("unexpected status for unset command: %#v", results[2])
	}
}

func TestCheckBinariesExplicitPath(t *testing.T) {
	binDir := t.TempDir()
	present := writeStub(t, binDir, "ffmpeg")
	t.Setenv("PATH", "")

	results := CheckBinaries([]Requirement{{Name: "FFmpeg", Command: present}})
	if !results[0].Available {
		t.Fatalf("explicit path should not depend on PATH, got %#v", results[0])
	}
}

func TestForConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Bridge.Command = "scenecast-render"

	reqs := ForConfig(&cfg)
	names := make([]string, 0, len(reqs))
	for _, req := range reqs {
		names = append(names, req.Name)
	}
	want := []string{"FFmpeg", "FFprobe", "Renderer"}
	if len(names) != len(want) {
		t.Fatalf("expected %v, got %v", want, names)
	}
	for i := range want {
		if names[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, names)
		}
	}

	cfg.TTS.Enabled = true
	cfg.TTS.Command = "espeak-ng"
	reqs = ForConfig(&cfg)
	if len(reqs) != 4 || reqs[3].Name != "Synthesizer" || !reqs[3].Optional {
		t.Fatalf("expected optional synthesizer requirement, got %#v", reqs)
	}
}

func TestMissing(t *testing.T) {
	statuses := []Status{
		{Name: "FFmpeg", Available: true},
		{Name: "Renderer", Available: false},
		{Name: "Synthesizer", Available: false, Optional: true},
	}
	missing := Missing(statuses)
	if len(missing) != 1 || missing[0].Name != "Renderer" {
		t.Fatalf("unexpected missing set: %#v", missing)
	}
}
