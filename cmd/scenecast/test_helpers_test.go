package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
)

type cliTestEnv struct {
	baseDir    string
	configPath string
	workDir    string
	outputDir  string
	historyDB  string
}

// setupCLITestEnv writes a config file pointing every path and binary at the
// test's temp directory, with stub scripts standing in for the external tools.
func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("CLI tests rely on POSIX shell stubs")
	}

	base := t.TempDir()
	homeDir := filepath.Join(base, "home")
	if err := os.MkdirAll(homeDir, 0o755); err != nil {
		t.Fatalf("mkdir home: %v", err)
	}
	t.Setenv("HOME", homeDir)

	env := &cliTestEnv{
		baseDir:    base,
		configPath: filepath.Join(base, "config.toml"),
		workDir:    filepath.Join(base, "work"),
		outputDir:  filepath.Join(base, "output"),
		historyDB:  filepath.Join(base, "history.db"),
	}

	ffmpeg := writeStubScript(t, base, "ffmpeg", "#!/bin/sh\nexit 0\n")
	ffprobe := writeStubScript(t, base, "ffprobe", "#!/bin/sh\necho '1.0'\n")
	renderer := writeStubScript(t, base, "renderer", `#!/bin/sh
while IFS= read -r line; do
  printf '{"image":"%s"}\n' "$(printf 'png' | base64)"
done
`)

	config := fmt.Sprintf(`[paths]
working_dir = %q
output_dir = %q
log_dir = %q

[video]
fps = 30

[tools]
ffmpeg = %q
ffprobe = %q

[bridge]
command = %q

[history]
enabled = true
path = %q
`, env.workDir, env.outputDir, filepath.Join(base, "logs"), ffmpeg, ffprobe, renderer, env.historyDB)

	if err := os.WriteFile(env.configPath, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return env
}

func writeStubScript(t *testing.T, dir, name, body string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(body), 0o755); err != nil {
		t.Fatalf("write stub %s: %v", name, err)
	}
	return path
}

// runCLI executes the root command with the given args, capturing output.
func runCLI(t *testing.T, configPath string, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCommand()
	var buf bytes.Buffer
	cmd.SetOut(&buf)
	cmd.SetErr(&buf)
	if configPath != "" {
		args = append([]string{"--config", configPath}, args...)
	}
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func requireContains(t *testing.T, output, want string) {
	t.Helper()
	if !strings.Contains(output, want) {
		t.Fatalf("expected output to contain %q, got:\n%s", want, output)
	}
}
