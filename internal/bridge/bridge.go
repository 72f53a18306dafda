// Package bridge talks to the external renderer process that turns frame
// snapshots into raster images.
//
// The renderer is a separate program speaking a line protocol on its standard
// streams: scenecast writes one JSON frame snapshot per line on stdin and the
// renderer answers with one JSON line per frame carrying the base64-encoded
// image (or an error). The bridge owns the subprocess lifecycle.
package bridge

import (
	"bufio"
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"

	"scenecast/internal/services"
)

// Session is a live renderer attached to its subprocess. CaptureFrame calls
// are serialized; the renderer answers requests in order.
type Session interface {
	// CaptureFrame submits one frame snapshot (serialized JSON) and returns
	// the rendered image bytes.
	CaptureFrame(ctx context.Context, snapshot []byte) ([]byte, error)
	// Close shuts the renderer down and reaps the subprocess. Safe to call
	// more than once.
	Close() error
}

// Bridge launches renderer sessions.
type Bridge interface {
	Launch(ctx context.Context) (Session, error)
}

// CommandBridge runs a configured renderer command and speaks the line
// protocol over its standard streams.
type CommandBridge struct {
	Command string
	Args    []string
	Theme   string
}

type response struct {
	Image string `json:"image"`
	Error string `json:"error"`
}

// maxResponseLine bounds a single renderer response. Full-HD PNG frames
// base64-encode well under this.
const maxResponseLine = 64 << 20

func (b CommandBridge) Launch(ctx context.Context) (Session, error) {
	if strings.TrimSpace(b.Command) == "" {
		return nil, services.Wrap(services.ErrConfiguration, "bridge", "launch", "renderer command is not configured", nil)
	}

	args := append([]string(nil), b.Args...)
	if b.Theme != "" {
		args = append(args, "--theme", b.Theme)
	}
	cmd := exec.CommandContext(ctx, b.Command, args...)

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "launch", "attach renderer stdin", err)
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "launch", "attach renderer stdout", err)
	}
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Start(); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "launch",
			fmt.Sprintf("start renderer %s", b.Command), err)
	}

	reader := bufio.NewScanner(stdout)
	reader.Buffer(make([]byte, 64*1024), maxResponseLine)

	return &commandSession{
		cmd:    cmd,
		stdin:  stdin,
		reader: reader,
		stderr: &stderr,
	}, nil
}

type commandSession struct {
	mu     sync.Mutex
	cmd    *exec.Cmd
	stdin  io.WriteCloser
	reader *bufio.Scanner
	stderr *bytes.Buffer
	closed bool
}

func (s *commandSession) CaptureFrame(ctx context.Context, snapshot []byte) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "capture", "renderer session is closed", nil)
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !json.Valid(snapshot) {
		return nil, services.Wrap(services.ErrDataMismatch, "bridge", "capture", "frame snapshot is not valid JSON", nil)
	}

	if _, err := s.stdin.Write(append(snapshot, '\n')); err != nil {
		return nil, s.failure("write frame snapshot", err)
	}
	if !s.reader.Scan() {
		err := s.reader.Err()
		if err == nil {
			err = io.ErrUnexpectedEOF
		}
		return nil, s.failure("read renderer response", err)
	}

	var resp response
	if err := json.Unmarshal(s.reader.Bytes(), &resp); err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "capture", "decode renderer response", err)
	}
	if resp.Error != "" {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "capture",
			fmt.Sprintf("renderer reported: %s", resp.Error), nil)
	}
	image, err := base64.StdEncoding.DecodeString(resp.Image)
	if err != nil {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "capture", "decode rendered image", err)
	}
	if len(image) == 0 {
		return nil, services.Wrap(services.ErrExternalTool, "bridge", "capture", "renderer returned an empty image", nil)
	}
	return image, nil
}

// failure wraps a transport error, folding in whatever the renderer wrote to
// stderr since launch.
func (s *commandSession) failure(operation string, err error) error {
	detail := operation
	if tail := tailLines(s.stderr.String(), 10); tail != "" {
		detail = fmt.Sprintf("%s (renderer stderr: %s)", operation, tail)
	}
	return services.Wrap(services.ErrExternalTool, "bridge", "capture", detail, err)
}

func (s *commandSession) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true

	// Closing stdin signals EOF; a well-behaved renderer exits on it.
	closeErr := s.stdin.Close()
	waitErr := s.cmd.Wait()
	if waitErr != nil {
		detail := "renderer exited abnormally"
		if tail := tailLines(s.stderr.String(), 10); tail != "" {
			detail = fmt.Sprintf("%s (stderr: %s)", detail, tail)
		}
		return services.Wrap(services.ErrExternalTool, "bridge", "close", detail, waitErr)
	}
	if closeErr != nil {
		return services.Wrap(services.ErrIO, "bridge", "close", "close renderer stdin", closeErr)
	}
	return nil
}

func tailLines(s string, n int) string {
	lines := strings.Split(strings.TrimSpace(s), "\n")
	if len(lines) > n {
		lines = lines[len(lines)-n:]
	}
	return strings.TrimSpace(strings.Join(lines, "\n"))
}
