// Package deps checks the external programs a build needs before any work
// starts. The build orchestrator consults it for its guard stage and the
// deps command renders the same results for operators.
package deps

import (
	"fmt"
	"os"
	"os/exec"
	"strings"

	"scenecast/internal/config"
)

// Requirement defines an external dependency scenecast relies on.
type Requirement struct {
	Name        string
	Command     string
	Description string
	Optional    bool
}

// Status reports the availability of a dependency.
type Status struct {
	Name        string
	Command     string
	Description string
	Optional    bool
	Available   bool
	Detail      string
}

// ForConfig builds the requirement list for a configuration. Optional
// collaborators (narration synthesizer, renderer) are only listed when
// configured or enabled.
func ForConfig(cfg *config.Config) []Requirement {
	reqs := []Requirement{
		{Name: "FFmpeg", Command: cfg.FFmpegBinary(), Description: "Encodes frames and muxes audio"},
		{Name: "FFprobe", Command: cfg.FFprobeBinary(), Description: "Inspects rendered output"},
		{Name: "Renderer", Command: cfg.Bridge.Command, Description: "Turns frame snapshots into images"},
	}
	if cfg.TTS.Enabled {
		reqs = append(reqs, Requirement{
			Name:        "Synthesizer",
			Command:     cfg.TTS.Command,
			Description: "Synthesizes narration audio",
			Optional:    true,
		})
	}
	return reqs
}

// CheckBinaries evaluates the provided requirements and reports availability.
func CheckBinaries(requirements []Requirement) []Status {
	results := make([]Status, 0, len(requirements))
	for _, req := range requirements {
		cmd := strings.TrimSpace(req.Command)
		status := Status{
			Name:        req.Name,
			Command:     cmd,
			Description: strings.TrimSpace(req.Description),
			Optional:    req.Optional,
		}
		if cmd == "" {
			status.Available = false
			status.Detail = "command not configured"
			results = append(results, status)
			continue
		}
		if !available(cmd) {
			status.Available = false
			status.Detail = fmt.Sprintf("binary %q not found", cmd)
			results = append(results, status)
			continue
		}
		status.Available = true
		results = append(results, status)
	}
	return results
}

// Missing filters statuses down to the required dependencies that are not
// available. An empty result means the build can proceed.
func Missing(statuses []Status) []Status {
	var missing []Status
	for _, status := range statuses {
		if !status.Available && !status.Optional {
			missing = append(missing, status)
		}
	}
	return missing
}

// available accepts either a bare binary name resolved via PATH or an
// explicit path from configuration.
func available(cmd string) bool {
	if strings.ContainsRune(cmd, os.PathSeparator) {
		info, err := os.Stat(cmd)
		return err == nil && !info.IsDir() && info.Mode().Perm()&0o111 != 0
	}
	_, err := exec.LookPath(cmd)
	return err == nil
}
