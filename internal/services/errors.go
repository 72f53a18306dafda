package services

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinel markers classify every failure the pipeline can produce. Stage code
// wraps errors with exactly one marker so callers can map an error to an
// actionable message without string matching.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrResource      = errors.New("resource unavailable")
	ErrExternalTool  = errors.New("external tool error")
	ErrIO            = errors.New("io error")
	ErrDataMismatch  = errors.New("data mismatch")
	ErrSynthesis     = errors.New("synthesis error")
)

// Wrap builds an error message that includes stage context while tagging it
// with the provided marker for later classification. The marker should be one
// of the exported sentinel errors above.
func Wrap(marker error, stage, operation, message string, err error) error {
	detail := buildDetail(stage, operation, message)
	if marker == nil {
		marker = ErrExternalTool
	}
	if err != nil {
		return fmt.Errorf("%w: %s: %w", marker, detail, err)
	}
	return fmt.Errorf("%w: %s", marker, detail)
}

// Details carries the user-facing rendering of a pipeline failure.
type Details struct {
	Category string
	Message  string
	Hint     string
}

// Describe maps a wrapped error to its user-visible details. Unclassified
// errors fall back to the raw error text with no hint.
func Describe(err error) Details {
	if err == nil {
		return Details{}
	}
	d := Details{Message: err.Error()}
	switch {
	case errors.Is(err, ErrConfiguration):
		d.Category = "configuration"
		d.Hint = "check the scene script and config file (scenecast config show)"
	case errors.Is(err, ErrResource):
		d.Category = "resource"
		d.Hint = "run 'scenecast deps' to verify external tools are installed"
	case errors.Is(err, ErrExternalTool):
		d.Category = "external tool"
		d.Hint = "inspect the captured tool output above for the underlying cause"
	case errors.Is(err, ErrIO):
		d.Category = "io"
		d.Hint = "verify the working directory is writable and has free space"
	case errors.Is(err, ErrDataMismatch):
		d.Category = "data mismatch"
		d.Hint = "narration clips must share one sample rate and channel count"
	case errors.Is(err, ErrSynthesis):
		d.Category = "synthesis"
		d.Hint = "check the TTS command configuration and the failing narration text"
	default:
		d.Category = "failure"
	}
	return d
}

func buildDetail(stage, operation, message string) string {
	parts := make([]string, 0, 3)
	if stage = strings.TrimSpace(stage); stage != "" {
		parts = append(parts, stage)
	}
	if operation = strings.TrimSpace(operation); operation != "" {
		parts = append(parts, operation)
	}
	if message = strings.TrimSpace(message); message != "" {
		parts = append(parts, message)
	}
	if len(parts) == 0 {
		return "pipeline failure"
	}
	return strings.Join(parts, ": ")
}
