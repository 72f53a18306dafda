package scene

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Script is a YAML scene document the CLI turns into a Scene.
type Script struct {
	Name       string      `yaml:"name"`
	Theme      string      `yaml:"theme"`
	FPS        int         `yaml:"fps"`
	Directives []Directive `yaml:"scene"`
}

// Directive is one scripted action. Exactly one field should be set; the
// first populated field wins, in the order checked by apply.
type Directive struct {
	Narrate  string          `yaml:"narrate,omitempty"`
	Pause    float64         `yaml:"pause,omitempty"`
	Title    string          `yaml:"title,omitempty"`
	Subtitle string          `yaml:"subtitle,omitempty"`
	Body     string          `yaml:"body,omitempty"`
	Metric   *MetricLine     `yaml:"metric,omitempty"`
	Steps    []string        `yaml:"steps,omitempty"`
	Play     *PlayDirective  `yaml:"play,omitempty"`
	Clip     *ClipDirective  `yaml:"clip,omitempty"`
	Clear    bool            `yaml:"clear,omitempty"`
}

// MetricLine declares a metric element.
type MetricLine struct {
	Text      string `yaml:"text"`
	Direction string `yaml:"direction"`
}

// PlayDirective reserves animation time.
type PlayDirective struct {
	Name     string  `yaml:"name"`
	Duration float64 `yaml:"duration"`
}

// ClipDirective splices a media file.
type ClipDirective struct {
	Path     string  `yaml:"path"`
	Duration float64 `yaml:"duration"`
}

// LoadScript reads and parses a scene script file.
func LoadScript(path string) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene script: %w", err)
	}
	var script Script
	if err := yaml.Unmarshal(data, &script); err != nil {
		return nil, fmt.Errorf("parse scene script: %w", err)
	}
	if len(script.Directives) == 0 {
		return nil, fmt.Errorf("scene script %q declares no scene directives", path)
	}
	return &script, nil
}

// Build replays the script's directives into a fresh Scene. A script that
// omits fps inherits defaultFPS, then the stock 30.
func (s *Script) Build(defaultFPS int, opts ...Option) (*Scene, error) {
	fps := s.FPS
	if fps == 0 {
		fps = defaultFPS
	}
	if fps == 0 {
		fps = 30
	}
	sc, err := New(fps, opts...)
	if err != nil {
		return nil, err
	}
	for i, directive := range s.Directives {
		if err := directive.apply(sc); err != nil {
			return nil, fmt.Errorf("scene directive %d: %w", i+1, err)
		}
	}
	return sc, nil
}

func (d Directive) apply(sc *Scene) error {
	switch {
	case d.Narrate != "":
		return sc.Narrate(d.Narrate)
	case d.Pause > 0:
		return sc.Pause(d.Pause)
	case d.Title != "":
		sc.AddTitle(d.Title)
		return nil
	case d.Subtitle != "":
		sc.AddSubtitle(d.Subtitle)
		return nil
	case d.Body != "":
		sc.AddBody(d.Body)
		return nil
	case d.Metric != nil:
		if strings.TrimSpace(d.Metric.Text) == "" {
			return fmt.Errorf("metric directive requires text")
		}
		sc.AddMetric(d.Metric.Text, MetricDirection(d.Metric.Direction))
		return nil
	case len(d.Steps) > 0:
		sc.AddSteps(d.Steps)
		return nil
	case d.Play != nil:
		return sc.Play(d.Play.Name, d.Play.Duration)
	case d.Clip != nil:
		return sc.ShowClip(d.Clip.Path, d.Clip.Duration)
	case d.Clear:
		sc.Clear()
		return nil
	default:
		return fmt.Errorf("empty directive")
	}
}
