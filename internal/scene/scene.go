// Package scene is the scripting facade. Every call records either a
// segment on the timeline or an element on the metadata list; nothing is
// rendered until a build consumes the result.
package scene

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"

	"scenecast/internal/animation"
	"scenecast/internal/timeline"
)

const (
	// minNarrationEstimate keeps even one-word narrations on screen long
	// enough to register before TTS resolves the real duration.
	minNarrationEstimate = 1.0
	defaultWordsPerMinute = 150
)

// Scene accumulates script calls into a timeline and an element list.
type Scene struct {
	tl             *timeline.Timeline
	elements       []ElementRecord
	nextID         int
	wordsPerMinute int
}

// Option configures scene construction.
type Option func(*Scene)

// WithWordsPerMinute overrides the speech rate used for narration estimates.
func WithWordsPerMinute(wpm int) Option {
	return func(s *Scene) {
		if wpm > 0 {
			s.wordsPerMinute = wpm
		}
	}
}

// New constructs an empty scene at the given frame rate.
func New(fps int, opts ...Option) (*Scene, error) {
	tl, err := timeline.New(fps)
	if err != nil {
		return nil, err
	}
	s := &Scene{tl: tl, nextID: 1, wordsPerMinute: defaultWordsPerMinute}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Timeline exposes the recorded timeline.
func (s *Scene) Timeline() *timeline.Timeline { return s.tl }

// Elements returns a copy of the element records in creation order.
func (s *Scene) Elements() []ElementRecord {
	out := make([]ElementRecord, len(s.elements))
	copy(out, s.elements)
	for i := range out {
		out[i].Items = append([]string(nil), s.elements[i].Items...)
	}
	return out
}

// Narrate appends a narration segment with an estimated duration derived
// from the configured speech rate. The estimate is replaced once synthesis
// reports the real length.
func (s *Scene) Narrate(text string) error {
	text = NormalizeNarration(text)
	if text == "" {
		return fmt.Errorf("narration text is empty")
	}
	return s.tl.Append(timeline.Narration(text, s.estimateDuration(text)))
}

// Pause appends dead air.
func (s *Scene) Pause(seconds float64) error {
	return s.tl.Append(timeline.Silence(seconds))
}

// Play reserves time on the timeline for a named technique. The name is
// validated against the technique set so a typo fails at scripting time, not
// mid-render.
func (s *Scene) Play(name string, duration float64) error {
	if _, err := animation.Lookup(name, duration); err != nil {
		return err
	}
	return s.tl.Append(timeline.Animation(name, duration))
}

// ShowClip appends a pre-recorded media segment.
func (s *Scene) ShowClip(path string, duration float64) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("clip path is empty")
	}
	return s.tl.Append(timeline.Clip(path, duration))
}

// AddTitle mints a title element at the current timeline position.
func (s *Scene) AddTitle(text string) ElementRecord {
	return s.mint(ElementRecord{Kind: ElementTitle, Text: text})
}

// AddSubtitle mints a subtitle element.
func (s *Scene) AddSubtitle(text string) ElementRecord {
	return s.mint(ElementRecord{Kind: ElementSubtitle, Text: text})
}

// AddBody mints a body text element.
func (s *Scene) AddBody(text string) ElementRecord {
	return s.mint(ElementRecord{Kind: ElementBody, Text: text})
}

// AddMetric mints a metric element with its trend direction.
func (s *Scene) AddMetric(text string, direction MetricDirection) ElementRecord {
	switch direction {
	case MetricUp, MetricDown, MetricFlat:
	default:
		direction = MetricFlat
	}
	return s.mint(ElementRecord{Kind: ElementMetric, Text: text, Direction: direction})
}

// AddSteps mints a steps element carrying an ordered item list.
func (s *Scene) AddSteps(items []string) ElementRecord {
	return s.mint(ElementRecord{Kind: ElementSteps, Items: append([]string(nil), items...)})
}

// Clear discards all element records. The timeline keeps its segments; the
// layout is recomputed from the now-empty visible set, so nothing minted
// before the clear leaks into later frames. IDs stay monotonic across clears.
func (s *Scene) Clear() {
	s.elements = nil
}

func (s *Scene) mint(record ElementRecord) ElementRecord {
	record.ID = s.nextID
	s.nextID++
	record.CreatedAt = s.tl.TotalDuration()
	record.Enter, record.EnterDuration = defaultEnter(record.Kind)
	s.elements = append(s.elements, record)
	return record
}

func (s *Scene) estimateDuration(text string) float64 {
	words := len(strings.Fields(text))
	estimate := float64(words) / float64(s.wordsPerMinute) * 60
	if estimate < minNarrationEstimate {
		estimate = minNarrationEstimate
	}
	return estimate
}

// NormalizeNarration canonicalizes narration text before it reaches the
// synthesizer: NFC form, collapsed whitespace.
func NormalizeNarration(text string) string {
	text = norm.NFC.String(text)
	return strings.Join(strings.Fields(text), " ")
}
