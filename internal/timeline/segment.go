package timeline

import "fmt"

// SegmentKind identifies the variant of a Segment. The set is closed; code
// switching over it should handle every constant.
type SegmentKind string

const (
	SegmentNarration SegmentKind = "narration"
	SegmentAnimation SegmentKind = "animation"
	SegmentSilence   SegmentKind = "silence"
	SegmentClip      SegmentKind = "clip"
)

// Segment is one time-denominated unit of the timeline. Exactly the fields
// belonging to its kind are populated; the rest stay zero.
type Segment struct {
	Kind     SegmentKind
	Duration float64

	// Text carries the spoken narration for SegmentNarration.
	Text string
	// Name identifies the animation technique for SegmentAnimation.
	Name string
	// Path points at the media file for SegmentClip.
	Path string
}

// Narration builds a narration segment with an estimated duration. The
// estimate is replaced once the synthesizer reports the real speech length.
func Narration(text string, duration float64) Segment {
	return Segment{Kind: SegmentNarration, Text: text, Duration: duration}
}

// Animation builds a segment reserving time for a named technique.
func Animation(name string, duration float64) Segment {
	return Segment{Kind: SegmentAnimation, Name: name, Duration: duration}
}

// Silence builds a segment of dead air.
func Silence(duration float64) Segment {
	return Segment{Kind: SegmentSilence, Duration: duration}
}

// Clip builds a segment playing a pre-recorded media file.
func Clip(path string, duration float64) Segment {
	return Segment{Kind: SegmentClip, Path: path, Duration: duration}
}

func (s Segment) String() string {
	switch s.Kind {
	case SegmentNarration:
		return fmt.Sprintf("narration(%.2fs, %q)", s.Duration, s.Text)
	case SegmentAnimation:
		return fmt.Sprintf("animation(%.2fs, %s)", s.Duration, s.Name)
	case SegmentSilence:
		return fmt.Sprintf("silence(%.2fs)", s.Duration)
	case SegmentClip:
		return fmt.Sprintf("clip(%.2fs, %s)", s.Duration, s.Path)
	default:
		return fmt.Sprintf("unknown(%.2fs)", s.Duration)
	}
}
