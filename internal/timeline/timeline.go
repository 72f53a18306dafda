// Package timeline holds the ordered segment sequence a scene records and
// the time-to-frame arithmetic every downstream consumer shares. Segment
// start times are never cached; they are recomputed from order on each
// query so a narration duration swap cannot leave stale offsets behind.
package timeline

import (
	"fmt"
	"math"
)

// DefaultFPS is used when a timeline is built without an explicit rate.
const DefaultFPS = 30

// Timeline is an append-only sequence of segments with a fixed frame rate.
// Order is immutable once appended; segments never overlap.
type Timeline struct {
	fps      int
	segments []Segment
}

// New constructs an empty timeline at the given frame rate.
func New(fps int) (*Timeline, error) {
	if fps <= 0 {
		return nil, fmt.Errorf("timeline fps must be positive, got %d", fps)
	}
	return &Timeline{fps: fps}, nil
}

// NewDefault constructs an empty timeline at DefaultFPS.
func NewDefault() *Timeline {
	return &Timeline{fps: DefaultFPS}
}

// FPS returns the configured frame rate.
func (t *Timeline) FPS() int { return t.fps }

// Len returns the number of segments.
func (t *Timeline) Len() int { return len(t.segments) }

// Segments returns a copy of the segment sequence.
func (t *Timeline) Segments() []Segment {
	return append([]Segment(nil), t.segments...)
}

// Append adds a segment to the end of the timeline. Only the duration is
// validated; anything non-negative is accepted.
func (t *Timeline) Append(segment Segment) error {
	if segment.Duration < 0 || math.IsNaN(segment.Duration) {
		return fmt.Errorf("segment duration must be non-negative, got %v", segment.Duration)
	}
	t.segments = append(t.segments, segment)
	return nil
}

// TotalDuration returns the sum of all segment durations in seconds.
func (t *Timeline) TotalDuration() float64 {
	total := 0.0
	for _, segment := range t.segments {
		total += segment.Duration
	}
	return total
}

// TotalFrames returns the number of frames the timeline spans at its own
// frame rate: ceil(duration*fps), at least 1 for a non-empty timeline and 0
// for an empty one. Downstream stages rely on 0 meaning "nothing to do".
func (t *Timeline) TotalFrames() int {
	if len(t.segments) == 0 {
		return 0
	}
	frames := int(math.Ceil(t.TotalDuration() * float64(t.fps)))
	if frames < 1 {
		frames = 1
	}
	return frames
}

// FrameAt maps a timestamp to a frame index at the given frame rate:
// floor(time*fps) clamped to the valid range. Negative times map to frame 0
// and times at or past the end map to the last valid frame, so callers can
// never hand an out-of-range index to the renderer or encoder.
func (t *Timeline) FrameAt(time float64, fps int) int {
	if fps <= 0 {
		return 0
	}
	if time <= 0 || len(t.segments) == 0 {
		return 0
	}
	last := int(math.Ceil(t.TotalDuration()*float64(fps))) - 1
	if last < 0 {
		last = 0
	}
	frame := int(math.Floor(time * float64(fps)))
	if frame > last {
		return last
	}
	return frame
}

// PlacedSegment pairs a segment with its computed start time.
type PlacedSegment struct {
	Segment Segment
	Start   float64
}

// SegmentsInRange returns every segment whose half-open interval
// [start, start+duration) intersects [rangeStart, rangeEnd), in timeline
// order, with start times computed from the cumulative durations.
func (t *Timeline) SegmentsInRange(rangeStart, rangeEnd float64) []PlacedSegment {
	var matches []PlacedSegment
	cursor := 0.0
	for _, segment := range t.segments {
		segStart := cursor
		cursor += segment.Duration
		if segStart < rangeEnd && segStart+segment.Duration > rangeStart {
			matches = append(matches, PlacedSegment{Segment: segment, Start: segStart})
		}
	}
	return matches
}

// NarrationCount returns the number of narration segments.
func (t *Timeline) NarrationCount() int {
	count := 0
	for _, segment := range t.segments {
		if segment.Kind == SegmentNarration {
			count++
		}
	}
	return count
}

// ResolveNarrationDurations replaces the estimated duration of each narration
// segment, in narration order, with the authoritative one. Other segments are
// untouched. The total duration changes by exactly the sum of the deltas, so
// this must run before any frame-count-dependent work.
func (t *Timeline) ResolveNarrationDurations(durations []float64) error {
	if len(durations) != t.NarrationCount() {
		return fmt.Errorf("got %d narration durations for %d narration segments", len(durations), t.NarrationCount())
	}
	for _, duration := range durations {
		if duration < 0 || math.IsNaN(duration) {
			return fmt.Errorf("narration duration must be non-negative, got %v", duration)
		}
	}
	next := 0
	for i := range t.segments {
		if t.segments[i].Kind != SegmentNarration {
			continue
		}
		t.segments[i].Duration = durations[next]
		next++
	}
	return nil
}
