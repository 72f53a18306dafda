package frame

import (
	"scenecast/internal/animation"
	"scenecast/internal/scene"
	"scenecast/internal/theme"
	"scenecast/internal/timeline"
)

// narrationEpsilon widens the active-narration probe just past the
// timestamp so a narration starting exactly on a frame boundary is picked
// up without flickering at segment edges.
const narrationEpsilon = 1e-3

// Layout holds the vertical anchor constants. These are empirically chosen
// defaults, not a derived distribution rule.
type Layout struct {
	SingleAnchor float64
	HeaderAnchor float64
	BodyAnchor   float64
	BandTop      float64
	BandBottom   float64
}

// DefaultLayout returns the stock anchor constants.
func DefaultLayout() Layout {
	return Layout{
		SingleAnchor: 0.5,
		HeaderAnchor: 0.3,
		BodyAnchor:   0.65,
		BandTop:      0.25,
		BandBottom:   0.75,
	}
}

// Compute builds the snapshot for one timestamp. It is a pure function of
// its inputs: no iteration state survives between calls, and the returned
// state owns all of its data.
func Compute(records []scene.ElementRecord, tl *timeline.Timeline, provider theme.Provider, at float64) State {
	return ComputeWithLayout(records, tl, provider, at, DefaultLayout())
}

// ComputeWithLayout is Compute with explicit layout constants.
func ComputeWithLayout(records []scene.ElementRecord, tl *timeline.Timeline, provider theme.Provider, at float64, layout Layout) State {
	total := tl.TotalDuration()
	clamped := at
	if clamped < 0 {
		clamped = 0
	}
	if clamped > total {
		clamped = total
	}

	state := State{
		Time:          clamped,
		Frame:         tl.FrameAt(clamped, tl.FPS()),
		TotalDuration: total,
		FPS:           tl.FPS(),
		Elements:      make([]ElementState, 0, len(records)),
		Theme:         flattenTheme(provider),
	}

	for _, record := range records {
		state.Elements = append(state.Elements, elementStateAt(record, clamped))
	}
	assignAnchors(state.Elements, records, layout)

	if text, ok := activeNarration(tl, clamped); ok {
		state.ActiveNarration = &text
	}

	return state
}

func elementStateAt(record scene.ElementRecord, at float64) ElementState {
	es := ElementState{
		ID:        record.ID,
		Kind:      string(record.Kind),
		Text:      record.Text,
		Direction: string(record.Direction),
		Items:     append([]string(nil), record.Items...),
	}

	out := animation.Identity()
	es.Visible = record.CreatedAt <= at
	if es.Visible {
		out = entranceTransform(record, at)
	}
	es.Opacity = out.Opacity
	es.TranslateX = out.TranslateX
	es.TranslateY = out.TranslateY
	es.Scale = out.Scale
	es.Rotation = out.Rotation
	return es
}

// entranceTransform plays the element's entrance technique over its window
// after creation; outside the window the element rests at identity.
func entranceTransform(record scene.ElementRecord, at float64) animation.Output {
	if record.Enter == "" || record.EnterDuration <= 0 {
		return animation.Identity()
	}
	elapsed := at - record.CreatedAt
	if elapsed >= record.EnterDuration {
		return animation.Identity()
	}
	tech, err := animation.Lookup(record.Enter, record.EnterDuration)
	if err != nil {
		return animation.Identity()
	}
	eased, err := animation.WithEasing(tech, "ease_out")
	if err != nil {
		return tech.Apply(elapsed / record.EnterDuration)
	}
	return eased.Apply(elapsed / record.EnterDuration)
}

func activeNarration(tl *timeline.Timeline, at float64) (string, bool) {
	for _, placed := range tl.SegmentsInRange(at, at+narrationEpsilon) {
		if placed.Segment.Kind == timeline.SegmentNarration {
			return placed.Segment.Text, true
		}
	}
	return "", false
}

// assignAnchors computes vertical anchors from the visible set only. One
// visible element centers; a header/body pair uses the fixed header and body
// anchors; three or more spread evenly across the band.
func assignAnchors(states []ElementState, records []scene.ElementRecord, layout Layout) {
	visible := make([]int, 0, len(states))
	for i, es := range states {
		if es.Visible {
			visible = append(visible, i)
		}
	}

	switch len(visible) {
	case 0:
	case 1:
		states[visible[0]].AnchorY = layout.SingleAnchor
	case 2:
		first, second := visible[0], visible[1]
		// Headers take the upper anchor regardless of creation order.
		if !records[first].IsHeader() && records[second].IsHeader() {
			first, second = second, first
		}
		states[first].AnchorY = layout.HeaderAnchor
		states[second].AnchorY = layout.BodyAnchor
	default:
		span := layout.BandBottom - layout.BandTop
		for slot, idx := range visible {
			states[idx].AnchorY = layout.BandTop + span*float64(slot)/float64(len(visible)-1)
		}
	}
}

func flattenTheme(provider theme.Provider) map[string]string {
	flat := map[string]string{}
	if provider == nil {
		return flat
	}
	for _, prop := range provider.ToStyleProperties() {
		flat[prop.Key] = prop.Value
	}
	return flat
}
