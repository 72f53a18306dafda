// Package frame computes the complete visual and audio snapshot for one
// timestamp. The snapshot is the wire format the external renderer consumes;
// field names and shapes are part of that contract.
package frame

// ElementState is the visual state of one element at one timestamp.
type ElementState struct {
	ID         int      `json:"id"`
	Kind       string   `json:"kind"`
	Visible    bool     `json:"visible"`
	Text       string   `json:"text"`
	Items      []string `json:"items,omitempty"`
	Direction  string   `json:"direction,omitempty"`
	Opacity    float64  `json:"opacity"`
	TranslateX float64  `json:"translateX"`
	TranslateY float64  `json:"translateY"`
	Scale      float64  `json:"scale"`
	Rotation   float64  `json:"rotation"`
	AnchorY    float64  `json:"anchorY"`
}

// State is the full snapshot for one timestamp. ActiveNarration marshals to
// an explicit null when no narration is active; the renderer relies on the
// field always being present.
type State struct {
	Time            float64           `json:"time"`
	Frame           int               `json:"frame"`
	TotalDuration   float64           `json:"totalDuration"`
	FPS             int               `json:"fps"`
	Elements        []ElementState    `json:"elements"`
	ActiveNarration *string           `json:"activeNarration"`
	Theme           map[string]string `json:"theme"`
}
