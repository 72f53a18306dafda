// Package animation provides the composable technique and easing primitives
// that turn normalized progress into visual transforms.
package animation

import (
	"fmt"
	"sort"
)

// Output is the transform a technique produces for one progress value. A
// fresh value is returned from every Apply call; outputs are never mutated
// in place.
type Output struct {
	Opacity    float64
	TranslateX float64
	TranslateY float64
	Scale      float64
	Rotation   float64
}

// Identity returns the neutral transform: fully opaque, unmoved, unscaled.
func Identity() Output {
	return Output{Opacity: 1, Scale: 1}
}

// Technique maps progress in [0,1] to a visual transform over a fixed
// duration. Implementations are stateless values.
type Technique interface {
	Name() string
	Duration() float64
	Apply(progress float64) Output
}

// FadeIn raises opacity linearly with progress.
type FadeIn struct {
	Dur float64
}

func (f FadeIn) Name() string      { return "fade_in" }
func (f FadeIn) Duration() float64 { return f.Dur }

func (f FadeIn) Apply(progress float64) Output {
	out := Identity()
	out.Opacity = progress
	return out
}

// FadeUp fades in while rising from Distance below the resting position.
type FadeUp struct {
	Dur      float64
	Distance float64
}

func (f FadeUp) Name() string      { return "fade_up" }
func (f FadeUp) Duration() float64 { return f.Dur }

func (f FadeUp) Apply(progress float64) Output {
	out := Identity()
	out.Opacity = progress
	out.TranslateY = f.Distance * (1 - progress)
	return out
}

// Slide moves from the given offset toward the resting position.
type Slide struct {
	Dur     float64
	OffsetX float64
	OffsetY float64
}

func (s Slide) Name() string      { return "slide" }
func (s Slide) Duration() float64 { return s.Dur }

func (s Slide) Apply(progress float64) Output {
	out := Identity()
	out.TranslateX = s.OffsetX * (1 - progress)
	out.TranslateY = s.OffsetY * (1 - progress)
	return out
}

// Scale interpolates uniform scale between From and To.
type Scale struct {
	Dur  float64
	From float64
	To   float64
}

func (s Scale) Name() string      { return "scale" }
func (s Scale) Duration() float64 { return s.Dur }

func (s Scale) Apply(progress float64) Output {
	out := Identity()
	out.Scale = lerp(s.From, s.To, progress)
	return out
}

// CountUp reveals a numeric value over time. The revealed fraction rides the
// opacity channel rather than a dedicated field; the renderer multiplies it
// against the target value. Narrow reuse of the shared output shape, kept
// from the original behavior.
type CountUp struct {
	Dur float64
}

func (c CountUp) Name() string      { return "count_up" }
func (c CountUp) Duration() float64 { return c.Dur }

func (c CountUp) Apply(progress float64) Output {
	out := Identity()
	out.Opacity = progress
	return out
}

// Stagger wraps a technique so a list of items plays it with a per-item
// delay expressed in progress units.
type Stagger struct {
	Inner Technique
	Items int
	Delay float64
}

func (s Stagger) Name() string      { return "stagger_" + s.Inner.Name() }
func (s Stagger) Duration() float64 { return s.Inner.Duration() }

// Apply delegates to the inner technique for the reference item.
func (s Stagger) Apply(progress float64) Output {
	return s.Inner.Apply(progress)
}

// ApplyItem shifts progress back by index*Delay, clamps it to [0,1], and
// delegates. Item 0 is always identical to Apply.
func (s Stagger) ApplyItem(index int, progress float64) Output {
	shifted := clamp01(progress - float64(index)*s.Delay)
	return s.Inner.Apply(shifted)
}

// Eased wraps a technique so progress passes through a named curve first.
type Eased struct {
	Inner Technique
	Curve string
	fn    EasingFunc
}

// WithEasing wraps technique with the named easing curve.
func WithEasing(inner Technique, curve string) (Eased, error) {
	fn, err := Easing(curve)
	if err != nil {
		return Eased{}, err
	}
	return Eased{Inner: inner, Curve: curve, fn: fn}, nil
}

func (e Eased) Name() string      { return e.Inner.Name() + "_" + e.Curve }
func (e Eased) Duration() float64 { return e.Inner.Duration() }

func (e Eased) Apply(progress float64) Output {
	return e.Inner.Apply(e.fn(clamp01(progress)))
}

// Lookup builds the named technique with the given duration and its default
// parameters. The name set is what scene scripts may reference.
func Lookup(name string, duration float64) (Technique, error) {
	switch name {
	case "fade_in":
		return FadeIn{Dur: duration}, nil
	case "fade_up":
		return FadeUp{Dur: duration, Distance: 40}, nil
	case "slide_left":
		return Slide{Dur: duration, OffsetX: 80}, nil
	case "slide_right":
		return Slide{Dur: duration, OffsetX: -80}, nil
	case "scale_in":
		return Scale{Dur: duration, From: 0.8, To: 1}, nil
	case "count_up":
		return CountUp{Dur: duration}, nil
	default:
		return nil, fmt.Errorf("unknown technique %q", name)
	}
}

// TechniqueNames lists the names Lookup accepts, sorted.
func TechniqueNames() []string {
	names := []string{"count_up", "fade_in", "fade_up", "scale_in", "slide_left", "slide_right"}
	sort.Strings(names)
	return names
}

func lerp(from, to, t float64) float64 {
	return from + (to-from)*t
}
