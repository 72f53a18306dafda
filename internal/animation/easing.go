package animation

import (
	"fmt"
	"math"
	"sort"
)

// EasingFunc remaps normalized progress. Every curve maps 0 to exactly 0 and
// 1 to exactly 1; only the back and bounce/elastic families may leave [0,1]
// in between.
type EasingFunc func(t float64) float64

var easings = map[string]EasingFunc{
	"linear":      Linear,
	"ease_in":     EaseIn,
	"ease_out":    EaseOut,
	"ease_in_out": EaseInOut,
	"back_out":    BackOut,
	"bounce_out":  BounceOut,
	"elastic_out": ElasticOut,
}

// Easing returns the named curve.
func Easing(name string) (EasingFunc, error) {
	fn, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing curve %q", name)
	}
	return fn, nil
}

// EasingNames lists the registered curve names in sorted order.
func EasingNames() []string {
	names := make([]string, 0, len(easings))
	for name := range easings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Linear is the identity curve.
func Linear(t float64) float64 { return t }

// EaseIn accelerates from rest (cubic).
func EaseIn(t float64) float64 { return t * t * t }

// EaseOut decelerates to rest (cubic).
func EaseOut(t float64) float64 {
	inv := 1 - t
	return 1 - inv*inv*inv
}

// EaseInOut accelerates through the midpoint then decelerates (cubic).
func EaseInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	inv := -2*t + 2
	return 1 - inv*inv*inv/2
}

// BackOut overshoots the target slightly before settling. The endpoints are
// pinned because the polynomial does not cancel exactly at t=0.
func BackOut(t float64) float64 {
	const c1 = 1.70158
	const c3 = c1 + 1
	switch t {
	case 0:
		return 0
	case 1:
		return 1
	default:
		inv := t - 1
		return 1 + c3*inv*inv*inv + c1*inv*inv
	}
}

// BounceOut lands with a sequence of decaying bounces.
func BounceOut(t float64) float64 {
	const n1 = 7.5625
	const d1 = 2.75
	switch {
	case t < 1/d1:
		return n1 * t * t
	case t < 2/d1:
		t -= 1.5 / d1
		return n1*t*t + 0.75
	case t < 2.5/d1:
		t -= 2.25 / d1
		return n1*t*t + 0.9375
	default:
		t -= 2.625 / d1
		return n1*t*t + 0.984375
	}
}

// ElasticOut springs past the target and oscillates into place. The
// endpoints are pinned so the exactness contract holds despite the sine term.
func ElasticOut(t float64) float64 {
	const c4 = 2 * math.Pi / 3
	switch t {
	case 0:
		return 0
	case 1:
		return 1
	default:
		return math.Pow(2, -10*t)*math.Sin((t*10-0.75)*c4) + 1
	}
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}
