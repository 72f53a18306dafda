// Package audio builds the narration track: PCM clips, silence synthesis,
// WAV encoding, and the segment-order assembler.
package audio

import (
	"fmt"

	"scenecast/internal/services"
)

// Clip is a buffer of interleaved 16-bit PCM samples.
type Clip struct {
	Samples    []int16
	SampleRate int
	Channels   int
}

// Silence produces a clip of the given duration filled with zero samples.
func Silence(duration float64, sampleRate, channels int) Clip {
	if duration < 0 {
		duration = 0
	}
	count := int(duration*float64(sampleRate)+0.5) * channels
	return Clip{
		Samples:    make([]int16, count),
		SampleRate: sampleRate,
		Channels:   channels,
	}
}

// Duration returns the clip length in seconds.
func (c Clip) Duration() float64 {
	if c.SampleRate <= 0 || c.Channels <= 0 {
		return 0
	}
	return float64(len(c.Samples)) / float64(c.SampleRate*c.Channels)
}

// Empty reports whether the clip carries no samples.
func (c Clip) Empty() bool { return len(c.Samples) == 0 }

// Concat joins clips in order. Every clip must share one sample rate and
// channel count; a mismatch is a hard failure with no partial output, never
// a silent resample.
func Concat(clips ...Clip) (Clip, error) {
	if len(clips) == 0 {
		return Clip{}, fmt.Errorf("no clips to concatenate")
	}
	first := clips[0]
	total := 0
	for i, clip := range clips {
		if clip.SampleRate != first.SampleRate || clip.Channels != first.Channels {
			return Clip{}, services.Wrap(services.ErrDataMismatch, "audio", "concat",
				fmt.Sprintf("clip %d is %dHz/%dch but track is %dHz/%dch",
					i, clip.SampleRate, clip.Channels, first.SampleRate, first.Channels), nil)
		}
		total += len(clip.Samples)
	}
	out := Clip{
		Samples:    make([]int16, 0, total),
		SampleRate: first.SampleRate,
		Channels:   first.Channels,
	}
	for _, clip := range clips {
		out.Samples = append(out.Samples, clip.Samples...)
	}
	return out, nil
}
