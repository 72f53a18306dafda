package audio

import (
	"fmt"

	"scenecast/internal/services"
	"scenecast/internal/timeline"
)

// Assemble builds one continuous track by walking the timeline in segment
// order. Narration segments emit the matching pre-synthesized clip, indexed
// by narration occurrence, when one is provided; everything else emits
// silence of the segment's duration. Any rate or channel mismatch between a
// narration clip and the track is a hard failure with no partial output.
func Assemble(tl *timeline.Timeline, sampleRate, channels int, narrationClips []Clip) (Clip, error) {
	if sampleRate <= 0 || channels <= 0 {
		return Clip{}, services.Wrap(services.ErrConfiguration, "audio", "assemble",
			fmt.Sprintf("invalid track format %dHz/%dch", sampleRate, channels), nil)
	}

	pieces := make([]Clip, 0, tl.Len()+1)
	// A zero-length head pins the track format so Concat validates every
	// narration clip against it.
	pieces = append(pieces, Clip{SampleRate: sampleRate, Channels: channels})

	narrationIndex := 0
	for _, segment := range tl.Segments() {
		if segment.Kind == timeline.SegmentNarration && narrationIndex < len(narrationClips) {
			clip := narrationClips[narrationIndex]
			narrationIndex++
			if clip.SampleRate != sampleRate || clip.Channels != channels {
				return Clip{}, services.Wrap(services.ErrDataMismatch, "audio", "assemble",
					fmt.Sprintf("narration clip %d is %dHz/%dch but the track is %dHz/%dch",
						narrationIndex, clip.SampleRate, clip.Channels, sampleRate, channels), nil)
			}
			pieces = append(pieces, clip)
			continue
		}
		pieces = append(pieces, Silence(segment.Duration, sampleRate, channels))
	}

	track, err := Concat(pieces...)
	if err != nil {
		return Clip{}, err
	}
	return track, nil
}
