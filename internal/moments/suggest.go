package moments

import (
	"fmt"

	"github.com/Yousef-M1/Clipper/internal/vision"
)

// platformsFor maps clip duration to the platforms it suits. Short
// clips favor vertical short-form surfaces; longer ones favor
// landscape players.
func (e *Engine) platformsFor(duration float64) []string {
	if duration <= e.cfg.ShortFormCutoff {
		return []string{"tiktok", "instagram_reels", "youtube_shorts"}
	}
	return []string{"youtube", "facebook"}
}

// suggestionsFor produces rule-based editing hints keyed off duration
// and the visual metadata attached during fusion.
func (e *Engine) suggestionsFor(duration float64, meta Meta) []string {
	var out []string

	if duration <= e.cfg.ShortFormCutoff {
		out = append(out, "Use a vertical 9:16 crop for short-form platforms")
	} else {
		out = append(out, "Keep the original landscape framing")
	}

	switch meta.FaceCount {
	case 0:
		out = append(out, "No faces detected - consider adding a reaction overlay or b-roll")
	case 1:
		out = append(out, "Center the crop on the speaker's face")
	default:
		out = append(out, fmt.Sprintf("Frame all %d faces or alternate between them", meta.FaceCount))
	}

	switch meta.MotionLevel {
	case vision.MotionHigh:
		out = append(out, "High motion - avoid additional zoom or shake effects")
	case vision.MotionLow:
		out = append(out, "Static shot - add subtle zoom or captions to hold attention")
	}

	if meta.HasText {
		out = append(out, "On-screen text present - place captions so they do not overlap it")
	} else {
		out = append(out, "Add burned-in captions for sound-off viewing")
	}

	return out
}
