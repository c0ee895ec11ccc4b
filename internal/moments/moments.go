// Package moments merges clip candidates from transcript analysis,
// visual scene detection, and audio peaks into one ranked list.
package moments

import (
	"github.com/Yousef-M1/Clipper/internal/vision"
)

// Source tags where a candidate moment came from. Priority is strict:
// transcript_ai > visual_scene > audio_peak.
type Source string

const (
	SourceTranscriptAI Source = "transcript_ai"
	SourceVisualScene  Source = "visual_scene"
	SourceAudioPeak    Source = "audio_peak"
)

// priority returns the merge rank; lower wins.
func (s Source) priority() int {
	switch s {
	case SourceTranscriptAI:
		return 0
	case SourceVisualScene:
		return 1
	case SourceAudioPeak:
		return 2
	default:
		return 3
	}
}

// AllSources lists every source tag in priority order.
func AllSources() []Source {
	return []Source{SourceTranscriptAI, SourceVisualScene, SourceAudioPeak}
}

// Meta carries source-specific annotations a winning moment absorbs
// from the candidates it merges with.
type Meta struct {
	Tags             []string
	Reason           string
	CompositionScore float64 // 0 means "not attached"
	FaceCount        int
	MotionLevel      vision.MotionLevel
	HasText          bool
}

// RawMoment is a source-tagged candidate interval.
type RawMoment struct {
	Start     float64
	End       float64
	Source    Source
	BaseScore float64 // [0,1]
	Meta      Meta
}

// RankedMoment is the final fusion output, ordered by descending
// virality then earlier start.
type RankedMoment struct {
	Start                float64  `json:"start"`
	End                  float64  `json:"end"`
	Duration             float64  `json:"duration"`
	Source               Source   `json:"source"`
	CompositionScore     float64  `json:"composition_score"`
	ViralityScore        float64  `json:"virality_score"`
	RecommendedPlatforms []string `json:"recommended_platforms"`
	EditingSuggestions   []string `json:"editing_suggestions"`
	Reason               string   `json:"reason,omitempty"`
	Tags                 []string `json:"tags,omitempty"`
}

// AudioPeak is a timestamped audio energy peak from the host's audio
// analysis collaborator.
type AudioPeak struct {
	Timestamp float64
	Intensity float64 // [0,1]
}

// Status reports how fusion concluded.
type Status string

const (
	StatusOK           Status = "ok"
	StatusNoCandidates Status = "no_candidates"
)

// FromScenes derives visual-scene candidates from scenes whose
// composition score clears the cutoff.
func FromScenes(scenes []vision.Scene, minScore float64) []RawMoment {
	var out []RawMoment
	for i := range scenes {
		s := &scenes[i]
		if s.CompositionScore < minScore {
			continue
		}
		out = append(out, RawMoment{
			Start:     s.Start,
			End:       s.End,
			Source:    SourceVisualScene,
			BaseScore: s.CompositionScore,
			Meta: Meta{
				Tags:             []string{string(s.ShotType)},
				Reason:           "high-composition scene",
				CompositionScore: s.CompositionScore,
				FaceCount:        s.FaceCount,
				MotionLevel:      s.MotionLevel,
				HasText:          s.HasText,
			},
		})
	}
	return out
}

// FromAudioPeaks centers a candidate window on each peak.
func FromAudioPeaks(peaks []AudioPeak, window float64) []RawMoment {
	if window <= 0 {
		window = 30
	}
	var out []RawMoment
	for _, p := range peaks {
		start := p.Timestamp - window/2
		if start < 0 {
			start = 0
		}
		intensity := p.Intensity
		if intensity < 0 {
			intensity = 0
		}
		if intensity > 1 {
			intensity = 1
		}
		out = append(out, RawMoment{
			Start:     start,
			End:       start + window,
			Source:    SourceAudioPeak,
			BaseScore: intensity,
			Meta:      Meta{Reason: "audio energy peak"},
		})
	}
	return out
}
