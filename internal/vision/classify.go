package vision

import (
	"image/color"
	"sort"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/rs/zerolog"
)

// ShotType is a coarse classification of camera framing.
type ShotType string

const (
	ShotTalkingHead ShotType = "talking_head"
	ShotCloseUp     ShotType = "close_up"
	ShotMedium      ShotType = "medium_shot"
	ShotWide        ShotType = "wide_shot"
	ShotAction      ShotType = "action_shot"
	ShotTransition  ShotType = "transition"
)

// AllShotTypes lists every label the classifier can emit.
func AllShotTypes() []ShotType {
	return []ShotType{
		ShotTalkingHead, ShotCloseUp, ShotMedium,
		ShotWide, ShotAction, ShotTransition,
	}
}

// MotionLevel buckets a scene's mean motion magnitude.
type MotionLevel string

const (
	MotionLow    MotionLevel = "low"
	MotionMedium MotionLevel = "medium"
	MotionHigh   MotionLevel = "high"
)

// Scene is a classified, scored span of video. Immutable once built.
type Scene struct {
	Start            float64
	End              float64
	ShotType         ShotType
	CompositionScore float64 // [0,1]
	FaceCount        int
	MotionLevel      MotionLevel
	HasText          bool
	DominantColors   []color.RGBA

	// Aggregates kept for fusion and analysis.
	EdgeDensity float64
	Brightness  float64
	Contrast    float64
	Frames      []FrameFeatures
}

// Duration returns the scene length in seconds.
func (s *Scene) Duration() float64 {
	return s.End - s.Start
}

// DisplayScore is the composition score on the 0-10 scale shown to users.
func (s *Scene) DisplayScore() float64 {
	return s.CompositionScore * 10
}

// Classifier assigns shot types and composition scores to spans.
type Classifier struct {
	logger  zerolog.Logger
	shots   config.ShotConfig
	scoring config.ScoringConfig
}

func NewClassifier(logger zerolog.Logger, shots config.ShotConfig, scoring config.ScoringConfig) *Classifier {
	return &Classifier{
		logger:  logger.With().Str("component", "classifier").Logger(),
		shots:   shots,
		scoring: scoring,
	}
}

// BuildScene aggregates a span's member frames, classifies the shot,
// and scores composition.
func (c *Classifier) BuildScene(span Span) Scene {
	agg := aggregate(span.Frames)

	scene := Scene{
		Start:          span.Start,
		End:            span.End,
		FaceCount:      agg.faceCount,
		MotionLevel:    c.motionLevel(agg.motion),
		HasText:        agg.hasText,
		DominantColors: agg.dominantColors,
		EdgeDensity:    agg.edgeDensity,
		Brightness:     agg.brightness,
		Contrast:       agg.contrast,
		Frames:         span.Frames,
	}
	scene.ShotType = c.classify(&scene)
	scene.CompositionScore = c.score(&scene)
	return scene
}

// BuildScenes classifies every span in order.
func (c *Classifier) BuildScenes(spans []Span) []Scene {
	scenes := make([]Scene, 0, len(spans))
	for _, span := range spans {
		scenes = append(scenes, c.BuildScene(span))
	}
	return scenes
}

// classify applies the decision rules in strict precedence order; the
// first match wins.
func (c *Classifier) classify(s *Scene) ShotType {
	switch {
	case s.MotionLevel == MotionHigh:
		return ShotAction
	case s.FaceCount == 1 && s.EdgeDensity < c.shots.CloseUpEdge:
		return ShotCloseUp
	case s.FaceCount == 1 && s.EdgeDensity < c.shots.TalkingHeadEdge:
		return ShotTalkingHead
	case s.FaceCount >= 1 && s.FaceCount <= 2 && s.EdgeDensity < c.shots.WideEdge:
		return ShotMedium
	case s.EdgeDensity >= c.shots.WideEdge:
		return ShotWide
	default:
		return ShotTransition
	}
}

// score starts from the base and applies the documented additive
// bonuses, clamping to [0,1].
func (c *Classifier) score(s *Scene) float64 {
	score := c.scoring.Base

	switch s.FaceCount {
	case 1:
		score += c.scoring.OneFace
	case 2:
		score += c.scoring.TwoFaces
	}

	switch s.ShotType {
	case ShotTalkingHead:
		score += c.scoring.TalkingHead
	case ShotAction:
		score += c.scoring.ActionShot
	}

	if s.Contrast > c.scoring.LightingCutoff {
		score += c.scoring.GoodLighting
	}
	if s.HasText {
		score += c.scoring.TextOverlay
	}
	if s.MotionLevel == MotionMedium {
		score += c.scoring.ModerateMotion
	}

	if score < 0 {
		return 0
	}
	if score > 1 {
		return 1
	}
	return score
}

func (c *Classifier) motionLevel(motion float64) MotionLevel {
	switch {
	case motion > c.shots.MotionHigh:
		return MotionHigh
	case motion < c.shots.MotionLow:
		return MotionLow
	default:
		return MotionMedium
	}
}

type sceneAggregate struct {
	edgeDensity    float64
	brightness     float64
	contrast       float64
	motion         float64
	faceCount      int
	hasText        bool
	dominantColors []color.RGBA
}

// aggregate reduces member frames to scene-level features: means for
// the continuous features, median for face count so a stray
// misdetection in one frame does not relabel the scene, any-frame OR
// for text, and the middle frame's dominant colors.
func aggregate(frames []FrameFeatures) sceneAggregate {
	var agg sceneAggregate
	if len(frames) == 0 {
		return agg
	}

	faceCounts := make([]int, 0, len(frames))
	for _, f := range frames {
		agg.edgeDensity += f.EdgeDensity
		agg.brightness += f.Brightness
		agg.contrast += f.Contrast
		agg.motion += f.Motion
		faceCounts = append(faceCounts, f.FaceCount)
		agg.hasText = agg.hasText || f.HasText
	}

	n := float64(len(frames))
	agg.edgeDensity /= n
	agg.brightness /= n
	agg.contrast /= n
	agg.motion /= n

	sort.Ints(faceCounts)
	agg.faceCount = faceCounts[len(faceCounts)/2]

	agg.dominantColors = frames[len(frames)/2].DominantColors
	return agg
}
