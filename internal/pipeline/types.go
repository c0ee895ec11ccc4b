package pipeline

import (
	"context"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/moments"
	"github.com/Yousef-M1/Clipper/internal/vision"
)

// StatusCode classifies how an analysis run concluded.
type StatusCode string

const (
	StatusOK           StatusCode = "ok"
	StatusPartial      StatusCode = "partial"          // some frames unreadable or run canceled; results cover what was read
	StatusDegenerate   StatusCode = "degenerate_input" // too little material to form even one scene
	StatusNoCandidates StatusCode = "no_candidates"    // fusion produced zero moments; valid empty result
)

// Status travels alongside partial data so the host can decide whether
// to retry, fall back, or surface an error.
type Status struct {
	Code     StatusCode `json:"code"`
	Warnings []string   `json:"warnings,omitempty"`
}

// TranscriptProvider supplies transcript-derived candidate moments.
// It may return an empty list or fail independently of this core.
type TranscriptProvider interface {
	Moments(ctx context.Context, ref string) ([]moments.RawMoment, error)
}

// AudioPeakProvider supplies timestamps of audio energy peaks.
type AudioPeakProvider interface {
	Peaks(ctx context.Context, ref string) ([]moments.AudioPeak, error)
}

// DurationProber is optionally implemented by frame sources that know
// the media's full duration; fusion uses it to clamp clip windows.
type DurationProber interface {
	Duration(ctx context.Context, ref string) (float64, error)
}

// MomentOptions configures one enhanced moment detection run.
type MomentOptions struct {
	ClipDuration         float64
	MaxClips             int
	EnableSceneDetection bool
}

// MomentResult bundles the ranked moments with run-level context.
type MomentResult struct {
	Moments         []moments.RankedMoment `json:"moments"`
	QualityScore    float64                `json:"quality_score"`
	Recommendations []string               `json:"recommendations"`
	Status          Status                 `json:"status"`
}

// Capabilities is the static descriptor of what this analysis core
// supports, including the thresholds currently in effect.
type Capabilities struct {
	ShotTypes    []vision.ShotType    `json:"shot_types"`
	MotionLevels []vision.MotionLevel `json:"motion_levels"`
	Sources      []moments.Source     `json:"moment_sources"`

	SamplerStride    int     `json:"sampler_stride"`
	MaxSamples       int     `json:"max_samples"`
	SceneThreshold   float64 `json:"scene_change_threshold"`
	MinSceneDuration float64 `json:"min_scene_duration"`
	MinViableClip    float64 `json:"min_viable_clip_duration"`
	ShortFormCutoff  float64 `json:"short_form_cutoff"`
}

// CapabilitiesFor snapshots the active configuration.
func CapabilitiesFor(cfg *config.Config) Capabilities {
	return Capabilities{
		ShotTypes:        vision.AllShotTypes(),
		MotionLevels:     []vision.MotionLevel{vision.MotionLow, vision.MotionMedium, vision.MotionHigh},
		Sources:          moments.AllSources(),
		SamplerStride:    cfg.Sampler.Stride,
		MaxSamples:       cfg.Sampler.MaxSamples,
		SceneThreshold:   cfg.Scenes.ChangeThreshold,
		MinSceneDuration: cfg.Scenes.MinSceneDuration,
		MinViableClip:    cfg.Fusion.MinViableDuration,
		ShortFormCutoff:  cfg.Fusion.ShortFormCutoff,
	}
}
