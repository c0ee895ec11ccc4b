// Package pipeline is the invocation surface of the analysis core: one
// single-owner pass per video through sampling, feature extraction,
// segmentation, classification, and fusion. Concurrent runs on
// different videos share no mutable state.
package pipeline

import (
	"context"
	"fmt"
	"sort"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/frame"
	"github.com/Yousef-M1/Clipper/internal/moments"
	"github.com/Yousef-M1/Clipper/internal/vision"
	"github.com/rs/zerolog"
)

// Deps are the external collaborators. Source is required; the moment
// providers and face detector are optional and degrade gracefully when
// absent.
type Deps struct {
	Source      frame.Source
	Transcripts TranscriptProvider
	AudioPeaks  AudioPeakProvider
	Faces       vision.FaceDetector
}

// Pipeline wires the analysis stages together for one configuration.
type Pipeline struct {
	logger zerolog.Logger
	cfg    *config.Config
	deps   Deps

	sampler    *frame.Sampler
	extractor  *vision.Extractor
	segmenter  *vision.Segmenter
	classifier *vision.Classifier
	fusion     *moments.Engine
}

// New creates a pipeline. The frame source is the only hard dependency.
func New(logger zerolog.Logger, cfg *config.Config, deps Deps) (*Pipeline, error) {
	if deps.Source == nil {
		return nil, fmt.Errorf("frame source is required")
	}
	if cfg == nil {
		cfg = config.Default()
	}

	return &Pipeline{
		logger:     logger.With().Str("component", "pipeline").Logger(),
		cfg:        cfg,
		deps:       deps,
		sampler:    frame.NewSampler(logger, cfg.Sampler),
		extractor:  vision.NewExtractor(logger, cfg.Features, deps.Faces, cfg.Concurrency),
		segmenter:  vision.NewSegmenter(logger, cfg.Scenes),
		classifier: vision.NewClassifier(logger, cfg.Shots, cfg.Scoring),
		fusion:     moments.NewEngine(logger, cfg.Fusion),
	}, nil
}

// Capabilities returns the static descriptor of supported shot types,
// sources, and the thresholds currently configured.
func (p *Pipeline) Capabilities() Capabilities {
	return CapabilitiesFor(p.cfg)
}

// AnalyzeComposition runs the visual pipeline and aggregates the scene
// set into video-level statistics.
func (p *Pipeline) AnalyzeComposition(ctx context.Context, ref string) (*vision.VideoComposition, Status, error) {
	scenes, _, status, err := p.analyzeScenes(ctx, ref)
	if err != nil {
		return nil, status, err
	}
	comp := vision.AnalyzeComposition(scenes)
	return &comp, status, nil
}

// DetectScenes runs the visual pipeline and returns up to maxScenes
// scenes. When truncating, the highest-composition scenes are kept but
// returned in chronological order. maxScenes <= 0 means no limit.
func (p *Pipeline) DetectScenes(ctx context.Context, ref string, maxScenes int) ([]vision.Scene, Status, error) {
	scenes, _, status, err := p.analyzeScenes(ctx, ref)
	if err != nil {
		return nil, status, err
	}

	if maxScenes > 0 && len(scenes) > maxScenes {
		byScore := make([]vision.Scene, len(scenes))
		copy(byScore, scenes)
		sort.SliceStable(byScore, func(i, j int) bool {
			return byScore[i].CompositionScore > byScore[j].CompositionScore
		})
		byScore = byScore[:maxScenes]
		sort.SliceStable(byScore, func(i, j int) bool {
			return byScore[i].Start < byScore[j].Start
		})
		scenes = byScore
	}

	return scenes, status, nil
}

// DetectEnhancedMoments fuses transcript, visual, and audio candidates
// into a ranked clip list. Transcript or audio provider failures
// degrade to the remaining sources; only frame-source unavailability is
// fatal, and only when scene detection is enabled.
func (p *Pipeline) DetectEnhancedMoments(ctx context.Context, ref string, opts MomentOptions) (*MomentResult, error) {
	status := Status{Code: StatusOK}
	var raw []moments.RawMoment
	var scenes []vision.Scene
	var totalDuration float64

	if opts.EnableSceneDetection {
		var sceneStatus Status
		var err error
		scenes, totalDuration, sceneStatus, err = p.analyzeScenes(ctx, ref)
		if err != nil {
			return nil, err
		}
		if sceneStatus.Code != StatusOK {
			status = sceneStatus
		}
		raw = append(raw, moments.FromScenes(scenes, p.cfg.Fusion.MinSceneScore)...)
	}

	if totalDuration == 0 {
		totalDuration = p.probeDuration(ctx, ref)
	}

	if p.deps.Transcripts != nil {
		transcriptMoments, err := p.deps.Transcripts.Moments(ctx, ref)
		if err != nil {
			p.logger.Warn().Err(err).Msg("transcript provider failed, degrading to remaining sources")
			status.Warnings = append(status.Warnings, "transcript moments unavailable: "+err.Error())
		} else {
			raw = append(raw, transcriptMoments...)
		}
	}

	if p.deps.AudioPeaks != nil {
		peaks, err := p.deps.AudioPeaks.Peaks(ctx, ref)
		if err != nil {
			p.logger.Warn().Err(err).Msg("audio peak provider failed, degrading to remaining sources")
			status.Warnings = append(status.Warnings, "audio peaks unavailable: "+err.Error())
		} else {
			raw = append(raw, moments.FromAudioPeaks(peaks, p.cfg.Fusion.AudioPeakWindow)...)
		}
	}

	ranked, fusionStatus := p.fusion.Fuse(raw, moments.Options{
		ClipDuration:  opts.ClipDuration,
		MaxClips:      opts.MaxClips,
		TotalDuration: totalDuration,
	})
	if fusionStatus == moments.StatusNoCandidates {
		status.Code = StatusNoCandidates
	}

	result := &MomentResult{
		Moments: ranked,
		Status:  status,
	}
	// Scene-derived context only makes sense when the visual pass ran;
	// without it an empty scene set means "not analyzed", not "nothing
	// detected".
	if opts.EnableSceneDetection {
		comp := vision.AnalyzeComposition(scenes)
		result.QualityScore = comp.QualityScore
		result.Recommendations = vision.Recommendations(comp)
	}
	return result, nil
}

// analyzeScenes is the shared visual path: sample, extract, segment,
// classify. Returns the classified scenes, the sampled duration, and
// the run status. Degenerate input (fewer than two samples) yields an
// empty scene set with StatusDegenerate, not an error.
func (p *Pipeline) analyzeScenes(ctx context.Context, ref string) ([]vision.Scene, float64, Status, error) {
	status := Status{Code: StatusOK}

	sampled, err := p.sampler.Sample(ctx, p.deps.Source, ref)
	if err != nil {
		return nil, 0, status, err
	}
	if sampled.Partial {
		status.Code = StatusPartial
		if sampled.Cause != nil {
			status.Warnings = append(status.Warnings, "sampling truncated: "+sampled.Cause.Error())
		}
	}

	if len(sampled.Samples) < 2 {
		p.logger.Info().Int("samples", len(sampled.Samples)).Msg("degenerate input, skipping analysis")
		status.Code = StatusDegenerate
		return nil, 0, status, nil
	}

	features := p.extractor.ExtractAll(ctx, sampled.Samples)
	spans := p.segmenter.Segment(features)
	scenes := p.classifier.BuildScenes(spans)

	if len(scenes) == 0 {
		status.Code = StatusDegenerate
		return nil, 0, status, nil
	}

	totalDuration := p.probeDuration(ctx, ref)
	if totalDuration == 0 {
		totalDuration = scenes[len(scenes)-1].End
	}

	p.logger.Info().
		Int("samples", len(sampled.Samples)).
		Int("scenes", len(scenes)).
		Float64("duration", totalDuration).
		Msg("visual analysis complete")

	return scenes, totalDuration, status, nil
}

// probeDuration asks the frame source for the media duration when it
// knows it; 0 means unknown and disables window clamping.
func (p *Pipeline) probeDuration(ctx context.Context, ref string) float64 {
	prober, ok := p.deps.Source.(DurationProber)
	if !ok {
		return 0
	}
	d, err := prober.Duration(ctx, ref)
	if err != nil {
		p.logger.Debug().Err(err).Msg("duration probe failed")
		return 0
	}
	return d
}
