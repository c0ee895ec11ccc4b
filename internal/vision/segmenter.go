package vision

import (
	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/rs/zerolog"
)

// Span is a contiguous run of sampled frames between two detected
// visual discontinuities. Spans partition the sampled range with no
// gaps or overlaps; the classifier turns them into Scenes.
type Span struct {
	Start  float64
	End    float64
	Frames []FrameFeatures
}

// Segmenter finds scene boundaries by thresholding inter-frame
// dissimilarity.
type Segmenter struct {
	logger zerolog.Logger
	cfg    config.SceneConfig
}

func NewSegmenter(logger zerolog.Logger, cfg config.SceneConfig) *Segmenter {
	return &Segmenter{
		logger: logger.With().Str("component", "segmenter").Logger(),
		cfg:    cfg,
	}
}

// Dissimilarity scores how different two consecutive frames look. It is
// a weighted mix of inverted histogram correlation, edge density delta,
// and normalized brightness delta.
func (s *Segmenter) Dissimilarity(prev, cur *FrameFeatures) float64 {
	histTerm := 1 - HistogramCorrelation(prev.ColorHist, cur.ColorHist)
	edgeTerm := abs(cur.EdgeDensity - prev.EdgeDensity)
	brightTerm := abs(cur.Brightness-prev.Brightness) / 255.0

	return s.cfg.HistogramWeight*histTerm +
		s.cfg.EdgeWeight*edgeTerm +
		s.cfg.BrightnessWeight*brightTerm
}

// Segment walks the ordered feature sequence and emits non-overlapping
// spans. A boundary opens a new span when dissimilarity exceeds the
// threshold or the perceptual hashes disagree hard (a cut histograms
// smear over). A trailing span shorter than the minimum scene duration
// merges into its predecessor so single-frame noise never becomes a
// scene. Fewer than two samples yield no spans.
func (s *Segmenter) Segment(features []FrameFeatures) []Span {
	if len(features) < 2 {
		return nil
	}

	var spans []Span
	open := Span{Start: features[0].Timestamp, Frames: []FrameFeatures{features[0]}}

	for i := 1; i < len(features); i++ {
		prev := &features[i-1]
		cur := &features[i]

		d := s.Dissimilarity(prev, cur)
		hardCut := s.cfg.HashCutDistance > 0 &&
			HammingDistance(prev.Hash, cur.Hash) > s.cfg.HashCutDistance

		if d > s.cfg.ChangeThreshold || hardCut {
			open.End = cur.Timestamp
			spans = append(spans, open)
			open = Span{Start: cur.Timestamp}
			s.logger.Debug().
				Float64("at", cur.Timestamp).
				Float64("dissimilarity", d).
				Bool("hash_cut", hardCut).
				Msg("scene boundary")
		}
		open.Frames = append(open.Frames, *cur)
	}

	open.End = features[len(features)-1].Timestamp
	if open.End > open.Start {
		spans = append(spans, open)
	} else if len(spans) > 0 {
		// Single trailing sample: fold into the previous span.
		last := &spans[len(spans)-1]
		last.End = open.End
		last.Frames = append(last.Frames, open.Frames...)
	}

	spans = s.mergeTrailing(spans)

	s.logger.Debug().Int("scenes", len(spans)).Msg("segmentation complete")
	return spans
}

// mergeTrailing folds a final sub-minimum span into its predecessor.
func (s *Segmenter) mergeTrailing(spans []Span) []Span {
	n := len(spans)
	if n < 2 {
		return spans
	}
	last := spans[n-1]
	if last.End-last.Start >= s.cfg.MinSceneDuration {
		return spans
	}
	prev := &spans[n-2]
	prev.End = last.End
	prev.Frames = append(prev.Frames, last.Frames...)
	return spans[:n-1]
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
