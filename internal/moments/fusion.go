package moments

import (
	"sort"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/rs/zerolog"
)

// Options bounds one fusion run.
type Options struct {
	ClipDuration  float64 // requested output window length, seconds
	MaxClips      int
	TotalDuration float64 // media length; windows are clamped to it
}

// Engine deduplicates and ranks candidates from all three sources.
type Engine struct {
	logger zerolog.Logger
	cfg    config.FusionConfig
}

func NewEngine(logger zerolog.Logger, cfg config.FusionConfig) *Engine {
	return &Engine{
		logger: logger.With().Str("component", "fusion").Logger(),
		cfg:    cfg,
	}
}

// Fuse normalizes, deduplicates, scores, ranks, and truncates the
// candidate set. An empty candidate set is a valid result signalled by
// StatusNoCandidates, never an error.
func (e *Engine) Fuse(raw []RawMoment, opts Options) ([]RankedMoment, Status) {
	if opts.ClipDuration <= 0 {
		opts.ClipDuration = 30
	}
	if opts.MaxClips <= 0 {
		opts.MaxClips = 10
	}

	candidates := e.normalize(raw, opts)
	if len(candidates) == 0 {
		e.logger.Info().Msg("no viable candidates after normalization")
		return nil, StatusNoCandidates
	}

	merged := e.dedupe(candidates)

	ranked := make([]RankedMoment, 0, len(merged))
	for _, m := range merged {
		ranked = append(ranked, e.rank(m, opts))
	}

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].ViralityScore != ranked[j].ViralityScore {
			return ranked[i].ViralityScore > ranked[j].ViralityScore
		}
		if ranked[i].Start != ranked[j].Start {
			return ranked[i].Start < ranked[j].Start
		}
		return ranked[i].CompositionScore > ranked[j].CompositionScore
	})

	if len(ranked) > opts.MaxClips {
		ranked = ranked[:opts.MaxClips]
	}

	e.logger.Info().
		Int("candidates", len(candidates)).
		Int("merged", len(merged)).
		Int("ranked", len(ranked)).
		Msg("fusion complete")

	return ranked, StatusOK
}

// normalize expands or trims each window to the requested clip duration
// around its center, clamps to the media bounds, and drops windows that
// clamping made shorter than the minimum viable duration.
func (e *Engine) normalize(raw []RawMoment, opts Options) []RawMoment {
	out := make([]RawMoment, 0, len(raw))
	for _, m := range raw {
		if m.End <= m.Start {
			continue
		}

		center := (m.Start + m.End) / 2
		start := center - opts.ClipDuration/2
		end := center + opts.ClipDuration/2

		if start < 0 {
			start = 0
			end = opts.ClipDuration
		}
		if opts.TotalDuration > 0 && end > opts.TotalDuration {
			end = opts.TotalDuration
			start = end - opts.ClipDuration
			if start < 0 {
				start = 0
			}
		}

		if end-start < e.cfg.MinViableDuration {
			continue
		}

		m.Start, m.End = start, end
		out = append(out, m)
	}
	return out
}

// dedupe clusters temporally overlapping candidates with a single
// sorted sweep. Within a cluster the highest-priority source wins and
// absorbs the metadata of the candidates it displaces; priority ties
// fall to the earlier start.
func (e *Engine) dedupe(candidates []RawMoment) []RawMoment {
	sort.SliceStable(candidates, func(i, j int) bool {
		if candidates[i].Start != candidates[j].Start {
			return candidates[i].Start < candidates[j].Start
		}
		return candidates[i].Source.priority() < candidates[j].Source.priority()
	})

	var merged []RawMoment
	for _, cur := range candidates {
		if len(merged) == 0 {
			merged = append(merged, cur)
			continue
		}

		last := &merged[len(merged)-1]
		if !e.sameMoment(*last, cur) {
			merged = append(merged, cur)
			continue
		}

		if cur.Source.priority() < last.Source.priority() {
			// Newcomer outranks the incumbent: swap, then absorb the
			// incumbent's annotations.
			absorbed := *last
			*last = cur
			absorb(last, absorbed)
		} else {
			absorb(last, cur)
		}
	}
	return merged
}

// sameMoment reports whether two intervals overlap beyond the
// configured fraction of the shorter one.
func (e *Engine) sameMoment(a, b RawMoment) bool {
	overlapStart := a.Start
	if b.Start > overlapStart {
		overlapStart = b.Start
	}
	overlapEnd := a.End
	if b.End < overlapEnd {
		overlapEnd = b.End
	}
	overlap := overlapEnd - overlapStart
	if overlap <= 0 {
		return false
	}

	shorter := a.End - a.Start
	if d := b.End - b.Start; d < shorter {
		shorter = d
	}
	if shorter <= 0 {
		return false
	}
	return overlap/shorter > e.cfg.OverlapFraction
}

// absorb copies annotations from a displaced candidate onto the winner
// without overwriting anything the winner already carries.
func absorb(winner *RawMoment, loser RawMoment) {
	if winner.Meta.CompositionScore == 0 && loser.Meta.CompositionScore > 0 {
		winner.Meta.CompositionScore = loser.Meta.CompositionScore
		winner.Meta.FaceCount = loser.Meta.FaceCount
		winner.Meta.MotionLevel = loser.Meta.MotionLevel
		winner.Meta.HasText = loser.Meta.HasText
	}
	winner.Meta.Tags = append(winner.Meta.Tags, loser.Meta.Tags...)
	if winner.Meta.Reason == "" {
		winner.Meta.Reason = loser.Meta.Reason
	}
}

// rank computes the virality score and attaches platform and editing
// annotations.
func (e *Engine) rank(m RawMoment, opts Options) RankedMoment {
	duration := m.End - m.Start

	composition := m.Meta.CompositionScore
	if composition == 0 {
		composition = 0.5 // neutral default when no scene overlapped
	}

	fit := 1 - abs(duration-opts.ClipDuration)/opts.ClipDuration
	if fit < 0 {
		fit = 0
	}

	virality := e.cfg.BaseWeight*m.BaseScore +
		e.cfg.CompositionWeight*composition +
		e.cfg.DurationWeight*fit
	if virality > 1 {
		virality = 1
	}
	if virality < 0 {
		virality = 0
	}

	return RankedMoment{
		Start:                m.Start,
		End:                  m.End,
		Duration:             duration,
		Source:               m.Source,
		CompositionScore:     composition,
		ViralityScore:        virality,
		RecommendedPlatforms: e.platformsFor(duration),
		EditingSuggestions:   e.suggestionsFor(duration, m.Meta),
		Reason:               m.Meta.Reason,
		Tags:                 m.Meta.Tags,
	}
}

func abs(v float64) float64 {
	if v < 0 {
		return -v
	}
	return v
}
