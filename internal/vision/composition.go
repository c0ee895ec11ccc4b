package vision

import "fmt"

// VideoComposition is the video-level aggregate over a scene set.
// Derived and read-only; recomputed per analysis run.
type VideoComposition struct {
	TotalScenes          int                  `json:"total_scenes"`
	TotalDuration        float64              `json:"total_duration"`
	QualityScore         float64              `json:"quality_score"` // [0,10]
	ShotTypeDistribution map[ShotType]int     `json:"shot_type_distribution"`
	FaceCoveragePct      float64              `json:"face_coverage_percentage"`
	MotionPct            float64              `json:"motion_percentage"`
	AvgSceneDuration     float64              `json:"avg_scene_duration"`
}

// AnalyzeComposition aggregates scenes into video-level statistics.
// Quality is the duration-weighted mean composition score scaled to
// [0,10]; coverage percentages are duration-weighted as well. An empty
// scene set yields zero-valued aggregates, not an error.
func AnalyzeComposition(scenes []Scene) VideoComposition {
	comp := VideoComposition{
		ShotTypeDistribution: make(map[ShotType]int),
	}
	if len(scenes) == 0 {
		return comp
	}

	var weightedScore, faceDuration, motionDuration float64
	for i := range scenes {
		s := &scenes[i]
		d := s.Duration()
		comp.TotalDuration += d
		weightedScore += s.CompositionScore * d
		comp.ShotTypeDistribution[s.ShotType]++
		if s.FaceCount >= 1 {
			faceDuration += d
		}
		if s.MotionLevel == MotionHigh {
			motionDuration += d
		}
	}

	comp.TotalScenes = len(scenes)
	comp.AvgSceneDuration = comp.TotalDuration / float64(len(scenes))
	if comp.TotalDuration > 0 {
		comp.QualityScore = weightedScore / comp.TotalDuration * 10
		comp.FaceCoveragePct = faceDuration / comp.TotalDuration * 100
		comp.MotionPct = motionDuration / comp.TotalDuration * 100
	}

	return comp
}

// Recommendations turns the aggregate into human-readable guidance for
// the host UI.
func Recommendations(comp VideoComposition) []string {
	var recs []string
	if comp.TotalScenes == 0 {
		return []string{"No scenes detected - the video may be too short or uniform to analyze"}
	}

	if comp.QualityScore < 5.0 {
		recs = append(recs, fmt.Sprintf("Overall composition quality is low (%.1f/10) - consider better lighting and framing", comp.QualityScore))
	}
	if comp.FaceCoveragePct < 30 {
		recs = append(recs, "Low face coverage - clips with visible faces tend to perform better on social platforms")
	}
	if comp.AvgSceneDuration > 30 {
		recs = append(recs, "Scenes run long - more frequent cuts keep short-form viewers engaged")
	}
	if comp.MotionPct > 60 {
		recs = append(recs, "Very high motion throughout - consider calmer segments so key moments stand out")
	}
	if talking := comp.ShotTypeDistribution[ShotTalkingHead]; talking > 0 && comp.TotalScenes > 0 &&
		float64(talking)/float64(comp.TotalScenes) > 0.8 {
		recs = append(recs, "Mostly talking-head shots - varied framing adds visual interest")
	}
	if len(recs) == 0 {
		recs = append(recs, fmt.Sprintf("Good composition (%.1f/10) - the video is well suited for clip extraction", comp.QualityScore))
	}
	return recs
}
