package moments

import (
	"math"
	"strings"
	"testing"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/vision"
	"github.com/rs/zerolog"
)

func testEngine() *Engine {
	return NewEngine(zerolog.Nop(), config.Default().Fusion)
}

func TestFuseEmptyInput(t *testing.T) {
	e := testEngine()
	ranked, status := e.Fuse(nil, Options{ClipDuration: 30, MaxClips: 10, TotalDuration: 300})
	if status != StatusNoCandidates {
		t.Errorf("status = %s, want %s", status, StatusNoCandidates)
	}
	if ranked != nil {
		t.Errorf("got %d moments from empty input", len(ranked))
	}
}

// Overlapping transcript and visual candidates merge under the
// transcript source, which absorbs the visual composition metadata; a
// distant audio peak survives on its own.
func TestFuseThreeSourceMerge(t *testing.T) {
	e := testEngine()
	raw := []RawMoment{
		{Start: 10, End: 40, Source: SourceTranscriptAI, BaseScore: 0.9,
			Meta: Meta{Reason: "high-energy exchange"}},
		{Start: 12, End: 38, Source: SourceVisualScene, BaseScore: 0.6,
			Meta: Meta{CompositionScore: 0.6, FaceCount: 1, MotionLevel: vision.MotionMedium}},
		{Start: 100, End: 130, Source: SourceAudioPeak, BaseScore: 0.3,
			Meta: Meta{Reason: "audio energy peak"}},
	}

	ranked, status := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 2, TotalDuration: 200})
	if status != StatusOK {
		t.Fatalf("status = %s, want %s", status, StatusOK)
	}
	if len(ranked) != 2 {
		t.Fatalf("got %d moments, want 2", len(ranked))
	}

	top := ranked[0]
	if top.Source != SourceTranscriptAI {
		t.Errorf("top source = %s, want %s", top.Source, SourceTranscriptAI)
	}
	if top.CompositionScore != 0.6 {
		t.Errorf("absorbed composition score = %f, want 0.6", top.CompositionScore)
	}
	if top.Reason != "high-energy exchange" {
		t.Errorf("winner's reason overwritten: %q", top.Reason)
	}
	// 0.6*0.9 + 0.25*0.6 + 0.15*1.0
	if math.Abs(top.ViralityScore-0.84) > 1e-9 {
		t.Errorf("virality = %f, want 0.84", top.ViralityScore)
	}

	if ranked[1].Source != SourceAudioPeak {
		t.Errorf("second source = %s, want %s", ranked[1].Source, SourceAudioPeak)
	}
	if ranked[1].ViralityScore >= top.ViralityScore {
		t.Error("ranking not in descending virality order")
	}
}

func TestFuseSamePriorityKeepsEarlier(t *testing.T) {
	e := testEngine()
	raw := []RawMoment{
		{Start: 20, End: 50, Source: SourceVisualScene, BaseScore: 0.7,
			Meta: Meta{CompositionScore: 0.7}},
		{Start: 22, End: 52, Source: SourceVisualScene, BaseScore: 0.9,
			Meta: Meta{CompositionScore: 0.9}},
	}

	ranked, _ := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 10, TotalDuration: 300})
	if len(ranked) != 1 {
		t.Fatalf("overlapping same-priority candidates not merged: %d moments", len(ranked))
	}
	if ranked[0].Start != 20 {
		t.Errorf("merged start = %f, want the earlier 20", ranked[0].Start)
	}
	if ranked[0].CompositionScore != 0.7 {
		t.Errorf("incumbent composition overwritten: %f", ranked[0].CompositionScore)
	}
}

func TestFuseNormalizeClampsToMedia(t *testing.T) {
	e := testEngine()
	raw := []RawMoment{
		{Start: 45, End: 48, Source: SourceAudioPeak, BaseScore: 0.5},
	}

	ranked, status := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 10, TotalDuration: 50})
	if status != StatusOK {
		t.Fatalf("status = %s", status)
	}
	if len(ranked) != 1 {
		t.Fatalf("got %d moments", len(ranked))
	}
	m := ranked[0]
	if m.Start != 20 || m.End != 50 {
		t.Errorf("window = [%f, %f], want [20, 50]", m.Start, m.End)
	}
	if m.Duration != 30 {
		t.Errorf("duration = %f, want 30", m.Duration)
	}
}

func TestFuseDropsNonViable(t *testing.T) {
	e := testEngine()
	raw := []RawMoment{
		{Start: 5, End: 5, Source: SourceVisualScene, BaseScore: 0.9}, // empty interval
		{Start: 1, End: 1.5, Source: SourceAudioPeak, BaseScore: 0.9}, // clamps below viability
	}

	// Two-second media: every 30s window clamps under MinViableDuration.
	_, status := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 10, TotalDuration: 2})
	if status != StatusNoCandidates {
		t.Errorf("status = %s, want %s", status, StatusNoCandidates)
	}
}

func TestFuseTruncatesToMaxClips(t *testing.T) {
	e := testEngine()
	var raw []RawMoment
	for i := 0; i < 6; i++ {
		raw = append(raw, RawMoment{
			Start:     float64(i) * 100,
			End:       float64(i)*100 + 30,
			Source:    SourceVisualScene,
			BaseScore: 0.5 + float64(i)*0.05,
			Meta:      Meta{CompositionScore: 0.5},
		})
	}

	ranked, _ := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 3, TotalDuration: 600})
	if len(ranked) != 3 {
		t.Fatalf("got %d moments, want 3", len(ranked))
	}
	for i := 1; i < len(ranked); i++ {
		if ranked[i].ViralityScore > ranked[i-1].ViralityScore {
			t.Errorf("virality order violated at %d", i)
		}
	}
}

func TestFuseOutputBounds(t *testing.T) {
	e := testEngine()
	raw := []RawMoment{
		{Start: 0, End: 10, Source: SourceTranscriptAI, BaseScore: 1.5}, // over-eager upstream score
		{Start: 290, End: 300, Source: SourceAudioPeak, BaseScore: 0.4},
	}

	ranked, _ := e.Fuse(raw, Options{ClipDuration: 30, MaxClips: 10, TotalDuration: 300})
	for i, m := range ranked {
		if m.Start < 0 || m.End > 300 {
			t.Errorf("moment %d out of media bounds: [%f, %f]", i, m.Start, m.End)
		}
		if m.ViralityScore < 0 || m.ViralityScore > 1 {
			t.Errorf("moment %d virality out of range: %f", i, m.ViralityScore)
		}
		if m.Duration != m.End-m.Start {
			t.Errorf("moment %d duration inconsistent", i)
		}
	}
}

func TestFromScenesFiltersByScore(t *testing.T) {
	scenes := []vision.Scene{
		{Start: 0, End: 10, CompositionScore: 0.8, ShotType: vision.ShotTalkingHead, FaceCount: 1},
		{Start: 10, End: 20, CompositionScore: 0.4, ShotType: vision.ShotTransition},
	}

	raw := FromScenes(scenes, 0.6)
	if len(raw) != 1 {
		t.Fatalf("got %d candidates, want 1", len(raw))
	}
	m := raw[0]
	if m.Source != SourceVisualScene {
		t.Errorf("source = %s", m.Source)
	}
	if m.Meta.CompositionScore != 0.8 || m.Meta.FaceCount != 1 {
		t.Errorf("scene metadata not carried: %+v", m.Meta)
	}
}

func TestFromAudioPeaks(t *testing.T) {
	peaks := []AudioPeak{
		{Timestamp: 5, Intensity: 0.7},   // window clamps at zero
		{Timestamp: 100, Intensity: 1.5}, // intensity clamps to 1
	}

	raw := FromAudioPeaks(peaks, 30)
	if len(raw) != 2 {
		t.Fatalf("got %d candidates, want 2", len(raw))
	}
	if raw[0].Start != 0 || raw[0].End != 30 {
		t.Errorf("early peak window = [%f, %f], want [0, 30]", raw[0].Start, raw[0].End)
	}
	if raw[1].Start != 85 || raw[1].End != 115 {
		t.Errorf("centered window = [%f, %f], want [85, 115]", raw[1].Start, raw[1].End)
	}
	if raw[1].BaseScore != 1 {
		t.Errorf("intensity not clamped: %f", raw[1].BaseScore)
	}
}

func TestPlatformsForDuration(t *testing.T) {
	e := testEngine()

	short := e.platformsFor(30)
	if len(short) != 3 || short[0] != "tiktok" {
		t.Errorf("short clip platforms = %v", short)
	}
	long := e.platformsFor(90)
	if len(long) != 2 || long[0] != "youtube" {
		t.Errorf("long clip platforms = %v", long)
	}
}

func TestSuggestionsFor(t *testing.T) {
	e := testEngine()

	s := e.suggestionsFor(30, Meta{FaceCount: 1, MotionLevel: vision.MotionLow})
	joined := strings.Join(s, "\n")
	for _, want := range []string{"vertical 9:16", "speaker's face", "Static shot", "captions"} {
		if !strings.Contains(joined, want) {
			t.Errorf("suggestions missing %q:\n%s", want, joined)
		}
	}
}
