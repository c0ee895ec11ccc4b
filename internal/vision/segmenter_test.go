package vision

import (
	"testing"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/rs/zerolog"
)

func oneHot(n, i int) []float64 {
	h := make([]float64, n)
	h[i] = 1
	return h
}

func feat(ts float64, hist []float64, hash uint64) FrameFeatures {
	return FrameFeatures{
		Timestamp: ts,
		FeatureVector: FeatureVector{
			ColorHist:   hist,
			EdgeDensity: 0.1,
			Brightness:  128,
			Hash:        hash,
		},
	}
}

func testSegmenter() *Segmenter {
	return NewSegmenter(zerolog.Nop(), config.Default().Scenes)
}

func TestSegmentTooFewSamples(t *testing.T) {
	s := testSegmenter()
	if got := s.Segment(nil); got != nil {
		t.Errorf("nil input produced %d spans", len(got))
	}
	one := []FrameFeatures{feat(0, oneHot(48, 0), 0)}
	if got := s.Segment(one); got != nil {
		t.Errorf("single sample produced %d spans", len(got))
	}
}

func TestSegmentUniformVideo(t *testing.T) {
	s := testSegmenter()
	hist := oneHot(48, 3)
	var features []FrameFeatures
	for i := 0; i < 10; i++ {
		features = append(features, feat(float64(i)*0.5, hist, 0xAAAA))
	}

	spans := s.Segment(features)
	if len(spans) != 1 {
		t.Fatalf("uniform video split into %d spans, want 1", len(spans))
	}
	if spans[0].Start != 0 || spans[0].End != 4.5 {
		t.Errorf("span = [%f, %f], want [0, 4.5]", spans[0].Start, spans[0].End)
	}
	if len(spans[0].Frames) != 10 {
		t.Errorf("span holds %d frames, want 10", len(spans[0].Frames))
	}
}

func TestSegmentHistogramCut(t *testing.T) {
	s := testSegmenter()
	histA := oneHot(48, 0)
	histB := oneHot(48, 20)

	var features []FrameFeatures
	for i := 0; i < 6; i++ {
		features = append(features, feat(float64(i), histA, 0))
	}
	for i := 6; i < 12; i++ {
		features = append(features, feat(float64(i), histB, 0))
	}

	spans := s.Segment(features)
	if len(spans) != 2 {
		t.Fatalf("got %d spans, want 2", len(spans))
	}
	if spans[0].End != 6 || spans[1].Start != 6 {
		t.Errorf("boundary at [%f, %f], want a shared edge at 6", spans[0].End, spans[1].Start)
	}
	// The boundary frame belongs to the span it opens.
	if len(spans[0].Frames) != 6 || len(spans[1].Frames) != 6 {
		t.Errorf("frame split %d/%d, want 6/6", len(spans[0].Frames), len(spans[1].Frames))
	}
}

func TestSegmentHashCut(t *testing.T) {
	s := testSegmenter()
	hist := oneHot(48, 5)

	// Identical histograms but wildly different perceptual hashes.
	var features []FrameFeatures
	for i := 0; i < 5; i++ {
		features = append(features, feat(float64(i), hist, 0))
	}
	for i := 5; i < 10; i++ {
		features = append(features, feat(float64(i), hist, 0xFFFFFFFFFFFFFFFF))
	}

	spans := s.Segment(features)
	if len(spans) != 2 {
		t.Fatalf("hash cut missed: got %d spans, want 2", len(spans))
	}
	if spans[1].Start != 5 {
		t.Errorf("cut at %f, want 5", spans[1].Start)
	}
}

func TestSegmentPartition(t *testing.T) {
	s := testSegmenter()

	// Three looks with clean cuts at 4s and 8s.
	var features []FrameFeatures
	for i := 0; i < 12; i++ {
		hist := oneHot(48, (i/4)*10)
		features = append(features, feat(float64(i), hist, 0))
	}

	spans := s.Segment(features)
	if len(spans) < 2 {
		t.Fatalf("expected multiple spans, got %d", len(spans))
	}

	if spans[0].Start != features[0].Timestamp {
		t.Errorf("first span starts at %f, want %f", spans[0].Start, features[0].Timestamp)
	}
	if spans[len(spans)-1].End != features[len(features)-1].Timestamp {
		t.Errorf("last span ends at %f, want %f",
			spans[len(spans)-1].End, features[len(features)-1].Timestamp)
	}

	total := 0
	for i, sp := range spans {
		total += len(sp.Frames)
		if sp.End < sp.Start {
			t.Errorf("span %d inverted: [%f, %f]", i, sp.Start, sp.End)
		}
		if i > 0 && spans[i-1].End != sp.Start {
			t.Errorf("gap between span %d and %d: %f != %f", i-1, i, spans[i-1].End, sp.Start)
		}
	}
	if total != len(features) {
		t.Errorf("spans hold %d frames in total, want %d", total, len(features))
	}
}

func TestSegmentTrailingMerge(t *testing.T) {
	s := testSegmenter()
	histA := oneHot(48, 0)
	histB := oneHot(48, 20)

	// A cut 0.3s before the end: too short to stand as its own scene.
	var features []FrameFeatures
	for i := 0; i <= 10; i++ {
		features = append(features, feat(float64(i), histA, 0))
	}
	features = append(features, feat(10.3, histB, 0))
	features = append(features, feat(10.6, histB, 0))

	spans := s.Segment(features)
	if len(spans) != 1 {
		t.Fatalf("sub-minimum trailing span not merged: got %d spans", len(spans))
	}
	if spans[0].End != 10.6 {
		t.Errorf("merged span ends at %f, want 10.6", spans[0].End)
	}
	if len(spans[0].Frames) != len(features) {
		t.Errorf("merged span holds %d frames, want %d", len(spans[0].Frames), len(features))
	}
}

func TestSegmentSingleTrailingSample(t *testing.T) {
	s := testSegmenter()
	histA := oneHot(48, 0)
	histB := oneHot(48, 20)

	var features []FrameFeatures
	for i := 0; i < 6; i++ {
		features = append(features, feat(float64(i), histA, 0))
	}
	// One lone differing sample at the very end.
	features = append(features, feat(6, histB, 0))

	spans := s.Segment(features)
	if len(spans) != 1 {
		t.Fatalf("lone trailing sample became its own span: %d spans", len(spans))
	}
	if spans[0].End != 6 {
		t.Errorf("span ends at %f, want 6", spans[0].End)
	}
	if len(spans[0].Frames) != 7 {
		t.Errorf("span holds %d frames, want 7", len(spans[0].Frames))
	}
}
