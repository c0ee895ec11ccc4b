package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	def := Default()
	if cfg.Sampler.Stride != def.Sampler.Stride {
		t.Errorf("stride = %d, want default %d", cfg.Sampler.Stride, def.Sampler.Stride)
	}
	if cfg.Scenes.ChangeThreshold != def.Scenes.ChangeThreshold {
		t.Errorf("threshold = %f, want default %f", cfg.Scenes.ChangeThreshold, def.Scenes.ChangeThreshold)
	}
}

func TestLoadPartialOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	data := []byte("scenes:\n  change_threshold: 0.55\nsampler:\n  stride: 30\n")
	if err := os.WriteFile(path, data, 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Scenes.ChangeThreshold != 0.55 {
		t.Errorf("threshold = %f, want 0.55", cfg.Scenes.ChangeThreshold)
	}
	if cfg.Sampler.Stride != 30 {
		t.Errorf("stride = %d, want 30", cfg.Sampler.Stride)
	}
	// Untouched sections keep their defaults.
	if cfg.Fusion.MinViableDuration != Default().Fusion.MinViableDuration {
		t.Errorf("min viable duration = %f, want default", cfg.Fusion.MinViableDuration)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")

	cfg := Default()
	cfg.Concurrency = 8
	cfg.Shots.MotionHigh = 40
	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if loaded.Concurrency != 8 {
		t.Errorf("concurrency = %d, want 8", loaded.Concurrency)
	}
	if loaded.Shots.MotionHigh != 40 {
		t.Errorf("motion high = %f, want 40", loaded.Shots.MotionHigh)
	}
}

func TestContextRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Concurrency = 12

	ctx := WithConfig(context.Background(), cfg)
	if got := FromContext(ctx); got.Concurrency != 12 {
		t.Errorf("concurrency from context = %d, want 12", got.Concurrency)
	}
	if got := FromContext(context.Background()); got.Concurrency != Default().Concurrency {
		t.Errorf("bare context should yield defaults, got %d", got.Concurrency)
	}
}
