package config

import (
	"context"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

type contextKey string

const configKey contextKey = "config"

// Config holds all tunable analysis settings. Every heuristic threshold
// lives here so behavior can be tuned without code changes.
type Config struct {
	Concurrency int `yaml:"concurrency"`

	Sampler  SamplerConfig `yaml:"sampler"`
	Features FeatureConfig `yaml:"features"`
	Scenes   SceneConfig   `yaml:"scenes"`
	Shots    ShotConfig    `yaml:"shots"`
	Scoring  ScoringConfig `yaml:"scoring"`
	Fusion   FusionConfig  `yaml:"fusion"`
	FFmpeg   FFmpegConfig  `yaml:"ffmpeg"`
}

// SamplerConfig bounds how many frames are pulled from a video.
type SamplerConfig struct {
	Stride     int `yaml:"stride"`      // keep every Nth frame
	MaxSamples int `yaml:"max_samples"` // hard cap per analysis run
}

// FeatureConfig controls per-frame feature extraction.
type FeatureConfig struct {
	AnalysisWidth  int `yaml:"analysis_width"`
	AnalysisHeight int `yaml:"analysis_height"`

	HistogramBins    int     `yaml:"histogram_bins"` // per channel
	EdgeGradient     float64 `yaml:"edge_gradient"`  // luma gradient cutoff for edge pixels
	TextCellGradient float64 `yaml:"text_cell_gradient"`
	TextMinRegions   int     `yaml:"text_min_regions"`
	FaceMinArea      int     `yaml:"face_min_area"` // pixels at analysis resolution
	DominantColors   int     `yaml:"dominant_colors"`
}

// SceneConfig controls boundary detection between sampled frames.
type SceneConfig struct {
	ChangeThreshold  float64 `yaml:"change_threshold"`
	HistogramWeight  float64 `yaml:"histogram_weight"`
	EdgeWeight       float64 `yaml:"edge_weight"`
	BrightnessWeight float64 `yaml:"brightness_weight"`
	HashCutDistance  int     `yaml:"hash_cut_distance"` // dHash Hamming distance confirming a hard cut
	MinSceneDuration float64 `yaml:"min_scene_duration"`
}

// ShotConfig holds the shot-type classification cutoffs.
type ShotConfig struct {
	CloseUpEdge     float64 `yaml:"close_up_edge"`
	TalkingHeadEdge float64 `yaml:"talking_head_edge"`
	WideEdge        float64 `yaml:"wide_edge"`
	MotionLow       float64 `yaml:"motion_low"`  // below this mean abs luma diff: low
	MotionHigh      float64 `yaml:"motion_high"` // above this: high
}

// ScoringConfig holds the composition scoring bonuses.
type ScoringConfig struct {
	Base           float64 `yaml:"base"`
	OneFace        float64 `yaml:"one_face"`
	TwoFaces       float64 `yaml:"two_faces"`
	TalkingHead    float64 `yaml:"talking_head"`
	ActionShot     float64 `yaml:"action_shot"`
	GoodLighting   float64 `yaml:"good_lighting"`
	LightingCutoff float64 `yaml:"lighting_cutoff"` // luma stddev above which lighting counts as good
	TextOverlay    float64 `yaml:"text_overlay"`
	ModerateMotion float64 `yaml:"moderate_motion"`
}

// FusionConfig controls multi-source moment merging and ranking.
type FusionConfig struct {
	MinViableDuration float64 `yaml:"min_viable_duration"`
	OverlapFraction   float64 `yaml:"overlap_fraction"` // of the shorter interval
	MinSceneScore     float64 `yaml:"min_scene_score"`  // composition cutoff for visual moments
	BaseWeight        float64 `yaml:"base_weight"`
	CompositionWeight float64 `yaml:"composition_weight"`
	DurationWeight    float64 `yaml:"duration_weight"`
	AudioPeakWindow   float64 `yaml:"audio_peak_window"` // seconds around a peak
	ShortFormCutoff   float64 `yaml:"short_form_cutoff"` // seconds; at or under favors vertical platforms
}

// FFmpegConfig configures the ffmpeg-backed collaborators.
type FFmpegConfig struct {
	BinaryPath     string  `yaml:"binary_path"`
	Threads        int     `yaml:"threads"`
	SilenceNoiseDB float64 `yaml:"silence_noise_db"`
	SilenceMinDur  float64 `yaml:"silence_min_dur"`
}

// Load reads configuration from file or returns defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path == "" {
		path = findConfigFile()
	}

	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return nil, err
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// Default returns the documented default configuration.
func Default() *Config {
	return &Config{
		Concurrency: 4,
		Sampler: SamplerConfig{
			Stride:     15,
			MaxSamples: 1000,
		},
		Features: FeatureConfig{
			AnalysisWidth:    320,
			AnalysisHeight:   240,
			HistogramBins:    16,
			EdgeGradient:     96,
			TextCellGradient: 48,
			TextMinRegions:   3,
			FaceMinArea:      900,
			DominantColors:   5,
		},
		Scenes: SceneConfig{
			ChangeThreshold:  0.4,
			HistogramWeight:  0.5,
			EdgeWeight:       0.25,
			BrightnessWeight: 0.25,
			HashCutDistance:  24,
			MinSceneDuration: 1.0,
		},
		Shots: ShotConfig{
			CloseUpEdge:     0.05,
			TalkingHeadEdge: 0.15,
			WideEdge:        0.30,
			MotionLow:       8.0,
			MotionHigh:      25.0,
		},
		Scoring: ScoringConfig{
			Base:           0.5,
			OneFace:        0.20,
			TwoFaces:       0.15,
			TalkingHead:    0.25,
			ActionShot:     0.30,
			GoodLighting:   0.10,
			LightingCutoff: 50.0,
			TextOverlay:    0.10,
			ModerateMotion: 0.10,
		},
		Fusion: FusionConfig{
			MinViableDuration: 3.0,
			OverlapFraction:   0.5,
			MinSceneScore:     0.6,
			BaseWeight:        0.6,
			CompositionWeight: 0.25,
			DurationWeight:    0.15,
			AudioPeakWindow:   30.0,
			ShortFormCutoff:   60.0,
		},
		FFmpeg: FFmpegConfig{
			BinaryPath:     "ffmpeg",
			Threads:        0,
			SilenceNoiseDB: -30.0,
			SilenceMinDur:  1.0,
		},
	}
}

func findConfigFile() string {
	candidates := []string{
		"./config.yaml",
		"./config.yml",
		filepath.Join(os.Getenv("HOME"), ".clipper", "config.yaml"),
	}

	for _, path := range candidates {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}

	return ""
}

// WithConfig stores config in context.
func WithConfig(ctx context.Context, cfg *Config) context.Context {
	return context.WithValue(ctx, configKey, cfg)
}

// FromContext retrieves config from context.
func FromContext(ctx context.Context) *Config {
	if cfg, ok := ctx.Value(configKey).(*Config); ok {
		return cfg
	}
	return Default()
}
