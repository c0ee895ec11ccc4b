package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/ffmpeg"
	"github.com/Yousef-M1/Clipper/internal/logging"
	"github.com/Yousef-M1/Clipper/internal/moments"
	"github.com/Yousef-M1/Clipper/internal/pipeline"
	"github.com/Yousef-M1/Clipper/pkg/util"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	cfgFile string
	verbose bool
)

func main() {
	ctx := context.Background()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "clipper",
	Short: "clipper - visual analysis and clip candidate ranking",
	Long:  "Analyzes a video's visual stream to detect scenes, score composition, and fuse transcript, visual, and audio signals into ranked clip candidates.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logging.Init(verbose)

		cfg, err := config.Load(cfgFile)
		if err != nil {
			return err
		}

		cmd.SetContext(config.WithConfig(cmd.Context(), cfg))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")

	rootCmd.AddCommand(analyzeCmd)
	rootCmd.AddCommand(scenesCmd)
	rootCmd.AddCommand(momentsCmd)
	rootCmd.AddCommand(capabilitiesCmd)
}

// buildPipeline wires the ffmpeg-backed collaborators into the core.
func buildPipeline(ctx context.Context, transcriptPath string) (*pipeline.Pipeline, error) {
	cfg := config.FromContext(ctx)

	exec, err := ffmpeg.New(log.Logger, cfg.FFmpeg.BinaryPath, cfg.FFmpeg.Threads)
	if err != nil {
		return nil, err
	}

	deps := pipeline.Deps{
		Source:     ffmpeg.NewVideoSource(log.Logger, exec),
		AudioPeaks: ffmpeg.NewPeakDetector(log.Logger, exec, cfg.FFmpeg),
	}
	if transcriptPath != "" {
		deps.Transcripts = &fileTranscriptProvider{path: transcriptPath}
	}

	return pipeline.New(log.Logger, cfg, deps)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze [video]",
	Short: "Analyze video composition",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := buildPipeline(cmd.Context(), "")
		if err != nil {
			return err
		}

		comp, status, err := pipe.AnalyzeComposition(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		logger := logging.WithComponent("cli")
		logger.Info().
			Int("scenes", comp.TotalScenes).
			Float64("quality", comp.QualityScore).
			Str("status", string(status.Code)).
			Msg("composition analysis complete")

		return printJSON(struct {
			Composition any `json:"composition"`
			Status      any `json:"status"`
		}{comp, status})
	},
}

var maxScenes int

var scenesCmd = &cobra.Command{
	Use:   "scenes [video]",
	Short: "Detect visual scenes",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := buildPipeline(cmd.Context(), "")
		if err != nil {
			return err
		}

		scenes, status, err := pipe.DetectScenes(cmd.Context(), args[0], maxScenes)
		if err != nil {
			return err
		}

		logger := logging.WithComponent("cli")
		logger.Info().
			Int("scenes", len(scenes)).
			Str("status", string(status.Code)).
			Msg("scene detection complete")

		type sceneOut struct {
			Start            float64 `json:"start"`
			End              float64 `json:"end"`
			Timecode         string  `json:"timecode"`
			ShotType         string  `json:"shot_type"`
			CompositionScore float64 `json:"composition_score"`
			DisplayScore     float64 `json:"display_score"`
			FaceCount        int     `json:"face_count"`
			MotionLevel      string  `json:"motion_level"`
			HasText          bool    `json:"has_text"`
		}
		out := make([]sceneOut, 0, len(scenes))
		for i := range scenes {
			s := &scenes[i]
			out = append(out, sceneOut{
				Start:            s.Start,
				End:              s.End,
				Timecode:         fmt.Sprintf("%s - %s", util.FormatSeconds(s.Start), util.FormatSeconds(s.End)),
				ShotType:         string(s.ShotType),
				CompositionScore: s.CompositionScore,
				DisplayScore:     s.DisplayScore(),
				FaceCount:        s.FaceCount,
				MotionLevel:      string(s.MotionLevel),
				HasText:          s.HasText,
			})
		}

		return printJSON(struct {
			Scenes any `json:"scenes"`
			Status any `json:"status"`
		}{out, status})
	},
}

var (
	clipDuration   float64
	maxClips       int
	sceneDetection bool
	transcriptPath string
)

var momentsCmd = &cobra.Command{
	Use:   "moments [video]",
	Short: "Detect and rank clip moments",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		pipe, err := buildPipeline(cmd.Context(), transcriptPath)
		if err != nil {
			return err
		}

		result, err := pipe.DetectEnhancedMoments(cmd.Context(), args[0], pipeline.MomentOptions{
			ClipDuration:         clipDuration,
			MaxClips:             maxClips,
			EnableSceneDetection: sceneDetection,
		})
		if err != nil {
			return err
		}

		logger := logging.WithComponent("cli")
		logger.Info().
			Int("moments", len(result.Moments)).
			Str("status", string(result.Status.Code)).
			Msg("moment detection complete")

		return printJSON(result)
	},
}

var capabilitiesCmd = &cobra.Command{
	Use:   "capabilities",
	Short: "Show supported shot types, sources, and active thresholds",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := config.FromContext(cmd.Context())
		return printJSON(pipeline.CapabilitiesFor(cfg))
	},
}

func init() {
	scenesCmd.Flags().IntVar(&maxScenes, "max-scenes", 20, "maximum scenes to return")

	momentsCmd.Flags().Float64Var(&clipDuration, "duration", 30, "target clip duration in seconds")
	momentsCmd.Flags().IntVar(&maxClips, "max-clips", 10, "maximum clips to return")
	momentsCmd.Flags().BoolVar(&sceneDetection, "scene-detection", true, "include visual scene candidates")
	momentsCmd.Flags().StringVar(&transcriptPath, "transcript-moments", "", "JSON file of transcript-derived moments")
}

// fileTranscriptProvider loads host-supplied transcript moments from a
// JSON file.
type fileTranscriptProvider struct {
	path string
}

func (p *fileTranscriptProvider) Moments(ctx context.Context, ref string) ([]moments.RawMoment, error) {
	data, err := os.ReadFile(p.path)
	if err != nil {
		return nil, fmt.Errorf("transcript moments file: %w", err)
	}

	var entries []struct {
		Start  float64  `json:"start"`
		End    float64  `json:"end"`
		Score  float64  `json:"score"`
		Reason string   `json:"reason"`
		Tags   []string `json:"tags"`
	}
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("transcript moments file: %w", err)
	}

	out := make([]moments.RawMoment, 0, len(entries))
	for _, e := range entries {
		out = append(out, moments.RawMoment{
			Start:     e.Start,
			End:       e.End,
			Source:    moments.SourceTranscriptAI,
			BaseScore: e.Score,
			Meta:      moments.Meta{Reason: e.Reason, Tags: e.Tags},
		})
	}
	return out, nil
}
