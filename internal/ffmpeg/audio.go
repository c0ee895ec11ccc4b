package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/Yousef-M1/Clipper/internal/moments"
	"github.com/rs/zerolog"
)

// SilenceSegment represents a period of silence in audio.
type SilenceSegment struct {
	Start    float64
	End      float64
	Duration float64
}

// DetectSilence finds silence segments in an audio/video file using the
// silencedetect filter.
func (e *Executor) DetectSilence(ctx context.Context, input string, noiseThreshold, minDuration float64) ([]SilenceSegment, error) {
	e.logger.Debug().
		Str("input", input).
		Float64("noise_threshold", noiseThreshold).
		Float64("min_duration", minDuration).
		Msg("detecting silence")

	output, err := e.runNullSink(ctx, []string{
		"-i", input,
		"-af", fmt.Sprintf("silencedetect=noise=%.6fdB:d=%.6f", noiseThreshold, minDuration),
		"-f", "null",
		"-",
	})
	if err != nil {
		return nil, fmt.Errorf("silence detection failed: %w", err)
	}

	return parseSilenceOutput(output), nil
}

// VolumeStats holds volume analysis results in dBFS.
type VolumeStats struct {
	MeanVolume float64
	MaxVolume  float64
}

// AnalyzeVolume calculates volume statistics using the volumedetect
// filter.
func (e *Executor) AnalyzeVolume(ctx context.Context, input string) (*VolumeStats, error) {
	e.logger.Debug().Str("input", input).Msg("analyzing volume")

	output, err := e.runNullSink(ctx, []string{
		"-i", input,
		"-af", "volumedetect",
		"-f", "null",
		"-",
	})
	if err != nil {
		return nil, fmt.Errorf("volume analysis failed: %w", err)
	}

	return parseVolumeOutput(output), nil
}

// runNullSink runs an analysis pass whose results arrive as filter log
// lines on stderr. ffmpeg's null muxer reports spurious conversion
// errors that do not invalidate the filter output, so those are
// tolerated as long as output was produced.
func (e *Executor) runNullSink(ctx context.Context, args []string) (string, error) {
	var buf bytes.Buffer
	var mu sync.Mutex

	err := e.Run(ctx, RunOptions{
		Args: args,
		LogHandler: func(line string) {
			mu.Lock()
			buf.WriteString(line + "\n")
			mu.Unlock()
		},
	})

	mu.Lock()
	output := buf.String()
	mu.Unlock()

	if err != nil {
		if ctx.Err() != nil {
			return "", ctx.Err()
		}
		if !strings.Contains(err.Error(), "Conversion failed") &&
			!strings.Contains(err.Error(), "Invalid return value") &&
			!strings.Contains(err.Error(), "Output file is empty") {
			return "", err
		}
	}
	if output == "" {
		return "", fmt.Errorf("analysis pass produced no output")
	}
	return output, nil
}

// parseSilenceOutput extracts silence segments from silencedetect log
// lines.
func parseSilenceOutput(output string) []SilenceSegment {
	var segments []SilenceSegment
	var currentStart float64

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "silence_start:") {
			parts := strings.Split(line, "silence_start:")
			if len(parts) == 2 {
				currentStart, _ = strconv.ParseFloat(strings.TrimSpace(parts[1]), 64)
			}
		} else if strings.Contains(line, "silence_end:") {
			parts := strings.Split(line, "silence_end:")
			if len(parts) != 2 {
				continue
			}
			fields := strings.Fields(strings.TrimSpace(parts[1]))
			if len(fields) == 0 {
				continue
			}
			end, _ := strconv.ParseFloat(fields[0], 64)

			duration := end - currentStart
			if strings.Contains(line, "silence_duration:") {
				durParts := strings.Split(line, "silence_duration:")
				if len(durParts) == 2 {
					duration, _ = strconv.ParseFloat(strings.TrimSpace(durParts[1]), 64)
				}
			}

			segments = append(segments, SilenceSegment{
				Start:    currentStart,
				End:      end,
				Duration: duration,
			})
		}
	}

	return segments
}

// parseVolumeOutput extracts volume stats from volumedetect log lines.
func parseVolumeOutput(output string) *VolumeStats {
	stats := &VolumeStats{}

	for _, line := range strings.Split(output, "\n") {
		if strings.Contains(line, "mean_volume:") {
			parts := strings.Split(line, "mean_volume:")
			if len(parts) == 2 {
				if fields := strings.Fields(strings.TrimSpace(parts[1])); len(fields) > 0 {
					stats.MeanVolume, _ = strconv.ParseFloat(fields[0], 64)
				}
			}
		} else if strings.Contains(line, "max_volume:") {
			parts := strings.Split(line, "max_volume:")
			if len(parts) == 2 {
				if fields := strings.Fields(strings.TrimSpace(parts[1])); len(fields) > 0 {
					stats.MaxVolume, _ = strconv.ParseFloat(fields[0], 64)
				}
			}
		}
	}

	return stats
}

// PeakDetector approximates audio energy peaks from silence boundaries:
// every silence_end is a sound onset, and the file's dynamic range sets
// how intense those onsets count as. Implements
// pipeline.AudioPeakProvider.
type PeakDetector struct {
	logger zerolog.Logger
	exec   *Executor
	cfg    config.FFmpegConfig
}

func NewPeakDetector(logger zerolog.Logger, exec *Executor, cfg config.FFmpegConfig) *PeakDetector {
	return &PeakDetector{
		logger: logger.With().Str("component", "peak-detector").Logger(),
		exec:   exec,
		cfg:    cfg,
	}
}

// Peaks returns one peak per detected sound onset. A file with no
// silence boundaries yields no peaks, which the fusion engine treats as
// an empty source, not an error.
func (p *PeakDetector) Peaks(ctx context.Context, ref string) ([]moments.AudioPeak, error) {
	silences, err := p.exec.DetectSilence(ctx, ref, p.cfg.SilenceNoiseDB, p.cfg.SilenceMinDur)
	if err != nil {
		return nil, err
	}
	if len(silences) == 0 {
		return nil, nil
	}

	stats, err := p.exec.AnalyzeVolume(ctx, ref)
	if err != nil {
		return nil, err
	}

	// Dynamic range above ~30dB is treated as full intensity.
	intensity := (stats.MaxVolume - stats.MeanVolume) / 30.0
	if intensity < 0 {
		intensity = 0
	}
	if intensity > 1 {
		intensity = 1
	}

	peaks := make([]moments.AudioPeak, 0, len(silences))
	for _, s := range silences {
		peaks = append(peaks, moments.AudioPeak{
			Timestamp: s.End,
			Intensity: intensity,
		})
	}

	p.logger.Debug().Int("peaks", len(peaks)).Msg("audio peak detection complete")
	return peaks, nil
}
