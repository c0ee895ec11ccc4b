package frame

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/Yousef-M1/Clipper/internal/config"
	"github.com/rs/zerolog"
)

// SampleResult is the bounded, ordered frame sequence handed to feature
// extraction. Samples are immutable once collected.
type SampleResult struct {
	Samples   []Frame
	Partial   bool  // a mid-stream read failure or cancellation truncated the sequence
	Truncated bool  // the MaxSamples cap was hit before end of stream
	Cause     error // underlying cause when Partial
}

// Sampler walks a frame stream at a fixed stride, keeping every Nth
// frame up to a hard cap.
type Sampler struct {
	logger zerolog.Logger
	cfg    config.SamplerConfig
}

func NewSampler(logger zerolog.Logger, cfg config.SamplerConfig) *Sampler {
	if cfg.Stride <= 0 {
		cfg.Stride = 15
	}
	if cfg.MaxSamples <= 0 {
		cfg.MaxSamples = 1000
	}
	return &Sampler{
		logger: logger.With().Str("component", "sampler").Logger(),
		cfg:    cfg,
	}
}

// Sample opens ref and collects frames. Opening failures are fatal and
// wrap ErrSourceUnavailable. Once at least one sample has been
// collected, read failures truncate the sequence instead of failing the
// run; the result is flagged Partial with the cause attached. Context
// cancellation between iterations also yields a Partial result.
func (s *Sampler) Sample(ctx context.Context, src Source, ref string) (*SampleResult, error) {
	stream, err := src.Open(ctx, ref)
	if err != nil {
		if errors.Is(err, ErrSourceUnavailable) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrSourceUnavailable, err)
	}
	defer stream.Close()

	result := &SampleResult{}
	frameIndex := 0

	for len(result.Samples) < s.cfg.MaxSamples {
		if err := ctx.Err(); err != nil {
			s.logger.Warn().
				Int("samples", len(result.Samples)).
				Msg("sampling canceled, returning partial sequence")
			result.Partial = true
			result.Cause = err
			return result, nil
		}

		f, err := stream.Next()
		if err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			if len(result.Samples) == 0 {
				return nil, fmt.Errorf("%w: first read failed: %v", ErrSourceUnavailable, err)
			}
			s.logger.Warn().
				Err(err).
				Int("samples", len(result.Samples)).
				Msg("mid-stream read failed, truncating sequence")
			result.Partial = true
			result.Cause = err
			return result, nil
		}

		if frameIndex%s.cfg.Stride == 0 {
			result.Samples = append(result.Samples, f)
		}
		frameIndex++
	}

	if len(result.Samples) == s.cfg.MaxSamples {
		// Check whether anything is left so callers can tell a capped
		// run apart from an exact fit.
		if _, err := stream.Next(); err == nil {
			result.Truncated = true
		}
	}

	s.logger.Debug().
		Int("frames_seen", frameIndex).
		Int("samples", len(result.Samples)).
		Bool("truncated", result.Truncated).
		Msg("sampling complete")

	return result, nil
}
