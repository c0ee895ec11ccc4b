package frame

import (
	"context"
	"errors"
	"image"
)

// ErrSourceUnavailable indicates the video behind a ref could not be
// opened at all. This is the only fatal error in the extraction path.
var ErrSourceUnavailable = errors.New("frame source unavailable")

// Frame is a single decoded video frame with its presentation timestamp
// in seconds from the start of the stream.
type Frame struct {
	Timestamp float64
	Image     image.Image
}

// Source opens a video reference into a readable frame stream.
// Implementations wrap whatever the host uses to decode video; the
// analysis core never decodes anything itself.
type Source interface {
	Open(ctx context.Context, ref string) (Stream, error)
}

// Stream yields frames in presentation order. Next returns io.EOF when
// the stream is exhausted. Streams are single-reader and must be closed.
type Stream interface {
	Next() (Frame, error)
	Close() error
}
