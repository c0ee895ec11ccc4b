package ffmpeg

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"image/jpeg"
	"io"
	"os/exec"

	"github.com/Yousef-M1/Clipper/internal/frame"
	"github.com/rs/zerolog"
)

// VideoSource streams decoded frames out of ffmpeg as an MJPEG pipe,
// implementing frame.Source plus the optional duration probe.
type VideoSource struct {
	logger zerolog.Logger
	exec   *Executor
}

func NewVideoSource(logger zerolog.Logger, exec *Executor) *VideoSource {
	return &VideoSource{
		logger: logger.With().Str("component", "video-source").Logger(),
		exec:   exec,
	}
}

// Duration implements pipeline.DurationProber.
func (s *VideoSource) Duration(ctx context.Context, ref string) (float64, error) {
	info, err := s.exec.Probe(ctx, ref)
	if err != nil {
		return 0, err
	}
	return info.Duration, nil
}

// Open probes the video and starts an ffmpeg process that writes every
// frame as a JPEG to stdout. Probe or start failures wrap
// frame.ErrSourceUnavailable.
func (s *VideoSource) Open(ctx context.Context, ref string) (frame.Stream, error) {
	info, err := s.exec.Probe(ctx, ref)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", frame.ErrSourceUnavailable, err)
	}
	if info.FPS <= 0 {
		return nil, fmt.Errorf("%w: no video stream in %s", frame.ErrSourceUnavailable, ref)
	}

	ctx, cancel := context.WithCancel(ctx)
	cmd := exec.CommandContext(ctx, s.exec.ffmpegPath,
		"-hide_banner", "-loglevel", "error",
		"-i", ref,
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-q:v", "3",
		"pipe:1",
	)

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", frame.ErrSourceUnavailable, err)
	}
	if err := cmd.Start(); err != nil {
		cancel()
		return nil, fmt.Errorf("%w: %v", frame.ErrSourceUnavailable, err)
	}

	s.logger.Debug().
		Str("ref", ref).
		Float64("fps", info.FPS).
		Float64("duration", info.Duration).
		Msg("frame stream opened")

	return &mjpegStream{
		cancel: cancel,
		cmd:    cmd,
		r:      bufio.NewReaderSize(stdout, 1<<20),
		fps:    info.FPS,
	}, nil
}

// mjpegStream splits the concatenated JPEG stream on SOI/EOI markers
// and decodes one image per Next call. Timestamps come from the frame
// index over the probed frame rate.
type mjpegStream struct {
	cancel context.CancelFunc
	cmd    *exec.Cmd
	r      *bufio.Reader
	fps    float64
	index  int
}

func (m *mjpegStream) Next() (frame.Frame, error) {
	data, err := m.readJPEG()
	if err != nil {
		return frame.Frame{}, err
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return frame.Frame{}, fmt.Errorf("frame %d decode failed: %w", m.index, err)
	}

	f := frame.Frame{
		Timestamp: float64(m.index) / m.fps,
		Image:     img,
	}
	m.index++
	return f, nil
}

// readJPEG scans for the next 0xFFD8 start-of-image marker and returns
// everything up to and including the matching 0xFFD9 end-of-image.
func (m *mjpegStream) readJPEG() ([]byte, error) {
	// Seek SOI.
	for {
		b, err := m.r.ReadByte()
		if err != nil {
			return nil, mapEOF(err)
		}
		if b != 0xFF {
			continue
		}
		b, err = m.r.ReadByte()
		if err != nil {
			return nil, mapEOF(err)
		}
		if b == 0xD8 {
			break
		}
	}

	buf := []byte{0xFF, 0xD8}
	for {
		b, err := m.r.ReadByte()
		if err != nil {
			return nil, mapEOF(err)
		}
		buf = append(buf, b)
		if b == 0xFF {
			nb, err := m.r.ReadByte()
			if err != nil {
				return nil, mapEOF(err)
			}
			buf = append(buf, nb)
			if nb == 0xD9 {
				return buf, nil
			}
		}
	}
}

func mapEOF(err error) error {
	if err == io.EOF || err == io.ErrUnexpectedEOF {
		return io.EOF
	}
	return err
}

func (m *mjpegStream) Close() error {
	m.cancel()
	// The process exits on SIGKILL from the canceled context; reap it.
	_ = m.cmd.Wait()
	return nil
}
