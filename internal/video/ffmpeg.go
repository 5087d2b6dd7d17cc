// Package video decodes uploaded answer videos into grayscale frames by piping
// them through an ffmpeg subprocess. ffmpeg handles every container format the
// upload validator admits, so no per-format decoding lives in this process.
package video

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"

	"github.com/Arfwjn/AI-PoweredInterview-Assessment-System/internal/gaze"
)

// Source streams raw grayscale frames from a running ffmpeg process. It
// implements gaze.FrameSource.
type Source struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
	stderr bytes.Buffer
	width  int
	height int
	index  int
	waited bool
	closed bool
}

// Open starts an ffmpeg process decoding the file at path into raw grayscale
// frames scaled to width x height.
func Open(path string, width, height int) (*Source, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("video file not accessible: %w", err)
	}

	cmd := exec.Command("ffmpeg",
		"-hide_banner", "-loglevel", "error",
		"-i", path,
		"-f", "rawvideo",
		"-pix_fmt", "gray",
		"-s", fmt.Sprintf("%dx%d", width, height),
		"-",
	)

	src := &Source{cmd: cmd, width: width, height: height}
	cmd.Stderr = &src.stderr

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, fmt.Errorf("failed to create ffmpeg pipe: %w", err)
	}
	src.stdout = stdout

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start ffmpeg: %w", err)
	}

	return src, nil
}

// Next reads one frame. It returns io.EOF only once ffmpeg has drained the
// video and exited cleanly; a decoder failure surfaces as an error so an
// undecodable video is never mistaken for an empty one.
func (s *Source) Next() (*gaze.Frame, error) {
	pixels := make([]byte, s.width*s.height)
	if _, err := io.ReadFull(s.stdout, pixels); err != nil {
		if err == io.EOF || err == io.ErrUnexpectedEOF {
			return nil, s.finish(err == io.ErrUnexpectedEOF)
		}
		return nil, fmt.Errorf("failed to read frame %d: %w", s.index, err)
	}

	s.index++
	return &gaze.Frame{
		Index:  s.index,
		Width:  s.width,
		Height: s.height,
		Pixels: pixels,
	}, nil
}

// finish reaps the decoder once its output is drained. An unreadable or
// corrupt video makes ffmpeg exit non-zero with little or no output, which
// must not pass for a cleanly decoded empty stream.
func (s *Source) finish(truncated bool) error {
	s.waited = true
	if err := s.cmd.Wait(); err != nil {
		if msg := strings.TrimSpace(s.stderr.String()); msg != "" {
			return fmt.Errorf("ffmpeg failed: %v: %s", err, msg)
		}
		return fmt.Errorf("ffmpeg failed: %w", err)
	}
	if truncated {
		return fmt.Errorf("video stream truncated in frame %d", s.index+1)
	}
	return io.EOF
}

// Close terminates the decoder. Safe to call more than once and after errors.
func (s *Source) Close() error {
	if s.closed {
		return nil
	}
	s.closed = true

	s.stdout.Close()
	if !s.waited {
		if s.cmd.Process != nil {
			s.cmd.Process.Kill()
		}
		s.cmd.Wait()
	}
	return nil
}
