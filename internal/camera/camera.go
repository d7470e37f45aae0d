// Package camera provides the capture.Camera implementations: a V4L2 device
// read through ffmpeg, a still image on disk, and a push-fed camera for
// frames uploaded over HTTP.
package camera

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"

	"github.com/justestif/moodtunes/internal/capture"
)

// ErrClosed is returned by Frame after the stream was closed.
var ErrClosed = errors.New("camera stream closed")

// DefaultDevice is the video device opened when none is configured.
const DefaultDevice = "/dev/video0"

// Device captures single JPEG frames from a video device with ffmpeg.
type Device struct {
	Path   string // video device, defaults to DefaultDevice
	FFmpeg string // ffmpeg binary, defaults to "ffmpeg"
}

func (d Device) path() string {
	if d.Path == "" {
		return DefaultDevice
	}
	return d.Path
}

func (d Device) ffmpeg() string {
	if d.FFmpeg == "" {
		return "ffmpeg"
	}
	return d.FFmpeg
}

// Open checks that the device exists and that ffmpeg is on PATH.
func (d Device) Open(ctx context.Context) (capture.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(d.path()); err != nil {
		return nil, fmt.Errorf("video device %s: %w", d.path(), err)
	}
	bin, err := exec.LookPath(d.ffmpeg())
	if err != nil {
		return nil, fmt.Errorf("ffmpeg not found: %w", err)
	}
	return &deviceStream{path: d.path(), ffmpeg: bin}, nil
}

type deviceStream struct {
	mu     sync.Mutex
	path   string
	ffmpeg string
	closed bool
}

func (s *deviceStream) Frame(ctx context.Context) ([]byte, error) {
	s.mu.Lock()
	closed := s.closed
	s.mu.Unlock()
	if closed {
		return nil, ErrClosed
	}

	cmd := exec.CommandContext(ctx, s.ffmpeg,
		"-v", "error",
		"-f", "v4l2",
		"-i", s.path,
		"-frames:v", "1",
		"-f", "image2pipe",
		"-vcodec", "mjpeg",
		"-",
	)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("ffmpeg capture from %s: %w (%s)", s.path, err, bytes.TrimSpace(stderr.Bytes()))
	}
	return stdout.Bytes(), nil
}

func (s *deviceStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

// File serves a still image from disk as every frame.
type File struct {
	Path string
}

// Open fails when the file cannot be read.
func (f File) Open(ctx context.Context) (capture.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(f.Path); err != nil {
		return nil, fmt.Errorf("image %s: %w", f.Path, err)
	}
	return &fileStream{path: f.Path}, nil
}

type fileStream struct {
	mu     sync.Mutex
	path   string
	closed bool
}

func (s *fileStream) Frame(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", s.path, err)
	}
	return data, nil
}

func (s *fileStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	return nil
}

var (
	_ capture.Camera = Device{}
	_ capture.Camera = File{}
)
