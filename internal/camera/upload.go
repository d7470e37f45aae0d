package camera

import (
	"context"
	"errors"
	"sync"

	"github.com/justestif/moodtunes/internal/capture"
)

// ErrNoFrame is returned when a frame is requested before any was pushed.
var ErrNoFrame = errors.New("no frame received yet")

// MaxFrameSize bounds a single pushed frame.
const MaxFrameSize = 8 << 20

// Upload is a camera fed by a remote client. The web front-end owns the
// real device; it pushes preview frames with Put and the most recent frame
// is what gets captured.
type Upload struct {
	mu     sync.Mutex
	stream *uploadStream
}

// NewUpload creates an Upload camera with no open stream.
func NewUpload() *Upload {
	return &Upload{}
}

// Open starts accepting frames. Opening again replaces the previous stream.
func (u *Upload) Open(ctx context.Context) (capture.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.stream != nil {
		_ = u.stream.Close()
	}
	u.stream = &uploadStream{}
	return u.stream, nil
}

// Put stores frame as the latest frame. It returns ErrClosed when no stream
// is open, which happens once the frame was captured or the session reset.
func (u *Upload) Put(frame []byte) error {
	if len(frame) > MaxFrameSize {
		return errors.New("frame too large")
	}
	u.mu.Lock()
	s := u.stream
	u.mu.Unlock()
	if s == nil {
		return ErrClosed
	}
	return s.put(frame)
}

// Live reports whether a stream is open and accepting frames.
func (u *Upload) Live() bool {
	u.mu.Lock()
	defer u.mu.Unlock()
	return u.stream != nil && !u.stream.isClosed()
}

type uploadStream struct {
	mu     sync.Mutex
	frame  []byte
	closed bool
}

func (s *uploadStream) put(frame []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return ErrClosed
	}
	s.frame = append(s.frame[:0], frame...)
	return nil
}

func (s *uploadStream) isClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

func (s *uploadStream) Frame(context.Context) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, ErrClosed
	}
	if len(s.frame) == 0 {
		return nil, ErrNoFrame
	}
	out := make([]byte, len(s.frame))
	copy(out, s.frame)
	return out, nil
}

func (s *uploadStream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.frame = nil
	return nil
}

var _ capture.Camera = (*Upload)(nil)
