package capture

import (
	"context"
	"fmt"
	"strings"
)

// Camera opens a live feed for the photo modality.
type Camera interface {
	Open(ctx context.Context) (Stream, error)
}

// Stream is an open camera feed. Close must be safe to call more than once.
type Stream interface {
	Frame(ctx context.Context) ([]byte, error)
	Close() error
}

// Devices are the resources a modality may acquire when leaving Idle.
type Devices struct {
	Camera Camera
}

// Input is the modality-specific payload carried while Acquiring and
// Analyzing. The variant set is closed to this package; a new modality is a
// new Input type plus an entry in acquirers.
type Input interface {
	Modality() Modality
	// Payload returns the raw input: the text bytes or the captured frame.
	Payload() []byte
	// Blank reports whether submitting now would be rejected.
	Blank() bool

	freeze(ctx context.Context) (Input, error)
	analyze(ctx context.Context, a Analyzer) (string, error)
	release() error
}

// acquirers run the Idle exit action for each modality.
var acquirers = map[Modality]func(ctx context.Context, dev Devices) (Input, error){
	ModalityText:  acquireText,
	ModalityPhoto: acquirePhoto,
}

// TextInput is the edit buffer of the text modality.
type TextInput struct {
	Text string
}

func acquireText(context.Context, Devices) (Input, error) {
	return TextInput{}, nil
}

func (TextInput) Modality() Modality { return ModalityText }

func (t TextInput) Payload() []byte { return []byte(t.Text) }

func (t TextInput) Blank() bool { return strings.TrimSpace(t.Text) == "" }

func (t TextInput) freeze(context.Context) (Input, error) {
	if t.Blank() {
		return nil, fmt.Errorf("%w: message is empty", ErrInputRejected)
	}
	return t, nil
}

func (t TextInput) analyze(ctx context.Context, a Analyzer) (string, error) {
	return a.textScorer().ScoreText(ctx, t.Text)
}

func (TextInput) release() error { return nil }

// PhotoInput holds the open camera stream until a frame is captured, then
// only the frame.
type PhotoInput struct {
	stream Stream
	Frame  []byte
}

func acquirePhoto(ctx context.Context, dev Devices) (Input, error) {
	if dev.Camera == nil {
		return nil, fmt.Errorf("%w: no camera configured", ErrResourceUnavailable)
	}
	stream, err := dev.Camera.Open(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrResourceUnavailable, err)
	}
	return &PhotoInput{stream: stream}, nil
}

func (*PhotoInput) Modality() Modality { return ModalityPhoto }

func (p *PhotoInput) Payload() []byte { return p.Frame }

// Live reports whether the camera stream is still held.
func (p *PhotoInput) Live() bool { return p.stream != nil }

func (p *PhotoInput) Blank() bool { return len(p.Frame) == 0 && p.stream == nil }

// freeze captures a frame and releases the camera before returning. A
// failed capture keeps the stream so the user can try again.
func (p *PhotoInput) freeze(ctx context.Context) (Input, error) {
	if len(p.Frame) > 0 {
		return &PhotoInput{Frame: p.Frame}, p.release()
	}
	if p.stream == nil {
		return nil, fmt.Errorf("%w: camera is not open", ErrInputRejected)
	}
	frame, err := p.stream.Frame(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: capturing frame: %w", ErrInputRejected, err)
	}
	if len(frame) == 0 {
		return nil, fmt.Errorf("%w: captured frame is empty", ErrInputRejected)
	}
	// The frame is ours now; a close failure must not block analysis.
	_ = p.release()
	return &PhotoInput{Frame: frame}, nil
}

func (p *PhotoInput) analyze(ctx context.Context, a Analyzer) (string, error) {
	if a.Photo == nil {
		return "", fmt.Errorf("no photo classifier configured")
	}
	return a.Photo.Classify(ctx, p.Frame)
}

func (p *PhotoInput) release() error {
	if p.stream == nil {
		return nil
	}
	err := p.stream.Close()
	p.stream = nil
	if err != nil {
		return fmt.Errorf("closing camera: %w", err)
	}
	return nil
}
