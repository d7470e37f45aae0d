package capture

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

// Session is one run through the capture flow.
type Session struct {
	ID       uuid.UUID
	Modality Modality
	State    State
	Input    Input           // nil while Idle
	Emotion  emotion.Emotion // set only in StateResult
	Error    string          // last user-visible failure, cleared on progress
}

// Recommender is the playlist collaborator a Result is handed to.
type Recommender interface {
	Recommend(ctx context.Context, e emotion.Emotion) ([]catalog.Song, error)
}

// NewSession returns an Idle session for the modality.
func NewSession(m Modality) Session {
	return Session{
		ID:       uuid.New(),
		Modality: m,
		State:    StateIdle,
	}
}

// Result returns the detected emotion once the session reached StateResult.
func (s Session) Result() (emotion.Emotion, bool) {
	if s.State != StateResult {
		return "", false
	}
	return s.Emotion, true
}

// Text returns the text buffer for text sessions, "" otherwise.
func (s Session) Text() string {
	if t, ok := s.Input.(TextInput); ok {
		return t.Text
	}
	return ""
}

// Start leaves Idle. Photo sessions open the camera here; if that fails the
// session stays Idle with Error set and the error wraps
// ErrResourceUnavailable. Nothing is retried automatically.
func Start(ctx context.Context, s Session, dev Devices) (Session, error) {
	if s.State != StateIdle {
		return s, transitionError("start", s.State)
	}
	acquire, ok := acquirers[s.Modality]
	if !ok {
		return s, fmt.Errorf("%w: unknown modality %q", ErrInvalidTransition, s.Modality)
	}

	in, err := acquire(ctx, dev)
	if err != nil {
		s.Error = err.Error()
		return s, err
	}

	s.Input = in
	s.State = StateAcquiring
	s.Error = ""
	return s, nil
}

// Edit replaces the text buffer of an acquiring text session.
func Edit(s Session, text string) (Session, error) {
	if s.State != StateAcquiring {
		return s, transitionError("edit", s.State)
	}
	if _, ok := s.Input.(TextInput); !ok {
		return s, fmt.Errorf("%w: %s input is not editable", ErrInvalidTransition, s.Modality)
	}
	s.Input = TextInput{Text: text}
	return s, nil
}

// AppendGlyph appends a space and the glyph to the text buffer.
func AppendGlyph(s Session, glyph string) (Session, error) {
	return Edit(s, s.Text()+" "+glyph)
}

// Submit moves an acquiring session to Analyzing. Blank input is rejected
// and the session stays Acquiring; a photo submission captures a frame and
// releases the camera before returning.
func Submit(ctx context.Context, s Session) (Session, error) {
	switch s.State {
	case StateAcquiring:
	case StateAnalyzing:
		return s, ErrAnalysisPending
	default:
		return s, transitionError("submit", s.State)
	}

	frozen, err := s.Input.freeze(ctx)
	if err != nil {
		return s, err
	}

	s.Input = frozen
	s.State = StateAnalyzing
	s.Error = ""
	return s, nil
}

// Resolve completes analysis with a raw classifier label.
func Resolve(s Session, raw string) (Session, error) {
	if s.State != StateAnalyzing {
		return s, transitionError("resolve", s.State)
	}
	s.Emotion = emotion.Normalize(raw)
	s.State = StateResult
	return s, nil
}

// Fail abandons analysis: the session returns to Idle without input and
// records the cause for display.
func Fail(s Session, cause error) Session {
	if s.Input != nil {
		_ = s.Input.release()
	}
	s.Input = nil
	s.Emotion = ""
	s.State = StateIdle
	if cause != nil {
		s.Error = cause.Error()
	}
	return s
}

// Reset discards the session and returns a fresh Idle one for the same
// modality. Any camera still held is released first.
func Reset(s Session) Session {
	if s.Input != nil {
		_ = s.Input.release()
	}
	return NewSession(s.Modality)
}

// Proceed hands the detected emotion to the recommender.
func Proceed(ctx context.Context, s Session, rec Recommender) ([]catalog.Song, error) {
	e, ok := s.Result()
	if !ok {
		return nil, transitionError("proceed", s.State)
	}
	songs, err := rec.Recommend(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("recommending songs for %s: %w", e, err)
	}
	return songs, nil
}
