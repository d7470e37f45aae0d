package capture

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

// fakeStream is a camera feed that records whether it was closed.
type fakeStream struct {
	mu       sync.Mutex
	frame    []byte
	frameErr error
	closed   int
}

func (f *fakeStream) Frame(context.Context) ([]byte, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.frame, f.frameErr
}

func (f *fakeStream) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeStream) closeCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

type fakeCamera struct {
	stream  *fakeStream
	openErr error
	opens   int
}

func (c *fakeCamera) Open(context.Context) (Stream, error) {
	c.opens++
	if c.openErr != nil {
		return nil, c.openErr
	}
	return c.stream, nil
}

// fakeClassifier answers with label/err, optionally after release is closed.
type fakeClassifier struct {
	label   string
	err     error
	release chan struct{}
	frames  [][]byte
}

func (f *fakeClassifier) Classify(ctx context.Context, frame []byte) (string, error) {
	f.frames = append(f.frames, frame)
	if f.release != nil {
		select {
		case <-f.release:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return f.label, f.err
}

type fakeRecommender struct {
	got emotion.Emotion
}

func (f *fakeRecommender) Recommend(_ context.Context, e emotion.Emotion) ([]catalog.Song, error) {
	f.got = e
	return []catalog.Song{{ID: "s1", Emotion: e}}, nil
}

func startedText(t *testing.T, text string) Session {
	t.Helper()
	s, err := Start(context.Background(), NewSession(ModalityText), Devices{})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if text != "" {
		if s, err = Edit(s, text); err != nil {
			t.Fatalf("Edit() error = %v", err)
		}
	}
	return s
}

func TestTextFlow(t *testing.T) {
	ctx := context.Background()
	s := startedText(t, "I am so happy and excited")
	if s.State != StateAcquiring {
		t.Fatalf("state = %s, want acquiring", s.State)
	}

	s, err := Submit(ctx, s)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if s.State != StateAnalyzing {
		t.Fatalf("state = %s, want analyzing", s.State)
	}

	s, err = Analyzer{}.Run(ctx, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	got, ok := s.Result()
	if !ok || got != emotion.Happy {
		t.Fatalf("Result() = %q, %v; want happy", got, ok)
	}

	rec := &fakeRecommender{}
	songs, err := Proceed(ctx, s, rec)
	if err != nil {
		t.Fatalf("Proceed() error = %v", err)
	}
	if rec.got != emotion.Happy || len(songs) != 1 {
		t.Errorf("recommender got %q and returned %d songs", rec.got, len(songs))
	}
}

func TestSubmit_RejectsBlankText(t *testing.T) {
	for _, text := range []string{"", "   ", "\n\t "} {
		s := startedText(t, text)
		next, err := Submit(context.Background(), s)
		if !errors.Is(err, ErrInputRejected) {
			t.Errorf("Submit(%q) error = %v, want ErrInputRejected", text, err)
		}
		if next.State != StateAcquiring {
			t.Errorf("Submit(%q) state = %s, want acquiring", text, next.State)
		}
	}
}

func TestSubmit_WhileAnalyzing(t *testing.T) {
	s := startedText(t, "calm")
	s, err := Submit(context.Background(), s)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := Submit(context.Background(), s); !errors.Is(err, ErrAnalysisPending) {
		t.Errorf("second Submit() error = %v, want ErrAnalysisPending", err)
	}
}

func TestInvalidTransitions(t *testing.T) {
	ctx := context.Background()
	idle := NewSession(ModalityText)

	if _, err := Edit(idle, "x"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Edit from idle error = %v", err)
	}
	if _, err := Submit(ctx, idle); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Submit from idle error = %v", err)
	}
	if _, err := Resolve(idle, "joy"); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Resolve from idle error = %v", err)
	}
	if _, err := Proceed(ctx, idle, &fakeRecommender{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Proceed from idle error = %v", err)
	}

	acquiring := startedText(t, "")
	if _, err := Start(ctx, acquiring, Devices{}); !errors.Is(err, ErrInvalidTransition) {
		t.Errorf("Start from acquiring error = %v", err)
	}
}

func TestAppendGlyph(t *testing.T) {
	s := startedText(t, "today")
	s, err := AppendGlyph(s, "💔")
	if err != nil {
		t.Fatal(err)
	}
	if got := s.Text(); got != "today 💔" {
		t.Errorf("Text() = %q", got)
	}
}

func TestReset_FromEveryState(t *testing.T) {
	ctx := context.Background()

	acquiring := startedText(t, "so sad")
	analyzing, _ := Submit(ctx, startedText(t, "so sad"))
	result, _ := Resolve(analyzing, "sadness")

	for _, s := range []Session{acquiring, analyzing, result} {
		t.Run(s.State.String(), func(t *testing.T) {
			s.Error = "stale"
			next := Reset(s)
			if next.State != StateIdle {
				t.Errorf("state = %s, want idle", next.State)
			}
			if next.Input != nil {
				t.Error("input not cleared")
			}
			if next.Emotion != "" {
				t.Error("emotion not cleared")
			}
			if next.Error != "" {
				t.Error("error not cleared")
			}
			if next.ID == s.ID {
				t.Error("reset should start a new session")
			}
			if next.Modality != s.Modality {
				t.Errorf("modality = %s, want %s", next.Modality, s.Modality)
			}
		})
	}
}

func TestPhotoFlow_ReleasesCameraOnCapture(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frame: []byte{0xff, 0xd8}}
	cam := &fakeCamera{stream: stream}

	s, err := Start(ctx, NewSession(ModalityPhoto), Devices{Camera: cam})
	if err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State != StateAcquiring {
		t.Fatalf("state = %s, want acquiring", s.State)
	}

	s, err = Submit(ctx, s)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	if stream.closeCount() != 1 {
		t.Errorf("camera closed %d times after capture, want 1", stream.closeCount())
	}

	clf := &fakeClassifier{label: "surprise"}
	s, err = Analyzer{Photo: clf}.Run(ctx, s)
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if s.Emotion != emotion.Excited {
		t.Errorf("emotion = %q, want excited", s.Emotion)
	}
	if len(clf.frames) != 1 || len(clf.frames[0]) != 2 {
		t.Errorf("classifier saw frames %v", clf.frames)
	}
}

func TestPhotoFlow_CameraUnavailable(t *testing.T) {
	cam := &fakeCamera{openErr: errors.New("permission denied")}
	s, err := Start(context.Background(), NewSession(ModalityPhoto), Devices{Camera: cam})
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("Start() error = %v, want ErrResourceUnavailable", err)
	}
	if s.State != StateIdle {
		t.Errorf("state = %s, want idle", s.State)
	}
	if s.Error == "" {
		t.Error("expected user-visible error")
	}
	if cam.opens != 1 {
		t.Errorf("camera opened %d times, want exactly 1 (no auto retry)", cam.opens)
	}

	s = Reset(s)
	if s.Error != "" {
		t.Error("reset should clear camera error")
	}
}

func TestPhotoFlow_NoCamera(t *testing.T) {
	_, err := Start(context.Background(), NewSession(ModalityPhoto), Devices{})
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Errorf("Start() error = %v, want ErrResourceUnavailable", err)
	}
}

func TestPhotoFlow_EmptyFrameKeepsCamera(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{}
	s, err := Start(ctx, NewSession(ModalityPhoto), Devices{Camera: &fakeCamera{stream: stream}})
	if err != nil {
		t.Fatal(err)
	}

	s, err = Submit(ctx, s)
	if !errors.Is(err, ErrInputRejected) {
		t.Fatalf("Submit() error = %v, want ErrInputRejected", err)
	}
	if s.State != StateAcquiring {
		t.Errorf("state = %s, want acquiring", s.State)
	}
	if stream.closeCount() != 0 {
		t.Error("camera released after failed capture")
	}

	Reset(s)
	if stream.closeCount() != 1 {
		t.Errorf("camera closed %d times after cancel, want 1", stream.closeCount())
	}
}

func TestAnalyzer_Failure(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frame: []byte{1}}
	s, _ := Start(ctx, NewSession(ModalityPhoto), Devices{Camera: &fakeCamera{stream: stream}})
	s, _ = Submit(ctx, s)

	clf := &fakeClassifier{err: errors.New("model offline")}
	next, err := Analyzer{Photo: clf}.Run(ctx, s)
	if !errors.Is(err, ErrClassificationFailed) {
		t.Fatalf("Run() error = %v, want ErrClassificationFailed", err)
	}
	if next.State != StateIdle {
		t.Errorf("state = %s, want idle", next.State)
	}
	if next.Error == "" || next.Input != nil {
		t.Errorf("failed session = %+v", next)
	}

	next, err = Analyzer{Photo: clf, FallbackNeutral: true}.Run(ctx, s)
	if err != nil {
		t.Fatalf("Run() with fallback error = %v", err)
	}
	if next.Emotion != emotion.Neutral {
		t.Errorf("fallback emotion = %q, want neutral", next.Emotion)
	}
}

func TestAnalyzer_Timeout(t *testing.T) {
	ctx := context.Background()
	s, _ := Submit(ctx, startedText(t, "zen"))

	a := Analyzer{Text: LexiconScorer{Delay: time.Second}, Timeout: 10 * time.Millisecond}
	next, err := a.Run(ctx, s)
	if !errors.Is(err, ErrClassificationFailed) {
		t.Fatalf("Run() error = %v, want ErrClassificationFailed", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() error = %v, want deadline exceeded", err)
	}
	if next.State != StateIdle {
		t.Errorf("state = %s, want idle", next.State)
	}
}

func TestParseModality(t *testing.T) {
	if m, err := ParseModality(" Photo "); err != nil || m != ModalityPhoto {
		t.Errorf("ParseModality(Photo) = %q, %v", m, err)
	}
	if _, err := ParseModality("voice"); err == nil {
		t.Error("expected error for unknown modality")
	}
}
