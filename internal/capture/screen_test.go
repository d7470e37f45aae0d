package capture

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/justestif/moodtunes/internal/emotion"
)

func waitSettled(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("analysis did not settle")
	}
}

func TestScreen_TextFlow(t *testing.T) {
	ctx := context.Background()
	sc := NewScreen(ModalityText, Devices{}, Analyzer{})

	if _, err := sc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Edit("I feel so sad and heartbroken 💔"); err != nil {
		t.Fatal(err)
	}

	done, err := sc.Submit(ctx)
	if err != nil {
		t.Fatalf("Submit() error = %v", err)
	}
	waitSettled(t, done)

	s := sc.Session()
	if e, ok := s.Result(); !ok || e != emotion.Sad {
		t.Fatalf("result = %q, %v; want sad", e, ok)
	}

	rec := &fakeRecommender{}
	if _, err := sc.Proceed(ctx, rec); err != nil {
		t.Fatal(err)
	}
	if rec.got != emotion.Sad {
		t.Errorf("recommender got %q", rec.got)
	}
}

func TestScreen_BlocksSecondSubmission(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frame: []byte{1, 2, 3}}
	clf := &fakeClassifier{label: "joy", release: make(chan struct{})}
	sc := NewScreen(ModalityPhoto, Devices{Camera: &fakeCamera{stream: stream}}, Analyzer{Photo: clf})

	if _, err := sc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	done, err := sc.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}

	if _, err := sc.Submit(ctx); !errors.Is(err, ErrAnalysisPending) {
		t.Errorf("second Submit() error = %v, want ErrAnalysisPending", err)
	}
	if got := sc.Session().State; got != StateAnalyzing {
		t.Errorf("state = %s, want analyzing", got)
	}

	close(clf.release)
	waitSettled(t, done)

	if e, _ := sc.Session().Result(); e != emotion.Happy {
		t.Errorf("result = %q, want happy", e)
	}
}

func TestScreen_ResetDiscardsPendingAnalysis(t *testing.T) {
	ctx := context.Background()
	stream := &fakeStream{frame: []byte{9}}
	clf := &fakeClassifier{label: "anger", release: make(chan struct{})}
	sc := NewScreen(ModalityPhoto, Devices{Camera: &fakeCamera{stream: stream}}, Analyzer{Photo: clf})

	if _, err := sc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	done, err := sc.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}

	fresh := sc.Reset()
	if fresh.State != StateIdle {
		t.Fatalf("state after reset = %s", fresh.State)
	}

	// Reset cancels the analysis context, so the classifier returns early.
	waitSettled(t, done)

	s := sc.Session()
	if s.ID != fresh.ID || s.State != StateIdle {
		t.Errorf("stale analysis leaked into session: %+v", s)
	}
}

func TestScreen_CameraFailureStaysIdle(t *testing.T) {
	sc := NewScreen(ModalityPhoto, Devices{Camera: &fakeCamera{openErr: errors.New("device busy")}}, Analyzer{})

	s, err := sc.Start(context.Background())
	if !errors.Is(err, ErrResourceUnavailable) {
		t.Fatalf("Start() error = %v", err)
	}
	if s.State != StateIdle || sc.Session().Error == "" {
		t.Errorf("session = %+v, want idle with error", sc.Session())
	}
}

func TestScreen_AnalysisFailureReturnsToIdle(t *testing.T) {
	ctx := context.Background()
	clf := &fakeClassifier{err: errors.New("upstream 500")}
	sc := NewScreen(ModalityPhoto, Devices{Camera: &fakeCamera{stream: &fakeStream{frame: []byte{1}}}}, Analyzer{Photo: clf})

	if _, err := sc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	done, err := sc.Submit(ctx)
	if err != nil {
		t.Fatal(err)
	}
	waitSettled(t, done)

	s := sc.Session()
	if s.State != StateIdle || s.Error == "" {
		t.Errorf("session = %+v, want idle with error", s)
	}

	// The user can try again.
	if _, err := sc.Start(ctx); err != nil {
		t.Errorf("retry Start() error = %v", err)
	}
}

func TestScreen_Wait(t *testing.T) {
	ctx := context.Background()
	sc := NewScreen(ModalityText, Devices{}, Analyzer{Text: LexiconScorer{Delay: 20 * time.Millisecond}})

	if _, err := sc.Start(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Edit("hyped for the party 🚀"); err != nil {
		t.Fatal(err)
	}
	if _, err := sc.Submit(ctx); err != nil {
		t.Fatal(err)
	}

	wctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	s, err := sc.Wait(wctx)
	if err != nil {
		t.Fatalf("Wait() error = %v", err)
	}
	if e, _ := s.Result(); e != emotion.Excited {
		t.Errorf("result = %q, want excited", e)
	}
}

func TestScreen_CloseReleasesCamera(t *testing.T) {
	stream := &fakeStream{}
	sc := NewScreen(ModalityPhoto, Devices{Camera: &fakeCamera{stream: stream}}, Analyzer{})
	if _, err := sc.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	sc.Close()
	if stream.closeCount() != 1 {
		t.Errorf("camera closed %d times, want 1", stream.closeCount())
	}
}
