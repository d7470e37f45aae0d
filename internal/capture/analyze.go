package capture

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/justestif/moodtunes/internal/emotion"
)

// DefaultTimeout bounds how long analysis may wait on a classifier.
const DefaultTimeout = 15 * time.Second

// TextScorer turns a message into a raw emotion label.
type TextScorer interface {
	ScoreText(ctx context.Context, text string) (string, error)
}

// PhotoClassifier turns a captured frame into a raw emotion label.
type PhotoClassifier interface {
	Classify(ctx context.Context, frame []byte) (string, error)
}

// Analyzer runs the Analyzing step.
type Analyzer struct {
	Text    TextScorer      // defaults to LexiconScorer{}
	Photo   PhotoClassifier // required for photo sessions
	Timeout time.Duration   // defaults to DefaultTimeout

	// FallbackNeutral resolves failed analyses to neutral instead of
	// returning the session to Idle.
	FallbackNeutral bool
}

func (a Analyzer) textScorer() TextScorer {
	if a.Text == nil {
		return LexiconScorer{}
	}
	return a.Text
}

func (a Analyzer) timeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultTimeout
	}
	return a.Timeout
}

// Run analyzes an Analyzing session and returns it in Result. On failure
// the returned session is Idle and the error wraps ErrClassificationFailed,
// unless FallbackNeutral is set.
func (a Analyzer) Run(ctx context.Context, s Session) (Session, error) {
	if s.State != StateAnalyzing {
		return s, transitionError("analyze", s.State)
	}

	ctx, cancel := context.WithTimeout(ctx, a.timeout())
	defer cancel()

	raw, err := s.Input.analyze(ctx, a)
	if err == nil {
		return Resolve(s, raw)
	}

	if errors.Is(err, context.DeadlineExceeded) {
		err = fmt.Errorf("no answer within %s: %w", a.timeout(), err)
	}
	if a.FallbackNeutral {
		return Resolve(s, string(emotion.Neutral))
	}
	err = fmt.Errorf("%w: %w", ErrClassificationFailed, err)
	return Fail(s, err), err
}

// LexiconScorer scores text with the keyword/emoji lexicons after an
// optional artificial delay.
type LexiconScorer struct {
	Delay time.Duration
}

// ScoreText implements TextScorer.
func (l LexiconScorer) ScoreText(ctx context.Context, text string) (string, error) {
	if l.Delay > 0 {
		timer := time.NewTimer(l.Delay)
		defer timer.Stop()
		select {
		case <-timer.C:
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	return emotion.ScoreText(text).String(), nil
}
