package capture

import (
	"context"
	"io"
	"log/slog"
	"sync"

	"github.com/justestif/moodtunes/internal/catalog"
)

// Screen owns the single live session of one front-end screen. Analysis
// runs in the background so the screen stays responsive: while it is
// pending further submissions fail with ErrAnalysisPending, but Reset and
// Close still work and discard the pending result.
type Screen struct {
	mu       sync.Mutex
	session  Session
	devices  Devices
	analyzer Analyzer
	logger   *slog.Logger

	cancel  context.CancelFunc // cancels the in-flight analysis
	settled chan struct{}      // closed when the in-flight analysis finishes
}

// ScreenOption configures a Screen.
type ScreenOption func(*Screen)

// WithLogger sets the logger used for transition records.
func WithLogger(l *slog.Logger) ScreenOption {
	return func(sc *Screen) {
		if l != nil {
			sc.logger = l
		}
	}
}

// NewScreen creates a screen holding an Idle session for the modality.
func NewScreen(m Modality, dev Devices, a Analyzer, opts ...ScreenOption) *Screen {
	sc := &Screen{
		session:  NewSession(m),
		devices:  dev,
		analyzer: a,
		logger:   slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(sc)
	}
	return sc
}

// Session returns a snapshot of the live session.
func (sc *Screen) Session() Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.session
}

// Start runs Idle's exit action (opening the camera for photo screens).
func (sc *Screen) Start(ctx context.Context) (Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.apply(func(s Session) (Session, error) { return Start(ctx, s, sc.devices) })
}

// Edit replaces the text buffer.
func (sc *Screen) Edit(text string) (Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.apply(func(s Session) (Session, error) { return Edit(s, text) })
}

// AppendGlyph appends a quick-pick glyph to the text buffer.
func (sc *Screen) AppendGlyph(glyph string) (Session, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.apply(func(s Session) (Session, error) { return AppendGlyph(s, glyph) })
}

// Submit moves the session to Analyzing and starts analysis in the
// background. The returned channel is closed once the analysis settles.
// The analysis is not bound to ctx, only to Reset/Close and the analyzer
// timeout.
func (sc *Screen) Submit(ctx context.Context) (<-chan struct{}, error) {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	next, err := sc.apply(func(s Session) (Session, error) { return Submit(ctx, s) })
	if err != nil {
		return nil, err
	}

	actx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	sc.cancel = cancel
	sc.settled = done

	go sc.analyze(actx, cancel, next, done)
	return done, nil
}

func (sc *Screen) analyze(ctx context.Context, cancel context.CancelFunc, snap Session, done chan struct{}) {
	defer close(done)
	defer cancel()

	result, err := sc.analyzer.Run(ctx, snap)

	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.session.ID != snap.ID || sc.session.State != StateAnalyzing {
		sc.logger.Debug("discarding stale analysis", "session", snap.ID)
		return
	}
	sc.cancel = nil
	sc.settled = nil
	sc.transition(result)
	if err != nil {
		sc.logger.Warn("analysis failed", "session", snap.ID, "modality", snap.Modality, "error", err)
	}
}

// Wait blocks until no analysis is pending and returns the session.
func (sc *Screen) Wait(ctx context.Context) (Session, error) {
	sc.mu.Lock()
	settled := sc.settled
	sc.mu.Unlock()

	if settled != nil {
		select {
		case <-settled:
		case <-ctx.Done():
			return sc.Session(), ctx.Err()
		}
	}
	return sc.Session(), nil
}

// Reset cancels any pending analysis, releases the camera and replaces the
// session with a fresh Idle one.
func (sc *Screen) Reset() Session {
	sc.mu.Lock()
	defer sc.mu.Unlock()

	if sc.cancel != nil {
		sc.cancel()
		sc.cancel = nil
		sc.settled = nil
	}
	sc.transition(Reset(sc.session))
	return sc.session
}

// Proceed hands the result to the recommender.
func (sc *Screen) Proceed(ctx context.Context, rec Recommender) ([]catalog.Song, error) {
	return Proceed(ctx, sc.Session(), rec)
}

// Close discards the screen's session. Call it when navigating away.
func (sc *Screen) Close() {
	sc.Reset()
}

// apply runs a transition on the live session. Callers hold sc.mu.
func (sc *Screen) apply(fn func(Session) (Session, error)) (Session, error) {
	next, err := fn(sc.session)
	sc.transition(next)
	return next, err
}

func (sc *Screen) transition(next Session) {
	prev := sc.session
	sc.session = next
	if prev.State != next.State || prev.ID != next.ID {
		sc.logger.Debug("capture transition",
			"session", next.ID,
			"modality", next.Modality,
			"from", prev.State,
			"to", next.State,
		)
	}
}
