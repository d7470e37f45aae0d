package web

import (
	"errors"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/justestif/moodtunes/internal/camera"
	"github.com/justestif/moodtunes/internal/capture"
)

// DefaultScreenTTL is how long an untouched screen is kept.
const DefaultScreenTTL = time.Hour

// ErrScreenNotFound is returned for unknown or expired screens.
var ErrScreenNotFound = errors.New("screen not found")

// screen is one client screen: its capture flow and, for photo screens
// without a shared device, the camera the client pushes frames into.
type screen struct {
	id       string
	capture  *capture.Screen
	upload   *camera.Upload
	lastSeen time.Time
}

// ScreenStore keeps the live screens in memory.
type ScreenStore struct {
	mu       sync.Mutex
	screens  map[string]*screen
	ttl      time.Duration
	analyzer capture.Analyzer
	camera   capture.Camera // shared device; nil gives each photo screen an Upload
	logger   *slog.Logger
	now      func() time.Time
}

// NewScreenStore creates a store whose screens analyze with a.
func NewScreenStore(a capture.Analyzer, cam capture.Camera, ttl time.Duration, logger *slog.Logger) *ScreenStore {
	if ttl <= 0 {
		ttl = DefaultScreenTTL
	}
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &ScreenStore{
		screens:  make(map[string]*screen),
		ttl:      ttl,
		analyzer: a,
		camera:   cam,
		logger:   logger,
		now:      time.Now,
	}
}

// create opens a new screen with an Idle session for m.
func (s *ScreenStore) create(m capture.Modality) *screen {
	sc := &screen{id: uuid.NewString()}

	var dev capture.Devices
	if m == capture.ModalityPhoto {
		if s.camera != nil {
			dev.Camera = s.camera
		} else {
			sc.upload = camera.NewUpload()
			dev.Camera = sc.upload
		}
	}
	sc.capture = capture.NewScreen(m, dev, s.analyzer, capture.WithLogger(s.logger.With("screen", sc.id)))

	s.mu.Lock()
	sc.lastSeen = s.now()
	s.screens[sc.id] = sc
	s.mu.Unlock()

	return sc
}

// get returns a screen and marks it as used.
func (s *ScreenStore) get(id string) (*screen, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sc, ok := s.screens[id]
	if !ok {
		return nil, ErrScreenNotFound
	}

	// Check if screen has expired
	if s.now().Sub(sc.lastSeen) > s.ttl {
		delete(s.screens, id)
		go sc.capture.Close()
		return nil, ErrScreenNotFound
	}

	sc.lastSeen = s.now()
	return sc, nil
}

// remove closes a screen, releasing its camera.
func (s *ScreenStore) remove(id string) error {
	s.mu.Lock()
	sc, ok := s.screens[id]
	delete(s.screens, id)
	s.mu.Unlock()

	if !ok {
		return ErrScreenNotFound
	}
	sc.capture.Close()
	return nil
}

// Sweep closes every expired screen and returns how many were removed.
func (s *ScreenStore) Sweep() int {
	s.mu.Lock()
	var expired []*screen
	for id, sc := range s.screens {
		if s.now().Sub(sc.lastSeen) > s.ttl {
			expired = append(expired, sc)
			delete(s.screens, id)
		}
	}
	s.mu.Unlock()

	for _, sc := range expired {
		sc.capture.Close()
	}
	if len(expired) > 0 {
		s.logger.Debug("expired screens", "count", len(expired))
	}
	return len(expired)
}

// Len returns the number of live screens.
func (s *ScreenStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.screens)
}

// Close closes every screen.
func (s *ScreenStore) Close() {
	s.mu.Lock()
	all := s.screens
	s.screens = make(map[string]*screen)
	s.mu.Unlock()

	for _, sc := range all {
		sc.capture.Close()
	}
}
