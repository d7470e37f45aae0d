// Package playback manages per-song audio handles. Each displayed song owns
// at most one Handle; handles are independent, so two songs may play at the
// same time.
package playback

import (
	"errors"
	"fmt"
	"sync"
)

// ErrDisposed is returned when a disposed handle is used.
var ErrDisposed = errors.New("playback handle disposed")

// Player is one loaded audio resource.
type Player interface {
	Play() error
	Pause() error
	// Close releases the resource. It is only called on a paused player.
	Close() error
}

// Backend loads audio sources. onEnd is called from any goroutine when the
// track plays to its natural end.
type Backend interface {
	Load(url string, onEnd func()) (Player, error)
}

// Handle binds one song item to its audio resource and play state.
type Handle struct {
	mu       sync.Mutex
	backend  Backend
	url      string
	player   Player
	playing  bool
	disposed bool
	gen      uint64 // bumped on every rebind; stale end callbacks are ignored
	notify   func()
}

// Option configures a Handle.
type Option func(*Handle)

// WithNotify registers fn to run after the play state changes on its own,
// that is at the natural end of a track.
func WithNotify(fn func()) Option {
	return func(h *Handle) { h.notify = fn }
}

// Create binds a handle to url. A song without a source gets an inert
// handle that never plays.
func Create(b Backend, url string, opts ...Option) (*Handle, error) {
	h := &Handle{backend: b}
	for _, opt := range opts {
		opt(h)
	}
	h.gen = 1
	h.url = url
	p, err := h.load(url, h.gen)
	if err != nil {
		return nil, err
	}
	h.player = p
	return h, nil
}

// load binds a fresh resource for url. It runs without h.mu so a backend
// may call onEnd before Load returns.
func (h *Handle) load(url string, gen uint64) (Player, error) {
	if url == "" {
		return nil, nil
	}
	if h.backend == nil {
		return nil, fmt.Errorf("no audio backend for %s", url)
	}
	p, err := h.backend.Load(url, func() { h.ended(gen) })
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", url, err)
	}
	return p, nil
}

func (h *Handle) ended(gen uint64) {
	h.mu.Lock()
	if gen != h.gen || !h.playing {
		h.mu.Unlock()
		return
	}
	h.playing = false
	notify := h.notify
	h.mu.Unlock()

	if notify != nil {
		notify()
	}
}

// URL returns the bound source.
func (h *Handle) URL() string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.url
}

// Playable reports whether the handle holds an audio resource.
func (h *Handle) Playable() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.player != nil
}

// Playing reports the local play flag.
func (h *Handle) Playing() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.playing
}

// Toggle starts playback if paused and pauses it if playing. It returns the
// new play flag. Inert handles stay paused.
func (h *Handle) Toggle() (bool, error) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return false, ErrDisposed
	}
	if h.player == nil {
		return false, nil
	}

	if h.playing {
		if err := h.player.Pause(); err != nil {
			return h.playing, fmt.Errorf("pausing: %w", err)
		}
	} else {
		if err := h.player.Play(); err != nil {
			return h.playing, fmt.Errorf("playing: %w", err)
		}
	}
	h.playing = !h.playing
	return h.playing, nil
}

// Dispose stops playback and releases the resource. It must be called
// before the handle is dropped. Calling it again is a no-op.
func (h *Handle) Dispose() error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.disposed {
		return nil
	}
	h.disposed = true
	return h.release()
}

// Rebind disposes the current resource and binds url instead. The new
// source loads outside the handle lock; if the handle is disposed or
// rebound again meanwhile, the loaded resource is released.
func (h *Handle) Rebind(url string) error {
	h.mu.Lock()
	if h.disposed {
		h.mu.Unlock()
		return ErrDisposed
	}
	if url == h.url {
		h.mu.Unlock()
		return nil
	}
	if err := h.release(); err != nil {
		h.mu.Unlock()
		return err
	}
	h.url = url
	gen := h.gen
	h.mu.Unlock()

	p, err := h.load(url, gen)
	if err != nil || p == nil {
		return err
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.disposed || gen != h.gen {
		if err := p.Close(); err != nil {
			return fmt.Errorf("releasing stale %s: %w", url, err)
		}
		return nil
	}
	h.player = p
	return nil
}

func (h *Handle) release() error {
	h.gen++
	p := h.player
	h.player = nil
	h.playing = false
	if p == nil {
		return nil
	}

	// Pause first so the device goes quiet even when Close fails.
	pauseErr := p.Pause()
	closeErr := p.Close()
	if err := errors.Join(pauseErr, closeErr); err != nil {
		return fmt.Errorf("releasing %s: %w", h.url, err)
	}
	return nil
}
