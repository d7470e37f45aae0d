package playback

import (
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/justestif/moodtunes/internal/catalog"
)

// Deck holds the handles of a displayed song list, one per song.
type Deck struct {
	backend Backend
	logger  *slog.Logger
	notify  func()

	mu      sync.Mutex
	handles map[string]*Handle
	order   []string
	epoch   uint64 // bumped by Close
}

// DeckOption configures a Deck.
type DeckOption func(*Deck)

// WithDeckLogger sets the logger for load failures.
func WithDeckLogger(l *slog.Logger) DeckOption {
	return func(d *Deck) {
		if l != nil {
			d.logger = l
		}
	}
}

// WithDeckNotify is passed to every handle as WithNotify.
func WithDeckNotify(fn func()) DeckOption {
	return func(d *Deck) { d.notify = fn }
}

// NewDeck creates an empty deck.
func NewDeck(b Backend, opts ...DeckOption) *Deck {
	d := &Deck{
		backend: b,
		logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
		handles: make(map[string]*Handle),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Show makes songs the displayed list. Handles of songs that left the list
// are disposed, songs whose audio changed are rebound and new songs get a
// handle. A song whose audio fails to load gets an inert handle.
//
// Loading happens without the deck lock, so Handle and Playing stay
// responsive meanwhile. Calls to Show must not overlap. If Close runs
// while Show is loading, the handles Show built are disposed as well.
func (d *Deck) Show(songs []catalog.Song) error {
	d.mu.Lock()
	epoch := d.epoch
	current := make(map[string]*Handle, len(d.handles))
	for id, h := range d.handles {
		current[id] = h
	}
	d.mu.Unlock()

	var errs []error
	next := make(map[string]*Handle, len(songs))
	order := make([]string, 0, len(songs))

	for _, s := range songs {
		if _, ok := next[s.ID]; ok {
			continue
		}
		order = append(order, s.ID)

		if h, ok := current[s.ID]; ok {
			if err := h.Rebind(s.AudioURL); err != nil {
				d.logger.Warn("rebinding audio failed", "song", s.ID, "error", err)
				errs = append(errs, err)
			}
			next[s.ID] = h
			continue
		}

		h, err := Create(d.backend, s.AudioURL, WithNotify(d.notify))
		if err != nil {
			d.logger.Warn("loading audio failed", "song", s.ID, "url", s.AudioURL, "error", err)
			errs = append(errs, err)
			h, _ = Create(d.backend, "")
		}
		next[s.ID] = h
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	if d.epoch != epoch {
		for _, h := range next {
			errs = append(errs, h.Dispose())
		}
		return errors.Join(errs...)
	}
	for id, h := range d.handles {
		if _, ok := next[id]; !ok {
			errs = append(errs, h.Dispose())
		}
	}
	d.handles = next
	d.order = order
	return errors.Join(errs...)
}

// Handle returns the handle of a displayed song.
func (d *Deck) Handle(id string) (*Handle, bool) {
	d.mu.Lock()
	defer d.mu.Unlock()
	h, ok := d.handles[id]
	return h, ok
}

// Toggle flips playback of one song.
func (d *Deck) Toggle(id string) (bool, error) {
	h, ok := d.Handle(id)
	if !ok {
		return false, nil
	}
	return h.Toggle()
}

// Playing returns the IDs of songs currently playing, in display order.
func (d *Deck) Playing() []string {
	d.mu.Lock()
	handles := make([]*Handle, 0, len(d.order))
	for _, id := range d.order {
		handles = append(handles, d.handles[id])
	}
	order := d.order
	d.mu.Unlock()

	var out []string
	for i, h := range handles {
		if h.Playing() {
			out = append(out, order[i])
		}
	}
	return out
}

// Close disposes every handle, including any a running Show is still
// loading. The deck stays usable for a later Show.
func (d *Deck) Close() error {
	d.mu.Lock()
	d.epoch++
	handles := d.handles
	d.handles = make(map[string]*Handle)
	d.order = nil
	d.mu.Unlock()

	var errs []error
	for _, h := range handles {
		errs = append(errs, h.Dispose())
	}
	return errors.Join(errs...)
}
