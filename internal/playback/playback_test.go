package playback

import (
	"errors"
	"reflect"
	"sync"
	"testing"
	"time"

	"github.com/justestif/moodtunes/internal/catalog"
)

type fakePlayer struct {
	mu      sync.Mutex
	calls   []string
	onEnd   func()
	playErr error
}

func (p *fakePlayer) record(c string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

func (p *fakePlayer) Play() error {
	p.record("play")
	return p.playErr
}

func (p *fakePlayer) Pause() error {
	p.record("pause")
	return nil
}

func (p *fakePlayer) Close() error {
	p.record("close")
	return nil
}

func (p *fakePlayer) Calls() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]string(nil), p.calls...)
}

type fakeBackend struct {
	players map[string]*fakePlayer
	loadErr error
}

func newFakeBackend() *fakeBackend {
	return &fakeBackend{players: make(map[string]*fakePlayer)}
}

func (b *fakeBackend) Load(url string, onEnd func()) (Player, error) {
	if b.loadErr != nil {
		return nil, b.loadErr
	}
	p := &fakePlayer{onEnd: onEnd}
	b.players[url] = p
	return p, nil
}

func TestHandle_ToggleTwicePauses(t *testing.T) {
	b := newFakeBackend()
	h, err := Create(b, "/musicData/calm.mp3")
	if err != nil {
		t.Fatal(err)
	}

	if playing, err := h.Toggle(); err != nil || !playing {
		t.Fatalf("first Toggle() = %v, %v; want playing", playing, err)
	}
	if playing, err := h.Toggle(); err != nil || playing {
		t.Fatalf("second Toggle() = %v, %v; want paused", playing, err)
	}
	if h.Playing() {
		t.Error("handle still playing")
	}

	want := []string{"play", "pause"}
	if got := b.players["/musicData/calm.mp3"].Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("player calls = %v, want %v", got, want)
	}
}

func TestHandle_DisposeStopsBeforeRelease(t *testing.T) {
	b := newFakeBackend()
	h, _ := Create(b, "a.mp3")
	if _, err := h.Toggle(); err != nil {
		t.Fatal(err)
	}

	if err := h.Dispose(); err != nil {
		t.Fatalf("Dispose() error = %v", err)
	}
	want := []string{"play", "pause", "close"}
	if got := b.players["a.mp3"].Calls(); !reflect.DeepEqual(got, want) {
		t.Errorf("player calls = %v, want %v", got, want)
	}
	if h.Playing() || h.Playable() {
		t.Error("disposed handle still holds its resource")
	}

	if err := h.Dispose(); err != nil {
		t.Errorf("second Dispose() error = %v", err)
	}
	if _, err := h.Toggle(); !errors.Is(err, ErrDisposed) {
		t.Errorf("Toggle() after dispose error = %v, want ErrDisposed", err)
	}
}

func TestHandle_NoSourceIsInert(t *testing.T) {
	h, err := Create(nil, "")
	if err != nil {
		t.Fatal(err)
	}
	if h.Playable() {
		t.Error("handle without source reports playable")
	}
	if playing, err := h.Toggle(); err != nil || playing {
		t.Errorf("Toggle() = %v, %v; want inert", playing, err)
	}
	if err := h.Dispose(); err != nil {
		t.Error(err)
	}
}

func TestHandle_EndOfTrack(t *testing.T) {
	b := newFakeBackend()
	notified := 0
	h, _ := Create(b, "a.mp3", WithNotify(func() { notified++ }))
	_, _ = h.Toggle()

	b.players["a.mp3"].onEnd()
	if h.Playing() {
		t.Error("flag not reset at end of track")
	}
	if notified != 1 {
		t.Errorf("notified %d times, want 1", notified)
	}

	// A second end event while paused changes nothing.
	b.players["a.mp3"].onEnd()
	if notified != 1 {
		t.Errorf("notified %d times after paused end, want 1", notified)
	}
}

func TestHandle_RebindIgnoresStaleEnd(t *testing.T) {
	b := newFakeBackend()
	h, _ := Create(b, "a.mp3")
	_, _ = h.Toggle()

	if err := h.Rebind("b.mp3"); err != nil {
		t.Fatal(err)
	}
	if got := b.players["a.mp3"].Calls(); !reflect.DeepEqual(got, []string{"play", "pause", "close"}) {
		t.Errorf("old player calls = %v", got)
	}
	if h.URL() != "b.mp3" || h.Playing() {
		t.Errorf("after rebind url=%q playing=%v", h.URL(), h.Playing())
	}

	_, _ = h.Toggle()
	b.players["a.mp3"].onEnd()
	if !h.Playing() {
		t.Error("stale end callback reset the new track")
	}
}

func TestHandle_PlayErrorKeepsFlag(t *testing.T) {
	b := newFakeBackend()
	h, _ := Create(b, "a.mp3")
	b.players["a.mp3"].playErr = errors.New("device gone")

	if _, err := h.Toggle(); err == nil {
		t.Fatal("expected error")
	}
	if h.Playing() {
		t.Error("flag flipped despite play error")
	}
}

func TestCreate_LoadError(t *testing.T) {
	b := newFakeBackend()
	b.loadErr = errors.New("404")
	if _, err := Create(b, "missing.mp3"); err == nil {
		t.Fatal("expected load error")
	}
}

func TestDeck(t *testing.T) {
	b := newFakeBackend()
	d := NewDeck(b)

	songs := []catalog.Song{
		{ID: "1", AudioURL: "one.mp3"},
		{ID: "2", AudioURL: "two.mp3"},
		{ID: "3"},
	}
	if err := d.Show(songs); err != nil {
		t.Fatal(err)
	}

	// Independent handles: both can play at once.
	_, _ = d.Toggle("1")
	_, _ = d.Toggle("2")
	if got := d.Playing(); !reflect.DeepEqual(got, []string{"1", "2"}) {
		t.Errorf("Playing() = %v", got)
	}
	if playing, _ := d.Toggle("3"); playing {
		t.Error("song without audio started playing")
	}

	// Song 2 leaves the list and song 1 changes source.
	songs = []catalog.Song{{ID: "1", AudioURL: "one-v2.mp3"}, {ID: "3"}}
	if err := d.Show(songs); err != nil {
		t.Fatal(err)
	}
	if got := b.players["two.mp3"].Calls(); !reflect.DeepEqual(got, []string{"play", "pause", "close"}) {
		t.Errorf("removed song calls = %v", got)
	}
	if got := b.players["one.mp3"].Calls(); !reflect.DeepEqual(got, []string{"play", "pause", "close"}) {
		t.Errorf("rebound song calls = %v", got)
	}
	if len(d.Playing()) != 0 {
		t.Errorf("Playing() = %v after rebind", d.Playing())
	}

	_, _ = d.Toggle("1")
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	if got := b.players["one-v2.mp3"].Calls(); !reflect.DeepEqual(got, []string{"play", "pause", "close"}) {
		t.Errorf("closed deck calls = %v", got)
	}
	if _, ok := d.Handle("1"); ok {
		t.Error("handle survived Close")
	}
}

func TestDeck_LoadFailureIsInert(t *testing.T) {
	b := newFakeBackend()
	b.loadErr = errors.New("unsupported")
	d := NewDeck(b)

	err := d.Show([]catalog.Song{{ID: "1", AudioURL: "bad.mp3"}})
	if err == nil {
		t.Error("expected load error to be reported")
	}
	h, ok := d.Handle("1")
	if !ok || h.Playable() {
		t.Errorf("handle = %v, %v; want inert handle", h, ok)
	}
}

// gatedBackend blocks every Load until release is closed.
type gatedBackend struct {
	entered chan struct{}
	release chan struct{}

	mu      sync.Mutex
	players []*fakePlayer
}

func newGatedBackend() *gatedBackend {
	return &gatedBackend{entered: make(chan struct{}, 16), release: make(chan struct{})}
}

func (b *gatedBackend) Load(url string, onEnd func()) (Player, error) {
	b.entered <- struct{}{}
	<-b.release
	p := &fakePlayer{onEnd: onEnd}
	b.mu.Lock()
	b.players = append(b.players, p)
	b.mu.Unlock()
	return p, nil
}

func (b *gatedBackend) Players() []*fakePlayer {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]*fakePlayer(nil), b.players...)
}

// syncEndBackend reports the end of the track before Load returns.
type syncEndBackend struct{}

func (syncEndBackend) Load(url string, onEnd func()) (Player, error) {
	onEnd()
	return &fakePlayer{onEnd: onEnd}, nil
}

func TestHandle_RebindWithSynchronousEnd(t *testing.T) {
	h, err := Create(syncEndBackend{}, "a.mp3")
	if err != nil {
		t.Fatal(err)
	}

	done := make(chan error, 1)
	go func() { done <- h.Rebind("b.mp3") }()

	select {
	case err := <-done:
		if err != nil {
			t.Fatal(err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Rebind deadlocked on a synchronous end callback")
	}
	if !h.Playable() || h.URL() != "b.mp3" {
		t.Errorf("after rebind playable=%v url=%q", h.Playable(), h.URL())
	}
}

func TestHandle_DisposeDuringRebind(t *testing.T) {
	b := newGatedBackend()
	close(b.release)
	h, _ := Create(b, "a.mp3")
	<-b.entered

	gated := newGatedBackend()
	h.backend = gated
	done := make(chan error, 1)
	go func() { done <- h.Rebind("b.mp3") }()

	<-gated.entered
	if err := h.Dispose(); err != nil {
		t.Fatal(err)
	}
	close(gated.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	players := gated.Players()
	if len(players) != 1 {
		t.Fatalf("loaded %d players, want 1", len(players))
	}
	if got := players[0].Calls(); !reflect.DeepEqual(got, []string{"close"}) {
		t.Errorf("stale player calls = %v, want [close]", got)
	}
	if h.Playable() {
		t.Error("disposed handle holds a player")
	}
}

func TestDeck_ReadsWhileShowLoads(t *testing.T) {
	b := newGatedBackend()
	d := NewDeck(b)

	done := make(chan error, 1)
	go func() {
		done <- d.Show([]catalog.Song{{ID: "1", AudioURL: "one.mp3"}, {ID: "2", AudioURL: "two.mp3"}})
	}()

	<-b.entered
	for i := 0; i < 100; i++ {
		if _, ok := d.Handle("1"); ok {
			t.Fatal("handle visible before Show finished")
		}
		_ = d.Playing()
	}
	close(b.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	for _, id := range []string{"1", "2"} {
		if h, ok := d.Handle(id); !ok || !h.Playable() {
			t.Errorf("Handle(%q) = %v, %v after Show", id, h, ok)
		}
	}
}

func TestDeck_CloseDuringShow(t *testing.T) {
	b := newGatedBackend()
	d := NewDeck(b)

	done := make(chan error, 1)
	go func() { done <- d.Show([]catalog.Song{{ID: "1", AudioURL: "one.mp3"}}) }()

	<-b.entered
	if err := d.Close(); err != nil {
		t.Fatal(err)
	}
	close(b.release)
	if err := <-done; err != nil {
		t.Fatal(err)
	}

	if _, ok := d.Handle("1"); ok {
		t.Error("Show installed handles after Close")
	}
	for _, p := range b.Players() {
		if got := p.Calls(); !reflect.DeepEqual(got, []string{"pause", "close"}) {
			t.Errorf("player calls = %v, want [pause close]", got)
		}
	}

	// The deck is usable again after Close.
	if err := d.Show([]catalog.Song{{ID: "1", AudioURL: "one.mp3"}}); err != nil {
		t.Fatal(err)
	}
	if _, ok := d.Handle("1"); !ok {
		t.Error("Show after Close installed nothing")
	}
}
