package catalog

import (
	"context"
	"sync"

	"github.com/justestif/moodtunes/internal/emotion"
)

// Memory is an in-process Store. Songs keep insertion order.
type Memory struct {
	mu    sync.RWMutex
	songs map[string]Song
	order []string
}

// NewMemory creates a Memory store holding the given songs.
func NewMemory(songs ...Song) *Memory {
	m := &Memory{songs: make(map[string]Song)}
	m.put(songs)
	return m
}

// ListByEmotion implements Store.
func (m *Memory) ListByEmotion(_ context.Context, e emotion.Emotion) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []Song
	for _, id := range m.order {
		if s := m.songs[id]; s.Emotion == e {
			out = append(out, s)
		}
	}
	return out, nil
}

// List implements Store.
func (m *Memory) List(_ context.Context) ([]Song, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]Song, 0, len(m.order))
	for _, id := range m.order {
		out = append(out, m.songs[id])
	}
	return out, nil
}

// UpsertBatch implements Store.
func (m *Memory) UpsertBatch(_ context.Context, songs []Song) error {
	m.put(songs)
	return nil
}

func (m *Memory) put(songs []Song) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range songs {
		if _, ok := m.songs[s.ID]; !ok {
			m.order = append(m.order, s.ID)
		}
		m.songs[s.ID] = s
	}
}

var _ Store = (*Memory)(nil)
