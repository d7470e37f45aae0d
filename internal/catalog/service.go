package catalog

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/justestif/moodtunes/internal/emotion"
)

// Service recommends songs for an emotion.
type Service struct {
	store  Store
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the service logger.
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// NewService creates a Service over store. A nil store serves the bundled
// catalog only.
func NewService(store Store, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Recommend returns the playlist for e. When the store has nothing for e
// the bundled songs are returned instead.
func (s *Service) Recommend(ctx context.Context, e emotion.Emotion) ([]Song, error) {
	if !e.Valid() {
		return nil, fmt.Errorf("unknown emotion %q", e)
	}
	if s.store == nil {
		return BuiltinFor(e), nil
	}

	songs, err := s.store.ListByEmotion(ctx, e)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	if len(songs) == 0 {
		s.logger.Debug("store has no songs, using bundled catalog", "emotion", e)
		return BuiltinFor(e), nil
	}
	return songs, nil
}

// All returns every song in the store, or the bundled catalog when empty.
func (s *Service) All(ctx context.Context) ([]Song, error) {
	if s.store == nil {
		return Builtin(), nil
	}
	songs, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("listing songs: %w", err)
	}
	if len(songs) == 0 {
		return Builtin(), nil
	}
	return songs, nil
}
