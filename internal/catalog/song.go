// Package catalog holds the song records and the recommendation service that
// turns an emotion into a playlist.
package catalog

import (
	"context"
	"fmt"
	"strings"

	"github.com/justestif/moodtunes/internal/emotion"
)

// Song is one recommendable track.
type Song struct {
	ID        string          `json:"id"`
	Title     string          `json:"title"`
	Artist    string          `json:"artist"`
	Emotion   emotion.Emotion `json:"emotion"`
	CoverURL  string          `json:"coverUrl"`
	Duration  string          `json:"duration"`
	AudioURL  string          `json:"audioUrl,omitempty"`
	ITunesURL string          `json:"itunesUrl,omitempty"`
}

// Playable reports whether the song has an audio source.
func (s Song) Playable() bool {
	return strings.TrimSpace(s.AudioURL) != ""
}

// Store persists songs. Implementations live in internal/db; Memory is the
// in-process one.
type Store interface {
	ListByEmotion(ctx context.Context, e emotion.Emotion) ([]Song, error)
	List(ctx context.Context) ([]Song, error)
	UpsertBatch(ctx context.Context, songs []Song) error
}

// FormatDuration renders milliseconds as "m:ss".
func FormatDuration(ms int) string {
	if ms < 0 {
		ms = 0
	}
	total := ms / 1000
	return fmt.Sprintf("%d:%02d", total/60, total%60)
}
