package spotify

import (
	"strings"
	"time"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/clustering"
	"github.com/justestif/moodtunes/internal/emotion"
)

// IDPrefix marks catalog song IDs that came from Spotify.
const IDPrefix = "spotify:"

// LikedTrack is a song from the user's Spotify library.
type LikedTrack struct {
	ID          string
	Name        string
	Artist      string // Comma-separated artist names
	Album       string
	DurationMs  int
	AddedAt     time.Time // When user liked the track
	PreviewURL  string    // 30 second MP3, often empty
	CoverURL    string
	ExternalURL string
}

// ClusterTrack returns the track without audio features, ready for
// FetchAudioFeatures.
func (t LikedTrack) ClusterTrack() clustering.Track {
	return clustering.Track{
		ID:      t.ID,
		Name:    t.Name,
		Artist:  t.Artist,
		AddedAt: t.AddedAt,
	}
}

// Song converts the track into a catalog song tagged e.
func (t LikedTrack) Song(e emotion.Emotion) catalog.Song {
	return catalog.Song{
		ID:        IDPrefix + t.ID,
		Title:     t.Name,
		Artist:    t.Artist,
		Emotion:   e,
		CoverURL:  t.CoverURL,
		Duration:  catalog.FormatDuration(t.DurationMs),
		AudioURL:  t.PreviewURL,
		ITunesURL: t.ExternalURL,
	}
}

// TrackID returns the Spotify ID of a catalog song, or false when the song
// did not come from Spotify.
func TrackID(songID string) (string, bool) {
	id, ok := strings.CutPrefix(songID, IDPrefix)
	return id, ok && id != ""
}
