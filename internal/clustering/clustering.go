// Package clustering assigns emotions to songs from their audio features.
package clustering

import (
	"time"
)

// Track represents a song with the audio features used for grouping.
type Track struct {
	ID      string
	Name    string
	Artist  string
	AddedAt time.Time
	// Audio features (nil if not fetched or unavailable)
	Acousticness *float32
	Danceability *float32
	Energy       *float32
	Valence      *float32
}

// HasFeatures reports whether the track carries every feature used for
// clustering.
func (t Track) HasFeatures() bool {
	return t.Energy != nil &&
		t.Valence != nil &&
		t.Danceability != nil &&
		t.Acousticness != nil
}
