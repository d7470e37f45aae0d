package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"

	"github.com/justestif/moodtunes/internal/clustering"
)

// FetchAudioFeatures retrieves audio features for the given tracks.
// Updates tracks in-place with their audio features.
// Batches requests to max 100 tracks per request per Spotify API limits.
// Tracks without available audio features will have nil feature fields.
func (c *Client) FetchAudioFeatures(ctx context.Context, tracks []clustering.Track) error {
	if len(tracks) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(tracks))
	indexByID := make(map[string]int, len(tracks))
	for i, t := range tracks {
		ids[i] = spotify.ID(t.ID)
		indexByID[t.ID] = i
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		c.logger.Debug("fetching audio features", "from", b[0]+1, "to", b[1], "total", len(ids))

		features, err := c.api.GetAudioFeatures(ctx, ids[b[0]:b[1]]...)
		if err != nil {
			return fmt.Errorf("fetching audio features (batch %d-%d): %w", b[0]+1, b[1], err)
		}

		for _, f := range features {
			if f == nil {
				continue // Track has no audio features
			}
			idx, ok := indexByID[f.ID.String()]
			if !ok {
				continue
			}
			applyAudioFeatures(&tracks[idx], f)
		}
	}

	c.logger.Info("fetched audio features", "count", len(ids))
	return nil
}

// applyAudioFeatures copies the clustering features to a track.
func applyAudioFeatures(t *clustering.Track, f *spotify.AudioFeatures) {
	acousticness := f.Acousticness
	danceability := f.Danceability
	energy := f.Energy
	valence := f.Valence
	t.Acousticness = &acousticness
	t.Danceability = &danceability
	t.Energy = &energy
	t.Valence = &valence
}
