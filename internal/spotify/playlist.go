package spotify

import (
	"context"
	"fmt"

	"github.com/zmb3/spotify/v2"
)

// CreatePlaylist creates a new playlist for the current user.
// Returns the playlist ID.
func (c *Client) CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error) {
	userID, err := c.UserID(ctx)
	if err != nil {
		return "", err
	}

	playlist, err := c.api.CreatePlaylistForUser(ctx, userID, name, description, public, false)
	if err != nil {
		return "", fmt.Errorf("creating playlist: %w", err)
	}

	return playlist.ID.String(), nil
}

// AddTracksToPlaylist adds tracks to a playlist, handling batching for large sets.
func (c *Client) AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error {
	if len(trackIDs) == 0 {
		return nil
	}

	ids := make([]spotify.ID, len(trackIDs))
	for i, id := range trackIDs {
		ids[i] = spotify.ID(id)
	}

	for _, b := range batches(len(ids), maxTracksPerRequest) {
		_, err := c.api.AddTracksToPlaylist(ctx, spotify.ID(playlistID), ids[b[0]:b[1]]...)
		if err != nil {
			return fmt.Errorf("adding tracks (batch %d-%d): %w", b[0]+1, b[1], err)
		}
	}

	return nil
}
