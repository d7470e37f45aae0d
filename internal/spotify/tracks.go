package spotify

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/zmb3/spotify/v2"
)

// FetchLikedSongs retrieves tracks from the user's library, newest first.
// A limit of 0 or less fetches the whole library.
func (c *Client) FetchLikedSongs(ctx context.Context, limit int) ([]LikedTrack, error) {
	var tracks []LikedTrack

	// Fetch first page (limit 50 is max per request)
	page, err := c.api.CurrentUsersTracks(ctx, spotify.Limit(50))
	if err != nil {
		return nil, fmt.Errorf("fetching liked songs: %w", err)
	}

	for {
		for _, saved := range page.Tracks {
			tracks = append(tracks, convertTrack(saved))
			if limit > 0 && len(tracks) >= limit {
				c.logger.Info("fetched liked songs", "count", len(tracks))
				return tracks, nil
			}
		}

		c.logger.Debug("fetched liked songs page", "count", len(tracks))

		err = c.api.NextPage(ctx, page)
		if errors.Is(err, spotify.ErrNoMorePages) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("fetching next page: %w", err)
		}
	}

	c.logger.Info("fetched liked songs", "count", len(tracks))
	return tracks, nil
}

// convertTrack converts a Spotify SavedTrack to a LikedTrack.
func convertTrack(saved spotify.SavedTrack) LikedTrack {
	artists := make([]string, len(saved.Artists))
	for i, a := range saved.Artists {
		artists[i] = a.Name
	}

	// Parse AddedAt timestamp, use zero value on failure
	addedAt, _ := time.Parse(time.RFC3339, saved.AddedAt)

	var cover string
	if len(saved.Album.Images) > 0 {
		cover = saved.Album.Images[0].URL
	}

	return LikedTrack{
		ID:          saved.ID.String(),
		Name:        saved.Name,
		Artist:      strings.Join(artists, ", "),
		Album:       saved.Album.Name,
		DurationMs:  int(saved.Duration),
		AddedAt:     addedAt,
		PreviewURL:  saved.PreviewURL,
		CoverURL:    cover,
		ExternalURL: saved.ExternalURLs["spotify"],
	}
}
