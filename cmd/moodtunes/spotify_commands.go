package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/auth"
	"github.com/justestif/moodtunes/internal/emotion"
	"github.com/justestif/moodtunes/internal/lastfm"
	"github.com/justestif/moodtunes/internal/library"
	"github.com/justestif/moodtunes/internal/spotify"
	"github.com/justestif/moodtunes/internal/tags"
)

func newImportCommand(ctx *commandContext) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import liked Spotify songs into the catalog, labelled by emotion",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			if cfg.Storage.Driver == "memory" {
				return errors.New("import needs a persistent store; set storage.driver to sqlite or postgres")
			}

			client, err := ctx.spotifyClient(cmd)
			if err != nil {
				return err
			}
			store, err := ctx.openStore(cmd.Context())
			if err != nil {
				return err
			}

			opts := []library.Option{library.WithLogger(ctx.log())}
			if lfm, err := lastfm.ConfigFrom(cfg.LastFM.APIKey); err == nil {
				opts = append(opts, library.WithTagger(tags.NewService(lastfm.NewClient(lfm))))
			} else if errors.Is(err, lastfm.ErrMissingAPIKey) {
				ctx.log().Warn("no Last.fm API key, songs without audio features will be neutral")
			} else {
				return err
			}

			result, err := library.New(client, store, opts...).Import(cmd.Context(), limit)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Imported %d songs\n", result.Total)
			rows := make([][]string, 0, len(emotion.All))
			for _, e := range emotion.All {
				rows = append(rows, []string{e.Glyph() + " " + e.Label(), strconv.Itoa(result.ByEmotion[e])})
			}
			fmt.Fprintln(out, renderTable([]string{"Emotion", "Songs"}, rows, []columnAlignment{alignLeft, alignRight}))
			fmt.Fprintf(out, "Labelled from audio features: %d, tags: %d, default: %d\n",
				result.BySource[library.FromClusters], result.BySource[library.FromTags], result.BySource[library.FromDefault])
			return nil
		},
	}

	cmd.Flags().IntVarP(&limit, "limit", "n", 0, "Maximum number of liked songs to import (0 = all)")
	return cmd
}

func newExportCommand(ctx *commandContext) *cobra.Command {
	var public bool

	cmd := &cobra.Command{
		Use:   "export <emotion>",
		Short: "Create a Spotify playlist from the imported songs for an emotion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := emotion.Parse(args[0])
			if err != nil {
				return err
			}
			svc, err := ctx.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			songs, err := svc.Recommend(cmd.Context(), e)
			if err != nil {
				return err
			}

			var trackIDs []string
			for _, s := range songs {
				if id, ok := spotify.TrackID(s.ID); ok {
					trackIDs = append(trackIDs, id)
				}
			}
			if len(trackIDs) == 0 {
				return fmt.Errorf("no imported Spotify songs for %s; run `moodtunes import` first", e)
			}

			client, err := ctx.spotifyClient(cmd)
			if err != nil {
				return err
			}
			return exportPlaylist(cmd.Context(), client, cmd.OutOrStdout(), e, trackIDs, public)
		},
	}

	cmd.Flags().BoolVar(&public, "public", false, "Make the playlist public")
	return cmd
}

type playlistWriter interface {
	CreatePlaylist(ctx context.Context, name, description string, public bool) (string, error)
	AddTracksToPlaylist(ctx context.Context, playlistID string, trackIDs []string) error
}

func exportPlaylist(ctx context.Context, client playlistWriter, out io.Writer, e emotion.Emotion, trackIDs []string, public bool) error {
	name := "MoodTunes: " + emotion.Heading(e)
	desc := fmt.Sprintf("%s %d songs that feel %s.", e.Glyph(), len(trackIDs), e)

	playlistID, err := client.CreatePlaylist(ctx, name, desc, public)
	if err != nil {
		return err
	}
	if err := client.AddTracksToPlaylist(ctx, playlistID, trackIDs); err != nil {
		return err
	}

	fmt.Fprintf(out, "Created playlist %q with %d songs\n", name, len(trackIDs))
	return nil
}

// spotifyClient authenticates with the cached token, running the browser
// flow when there is none.
func (c *commandContext) spotifyClient(cmd *cobra.Command) (*spotify.Client, error) {
	cfg := c.config
	a, err := auth.New(
		auth.WithCredentials(cfg.Spotify.ClientID, cfg.Spotify.ClientSecret),
		auth.WithRedirectURL(cfg.Spotify.RedirectURL),
		auth.WithLogger(c.log()),
		auth.WithOutput(cmd.OutOrStdout()),
	)
	if err != nil {
		return nil, err
	}
	api, err := a.Authenticate(cmd.Context())
	if err != nil {
		return nil, fmt.Errorf("authenticating with Spotify: %w", err)
	}
	return spotify.New(api, spotify.WithLogger(c.log())), nil
}
