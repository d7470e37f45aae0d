package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/emotion"
)

func newRecommendCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "recommend <emotion>",
		Short: "List the songs recommended for an emotion",
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

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, emotion.Heading(e))
			printSongs(out, songs)
			return nil
		},
	}
}

func newCatalogCommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "catalog",
		Short: "List every song in the catalog",
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := ctx.catalogService(cmd.Context())
			if err != nil {
				return err
			}
			songs, err := svc.All(cmd.Context())
			if err != nil {
				return err
			}
			printSongs(cmd.OutOrStdout(), songs)
			return nil
		},
	}
}

func printSongs(out io.Writer, songs []catalog.Song) {
	if len(songs) == 0 {
		fmt.Fprintln(out, "No songs.")
		return
	}
	rows := make([][]string, 0, len(songs))
	for _, s := range songs {
		playable := "no"
		if s.Playable() {
			playable = "yes"
		}
		rows = append(rows, []string{s.Title, s.Artist, s.Emotion.Label(), s.Duration, playable})
	}
	fmt.Fprintln(out, renderTable(
		[]string{"Title", "Artist", "Emotion", "Duration", "Audio"},
		rows,
		[]columnAlignment{alignLeft, alignLeft, alignLeft, alignRight, alignLeft},
	))
}
