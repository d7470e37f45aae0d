package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/emotion"
)

func newScoreCommand() *cobra.Command {
	var showScores bool

	cmd := &cobra.Command{
		Use:         "score <text>",
		Short:       "Detect the emotion of a message",
		Args:        cobra.MinimumNArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			scores := emotion.Score(strings.Join(args, " "))
			best := scores.Best()

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s %s\n", best.Glyph(), best.Label())
			if !showScores {
				return nil
			}

			rows := make([][]string, 0, len(emotion.All))
			for _, e := range emotion.All {
				if e == emotion.Neutral {
					continue
				}
				rows = append(rows, []string{e.Label(), strconv.Itoa(scores[e])})
			}
			fmt.Fprintln(out, renderTable([]string{"Emotion", "Hits"}, rows, []columnAlignment{alignLeft, alignRight}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&showScores, "scores", false, "Show the per-emotion hit counts")
	return cmd
}

func newNormalizeCommand() *cobra.Command {
	return &cobra.Command{
		Use:         "normalize <label>",
		Short:       "Map a classifier label onto the emotion taxonomy",
		Args:        cobra.ExactArgs(1),
		Annotations: map[string]string{"skipConfigLoad": "true"},
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintln(cmd.OutOrStdout(), emotion.Normalize(args[0]))
			return nil
		},
	}
}
