package main

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/audio"
	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/tui"
)

func newTUICommand(ctx *commandContext) *cobra.Command {
	return &cobra.Command{
		Use:   "tui",
		Short: "Run the interactive terminal front-end",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := ctx.config
			svc, err := ctx.catalogService(cmd.Context())
			if err != nil {
				return err
			}

			// Log output would tear the alt screen.
			model := tui.New(cmd.Context(), tui.Config{
				Devices:     capture.Devices{Camera: ctx.localCamera()},
				Analyzer:    ctx.analyzer(),
				Recommender: svc,
				Backend:     audio.New(cfg.Media.Root),
			})

			if _, err := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(cmd.Context())).Run(); err != nil {
				return fmt.Errorf("running tui: %w", err)
			}
			return nil
		},
	}
}
