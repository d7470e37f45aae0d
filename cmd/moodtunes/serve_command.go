package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/web"
)

func newServeCommand(ctx *commandContext) *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			runCtx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(runCtx, ctx, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "Listen address (overrides server.addr)")
	return cmd
}

func runServe(runCtx context.Context, ctx *commandContext, addr string) error {
	cfg := ctx.config
	if addr == "" {
		addr = cfg.Server.Addr
	}

	svc, err := ctx.catalogService(runCtx)
	if err != nil {
		return err
	}

	server, err := web.NewServer(web.ServerConfig{
		Addr:      addr,
		Catalog:   svc,
		Analyzer:  ctx.analyzer(),
		MediaRoot: cfg.Media.Root,
		Logger:    ctx.log(),
	})
	if err != nil {
		return err
	}

	ctx.log().Info("starting server", "addr", addr, "storage", cfg.Storage.Driver, "photo_classifier", cfg.Analysis.PhotoClassifier)
	return server.Run(runCtx)
}
