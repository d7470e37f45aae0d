package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"github.com/spf13/cobra"

	"github.com/justestif/moodtunes/internal/camera"
	"github.com/justestif/moodtunes/internal/capture"
	"github.com/justestif/moodtunes/internal/catalog"
	"github.com/justestif/moodtunes/internal/classifier"
	"github.com/justestif/moodtunes/internal/config"
	"github.com/justestif/moodtunes/internal/db"
	"github.com/justestif/moodtunes/internal/logging"
)

type commandContext struct {
	configFlag *string

	configOnce sync.Once
	config     *config.Config
	configErr  error
	logger     *slog.Logger

	storeOnce sync.Once
	store     catalog.Store
	storeErr  error
	closers   []func()
}

func newCommandContext(configFlag *string) *commandContext {
	return &commandContext{configFlag: configFlag}
}

func (c *commandContext) ensureConfig() (*config.Config, error) {
	c.configOnce.Do(func() {
		var path string
		if c.configFlag != nil {
			path = strings.TrimSpace(*c.configFlag)
		}
		cfg, _, _, err := config.Load(path)
		if err != nil {
			c.configErr = err
			return
		}
		logger, err := logging.NewFromConfig(cfg, os.Stderr)
		if err != nil {
			c.configErr = err
			return
		}
		c.config = cfg
		c.logger = logger
	})
	return c.config, c.configErr
}

// log returns the configured logger, or a discard logger before config
// has loaded.
func (c *commandContext) log() *slog.Logger {
	if c.logger == nil {
		return logging.Discard()
	}
	return c.logger
}

// openStore opens the configured catalog store once per command. The
// memory driver has no store: the catalog serves the built-in songs.
func (c *commandContext) openStore(ctx context.Context) (catalog.Store, error) {
	c.storeOnce.Do(func() {
		cfg, err := c.ensureConfig()
		if err != nil {
			c.storeErr = err
			return
		}

		switch cfg.Storage.Driver {
		case "sqlite":
			s, err := db.OpenSQLite(ctx, cfg.Storage.SQLitePath)
			if err != nil {
				c.storeErr = err
				return
			}
			c.closers = append(c.closers, func() { _ = s.Close() })
			c.store = s
		case "postgres":
			pg, err := db.New(ctx, cfg.Storage.DatabaseURL)
			if err != nil {
				c.storeErr = err
				return
			}
			c.closers = append(c.closers, pg.Close)
			if err := pg.Migrate(ctx); err != nil {
				c.storeErr = fmt.Errorf("migrating database: %w", err)
				return
			}
			c.store = pg
		default:
			c.store = catalog.NewMemory()
		}
		c.log().Debug("catalog store opened", "driver", cfg.Storage.Driver)
	})
	return c.store, c.storeErr
}

func (c *commandContext) catalogService(ctx context.Context) (*catalog.Service, error) {
	store, err := c.openStore(ctx)
	if err != nil {
		return nil, err
	}
	return catalog.NewService(store, catalog.WithLogger(c.log())), nil
}

// analyzer builds the Analyzing step from the analysis settings.
func (c *commandContext) analyzer() capture.Analyzer {
	cfg := c.config
	a := capture.Analyzer{
		Text:            capture.LexiconScorer{Delay: cfg.TextDelay()},
		Timeout:         cfg.AnalysisTimeout(),
		FallbackNeutral: cfg.Analysis.FallbackNeutral,
	}
	switch cfg.Analysis.PhotoClassifier {
	case "ollama":
		a.Photo = classifier.NewOllama(cfg.Ollama.Host, cfg.Ollama.Model)
	default:
		a.Photo = classifier.Random{Delay: cfg.PhotoDelay()}
	}
	return a
}

// localCamera is the capture device used by the terminal front-end.
func (c *commandContext) localCamera() camera.Device {
	return camera.Device{Path: c.config.Camera.Device, FFmpeg: c.config.Camera.Command}
}

func (c *commandContext) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
	c.closers = nil
}

func shouldSkipConfig(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Annotations != nil && c.Annotations["skipConfigLoad"] == "true" {
			return true
		}
	}
	return false
}
