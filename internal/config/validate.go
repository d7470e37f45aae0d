package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateStorage(); err != nil {
		return err
	}
	if err := c.validateAnalysis(); err != nil {
		return err
	}
	if err := c.validateLogging(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Driver {
	case "memory":
	case "sqlite":
		if c.Storage.SQLitePath == "" {
			return errors.New("storage.sqlite_path is required for the sqlite driver")
		}
	case "postgres":
		if c.Storage.DatabaseURL == "" {
			return errors.New("storage.database_url is required for the postgres driver. Set DATABASE_URL or edit the config file")
		}
	default:
		return fmt.Errorf("storage.driver must be memory, sqlite or postgres, got %q", c.Storage.Driver)
	}
	return nil
}

func (c *Config) validateAnalysis() error {
	if c.Analysis.TimeoutSeconds < 0 {
		return fmt.Errorf("analysis.timeout_seconds must be positive, got %d", c.Analysis.TimeoutSeconds)
	}
	if c.Analysis.TextDelayMs < 0 {
		return fmt.Errorf("analysis.text_delay_ms must not be negative, got %d", c.Analysis.TextDelayMs)
	}
	if c.Analysis.PhotoDelayMs < 0 {
		return fmt.Errorf("analysis.photo_delay_ms must not be negative, got %d", c.Analysis.PhotoDelayMs)
	}
	switch c.Analysis.PhotoClassifier {
	case "random", "ollama":
	default:
		return fmt.Errorf("analysis.photo_classifier must be random or ollama, got %q", c.Analysis.PhotoClassifier)
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "auto", "console", "json":
	default:
		return fmt.Errorf("logging.format must be auto, console or json, got %q", c.Logging.Format)
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("logging.level must be debug, info, warn or error, got %q", c.Logging.Level)
	}
	return nil
}
