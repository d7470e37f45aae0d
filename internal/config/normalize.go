package config

import (
	"fmt"
	"os"
	"strings"
)

// envOverrides maps environment variables onto config fields. A set,
// non-blank variable wins over the file.
func (c *Config) envOverrides() map[string]*string {
	return map[string]*string{
		"MOODTUNES_ADDR": &c.Server.Addr,
		"DATABASE_URL":   &c.Storage.DatabaseURL,
		"SPOTIFY_ID":     &c.Spotify.ClientID,
		"SPOTIFY_SECRET": &c.Spotify.ClientSecret,
		"LASTFM_API_KEY": &c.LastFM.APIKey,
		"OLLAMA_HOST":    &c.Ollama.Host,
	}
}

func (c *Config) applyEnv() {
	for name, field := range c.envOverrides() {
		if value, ok := os.LookupEnv(name); ok && strings.TrimSpace(value) != "" {
			*field = strings.TrimSpace(value)
		}
	}
}

func (c *Config) normalize() error {
	c.Server.Addr = strings.TrimSpace(c.Server.Addr)
	if c.Server.Addr == "" {
		c.Server.Addr = defaultAddr
	}

	if err := c.normalizeStorage(); err != nil {
		return err
	}
	c.normalizeAnalysis()
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizeStorage() error {
	c.Storage.Driver = strings.ToLower(strings.TrimSpace(c.Storage.Driver))
	if c.Storage.Driver == "" {
		c.Storage.Driver = defaultStorageDriver
	}
	if c.Storage.Driver == "postgresql" {
		c.Storage.Driver = "postgres"
	}
	if strings.TrimSpace(c.Storage.SQLitePath) == "" {
		c.Storage.SQLitePath = defaultSQLitePath
	}
	var err error
	if c.Storage.SQLitePath, err = expandPath(c.Storage.SQLitePath); err != nil {
		return fmt.Errorf("storage.sqlite_path: %w", err)
	}
	c.Storage.DatabaseURL = strings.TrimSpace(c.Storage.DatabaseURL)
	return nil
}

func (c *Config) normalizeAnalysis() {
	c.Analysis.PhotoClassifier = strings.ToLower(strings.TrimSpace(c.Analysis.PhotoClassifier))
	if c.Analysis.PhotoClassifier == "" {
		c.Analysis.PhotoClassifier = defaultPhotoClassifier
	}
	if c.Analysis.TimeoutSeconds == 0 {
		c.Analysis.TimeoutSeconds = defaultTimeoutSeconds
	}
	c.Ollama.Host = strings.TrimRight(strings.TrimSpace(c.Ollama.Host), "/")
	if c.Ollama.Host == "" {
		c.Ollama.Host = defaultOllamaHost
	}
	c.Ollama.Model = strings.TrimSpace(c.Ollama.Model)
	if c.Ollama.Model == "" {
		c.Ollama.Model = defaultOllamaModel
	}
}

func (c *Config) normalizePaths() error {
	var err error
	if c.Media.Root, err = expandPath(strings.TrimSpace(c.Media.Root)); err != nil {
		return fmt.Errorf("media.root: %w", err)
	}
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	c.Camera.Command = strings.TrimSpace(c.Camera.Command)
	if c.Camera.Command == "" {
		c.Camera.Command = defaultCameraCommand
	}
	c.Spotify.RedirectURL = strings.TrimSpace(c.Spotify.RedirectURL)
	if c.Spotify.RedirectURL == "" {
		c.Spotify.RedirectURL = defaultRedirectURL
	}
	return nil
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
