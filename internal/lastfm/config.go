// Package lastfm fetches community tags for songs from the Last.fm API.
package lastfm

import (
	"errors"
	"os"
)

// ErrMissingAPIKey is returned when no API key is configured.
var ErrMissingAPIKey = errors.New("missing LASTFM_API_KEY environment variable")

// Config holds Last.fm API configuration.
type Config struct {
	APIKey  string
	BaseURL string // defaults to the public API endpoint
}

// LoadConfig reads Last.fm configuration from environment variables.
// Returns ErrMissingAPIKey if LASTFM_API_KEY is not set.
func LoadConfig() (*Config, error) {
	return ConfigFrom("")
}

// ConfigFrom builds a Config from a configured key. LASTFM_API_KEY, when
// set, takes precedence.
func ConfigFrom(apiKey string) (*Config, error) {
	if env := os.Getenv("LASTFM_API_KEY"); env != "" {
		apiKey = env
	}
	if apiKey == "" {
		return nil, ErrMissingAPIKey
	}
	return &Config{APIKey: apiKey}, nil
}
