// Package auth provides Spotify OAuth2 authentication with token caching.
package auth

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"golang.org/x/oauth2"
)

const (
	configDirName = "moodtunes"
	tokenFileName = "spotify-token.json"
)

// TokenCache handles persistent storage of OAuth tokens.
// Reads and writes hold a file lock next to the token so that a running
// server and a CLI import never interleave a refresh.
type TokenCache struct {
	path string
	lock *flock.Flock
}

// DefaultTokenCache returns a TokenCache using the default location:
// ~/.config/moodtunes/spotify-token.json
func DefaultTokenCache() (*TokenCache, error) {
	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, fmt.Errorf("getting user config dir: %w", err)
	}

	return NewTokenCache(filepath.Join(configDir, configDirName, tokenFileName)), nil
}

// NewTokenCache creates a TokenCache with a custom path.
func NewTokenCache(path string) *TokenCache {
	return &TokenCache{path: path, lock: flock.New(path + ".lock")}
}

// Path returns the file path where tokens are stored.
func (c *TokenCache) Path() string {
	return c.path
}

// Load reads a cached token from disk.
// Returns (nil, nil) if the token file does not exist.
func (c *TokenCache) Load() (*oauth2.Token, error) {
	if !c.dirExists() {
		return nil, nil
	}
	if err := c.lock.RLock(); err != nil {
		return nil, fmt.Errorf("locking token file: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	data, err := os.ReadFile(c.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("reading token file: %w", err)
	}

	var token oauth2.Token
	if err := json.Unmarshal(data, &token); err != nil {
		return nil, fmt.Errorf("parsing token file: %w", err)
	}

	return &token, nil
}

// Save writes the token to disk, creating the parent directory if needed.
// The file is replaced atomically.
func (c *TokenCache) Save(token *oauth2.Token) error {
	if token == nil {
		return errors.New("cannot save nil token")
	}

	dir := filepath.Dir(c.path)
	if err := os.MkdirAll(dir, 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding token: %w", err)
	}

	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("locking token file: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	tmp := c.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0600); err != nil {
		return fmt.Errorf("writing token file: %w", err)
	}
	if err := os.Rename(tmp, c.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("writing token file: %w", err)
	}

	return nil
}

// Delete removes the cached token file.
// Returns nil if the file does not exist.
func (c *TokenCache) Delete() error {
	if !c.dirExists() {
		return nil
	}
	if err := c.lock.Lock(); err != nil {
		return fmt.Errorf("locking token file: %w", err)
	}
	defer func() { _ = c.lock.Unlock() }()

	err := os.Remove(c.path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("removing token file: %w", err)
	}
	return nil
}

func (c *TokenCache) dirExists() bool {
	_, err := os.Stat(filepath.Dir(c.path))
	return err == nil
}
