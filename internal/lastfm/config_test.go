package lastfm

import (
	"errors"
	"testing"
)

func TestConfigFrom(t *testing.T) {
	tests := []struct {
		name       string
		envValue   string
		configured string
		wantKey    string
		wantErr    error
	}{
		{
			name:     "env key",
			envValue: "abc123def456abc123def456abc12345",
			wantKey:  "abc123def456abc123def456abc12345",
		},
		{
			name:       "configured key",
			configured: "from-file",
			wantKey:    "from-file",
		},
		{
			name:       "env overrides configured key",
			envValue:   "from-env",
			configured: "from-file",
			wantKey:    "from-env",
		},
		{
			name:    "missing API key",
			wantErr: ErrMissingAPIKey,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("LASTFM_API_KEY", tt.envValue)

			cfg, err := ConfigFrom(tt.configured)
			if !errors.Is(err, tt.wantErr) {
				t.Fatalf("ConfigFrom() error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr != nil {
				if cfg != nil {
					t.Error("ConfigFrom() returned non-nil config with error")
				}
				return
			}
			if cfg.APIKey != tt.wantKey {
				t.Errorf("APIKey = %q, want %q", cfg.APIKey, tt.wantKey)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	t.Setenv("LASTFM_API_KEY", "")
	if _, err := LoadConfig(); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("LoadConfig() error = %v, want ErrMissingAPIKey", err)
	}
}
