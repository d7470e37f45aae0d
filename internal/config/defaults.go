package config

const (
	defaultAddr            = "127.0.0.1:8080"
	defaultStorageDriver   = "memory"
	defaultSQLitePath      = "~/.local/share/moodtunes/catalog.db"
	defaultTimeoutSeconds  = 15
	defaultTextDelayMs     = 1500
	defaultPhotoDelayMs    = 2000
	defaultPhotoClassifier = "random"
	defaultOllamaHost      = "http://localhost:11434"
	defaultOllamaModel     = "llava:7b"
	defaultCameraDevice    = "/dev/video0"
	defaultCameraCommand   = "ffmpeg"
	defaultRedirectURL     = "http://127.0.0.1:8080/callback"
	defaultLogFormat       = "auto"
	defaultLogLevel        = "info"
)

// Default returns a Config populated with defaults.
func Default() Config {
	return Config{
		Server: Server{
			Addr: defaultAddr,
		},
		Storage: Storage{
			Driver:     defaultStorageDriver,
			SQLitePath: defaultSQLitePath,
		},
		Analysis: Analysis{
			TimeoutSeconds:  defaultTimeoutSeconds,
			TextDelayMs:     defaultTextDelayMs,
			PhotoDelayMs:    defaultPhotoDelayMs,
			PhotoClassifier: defaultPhotoClassifier,
		},
		Ollama: Ollama{
			Host:  defaultOllamaHost,
			Model: defaultOllamaModel,
		},
		Camera: Camera{
			Device:  defaultCameraDevice,
			Command: defaultCameraCommand,
		},
		Spotify: Spotify{
			RedirectURL: defaultRedirectURL,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
