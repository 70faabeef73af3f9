package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultListenAddr   = ":8880"
	defaultLogLevel     = "info"
	defaultMaxUploadMB  = 25
	defaultLogMaxSizeMB = 10
	defaultLogMaxFiles  = 5

	envListenAddr    = "LISTEN_ADDR"
	envPort          = "PORT"
	envDatabaseURL   = "DATABASE_URL"
	envLogDir        = "ALGORAVE_LOG_DIR"
	envLogLevel      = "ALGORAVE_LOG_LEVEL"
	envTemplatesDir  = "ALGORAVE_TEMPLATES_DIR"
	envMaxUploadMB   = "ALGORAVE_MAX_UPLOAD_MB"
	envYouTubeAPIKey = "YOUTUBE_API_KEY"
)

// Config captures runtime settings for the AlgoraveShare server.
type Config struct {
	ListenAddr    string
	DatabaseURL   string
	LogDir        string
	LogLevel      string
	LogMaxSizeMB  int
	LogMaxFiles   int
	TemplatesDir  string
	MaxUploadMB   int
	YouTubeAPIKey string
}

// FromEnv constructs a Config by reading environment variables with defaults.
func FromEnv() (Config, error) {
	cfg := Config{
		ListenAddr:   defaultListenAddr,
		LogLevel:     defaultLogLevel,
		LogMaxSizeMB: defaultLogMaxSizeMB,
		LogMaxFiles:  defaultLogMaxFiles,
		MaxUploadMB:  defaultMaxUploadMB,
	}

	if v := strings.TrimSpace(os.Getenv(envListenAddr)); v != "" {
		cfg.ListenAddr = v
	} else if port := strings.TrimSpace(os.Getenv(envPort)); port != "" {
		cfg.ListenAddr = fmt.Sprintf(":%s", port)
	}

	cfg.DatabaseURL = strings.TrimSpace(os.Getenv(envDatabaseURL))
	cfg.LogDir = strings.TrimSpace(os.Getenv(envLogDir))
	cfg.TemplatesDir = strings.TrimSpace(os.Getenv(envTemplatesDir))
	cfg.YouTubeAPIKey = strings.TrimSpace(os.Getenv(envYouTubeAPIKey))

	if v := strings.TrimSpace(os.Getenv(envLogLevel)); v != "" {
		cfg.LogLevel = v
	}

	if v := strings.TrimSpace(os.Getenv(envMaxUploadMB)); v != "" {
		mb, err := strconv.Atoi(v)
		if err != nil {
			return Config{}, fmt.Errorf("config: %s must be an integer: %w", envMaxUploadMB, err)
		}
		cfg.MaxUploadMB = mb
	}

	return cfg, nil
}

// Validate ensures the configuration is usable.
func (c Config) Validate() error {
	if strings.TrimSpace(c.ListenAddr) == "" {
		return fmt.Errorf("config: listen address is required")
	}
	if c.MaxUploadMB <= 0 {
		return fmt.Errorf("config: max upload size must be positive")
	}
	if c.DatabaseURL != "" && !strings.HasPrefix(c.DatabaseURL, "postgres://") && !strings.HasPrefix(c.DatabaseURL, "postgresql://") {
		return fmt.Errorf("config: database url must use the postgres scheme")
	}
	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("config: unknown log level %q", c.LogLevel)
	}
	return nil
}

// UsesPostgres reports whether a database was configured. Without one the
// server falls back to the in-memory store.
func (c Config) UsesPostgres() bool {
	return c.DatabaseURL != ""
}

// MaxUploadBytes is the multipart limit applied to form submissions.
func (c Config) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) << 20
}
