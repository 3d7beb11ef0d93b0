package config

import (
	"fmt"
	"time"
)

// Config holds runtime settings for the favisend CLI.
type Config struct {
	BaseURL        string        `env:"BASE_URL"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT"`
	PollAttempts   int           `env:"POLL_ATTEMPTS"`
	PollInterval   time.Duration `env:"POLL_INTERVAL"`
	StorageDSN     string        `env:"STORAGE_DSN"`
	DownloadDir    string        `env:"DOWNLOAD_DIR"`
	LogLevel       string        `env:"LOG_LEVEL"`
	LogFormat      string        `env:"LOG_FORMAT"`
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.BaseURL = "https://backend-favisend.onrender.com"
	c.RequestTimeout = 30 * time.Second
	c.PollAttempts = 3
	c.PollInterval = 2 * time.Second
	c.StorageDSN = "favisend.db"
	c.DownloadDir = "downloads"
	c.LogLevel = "info"
	c.LogFormat = "console"
}

// Validate rejects values the client cannot run with.
func (c *Config) Validate() error {
	switch {
	case c.BaseURL == "":
		return fmt.Errorf("base url is empty")
	case c.RequestTimeout <= 0:
		return fmt.Errorf("request timeout must be positive, got %s", c.RequestTimeout)
	case c.PollAttempts < 1:
		return fmt.Errorf("poll attempts must be at least 1, got %d", c.PollAttempts)
	case c.PollInterval < 0:
		return fmt.Errorf("poll interval must not be negative, got %s", c.PollInterval)
	case c.StorageDSN == "":
		return fmt.Errorf("storage dsn is empty")
	}
	return nil
}

// Load builds a Config from defaults, then the JSON file named by -c/-config,
// then FAVISEND_* environment variables, then flags. Later sources win.
func Load(args []string, environ map[string]string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg, environ); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}
