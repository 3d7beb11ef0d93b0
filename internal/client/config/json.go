package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/favisend/internal/flagx"
	"github.com/dmitrijs2005/favisend/internal/timex"
)

// JsonConfig is the on-disk shape. Durations accept "2s" or nanoseconds;
// absent fields leave the current value alone.
type JsonConfig struct {
	BaseURL        *string         `json:"base_url"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	PollAttempts   *int            `json:"poll_attempts"`
	PollInterval   *timex.Duration `json:"poll_interval"`
	StorageDSN     *string         `json:"storage_dsn"`
	DownloadDir    *string         `json:"download_dir"`
	LogLevel       *string         `json:"log_level"`
	LogFormat      *string         `json:"log_format"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("decode config %s: %w", path, err)
	}

	if jc.BaseURL != nil {
		cfg.BaseURL = *jc.BaseURL
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.PollAttempts != nil {
		cfg.PollAttempts = *jc.PollAttempts
	}
	if jc.PollInterval != nil {
		cfg.PollInterval = jc.PollInterval.Duration
	}
	if jc.StorageDSN != nil {
		cfg.StorageDSN = *jc.StorageDSN
	}
	if jc.DownloadDir != nil {
		cfg.DownloadDir = *jc.DownloadDir
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	if jc.LogFormat != nil {
		cfg.LogFormat = *jc.LogFormat
	}
	return nil
}
