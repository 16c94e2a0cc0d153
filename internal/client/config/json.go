package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/odooclient/internal/flagx"
	"github.com/dmitrijs2005/odooclient/internal/timex"
)

// JsonConfig is the on-disk shape of the config file. Pointer fields tell an
// absent key apart from a zero value.
type JsonConfig struct {
	StoragePath    *string         `json:"storage_path"`
	ServerURL      *string         `json:"server_url"`
	APIPath        *string         `json:"api_path"`
	RequestTimeout *timex.Duration `json:"request_timeout"`
	ProbeTimeout   *timex.Duration `json:"probe_timeout"`
	CacheTTL       *timex.Duration `json:"cache_ttl"`
	LogLevel       *string         `json:"log_level"`
}

// parseJson overlays cfg with the JSON file named by -c/-config in args.
// Without such a flag it does nothing.
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
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if jc.StoragePath != nil {
		cfg.StoragePath = *jc.StoragePath
	}
	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.APIPath != nil {
		cfg.APIPath = *jc.APIPath
	}
	if jc.RequestTimeout != nil {
		cfg.RequestTimeout = jc.RequestTimeout.Duration
	}
	if jc.ProbeTimeout != nil {
		cfg.ProbeTimeout = jc.ProbeTimeout.Duration
	}
	if jc.CacheTTL != nil {
		cfg.CacheTTL = jc.CacheTTL.Duration
	}
	if jc.LogLevel != nil {
		cfg.LogLevel = *jc.LogLevel
	}
	return nil
}
