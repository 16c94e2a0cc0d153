package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the Odoo client.
//
// Fields:
//   - StoragePath: SQLite file holding server address, session and caches.
//   - ServerURL: optional Odoo base URL to (re)configure at startup.
//   - APIPath: path prefix of the REST resource facade (e.g. "/api").
//   - RequestTimeout: bound for ordinary API calls.
//   - ProbeTimeout: bound for server reachability probes.
//   - CacheTTL: age after which cached lists are reported as stale.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	StoragePath    string
	ServerURL      string
	APIPath        string
	RequestTimeout time.Duration
	ProbeTimeout   time.Duration
	CacheTTL       time.Duration
	LogLevel       string
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.StoragePath = "odoo.db"
	c.ServerURL = ""
	c.APIPath = "/api"
	c.RequestTimeout = 30 * time.Second
	c.ProbeTimeout = 10 * time.Second
	c.CacheTTL = 5 * time.Minute
	c.LogLevel = "info"
}

// LoadConfig constructs a Config from os.Args: defaults first, then the JSON
// file named by -c/-config, then command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

// Load is LoadConfig over an explicit argument list.
func Load(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}
