// Package config handles configuration for the mock Odoo server, including
// defaults, JSON overlay, and command-line flags.
package config

import (
	"os"
	"time"
)

// Config holds runtime settings for the mock Odoo server.
//
// Fields:
//   - Addr: HTTP bind address.
//   - Database: the single database name offered at login.
//   - AdminLogin / AdminPassword: credentials of the demo user.
//   - SecretKey: HMAC secret for signing access tokens (HS256).
//   - AccessTokenValidityDuration / RefreshTokenValidityDuration: token lifetimes.
//   - UIDFalseOnFailure: answer bad logins with {"uid": false} like older Odoo.
//   - LogLevel: debug, info, warn or error.
type Config struct {
	Addr                         string
	Database                     string
	AdminLogin                   string
	AdminPassword                string
	SecretKey                    string
	AccessTokenValidityDuration  time.Duration
	RefreshTokenValidityDuration time.Duration
	UIDFalseOnFailure            bool
	LogLevel                     string
}

// LoadDefaults populates Config with development defaults.
func (c *Config) LoadDefaults() {
	c.Addr = ":8069"
	c.Database = "acme"
	c.AdminLogin = "admin"
	c.AdminPassword = "admin"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 1 * time.Minute
	c.RefreshTokenValidityDuration = 60 * time.Minute
	c.UIDFalseOnFailure = false
	c.LogLevel = "info"
}

// LoadConfig builds a Config from os.Args by applying defaults, then values
// from an optional JSON file and finally command-line flags.
func LoadConfig() (*Config, error) {
	return Load(os.Args[1:])
}

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
