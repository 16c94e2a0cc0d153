package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/odooclient/internal/flagx"
	"github.com/dmitrijs2005/odooclient/internal/timex"
)

// JsonConfig is the on-disk shape of the server config file. Durations accept
// "1m" style strings or integer nanoseconds.
type JsonConfig struct {
	Addr                         *string         `json:"addr"`
	Database                     *string         `json:"database"`
	AdminLogin                   *string         `json:"admin_login"`
	AdminPassword                *string         `json:"admin_password"`
	SecretKey                    *string         `json:"secret_key"`
	AccessTokenValidityDuration  *timex.Duration `json:"access_token_validity_duration"`
	RefreshTokenValidityDuration *timex.Duration `json:"refresh_token_validity_duration"`
	UIDFalseOnFailure            *bool           `json:"uid_false_on_failure"`
	LogLevel                     *string         `json:"log_level"`
}

// parseJson overlays config with the JSON file named by -c/-config in args.
func parseJson(config *Config, args []string) error {
	path := flagx.ConfigPath(args)
	if path == "" {
		return nil
	}

	file, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	c := &JsonConfig{}
	if err := json.Unmarshal(file, c); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	if c.Addr != nil {
		config.Addr = *c.Addr
	}
	if c.Database != nil {
		config.Database = *c.Database
	}
	if c.AdminLogin != nil {
		config.AdminLogin = *c.AdminLogin
	}
	if c.AdminPassword != nil {
		config.AdminPassword = *c.AdminPassword
	}
	if c.SecretKey != nil {
		config.SecretKey = *c.SecretKey
	}
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.RefreshTokenValidityDuration != nil {
		config.RefreshTokenValidityDuration = c.RefreshTokenValidityDuration.Duration
	}
	if c.UIDFalseOnFailure != nil {
		config.UIDFalseOnFailure = *c.UIDFalseOnFailure
	}
	if c.LogLevel != nil {
		config.LogLevel = *c.LogLevel
	}
	return nil
}
