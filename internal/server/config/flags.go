package config

import (
	"flag"
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/odooclient/internal/flagx"
)

// parseFlags populates selected server Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   HTTP bind address (e.g., ":8069")
//	-d string   database name
//	-u string   admin login
//	-p string   admin password
//	-s string   JWT HMAC secret key
//	-t int      access token validity, minutes
//	-r int      refresh token validity, minutes
//	-f bool     answer bad logins with uid false
//	-l string   log level
func parseFlags(config *Config, args []string) error {
	filtered := flagx.FilterArgs(args, []string{"-a", "-d", "-u", "-p", "-s", "-t", "-r", "-f", "-l"})

	fs := flag.NewFlagSet("server", flag.ContinueOnError)
	fs.SetOutput(io.Discard)

	fs.StringVar(&config.Addr, "a", config.Addr, "address and port to run server")
	fs.StringVar(&config.Database, "d", config.Database, "database name")
	fs.StringVar(&config.AdminLogin, "u", config.AdminLogin, "admin login")
	fs.StringVar(&config.AdminPassword, "p", config.AdminPassword, "admin password")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")
	fs.BoolVar(&config.UIDFalseOnFailure, "f", config.UIDFalseOnFailure, "reply uid=false on failed login")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	refreshTokenValidityDuration := fs.Int("r", int(config.RefreshTokenValidityDuration.Minutes()), "refresh_token_validity_duration (in minutes)")

	if err := fs.Parse(filtered); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	if *accessTokenValidityDuration <= 0 || *refreshTokenValidityDuration <= 0 {
		return fmt.Errorf("parse flags: token validity must be positive")
	}

	config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
	config.RefreshTokenValidityDuration = time.Duration(*refreshTokenValidityDuration) * time.Minute
	return nil
}
