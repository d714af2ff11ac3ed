// Package config loads process configuration from the environment and parses
// the expiry strings accepted by the authentication service.
package config

import (
	"fmt"
	"log/slog"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/xhit/go-str2duration/v2"
)

const (
	DefaultChallengeExpiresIn = "10m"
	DefaultJWTExpiresIn       = "100d"
)

// Config holds the runtime configuration of the addrauth server.
type Config struct {
	HTTPAddr string `env:"ADDRAUTH_HTTP_ADDR" envDefault:":3000"`
	LogLevel string `env:"ADDRAUTH_LOG_LEVEL" envDefault:"info"`

	// Token signing
	JWTSecret          string `env:"ADDRAUTH_JWT_SECRET,required,notEmpty"`
	ChallengeExpiresIn string `env:"ADDRAUTH_CHALLENGE_EXPIRES_IN" envDefault:"10m"`
	JWTExpiresIn       string `env:"ADDRAUTH_JWT_EXPIRES_IN" envDefault:"100d"`

	// SingleUse rejects a challenge token once it has been redeemed
	SingleUse bool `env:"ADDRAUTH_SINGLE_USE" envDefault:"true"`

	// Optional Redis for the consumed-challenge set and session events
	RedisURL    string `env:"REDIS_URL"`
	EventsTopic string `env:"ADDRAUTH_EVENTS_TOPIC" envDefault:"addrauth.session_issued"`

	CORSOrigins []string `env:"ADDRAUTH_CORS_ORIGINS" envSeparator:","`
}

// Load parses environment variables into a Config and checks the expiry strings.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to parse environment variables: %w", err)
	}

	if _, err := ParseExpiry(cfg.ChallengeExpiresIn); err != nil {
		return nil, fmt.Errorf("config: ADDRAUTH_CHALLENGE_EXPIRES_IN: %w", err)
	}
	if _, err := ParseExpiry(cfg.JWTExpiresIn); err != nil {
		return nil, fmt.Errorf("config: ADDRAUTH_JWT_EXPIRES_IN: %w", err)
	}

	return cfg, nil
}

// SlogLevel maps LogLevel to a slog level, defaulting to info.
func (c *Config) SlogLevel() slog.Level {
	var level slog.Level
	if err := level.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return level
}

// ParseExpiry parses an expiry such as "10m", "100d", "2w" or "1h30m".
// A bare integer is a number of seconds. The result must be positive.
func ParseExpiry(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, fmt.Errorf("empty expiry")
	}

	if secs, err := strconv.ParseInt(s, 10, 64); err == nil {
		if secs <= 0 {
			return 0, fmt.Errorf("expiry %q must be positive", s)
		}
		if secs > math.MaxInt64/int64(time.Second) {
			return 0, fmt.Errorf("expiry %q is too large", s)
		}
		return time.Duration(secs) * time.Second, nil
	}

	d, err := str2duration.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid expiry %q: %w", s, err)
	}
	if d <= 0 {
		return 0, fmt.Errorf("expiry %q must be positive", s)
	}

	return d, nil
}
