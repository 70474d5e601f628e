package auth

import (
	"time"

	"github.com/caarlos0/env/v11"
	goerrors "github.com/goliatone/go-errors"
)

// Config is the immutable configuration for the account lifecycle. Build it
// once at process start (directly or via LoadConfigFromEnv) and pass it by
// reference into constructors; nothing in this package reads the environment
// after that.
type Config struct {
	ActivationSecret string `env:"AUTH_ACTIVATION_SECRET"`
	AccessSecret     string `env:"AUTH_ACCESS_SECRET"`
	RefreshSecret    string `env:"AUTH_REFRESH_SECRET"`

	ActivationTTL time.Duration `env:"AUTH_ACTIVATION_TTL" envDefault:"10m"`
	AccessTTL     time.Duration `env:"AUTH_ACCESS_TTL" envDefault:"300s"`
	RefreshTTL    time.Duration `env:"AUTH_REFRESH_TTL" envDefault:"1200s"`

	Issuer   string   `env:"AUTH_ISSUER" envDefault:"go-accounts"`
	Audience []string `env:"AUTH_AUDIENCE" envSeparator:","`

	// ContextKey is the locals/context key and the access-token cookie name.
	ContextKey        string `env:"AUTH_CONTEXT_KEY" envDefault:"access_token"`
	RefreshCookieName string `env:"AUTH_REFRESH_COOKIE" envDefault:"refresh_token"`

	SMTPHost     string `env:"AUTH_SMTP_HOST"`
	SMTPPort     string `env:"AUTH_SMTP_PORT" envDefault:"587"`
	SMTPUsername string `env:"AUTH_SMTP_USERNAME"`
	SMTPPassword string `env:"AUTH_SMTP_PASSWORD"`
	SMTPFrom     string `env:"AUTH_SMTP_FROM"`

	RedisAddr     string `env:"AUTH_REDIS_ADDR" envDefault:"localhost:6379"`
	RedisPassword string `env:"AUTH_REDIS_PASSWORD"`
	RedisDB       int    `env:"AUTH_REDIS_DB" envDefault:"0"`
}

// LoadConfigFromEnv parses the process environment into a Config and
// validates it.
func LoadConfigFromEnv() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryValidation, "failed to parse auth configuration")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks the invariants the token codec relies on: every secret set,
// no secret shared between token kinds, positive TTLs.
func (c *Config) Validate() error {
	if c.ActivationSecret == "" || c.AccessSecret == "" || c.RefreshSecret == "" {
		return goerrors.New("activation, access, and refresh secrets are required", goerrors.CategoryValidation)
	}

	if c.ActivationSecret == c.AccessSecret ||
		c.ActivationSecret == c.RefreshSecret ||
		c.AccessSecret == c.RefreshSecret {
		return goerrors.New("token secrets must be distinct per token kind", goerrors.CategoryValidation)
	}

	if c.ActivationTTL <= 0 || c.AccessTTL <= 0 || c.RefreshTTL <= 0 {
		return goerrors.New("token TTLs must be positive", goerrors.CategoryValidation)
	}

	return nil
}

// GetContextKey returns the locals key under which the HTTP middleware
// stashes the verified session.
func (c *Config) GetContextKey() string {
	if c.ContextKey == "" {
		return "access_token"
	}
	return c.ContextKey
}

// GetRefreshCookieName returns the refresh-token cookie name.
func (c *Config) GetRefreshCookieName() string {
	if c.RefreshCookieName == "" {
		return "refresh_token"
	}
	return c.RefreshCookieName
}
