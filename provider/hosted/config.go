package hosted

import (
	"github.com/caarlos0/env/v11"
	"github.com/goliatone/go-errors"
)

// Config holds the hosted backend settings.
type Config struct {
	// DSN is the database connection string.
	DSN string `env:"AUTHKIT_DSN" envDefault:"file::memory:?cache=shared"`

	// SigningKey signs session access tokens.
	SigningKey string `env:"AUTHKIT_SIGNING_KEY"`

	// TokenExpiration is the session token lifetime in hours.
	TokenExpiration int `env:"AUTHKIT_TOKEN_EXPIRATION" envDefault:"24"`

	// Issuer is stamped into session token claims.
	Issuer string `env:"AUTHKIT_ISSUER" envDefault:"accessmanagerpro"`
}

// LoadConfig reads the configuration from the environment.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.Wrap(err, errors.CategoryInternal, "failed to parse hosted config from environment")
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks required settings.
func (c *Config) Validate() error {
	if c.SigningKey == "" {
		return errors.New("signing key is required", errors.CategoryValidation).
			WithTextCode("MISSING_SIGNING_KEY")
	}

	if c.TokenExpiration <= 0 {
		c.TokenExpiration = 24
	}

	return nil
}
