package config

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// envConfig mirrors Config for environment parsing. Durations arrive as
// integer minutes to match the flag layer.
type envConfig struct {
	Address       string `env:"ADDRESS"`
	DatabaseDSN   string `env:"DATABASE_DSN"`
	SecretKey     string `env:"SECRET_KEY"`
	TokenValidity int    `env:"TOKEN_VALIDITY_MIN"`
	BcryptCost    int    `env:"BCRYPT_COST"`
}

// parseEnv overlays values from environment variables onto the provided
// Config. Unset variables keep the current values.
func parseEnv(config *Config) {
	c := &envConfig{}
	if err := env.Parse(c); err != nil {
		panic(err)
	}

	if c.Address != "" {
		config.Address = c.Address
	}
	if c.DatabaseDSN != "" {
		config.DatabaseDSN = c.DatabaseDSN
	}
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.TokenValidity != 0 {
		config.TokenValidity = time.Duration(c.TokenValidity) * time.Minute
	}
	if c.BcryptCost != 0 {
		config.BcryptCost = c.BcryptCost
	}
}
