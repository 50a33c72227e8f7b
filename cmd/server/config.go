package main

import (
	"time"

	"github.com/caarlos0/env/v11"
)

// Config is populated from the environment. Only the signing key is
// mandatory, everything else has workable defaults for local development.
type Config struct {
	ServerAddr  string `env:"SERVER_ADDR" envDefault:":8572"`
	Auth        AuthConfig
	Persistence PersistenceConfig
}

func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// AuthConfig satisfies the auth.Config interface.
type AuthConfig struct {
	SigningKey      string   `env:"AUTH_SIGNING_KEY,required"`
	SigningMethod   string   `env:"AUTH_SIGNING_METHOD" envDefault:"HS256"`
	ContextKey      string   `env:"AUTH_CONTEXT_KEY" envDefault:"user"`
	TokenExpiration int      `env:"AUTH_TOKEN_EXPIRATION" envDefault:"168"`
	TokenLookup     string   `env:"AUTH_TOKEN_LOOKUP" envDefault:"header:Authorization"`
	AuthScheme      string   `env:"AUTH_SCHEME" envDefault:"Bearer"`
	Issuer          string   `env:"AUTH_ISSUER" envDefault:"authflow"`
	Audience        []string `env:"AUTH_AUDIENCE" envSeparator:"," envDefault:"authflow"`
}

func (c AuthConfig) GetSigningKey() string {
	return c.SigningKey
}

func (c AuthConfig) GetSigningMethod() string {
	return c.SigningMethod
}

func (c AuthConfig) GetContextKey() string {
	return c.ContextKey
}

func (c AuthConfig) GetTokenExpiration() int {
	return c.TokenExpiration
}

func (c AuthConfig) GetTokenLookup() string {
	return c.TokenLookup
}

func (c AuthConfig) GetAuthScheme() string {
	return c.AuthScheme
}

func (c AuthConfig) GetIssuer() string {
	return c.Issuer
}

func (c AuthConfig) GetAudience() []string {
	return c.Audience
}

// PersistenceConfig drives the bun persistence client.
type PersistenceConfig struct {
	Debug       bool          `env:"DB_DEBUG" envDefault:"false"`
	Driver      string        `env:"DB_DRIVER" envDefault:"sqlite"`
	DSN         string        `env:"DB_DSN" envDefault:"file:authflow.db?cache=shared&mode=rwc"`
	Server      string        `env:"DB_SERVER"`
	Database    string        `env:"DB_DATABASE" envDefault:"authflow"`
	PingTimeout time.Duration `env:"DB_PING_TIMEOUT" envDefault:"5s"`
}

func (p PersistenceConfig) GetDebug() bool {
	return p.Debug
}

func (p PersistenceConfig) GetDriver() string {
	return p.Driver
}

func (p PersistenceConfig) GetDSN() string {
	return p.DSN
}

func (p PersistenceConfig) GetServer() string {
	return p.Server
}

func (p PersistenceConfig) GetDatabase() string {
	return p.Database
}

func (p PersistenceConfig) GetPingTimeout() time.Duration {
	return p.PingTimeout
}

func (p PersistenceConfig) GetOtelIdentifier() string {
	return ""
}
