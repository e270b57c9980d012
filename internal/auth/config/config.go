package config

import (
	"errors"
	"strings"
	"time"

	"github.com/caarlos0/env/v6"
)

// Identity provider modes.
const (
	IdentityModeFirebase = "firebase"
	IdentityModeHMAC     = "hmac"
)

// Config holds all configuration for the auth module.
type Config struct {
	// Session cookie signing
	SessionSecretKey string        `env:"SESSION_SECRET_KEY,required"`
	SessionIssuer    string        `env:"SESSION_ISSUER" envDefault:"pass-questions"`
	SessionTTL       time.Duration `env:"SESSION_TTL" envDefault:"24h"`
	SessionCacheTTL  time.Duration `env:"SESSION_CACHE_TTL" envDefault:"30s"`

	// Cookie Configuration
	CookieName     string `env:"COOKIE_NAME" envDefault:"pq_session"`
	CookiePath     string `env:"COOKIE_PATH" envDefault:"/"`
	CookieDomain   string `env:"COOKIE_DOMAIN" envDefault:""`
	CookieSecure   bool   `env:"COOKIE_SECURE" envDefault:"false"`
	CookieHTTPOnly bool   `env:"COOKIE_HTTP_ONLY" envDefault:"true"`
	CookieSameSite string `env:"COOKIE_SAME_SITE" envDefault:"Lax"`

	// Identity tokens presented to /auth/login_complete
	IdentityMode       string `env:"IDENTITY_MODE" envDefault:"firebase"`
	FirebaseProjectID  string `env:"FIREBASE_PROJECT_ID" envDefault:""`
	IdentityCertsURL   string `env:"IDENTITY_CERTS_URL" envDefault:"https://www.googleapis.com/robot/v1/metadata/x509/securetoken@system.gserviceaccount.com"`
	IdentityHMACSecret string `env:"IDENTITY_HMAC_SECRET" envDefault:""`

	// Access policies, CEL expressions over `user`
	PaidAccessRule  string `env:"PAID_ACCESS_RULE" envDefault:"user.role == 'admin' || user.paid"`
	AdminAccessRule string `env:"ADMIN_ACCESS_RULE" envDefault:"user.role == 'admin'"`

	BcryptCost int `env:"BCRYPT_COST" envDefault:"10"`
}

// LoadConfig loads configuration from environment variables and applies defaults.
func LoadConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load auth configuration from environment: " + err.Error())
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks cross-field constraints and normalizes CookieSameSite.
func (c *Config) Validate() error {
	if c.SessionSecretKey == "" {
		return errors.New("session_secret_key is required")
	}
	if c.SessionTTL <= 0 {
		return errors.New("session_ttl must be positive")
	}

	switch strings.ToLower(c.CookieSameSite) {
	case "lax":
		c.CookieSameSite = "Lax"
	case "strict":
		c.CookieSameSite = "Strict"
	case "none":
		c.CookieSameSite = "None"
	default:
		return errors.New("cookie_same_site must be one of 'Lax', 'Strict', or 'None'")
	}

	c.IdentityMode = strings.ToLower(c.IdentityMode)
	switch c.IdentityMode {
	case IdentityModeFirebase:
		if c.FirebaseProjectID == "" {
			return errors.New("firebase_project_id is required when identity_mode is firebase")
		}
	case IdentityModeHMAC:
		if c.IdentityHMACSecret == "" {
			return errors.New("identity_hmac_secret is required when identity_mode is hmac")
		}
	default:
		return errors.New("identity_mode must be 'firebase' or 'hmac'")
	}

	if c.CookieName == "" {
		c.CookieName = "pq_session"
	}
	if c.BcryptCost == 0 {
		c.BcryptCost = 10
	}
	return nil
}
