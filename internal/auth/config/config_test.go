package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET_KEY", "test-secret")
	t.Setenv("IDENTITY_MODE", "hmac")
	t.Setenv("IDENTITY_HMAC_SECRET", "idp-secret")
	t.Setenv("COOKIE_SAME_SITE", "strict")

	cfg, err := LoadConfig()

	require.NoError(t, err)
	assert.Equal(t, 24*time.Hour, cfg.SessionTTL)
	assert.Equal(t, "pq_session", cfg.CookieName)
	assert.Equal(t, "Strict", cfg.CookieSameSite)
	assert.Equal(t, "user.role == 'admin' || user.paid", cfg.PaidAccessRule)
}

func TestLoadConfig_MissingSecret(t *testing.T) {
	t.Setenv("SESSION_SECRET_KEY", "")
	_, err := LoadConfig()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			SessionSecretKey:  "s",
			SessionTTL:        time.Hour,
			CookieSameSite:    "Lax",
			IdentityMode:      IdentityModeFirebase,
			FirebaseProjectID: "pass-questions",
		}
	}

	assert.NoError(t, base().Validate())

	c := base()
	c.CookieSameSite = "sideways"
	assert.Error(t, c.Validate())

	c = base()
	c.FirebaseProjectID = ""
	assert.ErrorContains(t, c.Validate(), "firebase_project_id")

	c = base()
	c.IdentityMode = "HMAC"
	assert.ErrorContains(t, c.Validate(), "identity_hmac_secret")

	c = base()
	c.IdentityMode = "saml"
	assert.Error(t, c.Validate())
}
