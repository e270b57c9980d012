package policy

import (
	"testing"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaultRules() *config.Config {
	return &config.Config{
		PaidAccessRule:  "user.role == 'admin' || user.paid",
		AdminAccessRule: "user.role == 'admin'",
	}
}

func TestCELPolicy_DefaultRules(t *testing.T) {
	p, err := NewCELPolicy(defaultRules())
	require.NoError(t, err)

	testCases := []struct {
		name      string
		session   *model.Session
		wantPaid  bool
		wantAdmin bool
	}{
		{"unpaid user", &model.Session{UID: "u", Role: model.RoleUser}, false, false},
		{"paid user", &model.Session{UID: "u", Role: model.RoleUser, Paid: true}, true, false},
		{"unpaid admin", &model.Session{UID: "a", Role: model.RoleAdmin}, true, true},
		{"no session", nil, false, false},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			paid, err := p.AllowPaid(tc.session)
			require.NoError(t, err)
			admin, err := p.AllowAdmin(tc.session)
			require.NoError(t, err)

			assert.Equal(t, tc.wantPaid, paid)
			assert.Equal(t, tc.wantAdmin, admin)
		})
	}
}

func TestCELPolicy_CustomRule(t *testing.T) {
	cfg := defaultRules()
	cfg.PaidAccessRule = "user.paid || user.email.endsWith('@staff.example.com')"
	p, err := NewCELPolicy(cfg)
	require.NoError(t, err)

	ok, err := p.AllowPaid(&model.Session{Email: "tutor@staff.example.com"})
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestCELPolicy_RejectsBadRules(t *testing.T) {
	cfg := defaultRules()
	cfg.AdminAccessRule = "user.role =="
	_, err := NewCELPolicy(cfg)
	assert.Error(t, err)

	cfg = defaultRules()
	cfg.PaidAccessRule = "'yes'"
	_, err = NewCELPolicy(cfg)
	assert.Error(t, err)
}
