package testutil

import (
	"time"

	"pass-questions/internal/auth/adapter/security"
	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
)

const (
	IdentitySecret = "identity-secret-for-tests"
	SessionSecret  = "session-secret-key-that-is-at-least-32-chars"
)

// Config returns an auth config using HMAC identity tokens.
func Config() *config.Config {
	return &config.Config{
		SessionSecretKey:   SessionSecret,
		SessionIssuer:      "pass-questions-test",
		SessionTTL:         24 * time.Hour,
		SessionCacheTTL:    30 * time.Second,
		CookieName:         "pq_session",
		CookiePath:         "/",
		CookieHTTPOnly:     true,
		CookieSameSite:     "Lax",
		IdentityMode:       config.IdentityModeHMAC,
		IdentityHMACSecret: IdentitySecret,
		PaidAccessRule:     "user.role == 'admin' || user.paid",
		AdminAccessRule:    "user.role == 'admin'",
		BcryptCost:         4,
	}
}

// UserFixture provides test data for User model
type UserFixture struct{}

func NewUserFixture() *UserFixture {
	return &UserFixture{}
}

func (f *UserFixture) Student(uid string) *model.User {
	now := time.Now().UTC()
	return &model.User{
		UID:       uid,
		Email:     uid + "@example.com",
		Username:  uid,
		Role:      model.RoleUser,
		CreatedAt: now,
		UpdatedAt: now,
	}
}

func (f *UserFixture) PaidStudent(uid string) *model.User {
	u := f.Student(uid)
	u.Paid = true
	return u
}

func (f *UserFixture) Admin(uid string) *model.User {
	u := f.Student(uid)
	u.Role = model.RoleAdmin
	return u
}

// SessionFixture provides cookie sessions
type SessionFixture struct{}

func NewSessionFixture() *SessionFixture {
	return &SessionFixture{}
}

func (f *SessionFixture) For(user *model.User, sessionID string) *model.Session {
	return &model.Session{
		UID:       user.UID,
		Email:     user.Email,
		Username:  user.Username,
		Role:      user.Role,
		Paid:      user.Paid,
		SessionID: sessionID,
		LoginTime: time.Now(),
	}
}

// IdentityFixture mints identity tokens accepted in HMAC mode.
type IdentityFixture struct {
	verifier *security.HMACVerifier
}

func NewIdentityFixture(cfg *config.Config) *IdentityFixture {
	return &IdentityFixture{verifier: security.NewHMACVerifier(cfg.IdentityHMACSecret, cfg.SessionIssuer)}
}

func (f *IdentityFixture) Token(uid, email string) string {
	token, err := f.verifier.SignIdentity(model.Identity{UID: uid, Email: email, EmailVerified: true}, time.Hour)
	if err != nil {
		panic(err)
	}
	return token
}

// TestData provides all fixtures
type TestData struct {
	Users      *UserFixture
	Sessions   *SessionFixture
	Identities *IdentityFixture
}

func NewTestData(cfg *config.Config) *TestData {
	return &TestData{
		Users:      NewUserFixture(),
		Sessions:   NewSessionFixture(),
		Identities: NewIdentityFixture(cfg),
	}
}
