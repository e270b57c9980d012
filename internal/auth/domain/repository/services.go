package repository

import (
	"context"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"pass-questions/internal/auth/domain/model"
)

// TokenService signs and verifies the session cookie.
type TokenService interface {
	IssueSessionToken(ctx context.Context, session *model.Session) (string, error)
	ParseSessionToken(ctx context.Context, token string) (*model.Session, error)
}

// SessionClaims is the JWT form of model.Session.
type SessionClaims struct {
	Email             string `json:"email"`
	Username          string `json:"username,omitempty"`
	Role              string `json:"role"`
	Paid              bool   `json:"paid"`
	SessionID         string `json:"sid"`
	DeviceFingerprint string `json:"fp,omitempty"`
	jwt.RegisteredClaims
}

// IdentityVerifier checks tokens minted by the identity provider.
type IdentityVerifier interface {
	Verify(ctx context.Context, idToken string) (*model.Identity, error)
}

// SessionCache fronts the user store for session checks and fans out
// revocations across instances.
type SessionCache interface {
	Get(ctx context.Context, uid string) (*model.SessionState, error)
	Set(ctx context.Context, uid string, state *model.SessionState, ttl time.Duration) error
	Invalidate(ctx context.Context, uid string) error
	PublishRevocation(ctx context.Context, rev model.Revocation) error
	Ping(ctx context.Context) error
}

// AccessPolicy decides whether a session may reach gated routes.
type AccessPolicy interface {
	AllowPaid(session *model.Session) (bool, error)
	AllowAdmin(session *model.Session) (bool, error)
}
