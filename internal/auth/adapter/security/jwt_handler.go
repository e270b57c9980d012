package security

import (
	"context"
	"errors"
	"time"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

var (
	ErrTokenInvalid          = errors.New("token is invalid")
	ErrTokenExpired          = errors.New("token is expired")
	ErrTokenSignatureInvalid = errors.New("token signature is invalid")
)

// JWTokenService signs the session cookie with HS256.
type JWTokenService struct {
	secretKey []byte
	issuer    string
	ttl       time.Duration
}

var _ repository.TokenService = (*JWTokenService)(nil)

// NewJWTokenService creates a new JWT token service
func NewJWTokenService(cfg *config.Config) (*JWTokenService, error) {
	if cfg.SessionSecretKey == "" {
		return nil, errors.New("session secret key cannot be empty")
	}
	if cfg.SessionIssuer == "" {
		return nil, errors.New("session issuer cannot be empty")
	}
	if cfg.SessionTTL <= 0 {
		return nil, errors.New("session TTL must be positive")
	}

	return &JWTokenService{
		secretKey: []byte(cfg.SessionSecretKey),
		issuer:    cfg.SessionIssuer,
		ttl:       cfg.SessionTTL,
	}, nil
}

// IssueSessionToken signs the session. Expiry is counted from the login
// time so a reissued cookie keeps the original deadline.
func (s *JWTokenService) IssueSessionToken(ctx context.Context, session *model.Session) (string, error) {
	issued := session.LoginTime
	if issued.IsZero() {
		issued = time.Now()
	}
	claims := &repository.SessionClaims{
		Email:             session.Email,
		Username:          session.Username,
		Role:              session.Role,
		Paid:              session.Paid,
		SessionID:         session.SessionID,
		DeviceFingerprint: session.DeviceFingerprint,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   session.UID,
			ExpiresAt: jwt.NewNumericDate(issued.Add(s.ttl)),
			IssuedAt:  jwt.NewNumericDate(issued),
			NotBefore: jwt.NewNumericDate(issued.Add(-time.Minute)),
			Issuer:    s.issuer,
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString(s.secretKey)
}

// ParseSessionToken validates a session cookie and returns the session.
func (s *JWTokenService) ParseSessionToken(ctx context.Context, tokenString string) (*model.Session, error) {
	if tokenString == "" {
		return nil, ErrTokenInvalid
	}

	token, err := jwt.ParseWithClaims(tokenString, &repository.SessionClaims{}, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		return s.secretKey, nil
	}, jwt.WithIssuer(s.issuer))

	if err != nil {
		switch {
		case errors.Is(err, jwt.ErrTokenExpired):
			return nil, ErrTokenExpired
		case errors.Is(err, jwt.ErrTokenSignatureInvalid), errors.Is(err, ErrTokenSignatureInvalid):
			return nil, ErrTokenSignatureInvalid
		}
		return nil, ErrTokenInvalid
	}

	claims, ok := token.Claims.(*repository.SessionClaims)
	if !ok || !token.Valid || claims.Subject == "" {
		return nil, ErrTokenInvalid
	}

	session := &model.Session{
		UID:               claims.Subject,
		Email:             claims.Email,
		Username:          claims.Username,
		Role:              claims.Role,
		Paid:              claims.Paid,
		SessionID:         claims.SessionID,
		DeviceFingerprint: claims.DeviceFingerprint,
	}
	if claims.IssuedAt != nil {
		session.LoginTime = claims.IssuedAt.Time
	}
	return session, nil
}
