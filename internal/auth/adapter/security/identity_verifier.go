package security

import (
	"context"
	"crypto/rsa"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"

	"github.com/golang-jwt/jwt/v5"
)

var ErrUnknownKeyID = errors.New("identity token signed with unknown key")

// identityClaims mirrors the Firebase ID token payload.
type identityClaims struct {
	Email         string `json:"email"`
	EmailVerified bool   `json:"email_verified"`
	Name          string `json:"name"`
	jwt.RegisteredClaims
}

// NewIdentityVerifier returns the verifier selected by cfg.IdentityMode.
func NewIdentityVerifier(cfg *config.Config) (repository.IdentityVerifier, error) {
	switch cfg.IdentityMode {
	case config.IdentityModeFirebase:
		return NewFirebaseVerifier(cfg.FirebaseProjectID, cfg.IdentityCertsURL, nil), nil
	case config.IdentityModeHMAC:
		return NewHMACVerifier(cfg.IdentityHMACSecret, cfg.SessionIssuer), nil
	}
	return nil, fmt.Errorf("unsupported identity mode %q", cfg.IdentityMode)
}

// FirebaseVerifier checks RS256 ID tokens against Google's published
// signing certificates.
type FirebaseVerifier struct {
	projectID string
	certsURL  string
	client    *http.Client

	mu      sync.RWMutex
	keys    map[string]*rsa.PublicKey
	expires time.Time
}

func NewFirebaseVerifier(projectID, certsURL string, client *http.Client) *FirebaseVerifier {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FirebaseVerifier{projectID: projectID, certsURL: certsURL, client: client}
}

func (v *FirebaseVerifier) Verify(ctx context.Context, idToken string) (*model.Identity, error) {
	claims := &identityClaims{}
	_, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodRSA); !ok {
			return nil, ErrTokenSignatureInvalid
		}
		kid, _ := token.Header["kid"].(string)
		return v.key(ctx, kid)
	},
		jwt.WithValidMethods([]string{"RS256"}),
		jwt.WithIssuer("https://securetoken.google.com/"+v.projectID),
		jwt.WithAudience(v.projectID),
		jwt.WithIssuedAt(),
	)
	if err != nil {
		return nil, fmt.Errorf("verify identity token: %w", err)
	}
	return identityFrom(claims)
}

func (v *FirebaseVerifier) key(ctx context.Context, kid string) (*rsa.PublicKey, error) {
	v.mu.RLock()
	k, ok := v.keys[kid]
	fresh := time.Now().Before(v.expires)
	v.mu.RUnlock()
	if ok && fresh {
		return k, nil
	}

	if err := v.refresh(ctx); err != nil {
		return nil, err
	}
	v.mu.RLock()
	defer v.mu.RUnlock()
	if k, ok := v.keys[kid]; ok {
		return k, nil
	}
	return nil, ErrUnknownKeyID
}

func (v *FirebaseVerifier) refresh(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.certsURL, nil)
	if err != nil {
		return err
	}
	resp, err := v.client.Do(req)
	if err != nil {
		return fmt.Errorf("fetch identity certificates: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("fetch identity certificates: status %d", resp.StatusCode)
	}

	var certs map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&certs); err != nil {
		return fmt.Errorf("decode identity certificates: %w", err)
	}
	keys := make(map[string]*rsa.PublicKey, len(certs))
	for kid, pemCert := range certs {
		pub, err := jwt.ParseRSAPublicKeyFromPEM([]byte(pemCert))
		if err != nil {
			return fmt.Errorf("parse certificate %s: %w", kid, err)
		}
		keys[kid] = pub
	}

	v.mu.Lock()
	v.keys = keys
	v.expires = time.Now().Add(maxAge(resp.Header.Get("Cache-Control"), time.Hour))
	v.mu.Unlock()
	return nil
}

func maxAge(cacheControl string, fallback time.Duration) time.Duration {
	for _, part := range strings.Split(cacheControl, ",") {
		part = strings.TrimSpace(part)
		if v, ok := strings.CutPrefix(part, "max-age="); ok {
			if secs, err := strconv.Atoi(v); err == nil && secs > 0 {
				return time.Duration(secs) * time.Second
			}
		}
	}
	return fallback
}

// HMACVerifier accepts HS256 identity tokens signed with a shared secret.
// It stands in for the identity provider in development and tests.
type HMACVerifier struct {
	secret []byte
	issuer string
}

func NewHMACVerifier(secret, issuer string) *HMACVerifier {
	return &HMACVerifier{secret: []byte(secret), issuer: issuer}
}

func (v *HMACVerifier) Verify(ctx context.Context, idToken string) (*model.Identity, error) {
	claims := &identityClaims{}
	opts := []jwt.ParserOption{jwt.WithValidMethods([]string{"HS256"})}
	if v.issuer != "" {
		opts = append(opts, jwt.WithIssuer(v.issuer))
	}
	_, err := jwt.ParseWithClaims(idToken, claims, func(token *jwt.Token) (interface{}, error) {
		return v.secret, nil
	}, opts...)
	if err != nil {
		return nil, fmt.Errorf("verify identity token: %w", err)
	}
	return identityFrom(claims)
}

// SignIdentity mints an HS256 identity token accepted by HMACVerifier.
func (v *HMACVerifier) SignIdentity(identity model.Identity, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := &identityClaims{
		Email:         identity.Email,
		EmailVerified: identity.EmailVerified,
		Name:          identity.Name,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.UID,
			Issuer:    v.issuer,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	return jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(v.secret)
}

func identityFrom(claims *identityClaims) (*model.Identity, error) {
	if claims.Subject == "" {
		return nil, errors.New("identity token has no subject")
	}
	return &model.Identity{
		UID:           claims.Subject,
		Email:         strings.ToLower(claims.Email),
		EmailVerified: claims.EmailVerified,
		Name:          claims.Name,
	}, nil
}
