package usecase

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"pass-questions/internal/auth/domain/model"
)

// Landing pages after login.
const (
	RedirectAdminDashboard = "/admin/dashboard"
	RedirectPayment        = "/payment/"
	RedirectDashboard      = "/dashboard"
	RedirectLogin          = "/auth/login"
)

// NewSessionToken returns 32 random bytes, URL-safe base64 without padding.
func NewSessionToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("generate session token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}

// DeviceFingerprint is the hex sha256 of "<user agent>:<ip>".
func DeviceFingerprint(userAgent, ip string) string {
	sum := sha256.Sum256([]byte(userAgent + ":" + ip))
	return hex.EncodeToString(sum[:])
}

// RedirectFor picks the landing page for a freshly logged-in user.
func RedirectFor(role string, paid bool) string {
	switch {
	case role == model.RoleAdmin:
		return RedirectAdminDashboard
	case !paid:
		return RedirectPayment
	default:
		return RedirectDashboard
	}
}
