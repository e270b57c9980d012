package model

import "time"

// Reasons a session stops being valid.
const (
	ReasonNoSession    = "no_session"
	ReasonInvalid      = "invalid_session"
	ReasonUserNotFound = "user_not_found"
	ReasonAnotherLogin = "another_login"
	ReasonExpired      = "expired"
	ReasonLoggedOut    = "logged_out"
)

// Session is what the signed session cookie carries.
type Session struct {
	UID               string    `json:"uid"`
	Email             string    `json:"email"`
	Username          string    `json:"username"`
	Role              string    `json:"role"`
	Paid              bool      `json:"paid"`
	SessionID         string    `json:"session_id"`
	DeviceFingerprint string    `json:"device_fingerprint"`
	LoginTime         time.Time `json:"login_time"`
}

func (s *Session) IsAdmin() bool { return s.Role == RoleAdmin }

// HasAccess is true for admins and paid users.
func (s *Session) HasAccess() bool { return s.IsAdmin() || s.Paid }

// SessionState is the server-side record a cookie is checked against.
type SessionState struct {
	ActiveSessionID string     `json:"active_session_id"`
	SessionCreated  *time.Time `json:"session_created,omitempty"`
}

// SessionCheck is the outcome of validating a cookie session.
type SessionCheck struct {
	Valid   bool   `json:"valid"`
	Reason  string `json:"reason,omitempty"`
	Message string `json:"message"`
}

// Revocation announces that a session id is no longer active.
type Revocation struct {
	UID       string `json:"uid"`
	SessionID string `json:"session_id"`
	Reason    string `json:"reason"`
	Origin    string `json:"origin,omitempty"`
}

// Identity is a verified identity-provider token.
type Identity struct {
	UID           string
	Email         string
	EmailVerified bool
	Name          string
}
