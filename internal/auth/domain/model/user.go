package model

import (
	"strings"
	"time"
)

// Roles stored on the user profile.
const (
	RoleAdmin = "admin"
	RoleUser  = "user"
)

// User is the profile document kept in the users collection, keyed by the
// identity provider's uid.
type User struct {
	UID               string     `json:"uid" bson:"_id"`
	Email             string     `json:"email" bson:"email"`
	Username          string     `json:"username" bson:"username"`
	Role              string     `json:"role" bson:"role"`
	Paid              bool       `json:"paid" bson:"paid"`
	ActiveSessionID   string     `json:"-" bson:"active_session_id,omitempty"`
	SessionCreated    *time.Time `json:"-" bson:"session_created,omitempty"`
	DeviceFingerprint string     `json:"-" bson:"device_fingerprint,omitempty"`
	LastLogin         *time.Time `json:"last_login,omitempty" bson:"last_login,omitempty"`
	LoginCount        int        `json:"login_count" bson:"login_count"`
	CreatedAt         time.Time  `json:"created_at" bson:"created_at"`
	UpdatedAt         time.Time  `json:"updated_at" bson:"updated_at"`
}

func (u *User) IsAdmin() bool { return u.Role == RoleAdmin }

// DisplayName is the username, or the local part of the email when unset.
func (u *User) DisplayName() string {
	if u.Username != "" {
		return u.Username
	}
	if i := strings.Index(u.Email, "@"); i > 0 {
		return u.Email[:i]
	}
	return u.Email
}

// ValidRole reports whether role can be assigned to a user.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleUser
}
