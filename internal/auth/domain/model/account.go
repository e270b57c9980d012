package model

import (
	"database/sql"
	"time"
)

// Account is a row of the local user table used for password logins and
// payment bookkeeping.
type Account struct {
	ID                int64          `db:"id"`
	Username          string         `db:"username"`
	Email             string         `db:"email"`
	PasswordHash      string         `db:"password_hash"`
	IsAdmin           bool           `db:"is_admin"`
	HasPaid           bool           `db:"has_paid"`
	IsVerified        bool           `db:"is_verified"`
	VerificationToken sql.NullString `db:"verification_token"`
	FirebaseUID       sql.NullString `db:"firebase_uid"`
	CreatedAt         time.Time      `db:"created_at"`
}
