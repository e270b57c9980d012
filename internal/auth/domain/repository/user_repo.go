package repository

import (
	"context"
	"time"

	"pass-questions/internal/auth/domain/model"
)

// SessionStart is written to the profile when a login completes.
type SessionStart struct {
	SessionID         string
	DeviceFingerprint string
	At                time.Time
}

// UserRepository persists user profiles and their active session.
type UserRepository interface {
	GetByID(ctx context.Context, uid string) (*model.User, error)
	Create(ctx context.Context, user *model.User) error
	// StartSession replaces the active session and bumps login bookkeeping.
	StartSession(ctx context.Context, uid string, start SessionStart) error
	ClearSession(ctx context.Context, uid string) error
	UpdateRole(ctx context.Context, uid, role string) error
	UpdatePaid(ctx context.Context, uid string, paid bool) error
	List(ctx context.Context) ([]*model.User, error)
	ListPaid(ctx context.Context) ([]*model.User, error)
	Count(ctx context.Context) (int64, error)
	CountPaid(ctx context.Context) (int64, error)
	CountCreatedSince(ctx context.Context, since time.Time) (int64, error)
	Ping(ctx context.Context) error
}

// AccountRepository persists local accounts.
type AccountRepository interface {
	Create(ctx context.Context, account *model.Account) error
	GetByEmail(ctx context.Context, email string) (*model.Account, error)
	GetByVerificationToken(ctx context.Context, token string) (*model.Account, error)
	MarkVerified(ctx context.Context, id int64) error
	SetPaidByEmail(ctx context.Context, email string, paid bool) error
	Ping(ctx context.Context) error
}
