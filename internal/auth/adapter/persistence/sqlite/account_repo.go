package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/auth/usecase"

	"github.com/jmoiron/sqlx"
)

// AccountRepository keeps local accounts in the `user` table.
type AccountRepository struct {
	db *sqlx.DB
}

var _ repository.AccountRepository = (*AccountRepository)(nil)

func NewAccountRepository(db *sqlx.DB) *AccountRepository {
	return &AccountRepository{db: db}
}

const accountColumns = `id, username, email, password_hash, is_admin, has_paid, is_verified,
	verification_token, firebase_uid, created_at`

func (r *AccountRepository) Create(ctx context.Context, account *model.Account) error {
	if account.CreatedAt.IsZero() {
		account.CreatedAt = time.Now().UTC()
	}
	res, err := r.db.NamedExecContext(ctx, `
		INSERT INTO user (username, email, password_hash, is_admin, has_paid, is_verified,
			verification_token, firebase_uid, created_at)
		VALUES (:username, :email, :password_hash, :is_admin, :has_paid, :is_verified,
			:verification_token, :firebase_uid, :created_at)`, account)
	if err != nil {
		return translateUnique(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	account.ID = id
	return nil
}

func (r *AccountRepository) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM user WHERE email = ?`, email)
}

func (r *AccountRepository) GetByVerificationToken(ctx context.Context, token string) (*model.Account, error) {
	return r.getOne(ctx, `SELECT `+accountColumns+` FROM user WHERE verification_token = ?`, token)
}

func (r *AccountRepository) getOne(ctx context.Context, query string, arg interface{}) (*model.Account, error) {
	var account model.Account
	if err := r.db.GetContext(ctx, &account, query, arg); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, usecase.ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}

// MarkVerified flags the account verified and burns its token.
func (r *AccountRepository) MarkVerified(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE user SET is_verified = 1, verification_token = NULL WHERE id = ?`, id)
	return affected(res, err)
}

func (r *AccountRepository) SetPaidByEmail(ctx context.Context, email string, paid bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE user SET has_paid = ? WHERE email = ?`, paid, email)
	return affected(res, err)
}

func (r *AccountRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

func affected(res sql.Result, err error) error {
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return usecase.ErrAccountNotFound
	}
	return nil
}

func translateUnique(err error) error {
	msg := strings.ToLower(err.Error())
	if !strings.Contains(msg, "unique constraint failed") {
		return err
	}
	switch {
	case strings.Contains(msg, "user.username"):
		return usecase.ErrUsernameTaken
	case strings.Contains(msg, "user.email"):
		return usecase.ErrEmailTaken
	}
	return usecase.ErrUserExists
}
