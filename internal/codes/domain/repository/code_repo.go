package repository

import (
	"context"

	"pass-questions/internal/codes/domain/model"
)

// CodeRepository persists verification codes.
type CodeRepository interface {
	// Insert fails with usecase.ErrCodeExists when the code is taken.
	Insert(ctx context.Context, code *model.Code) error
	// List returns matching codes, newest first.
	List(ctx context.Context, filter model.CodeFilter) ([]*model.Code, error)
	Update(ctx context.Context, id string, patch model.CodePatch) error
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
}
