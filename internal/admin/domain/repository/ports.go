package repository

import (
	"context"

	authmodel "pass-questions/internal/auth/domain/model"
	examsmodel "pass-questions/internal/exams/domain/model"
)

// UserDirectory reads and edits user profiles. The auth usecase satisfies
// it.
type UserDirectory interface {
	ListUsers(ctx context.Context) ([]*authmodel.User, error)
	SetRole(ctx context.Context, uid, role string) error
	SetPaid(ctx context.Context, uid string, paid bool) error
}

// UploadCatalog lists admin exam uploads. The exams usecase satisfies it.
type UploadCatalog interface {
	ListUploaded(ctx context.Context) ([]*examsmodel.Exam, error)
	CountUploads(ctx context.Context) (int64, error)
}
