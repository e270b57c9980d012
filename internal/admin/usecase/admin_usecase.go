package usecase

import (
	"context"
	"fmt"
	"time"

	"pass-questions/internal/admin/domain/model"
	"pass-questions/internal/admin/domain/repository"
	authmodel "pass-questions/internal/auth/domain/model"
	authusecase "pass-questions/internal/auth/usecase"
	examsmodel "pass-questions/internal/exams/domain/model"
	"pass-questions/internal/shared/logger"

	"go.uber.org/zap"
)

// resourcesPerUpload counts the questions and answers PDFs of an upload.
const resourcesPerUpload = 2

// AdminUsecaseInterface defines the contract for the admin dashboard and
// user management.
type AdminUsecaseInterface interface {
	Stats(ctx context.Context, admin *authmodel.Session) (*model.Stats, error)
	Dashboard(ctx context.Context, admin *authmodel.Session) *model.Dashboard
	Users(ctx context.Context) ([]model.UserSummary, error)
	UpdateRole(ctx context.Context, uid, role string) error
	UpdatePayment(ctx context.Context, uid string, paid bool) error
}

type AdminUsecase struct {
	users   repository.UserDirectory
	uploads repository.UploadCatalog
	log     logger.Logger
	now     func() time.Time
}

var _ AdminUsecaseInterface = (*AdminUsecase)(nil)

func NewAdminUsecase(users repository.UserDirectory, uploads repository.UploadCatalog, log logger.Logger) *AdminUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AdminUsecase{users: users, uploads: uploads, log: log.WithComponent("admin"), now: time.Now}
}

func (uc *AdminUsecase) Stats(ctx context.Context, admin *authmodel.Session) (*model.Stats, error) {
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return uc.stats(ctx, admin, users), nil
}

func (uc *AdminUsecase) stats(ctx context.Context, admin *authmodel.Session, users []*authmodel.User) *model.Stats {
	stats := &model.Stats{TotalUsers: len(users), AdminName: adminName(admin)}

	y, m, d := uc.now().UTC().Date()
	for _, u := range users {
		if u.Paid {
			stats.ActiveMembers++
		}
		if !u.CreatedAt.IsZero() {
			cy, cm, cd := u.CreatedAt.UTC().Date()
			if cy == y && cm == m && cd == d {
				stats.NewSignups++
			}
		}
	}

	if uc.uploads != nil {
		n, err := uc.uploads.CountUploads(ctx)
		if err != nil {
			uc.log.Warn("Failed to count uploads", zap.Error(err))
		}
		stats.TotalResources = n * resourcesPerUpload
	}
	return stats
}

func adminName(s *authmodel.Session) string {
	if s == nil {
		return "Admin"
	}
	u := authmodel.User{Username: s.Username, Email: s.Email}
	if name := u.DisplayName(); name != "" {
		return name
	}
	return "Admin"
}

// Dashboard never fails. Sections that cannot be loaded come back empty.
func (uc *AdminUsecase) Dashboard(ctx context.Context, admin *authmodel.Session) *model.Dashboard {
	dash := &model.Dashboard{
		Members: make([]*authmodel.User, 0),
		Uploads: make([]*examsmodel.Exam, 0),
	}

	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		uc.log.Warn("Failed to load members", zap.Error(err))
	}
	for _, u := range users {
		if u.Paid {
			dash.Members = append(dash.Members, u)
		}
	}
	dash.Stats = uc.stats(ctx, admin, users)

	if uc.uploads != nil {
		uploads, err := uc.uploads.ListUploaded(ctx)
		if err != nil {
			uc.log.Warn("Failed to load uploads", zap.Error(err))
		} else {
			dash.Uploads = uploads
		}
	}
	return dash
}

func (uc *AdminUsecase) Users(ctx context.Context) ([]model.UserSummary, error) {
	users, err := uc.users.ListUsers(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]model.UserSummary, 0, len(users))
	for _, u := range users {
		out = append(out, model.Summarize(u))
	}
	return out, nil
}

func (uc *AdminUsecase) UpdateRole(ctx context.Context, uid, role string) error {
	if !authmodel.ValidRole(role) {
		return authusecase.ErrInvalidRole
	}
	if err := uc.users.SetRole(ctx, uid, role); err != nil {
		return err
	}
	uc.log.Info("User role updated", zap.String("uid", uid), zap.String("role", role))
	return nil
}

func (uc *AdminUsecase) UpdatePayment(ctx context.Context, uid string, paid bool) error {
	if err := uc.users.SetPaid(ctx, uid, paid); err != nil {
		return err
	}
	uc.log.Info("User payment status updated", zap.String("uid", uid), zap.Bool("paid", paid))
	return nil
}
