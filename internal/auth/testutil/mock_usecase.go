package testutil

import (
	"context"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/usecase"

	"github.com/stretchr/testify/mock"
)

// MockAuthUsecase is a testify mock of usecase.AuthUsecaseInterface.
type MockAuthUsecase struct {
	mock.Mock
}

func (m *MockAuthUsecase) LoginComplete(ctx context.Context, req usecase.LoginCompleteRequest) (*usecase.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResult), args.Error(1)
}

func (m *MockAuthUsecase) Signup(ctx context.Context, req usecase.SignupRequest) (*model.Account, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *MockAuthUsecase) VerifyEmail(ctx context.Context, token string) error {
	return m.Called(ctx, token).Error(0)
}

func (m *MockAuthUsecase) PasswordLogin(ctx context.Context, req usecase.PasswordLoginRequest) (*usecase.LoginResult, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*usecase.LoginResult), args.Error(1)
}

func (m *MockAuthUsecase) ValidateSession(ctx context.Context, session *model.Session) (model.SessionCheck, error) {
	args := m.Called(ctx, session)
	return args.Get(0).(model.SessionCheck), args.Error(1)
}

func (m *MockAuthUsecase) Logout(ctx context.Context, session *model.Session) error {
	return m.Called(ctx, session).Error(0)
}

func (m *MockAuthUsecase) ForceLogoutAll(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *MockAuthUsecase) RefreshRole(ctx context.Context, session *model.Session) (*model.Session, bool, error) {
	args := m.Called(ctx, session)
	if args.Get(0) == nil {
		return nil, args.Bool(1), args.Error(2)
	}
	return args.Get(0).(*model.Session), args.Bool(1), args.Error(2)
}

func (m *MockAuthUsecase) IssueToken(ctx context.Context, session *model.Session) (string, error) {
	args := m.Called(ctx, session)
	return args.String(0), args.Error(1)
}

func (m *MockAuthUsecase) ParseToken(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

func (m *MockAuthUsecase) GetUser(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockAuthUsecase) ListUsers(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *MockAuthUsecase) SetRole(ctx context.Context, uid, role string) error {
	return m.Called(ctx, uid, role).Error(0)
}

func (m *MockAuthUsecase) SetPaid(ctx context.Context, uid string, paid bool) error {
	return m.Called(ctx, uid, paid).Error(0)
}

var _ usecase.AuthUsecaseInterface = (*MockAuthUsecase)(nil)
