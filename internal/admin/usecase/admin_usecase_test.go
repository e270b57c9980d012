package usecase_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"pass-questions/internal/admin/usecase"
	authmodel "pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/testutil"
	authusecase "pass-questions/internal/auth/usecase"
	examsmodel "pass-questions/internal/exams/domain/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

type stubUploads struct {
	exams    []*examsmodel.Exam
	count    int64
	err      error
	countErr error
}

func (s stubUploads) ListUploaded(ctx context.Context) ([]*examsmodel.Exam, error) {
	return s.exams, s.err
}

func (s stubUploads) CountUploads(ctx context.Context) (int64, error) {
	return s.count, s.countErr
}

type AdminUsecaseTestSuite struct {
	suite.Suite
	users *testutil.MockAuthUsecase
	ctx   context.Context
	admin *authmodel.Session
}

func (s *AdminUsecaseTestSuite) SetupTest() {
	s.users = &testutil.MockAuthUsecase{}
	s.ctx = context.Background()
	s.admin = &authmodel.Session{UID: "admin-1", Email: "ama@example.com", Role: authmodel.RoleAdmin}
}

func (s *AdminUsecaseTestSuite) people() []*authmodel.User {
	now := time.Now().UTC()
	return []*authmodel.User{
		{UID: "u1", Email: "a@x.com", Paid: true, CreatedAt: now},
		{UID: "u2", Email: "b@x.com", Paid: true, CreatedAt: now.AddDate(0, 0, -3)},
		{UID: "u3", Email: "c@x.com", CreatedAt: now},
		{UID: "u4", Email: "d@x.com", Role: authmodel.RoleAdmin},
	}
}

func (s *AdminUsecaseTestSuite) TestStats() {
	// Arrange
	s.users.On("ListUsers", mock.Anything).Return(s.people(), nil)
	uc := usecase.NewAdminUsecase(s.users, stubUploads{count: 4}, nil)

	// Act
	stats, err := uc.Stats(s.ctx, s.admin)

	// Assert
	require.NoError(s.T(), err)
	assert.Equal(s.T(), 2, stats.ActiveMembers)
	assert.Equal(s.T(), int64(8), stats.TotalResources)
	assert.Equal(s.T(), 2, stats.NewSignups)
	assert.Equal(s.T(), 4, stats.TotalUsers)
	assert.Equal(s.T(), "ama", stats.AdminName)
}

func (s *AdminUsecaseTestSuite) TestStats_AdminNameAndUploadFailure() {
	s.users.On("ListUsers", mock.Anything).Return([]*authmodel.User{}, nil)
	uc := usecase.NewAdminUsecase(s.users, stubUploads{countErr: errors.New("db down")}, nil)

	stats, err := uc.Stats(s.ctx, &authmodel.Session{Username: "kwame", Email: "k@x.com"})
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "kwame", stats.AdminName)
	assert.Zero(s.T(), stats.TotalResources)

	stats, err = uc.Stats(s.ctx, nil)
	require.NoError(s.T(), err)
	assert.Equal(s.T(), "Admin", stats.AdminName)
}

func (s *AdminUsecaseTestSuite) TestStats_UserListFailure() {
	s.users.On("ListUsers", mock.Anything).Return(nil, errors.New("db down"))
	uc := usecase.NewAdminUsecase(s.users, nil, nil)

	_, err := uc.Stats(s.ctx, s.admin)

	assert.ErrorContains(s.T(), err, "db down")
}

func (s *AdminUsecaseTestSuite) TestDashboard() {
	// Arrange
	s.users.On("ListUsers", mock.Anything).Return(s.people(), nil)
	exams := []*examsmodel.Exam{{ID: "BSc-100-1-CSC-abcd1234"}}
	uc := usecase.NewAdminUsecase(s.users, stubUploads{exams: exams, count: 1}, nil)

	// Act
	dash := uc.Dashboard(s.ctx, s.admin)

	// Assert
	require.Len(s.T(), dash.Members, 2)
	assert.Equal(s.T(), "u1", dash.Members[0].UID)
	assert.Equal(s.T(), exams, dash.Uploads)
	assert.Equal(s.T(), int64(2), dash.Stats.TotalResources)
}

func (s *AdminUsecaseTestSuite) TestDashboard_DegradesOnFailures() {
	s.users.On("ListUsers", mock.Anything).Return(nil, errors.New("db down"))
	uc := usecase.NewAdminUsecase(s.users, stubUploads{err: errors.New("db down")}, nil)

	dash := uc.Dashboard(s.ctx, s.admin)

	assert.Empty(s.T(), dash.Members)
	assert.NotNil(s.T(), dash.Uploads)
	assert.Empty(s.T(), dash.Uploads)
	assert.Equal(s.T(), 0, dash.Stats.TotalUsers)
}

func (s *AdminUsecaseTestSuite) TestUsers_DefaultsRole() {
	s.users.On("ListUsers", mock.Anything).Return(s.people(), nil)
	uc := usecase.NewAdminUsecase(s.users, nil, nil)

	users, err := uc.Users(s.ctx)

	require.NoError(s.T(), err)
	require.Len(s.T(), users, 4)
	assert.Equal(s.T(), authmodel.RoleUser, users[0].Role)
	assert.Equal(s.T(), authmodel.RoleAdmin, users[3].Role)
	assert.True(s.T(), users[0].Paid)
}

func (s *AdminUsecaseTestSuite) TestUpdateRole() {
	s.users.On("SetRole", mock.Anything, "u1", authmodel.RoleAdmin).Return(nil)
	uc := usecase.NewAdminUsecase(s.users, nil, nil)

	require.NoError(s.T(), uc.UpdateRole(s.ctx, "u1", authmodel.RoleAdmin))
	assert.ErrorIs(s.T(), uc.UpdateRole(s.ctx, "u1", "owner"), authusecase.ErrInvalidRole)
	s.users.AssertNumberOfCalls(s.T(), "SetRole", 1)
}

func (s *AdminUsecaseTestSuite) TestUpdatePayment() {
	s.users.On("SetPaid", mock.Anything, "u1", true).Return(nil)
	s.users.On("SetPaid", mock.Anything, "ghost", false).Return(authusecase.ErrUserNotFound)
	uc := usecase.NewAdminUsecase(s.users, nil, nil)

	assert.NoError(s.T(), uc.UpdatePayment(s.ctx, "u1", true))
	assert.ErrorIs(s.T(), uc.UpdatePayment(s.ctx, "ghost", false), authusecase.ErrUserNotFound)
}

func TestAdminUsecaseTestSuite(t *testing.T) {
	suite.Run(t, new(AdminUsecaseTestSuite))
}
