package usecase_test

import (
	"context"
	"io"

	"pass-questions/internal/exams/domain/model"

	"github.com/stretchr/testify/mock"
)

type mockExamRepo struct {
	mock.Mock
}

func (m *mockExamRepo) Create(ctx context.Context, exam *model.Exam) error {
	return m.Called(ctx, exam).Error(0)
}

func (m *mockExamRepo) Get(ctx context.Context, id string) (*model.Exam, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Exam), args.Error(1)
}

func (m *mockExamRepo) List(ctx context.Context) ([]*model.Exam, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Exam), args.Error(1)
}

func (m *mockExamRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockExamRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockExamRepo) DistinctPrograms(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockExamRepo) DistinctCourses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockExamRepo) Ping(ctx context.Context) error { return nil }

type mockDeletionRepo struct {
	mock.Mock
}

func (m *mockDeletionRepo) MarkExamsDeleted(ctx context.Context, uid string, ids []string) error {
	return m.Called(ctx, uid, ids).Error(0)
}

func (m *mockDeletionRepo) MarkQuestionsDeleted(ctx context.Context, uid string, ids []string) error {
	return m.Called(ctx, uid, ids).Error(0)
}

func (m *mockDeletionRepo) DeletedExamIDs(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockDeletionRepo) DeletedQuestionIDs(ctx context.Context, uid string) ([]string, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]string), args.Error(1)
}

type mockCatalog struct {
	mock.Mock
}

func (m *mockCatalog) Insert(ctx context.Context, record *model.PDFRecord) error {
	return m.Called(ctx, record).Error(0)
}

func (m *mockCatalog) DeleteByPath(ctx context.Context, paths ...string) (int64, error) {
	args := m.Called(ctx, paths)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockCatalog) ListByCourse(ctx context.Context, program, course string) ([]*model.PDFRecord, error) {
	args := m.Called(ctx, program, course)
	return args.Get(0).([]*model.PDFRecord), args.Error(1)
}

func (m *mockCatalog) Ping(ctx context.Context) error { return nil }

type stubInspector struct {
	pages int
	err   error
}

func (s stubInspector) Inspect(r io.ReadSeeker) (*model.PDFInfo, error) {
	if s.err != nil {
		return nil, s.err
	}
	_, _ = io.Copy(io.Discard, r)
	return &model.PDFInfo{Pages: s.pages, Version: "1.4"}, nil
}
