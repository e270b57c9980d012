package usecase_test

import (
	"context"

	"pass-questions/internal/codes/domain/model"

	"github.com/stretchr/testify/mock"
)

type mockCodeRepo struct {
	mock.Mock
}

func (m *mockCodeRepo) Insert(ctx context.Context, code *model.Code) error {
	return m.Called(ctx, code).Error(0)
}

func (m *mockCodeRepo) List(ctx context.Context, filter model.CodeFilter) ([]*model.Code, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Code), args.Error(1)
}

func (m *mockCodeRepo) Update(ctx context.Context, id string, patch model.CodePatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *mockCodeRepo) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockCodeRepo) Ping(ctx context.Context) error { return nil }

// countingReader yields 0, 1, 2, ... so generated codes are predictable.
type countingReader struct {
	next byte
}

func (r *countingReader) Read(p []byte) (int, error) {
	for i := range p {
		p[i] = r.next
		r.next++
	}
	return len(p), nil
}
