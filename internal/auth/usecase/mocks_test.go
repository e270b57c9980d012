package usecase_test

import (
	"context"
	"errors"
	"sync"
	"time"

	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"

	"github.com/stretchr/testify/mock"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) GetByID(ctx context.Context, uid string) (*model.User, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *mockUserRepo) Create(ctx context.Context, user *model.User) error {
	return m.Called(ctx, user).Error(0)
}

func (m *mockUserRepo) StartSession(ctx context.Context, uid string, start repository.SessionStart) error {
	return m.Called(ctx, uid, start).Error(0)
}

func (m *mockUserRepo) ClearSession(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockUserRepo) UpdateRole(ctx context.Context, uid, role string) error {
	return m.Called(ctx, uid, role).Error(0)
}

func (m *mockUserRepo) UpdatePaid(ctx context.Context, uid string, paid bool) error {
	return m.Called(ctx, uid, paid).Error(0)
}

func (m *mockUserRepo) List(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *mockUserRepo) ListPaid(ctx context.Context) ([]*model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.User), args.Error(1)
}

func (m *mockUserRepo) Count(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountPaid(ctx context.Context) (int64, error) {
	args := m.Called(ctx)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) CountCreatedSince(ctx context.Context, since time.Time) (int64, error) {
	args := m.Called(ctx, since)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockUserRepo) Ping(ctx context.Context) error { return nil }

type mockAccountRepo struct {
	mock.Mock
}

func (m *mockAccountRepo) Create(ctx context.Context, account *model.Account) error {
	args := m.Called(ctx, account)
	if args.Error(0) == nil {
		account.ID = 1
	}
	return args.Error(0)
}

func (m *mockAccountRepo) GetByEmail(ctx context.Context, email string) (*model.Account, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) GetByVerificationToken(ctx context.Context, token string) (*model.Account, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Account), args.Error(1)
}

func (m *mockAccountRepo) MarkVerified(ctx context.Context, id int64) error {
	return m.Called(ctx, id).Error(0)
}

func (m *mockAccountRepo) SetPaidByEmail(ctx context.Context, email string, paid bool) error {
	return m.Called(ctx, email, paid).Error(0)
}

func (m *mockAccountRepo) Ping(ctx context.Context) error { return nil }

type mockTokenService struct {
	mock.Mock
}

func (m *mockTokenService) IssueSessionToken(ctx context.Context, session *model.Session) (string, error) {
	args := m.Called(ctx, session)
	return args.String(0), args.Error(1)
}

func (m *mockTokenService) ParseSessionToken(ctx context.Context, token string) (*model.Session, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Session), args.Error(1)
}

type mockIdentityVerifier struct {
	mock.Mock
}

func (m *mockIdentityVerifier) Verify(ctx context.Context, idToken string) (*model.Identity, error) {
	args := m.Called(ctx, idToken)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Identity), args.Error(1)
}

type mockSessionCache struct {
	mock.Mock
}

func (m *mockSessionCache) Get(ctx context.Context, uid string) (*model.SessionState, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.SessionState), args.Error(1)
}

func (m *mockSessionCache) Set(ctx context.Context, uid string, state *model.SessionState, ttl time.Duration) error {
	return m.Called(ctx, uid, state, ttl).Error(0)
}

func (m *mockSessionCache) Invalidate(ctx context.Context, uid string) error {
	return m.Called(ctx, uid).Error(0)
}

func (m *mockSessionCache) PublishRevocation(ctx context.Context, rev model.Revocation) error {
	return m.Called(ctx, rev).Error(0)
}

func (m *mockSessionCache) Ping(ctx context.Context) error { return nil }

// memSessionCache is a SessionCache held in memory.
type memSessionCache struct {
	mu      sync.Mutex
	states  map[string]model.SessionState
	revoked []model.Revocation
}

func newMemSessionCache() *memSessionCache {
	return &memSessionCache{states: map[string]model.SessionState{}}
}

func (c *memSessionCache) Get(ctx context.Context, uid string) (*model.SessionState, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	state, ok := c.states[uid]
	if !ok {
		return nil, errors.New("redis: nil")
	}
	return &state, nil
}

func (c *memSessionCache) Set(ctx context.Context, uid string, state *model.SessionState, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.states[uid] = *state
	return nil
}

func (c *memSessionCache) Invalidate(ctx context.Context, uid string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.states, uid)
	return nil
}

func (c *memSessionCache) PublishRevocation(ctx context.Context, rev model.Revocation) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.revoked = append(c.revoked, rev)
	return nil
}

func (c *memSessionCache) Ping(ctx context.Context) error { return nil }

func (c *memSessionCache) active(uid string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.states[uid].ActiveSessionID
}
