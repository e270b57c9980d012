package usecase_test

import (
	"context"
	"io"
	"sync"

	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/usecase"

	"github.com/stretchr/testify/mock"
)

type mockQuestionRepo struct {
	mock.Mock
}

func (m *mockQuestionRepo) Create(ctx context.Context, q *model.Question) error {
	return m.Called(ctx, q).Error(0)
}

func (m *mockQuestionRepo) Get(ctx context.Context, id string) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *mockQuestionRepo) List(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.Question), args.Error(1)
}

func (m *mockQuestionRepo) Update(ctx context.Context, id string, patch model.QuestionPatch) error {
	return m.Called(ctx, id, patch).Error(0)
}

func (m *mockQuestionRepo) Delete(ctx context.Context, id string) (*model.Question, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Question), args.Error(1)
}

func (m *mockQuestionRepo) DistinctPrograms(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockQuestionRepo) DistinctCourses(ctx context.Context) ([]string, error) {
	args := m.Called(ctx)
	return args.Get(0).([]string), args.Error(1)
}

func (m *mockQuestionRepo) Ping(ctx context.Context) error { return nil }

type mockHistoryRepo struct {
	mock.Mock
}

func (m *mockHistoryRepo) Create(ctx context.Context, result *model.QuizResult) error {
	return m.Called(ctx, result).Error(0)
}

func (m *mockHistoryRepo) ListByUser(ctx context.Context, uid string) ([]*model.QuizResult, error) {
	args := m.Called(ctx, uid)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuizResult), args.Error(1)
}

func (m *mockHistoryRepo) RecentForCourse(ctx context.Context, uid, program, course string, limit int) ([]*model.QuizResult, error) {
	args := m.Called(ctx, uid, program, course, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*model.QuizResult), args.Error(1)
}

func (m *mockHistoryRepo) DeleteByUser(ctx context.Context, uid string) (int64, error) {
	args := m.Called(ctx, uid)
	return args.Get(0).(int64), args.Error(1)
}

// memAnalytics keeps aggregates in memory and applies Update like the
// store does.
type memAnalytics struct {
	mu        sync.Mutex
	docs      map[string]*model.Analytics
	removed   []string
	updateErr error
}

func newMemAnalytics() *memAnalytics {
	return &memAnalytics{docs: map[string]*model.Analytics{}}
}

func (m *memAnalytics) Get(ctx context.Context, uid string) (*model.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	a, ok := m.docs[uid]
	if !ok {
		return nil, usecase.ErrAnalyticsNotFound
	}
	return a, nil
}

func (m *memAnalytics) Update(ctx context.Context, uid string, mutate func(a *model.Analytics)) (*model.Analytics, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	a, ok := m.docs[uid]
	if !ok {
		a = model.NewAnalytics(uid)
	}
	mutate(a)
	a.Version++
	m.docs[uid] = a
	return a, nil
}

func (m *memAnalytics) Delete(ctx context.Context, uid string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.docs[uid]; !ok {
		return usecase.ErrAnalyticsNotFound
	}
	delete(m.docs, uid)
	return nil
}

func (m *memAnalytics) RemoveWeakness(ctx context.Context, patternKey, questionID string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.removed = append(m.removed, patternKey+"/"+questionID)
	var n int64
	for _, a := range m.docs {
		ids := a.WeaknessPatterns[patternKey]
		kept := ids[:0:0]
		for _, id := range ids {
			if id != questionID {
				kept = append(kept, id)
			}
		}
		if len(kept) != len(ids) {
			a.WeaknessPatterns[patternKey] = kept
			n++
		}
	}
	return n, nil
}

func (m *memAnalytics) removals() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.removed...)
}

type stubDeleted struct {
	ids []string
}

func (s stubDeleted) DeletedQuestionIDs(ctx context.Context, uid string) ([]string, error) {
	return s.ids, nil
}

type stubCatalog struct {
	programs, courses []string
	err               error
}

func (s stubCatalog) DistinctPrograms(ctx context.Context) ([]string, error) { return s.programs, s.err }
func (s stubCatalog) DistinctCourses(ctx context.Context) ([]string, error)  { return s.courses, s.err }

type stubExtractor struct {
	text string
	err  error
}

func (s stubExtractor) ExtractText(r io.ReadSeeker) (string, error) {
	return s.text, s.err
}

type stubGenerator struct {
	questions []model.GeneratedQuestion
	err       error
	gotText   string
	gotCount  int
}

func (s *stubGenerator) Generate(ctx context.Context, text string, count int, difficulty string) ([]model.GeneratedQuestion, error) {
	s.gotText, s.gotCount = text, count
	return s.questions, s.err
}
