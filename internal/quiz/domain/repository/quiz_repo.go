package repository

import (
	"context"
	"io"

	"pass-questions/internal/quiz/domain/model"
)

// QuestionRepository persists the question bank.
type QuestionRepository interface {
	Create(ctx context.Context, q *model.Question) error
	Get(ctx context.Context, id string) (*model.Question, error)
	List(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error)
	Update(ctx context.Context, id string, patch model.QuestionPatch) error
	// Delete removes the question and returns what was stored.
	Delete(ctx context.Context, id string) (*model.Question, error)
	DistinctPrograms(ctx context.Context) ([]string, error)
	DistinctCourses(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// HistoryRepository persists submitted quizzes.
type HistoryRepository interface {
	Create(ctx context.Context, result *model.QuizResult) error
	// ListByUser returns the user's quizzes, newest first.
	ListByUser(ctx context.Context, uid string) ([]*model.QuizResult, error)
	// RecentForCourse returns at most limit quizzes for one program and
	// course, newest date first.
	RecentForCourse(ctx context.Context, uid, program, course string, limit int) ([]*model.QuizResult, error)
	DeleteByUser(ctx context.Context, uid string) (int64, error)
}

// AnalyticsRepository persists per-user aggregates.
type AnalyticsRepository interface {
	Get(ctx context.Context, uid string) (*model.Analytics, error)
	// Update loads the user's aggregates (or a fresh document), applies
	// mutate and stores the result atomically.
	Update(ctx context.Context, uid string, mutate func(a *model.Analytics)) (*model.Analytics, error)
	Delete(ctx context.Context, uid string) error
	// RemoveWeakness drops a question id from one weakness pattern of every
	// user.
	RemoveWeakness(ctx context.Context, patternKey, questionID string) (int64, error)
}

// DeletedQuestions reports the questions a user has hidden.
type DeletedQuestions interface {
	DeletedQuestionIDs(ctx context.Context, uid string) ([]string, error)
}

// ExamCatalog lists the programs and courses that have uploaded papers.
type ExamCatalog interface {
	DistinctPrograms(ctx context.Context) ([]string, error)
	DistinctCourses(ctx context.Context) ([]string, error)
}

// TextExtractor pulls plain text out of a PDF.
type TextExtractor interface {
	ExtractText(r io.ReadSeeker) (string, error)
}

// QuestionGenerator proposes multiple-choice questions from source text.
type QuestionGenerator interface {
	Generate(ctx context.Context, text string, count int, difficulty string) ([]model.GeneratedQuestion, error)
}
