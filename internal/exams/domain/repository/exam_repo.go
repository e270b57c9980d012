package repository

import (
	"context"
	"io"

	"pass-questions/internal/exams/domain/model"
)

// ExamRepository persists exam metadata.
type ExamRepository interface {
	Create(ctx context.Context, exam *model.Exam) error
	Get(ctx context.Context, id string) (*model.Exam, error)
	// List returns every exam, newest upload first.
	List(ctx context.Context) ([]*model.Exam, error)
	Delete(ctx context.Context, id string) error
	Count(ctx context.Context) (int64, error)
	DistinctPrograms(ctx context.Context) ([]string, error)
	DistinctCourses(ctx context.Context) ([]string, error)
	Ping(ctx context.Context) error
}

// DeletionRepository records exams and questions a user removed from view.
type DeletionRepository interface {
	MarkExamsDeleted(ctx context.Context, uid string, examIDs []string) error
	MarkQuestionsDeleted(ctx context.Context, uid string, questionIDs []string) error
	DeletedExamIDs(ctx context.Context, uid string) ([]string, error)
	DeletedQuestionIDs(ctx context.Context, uid string) ([]string, error)
}

// PDFCatalog mirrors uploads into the relational pdf table.
type PDFCatalog interface {
	Insert(ctx context.Context, record *model.PDFRecord) error
	DeleteByPath(ctx context.Context, paths ...string) (int64, error)
	ListByCourse(ctx context.Context, program, course string) ([]*model.PDFRecord, error)
	Ping(ctx context.Context) error
}

// PDFInspector validates an uploaded document.
type PDFInspector interface {
	Inspect(r io.ReadSeeker) (*model.PDFInfo, error)
}
