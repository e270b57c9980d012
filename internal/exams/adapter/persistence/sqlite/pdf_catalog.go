package sqlite

import (
	"context"
	"time"

	"pass-questions/internal/exams/domain/model"
	"pass-questions/internal/exams/domain/repository"

	"github.com/jmoiron/sqlx"
)

// PDFCatalog keeps the pdf table in step with uploads.
type PDFCatalog struct {
	db *sqlx.DB
}

var _ repository.PDFCatalog = (*PDFCatalog)(nil)

func NewPDFCatalog(db *sqlx.DB) *PDFCatalog {
	return &PDFCatalog{db: db}
}

func (c *PDFCatalog) Insert(ctx context.Context, record *model.PDFRecord) error {
	if record.UploadDate.IsZero() {
		record.UploadDate = time.Now().UTC()
	}
	if record.ExamType == "" {
		record.ExamType = "final"
	}
	res, err := c.db.NamedExecContext(ctx, `
		INSERT INTO pdf (filename, program, course, year, exam_type, file_path, upload_date)
		VALUES (:filename, :program, :course, :year, :exam_type, :file_path, :upload_date)`, record)
	if err != nil {
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	record.ID = id
	return nil
}

// DeleteByPath removes rows pointing at any of paths.
func (c *PDFCatalog) DeleteByPath(ctx context.Context, paths ...string) (int64, error) {
	if len(paths) == 0 {
		return 0, nil
	}
	query, args, err := sqlx.In(`DELETE FROM pdf WHERE file_path IN (?)`, paths)
	if err != nil {
		return 0, err
	}
	res, err := c.db.ExecContext(ctx, c.db.Rebind(query), args...)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

func (c *PDFCatalog) ListByCourse(ctx context.Context, program, course string) ([]*model.PDFRecord, error) {
	records := []*model.PDFRecord{}
	err := c.db.SelectContext(ctx, &records, `
		SELECT id, filename, program, course, year, exam_type, file_path, upload_date
		FROM pdf WHERE program = ? AND course = ?
		ORDER BY upload_date DESC, id DESC`, program, course)
	return records, err
}

func (c *PDFCatalog) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}
