package sqlite_test

import (
	"context"
	"path/filepath"
	"testing"

	"pass-questions/internal/exams/adapter/persistence/sqlite"
	"pass-questions/internal/exams/domain/model"
	"pass-questions/internal/shared/database"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newCatalog(t *testing.T) *sqlite.PDFCatalog {
	t.Helper()
	db, err := database.OpenSQLite(context.Background(), filepath.Join(t.TempDir(), "catalog.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return sqlite.NewPDFCatalog(db)
}

func TestPDFCatalog_InsertListDelete(t *testing.T) {
	ctx := context.Background()
	catalog := newCatalog(t)

	// Arrange
	first := &model.PDFRecord{Filename: "q1.pdf", Program: "BSc CS", Course: "CSC101", Year: "2023", FilePath: "BSc CS/Level_100/Semester_1/CSC101/2023/questions_q1.pdf"}
	second := &model.PDFRecord{Filename: "q2.pdf", Program: "BSc CS", Course: "CSC101", Year: "2024", ExamType: "mid", FilePath: "BSc CS/Level_100/Semester_1/CSC101/2024/questions_q2.pdf"}
	other := &model.PDFRecord{Filename: "m.pdf", Program: "BSc CS", Course: "MTH101", Year: "2024", FilePath: "m.pdf"}

	// Act
	require.NoError(t, catalog.Insert(ctx, first))
	require.NoError(t, catalog.Insert(ctx, second))
	require.NoError(t, catalog.Insert(ctx, other))

	// Assert
	assert.NotZero(t, first.ID)
	assert.Equal(t, "final", first.ExamType)

	records, err := catalog.ListByCourse(ctx, "BSc CS", "CSC101")
	require.NoError(t, err)
	assert.Len(t, records, 2)

	n, err := catalog.DeleteByPath(ctx, first.FilePath, second.FilePath, "missing.pdf")
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)

	records, err = catalog.ListByCourse(ctx, "BSc CS", "CSC101")
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestPDFCatalog_DeleteNothing(t *testing.T) {
	n, err := newCatalog(t).DeleteByPath(context.Background())
	require.NoError(t, err)
	assert.Zero(t, n)
}
