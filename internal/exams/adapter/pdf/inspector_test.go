package pdf_test

import (
	"bytes"
	"testing"

	"pass-questions/internal/exams/adapter/pdf"
	"pass-questions/internal/shared/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInspector_CountsPages(t *testing.T) {
	inspector := pdf.NewInspector()

	info, err := inspector.Inspect(bytes.NewReader(testutil.MinimalPDF("Question 1", "Question 2", "Question 3")))

	require.NoError(t, err)
	assert.Equal(t, 3, info.Pages)
	assert.NotEmpty(t, info.Version)
}

func TestInspector_RejectsNonPDF(t *testing.T) {
	inspector := pdf.NewInspector()

	_, err := inspector.Inspect(bytes.NewReader([]byte("definitely not a pdf")))

	assert.Error(t, err)
}
