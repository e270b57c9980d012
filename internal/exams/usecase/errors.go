package usecase

import "errors"

var (
	ErrExamNotFound   = errors.New("exam not found")
	ErrExamExists     = errors.New("exam already exists")
	ErrMissingFile    = errors.New("questions and answers PDFs are required")
	ErrNotPDF         = errors.New("only PDF files are allowed")
	ErrInvalidPDF     = errors.New("file is not a readable PDF")
	ErrInvalidPath    = errors.New("invalid file path")
	ErrPDFNotFound    = errors.New("PDF not found")
	ErrNothingToSync  = errors.New("no data provided")
	ErrUserIDRequired = errors.New("user id required")
)
