package usecase

import (
	"errors"
	"strings"
)

var (
	ErrQuestionNotFound     = errors.New("question not found")
	ErrQuestionIDRequired   = errors.New("question ID required")
	ErrNoFieldsToUpdate     = errors.New("no fields to update")
	ErrMissingCorrectAnswer = errors.New("missing required field: correctAnswer")
	ErrAnswerNotNumber      = errors.New("correctAnswer must be a number (0-3)")
	ErrAnswerOutOfRange     = errors.New("correctAnswer must be between 0 and 3")
	ErrInvalidOptions       = errors.New("options must be an array with exactly 4 items")
	ErrNoQuestions          = errors.New("no questions found for the selected criteria")
	ErrInvalidCounts        = errors.New("correct_answers cannot exceed total_questions")
	ErrAnalyticsNotFound    = errors.New("analytics not found")
	ErrConcurrentUpdate     = errors.New("analytics changed concurrently")
	ErrAIUnavailable        = errors.New("AI question generation is not configured")
	ErrMissingFile          = errors.New("no PDF file uploaded")
	ErrNotPDF               = errors.New("file must be a PDF")
	ErrNoText               = errors.New("could not extract text from PDF")
	ErrGenerationFailed     = errors.New("failed to generate questions")
)

// MissingOptionsError names the optionA..optionD fields that were empty.
type MissingOptionsError struct {
	Fields []string
}

func (e *MissingOptionsError) Error() string {
	return "missing option fields: " + strings.Join(e.Fields, ", ")
}
