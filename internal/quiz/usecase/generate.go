package usecase

import (
	"context"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"unicode/utf8"

	"pass-questions/internal/quiz/domain/model"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	defaultGenerateCount = 10
	maxGenerateCount     = 50
	maxReportedFailures  = 5
	maxReturnedQuestions = 10
)

// SourceFile is the PDF questions are generated from.
type SourceFile struct {
	Name    string
	Content io.ReadSeeker
}

// GenerateRequest is the AI generation form.
type GenerateRequest struct {
	Program      string      `form:"program"`
	Course       string      `form:"course"`
	Level        string      `form:"level"`
	Semester     string      `form:"semester"`
	Difficulty   string      `form:"difficulty"`
	NumQuestions int         `form:"num_questions"`
	File         *SourceFile `form:"-"`
	CreatedBy    string      `form:"-"`
}

// GenerateResult reports how many proposals were saved.
type GenerateResult struct {
	SavedCount  int               `json:"saved_count"`
	FailedCount int               `json:"failed_count"`
	Failed      []string          `json:"failed"`
	Questions   []*model.Question `json:"questions"`
}

func (r *GenerateRequest) applyDefaults() {
	if r.Program == "" {
		r.Program = "General"
	}
	if r.Course == "" {
		r.Course = "General Studies"
	}
	if r.Level == "" {
		r.Level = "100"
	}
	if r.Semester == "" {
		r.Semester = "First"
	}
	if r.Difficulty == "" {
		r.Difficulty = model.DifficultyMedium
	}
	if r.NumQuestions <= 0 {
		r.NumQuestions = defaultGenerateCount
	}
	if r.NumQuestions > maxGenerateCount {
		r.NumQuestions = maxGenerateCount
	}
}

// GenerateFromPDF extracts the text of a PDF, asks the generator for
// questions and saves the valid ones as active questions.
func (uc *QuizUsecase) GenerateFromPDF(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	if uc.generator == nil || uc.extractor == nil {
		return nil, ErrAIUnavailable
	}
	if req.File == nil || req.File.Name == "" || req.File.Content == nil {
		return nil, ErrMissingFile
	}
	if !strings.EqualFold(filepath.Ext(req.File.Name), ".pdf") {
		return nil, ErrNotPDF
	}
	req.applyDefaults()

	text, err := uc.extractor.ExtractText(req.File.Content)
	if err != nil {
		uc.log.Warn("PDF text extraction failed", zap.String("file", req.File.Name), zap.Error(err))
		return nil, ErrNoText
	}
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, ErrNoText
	}
	text = truncateRunes(text, uc.config.AI.MaxSourceChars)

	genCtx := ctx
	if uc.config.AI.Timeout > 0 {
		var cancel context.CancelFunc
		genCtx, cancel = context.WithTimeout(ctx, uc.config.AI.Timeout)
		defer cancel()
	}
	proposals, err := uc.generator.Generate(genCtx, text, req.NumQuestions, req.Difficulty)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
	}
	if len(proposals) == 0 {
		return nil, ErrGenerationFailed
	}

	result := &GenerateResult{Failed: []string{}, Questions: []*model.Question{}}
	var failed []string
	for i, p := range proposals {
		if !p.Valid() {
			failed = append(failed, fmt.Sprintf("Question %d: Invalid format", i+1))
			continue
		}
		q := uc.generatedQuestion(req, p)
		if err := uc.questions.Create(ctx, q); err != nil {
			failed = append(failed, fmt.Sprintf("Question %d: %v", i+1, err))
			continue
		}
		result.SavedCount++
		if len(result.Questions) < maxReturnedQuestions {
			result.Questions = append(result.Questions, q)
		}
	}

	result.FailedCount = len(failed)
	if len(failed) > maxReportedFailures {
		failed = failed[:maxReportedFailures]
	}
	result.Failed = append(result.Failed, failed...)

	uc.log.Info("Generated questions from PDF",
		zap.String("file", req.File.Name),
		zap.Int("saved", result.SavedCount),
		zap.Int("failed", result.FailedCount))
	return result, nil
}

func (uc *QuizUsecase) generatedQuestion(req GenerateRequest, p model.GeneratedQuestion) *model.Question {
	difficulty := p.Difficulty
	if difficulty == "" {
		difficulty = req.Difficulty
	}
	now := uc.now().UTC()
	return &model.Question{
		ID:            uuid.NewString(),
		Program:       req.Program,
		Course:        req.Course,
		Level:         req.Level,
		Semester:      req.Semester,
		Question:      p.Question,
		Options:       p.Options,
		CorrectAnswer: p.CorrectAnswer,
		Explanation:   p.Explanation,
		Difficulty:    difficulty,
		CreatedBy:     req.CreatedBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		Active:        true,
		Source:        model.SourceAIGenerated,
		SourceFile:    req.File.Name,
	}
}

func truncateRunes(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit])
}
