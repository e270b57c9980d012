package usecase

import (
	"context"
	"fmt"
	"math"
	"sort"
	"time"

	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// SubmitRequest is a finished quiz as posted by the quiz page.
type SubmitRequest struct {
	Program         string             `json:"program" validate:"required"`
	Course          string             `json:"course" validate:"required"`
	Level           string             `json:"level"`
	Semester        string             `json:"semester"`
	Score           *float64           `json:"score" validate:"required"`
	TotalQuestions  *int               `json:"total_questions" validate:"required,gt=0"`
	CorrectAnswers  *int               `json:"correct_answers" validate:"required,gte=0"`
	Answers         []AnswerSubmission `json:"answers" validate:"required"`
	TimeTaken       float64            `json:"time_taken" validate:"gte=0"`
	Difficulty      string             `json:"difficulty"`
	StrengthAreas   []string           `json:"strength_areas"`
	WeaknessAreas   []string           `json:"weakness_areas"`
	Recommendations []string           `json:"recommendations"`
}

// AnswerSubmission is the outcome of one question.
type AnswerSubmission struct {
	QuestionID string `json:"question_id"`
	IsCorrect  bool   `json:"is_correct"`
}

// SubmitResult tells the user what the next quiz will revisit.
type SubmitResult struct {
	QuizID          string `json:"quiz_id"`
	IncorrectCount  int    `json:"incorrect_count"`
	AdaptiveMessage string `json:"adaptive_message"`
}

const (
	rangeWeek  = "week"
	rangeMonth = "month"
	rangeYear  = "year"

	recentQuizLimit = 10
)

// SubmitResults stores the quiz in the user's history and folds it into
// their analytics.
func (uc *QuizUsecase) SubmitResults(ctx context.Context, uid, username string, req SubmitRequest) (*SubmitResult, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}
	total, correct := *req.TotalQuestions, *req.CorrectAnswers
	if correct > total {
		return nil, ErrInvalidCounts
	}

	incorrectIDs := make([]string, 0)
	correctIDs := make([]string, 0)
	for _, a := range req.Answers {
		if a.IsCorrect {
			correctIDs = append(correctIDs, a.QuestionID)
		} else {
			incorrectIDs = append(incorrectIDs, a.QuestionID)
		}
	}

	difficulty := req.Difficulty
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	now := uc.now().UTC()
	result := &model.QuizResult{
		ID:                 uuid.NewString(),
		UserID:             uid,
		Username:           username,
		Program:            req.Program,
		Course:             req.Course,
		Level:              req.Level,
		Semester:           req.Semester,
		Score:              *req.Score,
		TotalQuestions:     total,
		CorrectAnswers:     correct,
		IncorrectAnswers:   total - correct,
		Accuracy:           round(float64(correct)/float64(total)*100, 2),
		TimeTaken:          req.TimeTaken,
		TimePerQuestion:    round(req.TimeTaken/float64(total), 2),
		IncorrectQuestions: incorrectIDs,
		CorrectQuestions:   correctIDs,
		Difficulty:         difficulty,
		Timestamp:          now,
		Date:               now.Format(model.DateLayout),
		StrengthAreas:      nonNil(req.StrengthAreas),
		WeaknessAreas:      nonNil(req.WeaknessAreas),
		Recommendations:    nonNil(req.Recommendations),
	}

	if err := uc.history.Create(ctx, result); err != nil {
		return nil, fmt.Errorf("save quiz result: %w", err)
	}

	if err := uc.publishSubmitted(ctx, result); err != nil {
		uc.log.Warn("Failed to update analytics", zap.String("uid", uid), zap.String("quiz_id", result.ID), zap.Error(err))
	}

	msg := "Great job! No incorrect questions to review."
	if n := len(incorrectIDs); n > 0 {
		msg = fmt.Sprintf("%d questions will be included in your next quiz for practice", n)
	}
	return &SubmitResult{QuizID: result.ID, IncorrectCount: len(incorrectIDs), AdaptiveMessage: msg}, nil
}

// publishSubmitted runs the quiz.submitted handlers before returning so the
// analytics page reflects the quiz right away.
func (uc *QuizUsecase) publishSubmitted(ctx context.Context, result *model.QuizResult) error {
	if uc.bus == nil {
		return uc.recordAnalytics(ctx, result)
	}
	return uc.bus.Publish(ctx, eventbus.NewEvent(eventbus.EventTypeQuizSubmitted, "quiz", result))
}

// HandleQuizSubmitted updates the submitting user's analytics.
func (uc *QuizUsecase) HandleQuizSubmitted(ctx context.Context, event eventbus.Event) error {
	result, ok := event.Data().(*model.QuizResult)
	if !ok || result == nil {
		return nil
	}
	return uc.recordAnalytics(ctx, result)
}

func (uc *QuizUsecase) recordAnalytics(ctx context.Context, result *model.QuizResult) error {
	_, err := uc.analytics.Update(ctx, result.UserID, func(a *model.Analytics) {
		a.Record(result, uc.config.WeaknessLimit)
	})
	return err
}

func (uc *QuizUsecase) GetAnalytics(ctx context.Context, uid string) (*model.AnalyticsReport, error) {
	analytics, err := uc.analytics.Get(ctx, uid)
	if isNotFound(err) {
		return &model.AnalyticsReport{HasData: false, Message: "Complete your first quiz to see analytics!"}, nil
	}
	if err != nil {
		return nil, err
	}

	history, err := uc.history.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}
	recent := history
	if len(recent) > recentQuizLimit {
		recent = recent[:recentQuizLimit]
	}

	strengths, weaknesses := StrengthsAndWeaknesses(analytics)
	programs := analytics.Programs
	if programs == nil {
		programs = map[string]*model.ProgramStats{}
	}
	return &model.AnalyticsReport{
		HasData: true,
		OverallStats: &model.OverallStats{
			TotalQuizzes:     analytics.TotalQuizzes,
			AverageScore:     round(analytics.AverageScore, 1),
			TotalCorrect:     analytics.TotalCorrect,
			TotalIncorrect:   analytics.TotalIncorrect,
			Accuracy:         round(float64(analytics.TotalCorrect)/math.Max(float64(analytics.TotalCorrect+analytics.TotalIncorrect), 1)*100, 1),
			TotalTimeSpent:   analytics.TotalTimeSpent,
			ImprovementTrend: round(analytics.ImprovementTrend, 1),
		},
		ProgramBreakdown: programs,
		StrengthAreas:    strengths,
		WeaknessAreas:    weaknesses,
		RecentQuizzes:    recent,
		Recommendations:  Recommendations(analytics),
		PerformanceTrend: PerformanceTrend(recent),
	}, nil
}

// GetProgress groups the user's scores by day, or by month for the year
// range. Unknown ranges are treated as year. Sample data stands in when
// nothing falls in range.
func (uc *QuizUsecase) GetProgress(ctx context.Context, uid, timeRange string) (*model.Progress, error) {
	if timeRange == "" {
		timeRange = rangeMonth
	}
	days, groupLayout := 365, "2006-01"
	switch timeRange {
	case rangeWeek:
		days, groupLayout = 7, model.DateLayout
	case rangeMonth:
		days, groupLayout = 30, model.DateLayout
	}
	cutoff := uc.now().UTC().AddDate(0, 0, -days)

	history, err := uc.history.ListByUser(ctx, uid)
	if err != nil {
		return nil, err
	}

	scores := make(map[string][]float64)
	for _, h := range history {
		day, err := time.Parse(model.DateLayout, h.Date)
		if err != nil || day.Before(cutoff) {
			continue
		}
		key := day.Format(groupLayout)
		scores[key] = append(scores[key], h.Score)
	}
	if len(scores) == 0 {
		return model.SampleProgress(timeRange), nil
	}

	labels := make([]string, 0, len(scores))
	for k := range scores {
		labels = append(labels, k)
	}
	sort.Strings(labels)

	progress := &model.Progress{
		Labels:        labels,
		AverageScores: make([]float64, len(labels)),
		QuizCounts:    make([]int, len(labels)),
		TimeRange:     timeRange,
	}
	for i, label := range labels {
		progress.AverageScores[i] = round(mean(scores[label]), 1)
		progress.QuizCounts[i] = len(scores[label])
	}
	return progress, nil
}

// ScoreDistribution is a fixed sample until per-user buckets are tracked.
func (uc *QuizUsecase) ScoreDistribution(ctx context.Context, uid string) *model.ScoreDistribution {
	return model.DefaultScoreDistribution()
}

// ResetAnalytics removes the user's aggregates and history and returns how
// many history records went away.
func (uc *QuizUsecase) ResetAnalytics(ctx context.Context, uid string) (int64, error) {
	if err := uc.analytics.Delete(ctx, uid); err != nil && !isNotFound(err) {
		return 0, fmt.Errorf("delete analytics: %w", err)
	}
	n, err := uc.history.DeleteByUser(ctx, uid)
	if err != nil {
		return 0, fmt.Errorf("delete history: %w", err)
	}
	uc.log.Info("Analytics reset", zap.String("uid", uid), zap.Int64("deleted_history", n))
	return n, nil
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
