package usecase

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"pass-questions/internal/quiz/config"
	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/domain/repository"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/validation"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// QuizUsecaseInterface defines the contract for the question bank, quizzes
// and learning analytics.
type QuizUsecaseInterface interface {
	ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error)
	ListActiveQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error)
	CreateQuestion(ctx context.Context, req CreateQuestionRequest, createdBy string) (*model.Question, error)
	UpdateQuestion(ctx context.Context, req UpdateQuestionRequest, updatedBy string) error
	DeleteQuestion(ctx context.Context, id string) error
	UploadOptions(ctx context.Context) *UploadOptions
	GenerateFromPDF(ctx context.Context, req GenerateRequest) (*GenerateResult, error)

	SelectQuiz(ctx context.Context, uid string, req SelectRequest) ([]model.StudentQuestion, error)
	SubmitResults(ctx context.Context, uid, username string, req SubmitRequest) (*SubmitResult, error)
	GetAnalytics(ctx context.Context, uid string) (*model.AnalyticsReport, error)
	GetProgress(ctx context.Context, uid, timeRange string) (*model.Progress, error)
	ScoreDistribution(ctx context.Context, uid string) *model.ScoreDistribution
	ResetAnalytics(ctx context.Context, uid string) (int64, error)
}

// Deps are the ports the quiz use cases depend on. Deleted, Exams,
// Extractor, Generator and Bus are optional.
type Deps struct {
	Questions repository.QuestionRepository
	History   repository.HistoryRepository
	Analytics repository.AnalyticsRepository
	Deleted   repository.DeletedQuestions
	Exams     repository.ExamCatalog
	Extractor repository.TextExtractor
	Generator repository.QuestionGenerator
	Bus       eventbus.Bus
}

type QuizUsecase struct {
	questions repository.QuestionRepository
	history   repository.HistoryRepository
	analytics repository.AnalyticsRepository
	deleted   repository.DeletedQuestions
	exams     repository.ExamCatalog
	extractor repository.TextExtractor
	generator repository.QuestionGenerator
	bus       eventbus.Bus
	config    *config.Config
	log       logger.Logger
	now       func() time.Time
}

var _ QuizUsecaseInterface = (*QuizUsecase)(nil)

func NewQuizUsecase(deps Deps, cfg *config.Config, log logger.Logger) *QuizUsecase {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &QuizUsecase{
		questions: deps.Questions,
		history:   deps.History,
		analytics: deps.Analytics,
		deleted:   deps.Deleted,
		exams:     deps.Exams,
		extractor: deps.Extractor,
		generator: deps.Generator,
		bus:       deps.Bus,
		config:    cfg,
		log:       log.WithComponent("quiz"),
		now:       time.Now,
	}
}

// CreateQuestionRequest accepts the options either as a four item array or
// as optionA..optionD. correctAnswer may be a number or a numeric string.
type CreateQuestionRequest struct {
	Program       string          `json:"program" validate:"notblank"`
	Course        string          `json:"course" validate:"notblank"`
	Level         string          `json:"level" validate:"notblank"`
	Semester      string          `json:"semester" validate:"notblank"`
	Question      string          `json:"question" validate:"notblank"`
	Options       []string        `json:"options"`
	OptionA       string          `json:"optionA"`
	OptionB       string          `json:"optionB"`
	OptionC       string          `json:"optionC"`
	OptionD       string          `json:"optionD"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   string          `json:"explanation"`
	Difficulty    string          `json:"difficulty"`
}

// UpdateQuestionRequest changes the fields present in the body.
type UpdateQuestionRequest struct {
	ID            string          `json:"id"`
	Question      *string         `json:"question"`
	Options       []string        `json:"options"`
	CorrectAnswer json.RawMessage `json:"correctAnswer"`
	Explanation   *string         `json:"explanation"`
	Difficulty    *string         `json:"difficulty"`
	Active        *bool           `json:"active"`
}

// UploadOptions feeds the manual question upload form.
type UploadOptions struct {
	Programs     []string `json:"programs"`
	Courses      []string `json:"courses"`
	Levels       []string `json:"levels"`
	Semesters    []string `json:"semesters"`
	Difficulties []string `json:"difficulties"`
}

var (
	defaultPrograms = []string{"Computer Science", "Information Technology", "Software Engineering", "Cybersecurity"}
	defaultCourses  = []string{"Introduction to Programming", "Data Structures", "Database Systems",
		"Web Development", "Networks", "Operating Systems"}
	uploadLevels       = []string{"100", "200", "300", "400", "500"}
	uploadSemesters    = []string{"First", "Second"}
	uploadDifficulties = []string{"Easy", "Medium", "Hard"}
)

func (uc *QuizUsecase) ListQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	return uc.questions.List(ctx, filter)
}

func (uc *QuizUsecase) ListActiveQuestions(ctx context.Context, filter model.QuestionFilter) ([]*model.Question, error) {
	filter.ActiveOnly = true
	return uc.questions.List(ctx, filter)
}

func (uc *QuizUsecase) CreateQuestion(ctx context.Context, req CreateQuestionRequest, createdBy string) (*model.Question, error) {
	if err := validation.Struct(req); err != nil {
		return nil, err
	}

	options, err := req.options()
	if err != nil {
		return nil, err
	}
	answer, err := parseAnswerIndex(req.CorrectAnswer)
	if err != nil {
		return nil, err
	}

	difficulty := strings.TrimSpace(req.Difficulty)
	if difficulty == "" {
		difficulty = model.DifficultyMedium
	}
	now := uc.now().UTC()
	q := &model.Question{
		ID:            uuid.NewString(),
		Program:       strings.TrimSpace(req.Program),
		Course:        strings.TrimSpace(req.Course),
		Level:         strings.TrimSpace(req.Level),
		Semester:      strings.TrimSpace(req.Semester),
		Question:      strings.TrimSpace(req.Question),
		Options:       options,
		CorrectAnswer: answer,
		Explanation:   req.Explanation,
		Difficulty:    difficulty,
		CreatedBy:     createdBy,
		CreatedAt:     now,
		UpdatedAt:     now,
		Active:        true,
	}
	if err := uc.questions.Create(ctx, q); err != nil {
		return nil, fmt.Errorf("save question: %w", err)
	}
	uc.log.Info("Question created", zap.String("question_id", q.ID), zap.String("course", q.Course))
	return q, nil
}

func (r *CreateQuestionRequest) options() ([]string, error) {
	if len(r.Options) > 0 {
		if len(r.Options) != model.OptionCount {
			return nil, ErrInvalidOptions
		}
		return r.Options, nil
	}

	named := []struct{ field, value string }{
		{"optionA", r.OptionA}, {"optionB", r.OptionB}, {"optionC", r.OptionC}, {"optionD", r.OptionD},
	}
	options := make([]string, 0, model.OptionCount)
	var missing []string
	for _, o := range named {
		if strings.TrimSpace(o.value) == "" {
			missing = append(missing, o.field)
			continue
		}
		options = append(options, o.value)
	}
	if len(missing) > 0 {
		return nil, &MissingOptionsError{Fields: missing}
	}
	return options, nil
}

// parseAnswerIndex reads correctAnswer as an integer in 0..3. Fractions are
// truncated.
func parseAnswerIndex(raw json.RawMessage) (int, error) {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || string(raw) == "null" {
		return 0, ErrMissingCorrectAnswer
	}

	var v interface{}
	if err := json.Unmarshal(raw, &v); err != nil {
		return 0, ErrAnswerNotNumber
	}
	var idx int
	switch t := v.(type) {
	case float64:
		idx = int(t)
	case string:
		n, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return 0, ErrAnswerNotNumber
		}
		idx = n
	default:
		return 0, ErrAnswerNotNumber
	}

	if idx < 0 || idx >= model.OptionCount {
		return 0, ErrAnswerOutOfRange
	}
	return idx, nil
}

func (uc *QuizUsecase) UpdateQuestion(ctx context.Context, req UpdateQuestionRequest, updatedBy string) error {
	if strings.TrimSpace(req.ID) == "" {
		return ErrQuestionIDRequired
	}

	patch := model.QuestionPatch{
		Question:    req.Question,
		Explanation: req.Explanation,
		Difficulty:  req.Difficulty,
		Active:      req.Active,
	}
	if req.Options != nil {
		if len(req.Options) != model.OptionCount {
			return ErrInvalidOptions
		}
		patch.Options = req.Options
	}
	if raw := bytes.TrimSpace(req.CorrectAnswer); len(raw) > 0 && string(raw) != "null" {
		answer, err := parseAnswerIndex(raw)
		if err != nil {
			return err
		}
		patch.CorrectAnswer = &answer
	}
	if patch.Empty() {
		return ErrNoFieldsToUpdate
	}

	patch.UpdatedAt = uc.now().UTC()
	patch.UpdatedBy = updatedBy
	if err := uc.questions.Update(ctx, req.ID, patch); err != nil {
		return err
	}
	uc.log.Info("Question updated", zap.String("question_id", req.ID), zap.String("by", updatedBy))
	return nil
}

func (uc *QuizUsecase) DeleteQuestion(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrQuestionIDRequired
	}
	q, err := uc.questions.Delete(ctx, id)
	if err != nil {
		return err
	}
	uc.log.Info("Question deleted", zap.String("question_id", id))
	if uc.bus != nil {
		uc.bus.PublishAndForget(ctx, eventbus.NewEvent(eventbus.EventTypeQuestionDeleted, "quiz", q))
	}
	return nil
}

// HandleQuestionDeleted drops the question from every user's weakness
// pattern so it stops being treated as a weak spot.
func (uc *QuizUsecase) HandleQuestionDeleted(ctx context.Context, event eventbus.Event) error {
	q, ok := event.Data().(*model.Question)
	if !ok || q == nil {
		return nil
	}
	n, err := uc.analytics.RemoveWeakness(ctx, model.PatternKey(q.Program, q.Course), q.ID)
	if err != nil {
		return err
	}
	if n > 0 {
		uc.log.Debug("Removed deleted question from weakness patterns",
			zap.String("question_id", q.ID), zap.Int64("users", n))
	}
	return nil
}

// UploadOptions lists programs and courses from uploaded exams, then from
// the question bank, then from built-in defaults.
func (uc *QuizUsecase) UploadOptions(ctx context.Context) *UploadOptions {
	opts := &UploadOptions{
		Levels:       uploadLevels,
		Semesters:    uploadSemesters,
		Difficulties: uploadDifficulties,
	}

	var examPrograms, examCourses func(context.Context) ([]string, error)
	if uc.exams != nil {
		examPrograms, examCourses = uc.exams.DistinctPrograms, uc.exams.DistinctCourses
	}
	opts.Programs = uc.firstNonEmpty(ctx, "programs", defaultPrograms, examPrograms, uc.questions.DistinctPrograms)
	opts.Courses = uc.firstNonEmpty(ctx, "courses", defaultCourses, examCourses, uc.questions.DistinctCourses)
	return opts
}

func (uc *QuizUsecase) firstNonEmpty(ctx context.Context, what string, fallback []string, sources ...func(context.Context) ([]string, error)) []string {
	for _, source := range sources {
		if source == nil {
			continue
		}
		values, err := source(ctx)
		if err != nil {
			uc.log.Warn("Failed to load upload options", zap.String("list", what), zap.Error(err))
			continue
		}
		if values = sortedUnique(values); len(values) > 0 {
			return values
		}
	}
	return sortedUnique(fallback)
}

func sortedUnique(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	out := make([]string, 0, len(values))
	for _, v := range values {
		v = strings.TrimSpace(v)
		if v == "" {
			continue
		}
		if _, dup := seen[v]; dup {
			continue
		}
		seen[v] = struct{}{}
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrAnalyticsNotFound)
}
