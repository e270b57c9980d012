package http

import (
	"errors"
	"strings"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/quiz/config"
	"pass-questions/internal/quiz/domain/model"
	"pass-questions/internal/quiz/usecase"
	apperrors "pass-questions/internal/shared/errors"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// QuizHTTPHandler serves the question bank to admins and quizzes and
// analytics to logged in users.
type QuizHTTPHandler struct {
	usecase usecase.QuizUsecaseInterface
	config  *config.Config
	log     logger.Logger
}

func NewQuizHTTPHandler(uc usecase.QuizUsecaseInterface, cfg *config.Config, log logger.Logger) *QuizHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &QuizHTTPHandler{usecase: uc, config: cfg, log: log.WithComponent("quiz-http")}
}

func (h *QuizHTTPHandler) RegisterRoutes(router fiber.Router, mw *authhttp.AuthMiddleware) {
	admin := router.Group("/admin")
	admin.Get("/api/admin/questions", mw.RequireAdmin(), h.ListQuestions)
	admin.Post("/api/admin/questions", mw.RequireAdmin(), h.CreateQuestion)
	admin.Put("/api/admin/questions", mw.RequireAdmin(), h.UpdateQuestion)
	admin.Delete("/api/admin/questions", mw.RequireAdmin(), h.DeleteQuestion)
	admin.Get("/api/questions", mw.RequireLogin(), h.ListActiveQuestions)
	admin.Post("/api/generate-questions", mw.RequireAdmin(), h.GenerateQuestions)
	admin.Get("/upload-questions", mw.RequireAdmin(), h.UploadQuestionsPage)

	router.Get("/quiz", mw.RequireLogin(), h.QuizPage)
	router.Get("/analytics", mw.RequireLogin(), h.AnalyticsPage)

	api := router.Group("/api")
	api.Get("/quiz/questions", mw.RequireLogin(), h.QuizQuestions)
	api.Post("/submit-quiz-results", mw.RequireLogin(), h.SubmitResults)
	api.Get("/analytics", mw.RequireLogin(), h.Analytics)
	api.Get("/analytics/progress", mw.RequireLogin(), h.Progress)
	api.Get("/analytics/reset", mw.RequireLogin(), h.ResetAnalytics)
	api.Post("/analytics/reset", mw.RequireLogin(), h.ResetAnalytics)
	api.Get("/score-distribution", h.ScoreDistribution)
}

func (h *QuizHTTPHandler) ListQuestions(c *fiber.Ctx) error {
	filter, err := questionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid filter"})
	}
	questions, err := h.usecase.ListQuestions(c.UserContext(), filter)
	if err != nil {
		h.log.Error("Failed to list questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "questions": questions, "count": len(questions)})
}

// ListActiveQuestions hides the answer key from non-admin callers.
func (h *QuizHTTPHandler) ListActiveQuestions(c *fiber.Ctx) error {
	filter, err := questionFilter(c)
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid filter"})
	}
	questions, err := h.usecase.ListActiveQuestions(c.UserContext(), filter)
	if err != nil {
		h.log.Error("Failed to list active questions", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	if authhttp.CurrentSession(c).IsAdmin() {
		return c.JSON(fiber.Map{"success": true, "questions": questions, "count": len(questions)})
	}
	out := make([]model.StudentQuestion, 0, len(questions))
	for _, q := range questions {
		out = append(out, q.ForStudent())
	}
	return c.JSON(fiber.Map{"success": true, "questions": out, "count": len(out)})
}

func questionFilter(c *fiber.Ctx) (model.QuestionFilter, error) {
	var filter model.QuestionFilter
	err := c.QueryParser(&filter)
	return filter, err
}

func (h *QuizHTTPHandler) CreateQuestion(c *fiber.Ctx) error {
	var req usecase.CreateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
	}

	session := authhttp.CurrentSession(c)
	q, err := h.usecase.CreateQuestion(c.UserContext(), req, session.UID)
	if err != nil {
		return h.questionError(c, "Failed to create question", err)
	}
	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":  true,
		"id":       q.ID,
		"message":  "Question added successfully",
		"question": q,
	})
}

func (h *QuizHTTPHandler) UpdateQuestion(c *fiber.Ctx) error {
	var req usecase.UpdateQuestionRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
	}
	if err := h.usecase.UpdateQuestion(c.UserContext(), req, authhttp.CurrentSession(c).UID); err != nil {
		return h.questionError(c, "Failed to update question", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Question updated successfully"})
}

func (h *QuizHTTPHandler) DeleteQuestion(c *fiber.Ctx) error {
	if err := h.usecase.DeleteQuestion(c.UserContext(), c.Query("id")); err != nil {
		return h.questionError(c, "Failed to delete question", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Question deleted successfully"})
}

// questionError maps question bank failures to status codes.
func (h *QuizHTTPHandler) questionError(c *fiber.Ctx, msg string, err error) error {
	var (
		verrs   *apperrors.ValidationErrors
		missing *usecase.MissingOptionsError
	)
	switch {
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error":   "Missing required fields: " + strings.Join(verrs.Fields(), ", "),
			"details": verrs.Errors,
		})
	case errors.As(err, &missing),
		errors.Is(err, usecase.ErrQuestionIDRequired),
		errors.Is(err, usecase.ErrNoFieldsToUpdate),
		errors.Is(err, usecase.ErrMissingCorrectAnswer),
		errors.Is(err, usecase.ErrAnswerNotNumber),
		errors.Is(err, usecase.ErrAnswerOutOfRange),
		errors.Is(err, usecase.ErrInvalidOptions):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrQuestionNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Question not found"})
	}
	h.log.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// GenerateQuestions accepts a multipart form with pdf_file and the target
// program, course, level, semester, difficulty and num_questions.
func (h *QuizHTTPHandler) GenerateQuestions(c *fiber.Ctx) error {
	var req usecase.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": "Invalid form"})
	}

	fh, err := c.FormFile("pdf_file")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": usecase.ErrMissingFile.Error()})
	}
	f, err := fh.Open()
	if err != nil {
		h.log.Error("Failed to open uploaded PDF", zap.String("file", fh.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": "Failed to read upload"})
	}
	defer f.Close()

	req.File = &usecase.SourceFile{Name: fh.Filename, Content: f}
	req.CreatedBy = authhttp.CurrentSession(c).UID

	result, err := h.usecase.GenerateFromPDF(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrAIUnavailable):
			unavailable := apperrors.NewUnavailableError(err.Error())
			return c.Status(unavailable.Status()).JSON(fiber.Map{"success": false, "error": unavailable.Message})
		case errors.Is(err, usecase.ErrMissingFile), errors.Is(err, usecase.ErrNotPDF), errors.Is(err, usecase.ErrNoText):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"success": false, "error": err.Error()})
		}
		h.log.Error("Question generation failed", zap.String("file", fh.Filename), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}

	return c.JSON(fiber.Map{
		"success":      true,
		"message":      "Generated and saved questions from PDF",
		"saved_count":  result.SavedCount,
		"failed_count": result.FailedCount,
		"failed":       result.Failed,
		"questions":    result.Questions,
	})
}

func (h *QuizHTTPHandler) UploadQuestionsPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{
		"page":    "upload_questions",
		"options": h.usecase.UploadOptions(c.UserContext()),
		"ai":      h.config.AI.Enabled(),
	})
}

func (h *QuizHTTPHandler) QuizPage(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	return c.JSON(fiber.Map{
		"page": "quiz",
		"user": fiber.Map{"email": session.Email, "username": session.Username},
	})
}

func (h *QuizHTTPHandler) AnalyticsPage(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	return c.JSON(fiber.Map{
		"page": "analytics",
		"user": fiber.Map{"email": session.Email, "username": session.Username},
	})
}

// QuizQuestions draws an adaptive quiz for the current user.
func (h *QuizHTTPHandler) QuizQuestions(c *fiber.Ctx) error {
	var req usecase.SelectRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query"})
	}

	session := authhttp.CurrentSession(c)
	questions, err := h.usecase.SelectQuiz(c.UserContext(), session.UID, req)
	if err != nil {
		if errors.Is(err, usecase.ErrNoQuestions) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.Error("Failed to select quiz", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "questions": questions, "count": len(questions)})
}

func (h *QuizHTTPHandler) SubmitResults(c *fiber.Ctx) error {
	var req usecase.SubmitRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
	}

	session := authhttp.CurrentSession(c)
	username := session.Username
	if username == "" {
		username = session.Email
	}
	result, err := h.usecase.SubmitResults(c.UserContext(), session.UID, username, req)
	if err != nil {
		var verrs *apperrors.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   verrs.First(),
				"details": verrs.Errors,
			})
		case errors.Is(err, usecase.ErrInvalidCounts):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.Error("Failed to save quiz results", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success":          true,
		"message":          "Quiz results saved successfully",
		"quiz_id":          result.QuizID,
		"incorrect_count":  result.IncorrectCount,
		"adaptive_message": result.AdaptiveMessage,
	})
}

func (h *QuizHTTPHandler) Analytics(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	report, err := h.usecase.GetAnalytics(c.UserContext(), session.UID)
	if err != nil {
		h.log.Error("Failed to load analytics", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "analytics": report})
}

func (h *QuizHTTPHandler) Progress(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	progress, err := h.usecase.GetProgress(c.UserContext(), session.UID, c.Query("range", "month"))
	if err != nil {
		h.log.Error("Failed to load progress", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "progress": progress})
}

func (h *QuizHTTPHandler) ResetAnalytics(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	n, err := h.usecase.ResetAnalytics(c.UserContext(), session.UID)
	if err != nil {
		h.log.Error("Failed to reset analytics", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success":         true,
		"message":         "Analytics reset successfully",
		"deleted_quizzes": n,
	})
}

// ScoreDistribution is public; a session, when present, scopes it.
func (h *QuizHTTPHandler) ScoreDistribution(c *fiber.Ctx) error {
	uid := ""
	if session := authhttp.CurrentSession(c); session != nil {
		uid = session.UID
	}
	return c.JSON(fiber.Map{"success": true, "distribution": h.usecase.ScoreDistribution(c.UserContext(), uid)})
}
