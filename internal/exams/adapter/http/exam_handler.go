package http

import (
	"errors"
	"fmt"
	"mime/multipart"
	"net/url"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/exams/config"
	"pass-questions/internal/exams/usecase"
	apperrors "pass-questions/internal/shared/errors"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// ExamHTTPHandler serves exam uploads to admins and exam papers to users.
type ExamHTTPHandler struct {
	usecase usecase.ExamUsecaseInterface
	config  *config.Config
	log     logger.Logger
}

func NewExamHTTPHandler(uc usecase.ExamUsecaseInterface, cfg *config.Config, log logger.Logger) *ExamHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	return &ExamHTTPHandler{usecase: uc, config: cfg, log: log.WithComponent("exams-http")}
}

func (h *ExamHTTPHandler) RegisterRoutes(router fiber.Router, mw *authhttp.AuthMiddleware) {
	admin := router.Group("/admin")
	admin.Post("/upload", mw.RequireAdmin(), h.Upload)
	admin.Get("/api/uploaded-exams", mw.RequireAdmin(), h.ListUploaded)
	admin.Delete("/delete_exam/:id", mw.RequireAdmin(), h.Delete)

	router.Get("/api/exams", mw.RequirePaid(), h.ListForUser)
	router.Get("/static/pdfs/*", mw.RequirePaid(), h.ServePDF)
	router.Get("/pdf/*", mw.RequirePaid(), h.ServePDF)

	router.Post("/api/sync-deletions", mw.RequireLogin(), h.SyncDeletions)
	router.Get("/api/check-deletions", mw.RequireLogin(), h.CheckDeletions)
}

// Upload accepts a multipart form with questionsPdf and answersPdf.
func (h *ExamHTTPHandler) Upload(c *fiber.Ctx) error {
	var req usecase.UploadRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid upload form"})
	}

	questions, closeQ, err := formPDF(c, "questionsPdf")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Upload a valid Questions PDF file."})
	}
	defer closeQ()
	answers, closeA, err := formPDF(c, "answersPdf")
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Upload a valid Answers PDF file."})
	}
	defer closeA()

	req.Questions = questions
	req.Answers = answers
	if session := authhttp.CurrentSession(c); session != nil {
		req.UploadedBy = session.UID
		req.UploadedByName = session.Username
		if req.UploadedByName == "" {
			req.UploadedByName = session.Email
		}
	}

	exam, err := h.usecase.Upload(c.UserContext(), req)
	if err != nil {
		var verrs *apperrors.ValidationErrors
		switch {
		case errors.As(err, &verrs):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
				"error":   "Program, course, year, level, and semester are required.",
				"details": verrs.Errors,
			})
		case errors.Is(err, usecase.ErrMissingFile), errors.Is(err, usecase.ErrNotPDF), errors.Is(err, usecase.ErrInvalidPDF):
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.Error("Exam upload failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": fmt.Sprintf("Error uploading files: %v", err)})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"success": true,
		"message": "Exam papers uploaded successfully! Both questions and answers saved.",
		"exam":    exam,
	})
}

func formPDF(c *fiber.Ctx, field string) (*usecase.UploadFile, func(), error) {
	fh, err := c.FormFile(field)
	if err != nil {
		return nil, nil, err
	}
	if !usecase.IsPDFName(fh.Filename) {
		return nil, nil, usecase.ErrNotPDF
	}
	f, err := fh.Open()
	if err != nil {
		return nil, nil, err
	}
	return &usecase.UploadFile{Name: fh.Filename, Size: fh.Size, Content: f}, closer(f), nil
}

func closer(f multipart.File) func() {
	return func() { _ = f.Close() }
}

func (h *ExamHTTPHandler) ListUploaded(c *fiber.Ctx) error {
	exams, err := h.usecase.ListUploaded(c.UserContext())
	if err != nil {
		h.log.Error("Failed to list uploaded exams", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(exams)
}

func (h *ExamHTTPHandler) Delete(c *fiber.Ctx) error {
	result, err := h.usecase.Delete(c.UserContext(), c.Params("id"))
	if err != nil {
		if errors.Is(err, usecase.ErrExamNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": "Exam not found"})
		}
		h.log.Error("Failed to delete exam", zap.String("exam_id", c.Params("id")), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "message": result.Message()})
}

func (h *ExamHTTPHandler) ListForUser(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	exams, err := h.usecase.ListForUser(c.UserContext(), session.UID)
	if err != nil {
		h.log.Error("Failed to list exams", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load exams"})
	}
	return c.JSON(exams)
}

// ServePDF streams a stored paper for both /static/pdfs/* and /pdf/*.
func (h *ExamHTTPHandler) ServePDF(c *fiber.Ctx) error {
	raw, err := url.PathUnescape(c.Params("*"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).SendString("Invalid filename")
	}

	rc, info, err := h.usecase.OpenPDF(c.UserContext(), raw)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrInvalidPath):
			return c.Status(fiber.StatusBadRequest).SendString("Invalid filename")
		case errors.Is(err, usecase.ErrPDFNotFound):
			return c.Status(fiber.StatusNotFound).SendString("PDF not found: " + raw)
		}
		h.log.Error("Failed to serve PDF", zap.String("path", raw), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).SendString("Error serving PDF")
	}

	c.Set(fiber.HeaderContentType, info.ContentType)
	c.Set(fiber.HeaderCacheControl, fmt.Sprintf("public, max-age=%d", int(h.config.PDFCacheMaxAge.Seconds())))
	size := -1
	if info.Size > 0 {
		size = int(info.Size)
	}
	return c.SendStream(rc, size)
}

func (h *ExamHTTPHandler) SyncDeletions(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	var req usecase.SyncDeletionsRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
	}

	res, err := h.usecase.SyncDeletions(c.UserContext(), session.UID, req)
	if err != nil {
		if errors.Is(err, usecase.ErrNothingToSync) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "No data provided"})
		}
		h.log.Error("Failed to sync deletions", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Synced %d exam deletions and %d question deletions", res.Exams, res.Questions),
	})
}

func (h *ExamHTTPHandler) CheckDeletions(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	summary, err := h.usecase.CheckDeletions(c.UserContext(), session.UID)
	if err != nil {
		h.log.Error("Failed to check deletions", zap.String("uid", session.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"success": false, "error": err.Error()})
	}
	return c.JSON(fiber.Map{
		"success":           true,
		"deleted_exams":     summary.DeletedExams,
		"deleted_questions": summary.DeletedQuestions,
		"exam_count":        len(summary.DeletedExams),
		"question_count":    len(summary.DeletedQuestions),
	})
}
