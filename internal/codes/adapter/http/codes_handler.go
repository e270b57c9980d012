package http

import (
	"errors"
	"fmt"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/codes/usecase"
	apperrors "pass-questions/internal/shared/errors"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// CodesHTTPHandler exposes verification code administration to admins.
type CodesHTTPHandler struct {
	usecase usecase.CodesUsecaseInterface
	log     logger.Logger
}

func NewCodesHTTPHandler(uc usecase.CodesUsecaseInterface, log logger.Logger) *CodesHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &CodesHTTPHandler{usecase: uc, log: log.WithComponent("codes-http")}
}

func (h *CodesHTTPHandler) RegisterRoutes(router fiber.Router, mw *authhttp.AuthMiddleware) {
	admin := mw.RequireAdmin()
	router.Get("/admin/verification-codes", admin, h.Page)

	api := router.Group("/admin/api/verification-codes")
	api.Get("/", admin, h.List)
	api.Post("/generate", admin, h.Generate)
	api.Post("/bulk", admin, h.BulkImport)
	api.Get("/export", admin, h.Export)
	api.Get("/stats", admin, h.Stats)
	api.Put("/:id", admin, h.Update)
	api.Delete("/:id", admin, h.Delete)
}

// Page returns the data the admin code screen renders with.
func (h *CodesHTTPHandler) Page(c *fiber.Ctx) error {
	stats, err := h.usecase.Stats(c.UserContext())
	if err != nil {
		h.log.Error("Failed to load code stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Failed to load verification codes"})
	}
	return c.JSON(fiber.Map{"page": "verification_codes", "stats": stats, "user": authhttp.CurrentSession(c)})
}

func (h *CodesHTTPHandler) List(c *fiber.Ctx) error {
	var req usecase.ListRequest
	if err := c.QueryParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid query"})
	}
	page, err := h.usecase.List(c.UserContext(), req)
	if err != nil {
		h.log.Error("Failed to list codes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(page)
}

func (h *CodesHTTPHandler) Generate(c *fiber.Ctx) error {
	var req usecase.GenerateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	result, err := h.usecase.Generate(c.UserContext(), req, createdBy(c))
	if err != nil {
		return h.codeError(c, "Failed to generate codes", err)
	}
	return c.JSON(fiber.Map{
		"success": true,
		"message": fmt.Sprintf("Generated %d verification codes", result.Count),
		"codes":   result.Codes,
		"count":   result.Count,
	})
}

type bulkRequest struct {
	Codes string `json:"codes"`
}

func (h *CodesHTTPHandler) BulkImport(c *fiber.Ctx) error {
	var req bulkRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	result, err := h.usecase.BulkImport(c.UserContext(), req.Codes, createdBy(c))
	if err != nil {
		return h.codeError(c, "Failed to import codes", err)
	}
	resp := fiber.Map{
		"success":  true,
		"message":  fmt.Sprintf("Imported %d codes, skipped %d duplicates", result.Imported, result.Skipped),
		"imported": result.Imported,
		"skipped":  result.Skipped,
	}
	if len(result.Errors) > 0 {
		resp["errors"] = result.Errors
	}
	return c.JSON(resp)
}

func (h *CodesHTTPHandler) Export(c *fiber.Ctx) error {
	export, err := h.usecase.ExportCSV(c.UserContext())
	if err != nil {
		h.log.Error("Failed to export codes", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	c.Set(fiber.HeaderContentType, "text/csv")
	c.Set(fiber.HeaderContentDisposition, `attachment; filename="`+export.Filename+`"`)
	return c.Send(export.Data)
}

func (h *CodesHTTPHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.usecase.Stats(c.UserContext())
	if err != nil {
		h.log.Error("Failed to compute code stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true, "stats": stats})
}

func (h *CodesHTTPHandler) Update(c *fiber.Ctx) error {
	var req usecase.UpdateRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	id := c.Params("id")
	if err := h.usecase.Update(c.UserContext(), id, req); err != nil {
		return h.codeError(c, "Failed to update code", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Code updated successfully", "code": id})
}

func (h *CodesHTTPHandler) Delete(c *fiber.Ctx) error {
	id := c.Params("id")
	if err := h.usecase.Delete(c.UserContext(), id); err != nil {
		return h.codeError(c, "Failed to delete code", err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "Code deleted successfully", "code": id})
}

func (h *CodesHTTPHandler) codeError(c *fiber.Ctx, msg string, err error) error {
	var verrs *apperrors.ValidationErrors
	switch {
	case errors.As(err, &verrs):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": verrs.First(), "details": verrs.Errors})
	case errors.Is(err, usecase.ErrTooManyCodes),
		errors.Is(err, usecase.ErrCountNotPositive),
		errors.Is(err, usecase.ErrInvalidPrefix),
		errors.Is(err, usecase.ErrInvalidDate),
		errors.Is(err, usecase.ErrNoCodesProvided):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, usecase.ErrCodeNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.Error(msg, zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

// createdBy names the admin in audit fields.
func createdBy(c *fiber.Ctx) string {
	session := authhttp.CurrentSession(c)
	switch {
	case session == nil:
		return "admin"
	case session.Email != "":
		return session.Email
	case session.Username != "":
		return session.Username
	}
	return "admin"
}
