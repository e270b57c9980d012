package http

import (
	"errors"
	"fmt"

	"pass-questions/internal/admin/usecase"
	authhttp "pass-questions/internal/auth/adapter/http"
	authusecase "pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AdminHTTPHandler serves the admin dashboard and user management.
type AdminHTTPHandler struct {
	usecase usecase.AdminUsecaseInterface
	log     logger.Logger
}

func NewAdminHTTPHandler(uc usecase.AdminUsecaseInterface, log logger.Logger) *AdminHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AdminHTTPHandler{usecase: uc, log: log.WithComponent("admin-http")}
}

func (h *AdminHTTPHandler) RegisterRoutes(router fiber.Router, mw *authhttp.AuthMiddleware) {
	admin := mw.RequireAdmin()
	router.Get("/admin", admin, h.Home)
	router.Get("/admin/dashboard", admin, h.Dashboard)
	router.Get("/admin/api/stats", admin, h.Stats)
	router.Get("/admin/users", admin, h.Users)
	router.Put("/admin/api/users/:id/role", admin, h.UpdateRole)
	router.Put("/admin/api/users/:id/payment", admin, h.UpdatePayment)
	router.Get("/admin/ai-generate-questions", admin, h.AIGeneratePage)
	router.Get("/admin/logout", h.Logout)
}

func (h *AdminHTTPHandler) Home(c *fiber.Ctx) error {
	return c.Redirect("/admin/dashboard", fiber.StatusFound)
}

func (h *AdminHTTPHandler) Dashboard(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	dash := h.usecase.Dashboard(c.UserContext(), session)
	return c.JSON(fiber.Map{
		"page":    "dashboard_admin",
		"user":    session,
		"stats":   dash.Stats,
		"members": dash.Members,
		"uploads": dash.Uploads,
	})
}

func (h *AdminHTTPHandler) Stats(c *fiber.Ctx) error {
	stats, err := h.usecase.Stats(c.UserContext(), authhttp.CurrentSession(c))
	if err != nil {
		h.log.Error("Failed to compute admin stats", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(stats)
}

func (h *AdminHTTPHandler) Users(c *fiber.Ctx) error {
	users, err := h.usecase.Users(c.UserContext())
	if err != nil {
		h.log.Error("Failed to list users", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Error fetching users"})
	}
	return c.JSON(fiber.Map{"page": "admin_users", "users": users, "user": authhttp.CurrentSession(c)})
}

type roleRequest struct {
	Role string `json:"role"`
}

func (h *AdminHTTPHandler) UpdateRole(c *fiber.Ctx) error {
	var req roleRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := h.usecase.UpdateRole(c.UserContext(), c.Params("id"), req.Role); err != nil {
		return h.userError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": "User role updated to " + req.Role})
}

type paymentRequest struct {
	Paid *bool `json:"paid"`
}

func (h *AdminHTTPHandler) UpdatePayment(c *fiber.Ctx) error {
	var req paymentRequest
	if err := c.BodyParser(&req); err != nil || req.Paid == nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "paid must be true or false"})
	}
	if err := h.usecase.UpdatePayment(c.UserContext(), c.Params("id"), *req.Paid); err != nil {
		return h.userError(c, err)
	}
	return c.JSON(fiber.Map{"success": true, "message": fmt.Sprintf("Payment status updated to %t", *req.Paid)})
}

func (h *AdminHTTPHandler) userError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, authusecase.ErrInvalidRole):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid role"})
	case errors.Is(err, authusecase.ErrUIDRequired):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": err.Error()})
	case errors.Is(err, authusecase.ErrUserNotFound):
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"error": err.Error()})
	}
	h.log.Error("Failed to update user", zap.Error(err))
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
}

func (h *AdminHTTPHandler) AIGeneratePage(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	stats, err := h.usecase.Stats(c.UserContext(), session)
	if err != nil {
		h.log.Warn("Failed to compute admin stats", zap.Error(err))
	}
	return c.JSON(fiber.Map{"page": "ai_generate_questions", "user": session, "stats": stats})
}

// Logout hands over to the auth logout route, which clears the session.
func (h *AdminHTTPHandler) Logout(c *fiber.Ctx) error {
	return c.Redirect("/auth/logout", fiber.StatusFound)
}
