package http

import (
	"errors"

	authhttp "pass-questions/internal/auth/adapter/http"
	authusecase "pass-questions/internal/auth/usecase"
	"pass-questions/internal/payment/config"
	"pass-questions/internal/payment/usecase"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// PaymentHTTPHandler serves /payment.
type PaymentHTTPHandler struct {
	usecase usecase.PaymentUsecaseInterface
	cookies *authhttp.CookieManager
	config  *config.Config
	log     logger.Logger
}

func NewPaymentHTTPHandler(uc usecase.PaymentUsecaseInterface, cookies *authhttp.CookieManager, cfg *config.Config, log logger.Logger) *PaymentHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &PaymentHTTPHandler{usecase: uc, cookies: cookies, config: cfg, log: log.WithComponent("payment-http")}
}

func (h *PaymentHTTPHandler) RegisterRoutes(router fiber.Router, mw *authhttp.AuthMiddleware) {
	payment := router.Group("/payment", mw.RequireLogin())
	payment.Get("/", h.PaymentPage)
	payment.Post("/mock", h.MockPayment)
	payment.Get("/success", h.Success)
}

// PaymentPage sends admins and paid users on to their dashboard.
func (h *PaymentHTTPHandler) PaymentPage(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	if session.IsAdmin() {
		return c.Redirect(authusecase.RedirectAdminDashboard, fiber.StatusFound)
	}
	if session.Paid {
		return c.Redirect(authusecase.RedirectDashboard, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"page":     "payment",
		"amount":   h.config.Amount,
		"currency": h.config.Currency,
		"user": fiber.Map{
			"email":    session.Email,
			"username": session.Username,
		},
	})
}

func (h *PaymentHTTPHandler) MockPayment(c *fiber.Ctx) error {
	result, err := h.usecase.MockPayment(c.UserContext(), authhttp.CurrentSession(c))
	if err != nil {
		if errors.Is(err, usecase.ErrNotLoggedIn) {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"status": "error", "message": "User not logged in"})
		}
		h.log.Error("Mock payment failed", zap.Error(err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": err.Error()})
	}
	if result.Token != "" {
		h.cookies.Set(c, result.Token)
	}
	return c.JSON(fiber.Map{
		"status":   "success",
		"message":  result.Message,
		"redirect": "/payment/success",
	})
}

func (h *PaymentHTTPHandler) Success(c *fiber.Ctx) error {
	session := authhttp.CurrentSession(c)
	if session.IsAdmin() {
		return c.Redirect(authusecase.RedirectAdminDashboard, fiber.StatusFound)
	}
	return c.JSON(fiber.Map{
		"page": "success",
		"user": fiber.Map{
			"email":    session.Email,
			"username": session.Username,
			"paid":     session.Paid,
		},
	})
}
