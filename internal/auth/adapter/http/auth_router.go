package http

import (
	"errors"
	"net/url"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/utils"
	"pass-questions/internal/shared/validation"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
)

// AuthHTTPHandler handles HTTP requests for authentication
type AuthHTTPHandler struct {
	usecase usecase.AuthUsecaseInterface
	cookies *CookieManager
	config  *config.Config
	log     logger.Logger
}

// NewAuthHTTPHandler creates a new authentication HTTP handler
func NewAuthHTTPHandler(uc usecase.AuthUsecaseInterface, cookies *CookieManager, cfg *config.Config, log logger.Logger) *AuthHTTPHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthHTTPHandler{
		usecase: uc,
		cookies: cookies,
		config:  cfg,
		log:     log.WithComponent("auth-http"),
	}
}

// RegisterRoutes mounts /auth/* and the user dashboard.
func (h *AuthHTTPHandler) RegisterRoutes(router fiber.Router, mw *AuthMiddleware, hub *SessionHub, limit fiber.Handler) {
	if limit == nil {
		limit = func(c *fiber.Ctx) error { return c.Next() }
	}
	auth := router.Group("/auth")

	auth.Get("/signup", h.SignupPage)
	auth.Post("/signup", limit, h.Signup)
	auth.Get("/login", h.LoginPage)
	auth.Post("/login", limit, h.PasswordLogin)
	auth.Post("/login_complete", limit, h.LoginComplete)
	auth.Get("/verify", h.VerifyEmail)
	auth.Get("/logout", h.Logout)
	auth.Post("/logout", h.Logout)

	auth.Get("/api/session/check", h.CheckSession)
	auth.Get("/session_debug", h.SessionDebug)
	auth.Post("/api/force_logout_all", mw.RequireLogin(), h.ForceLogoutAll)

	if hub != nil {
		hub.RegisterRoutes(auth)
	}

	router.Get("/dashboard", mw.RequireLogin(), mw.RequirePaid(), h.UserDashboard)
}

func (h *AuthHTTPHandler) SignupPage(c *fiber.Ctx) error {
	return c.JSON(fiber.Map{"page": "signup"})
}

// LoginPage describes the login screen, including why the user landed here.
func (h *AuthHTTPHandler) LoginPage(c *fiber.Ctx) error {
	resp := fiber.Map{
		"page":          "login",
		"identity_mode": h.config.IdentityMode,
	}
	if h.config.FirebaseProjectID != "" {
		resp["firebase_project_id"] = h.config.FirebaseProjectID
	}
	if reason := c.Query("reason"); reason != "" {
		resp["reason"] = reason
		resp["message"] = revocationMessage(reason)
	}
	if c.Query("verified") != "" {
		resp["message"] = "Email verified, you can now log in"
	}
	return c.JSON(resp)
}

// LoginComplete exchanges an identity token for a session cookie.
func (h *AuthHTTPHandler) LoginComplete(c *fiber.Ctx) error {
	var req usecase.LoginCompleteRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": "Invalid request body",
		})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"status":  "error",
			"message": validation.FirstMessage(err),
		})
	}
	req.UserAgent = c.Get(fiber.HeaderUserAgent)
	req.IP = c.IP()

	result, err := h.usecase.LoginComplete(c.UserContext(), req)
	if err != nil {
		return h.loginError(c, err)
	}
	h.cookies.Set(c, result.Token)

	return c.JSON(fiber.Map{
		"status":     "success",
		"redirect":   result.Redirect,
		"user":       result.Session,
		"session_id": result.Session.SessionID,
	})
}

func (h *AuthHTTPHandler) Signup(c *fiber.Ctx) error {
	var req usecase.SignupRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": validation.FirstMessage(err)})
	}

	account, err := h.usecase.Signup(c.UserContext(), req)
	if err != nil {
		switch {
		case errors.Is(err, usecase.ErrEmailTaken), errors.Is(err, usecase.ErrUsernameTaken):
			return c.Status(fiber.StatusConflict).JSON(fiber.Map{"error": err.Error()})
		}
		h.log.Error("Signup failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Signup failed"})
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{
		"message": "Account created. Check your email to verify your address.",
		"email":   account.Email,
	})
}

func (h *AuthHTTPHandler) PasswordLogin(c *fiber.Ctx) error {
	var req usecase.PasswordLoginRequest
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if err := validation.Struct(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": validation.FirstMessage(err)})
	}
	req.UserAgent = c.Get(fiber.HeaderUserAgent)
	req.IP = c.IP()

	result, err := h.usecase.PasswordLogin(c.UserContext(), req)
	if err != nil {
		return h.loginError(c, err)
	}
	h.cookies.Set(c, result.Token)

	return c.JSON(fiber.Map{
		"status":   "success",
		"redirect": result.Redirect,
		"user":     result.Session,
	})
}

func (h *AuthHTTPHandler) loginError(c *fiber.Ctx, err error) error {
	status := fiber.StatusInternalServerError
	switch {
	case errors.Is(err, usecase.ErrMissingIdentity):
		status = fiber.StatusBadRequest
	case errors.Is(err, usecase.ErrInvalidIdentity), errors.Is(err, usecase.ErrInvalidCredentials):
		status = fiber.StatusUnauthorized
	case errors.Is(err, usecase.ErrEmailNotVerified):
		status = fiber.StatusForbidden
	default:
		h.log.Error("Login failed", zap.Error(err))
		return c.Status(status).JSON(fiber.Map{"status": "error", "message": "Login failed"})
	}
	return c.Status(status).JSON(fiber.Map{"status": "error", "message": err.Error()})
}

func (h *AuthHTTPHandler) VerifyEmail(c *fiber.Ctx) error {
	if err := h.usecase.VerifyEmail(c.UserContext(), c.Query("token")); err != nil {
		if errors.Is(err, usecase.ErrTokenInvalid) {
			return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid or expired verification link"})
		}
		h.log.Error("Email verification failed", zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Verification failed"})
	}
	return c.Redirect(usecase.RedirectLogin+"?verified=1", fiber.StatusFound)
}

// Logout clears the stored session and the cookie.
func (h *AuthHTTPHandler) Logout(c *fiber.Ctx) error {
	if session := CurrentSession(c); session != nil {
		if err := h.usecase.Logout(c.UserContext(), session); err != nil {
			h.log.Error("Error clearing session", zap.String("uid", session.UID), zap.Error(err))
		}
	}
	h.cookies.Clear(c)

	if c.Method() == fiber.MethodPost || isAPIRequest(c) {
		return c.JSON(fiber.Map{"message": "Logged out successfully"})
	}
	return c.Redirect(usecase.RedirectLogin+"?reason="+url.QueryEscape(model.ReasonLoggedOut), fiber.StatusFound)
}

// CheckSession reports whether the cookie session is still the active one.
// Invalid sessions never reach here: the session middleware answers 401.
func (h *AuthHTTPHandler) CheckSession(c *fiber.Ctx) error {
	session := CurrentSession(c)
	if session == nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"valid":   false,
			"reason":  model.ReasonNoSession,
			"message": "No active session",
		})
	}
	return c.JSON(fiber.Map{
		"valid": true,
		"user": fiber.Map{
			"email":    session.Email,
			"username": session.Username,
			"role":     session.Role,
		},
	})
}

func (h *AuthHTTPHandler) SessionDebug(c *fiber.Ctx) error {
	session := CurrentSession(c)
	if session == nil {
		return c.JSON(fiber.Map{"message": "No active session"})
	}
	return c.JSON(session)
}

// ForceLogoutAll clears the active session of uid. Users may sign
// themselves out everywhere; admins may do it for anyone.
func (h *AuthHTTPHandler) ForceLogoutAll(c *fiber.Ctx) error {
	var req struct {
		UID string `json:"uid"`
	}
	if err := c.BodyParser(&req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "Invalid request body"})
	}
	if req.UID == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"status": "error", "message": "UID required"})
	}
	ctx := c.UserContext()
	self := utils.UserID(ctx) == req.UID
	if !self && !utils.IsAdmin(ctx) {
		return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"status": "error", "message": "Insufficient permissions"})
	}

	if err := h.usecase.ForceLogoutAll(ctx, req.UID); err != nil {
		if errors.Is(err, usecase.ErrUserNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{"status": "error", "message": "User not found"})
		}
		h.log.Error("Force logout failed", zap.String("uid", req.UID), zap.Error(err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"status": "error", "message": "Force logout failed"})
	}
	if self {
		h.cookies.Clear(c)
	}
	return c.JSON(fiber.Map{"status": "success", "message": "Logged out from all devices"})
}

func (h *AuthHTTPHandler) UserDashboard(c *fiber.Ctx) error {
	session := CurrentSession(c)
	return c.JSON(fiber.Map{
		"page": "dashboard",
		"user": fiber.Map{
			"uid":      session.UID,
			"email":    session.Email,
			"username": session.Username,
			"role":     session.Role,
			"paid":     session.Paid,
		},
	})
}
