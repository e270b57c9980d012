package http

import (
	"net/url"
	"strings"
	"time"

	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/contextkeys"
	apperrors "pass-questions/internal/shared/errors"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/utils"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"go.uber.org/zap"
)

const sessionLocalsKey = "session"

// Paths the session middleware never validates. A cookie on these paths is
// still decoded so handlers can see who is calling.
var sessionExemptPaths = map[string]bool{
	"/auth/signup":         true,
	"/auth/login":          true,
	"/auth/login_complete": true,
	"/auth/logout":         true,
	"/auth/verify":         true,
	"/payment":             true,
	"/payment/":            true,
	"/payment/mock":        true,
	"/payment/success":     true,
	"/health":              true,
	"/favicon.ico":         true,
}

// AuthMiddleware provides the session middleware chain for Fiber
type AuthMiddleware struct {
	usecase usecase.AuthUsecaseInterface
	policy  repository.AccessPolicy
	cookies *CookieManager
	log     logger.Logger
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(uc usecase.AuthUsecaseInterface, policy repository.AccessPolicy, cookies *CookieManager, log logger.Logger) *AuthMiddleware {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &AuthMiddleware{
		usecase: uc,
		policy:  policy,
		cookies: cookies,
		log:     log.WithComponent("auth-middleware"),
	}
}

// CORS middleware
func (m *AuthMiddleware) CORS(allowOrigins string) fiber.Handler {
	return cors.New(cors.Config{
		AllowOrigins:     allowOrigins,
		AllowMethods:     "GET,POST,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders:     "Origin,Content-Type,Accept,Authorization,X-Requested-With",
		AllowCredentials: true,
		MaxAge:           86400,
	})
}

// SecurityHeaders adds security headers
func (m *AuthMiddleware) SecurityHeaders() fiber.Handler {
	return func(c *fiber.Ctx) error {
		c.Set("X-Content-Type-Options", "nosniff")
		c.Set("X-Frame-Options", "DENY")
		c.Set("Referrer-Policy", "strict-origin-when-cross-origin")
		return c.Next()
	}
}

// RateLimiter throttles the login endpoints per client address. The
// address comes from c.IP(), which honours the app's ProxyHeader only for
// trusted proxies.
func (m *AuthMiddleware) RateLimiter(max int) fiber.Handler {
	return limiter.New(limiter.Config{
		Max:               max,
		Expiration:        1 * time.Minute,
		LimiterMiddleware: limiter.SlidingWindow{},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Rate limit exceeded. Please try again later.",
			})
		},
	})
}

// RequestID middleware
func (m *AuthMiddleware) RequestID() fiber.Handler {
	return requestid.New(requestid.Config{
		Header:     "X-Request-ID",
		ContextKey: string(contextkeys.RequestIDKey),
	})
}

// Session runs on every request. It decodes the session cookie and checks
// it against the stored active session; a stale session clears the cookie
// and either redirects to the login page or answers 401 with the reason.
// Anonymous requests to the admin area or the dashboard go to the login page.
func (m *AuthMiddleware) Session() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if rid, ok := c.Locals(string(contextkeys.RequestIDKey)).(string); ok && rid != "" {
			c.SetUserContext(utils.WithRequestID(c.UserContext(), rid))
		}

		path := c.Path()
		session := m.decodeCookie(c)

		if isSessionExempt(path) {
			if session != nil {
				AttachSession(c, session)
			}
			return c.Next()
		}

		if session != nil {
			check, err := m.usecase.ValidateSession(c.UserContext(), session)
			if err != nil {
				m.log.Error("Session validation failed", zap.String("uid", session.UID), zap.Error(err))
				return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
					"error": "Session validation failed",
				})
			}
			if !check.Valid {
				m.cookies.Clear(c)
				if isAPIRequest(c) {
					return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
						"error":   "Session invalid",
						"reason":  check.Reason,
						"message": check.Message,
					})
				}
				return c.Redirect(loginURL(check.Reason), fiber.StatusFound)
			}
			AttachSession(c, session)
			return c.Next()
		}

		if strings.HasPrefix(path, "/admin") || path == "/dashboard" {
			if isAPIRequest(c) {
				return unauthorized(c)
			}
			return c.Redirect(usecase.RedirectLogin, fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireLogin rejects anonymous requests.
func (m *AuthMiddleware) RequireLogin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if CurrentSession(c) == nil {
			if isAPIRequest(c) {
				return unauthorized(c)
			}
			return c.Redirect(usecase.RedirectLogin, fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequirePaid lets admins and paid users through. The cookie's paid flag
// and role are reconciled with the store first, so a payment or a
// revocation recorded elsewhere applies to the next request.
func (m *AuthMiddleware) RequirePaid() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			if isAPIRequest(c) {
				return unauthorized(c)
			}
			return c.Redirect(usecase.RedirectLogin, fiber.StatusFound)
		}

		if refreshed := m.refreshFromStore(c, session); refreshed != nil {
			session = refreshed
		}
		allowed, err := m.policy.AllowPaid(session)
		if err != nil {
			m.log.Error("Paid access policy failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Access check failed"})
		}
		if !allowed {
			if isAPIRequest(c) {
				perr := apperrors.NewPaymentRequiredError()
				return c.Status(perr.Status()).JSON(fiber.Map{
					"error":    perr.Message,
					"redirect": usecase.RedirectPayment,
				})
			}
			return c.Redirect(usecase.RedirectPayment, fiber.StatusFound)
		}
		return c.Next()
	}
}

// RequireAdmin re-reads the role from the store so a promotion or demotion
// takes effect without a new login, then applies the admin policy.
func (m *AuthMiddleware) RequireAdmin() fiber.Handler {
	return func(c *fiber.Ctx) error {
		session := CurrentSession(c)
		if session == nil {
			if isAPIRequest(c) {
				return unauthorized(c)
			}
			return c.Redirect(usecase.RedirectLogin, fiber.StatusFound)
		}

		updated, changed, err := m.usecase.RefreshRole(c.UserContext(), session)
		if err != nil {
			m.log.Warn("Role refresh failed", zap.String("uid", session.UID), zap.Error(err))
		} else if changed {
			session = updated
			m.reissue(c, session)
		}

		allowed, err := m.policy.AllowAdmin(session)
		if err != nil {
			m.log.Error("Admin access policy failed", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "Access check failed"})
		}
		if !allowed {
			if isAPIRequest(c) {
				return c.Status(fiber.StatusForbidden).JSON(fiber.Map{"error": "Admin access required"})
			}
			return c.Redirect(usecase.RedirectDashboard, fiber.StatusFound)
		}
		return c.Next()
	}
}

// refreshFromStore returns the session with the stored paid flag and role,
// or nil when they match the cookie or the store can't be read.
func (m *AuthMiddleware) refreshFromStore(c *fiber.Ctx, session *model.Session) *model.Session {
	user, err := m.usecase.GetUser(c.UserContext(), session.UID)
	if err != nil {
		m.log.Debug("Paid refresh skipped", zap.String("uid", session.UID), zap.Error(err))
		return nil
	}
	if user.Paid == session.Paid && (user.Role == "" || user.Role == session.Role) {
		return nil
	}
	updated := *session
	updated.Paid = user.Paid
	if user.Role != "" {
		updated.Role = user.Role
	}
	m.reissue(c, &updated)
	return &updated
}

// reissue re-signs the cookie and swaps the request's session.
func (m *AuthMiddleware) reissue(c *fiber.Ctx, session *model.Session) {
	token, err := m.usecase.IssueToken(c.UserContext(), session)
	if err != nil {
		m.log.Error("Failed to reissue session cookie", zap.String("uid", session.UID), zap.Error(err))
		return
	}
	m.cookies.Set(c, token)
	AttachSession(c, session)
}

func (m *AuthMiddleware) decodeCookie(c *fiber.Ctx) *model.Session {
	token := c.Cookies(m.cookies.Name())
	if token == "" {
		return nil
	}
	session, err := m.usecase.ParseToken(c.UserContext(), token)
	if err != nil {
		m.log.Debug("Discarding unreadable session cookie", zap.Error(err))
		m.cookies.Clear(c)
		return nil
	}
	return session
}

// AttachSession makes session the request's current session.
func AttachSession(c *fiber.Ctx, session *model.Session) {
	c.Locals(sessionLocalsKey, session)
	c.SetUserContext(utils.WithSession(c.UserContext(), session.UID, session.Email, session.Role, session.SessionID))
}

// CurrentSession returns the session attached by the middleware, or nil.
func CurrentSession(c *fiber.Ctx) *model.Session {
	session, _ := c.Locals(sessionLocalsKey).(*model.Session)
	return session
}

func isSessionExempt(path string) bool {
	if sessionExemptPaths[path] {
		return true
	}
	return strings.HasPrefix(path, "/static/") && !strings.HasPrefix(path, "/static/pdfs/")
}

// isAPIRequest tells JSON callers apart from page navigations.
func isAPIRequest(c *fiber.Ctx) bool {
	if strings.Contains(c.Path(), "/api/") || c.Method() != fiber.MethodGet {
		return true
	}
	if c.Get("X-Requested-With") == "XMLHttpRequest" {
		return true
	}
	accept := c.Get(fiber.HeaderAccept)
	return strings.Contains(accept, fiber.MIMEApplicationJSON) && !strings.Contains(accept, fiber.MIMETextHTML)
}

func loginURL(reason string) string {
	return usecase.RedirectLogin + "?reason=" + url.QueryEscape(reason)
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Authentication required",
	})
}

// CookieManager writes the session cookie with the configured attributes.
type CookieManager struct {
	name     string
	path     string
	domain   string
	maxAge   time.Duration
	secure   bool
	httpOnly bool
	sameSite string
}

func NewCookieManager(cfg *config.Config) *CookieManager {
	return &CookieManager{
		name:     cfg.CookieName,
		path:     cfg.CookiePath,
		domain:   cfg.CookieDomain,
		maxAge:   cfg.SessionTTL,
		secure:   cfg.CookieSecure,
		httpOnly: cfg.CookieHTTPOnly,
		sameSite: cfg.CookieSameSite,
	}
}

func (cm *CookieManager) Name() string { return cm.name }

func (cm *CookieManager) Set(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     cm.name,
		Value:    token,
		Path:     cm.path,
		Domain:   cm.domain,
		MaxAge:   int(cm.maxAge.Seconds()),
		Secure:   cm.secure,
		HTTPOnly: cm.httpOnly,
		SameSite: cm.sameSite,
		Expires:  time.Now().Add(cm.maxAge),
	})
}

func (cm *CookieManager) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     cm.name,
		Value:    "",
		Path:     cm.path,
		Domain:   cm.domain,
		MaxAge:   -1,
		Secure:   cm.secure,
		HTTPOnly: cm.httpOnly,
		SameSite: cm.sameSite,
		Expires:  time.Now().Add(-1 * time.Hour),
	})
}
