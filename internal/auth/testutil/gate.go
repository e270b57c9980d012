package testutil

import (
	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/auth/adapter/policy"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/usecase"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/mock"
)

// Gate wires the real auth middleware to a mocked usecase so other modules
// can test routes behind RequireLogin, RequirePaid and RequireAdmin. Set
// Session to choose who is calling.
type Gate struct {
	Middleware *authhttp.AuthMiddleware
	Usecase    *MockAuthUsecase
	Cookies    *authhttp.CookieManager
	Session    *model.Session
}

func NewGate() (*Gate, error) {
	cfg := Config()
	pol, err := policy.NewCELPolicy(cfg)
	if err != nil {
		return nil, err
	}
	uc := &MockAuthUsecase{}
	uc.On("RefreshRole", mock.Anything, mock.Anything).Return(nil, false, nil).Maybe()
	uc.On("GetUser", mock.Anything, mock.Anything).Return(nil, usecase.ErrUserNotFound).Maybe()
	cookies := authhttp.NewCookieManager(cfg)
	return &Gate{
		Middleware: authhttp.NewAuthMiddleware(uc, pol, cookies, nil),
		Usecase:    uc,
		Cookies:    cookies,
	}, nil
}

// Attach puts Session on every request that passes through.
func (g *Gate) Attach() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if g.Session != nil {
			authhttp.AttachSession(c, g.Session)
		}
		return c.Next()
	}
}

// App returns a fiber app with Attach installed.
func (g *Gate) App() *fiber.App {
	app := fiber.New()
	app.Use(g.Attach())
	return app
}

func (g *Gate) AsStudent(paid bool) *model.Session {
	g.Session = &model.Session{UID: "student-1", Email: "student-1@example.com", Username: "student", Role: model.RoleUser, Paid: paid, SessionID: "sid-student"}
	return g.Session
}

func (g *Gate) AsAdmin() *model.Session {
	g.Session = &model.Session{UID: "admin-1", Email: "admin-1@example.com", Username: "admin", Role: model.RoleAdmin, SessionID: "sid-admin"}
	return g.Session
}

func (g *Gate) AsAnonymous() {
	g.Session = nil
}
