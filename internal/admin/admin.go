package admin

import (
	adminhttp "pass-questions/internal/admin/adapter/http"
	"pass-questions/internal/admin/domain/repository"
	"pass-questions/internal/admin/usecase"
	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
)

// AdminModule wires the admin dashboard and user management.
type AdminModule struct {
	usecase    *usecase.AdminUsecase
	handler    *adminhttp.AdminHTTPHandler
	middleware *authhttp.AuthMiddleware
}

func NewAdminModule(users repository.UserDirectory, uploads repository.UploadCatalog, middleware *authhttp.AuthMiddleware, log logger.Logger) *AdminModule {
	uc := usecase.NewAdminUsecase(users, uploads, log)
	return &AdminModule{
		usecase:    uc,
		handler:    adminhttp.NewAdminHTTPHandler(uc, log),
		middleware: middleware,
	}
}

func (m *AdminModule) RegisterRoutes(router fiber.Router) {
	m.handler.RegisterRoutes(router, m.middleware)
}

func (m *AdminModule) GetUsecase() usecase.AdminUsecaseInterface {
	return m.usecase
}
