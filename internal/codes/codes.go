package codes

import (
	"context"

	authhttp "pass-questions/internal/auth/adapter/http"
	codeshttp "pass-questions/internal/codes/adapter/http"
	"pass-questions/internal/codes/adapter/persistence/mongodb"
	"pass-questions/internal/codes/config"
	"pass-questions/internal/codes/usecase"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
)

// CodesModule wires verification code administration.
type CodesModule struct {
	usecase    *usecase.CodesUsecase
	handler    *codeshttp.CodesHTTPHandler
	middleware *authhttp.AuthMiddleware
}

func NewCodesModule(ctx context.Context, db *mongo.Database, middleware *authhttp.AuthMiddleware, cfg *config.Config, log logger.Logger) (*CodesModule, error) {
	repo, err := mongodb.NewMongoCodeRepository(ctx, db)
	if err != nil {
		return nil, err
	}
	uc := usecase.NewCodesUsecase(usecase.Deps{Codes: repo}, cfg, log)
	return &CodesModule{
		usecase:    uc,
		handler:    codeshttp.NewCodesHTTPHandler(uc, log),
		middleware: middleware,
	}, nil
}

func (m *CodesModule) RegisterRoutes(router fiber.Router) {
	m.handler.RegisterRoutes(router, m.middleware)
}

func (m *CodesModule) GetUsecase() usecase.CodesUsecaseInterface {
	return m.usecase
}
