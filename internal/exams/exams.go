package exams

import (
	"context"

	authhttp "pass-questions/internal/auth/adapter/http"
	examshttp "pass-questions/internal/exams/adapter/http"
	"pass-questions/internal/exams/adapter/pdf"
	"pass-questions/internal/exams/adapter/persistence/mongodb"
	"pass-questions/internal/exams/adapter/persistence/sqlite"
	"pass-questions/internal/exams/config"
	"pass-questions/internal/exams/domain/repository"
	"pass-questions/internal/exams/usecase"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/storage"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"go.mongodb.org/mongo-driver/mongo"
)

// Dependencies are the shared resources the exams module needs.
type Dependencies struct {
	Mongo  *mongo.Database
	SQL    *sqlx.DB
	Blobs  storage.BlobStore
	Bus    eventbus.Bus
	Logger logger.Logger
}

// ExamsModule wires exam uploads, listings and PDF serving.
type ExamsModule struct {
	usecase    *usecase.ExamUsecase
	handler    *examshttp.ExamHTTPHandler
	deletions  repository.DeletionRepository
	catalog    repository.PDFCatalog
	middleware *authhttp.AuthMiddleware
}

func NewExamsModule(ctx context.Context, deps Dependencies, middleware *authhttp.AuthMiddleware, cfg *config.Config) (*ExamsModule, error) {
	examRepo, err := mongodb.NewMongoExamRepository(ctx, deps.Mongo)
	if err != nil {
		return nil, err
	}
	deletions := mongodb.NewMongoDeletionRepository(deps.Mongo)

	var catalog repository.PDFCatalog
	if deps.SQL != nil {
		catalog = sqlite.NewPDFCatalog(deps.SQL)
	}

	uc := usecase.NewExamUsecase(usecase.Deps{
		Exams:     examRepo,
		Deletions: deletions,
		Catalog:   catalog,
		Inspector: pdf.NewInspector(),
		Blobs:     deps.Blobs,
		Bus:       deps.Bus,
	}, cfg, deps.Logger)

	if deps.Bus != nil {
		deps.Bus.Subscribe(eventbus.EventTypeExamDeleted, uc.HandleExamDeleted)
	}

	return &ExamsModule{
		usecase:    uc,
		handler:    examshttp.NewExamHTTPHandler(uc, cfg, deps.Logger),
		deletions:  deletions,
		catalog:    catalog,
		middleware: middleware,
	}, nil
}

func (m *ExamsModule) RegisterRoutes(router fiber.Router) {
	m.handler.RegisterRoutes(router, m.middleware)
}

func (m *ExamsModule) GetUsecase() usecase.ExamUsecaseInterface {
	return m.usecase
}

// Deletions is shared with the quiz module, which hides deleted questions.
func (m *ExamsModule) Deletions() repository.DeletionRepository {
	return m.deletions
}

// Catalog is nil when no SQL database was configured.
func (m *ExamsModule) Catalog() repository.PDFCatalog {
	return m.catalog
}
