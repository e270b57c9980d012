package quiz

import (
	"context"

	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/quiz/adapter/ai"
	quizhttp "pass-questions/internal/quiz/adapter/http"
	"pass-questions/internal/quiz/adapter/pdf"
	"pass-questions/internal/quiz/adapter/persistence/mongodb"
	"pass-questions/internal/quiz/config"
	"pass-questions/internal/quiz/domain/repository"
	"pass-questions/internal/quiz/usecase"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// Dependencies are the shared resources the quiz module needs. Deleted and
// Exams come from the exams module and may be nil.
type Dependencies struct {
	Mongo   *mongo.Database
	Bus     eventbus.Bus
	Logger  logger.Logger
	Deleted repository.DeletedQuestions
	Exams   repository.ExamCatalog
}

// QuizModule wires the question bank, adaptive quizzes and analytics.
type QuizModule struct {
	usecase    *usecase.QuizUsecase
	handler    *quizhttp.QuizHTTPHandler
	questions  repository.QuestionRepository
	generator  *ai.VertexGenerator
	middleware *authhttp.AuthMiddleware
}

func NewQuizModule(ctx context.Context, deps Dependencies, middleware *authhttp.AuthMiddleware, cfg *config.Config) (*QuizModule, error) {
	if cfg == nil {
		cfg = config.DefaultConfig()
	}
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	questions, err := mongodb.NewMongoQuestionRepository(ctx, deps.Mongo)
	if err != nil {
		return nil, err
	}
	history, err := mongodb.NewMongoHistoryRepository(ctx, deps.Mongo)
	if err != nil {
		return nil, err
	}

	ucDeps := usecase.Deps{
		Questions: questions,
		History:   history,
		Analytics: mongodb.NewMongoAnalyticsRepository(deps.Mongo),
		Deleted:   deps.Deleted,
		Exams:     deps.Exams,
		Bus:       deps.Bus,
	}

	var generator *ai.VertexGenerator
	if cfg.AI.Enabled() {
		generator, err = ai.NewVertexGenerator(ctx, cfg.AI)
		if err != nil {
			log.Warn("AI question generation disabled", zap.Error(err))
		} else {
			ucDeps.Extractor = pdf.NewTextExtractor()
			ucDeps.Generator = generator
		}
	}

	uc := usecase.NewQuizUsecase(ucDeps, cfg, log)
	if deps.Bus != nil {
		deps.Bus.Subscribe(eventbus.EventTypeQuizSubmitted, uc.HandleQuizSubmitted)
		deps.Bus.Subscribe(eventbus.EventTypeQuestionDeleted, uc.HandleQuestionDeleted)
	}

	return &QuizModule{
		usecase:    uc,
		handler:    quizhttp.NewQuizHTTPHandler(uc, cfg, log),
		questions:  questions,
		generator:  generator,
		middleware: middleware,
	}, nil
}

func (m *QuizModule) RegisterRoutes(router fiber.Router) {
	m.handler.RegisterRoutes(router, m.middleware)
}

func (m *QuizModule) GetUsecase() usecase.QuizUsecaseInterface {
	return m.usecase
}

// Questions is used by the admin dashboard for its counts.
func (m *QuizModule) Questions() repository.QuestionRepository {
	return m.questions
}

func (m *QuizModule) Close() error {
	if m.generator != nil {
		return m.generator.Close()
	}
	return nil
}
