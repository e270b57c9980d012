package di

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"pass-questions/internal/admin"
	"pass-questions/internal/auth"
	authconfig "pass-questions/internal/auth/config"
	"pass-questions/internal/codes"
	codesconfig "pass-questions/internal/codes/config"
	"pass-questions/internal/exams"
	examsconfig "pass-questions/internal/exams/config"
	"pass-questions/internal/payment"
	paymentconfig "pass-questions/internal/payment/config"
	"pass-questions/internal/quiz"
	quizconfig "pass-questions/internal/quiz/config"
	"pass-questions/internal/shared/database"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/storage"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// InfraConfig describes the shared stores every module is built on.
type InfraConfig struct {
	Mongo   database.MongoConfig
	Redis   database.RedisConfig
	SQLite  database.SQLiteConfig
	Storage storage.Config

	AsyncEvents bool `env:"EVENTBUS_ASYNC" envDefault:"false"`
}

func LoadInfraConfig() (*InfraConfig, error) {
	cfg := &InfraConfig{}
	if err := env.Parse(cfg); err != nil {
		return nil, errors.New("failed to load infrastructure configuration from environment: " + err.Error())
	}
	return cfg, nil
}

// ModuleConfigs carries each module's configuration. Nil entries fall back
// to the module defaults where the module has them.
type ModuleConfigs struct {
	Auth    *authconfig.Config
	Payment *paymentconfig.Config
	Exams   *examsconfig.Config
	Quiz    *quizconfig.Config
	Codes   *codesconfig.Config
}

// LoadModuleConfigs reads every module configuration from the environment.
func LoadModuleConfigs() (*ModuleConfigs, error) {
	var (
		mc  ModuleConfigs
		err error
	)
	if mc.Auth, err = authconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if mc.Payment, err = paymentconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if mc.Exams, err = examsconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if mc.Quiz, err = quizconfig.LoadConfig(); err != nil {
		return nil, err
	}
	if mc.Codes, err = codesconfig.LoadConfig(); err != nil {
		return nil, err
	}
	return &mc, nil
}

// Container owns the shared clients and the module instances, and tears
// them down in reverse order.
type Container struct {
	mu sync.RWMutex

	AuthModule    *auth.AuthModule
	PaymentModule *payment.PaymentModule
	ExamsModule   *exams.ExamsModule
	QuizModule    *quiz.QuizModule
	CodesModule   *codes.CodesModule
	AdminModule   *admin.AdminModule

	MongoClient *mongo.Client
	MongoDB     *mongo.Database
	SQL         *sqlx.DB
	Redis       *redis.Client
	Blobs       storage.BlobStore
	Bus         *eventbus.EventBus

	Logger logger.Logger
}

func NewContainer(log logger.Logger) *Container {
	if log == nil {
		log = logger.NewLogger()
	}
	return &Container{Logger: log}
}

// Connect opens the shared stores. Redis is optional: when it is not
// configured or cannot be reached the application runs without it.
func (c *Container) Connect(ctx context.Context, cfg *InfraConfig) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	c.MongoClient, c.MongoDB = client, db

	sqlDB, err := database.OpenSQLite(ctx, cfg.SQLite.Path)
	if err != nil {
		return fmt.Errorf("open sqlite: %w", err)
	}
	c.SQL = sqlDB

	if cfg.Redis.Enabled() {
		rdb, err := database.ConnectRedis(ctx, cfg.Redis)
		if err != nil {
			c.Logger.Warn("Redis unavailable, sessions will not be cached", zap.Error(err))
		} else {
			c.Redis = rdb
		}
	}

	blobs, err := storage.New(ctx, cfg.Storage)
	if err != nil {
		return fmt.Errorf("open blob store: %w", err)
	}
	c.Blobs = blobs

	busCfg := eventbus.DefaultBusConfig()
	busCfg.AsyncProcessing = cfg.AsyncEvents
	c.Bus = eventbus.NewEventBusWithConfig(c.Logger, busCfg)
	return nil
}

// InitializeModules builds every module on the connected stores. Auth comes
// first because every other module guards its routes with its middleware.
func (c *Container) InitializeModules(ctx context.Context, mc *ModuleConfigs) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.MongoDB == nil {
		return fmt.Errorf("MongoDB must be connected before modules are initialized")
	}

	authModule, err := auth.NewAuthModule(ctx, auth.Dependencies{
		Mongo:  c.MongoDB,
		SQL:    c.SQL,
		Redis:  c.Redis,
		Bus:    c.Bus,
		Logger: c.Logger,
	}, mc.Auth)
	if err != nil {
		return fmt.Errorf("failed to create auth module: %w", err)
	}
	c.AuthModule = authModule
	mw := authModule.GetMiddleware()

	c.PaymentModule = payment.NewPaymentModule(
		authModule.Accounts(), authModule.GetUsecase(), authModule.Cookies(), mw, mc.Payment, c.Logger)

	examsModule, err := exams.NewExamsModule(ctx, exams.Dependencies{
		Mongo:  c.MongoDB,
		SQL:    c.SQL,
		Blobs:  c.Blobs,
		Bus:    c.Bus,
		Logger: c.Logger,
	}, mw, mc.Exams)
	if err != nil {
		return fmt.Errorf("failed to create exams module: %w", err)
	}
	c.ExamsModule = examsModule

	quizModule, err := quiz.NewQuizModule(ctx, quiz.Dependencies{
		Mongo:   c.MongoDB,
		Bus:     c.Bus,
		Logger:  c.Logger,
		Deleted: examsModule.Deletions(),
		Exams:   examsModule.GetUsecase(),
	}, mw, mc.Quiz)
	if err != nil {
		return fmt.Errorf("failed to create quiz module: %w", err)
	}
	c.QuizModule = quizModule

	codesModule, err := codes.NewCodesModule(ctx, c.MongoDB, mw, mc.Codes, c.Logger)
	if err != nil {
		return fmt.Errorf("failed to create codes module: %w", err)
	}
	c.CodesModule = codesModule

	c.AdminModule = admin.NewAdminModule(authModule.GetUsecase(), examsModule.GetUsecase(), mw, c.Logger)

	if c.Bus != nil {
		c.Bus.Subscribe(eventbus.EventTypeUserPaid, c.auditPayment)
	}
	return nil
}

func (c *Container) auditPayment(ctx context.Context, event eventbus.Event) error {
	c.Logger.Info("User marked as paid", zap.Any("uid", event.Data()), zap.String("source", event.Source()))
	return nil
}

// RegisterRoutes mounts every initialized module on router.
func (c *Container) RegisterRoutes(router fiber.Router) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if c.AuthModule != nil {
		c.AuthModule.RegisterRoutes(router)
	}
	if c.PaymentModule != nil {
		c.PaymentModule.RegisterRoutes(router)
	}
	if c.ExamsModule != nil {
		c.ExamsModule.RegisterRoutes(router)
	}
	if c.QuizModule != nil {
		c.QuizModule.RegisterRoutes(router)
	}
	if c.CodesModule != nil {
		c.CodesModule.RegisterRoutes(router)
	}
	if c.AdminModule != nil {
		c.AdminModule.RegisterRoutes(router)
	}
}

// Start launches background work such as the cross-instance revocation
// relay.
func (c *Container) Start(ctx context.Context) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.AuthModule != nil {
		c.AuthModule.Start(ctx)
	}
}

// HealthCheck pings every store and returns per-component status. The
// error is non-nil when any component is unhealthy.
func (c *Container) HealthCheck(ctx context.Context) (map[string]string, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	checks := map[string]error{}
	if c.AuthModule != nil {
		for name, err := range c.AuthModule.Ping(ctx) {
			checks[name] = err
		}
	} else if c.MongoDB != nil {
		checks["mongodb"] = c.MongoDB.Client().Ping(ctx, nil)
	}
	if c.Blobs != nil {
		checks["storage"] = c.Blobs.Ping(ctx)
	}

	status := make(map[string]string, len(checks))
	var failed []error
	for name, err := range checks {
		if err != nil {
			status[name] = "unhealthy"
			failed = append(failed, fmt.Errorf("%s health check failed: %w", name, err))
			continue
		}
		status[name] = "healthy"
	}
	return status, errors.Join(failed...)
}

// Close releases modules and stores in reverse order of creation.
func (c *Container) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	var errs []error
	if c.QuizModule != nil {
		if err := c.QuizModule.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close quiz module: %w", err))
		}
		c.QuizModule = nil
	}
	if c.AuthModule != nil {
		if err := c.AuthModule.Stop(); err != nil {
			errs = append(errs, fmt.Errorf("stop auth module: %w", err))
		}
		c.AuthModule = nil
	}
	c.PaymentModule, c.ExamsModule, c.CodesModule, c.AdminModule = nil, nil, nil, nil

	if closer, ok := c.Blobs.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close blob store: %w", err))
		}
	}
	c.Blobs = nil
	if c.Redis != nil {
		if err := c.Redis.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close redis: %w", err))
		}
		c.Redis = nil
	}
	if c.SQL != nil {
		if err := c.SQL.Close(); err != nil {
			errs = append(errs, fmt.Errorf("close sqlite: %w", err))
		}
		c.SQL = nil
	}
	if c.MongoClient != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := c.MongoClient.Disconnect(ctx); err != nil {
			errs = append(errs, fmt.Errorf("disconnect mongodb: %w", err))
		}
		c.MongoClient, c.MongoDB = nil, nil
	}
	return errors.Join(errs...)
}
