package auth

import (
	"context"
	"fmt"

	authcache "pass-questions/internal/auth/adapter/cache"
	authhttp "pass-questions/internal/auth/adapter/http"
	"pass-questions/internal/auth/adapter/persistence/mongodb"
	"pass-questions/internal/auth/adapter/persistence/sqlite"
	"pass-questions/internal/auth/adapter/policy"
	"pass-questions/internal/auth/adapter/security"
	"pass-questions/internal/auth/config"
	"pass-questions/internal/auth/domain/model"
	"pass-questions/internal/auth/domain/repository"
	"pass-questions/internal/auth/usecase"
	"pass-questions/internal/shared/eventbus"
	"pass-questions/internal/shared/logger"

	"github.com/gofiber/fiber/v2"
	"github.com/jmoiron/sqlx"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuthModule represents the complete authentication module
type AuthModule struct {
	users      repository.UserRepository
	accounts   repository.AccountRepository
	tokenSvc   repository.TokenService
	redisCache *authcache.RedisSessionCache
	usecase    usecase.AuthUsecaseInterface
	middleware *authhttp.AuthMiddleware
	handler    *authhttp.AuthHTTPHandler
	hub        *authhttp.SessionHub
	cookies    *authhttp.CookieManager
	config     *config.Config
	log        logger.Logger
	cancel     context.CancelFunc
}

// Dependencies are the shared clients the module is built on. Redis and
// the bus may be nil.
type Dependencies struct {
	Mongo  *mongo.Database
	SQL    *sqlx.DB
	Redis  *redis.Client
	Bus    eventbus.Bus
	Logger logger.Logger
}

// NewAuthModule creates a new authentication module instance
func NewAuthModule(ctx context.Context, deps Dependencies, cfg *config.Config) (*AuthModule, error) {
	log := deps.Logger
	if log == nil {
		log = logger.NewNopLogger()
	}

	users, err := mongodb.NewMongoUserRepository(ctx, deps.Mongo)
	if err != nil {
		return nil, fmt.Errorf("failed to create user repository: %w", err)
	}
	accounts := sqlite.NewAccountRepository(deps.SQL)

	tokenSvc, err := security.NewJWTokenService(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create token service: %w", err)
	}
	identity, err := security.NewIdentityVerifier(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create identity verifier: %w", err)
	}
	accessPolicy, err := policy.NewCELPolicy(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to compile access policy: %w", err)
	}

	m := &AuthModule{
		users:    users,
		accounts: accounts,
		tokenSvc: tokenSvc,
		config:   cfg,
		log:      log,
	}

	var sessionCache repository.SessionCache
	if deps.Redis != nil {
		m.redisCache = authcache.NewRedisSessionCache(deps.Redis, log)
		sessionCache = m.redisCache
	}

	m.usecase = usecase.NewAuthUsecase(users, accounts, tokenSvc, identity, sessionCache, deps.Bus, cfg, log)
	m.cookies = authhttp.NewCookieManager(cfg)
	m.middleware = authhttp.NewAuthMiddleware(m.usecase, accessPolicy, m.cookies, log)
	m.handler = authhttp.NewAuthHTTPHandler(m.usecase, m.cookies, cfg, log)
	m.hub = authhttp.NewSessionHub(log)

	if deps.Bus != nil {
		deps.Bus.Subscribe(eventbus.EventTypeSessionRevoked, m.hub.HandleEvent)
	}

	return m, nil
}

// Start relays revocations from other instances to local sockets.
func (am *AuthModule) Start(ctx context.Context) {
	if am.redisCache == nil {
		return
	}
	ctx, am.cancel = context.WithCancel(ctx)
	go func() {
		err := am.redisCache.Subscribe(ctx, func(rev model.Revocation) {
			am.hub.Notify(rev)
		})
		if err != nil {
			am.log.Error("Revocation subscription stopped", zap.Error(err))
		}
	}()
}

// RegisterRoutes registers authentication routes with the provided router
func (am *AuthModule) RegisterRoutes(router fiber.Router) {
	am.handler.RegisterRoutes(router, am.middleware, am.hub, am.middleware.RateLimiter(20))
}

// GetUsecase returns the auth usecase for external access
func (am *AuthModule) GetUsecase() usecase.AuthUsecaseInterface {
	return am.usecase
}

// GetMiddleware returns the auth middleware
func (am *AuthModule) GetMiddleware() *authhttp.AuthMiddleware {
	return am.middleware
}

func (am *AuthModule) Cookies() *authhttp.CookieManager { return am.cookies }

func (am *AuthModule) Users() repository.UserRepository { return am.users }

func (am *AuthModule) Accounts() repository.AccountRepository { return am.accounts }

func (am *AuthModule) Hub() *authhttp.SessionHub { return am.hub }

// Ping checks the stores the module depends on.
func (am *AuthModule) Ping(ctx context.Context) map[string]error {
	results := map[string]error{
		"mongodb": am.users.Ping(ctx),
		"sqlite":  am.accounts.Ping(ctx),
	}
	if am.redisCache != nil {
		results["redis"] = am.redisCache.Ping(ctx)
	}
	return results
}

// Stop performs cleanup when the module is shut down
func (am *AuthModule) Stop() error {
	if am.cancel != nil {
		am.cancel()
	}
	return nil
}
