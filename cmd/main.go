package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"pass-questions/internal/di"
	apperrors "pass-questions/internal/shared/errors"
	"pass-questions/internal/shared/logger"
	"pass-questions/internal/shared/utils"

	"github.com/caarlos0/env/v6"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

// ServerConfig holds server configuration
type ServerConfig struct {
	Host      string `env:"SERVER_HOST" envDefault:"localhost"`
	Port      string `env:"SERVER_PORT" envDefault:"3000"`
	BodyLimit int    `env:"SERVER_BODY_LIMIT_MB" envDefault:"32"`
	// ProxyHeader is read for the client address only when the peer is
	// listed in TrustedProxies.
	ProxyHeader    string   `env:"SERVER_PROXY_HEADER"`
	TrustedProxies []string `env:"SERVER_TRUSTED_PROXIES" envSeparator:","`
}

func main() {
	fmt.Println("🚀 Pass Questions - Starting Application...")

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}
	serverCfg := &ServerConfig{}
	if err := env.Parse(serverCfg); err != nil {
		log.Fatalf("Failed to load server configuration: %v", err)
	}
	infraCfg, err := di.LoadInfraConfig()
	if err != nil {
		log.Fatalf("%v", err)
	}
	moduleCfgs, err := di.LoadModuleConfigs()
	if err != nil {
		log.Fatalf("%v", err)
	}

	appLogger := logger.NewLogger()
	appLogger.Info("Application configuration loaded successfully")

	container := di.NewContainer(appLogger)
	defer func() {
		if err := container.Close(); err != nil {
			appLogger.Error("Failed to close container", zap.Error(err))
		}
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := container.Connect(ctx, infraCfg); err != nil {
		appLogger.Error("Failed to connect to backing stores", zap.Error(err))
		return
	}
	appLogger.Info("Backing stores connected", zap.Bool("redis", container.Redis != nil))

	if err := container.InitializeModules(ctx, moduleCfgs); err != nil {
		appLogger.Error("Failed to initialize modules", zap.Error(err))
		return
	}
	appLogger.Info("Modules initialized successfully")

	app := fiber.New(fiber.Config{
		AppName:      "Pass Questions v1.0",
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  60 * time.Second,
		BodyLimit:    serverCfg.BodyLimit * 1024 * 1024,

		ProxyHeader:             serverCfg.ProxyHeader,
		EnableTrustedProxyCheck: true,
		TrustedProxies:          serverCfg.TrustedProxies,
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			var fe *fiber.Error
			if errors.As(err, &fe) {
				return c.Status(fe.Code).JSON(fiber.Map{"error": fe.Message})
			}
			status := apperrors.HTTPStatus(err)
			if status >= fiber.StatusInternalServerError {
				appLogger.Error("HTTP Error",
					zap.Error(err),
					zap.String("path", c.Path()),
					zap.String("request_id", utils.RequestID(c.UserContext())),
					zap.String("uid", utils.UserID(c.UserContext())))
			}
			return c.Status(status).JSON(apperrors.Body(err))
		},
	})

	app.Use(recover.New())
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH,OPTIONS",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization",
	}))

	app.Get("/health", func(c *fiber.Ctx) error {
		healthCtx, cancel := context.WithTimeout(c.Context(), 5*time.Second)
		defer cancel()

		components, err := container.HealthCheck(healthCtx)
		if err != nil {
			appLogger.Error("Health check failed", zap.Error(err))
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
				"status":     "UNHEALTHY",
				"error":      err.Error(),
				"components": components,
				"message":    "One or more services are unhealthy",
			})
		}

		return c.JSON(fiber.Map{
			"status":     "HEALTHY",
			"message":    "Pass Questions is running",
			"timestamp":  time.Now().UTC(),
			"components": components,
		})
	})

	container.RegisterRoutes(app)

	runCtx, stopServices := context.WithCancel(context.Background())
	defer stopServices()
	container.Start(runCtx)

	serverAddr := fmt.Sprintf("%s:%s", serverCfg.Host, serverCfg.Port)
	appLogger.Info("Starting HTTP server", zap.String("addr", serverAddr))

	serverShutdown := make(chan error, 1)
	go func() {
		serverShutdown <- app.Listen(serverAddr)
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverShutdown:
		if err != nil {
			appLogger.Error("Server failed to start", zap.Error(err))
			return
		}
	case sig := <-quit:
		appLogger.Info("Received shutdown signal", zap.String("signal", sig.String()))
		fmt.Println("🛑 Shutting down server gracefully...")

		stopServices()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := app.ShutdownWithContext(shutdownCtx); err != nil {
			appLogger.Error("Server forced to shutdown", zap.Error(err))
		}

		appLogger.Info("HTTP server stopped")
	}

	fmt.Println("✅ Application stopped gracefully.")
}
