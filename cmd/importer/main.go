package main

import (
	"context"
	"encoding/json"
	"flag"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"pass-questions/internal/importer"
	"pass-questions/internal/importer/config"
	"pass-questions/internal/shared/database"
	"pass-questions/internal/shared/logger"

	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	collections := flag.String("collections", "", "comma separated legacy collections to copy (default: all)")
	dryRun := flag.Bool("dry-run", false, "read and count documents without writing")
	flag.Parse()

	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: Could not load .env file: %v", err)
	}

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatalf("Failed to load importer configuration: %v", err)
	}
	if *collections != "" {
		cfg.Collections = strings.Split(*collections, ",")
	}
	if *dryRun {
		cfg.DryRun = true
	}

	appLogger := logger.NewLogger().WithComponent("cmd-importer")
	if err := run(cfg, appLogger); err != nil {
		appLogger.Error("Import finished with errors", zap.Error(err))
		os.Exit(1)
	}
}

func run(cfg *config.Config, appLogger logger.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := importer.NewFirestoreSource(ctx, cfg.ProjectID)
	if err != nil {
		return err
	}
	defer source.Close()

	client, db, err := database.ConnectMongo(ctx, cfg.Mongo)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			appLogger.Error("Failed to disconnect MongoDB", zap.Error(err))
		}
	}()

	appLogger.Info("Starting legacy import",
		zap.String("project", cfg.ProjectID),
		zap.String("database", cfg.Mongo.DatabaseName),
		zap.Bool("dry_run", cfg.DryRun))

	report, err := importer.New(source, importer.NewMongoSink(db), cfg, appLogger).Run(ctx)
	out, _ := json.MarshalIndent(report, "", "  ")
	os.Stdout.Write(append(out, '\n'))
	if err != nil {
		return err
	}
	appLogger.Info("Import complete", zap.Int("documents", report.Total))
	return nil
}
