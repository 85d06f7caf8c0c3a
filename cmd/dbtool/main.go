package main

import (
	"context"
	"flag"
	"moving-quote-service/internal/adapters/repositories"
	"moving-quote-service/internal/config"
	"moving-quote-service/internal/platform/db"
	"moving-quote-service/internal/platform/obs"
	"strings"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

func main() {
	schemaOnly := flag.Bool("schema-only", false, "create tables without seeding")
	flag.Parse()

	cfg, foundEnvFile, err := config.Load()
	if err != nil {
		obs.BootstrapLogger().Fatal("load config", zap.Error(err))
	}

	logger, err := obs.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()

	if !foundEnvFile {
		logger.Info("no .env file found (using environment variables)")
	}
	if strings.TrimSpace(cfg.DatabaseURL) == "" {
		logger.Fatal("DATABASE_URL is required")
	}

	conn, err := db.Open(cfg.DBDriver, cfg.DatabaseURL)
	if err != nil {
		logger.Fatal("open database", zap.Error(err))
	}
	defer conn.Close()

	logger.Info("initializing database schema")
	if err := repositories.InitSchema(conn); err != nil {
		logger.Fatal("schema initialization failed", zap.Error(err))
	}
	logger.Info("schema ready")

	if *schemaOnly {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	logger.Info("seeding database", zap.String("path", cfg.SeedPath))
	store := repositories.NewSQLStore(conn, cfg.DBDriver)
	if err := repositories.SeedFromJSON(ctx, store, cfg.SeedPath); err != nil {
		logger.Fatal("seeding failed", zap.Error(err))
	}
	logger.Info("seeding complete")
}
