package main

import (
	"context"
	"database/sql"
	"errors"
	"moving-quote-service/internal/adapters/cache"
	"moving-quote-service/internal/adapters/distance"
	"moving-quote-service/internal/adapters/repositories"
	"moving-quote-service/internal/api"
	"moving-quote-service/internal/config"
	"moving-quote-service/internal/platform/db"
	"moving-quote-service/internal/platform/obs"
	"moving-quote-service/internal/ports"
	"moving-quote-service/internal/services"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	_ "modernc.org/sqlite"
)

// main is the application composition root.
// It wires concrete adapters (SQL, Redis, ORS) behind ports and starts the HTTP server.
func main() {
	cfg, foundEnvFile, err := config.Load()
	if err != nil {
		obs.BootstrapLogger().Fatal("load config", zap.Error(err))
	}

	logger, err := obs.NewLogger(cfg.Env)
	if err != nil {
		panic(err)
	}
	defer logger.Sync()
	zap.ReplaceGlobals(logger)

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

	if err := repositories.InitSchema(conn); err != nil {
		logger.Fatal("init schema", zap.Error(err))
	}

	resolver, err := newResolver(cfg, conn, logger)
	if err != nil {
		logger.Fatal("distance resolver", zap.Error(err))
	}

	store := repositories.NewSQLStore(conn, cfg.DBDriver)

	// Rules and fleet are read through Redis when configured; the SQL store stays the source of truth.
	var rulesStore ports.RulesStore = store
	var rulesCache *cache.RedisRulesStore
	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Fatal("parse REDIS_URL", zap.Error(err))
		}
		client := redis.NewClient(opts)
		defer client.Close()

		rulesCache = cache.NewRedisRulesStore(store, client, cfg.RulesCacheTTL, logger)
		rulesStore = rulesCache
	}

	rules := services.NewRuleProvider(rulesStore)
	quotes := services.NewQuoteService(rules, resolver)
	availability := services.NewAvailabilityService(rules, store, services.NewSlotCalculator(logger))

	deps := api.Deps{
		Availability: availability,
		Quotes:       quotes,
		Distances:    resolver,
		DB:           conn,
		Log:          logger,
	}
	if rulesCache != nil {
		deps.RulesCache = rulesCache
	}

	// Timeouts allow one cold-cache quote (two geocodes and a matrix call with retries).
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           api.NewRouter(deps),
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       10 * time.Second,
		WriteTimeout:      60 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	go func() {
		logger.Info("server listening", zap.String("addr", srv.Addr), zap.String("distance_provider", cfg.DistanceProvider))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("listen", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
	}
}

func newResolver(cfg config.Config, conn *sql.DB, logger *zap.Logger) (*services.DistanceResolver, error) {
	var geocoder ports.Geocoder
	var provider ports.DistanceProvider

	if strings.TrimSpace(cfg.ORSAPIKey) != "" {
		ors, err := distance.NewORSClient(cfg.ORSAPIKey,
			distance.WithBaseURL(cfg.ORSBaseURL),
			distance.WithCountry(cfg.ORSCountry),
		)
		if err != nil {
			return nil, err
		}
		geocoder, provider = ors, ors
	} else {
		logger.Warn("ORS_API_KEY not set; every quote will use the default distance")
		geocoder = distance.UnavailableGeocoder{}
	}

	if cfg.DistanceProvider == "haversine" || provider == nil {
		provider = distance.NewHaversineProvider()
	}

	return services.NewDistanceResolver(geocoder, provider,
		services.WithDefaultKm(cfg.DefaultKm),
		services.WithTimeout(cfg.ProviderTimeout),
		services.WithLogger(logger),
		services.WithGeocodeStore(cache.NewSQLGeocodeCache(conn, cfg.DBDriver)),
		services.WithDistanceStore(cache.NewSQLDistanceCache(conn, cfg.DBDriver)),
	)
}
