package main

import (
	"context"
	"database/sql"
	"log/slog"
	"os"

	"github.com/finsight-app/finsight_backend/internal/clients/investment"
	"github.com/finsight-app/finsight_backend/internal/clients/marketdata"
	"github.com/finsight-app/finsight_backend/internal/clients/payments"
	"github.com/finsight-app/finsight_backend/internal/core/services"
	"github.com/finsight-app/finsight_backend/internal/handlers"
	"github.com/finsight-app/finsight_backend/internal/middleware"
	"github.com/finsight-app/finsight_backend/internal/repositories/database/pgsql"
	"github.com/finsight-app/finsight_backend/pkg/config"
	"github.com/finsight-app/finsight_backend/pkg/database"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	migrate "github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
)

func main() {
	// Initialize structured logger
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.LoadConfig()
	if err != nil {
		logger.Error("Failed to load config", slog.String("error", err.Error()))
		os.Exit(1)
	}

	dbPool, err := database.NewPgxPool(context.Background(), cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to initialize database pool", slog.String("error", err.Error()))
		os.Exit(1)
	}
	defer dbPool.Close()
	logger.Info("Database connection pool established.")

	if err := runMigrations(cfg, logger); err != nil {
		logger.Error("Failed to apply migrations", slog.String("error", err.Error()))
		os.Exit(1)
	}

	repos := pgsql.NewRepositoryProvider(dbPool)

	// Source clients: one instance each, constructed here and injected down.
	// An unconfigured provider stays nil and its sync step is skipped.
	clients := services.ClientProvider{}
	if cfg.PaymentsConfigured() {
		clients.Payments = payments.NewClient(cfg.PaymentsAPIURL, cfg.PaymentsToken, logger)
	}
	if cfg.InvestmentConfigured() {
		clients.Investment = investment.NewClient(cfg.InvestAPIURL, investment.Credentials{
			Username:    cfg.InvestUsername,
			Password:    cfg.InvestPassword,
			Document:    cfg.InvestDocument,
			StaticToken: cfg.InvestStaticToken,
		}, logger)
	}
	if cfg.MarketDataConfigured() {
		clients.MarketData = marketdata.NewClient(cfg.MarketDataAPIURL, cfg.MarketDataKey, cfg.MarketDataMinInterval, logger)
	}

	serviceContainer := services.NewServiceContainer(cfg, repos, clients, logger)

	if cfg.IsProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	r := gin.New()
	r.Use(middleware.StructuredLoggingMiddleware(logger), gin.Recovery())
	r.Use(cors.Default())

	if err := r.SetTrustedProxies(nil); err != nil {
		logger.Error("Failed to set trusted proxies", slog.String("error", err.Error()))
		os.Exit(1)
	}

	// Per-IP inbound rate limit; sync runs are expensive.
	rate, err := limiter.NewRateFromFormatted(cfg.SyncRateLimit)
	if err != nil {
		logger.Error("Invalid SYNC_RATE_LIMIT", slog.String("error", err.Error()))
		os.Exit(1)
	}
	r.Use(middleware.RateLimit(limiter.New(memory.NewStore(), rate)))

	handlers.RegisterRoutes(r, cfg, serviceContainer)

	logger.Info("Starting server", slog.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Error("Server exited", slog.String("error", err.Error()))
		os.Exit(1)
	}
}

// runMigrations applies all pending "up" migrations using a temporary
// database/sql connection compatible with the main pgx pool.
func runMigrations(cfg *config.Config, logger *slog.Logger) error {
	logger.Info("Running database migrations...")

	migrationDB, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := migrationDB.Close(); cerr != nil {
			logger.Error("Error closing migration DB connection", slog.String("error", cerr.Error()))
		}
	}()
	if err := migrationDB.Ping(); err != nil {
		return err
	}

	driver, err := postgres.WithInstance(migrationDB, &postgres.Config{})
	if err != nil {
		return err
	}

	m, err := migrate.NewWithDatabaseInstance("file://migrations", "postgres", driver)
	if err != nil {
		return err
	}

	err = m.Up()
	if err != nil && err != migrate.ErrNoChange {
		return err
	}

	sourceErr, dbErr := m.Close()
	if sourceErr != nil {
		return sourceErr
	}
	if dbErr != nil {
		return dbErr
	}

	if err == migrate.ErrNoChange {
		logger.Info("No new migrations to apply.")
	} else {
		logger.Info("Database migrations applied successfully.")
	}
	return nil
}
