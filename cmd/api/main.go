package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/fairyhunter13/issue-coupon-service/internal/config"
	"github.com/fairyhunter13/issue-coupon-service/internal/handler"
	"github.com/fairyhunter13/issue-coupon-service/internal/metrics"
	"github.com/fairyhunter13/issue-coupon-service/internal/repository"
	"github.com/fairyhunter13/issue-coupon-service/internal/service"
	"github.com/fairyhunter13/issue-coupon-service/internal/validator"
	"github.com/fairyhunter13/issue-coupon-service/pkg/database"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load configuration")
	}

	initLogger(cfg)

	ctx := context.Background()

	// Initialize database pool with retry
	pool, err := database.NewPool(ctx, cfg.DB.DSN(), cfg.DB.ConnectRetries)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}

	if cfg.DB.AutoMigrate {
		migrateCtx, cancel := context.WithTimeout(ctx, 30*time.Second)
		err := database.Migrate(migrateCtx, pool)
		cancel()
		if err != nil {
			pool.Close()
			log.Fatal().Err(err).Msg("failed to apply database schema")
		}
	}

	readTimeout, writeTimeout, idleTimeout := cfg.Server.Timeouts()
	app := fiber.New(fiber.Config{
		AppName:      "Issue Coupon Service",
		ReadTimeout:  readTimeout,
		WriteTimeout: writeTimeout,
		IdleTimeout:  idleTimeout,
		BodyLimit:    cfg.Server.BodyLimit,
	})

	m := metrics.New()

	// Middleware
	app.Use(recover.New())
	app.Use(requestid.New()) // Adds X-Request-ID header to all requests
	app.Use(logger.New())
	app.Use(m.Middleware())

	app.Get("/metrics", m.Handler())

	validate := validator.New()

	couponService := service.NewCouponService(pool,
		repository.NewCouponRepository(),
		repository.NewUserCouponRepository(),
	)

	handler.RegisterRoutes(app,
		handler.NewHealthHandler(pool),
		handler.NewCouponHandler(couponService, validate),
		handler.NewIssueHandler(couponService, validate, m),
	)

	sigCtx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(sigCtx)
	g.Go(func() error {
		log.Info().Str("port", cfg.Server.Port).Msg("starting server")
		return app.Listen(":" + cfg.Server.Port)
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().
			Int("timeout_seconds", cfg.Server.ShutdownTimeout).
			Msg("shutting down server")

		shutdownCtx, cancel := context.WithTimeout(
			context.Background(),
			time.Duration(cfg.Server.ShutdownTimeout)*time.Second,
		)
		defer cancel()

		// Waits for in-flight requests
		return app.ShutdownWithContext(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Error().Err(err).Msg("server exited with error")
	}

	// Close database pool AFTER server shutdown (even if shutdown timed out)
	pool.Close()
	log.Info().Msg("server stopped")
}

// initLogger configures the global zerolog logger from configuration.
func initLogger(cfg *config.Config) {
	level, err := zerolog.ParseLevel(cfg.Log.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Log.Pretty {
		log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).
			With().Timestamp().Logger()
		return
	}
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = zerolog.New(os.Stdout).With().Timestamp().Str("service", "issue-coupon").Logger()
}
