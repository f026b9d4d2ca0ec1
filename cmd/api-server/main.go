package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/AbhishekS200607/MEDIHUB/internal/admin"
	"github.com/AbhishekS200607/MEDIHUB/internal/api"
	"github.com/AbhishekS200607/MEDIHUB/internal/appointment"
	"github.com/AbhishekS200607/MEDIHUB/internal/auth"
	"github.com/AbhishekS200607/MEDIHUB/internal/config"
	"github.com/AbhishekS200607/MEDIHUB/internal/db"
	"github.com/AbhishekS200607/MEDIHUB/internal/patient"
	redisclient "github.com/AbhishekS200607/MEDIHUB/internal/redis"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
	"github.com/AbhishekS200607/MEDIHUB/internal/user"
)

const version = "1.0.0"

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "api-server").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}
	if cfg.Env == "dev" {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stdout}).With().Timestamp().Logger()
	}

	logger.Info().Str("env", cfg.Env).Str("http_port", cfg.HTTPPort).Msg("api-server starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Connect Postgres
	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, cfg.PGMaxConns, cfg.PGMinConns)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	// Connect Redis
	rdb, err := redisclient.NewRedisClient(cfg.RedisAddr, cfg.RedisUsername, cfg.RedisPassword, cfg.RedisPoolSize)
	if err != nil {
		logger.Fatal().Err(err).Msg("redis connection error")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			logger.Error().Err(err).Msg("error closing redis")
		}
	}()
	logger.Info().Msg("connected to Redis")

	notifier := redisclient.NewQueueNotifier(rdb)
	issuer := token.NewIssuer(token.NewPgStore(pgPool), cfg.TokenMaxAttempts, logger)
	appointments := appointment.NewService(appointment.NewPgRepository(pgPool), issuer, notifier, logger)
	users := user.NewService(user.NewPgRepository(pgPool), logger)
	patients := patient.NewService(patient.NewPgRepository(pgPool), logger)
	admins := admin.NewService(admin.NewPgRepository(pgPool), cfg.DefaultDoctorCode, logger)

	router := api.NewRouter(api.RouterConfig{
		Appointments: appointments,
		Tokens:       issuer,
		Users:        users,
		Patients:     patients,
		Admin:        admins,
		Queues:       notifier,
		Verifier:     auth.NewVerifier(cfg.JWTSecret),
		PgPool:       pgPool,
		Redis:        rdb,
		Env:          cfg.Env,
		Version:      version,
		Log:          logger,
	})

	srv := &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info().Str("addr", srv.Addr).Msg("http server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	select {
	case <-rootCtx.Done():
		logger.Info().Msg("shutdown signal received")
	case err := <-errCh:
		logger.Error().Err(err).Msg("http server error")
	}

	shutCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutCtx); err != nil {
		logger.Error().Err(err).Msg("graceful shutdown failed")
	}

	logger.Info().Msg("api-server stopped")
}
