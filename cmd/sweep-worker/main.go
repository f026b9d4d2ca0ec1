package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"

	"github.com/AbhishekS200607/MEDIHUB/internal/config"
	"github.com/AbhishekS200607/MEDIHUB/internal/db"
	"github.com/AbhishekS200607/MEDIHUB/internal/token"
)

func main() {
	logger := zerolog.New(os.Stdout).With().Timestamp().Str("service", "sweep-worker").Logger()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("config load error")
	}

	logger.Info().Str("env", cfg.Env).Dur("interval", cfg.SweepInterval).Msg("sweep-worker starting up")

	rootCtx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	pgCtx, cancelPg := context.WithTimeout(rootCtx, 10*time.Second)
	pgPool, err := db.ConnectPostgres(pgCtx, cfg.PostgresDSN, 2, 1)
	cancelPg()
	if err != nil {
		logger.Fatal().Err(err).Msg("postgres connection error")
	}
	defer pgPool.Close()
	logger.Info().Msg("connected to Postgres")

	issuer := token.NewIssuer(token.NewPgStore(pgPool), cfg.TokenMaxAttempts, logger)

	// Run once at startup
	runOnce(rootCtx, issuer, logger)

	ticker := time.NewTicker(cfg.SweepInterval)
	defer ticker.Stop()

	for {
		select {
		case <-rootCtx.Done():
			logger.Info().Msg("shutdown signal received, stopping sweep worker")
			return
		case <-ticker.C:
			runOnce(rootCtx, issuer, logger)
		}
	}
}

// runOnce deletes every counter for days before today. Counters for the
// current day stay untouched so the daily sequence keeps its gap-free
// guarantee while the clinic is open.
func runOnce(ctx context.Context, issuer *token.Issuer, logger zerolog.Logger) {
	runCtx, cancel := context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	start := time.Now()
	removed, err := issuer.SweepExpired(runCtx, token.Today())
	if err != nil {
		logger.Error().Err(err).Msg("sweep run error")
		return
	}
	logger.Info().Int64("removed", removed).Dur("took", time.Since(start)).Msg("sweep run complete")
}
