package main

import (
	"context"
	"time"

	"marketplace/internal/config"
	"marketplace/internal/database"
	"marketplace/internal/logger"
	"marketplace/internal/repository"
	"marketplace/internal/verification"
)

// verify_cleanup removes expired verification codes and password reset
// tokens. Run it from cron; Redis-held codes expire on their own.
func main() {
	cfg, err := config.Load()
	if err != nil {
		logger.Fatal().Err(err).Msg("invalid configuration")
	}
	logger.Init("marketplace-verify-cleanup", cfg.Debug)

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Fatal().Err(err).Msg("db connect failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	now := time.Now()
	codes, err := verification.NewGormStore(db).DeleteExpired(ctx, now)
	if err != nil {
		logger.Fatal().Err(err).Msg("cleanup verification_codes failed")
	}

	tokens, err := repository.NewResetTokenRepository(db).DeleteExpired(ctx, now)
	if err != nil {
		logger.Fatal().Err(err).Msg("cleanup password_reset_tokens failed")
	}

	logger.Info().Int64("verification_codes", codes).Int64("password_reset_tokens", tokens).Msg("verification cleanup completed")
}
