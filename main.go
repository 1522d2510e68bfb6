package main

import (
	"ConferenceBot/config"
	"ConferenceBot/handler"
	"ConferenceBot/repo"
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-telegram/bot"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Error loading config")
	}

	logger, err := cfg.Logger()
	if err != nil {
		log.Fatal().Err(err).Msg("Error configuring logger")
	}
	log.Logger = logger

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	store, err := newTokenStore(ctx, cfg, logger)
	if err != nil {
		log.Fatal().Err(err).Msg("Error initializing session store")
	}

	client := repo.NewClient(cfg.APIBaseURL, cfg.HTTPTimeout, logger)
	h := handler.NewBotHandler(
		client,
		handler.NewSession(store),
		cfg.ConferenceName,
		cfg.SubmitTimeout,
		logger.With().Str("component", "bot").Logger(),
	)

	opts := []bot.Option{
		bot.WithDefaultHandler(h.Handler),
	}

	b, err := bot.New(cfg.TelegramBotToken, opts...)
	if err != nil {
		log.Fatal().Err(err).Msg("Error creating bot")
	}

	log.Info().Str("api", cfg.APIBaseURL).Str("conference", cfg.ConferenceName).Msg("Bot started")
	b.Start(ctx)
	log.Info().Msg("Bot stopped")
}

// newTokenStore uses Firebase when it is configured and process memory otherwise.
func newTokenStore(ctx context.Context, cfg config.Config, logger zerolog.Logger) (repo.TokenStore, error) {
	if !cfg.UseFirebase() {
		logger.Warn().Msg("Firebase not configured, sessions are kept in memory")
		return repo.NewMemoryTokenStore(), nil
	}

	store, err := repo.NewFirebaseTokenStore(ctx, cfg.FirebaseKeyPath, cfg.FirebaseDatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("error creating Firebase token store: %w", err)
	}
	return store, nil
}
