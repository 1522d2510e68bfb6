package config

import (
	"fmt"
	"os"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/rs/zerolog"
)

// Config is read from the environment at startup.
type Config struct {
	APIBaseURL       string        `env:"API_BASE_URL" envDefault:"http://localhost:5000/api"`
	TelegramBotToken string        `env:"TELEGRAM_BOT_TOKEN,required,notEmpty"`
	SubmitTimeout    time.Duration `env:"SUBMIT_TIMEOUT" envDefault:"30s"`
	HTTPTimeout      time.Duration `env:"HTTP_TIMEOUT" envDefault:"30s"`
	ConferenceName   string        `env:"CONFERENCE_NAME" envDefault:"AusIMM Annual Conference 2024"`

	// Sessions are kept in memory unless both Firebase settings are present.
	FirebaseKeyPath     string `env:"FIREBASE_SERVICE_ACCOUNT_KEY_PATH"`
	FirebaseDatabaseURL string `env:"FIREBASE_DATABASE_URL"`

	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogPretty bool   `env:"LOG_PRETTY" envDefault:"false"`
}

// Load parses the environment into a Config.
func Load() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.SubmitTimeout <= 0 || cfg.HTTPTimeout <= 0 {
		return Config{}, fmt.Errorf("timeouts must be positive")
	}
	return cfg, nil
}

func (c Config) UseFirebase() bool {
	return c.FirebaseKeyPath != "" && c.FirebaseDatabaseURL != ""
}

// Logger builds the process logger from LOG_LEVEL and LOG_PRETTY.
func (c Config) Logger() (zerolog.Logger, error) {
	level, err := zerolog.ParseLevel(c.LogLevel)
	if err != nil {
		return zerolog.Nop(), fmt.Errorf("parse log level: %w", err)
	}

	logger := zerolog.New(os.Stderr)
	if c.LogPretty {
		logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	return logger.Level(level).With().Timestamp().Logger(), nil
}
