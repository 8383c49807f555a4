package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/matchforge/arena/rating"
)

// Config хранит все конфигурационные параметры приложения.
// Турнирные константы (K, стартовый рейтинг, очки) вынесены в окружение,
// значения по умолчанию воспроизводят поведение продакшена.
type Config struct {
	DatabaseURL  string `env:"DATABASE_URL,required"`
	JWTSecretKey string `env:"JWT_SECRET_KEY,required"`
	ServerPort   int    `env:"SERVER_PORT" envDefault:"8080"`

	EloKFactor     int `env:"ELO_K_FACTOR" envDefault:"32"`
	StartingRating int `env:"STARTING_RATING" envDefault:"1500"`
	WinPoints      int `env:"WIN_POINTS" envDefault:"3"`
	TiePoints      int `env:"TIE_POINTS" envDefault:"1"`
}

// Load загружает конфигурацию из переменных окружения.
// Опционально подгружает .env файл (полезно для локальной разработки).
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}

	if cfg.ServerPort <= 0 || cfg.ServerPort > 65535 {
		return nil, fmt.Errorf("SERVER_PORT must be between 1 and 65535, got %d", cfg.ServerPort)
	}
	if cfg.EloKFactor <= 0 {
		return nil, fmt.Errorf("ELO_K_FACTOR must be positive, got %d", cfg.EloKFactor)
	}

	return cfg, nil
}

// RatingConfig собирает турнирные константы для движка рейтинга.
func (c *Config) RatingConfig() rating.Config {
	return rating.Config{
		K:              c.EloKFactor,
		StartingRating: c.StartingRating,
		WinPoints:      c.WinPoints,
		TiePoints:      c.TiePoints,
	}
}
