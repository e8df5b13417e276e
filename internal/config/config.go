package config

import (
	"fmt"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	DBDriver      string `env:"DB_DRIVER" envDefault:"mysql"`
	DBHost        string `env:"DB_HOST" envDefault:"localhost"`
	DBPort        string `env:"DB_PORT" envDefault:"3306"`
	DBUser        string `env:"DB_USER" envDefault:"taskuser"`
	DBPassword    string `env:"DB_PASSWORD" envDefault:"taskpassword"`
	DBName        string `env:"DB_NAME" envDefault:"task_board"`
	RedisHost     string `env:"REDIS_HOST" envDefault:"localhost"`
	RedisPort     string `env:"REDIS_PORT" envDefault:"6379"`
	SessionSecret string `env:"SESSION_SECRET" envDefault:"default-secret-key-change-me"`
	GinMode       string `env:"GIN_MODE" envDefault:"debug"`
	OpenAIAPIKey  string `env:"OPENAI_API_KEY"`
}

// Load parses configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
