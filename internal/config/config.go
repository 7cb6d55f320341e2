package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config - настройки процесса, читаются из окружения (и .env)
type Config struct {
	Storage string `env:"STORAGE" envDefault:"memory"`

	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     string `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER"`
	DBPassword string `env:"DB_PASSWORD"`
	DBName     string `env:"DB_NAME"`
	DBSSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	SQLitePath string `env:"SQLITE_PATH" envDefault:"storage/postery.db"`

	HTTPAddr      string `env:"HTTP_ADDR" envDefault:":8080"`
	MediaRoot     string `env:"MEDIA_ROOT" envDefault:"storage/public"`
	ExportRoot    string `env:"EXPORT_ROOT" envDefault:"storage/exports"`
	LocationsFile string `env:"LOCATIONS_FILE" envDefault:"config/locations.yaml"`
	JWTSecret     string `env:"JWT_SECRET"`

	OTELEndpoint string `env:"OTEL_ENDPOINT"`
	OTELEnabled  bool   `env:"OTEL_ENABLED" envDefault:"true"`
}

func LoadEnv() {
	err := godotenv.Load()
	if err != nil {
		log.Println(".env file not found")
	}
}

// Load загружает .env (если есть) и разбирает окружение в Config
func Load() (*Config, error) {
	LoadEnv()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// DSN собирает строку подключения для выбранного драйвера
func (c *Config) DSN() (string, error) {
	switch c.Storage {
	case "postgres":
		return fmt.Sprintf(
			"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
			c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
		), nil
	case "mysql":
		return fmt.Sprintf(
			"%s:%s@tcp(%s:%s)/%s?charset=utf8mb4&parseTime=True&loc=UTC",
			c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName,
		), nil
	case "sqlite":
		return c.SQLitePath, nil
	}
	return "", fmt.Errorf("unknown storage type: %s", c.Storage)
}
