package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	DBDSN         string        // строка подключения к Postgres
	Environment   string        // development или production
	WatchInterval time.Duration // период фонового автозапуска матчинга
}

func Load() (*Config, error) {
	// Пытаемся загрузить .env файл (игнорируем ошибку, если файла нет)
	if err := godotenv.Load(".env"); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{
		DBDSN:       os.Getenv("DB_DSN"),
		Environment: os.Getenv("ENV"),
	}

	// Дефолтные значения
	if cfg.Environment == "" {
		cfg.Environment = "development"
	}

	cfg.WatchInterval = 5 * time.Minute
	if raw := os.Getenv("WATCH_INTERVAL_SEC"); raw != "" {
		sec, err := strconv.Atoi(raw)
		if err != nil || sec <= 0 {
			return nil, fmt.Errorf("WATCH_INTERVAL_SEC must be a positive integer, got %q", raw)
		}
		cfg.WatchInterval = time.Duration(sec) * time.Second
	}

	// Обязательные поля
	if cfg.DBDSN == "" {
		return nil, fmt.Errorf("DB_DSN is required but not set")
	}

	return cfg, nil
}
