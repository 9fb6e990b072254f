package config

import (
	"log"
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type AppConfig struct {
	HTTPAddr      string
	RedisAddr     string
	RedisPass     string
	DatabaseURL   string
	JWTSecret     string
	QueueKey      string
	QueueRetryKey string
	WorkerCount   int
}

func Load() AppConfig {
	if err := godotenv.Load(); err != nil {
		log.Println("Broadcast: No .env file found, relying on system env vars")
	}
	return AppConfig{
		HTTPAddr:      getEnv("HTTP_ADDR", ":8021"),
		RedisAddr:     getEnv("REDIS_ADDR", "redis:6379"),
		RedisPass:     getEnv("REDIS_PASS", ""),
		DatabaseURL:   getEnv("DATABASE_URL", "postgres://postgres:postgres@db:5432/pishatto"),
		JWTSecret:     getEnv("JWT_SECRET", "dev-secret"),
		QueueKey:      getEnv("QUEUE_KEY", "broadcast:queue"),
		QueueRetryKey: getEnv("QUEUE_RETRY_KEY", "broadcast:queue:retry"),
		WorkerCount:   getEnvInt("WORKER_COUNT", 4),
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
