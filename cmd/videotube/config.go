package main

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/ayushmaan703/videotube/internal/cache"
	"github.com/ayushmaan703/videotube/internal/media"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	DatabaseURL    string
	Addr           string
	AllowedOrigins []string

	JWTSecret  string
	AccessTTL  time.Duration
	RefreshTTL time.Duration

	LogLevel  string
	LogFormat string

	S3 media.S3Config

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	ViewFlushInterval time.Duration
}

func loadConfig() (Config, error) {
	_ = godotenv.Load("config/local.env")

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		return Config{}, errors.New("DATABASE_URL env var is required")
	}
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		return Config{}, errors.New("JWT_SECRET env var is required")
	}

	cfg := Config{
		DatabaseURL:    dsn,
		Addr:           fmt.Sprintf(":%s", envOrDefault("PORT", "8080")),
		AllowedOrigins: parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173")),
		JWTSecret:      secret,
		LogLevel:       envOrDefault("LOG_LEVEL", "info"),
		LogFormat:      envOrDefault("LOG_FORMAT", "json"),
		S3: media.S3Config{
			Bucket:          os.Getenv("S3_BUCKET"),
			Region:          envOrDefault("S3_REGION", "us-east-1"),
			AccessKeyID:     os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretAccessKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),
	}

	var err error
	if cfg.AccessTTL, err = envDuration("ACCESS_TOKEN_TTL", 15*time.Minute); err != nil {
		return Config{}, err
	}
	if cfg.RefreshTTL, err = envDuration("REFRESH_TOKEN_TTL", 7*24*time.Hour); err != nil {
		return Config{}, err
	}
	if cfg.ViewFlushInterval, err = envDuration("VIEW_FLUSH_INTERVAL", time.Minute); err != nil {
		return Config{}, err
	}
	if raw := os.Getenv("REDIS_DB"); raw != "" {
		if cfg.RedisDB, err = strconv.Atoi(raw); err != nil {
			return Config{}, fmt.Errorf("parse REDIS_DB: %w", err)
		}
	}

	return cfg, nil
}

func (c Config) redisConfig() cache.Config {
	return cache.Config{
		Addr:     c.RedisAddr,
		Password: c.RedisPassword,
		DB:       c.RedisDB,
	}
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func envDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("parse %s: %w", key, err)
	}
	return d, nil
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
