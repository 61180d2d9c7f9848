package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/terraincognita07/cvagent/internal/db"
)

const minSecretKeyLength = 32

var insecureSecretKeys = map[string]struct{}{
	"change_me_in_production":                    {},
	"replace_with_at_least_32_random_characters": {},
}

type serverConfig struct {
	SecretKey      string
	Port           string
	Database       db.OpenOptions
	RedisURL       string
	CookieSecure   bool
	SessionTTL     time.Duration
	PasscodeTTL    time.Duration
	RequestTimeout time.Duration
	CORSOrigins    []string
	LogLevel       slog.Level
}

func loadServerConfig() (serverConfig, error) {
	config := serverConfig{
		Database: databaseOptionsFromEnv(),
		RedisURL: strings.TrimSpace(os.Getenv("REDIS_URL")),
	}

	var err error
	if config.SecretKey, err = resolveSecretKey(); err != nil {
		return serverConfig{}, err
	}
	if config.Port, err = resolvePort(); err != nil {
		return serverConfig{}, err
	}
	if config.CookieSecure, err = resolveBool("COOKIE_SECURE", false); err != nil {
		return serverConfig{}, err
	}
	if config.SessionTTL, err = resolveDuration("SESSION_TTL", 24*time.Hour); err != nil {
		return serverConfig{}, err
	}
	if config.PasscodeTTL, err = resolveDuration("PASSCODE_TTL", 15*time.Minute); err != nil {
		return serverConfig{}, err
	}
	if config.RequestTimeout, err = resolveDuration("REQUEST_TIMEOUT", 10*time.Second); err != nil {
		return serverConfig{}, err
	}
	if config.CORSOrigins, err = resolveCORSOrigins(); err != nil {
		return serverConfig{}, err
	}
	if config.LogLevel, err = resolveLogLevel(); err != nil {
		return serverConfig{}, err
	}
	return config, nil
}

func resolveSecretKey() (string, error) {
	secret := strings.TrimSpace(os.Getenv("SECRET_KEY"))
	if secret == "" {
		return "", errors.New("SECRET_KEY is required")
	}
	if _, insecure := insecureSecretKeys[strings.ToLower(secret)]; insecure {
		return "", errors.New("SECRET_KEY uses a placeholder value")
	}
	if len(secret) < minSecretKeyLength {
		return "", fmt.Errorf("SECRET_KEY must be at least %d characters", minSecretKeyLength)
	}
	return secret, nil
}

func resolvePort() (string, error) {
	raw := strings.TrimSpace(getEnv("PORT", "8080"))
	port, err := strconv.Atoi(raw)
	if err != nil {
		return "", fmt.Errorf("PORT must be a number: %w", err)
	}
	if port < 1 || port > 65535 {
		return "", fmt.Errorf("PORT %d is out of range", port)
	}
	return strconv.Itoa(port), nil
}

func resolveBool(key string, fallback bool) (bool, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		return false, fmt.Errorf("%s must be a boolean: %w", key, err)
	}
	return value, nil
}

func resolveDuration(key string, fallback time.Duration) (time.Duration, error) {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback, nil
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be a duration: %w", key, err)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%s must be positive", key)
	}
	return value, nil
}

// resolveCORSOrigins reads a comma separated origin list. Wildcards are
// rejected because session cookies require credentialed requests.
func resolveCORSOrigins() ([]string, error) {
	origins := make([]string, 0)
	for _, origin := range strings.Split(os.Getenv("CORS_ALLOWED_ORIGINS"), ",") {
		origin = strings.TrimRight(strings.TrimSpace(origin), "/")
		if origin == "" {
			continue
		}
		if origin == "*" {
			return nil, errors.New("CORS_ALLOWED_ORIGINS cannot contain *")
		}
		origins = append(origins, origin)
	}
	return origins, nil
}

func resolveLogLevel() (slog.Level, error) {
	var level slog.Level
	raw := strings.TrimSpace(getEnv("LOG_LEVEL", "info"))
	if err := level.UnmarshalText([]byte(raw)); err != nil {
		return slog.LevelInfo, fmt.Errorf("LOG_LEVEL: %w", err)
	}
	return level, nil
}

func databaseOptionsFromEnv() db.OpenOptions {
	return db.OpenOptions{
		Driver:      getEnv("DB_DRIVER", db.DriverSQLite),
		SQLitePath:  getEnv("DB_PATH", "data/cvagent.db"),
		PostgresDSN: os.Getenv("DATABASE_URL"),
	}
}

func mustLoadLocation(name string) *time.Location {
	location, err := time.LoadLocation(name)
	if err != nil {
		slog.Warn("invalid TZ, falling back to UTC", "tz", name)
		return time.UTC
	}
	return location
}

func getEnv(key string, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}
