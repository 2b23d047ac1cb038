// Package config loads runtime settings from the environment.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fjod/matule/internal/network"
	"github.com/fjod/matule/internal/repository"
	"github.com/joho/godotenv"
)

// StorageKind selects the key-value backend.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageSQLite StorageKind = "sqlite"
	StorageRedis  StorageKind = "redis"
)

const defaultFilesURL = "https://api.matule.ru/api/files/"

type Config struct {
	BaseURL              string
	FilesURL             string
	Timeout              time.Duration
	AuthMode             repository.AuthMode
	Storage              StorageKind
	SQLitePath           string
	RedisAddr            string
	RedisPassword        string
	RedisDB              int
	LogLevel             string
	LogFormat            string
	NotificationsEnabled bool

	// Mock backend
	HTTPPort        string
	JWTSecret       string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
}

// Load reads the environment. Unset variables take their defaults; values
// that are set but malformed are reported.
func Load() (*Config, error) {
	var errs []string
	fail := func(key string, err error) {
		errs = append(errs, fmt.Sprintf("%s: %v", key, err))
	}

	cfg := &Config{
		BaseURL:       getEnv("MATULE_BASE_URL", network.DefaultBaseURL),
		FilesURL:      getEnv("MATULE_FILES_URL", defaultFilesURL),
		SQLitePath:    getEnv("MATULE_SQLITE_PATH", "matule.db"),
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		LogFormat:     getEnv("LOG_FORMAT", "text"),
		HTTPPort:      getEnv("HTTP_PORT", "8090"),
		JWTSecret:     getEnv("JWT_SECRET", "matule-dev-secret"),
	}

	var err error
	if cfg.Timeout, err = getDuration("MATULE_TIMEOUT", network.DefaultTimeout); err != nil {
		fail("MATULE_TIMEOUT", err)
	}
	if cfg.RequestTimeout, err = getDuration("REQUEST_TIMEOUT", 30*time.Second); err != nil {
		fail("REQUEST_TIMEOUT", err)
	}
	if cfg.ShutdownTimeout, err = getDuration("SHUTDOWN_TIMEOUT", 10*time.Second); err != nil {
		fail("SHUTDOWN_TIMEOUT", err)
	}
	if cfg.RedisDB, err = getInt("REDIS_DB", 0); err != nil {
		fail("REDIS_DB", err)
	}
	if cfg.NotificationsEnabled, err = getBool("NOTIFICATIONS_ENABLED", true); err != nil {
		fail("NOTIFICATIONS_ENABLED", err)
	}
	if cfg.AuthMode, err = repository.ParseAuthMode(getEnv("MATULE_AUTH_MODE", string(repository.AuthModeNetwork))); err != nil {
		fail("MATULE_AUTH_MODE", err)
	}
	if cfg.Storage, err = parseStorage(getEnv("MATULE_STORAGE", string(StorageMemory))); err != nil {
		fail("MATULE_STORAGE", err)
	}

	if len(errs) > 0 {
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

// LoadDotEnv copies variables from the env file at path into the process
// environment. Variables already set win. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// EnvFile is the env file the mains read, MATULE_ENV_FILE or ".env".
func EnvFile() string {
	return getEnv("MATULE_ENV_FILE", ".env")
}

func parseStorage(s string) (StorageKind, error) {
	switch kind := StorageKind(strings.ToLower(strings.TrimSpace(s))); kind {
	case StorageMemory, StorageSQLite, StorageRedis:
		return kind, nil
	default:
		return "", fmt.Errorf("unknown storage %q", s)
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.Atoi(value)
}

func getBool(key string, defaultValue bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	return strconv.ParseBool(value)
}

// getDuration accepts Go durations ("15s") or plain seconds ("15").
func getDuration(key string, defaultValue time.Duration) (time.Duration, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	if secs, err := strconv.Atoi(value); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(value)
}
