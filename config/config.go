package config

import (
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server Server
	Logger Logger
	SQLite SQLite
	Remote Remote
	Sync   Sync
}

type Server struct {
	AppEnv   string
	HTTPAddr string
}

type Logger struct {
	Level             string
	Encoding          string
	DisableCaller     bool
	DisableStacktrace bool
}

type SQLite struct {
	Path        string
	BusyTimeout time.Duration
}

type Remote struct {
	BaseURL string
	Token   string
	Timeout time.Duration
}

type Sync struct {
	Role           string
	Interval       time.Duration
	InitialBackoff time.Duration
	MaxBackoff     time.Duration
	MaxAttempts    int
	Retention      time.Duration
}

func LoadEnv() *Config {
	return &Config{
		Server: Server{
			AppEnv:   getEnv("APP_ENV", "dev"),
			HTTPAddr: getEnv("HTTP_ADDR", "127.0.0.1:7070"),
		},
		Logger: Logger{
			Level:             getEnv("LOGGER_LEVEL", "debug"),
			Encoding:          getEnv("LOGGER_ENCODING", "console"),
			DisableCaller:     getEnvBool("LOGGER_DISABLE_CALLER", false),
			DisableStacktrace: getEnvBool("LOGGER_DISABLE_STACKTRACE", true),
		},
		SQLite: SQLite{
			Path:        getEnv("SQLITE_PATH", "pharmacy.db"),
			BusyTimeout: getEnvDuration("SQLITE_BUSY_TIMEOUT", 5*time.Second),
		},
		Remote: Remote{
			BaseURL: getEnv("REMOTE_BASE_URL", "http://localhost:8080/api"),
			Token:   getEnv("REMOTE_TOKEN", ""),
			Timeout: getEnvDuration("REMOTE_TIMEOUT", 15*time.Second),
		},
		Sync: Sync{
			Role:     getEnv("SYNC_ROLE", "admin"),
			Interval:      getEnvDuration("SYNC_INTERVAL", 30*time.Second),
			InitialBackoff: getEnvDuration("SYNC_INITIAL_BACKOFF", 5*time.Second),
			MaxBackoff:     getEnvDuration("SYNC_MAX_BACKOFF", 5*time.Minute),
			MaxAttempts:    getEnvInt("SYNC_MAX_ATTEMPTS", 8),
			Retention:      getEnvDuration("SYNC_RETENTION", 24*time.Hour),
		},
	}
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return fallback
}
