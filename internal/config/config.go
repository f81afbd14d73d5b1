package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	App struct {
		ENV string
	}

	Log struct {
		Level     string
		Format    string
		Component string
		Source    bool
	}

	DB struct {
		Driver string // "sqlite" or "mysql"
		DSN    string
	}

	Redis struct {
		Addr     string
		Password string
		DB       int
	}

	Auth struct {
		JWTSecret  string
		SessionTTL time.Duration
	}
}

func New() *Config {
	cfg := &Config{}

	cfg.App.ENV = getEnvDefault("APP_ENV", "development")

	// Logger
	cfg.Log.Level = getEnvDefault("LOG_LEVEL", "info")
	cfg.Log.Format = getEnvDefault("LOG_FORMAT", "text")
	cfg.Log.Component = getEnvDefault("LOG_COMPONENT", "cypress_client")
	cfg.Log.Source = isTruthy(os.Getenv("LOG_SOURCE"))

	// Database. SQLite file by default; MYSQL_DSN switches to MySQL.
	if dsn := os.Getenv("MYSQL_DSN"); dsn != "" {
		cfg.DB.Driver = "mysql"
		cfg.DB.DSN = dsn
	} else {
		cfg.DB.Driver = getEnvDefault("DB_DRIVER", "sqlite")
		cfg.DB.DSN = getEnvDefault("DB_DSN", "cypress.db")
	}

	// Redis
	cfg.Redis.Addr = getEnvDefault("REDIS_ADDR", "localhost:6379")
	cfg.Redis.Password = getEnvDefault("REDIS_PASSWORD", "")
	if dbStr := getEnvDefault("REDIS_DB", "0"); dbStr != "" {
		if dbInt, err := strconv.Atoi(dbStr); err == nil {
			cfg.Redis.DB = dbInt
		}
	}

	// Auth
	cfg.Auth.JWTSecret = getEnvDefault("AUTH_JWT_SECRET", "cypress-dev-secret")
	cfg.Auth.SessionTTL = 24 * time.Hour
	if ttlStr := os.Getenv("AUTH_SESSION_TTL"); ttlStr != "" {
		if d, err := time.ParseDuration(ttlStr); err == nil {
			cfg.Auth.SessionTTL = d
		}
	}

	return cfg
}

func getEnvDefault(k, def string) string {
	if v := strings.TrimSpace(os.Getenv(k)); v != "" {
		return v
	}
	return def
}

func isTruthy(v string) bool {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "1", "true", "yes", "y", "on":
		return true
	}
	return false
}
