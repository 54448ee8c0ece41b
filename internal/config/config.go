package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	BackendMySQL  = "mysql"
	BackendMemory = "memory"
)

type Config struct {
	Env      string
	LogLevel string
	Server   ServerConfig
	Database DatabaseConfig
	Mongo    MongoConfig
	Auth     AuthConfig
	Uploads  UploadConfig
	Gemini   GeminiConfig
}

type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigin   string
}

type DatabaseConfig struct {
	Backend         string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	Migrate         bool
	SeedDemoUsers   bool
}

type MongoConfig struct {
	URI      string
	Database string
}

type AuthConfig struct {
	JWTSecret    string
	SessionTTL   time.Duration
	CookieName   string
	CookieSecure bool
}

type UploadConfig struct {
	Dir     string
	BaseURL string
}

type GeminiConfig struct {
	APIKey string
	Model  string
}

// IsDevelopment reports whether the process runs with development defaults.
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// Load reads .env (if present) and the process environment.
func Load() (*Config, error) {
	godotenv.Load()

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		LogLevel: getEnv("LOG_LEVEL", "info"),
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getEnvDuration("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getEnvDuration("SERVER_WRITE_TIMEOUT", 10*time.Second),
			CORSOrigin:   getEnv("CORS_ORIGIN", "http://localhost:5173"),
		},
		Database: DatabaseConfig{
			Backend:         strings.ToLower(getEnv("STORAGE_BACKEND", BackendMySQL)),
			DSN:             getEnv("DB_DSN_PRIMARY", "root:root@tcp(127.0.0.1:3306)/storefront?parseTime=true"),
			MaxOpenConns:    getEnvInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns:    getEnvInt("DATABASE_MAX_IDLE_CONNS", 25),
			ConnMaxLifetime: getEnvDuration("DATABASE_CONN_MAX_LIFETIME", 5*time.Minute),
			Migrate:         getEnvBool("DB_MIGRATE", false),
			SeedDemoUsers:   getEnvBool("SEED_DEMO_USERS", false),
		},
		Mongo: MongoConfig{
			URI:      getEnv("MONGO_URI", ""),
			Database: getEnv("MONGO_DATABASE", "storefront"),
		},
		Auth: AuthConfig{
			JWTSecret:    getEnv("JWT_SECRET", ""),
			SessionTTL:   getEnvDuration("SESSION_TTL", 72*time.Hour),
			CookieName:   getEnv("SESSION_COOKIE", "session"),
			CookieSecure: getEnvBool("COOKIE_SECURE", false),
		},
		Uploads: UploadConfig{
			Dir:     getEnv("UPLOAD_DIR", "./uploads"),
			BaseURL: getEnv("BASE_URL", "http://localhost:8080"),
		},
		Gemini: GeminiConfig{
			APIKey: getEnv("GEMINI_API_KEY", ""),
			Model:  getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Database.Backend {
	case BackendMySQL, BackendMemory:
	default:
		return fmt.Errorf("config: unknown STORAGE_BACKEND %q", c.Database.Backend)
	}

	if c.Auth.JWTSecret == "" {
		if !c.IsDevelopment() {
			return errors.New("config: JWT_SECRET must be set outside development")
		}
		c.Auth.JWTSecret = "development-only-secret"
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		fmt.Printf("Warning: invalid duration for %s, using default\n", key)
	}
	return defaultValue
}
