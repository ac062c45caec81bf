package config

import (
	"errors"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	LogLevel    string
	FrontendURL string
	// Persistence: "postgres" or "memory" (seeded demo data, dev only)
	StorageDriver string
	DBUrl         string
	RunMigrations bool
	// Auth
	JWTSecret string
	JWTTTL    time.Duration
	// Generated documents: "local" or "s3"
	DocumentStore string
	DocumentDir   string
	S3Bucket      string
	S3Region      string
	S3Endpoint    string
	S3AccessKey   string
	S3SecretKey   string
	S3Prefix      string
	// SMTP Configuration
	SMTPHost      string
	SMTPPort      string
	SMTPUsername  string
	SMTPPassword  string
	SMTPFromEmail string
	// Redis Configuration
	RedisURL      string
	RedisPassword string
	// Rate Limiting Configuration
	RateLimitWindowSeconds     int
	RateLimitGlobalThreshold   int
	RateLimitMutationThreshold int
}

func LoadConfig() (*Config, error) {
	// Load .env file if present; real environment wins
	_ = godotenv.Load()

	cfg := &Config{
		Port:          getEnv("PORT", "8080"),
		LogLevel:      getEnv("LOG_LEVEL", "info"),
		FrontendURL:   strings.TrimRight(getEnv("FRONTEND_URL", "http://localhost:3000"), "/"),
		StorageDriver: strings.ToLower(getEnv("STORAGE_DRIVER", "postgres")),
		DBUrl:         getEnv("DATABASE_URL", ""),
		RunMigrations: getEnvBool("RUN_MIGRATIONS", false),
		JWTSecret:     getEnv("JWT_SECRET", ""),
		JWTTTL:        time.Duration(getEnvInt("JWT_TTL_MINUTES", 60)) * time.Minute,
		DocumentStore: strings.ToLower(getEnv("DOCUMENT_STORE", "local")),
		DocumentDir:   getEnv("DOCUMENT_DIR", "./data/documents"),
		S3Bucket:      getEnv("S3_BUCKET", ""),
		S3Region:      getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:    getEnv("S3_ENDPOINT", ""),
		S3AccessKey:   getEnv("S3_ACCESS_KEY_ID", ""),
		S3SecretKey:   getEnv("S3_SECRET_ACCESS_KEY", ""),
		S3Prefix:      getEnv("S3_PREFIX", "documents/"),
		// SMTP Configuration
		SMTPHost:      getEnv("SMTP_HOST", ""),
		SMTPPort:      getEnv("SMTP_PORT", "587"),
		SMTPUsername:  getEnv("SMTP_USERNAME", ""),
		SMTPPassword:  getEnv("SMTP_PASSWORD", ""),
		SMTPFromEmail: getEnv("SMTP_FROM_EMAIL", "noreply@leandrose.local"),
		// Redis Configuration
		RedisURL:      getEnv("REDIS_URL", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		// Rate Limiting Configuration (with sensible defaults)
		RateLimitWindowSeconds:     getEnvInt("RATE_LIMIT_WINDOW_SECONDS", 60),
		RateLimitGlobalThreshold:   getEnvInt("RATE_LIMIT_GLOBAL_THRESHOLD", 100),
		RateLimitMutationThreshold: getEnvInt("RATE_LIMIT_MUTATION_THRESHOLD", 30),
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	if cfg.RedisURL == "" {
		log.Println("WARNING: REDIS_URL not configured. Rate limiting will use in-memory fallback.")
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.JWTSecret == "" {
		return errors.New("config: JWT_SECRET is required")
	}
	switch c.StorageDriver {
	case "memory":
	case "postgres":
		if c.DBUrl == "" {
			return errors.New("config: DATABASE_URL is required with STORAGE_DRIVER=postgres")
		}
	default:
		return errors.New("config: STORAGE_DRIVER must be postgres or memory")
	}
	switch c.DocumentStore {
	case "local":
	case "s3":
		if c.S3Bucket == "" {
			return errors.New("config: S3_BUCKET is required with DOCUMENT_STORE=s3")
		}
	default:
		return errors.New("config: DOCUMENT_STORE must be local or s3")
	}
	if c.RateLimitWindowSeconds <= 0 || c.RateLimitGlobalThreshold <= 0 || c.RateLimitMutationThreshold <= 0 {
		return errors.New("config: rate limit window and thresholds must be positive")
	}
	return nil
}

// RateLimitWindow is the rate limit window as a duration.
func (c *Config) RateLimitWindow() time.Duration {
	return time.Duration(c.RateLimitWindowSeconds) * time.Second
}

func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// getEnvInt returns an integer environment variable or fallback if not set/invalid
func getEnvInt(key string, fallback int) int {
	if value, exists := os.LookupEnv(key); exists {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return fallback
}

// getEnvBool returns a boolean environment variable or fallback if not set/invalid
func getEnvBool(key string, fallback bool) bool {
	if value, exists := os.LookupEnv(key); exists {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return fallback
}
