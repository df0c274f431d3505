package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config holds the whole application configuration, populated from
// environment variables.
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	JWT       JWTConfig
	MinIO     MinIOConfig
	Vault     VaultConfig
	AI        AIConfig
	RateLimit RateLimitConfig
	Export    ExportConfig
	Worker    WorkerConfig
}

type AppConfig struct {
	Name        string
	Environment string // development, staging, production
	Port        string
	Version     string
}

type DatabaseConfig struct {
	Host           string
	Port           int
	User           string
	Password       string
	Database       string
	SSLMode        string
	MaxConns       int
	MinConns       int
	MigrationsPath string
}

type RedisConfig struct {
	Host     string
	Password string
	DB       int
}

type JWTConfig struct {
	Secret string
}

type MinIOConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

// VaultConfig configures the credential vault. MasterSecret is the only
// input to key derivation; rotating it invalidates every stored ciphertext.
type VaultConfig struct {
	MasterSecret string
	CacheTTL     time.Duration
}

// AIConfig carries the system-default provider keys used when a workspace
// has not configured its own, plus the per-call timeout for provider HTTP.
type AIConfig struct {
	OpenAIKey    string
	AnthropicKey string
	GeminiKey    string
	CallTimeout  time.Duration
}

// RateLimitConfig tunes the fixed-window limiter per bucket.
type RateLimitConfig struct {
	GenerationMax    int
	GenerationWindow time.Duration
	ImageMax         int
	ImageWindow      time.Duration
	ResearchMax      int
	ResearchWindow   time.Duration
	ExportMax        int
	ExportWindow     time.Duration
}

// ExportConfig tunes the campaign bundle projection cache.
type ExportConfig struct {
	CacheTTL time.Duration
}

type WorkerConfig struct {
	Concurrency int
}

// Load reads configuration from environment variables with development
// defaults, then validates it.
func Load() (*Config, error) {
	cfg := &Config{
		App: AppConfig{
			Name:        getEnv("APP_NAME", "ContentPilot API"),
			Environment: getEnv("APP_ENV", "development"),
			Port:        getEnv("APP_PORT", "8080"),
			Version:     getEnv("APP_VERSION", "1.0.0"),
		},
		Database: DatabaseConfig{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getEnvInt("DB_PORT", 5432),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", ""),
			Database:       getEnv("DB_NAME", "contentpilot"),
			SSLMode:        getEnv("DB_SSLMODE", "disable"),
			MaxConns:       getEnvInt("DB_MAX_CONNS", 25),
			MinConns:       getEnvInt("DB_MIN_CONNS", 5),
			MigrationsPath: getEnv("DB_MIGRATIONS_PATH", "migrations"),
		},
		Redis: RedisConfig{
			Host:     getEnv("REDIS_HOST", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "your-secret-key-change-in-production"),
		},
		MinIO: MinIOConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
			AccessKey: getEnv("MINIO_ACCESS_KEY", "minioadmin"),
			SecretKey: getEnv("MINIO_SECRET_KEY", "minioadmin"),
			Bucket:    getEnv("MINIO_BUCKET", "contentpilot"),
			UseSSL:    false,
		},
		Vault: VaultConfig{
			MasterSecret: getEnv("VAULT_MASTER_SECRET", "dev-only-vault-secret"),
			CacheTTL:     getEnvDuration("VAULT_CACHE_TTL", 30*time.Second),
		},
		AI: AIConfig{
			OpenAIKey:    getEnv("AI_OPENAI_KEY", ""),
			AnthropicKey: getEnv("AI_ANTHROPIC_KEY", ""),
			GeminiKey:    getEnv("AI_GEMINI_KEY", ""),
			CallTimeout:  getEnvDuration("AI_CALL_TIMEOUT", 90*time.Second),
		},
		RateLimit: RateLimitConfig{
			GenerationMax:    getEnvInt("RL_GENERATION_MAX", 20),
			GenerationWindow: getEnvDuration("RL_GENERATION_WINDOW", time.Minute),
			ImageMax:         getEnvInt("RL_IMAGE_MAX", 10),
			ImageWindow:      getEnvDuration("RL_IMAGE_WINDOW", time.Minute),
			ResearchMax:      getEnvInt("RL_RESEARCH_MAX", 10),
			ResearchWindow:   getEnvDuration("RL_RESEARCH_WINDOW", time.Minute),
			ExportMax:        getEnvInt("RL_EXPORT_MAX", 5),
			ExportWindow:     getEnvDuration("RL_EXPORT_WINDOW", time.Minute),
		},
		Export: ExportConfig{
			CacheTTL: getEnvDuration("EXPORT_CACHE_TTL", 5*time.Minute),
		},
		Worker: WorkerConfig{
			Concurrency: getEnvInt("WORKER_CONCURRENCY", 20),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// Validate refuses to boot production with development-only secrets.
func (c *Config) Validate() error {
	if c.App.Environment == "production" {
		if c.JWT.Secret == "your-secret-key-change-in-production" {
			return fmt.Errorf("JWT_SECRET must be set in production")
		}
		if c.Vault.MasterSecret == "dev-only-vault-secret" {
			return fmt.Errorf("VAULT_MASTER_SECRET must be set in production")
		}
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD must be set in production")
		}
	}

	return nil
}

// Helper functions
func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
