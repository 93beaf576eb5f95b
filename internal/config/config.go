package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTPPort       string        `yaml:"http_port"`
	PostgresDSN    string        `yaml:"database_url"`
	JWTSecret      string        `yaml:"jwt_secret"`
	TokenTTL       time.Duration `yaml:"token_ttl"`
	RedisURL       string        `yaml:"redis_url"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	DBMaxOpenConns int           `yaml:"db_max_open_conns"`
	DBMaxIdleConns int           `yaml:"db_max_idle_conns"`
	DBConnMaxIdle  time.Duration `yaml:"db_conn_max_idle"`
	DBConnMaxLife  time.Duration `yaml:"db_conn_max_life"`
	RequestTimeout time.Duration `yaml:"request_timeout"`
	MaxResumeBytes int64         `yaml:"max_resume_bytes"`
	ApplyRateLimit int           `yaml:"apply_rate_limit"`
	Storage        StorageConfig `yaml:"storage"`
}

// StorageConfig selects the resume store. An empty Endpoint keeps resumes
// in process memory.
type StorageConfig struct {
	Endpoint  string `yaml:"endpoint"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
	Bucket    string `yaml:"bucket"`
	Region    string `yaml:"region"`
	UseSSL    bool   `yaml:"use_ssl"`
}

func defaults() *Config {
	return &Config{
		HTTPPort:       "8080",
		TokenTTL:       24 * time.Hour,
		LogLevel:       "info",
		LogFormat:      "json",
		DBMaxOpenConns: 25,
		DBMaxIdleConns: 10,
		DBConnMaxIdle:  5 * time.Minute,
		DBConnMaxLife:  30 * time.Minute,
		RequestTimeout: 10 * time.Second,
		MaxResumeBytes: 5 << 20,
		ApplyRateLimit: 20,
		Storage: StorageConfig{
			Bucket: "resumes",
			Region: "us-east-1",
		},
	}
}

// Load reads an optional .env file, an optional YAML file named by
// CONFIG_PATH, then environment variables, each overriding the previous.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	cfg := defaults()
	if path := strings.TrimSpace(os.Getenv("CONFIG_PATH")); path != "" {
		if err := loadFile(path, cfg); err != nil {
			return nil, err
		}
	}
	applyEnv(cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

func applyEnv(cfg *Config) {
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.PostgresDSN = getEnv("DATABASE_URL", cfg.PostgresDSN)
	cfg.JWTSecret = getEnv("JWT_SECRET", cfg.JWTSecret)
	cfg.TokenTTL = getDuration("TOKEN_TTL", cfg.TokenTTL)
	cfg.RedisURL = getEnv("REDIS_URL", cfg.RedisURL)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getEnv("LOG_FORMAT", cfg.LogFormat)
	cfg.DBMaxOpenConns = getInt("DB_MAX_OPEN_CONNS", cfg.DBMaxOpenConns)
	cfg.DBMaxIdleConns = getInt("DB_MAX_IDLE_CONNS", cfg.DBMaxIdleConns)
	cfg.DBConnMaxIdle = getDuration("DB_CONN_MAX_IDLE", cfg.DBConnMaxIdle)
	cfg.DBConnMaxLife = getDuration("DB_CONN_MAX_LIFE", cfg.DBConnMaxLife)
	cfg.RequestTimeout = getDuration("REQUEST_TIMEOUT", cfg.RequestTimeout)
	cfg.MaxResumeBytes = int64(getInt("MAX_RESUME_BYTES", int(cfg.MaxResumeBytes)))
	cfg.ApplyRateLimit = getInt("APPLY_RATE_LIMIT", cfg.ApplyRateLimit)
	cfg.Storage.Endpoint = getEnv("S3_ENDPOINT", cfg.Storage.Endpoint)
	cfg.Storage.AccessKey = getEnv("S3_ACCESS_KEY", cfg.Storage.AccessKey)
	cfg.Storage.SecretKey = getEnv("S3_SECRET_KEY", cfg.Storage.SecretKey)
	cfg.Storage.Bucket = getEnv("S3_BUCKET", cfg.Storage.Bucket)
	cfg.Storage.Region = getEnv("S3_REGION", cfg.Storage.Region)
	cfg.Storage.UseSSL = getBool("S3_USE_SSL", cfg.Storage.UseSSL)
}

func (c *Config) Validate() error {
	if c.PostgresDSN == "" {
		return errors.New("DATABASE_URL is required")
	}
	if c.JWTSecret == "" {
		return errors.New("JWT_SECRET is required")
	}
	if c.MaxResumeBytes <= 0 {
		return errors.New("MAX_RESUME_BYTES must be positive")
	}
	if c.Storage.Endpoint != "" && c.Storage.Bucket == "" {
		return errors.New("S3_BUCKET is required when S3_ENDPOINT is set")
	}
	return nil
}

// MemoryDSN runs the API without PostgreSQL; data lives until the process exits.
const MemoryDSN = "memory://"

func (c *Config) InMemory() bool {
	return strings.EqualFold(strings.TrimSpace(c.PostgresDSN), MemoryDSN)
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) time.Duration {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := time.ParseDuration(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getInt(key string, fallback int) int {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.Atoi(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	if value, ok := os.LookupEnv(key); ok {
		parsed, err := strconv.ParseBool(value)
		if err == nil {
			return parsed
		}
	}
	return fallback
}
