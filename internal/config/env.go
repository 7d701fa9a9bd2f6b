package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

const (
	// MinMaxFileSize is the smallest accepted MAX_FILE_SIZE (1 MiB).
	MinMaxFileSize = 1 << 20
	// MinChunkSizeSetting is the smallest accepted CHUNK_SIZE.
	MinChunkSizeSetting = 100
)

type Config struct {
	DatabaseURL  string
	DatabaseName string
	SslCertPath  string

	AwsAccessKey string
	AwsSecretKey string
	AwsRegion    string
	BucketName   string
	S3Endpoint   string

	AIAPIKey       string
	EmbedModel     string
	EmbedBatchSize int
	IngestWorkers  int

	Port           string
	JWTSecret      string
	AllowedOrigins []string
	MaxFileSize    int64

	ChunkSize    int
	ChunkOverlap int
	MinChunkSize int

	LogLevel  string
	LogFormat string
}

// LoadConfig loads the environment variables (and a .env file when present) and returns config.
func LoadConfig() *Config {
	_ = godotenv.Load()

	return &Config{
		DatabaseURL:  getEnv("DATABASE_URL", ""),
		DatabaseName: getEnv("DATABASE_NAME", "learning_platform"),
		SslCertPath:  getEnv("SSL_CERT_PATH", ""),

		AwsAccessKey: getEnv("AWS_ACCESS_KEY", ""),
		AwsSecretKey: getEnv("AWS_SECRET_KEY", ""),
		AwsRegion:    getEnv("AWS_REGION", "us-east-2"),
		BucketName:   getEnv("BUCKET_NAME", ""),
		S3Endpoint:   getEnv("S3_ENDPOINT", ""),

		AIAPIKey:       getEnv("GEMINI_API_KEY", ""),
		EmbedModel:     getEnv("EMBED_MODEL", "text-embedding-004"),
		EmbedBatchSize: getEnvInt("EMBED_BATCH_SIZE", 16),
		IngestWorkers:  getEnvInt("INGEST_WORKERS", 2),

		Port:           getEnv("PORT", "8001"),
		JWTSecret:      getEnv("JWT_SECRET", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"http://localhost:3000", "http://localhost:5173"}),
		MaxFileSize:    getEnvInt64("MAX_FILE_SIZE", 50<<20),

		ChunkSize:    getEnvInt("CHUNK_SIZE", 1000),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", 100),
		MinChunkSize: getEnvInt("MIN_CHUNK_SIZE", 100),

		LogLevel:  getEnv("LOG_LEVEL", "info"),
		LogFormat: getEnv("LOG_FORMAT", "text"),
	}
}

// Validate checks the settings every entry point relies on.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxFileSize < MinMaxFileSize {
		errs = append(errs, fmt.Errorf("MAX_FILE_SIZE must be at least %d bytes, got %d", MinMaxFileSize, c.MaxFileSize))
	}
	if c.ChunkSize < MinChunkSizeSetting {
		errs = append(errs, fmt.Errorf("CHUNK_SIZE must be at least %d, got %d", MinChunkSizeSetting, c.ChunkSize))
	}
	if c.ChunkOverlap <= 0 {
		errs = append(errs, fmt.Errorf("CHUNK_OVERLAP must be positive, got %d", c.ChunkOverlap))
	}
	if c.MinChunkSize <= 0 {
		errs = append(errs, fmt.Errorf("MIN_CHUNK_SIZE must be positive, got %d", c.MinChunkSize))
	}
	if c.EmbedBatchSize <= 0 {
		errs = append(errs, fmt.Errorf("EMBED_BATCH_SIZE must be positive, got %d", c.EmbedBatchSize))
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ValidateServer adds the checks only the HTTP service needs.
func (c *Config) ValidateServer() error {
	err := c.Validate()
	if c.DatabaseURL == "" {
		err = errors.Join(err, errors.New("DATABASE_URL not set"))
	}
	if c.IngestWorkers < 0 {
		err = errors.Join(err, fmt.Errorf("INGEST_WORKERS must not be negative, got %d", c.IngestWorkers))
	}
	return err
}

// Helper to read environment variables with a default fallback
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getEnvInt(key string, def int) int {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		slog.Warn("not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

func getEnvInt64(key string, def int64) int64 {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	n, err := strconv.ParseInt(v, 10, 64)
	if err != nil {
		slog.Warn("not an int, using default", "key", key, "value", v, "default", def)
		return def
	}
	return n
}

// getEnvList splits a comma separated value, dropping empty items.
func getEnvList(key string, def []string) []string {
	v := getEnv(key, "")
	if v == "" {
		return def
	}
	var out []string
	for _, item := range strings.Split(v, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
