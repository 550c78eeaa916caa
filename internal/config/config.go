// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the settings for all four binaries. Each main validates
// the subset it actually needs before starting.
type Config struct {
	Env      string
	HTTPAddr string

	// Trust material
	JWTSecret      string
	AccessTokenTTL time.Duration
	InternalToken  string

	// Document store
	MongoURI      string
	MongoDatabase string

	// Async events
	RedisURL string

	// Object storage
	MinioEndpoint     string
	MinioAccessKey    string
	MinioSecretKey    string
	MinioUseSSL       bool
	MediaBucket       string
	AvatarBucket      string

	// Peer service base URLs
	UserServiceURL    string
	ProductServiceURL string
	MediaServiceURL   string

	// Gateway CORS
	CORSOrigins  []string
	CORSAllowAll bool

	// Root admin bootstrap (user service)
	AdminName     string
	AdminEmail    string
	AdminPassword string
}

// Load reads configuration from the environment, honouring a local .env file.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:4200"))

	cfg := &Config{
		Env:      getEnv("APP_ENV", "development"),
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),

		JWTSecret:      getEnv("JWT_SECRET", ""),
		AccessTokenTTL: mustDuration(getEnv("JWT_ACCESS_TTL", "10h")),
		InternalToken:  getEnv("INTERNAL_TOKEN", ""),

		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDatabase: getEnv("MONGO_DATABASE", "marketbay"),

		RedisURL: getEnv("REDIS_URL", "redis://localhost:6379/0"),

		MinioEndpoint:  getEnv("MINIO_ENDPOINT", "localhost:9000"),
		MinioAccessKey: getEnv("MINIO_ACCESS_KEY", ""),
		MinioSecretKey: getEnv("MINIO_SECRET_KEY", ""),
		MinioUseSSL:    strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MediaBucket:    getEnv("MINIO_BUCKET_MEDIA", "product-media"),
		AvatarBucket:   getEnv("MINIO_BUCKET_AVATARS", "user-avatars"),

		UserServiceURL:    getEnv("USER_SERVICE_URL", "http://localhost:8081"),
		ProductServiceURL: getEnv("PRODUCT_SERVICE_URL", "http://localhost:8082"),
		MediaServiceURL:   getEnv("MEDIA_SERVICE_URL", "http://localhost:8083"),

		CORSOrigins:  corsOrigins,
		CORSAllowAll: containsWildcard(corsOrigins),

		AdminName:     getEnv("ADMIN_NAME", "root"),
		AdminEmail:    getEnv("ADMIN_EMAIL", ""),
		AdminPassword: getEnv("ADMIN_PASSWORD", ""),
	}

	if cfg.AccessTokenTTL <= 0 {
		return nil, fmt.Errorf("JWT_ACCESS_TTL must be a positive duration")
	}

	return cfg, nil
}

// ValidateGateway checks the settings the gateway cannot run without.
func (c *Config) ValidateGateway() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	return nil
}

// ValidateUserService checks the settings the user service cannot run without.
func (c *Config) ValidateUserService() error {
	if c.JWTSecret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.InternalToken == "" {
		return fmt.Errorf("INTERNAL_TOKEN is required")
	}
	return nil
}

// ValidateDownstream checks the settings product and media services cannot
// run without.
func (c *Config) ValidateDownstream() error {
	if c.InternalToken == "" {
		return fmt.Errorf("INTERNAL_TOKEN is required")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
