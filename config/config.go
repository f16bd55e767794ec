/*
Package config loads service configuration from .env and the environment.

The loaded Config is constructed once in cmd/server and passed down
explicitly - nothing in this repo reads configuration ambiently.
*/
package config

import (
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	Uploads   UploadsConfig
	Admin     AdminConfig
	ImageHost ImageHostConfig
	CORS      CORSConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string
	TimeoutRead  time.Duration
	TimeoutWrite time.Duration
	TimeoutIdle  time.Duration
}

// DatabaseConfig holds the SQLite database location.
type DatabaseConfig struct {
	Path string
}

// UploadsConfig holds the local photo storage root.
type UploadsConfig struct {
	Dir string
}

// AdminConfig holds the Basic-auth credentials for admin endpoints.
type AdminConfig struct {
	Username string
	Password string
}

// ImageHostConfig holds the optional third-party image host. An empty URL
// disables the remote upload path.
type ImageHostConfig struct {
	URL    string
	APIKey string
}

// CORSConfig holds the allowed browser origins.
type CORSConfig struct {
	Origins []string
}

// Load reads .env (if present) and the environment into a Config.
func Load() *Config {
	// Missing .env is fine; real deployments set the environment directly.
	_ = godotenv.Load()

	return &Config{
		Server: ServerConfig{
			Port:         getEnv("PORT", "8080"),
			TimeoutRead:  15 * time.Second,
			TimeoutWrite: 15 * time.Second,
			TimeoutIdle:  60 * time.Second,
		},
		Database: DatabaseConfig{
			Path: getEnv("DB_PATH", "solapur_traffic.db"),
		},
		Uploads: UploadsConfig{
			Dir: getEnv("UPLOAD_DIR", "uploads"),
		},
		Admin: AdminConfig{
			Username: getEnv("ADMIN_USERNAME", "smc_admin"),
			Password: getEnv("ADMIN_PASSWORD", "change_me"),
		},
		ImageHost: ImageHostConfig{
			URL:    getEnv("IMAGE_HOST_URL", ""),
			APIKey: getEnv("IMAGE_HOST_API_KEY", ""),
		},
		CORS: CORSConfig{
			Origins: splitList(getEnv("CORS_ORIGINS",
				"http://localhost:8080,http://localhost:5173")),
		},
	}
}

// getEnv returns the environment value or a fallback.
func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
