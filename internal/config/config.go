package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/pkg/errors"
)

// Config holds everything the portal reads from the environment.
type Config struct {
	ListenAddr  string
	DatabaseURL string

	GitHubClientID     string
	GitHubClientSecret string
	GitHubCallbackURL  string

	// Organization is the GitHub organization that owns accepted
	// project forks and the review repository.
	Organization string

	// AdminUsername is the account that opens review issues and whose
	// ACCEPTED!/REJECTED! comments decide project reviews.
	AdminUsername    string
	AdminAccessToken string

	SessionSecret string
}

// Load reads configuration from the environment, picking up a local
// .env file first when one exists.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:         getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL:        os.Getenv("DATABASE_URL"),
		GitHubClientID:     os.Getenv("GITHUB_CLIENT_ID"),
		GitHubClientSecret: os.Getenv("GITHUB_CLIENT_SECRET"),
		GitHubCallbackURL:  getEnv("GITHUB_CALLBACK_URL", "http://localhost:8080/auth/callback"),
		Organization:       getEnv("GITHUB_ORGANIZATION", "ataleek"),
		AdminUsername:      os.Getenv("ADMIN_USERNAME"),
		AdminAccessToken:   os.Getenv("ADMIN_ACCESS_TOKEN"),
		SessionSecret:      os.Getenv("SESSION_SECRET"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL is not set")
	}
	if cfg.AdminUsername == "" {
		return nil, errors.New("ADMIN_USERNAME is not set")
	}
	if cfg.SessionSecret == "" {
		return nil, errors.New("SESSION_SECRET is not set")
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
