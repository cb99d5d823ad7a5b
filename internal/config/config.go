package config

import (
	"os"
)

// Config carries everything the server reads from the environment.
// Local-dev fallbacks keep `go run ./cmd/server` working without a .env file.
type Config struct {
	Port          string
	SiteURL       string
	DatabaseURL   string
	SessionSecret string

	// Answer generation (OpenAI-compatible chat completions)
	OpenAIAPIKey  string
	OpenAIBaseURL string
	OpenAIModel   string

	// Google OAuth
	GoogleClientID     string
	GoogleClientSecret string
}

func Load() Config {
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	siteURL := os.Getenv("SITE_URL")
	if siteURL == "" {
		siteURL = "http://localhost:" + port
	}

	dsn := os.Getenv("DATABASE_URL")
	if dsn == "" {
		// Fallback for local dev if not set
		dsn = "host=localhost user=postgres password=postgres dbname=otazkomat port=5432 sslmode=disable"
	}

	secret := os.Getenv("SESSION_SECRET")
	if secret == "" {
		secret = "secret_key_change_me"
	}

	return Config{
		Port:          port,
		SiteURL:       siteURL,
		DatabaseURL:   dsn,
		SessionSecret: secret,

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIBaseURL: os.Getenv("OPENAI_BASE_URL"),
		OpenAIModel:   os.Getenv("OPENAI_MODEL"),

		GoogleClientID:     os.Getenv("GOOGLE_CLIENT_ID"),
		GoogleClientSecret: os.Getenv("GOOGLE_CLIENT_SECRET"),
	}
}
