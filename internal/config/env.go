package config

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
)

// Env holds values provided by the environment
type Env struct {
	GitHubUsername string
	GitHubRepo     string
	LogLevel       string
}

// LoadEnv reads the environment, loading a .env file first when one exists
func LoadEnv() Env {
	_ = godotenv.Load()

	return Env{
		GitHubUsername: envStr("GITHUB_USERNAME", "memoire-gemba-ia-supply-chain"),
		GitHubRepo:     envStr("GITHUB_REPO", "wikirace-events"),
		LogLevel:       envStr("LOG_LEVEL", "INFO"),
	}
}

// PublicURL is where the published catalog can be fetched
func (e Env) PublicURL() string {
	return fmt.Sprintf("https://raw.githubusercontent.com/%s/%s/main/events.json", e.GitHubUsername, e.GitHubRepo)
}

func envStr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
