// Package config handles application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
//
// Service credentials are read once here and injected into the stage
// constructors; business logic never reads the process environment.
type Config struct {
	// Server settings
	Port    int
	BaseURL string

	// Completion service (OpenAI-compatible chat completions)
	OpenAIKey     string
	OpenAIBaseURL string
	OpenAIModel   string

	// Content-extraction service (Firecrawl-compatible scrape API)
	FirecrawlKey     string
	FirecrawlBaseURL string

	// Pipeline settings
	MaxImages        int           // cap on analyzed listing images
	ExtractTimeout   time.Duration // criteria extraction call
	ScrapeTimeout    time.Duration // listing fetch call
	ImageTimeout     time.Duration // per-image vision call
	SynthesisTimeout time.Duration // report synthesis call

	// CORS
	CORSOrigins []string

	// Static front-end
	StaticDir string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:    getEnvInt("PORT", 8000),
		BaseURL: getEnv("BASE_URL", "http://localhost:8000"),

		OpenAIKey:     getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),

		FirecrawlKey:     getEnv("FIRECRAWL_API_KEY", ""),
		FirecrawlBaseURL: getEnv("FIRECRAWL_BASE_URL", "https://api.firecrawl.dev"),

		MaxImages:        getEnvInt("MAX_IMAGES", 3),
		ExtractTimeout:   getEnvDuration("EXTRACT_TIMEOUT", 30*time.Second),
		ScrapeTimeout:    getEnvDuration("SCRAPE_TIMEOUT", 30*time.Second),
		ImageTimeout:     getEnvDuration("IMAGE_TIMEOUT", 30*time.Second),
		SynthesisTimeout: getEnvDuration("SYNTHESIS_TIMEOUT", 60*time.Second),

		CORSOrigins: getEnvSlice("CORS_ORIGINS", []string{"*"}),
		StaticDir:   getEnv("STATIC_DIR", "static"),
	}

	if cfg.MaxImages < 1 {
		return nil, fmt.Errorf("MAX_IMAGES must be at least 1, got %d", cfg.MaxImages)
	}

	// Missing credentials are not fatal here: the stage that needs a
	// credential reports the configuration error at call time.
	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
