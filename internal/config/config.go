package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Config holds all configuration for the application
type Config struct {
	// Server configuration
	Port  string
	Debug bool

	// Schedule configuration
	TimeZone string

	// Database configuration
	DatabaseURL string

	// Azure Storage configuration (scan snapshot archive)
	StorageAccount   string
	StorageContainer string

	// Notification configuration
	TeamsWebhookURL   string
	NotificationEmail string
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string

	// API Keys and credentials
	RedditClientID     string
	RedditClientSecret string
	YouTubeAPIKey      string

	// Trending search queries to rotate through
	Queries []string

	// Cultural topics analyzed on the daily schedule
	CulturalTopics []string

	// Alert criteria overrides
	MinViewCount  int64
	MinLikeRatio  float64
	MinWaveScore  float64
	MaxHoursOld   float64
	MinGrowthRate float64
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		Port:     getEnv("PORT", "8080"),
		Debug:    getBoolEnv("DEBUG", false),
		TimeZone: getEnv("TIMEZONE", "UTC"),

		DatabaseURL: getEnv("DATABASE_URL", ""),

		StorageAccount:   getEnv("AZURE_STORAGE_ACCOUNT", ""),
		StorageContainer: getEnv("AZURE_STORAGE_CONTAINER", "wavesight-scans"),

		TeamsWebhookURL:   getEnv("TEAMS_WEBHOOK_URL", ""),
		NotificationEmail: getEnv("NOTIFICATION_EMAIL", ""),
		SMTPHost:          getEnv("SMTP_HOST", ""),
		SMTPPort:          getIntEnv("SMTP_PORT", 587),
		SMTPUsername:      getEnv("SMTP_USERNAME", ""),
		SMTPPassword:      getEnv("SMTP_PASSWORD", ""),

		RedditClientID:     getEnv("REDDIT_CLIENT_ID", ""),
		RedditClientSecret: getEnv("REDDIT_CLIENT_SECRET", ""),
		YouTubeAPIKey:      getEnv("YOUTUBE_API_KEY", ""),

		Queries: getSliceEnv("SEARCH_QUERIES", nil),

		CulturalTopics: getSliceEnv("CULTURAL_TOPICS", []string{
			"AI tools",
			"streetwear",
			"crypto",
			"indie music",
			"internet culture",
		}),

		MinViewCount:  int64(getIntEnv("MIN_VIEW_COUNT", 100000)),
		MinLikeRatio:  getFloatEnv("MIN_LIKE_RATIO", 0.02),
		MinWaveScore:  getFloatEnv("MIN_WAVE_SCORE", 0.7),
		MaxHoursOld:   getFloatEnv("MAX_HOURS_OLD", 24),
		MinGrowthRate: getFloatEnv("MIN_GROWTH_RATE", 0.5),
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.NotificationEmail != "" {
		if c.SMTPHost == "" || c.SMTPUsername == "" || c.SMTPPassword == "" {
			return fmt.Errorf("SMTP configuration is required when NOTIFICATION_EMAIL is set")
		}
	}

	if c.MaxHoursOld <= 0 {
		return fmt.Errorf("MAX_HOURS_OLD must be positive")
	}

	return nil
}

// Helper functions for environment variable parsing
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseFloat(value, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
