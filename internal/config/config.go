package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const (
	defaultDatabaseURL = "sqlite:fintrack.db"
	defaultModel       = "gemini-2.5-flash"
	defaultOpenAIModel = "gpt-4o-mini"
	defaultHTTPAddr    = ":8080"
)

type Config struct {
	DatabaseURL string

	UserID   string
	UserName string

	GeminiAPIKey string
	AIModels     []string
	OpenAIAPIKey string
	OpenAIModel  string

	BrapiToken string

	DiscordBotToken  string
	DiscordChannelId string
	HTTPAddr         string

	LogLevel       string
	LogDevelopment bool
}

// Load reads the configuration from the environment. Only the user identity is
// mandatory; everything else has a default or switches a feature off.
func Load() (*Config, error) {
	userID := os.Getenv("FINTRACK_USER_ID")
	if userID == "" {
		return nil, fmt.Errorf("FINTRACK_USER_ID is not set")
	}

	cfg := &Config{
		DatabaseURL:      getenv("DATABASE_URL", defaultDatabaseURL),
		UserID:           userID,
		UserName:         getenv("FINTRACK_USER_NAME", userID),
		GeminiAPIKey:     strings.TrimSpace(os.Getenv("GEMINI_API_KEY")),
		AIModels:         splitList(getenv("AI_MODELS", defaultModel)),
		OpenAIAPIKey:     strings.TrimSpace(os.Getenv("OPENAI_API_KEY")),
		OpenAIModel:      getenv("OPENAI_MODEL", defaultOpenAIModel),
		BrapiToken:       getenv("BRAPI_TOKEN", "public"),
		DiscordBotToken:  os.Getenv("DISCORD_BOT_TOKEN"),
		DiscordChannelId: os.Getenv("DISCORD_CHANNEL_ID"),
		HTTPAddr:         getenv("HTTP_ADDR", defaultHTTPAddr),
		LogLevel:         getenv("LOG_LEVEL", "info"),
	}

	if raw := os.Getenv("LOG_DEVELOPMENT"); raw != "" {
		dev, err := strconv.ParseBool(raw)
		if err != nil {
			return nil, fmt.Errorf("LOG_DEVELOPMENT: %w", err)
		}
		cfg.LogDevelopment = dev
	}

	return cfg, nil
}

// RequireDiscord checks the settings the chat bot cannot run without.
func (c *Config) RequireDiscord() error {
	if c.DiscordBotToken == "" {
		return fmt.Errorf("Bot token is not set")
	}
	if c.DiscordChannelId == "" {
		return fmt.Errorf("Channel ID is not set")
	}
	return nil
}

// Offline reports whether no generative-model credential is configured.
func (c *Config) Offline() bool {
	return c.GeminiAPIKey == "" && c.OpenAIAPIKey == ""
}

func getenv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
