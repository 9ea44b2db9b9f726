package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadRequiresUser(t *testing.T) {
	t.Setenv("FINTRACK_USER_ID", "")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FINTRACK_USER_ID", "u1")
	t.Setenv("FINTRACK_USER_NAME", "")
	t.Setenv("DATABASE_URL", "")
	t.Setenv("AI_MODELS", "")
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("LOG_DEVELOPMENT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "u1", cfg.UserName)
	assert.Equal(t, defaultDatabaseURL, cfg.DatabaseURL)
	assert.Equal(t, []string{defaultModel}, cfg.AIModels)
	assert.True(t, cfg.Offline())
	assert.Error(t, cfg.RequireDiscord())
}

func TestLoadModelList(t *testing.T) {
	t.Setenv("FINTRACK_USER_ID", "u1")
	t.Setenv("AI_MODELS", "gemini-2.5-flash, gemini-2.0-flash ,,")
	t.Setenv("GEMINI_API_KEY", " key ")
	t.Setenv("LOG_DEVELOPMENT", "true")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"gemini-2.5-flash", "gemini-2.0-flash"}, cfg.AIModels)
	assert.Equal(t, "key", cfg.GeminiAPIKey)
	assert.False(t, cfg.Offline())
	assert.True(t, cfg.LogDevelopment)
}

func TestLoadRejectsBadBool(t *testing.T) {
	t.Setenv("FINTRACK_USER_ID", "u1")
	t.Setenv("LOG_DEVELOPMENT", "sometimes")

	_, err := Load()
	require.Error(t, err)
}
