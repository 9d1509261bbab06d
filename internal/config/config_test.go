package config

import (
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("MAX_TOKENS", "")
	t.Setenv("HISTORY_LIMIT", "")
	t.Setenv("MEMORIES_TABLE", "")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")

	cfg := FromEnv()
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, 1000, cfg.MaxTokens)
	assert.InDelta(t, 0.8, cfg.Temperature, 1e-9)
	assert.Equal(t, 5, cfg.HistoryLimit)
	assert.Equal(t, 3, cfg.RecallLimit)
	assert.Equal(t, "xiaochenguang_memories", cfg.MemoriesTable)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "Gemini")
	t.Setenv("TEMPERATURE", "0.3")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("TRACE_STDOUT", "true")
	t.Setenv("RECALL_LIMIT", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")

	cfg := FromEnv()
	assert.Equal(t, "gemini", cfg.LLMProvider)
	assert.InDelta(t, 0.3, cfg.Temperature, 1e-9)
	assert.InDelta(t, 2.5, cfg.RateLimitRPS, 1e-9)
	assert.True(t, cfg.TraceStdout)
	assert.Equal(t, 3, cfg.RecallLimit)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestTemperatureZeroIsValid(t *testing.T) {
	t.Setenv("TEMPERATURE", "0")
	cfg := FromEnv()
	assert.Zero(t, cfg.Temperature)

	valid := validConfig()
	valid.Temperature = 0
	assert.NoError(t, valid.Validate())
}

func validConfig() Config {
	return Config{
		DatabaseURL:       "postgres://localhost/db",
		LLMProvider:       "openai",
		EmbeddingProvider: "openai",
		OpenAIAPIKey:      "sk-test",
		MaxTokens:         1000,
		Temperature:       0.8,
	}
}

func TestValidate(t *testing.T) {
	require.NoError(t, validConfig().Validate())

	cfg := validConfig()
	cfg.DatabaseURL = ""
	assert.ErrorContains(t, cfg.Validate(), "DATABASE_URL")

	cfg = validConfig()
	cfg.LLMProvider = "grok"
	assert.ErrorContains(t, cfg.Validate(), "XAI_API_KEY")

	cfg = validConfig()
	cfg.EmbeddingProvider = "gemini"
	assert.ErrorContains(t, cfg.Validate(), "GOOGLE_API_KEY")

	cfg = validConfig()
	cfg.LLMProvider = "mystery"
	assert.ErrorContains(t, cfg.Validate(), "unsupported LLM_PROVIDER")
}

func TestProviderKeys(t *testing.T) {
	cfg := validConfig()
	cfg.LLMProvider = "openrouter"
	cfg.OpenRouterAPIKey = "or-key"
	cfg.EmbeddingProvider = "gemini"
	cfg.GoogleAPIKey = "g-key"

	assert.Equal(t, "or-key", cfg.LLMAPIKey())
	assert.Equal(t, "g-key", cfg.EmbeddingAPIKey())
}

func TestSlogLevel(t *testing.T) {
	assert.Equal(t, slog.LevelDebug, Config{LogLevel: "DEBUG"}.SlogLevel())
	assert.Equal(t, slog.LevelInfo, Config{}.SlogLevel())
}
