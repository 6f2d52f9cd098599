package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("PORT", "")
	t.Setenv("OPENAI_API_KEY", "")
	t.Setenv("PUBLIC_URL", "")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "openai", cfg.LLMProvider)
	assert.Equal(t, "gpt-4o-mini", cfg.LLMModel)
	assert.InDelta(t, 0.7, cfg.LLMTemperature, 0.0001)
	assert.Equal(t, 1000, cfg.LLMMaxTokens)
	assert.Equal(t, 10*time.Minute, cfg.CacheTTL)
	assert.Equal(t, 100, cfg.CacheCapacity)
	assert.Equal(t, 100, cfg.HistoryLimit)
	assert.Equal(t, "resend", cfg.EmailProvider)
	assert.Equal(t, "http://localhost:8080", cfg.PublicURL)
	assert.False(t, cfg.AIEnabled())
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LLM_PROVIDER", "groq")
	t.Setenv("GROQ_API_KEY", "gsk_test")
	t.Setenv("CACHE_TTL", "1m")
	t.Setenv("CACHE_BACKEND", "redis")

	cfg := LoadConfig()

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "groq", cfg.LLMProvider)
	assert.Equal(t, time.Minute, cfg.CacheTTL)
	assert.Equal(t, "redis", cfg.CacheBackend)
	assert.True(t, cfg.AIEnabled())
}
