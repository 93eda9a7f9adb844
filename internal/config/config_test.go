package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"PORT", "CORS_ALLOWED_ORIGINS", "LOG_MODE", "AI_PROVIDER", "GEMINI_API_KEY", "OPENAI_API_KEY",
		"OPENAI_BASE_URL", "OPENAI_MODEL", "ARK_API_KEY", "ARK_ACCESS_KEY", "ARK_SECRET_KEY", "ARK_MODEL",
		"ARK_TEMPERATURE", "ARK_TOP_P", "ARK_MAX_TOKENS", "AI_TIMEOUT", "AI_RATE_PER_MINUTE", "AI_RATE_BURST",
		"AI_RETRY_ONCE", "AI_HISTORY_LIMIT", "AI_INTENT_LLM_ENABLED", "GUIDANCE_PRECEDENCE", "STORE_DRIVER",
		"SQLITE_PATH", "REDIS_ADDR", "REDIS_PASSWORD", "REDIS_DB", "REDIS_PREFIX", "SESSION_TTL",
		"SESSION_SWEEP_INTERVAL",
	} {
		t.Setenv(key, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Contains(t, cfg.Server.AllowedOrigins, "http://localhost:5173")
	assert.Equal(t, ProviderNone, cfg.AI.Provider)
	assert.False(t, cfg.AI.Enabled())
	assert.Equal(t, 20*time.Second, cfg.AI.Timeout)
	assert.Equal(t, 60, cfg.AI.RatePerMinute)
	assert.True(t, cfg.AI.RetryOnce)
	assert.Equal(t, 10, cfg.AI.HistoryLimit)
	assert.Equal(t, PrecedenceCurated, cfg.AI.Precedence)
	assert.Equal(t, DefaultOpenAIModel, cfg.AI.OpenAI.Model)
	assert.Equal(t, StoreMemory, cfg.Store.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.TTL)
}

func TestLoadServerConfigPortForms(t *testing.T) {
	clearEnv(t)

	t.Setenv("PORT", "127.0.0.1:9000")
	server, err := loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9000", server.Addr)

	t.Setenv("PORT", "80 80")
	_, err = loadServerConfig()
	require.Error(t, err)

	t.Setenv("PORT", "3000")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example ,")
	server, err = loadServerConfig()
	require.NoError(t, err)
	assert.Equal(t, ":3000", server.Addr)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, server.AllowedOrigins)
}

func TestProviderAutoDetect(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "real-key")

	cfg, err := loadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, ProviderOpenAI, cfg.Provider)
	assert.Equal(t, DefaultOpenAIBaseURL, cfg.OpenAI.BaseURL)

	clearEnv(t)
	t.Setenv("ARK_API_KEY", "ark-key")
	t.Setenv("ARK_MODEL", "doubao")
	cfg, err = loadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, ProviderArk, cfg.Provider)
}

func TestPlaceholderKeysCountAsUnset(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "your_gemini_api_key_here")

	cfg, err := loadAIConfig()
	require.NoError(t, err)
	assert.Equal(t, ProviderNone, cfg.Provider)

	t.Setenv("AI_PROVIDER", "openai")
	_, err = loadAIConfig()
	require.Error(t, err)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	cases := map[string]string{
		"AI_TIMEOUT":          "soon",
		"AI_RATE_PER_MINUTE":  "many",
		"AI_RETRY_ONCE":       "maybe",
		"GUIDANCE_PRECEDENCE": "random",
		"STORE_DRIVER":        "mongo",
		"AI_PROVIDER":         "claude",
		"SESSION_TTL":         "-1h",
		"ARK_TEMPERATURE":     "hot",
	}

	for key, value := range cases {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv(key, value)
			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), key)
		})
	}
}
