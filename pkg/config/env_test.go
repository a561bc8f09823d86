package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "not-a-number")
	t.Setenv("CORS_ALLOWED_ORIGINS", "")
	t.Setenv("SMTP_USER", "inbox@taqdeer.app")

	cfg := LoadConfig()

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "gpt-4o", cfg.OpenAIModel)
	assert.Equal(t, 30*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, defaultAllowedOrigins, cfg.AllowedOrigins)
	assert.Equal(t, "inbox@taqdeer.app", cfg.ContactInbox)
	assert.Equal(t, "inbox@taqdeer.app", cfg.SmtpFrom)
}

func TestLoadConfigOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "test")
	t.Setenv("PORT", "9000")
	t.Setenv("OPENAI_TIMEOUT_SECONDS", "45")
	t.Setenv("OPENAI_MAX_RETRIES", "0")
	t.Setenv("CORS_ALLOWED_ORIGINS", " https://a.example , ,https://b.example")

	cfg := LoadConfig()

	assert.Equal(t, "9000", cfg.Port)
	assert.Equal(t, 45*time.Second, cfg.OpenAITimeout)
	assert.Equal(t, 0, cfg.OpenAIMaxRetries)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
}
