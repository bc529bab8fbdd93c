package config

import (
	"os"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	for _, key := range []string{
		"PORT", "ALLOWED_ORIGINS", "GEMINI_API_KEY_ENV", "GEMINI_BASE_URL", "GEMINI_MODEL",
		"UPSTREAM_TIMEOUT", "CHAT_HISTORY_LIMIT", "CHAT_MESSAGE_CHAR_LIMIT", "CHAT_DROP_EMPTY",
		"CHAT_TEMPERATURE", "CHAT_MAX_OUTPUT_TOKENS", "MAX_REQUEST_BODY_SIZE",
		"RATE_LIMIT_REQUESTS", "ASSESS_RATE_LIMIT_REQUESTS", "RATE_LIMIT_WINDOW",
		"AUDIT_ENABLED", "DB_PATH", "AUDIT_RETENTION", "AUDIT_QUEUE_SIZE",
	} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Chat.HistoryLimit != 10 {
		t.Errorf("HistoryLimit = %d, want 10", cfg.Chat.HistoryLimit)
	}
	if cfg.Chat.MessageCharLimit != 4000 {
		t.Errorf("MessageCharLimit = %d, want 4000", cfg.Chat.MessageCharLimit)
	}
	if !cfg.Chat.DropEmpty {
		t.Error("DropEmpty = false, want true")
	}
	if cfg.Chat.Temperature != 0.4 {
		t.Errorf("Temperature = %v, want 0.4", cfg.Chat.Temperature)
	}
	if cfg.Gemini.Timeout != 60*time.Second {
		t.Errorf("Timeout = %v, want 60s", cfg.Gemini.Timeout)
	}
	if cfg.RateLimit.ChatRequests != 10 || cfg.RateLimit.Window != time.Minute {
		t.Errorf("RateLimit = %+v, want 10 per minute", cfg.RateLimit)
	}
	if len(cfg.AllowedOrigins) != 1 || cfg.AllowedOrigins[0] != "*" {
		t.Errorf("AllowedOrigins = %v, want [*]", cfg.AllowedOrigins)
	}
	if !cfg.Audit.Enabled {
		t.Error("Audit.Enabled = false, want true")
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("CHAT_HISTORY_LIMIT", "0")
	t.Setenv("CHAT_DROP_EMPTY", "off")
	t.Setenv("CHAT_TEMPERATURE", "0.9")
	t.Setenv("UPSTREAM_TIMEOUT", "15s")
	t.Setenv("RATE_LIMIT_WINDOW", "30s")
	t.Setenv("AUDIT_ENABLED", "false")
	t.Setenv("DB_PATH", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != "9090" {
		t.Errorf("Port = %q, want 9090", cfg.Port)
	}
	if len(cfg.AllowedOrigins) != 2 || cfg.AllowedOrigins[1] != "https://b.example" {
		t.Errorf("AllowedOrigins = %v", cfg.AllowedOrigins)
	}
	if cfg.Chat.HistoryLimit != 0 || cfg.Chat.DropEmpty {
		t.Errorf("Chat = %+v, want limit 0 and DropEmpty false", cfg.Chat)
	}
	if cfg.Chat.Temperature != 0.9 || cfg.Gemini.Timeout != 15*time.Second {
		t.Errorf("Temperature/Timeout = %v/%v", cfg.Chat.Temperature, cfg.Gemini.Timeout)
	}
	if cfg.RateLimit.Window != 30*time.Second {
		t.Errorf("Window = %v, want 30s", cfg.RateLimit.Window)
	}
}

func TestGetEnvFallbacks(t *testing.T) {
	t.Setenv("RW_TEST_INT", "nope")
	t.Setenv("RW_TEST_DURATION", "ten")
	t.Setenv("RW_TEST_BOOL", "maybe")

	if got := getEnvInt("RW_TEST_INT", 7); got != 7 {
		t.Errorf("getEnvInt = %d, want 7", got)
	}
	if got := getEnvDuration("RW_TEST_DURATION", time.Second); got != time.Second {
		t.Errorf("getEnvDuration = %v, want 1s", got)
	}
	if got := getEnvBool("RW_TEST_BOOL", true); !got {
		t.Error("getEnvBool = false, want fallback true")
	}
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Port:      "8080",
			Gemini:    GeminiConfig{APIKeyEnv: "K", BaseURL: "http://x", Model: "m", Timeout: time.Second},
			Chat:      ChatConfig{HistoryLimit: 10, MessageCharLimit: 10, Temperature: 0.4, MaxOutputTokens: 1, MaxRequestBodySize: 1},
			RateLimit: RateLimitConfig{ChatRequests: 1, Window: time.Minute},
			Audit:     AuditConfig{Enabled: true, DBPath: "x.db", Retention: time.Hour, QueueSize: 1},
		}
	}

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"empty port", func(c *Config) { c.Port = "" }},
		{"zero timeout", func(c *Config) { c.Gemini.Timeout = 0 }},
		{"negative history", func(c *Config) { c.Chat.HistoryLimit = -1 }},
		{"temperature", func(c *Config) { c.Chat.Temperature = 3 }},
		{"zero window", func(c *Config) { c.RateLimit.Window = 0 }},
		{"audit path", func(c *Config) { c.Audit.DBPath = "" }},
		{"audit queue", func(c *Config) { c.Audit.QueueSize = 0 }},
	}

	if err := valid().Validate(); err != nil {
		t.Fatalf("valid config rejected: %v", err)
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("Validate() = nil, want error")
			}
		})
	}

	cfg := valid()
	cfg.Audit = AuditConfig{Enabled: false}
	if err := cfg.Validate(); err != nil {
		t.Errorf("disabled audit should skip store checks: %v", err)
	}
}
