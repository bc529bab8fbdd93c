// Package config provides application configuration.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Port           string
	FrontendURL    string
	AllowedOrigins []string
	GRPCHealthAddr string
	Gemini         GeminiConfig
	Chat           ChatConfig
	RateLimit      RateLimitConfig
	Redis          RedisConfig
	Audit          AuditConfig
	Log            LogConfig
}

// GeminiConfig describes the upstream model endpoint. The credential itself
// is never stored here; only the name of the variable that holds it.
type GeminiConfig struct {
	APIKeyEnv string
	BaseURL   string
	Model     string
	Timeout   time.Duration
}

// ChatConfig controls how conversation history is forwarded.
type ChatConfig struct {
	HistoryLimit       int
	MessageCharLimit   int
	DropEmpty          bool
	Temperature        float64
	MaxOutputTokens    int
	MaxRequestBodySize int64
}

// RateLimitConfig holds per-client request budgets. Zero requests disables a limit.
type RateLimitConfig struct {
	ChatRequests   int
	AssessRequests int
	Window         time.Duration
}

// RedisConfig enables the shared limiter when Addr is set.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// AuditConfig controls the chat audit store.
type AuditConfig struct {
	Enabled   bool
	DBPath    string
	Retention time.Duration
	QueueSize int
}

// LogConfig selects the slog handler.
type LogConfig struct {
	Level  string
	Format string
}

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	cfg := &Config{
		Port:           getEnv("PORT", "8080"),
		FrontendURL:    getEnv("FRONTEND_URL", ""),
		AllowedOrigins: getEnvList("ALLOWED_ORIGINS", []string{"*"}),
		GRPCHealthAddr: getEnv("GRPC_HEALTH_ADDR", ""),
		Gemini: GeminiConfig{
			APIKeyEnv: getEnv("GEMINI_API_KEY_ENV", "GEMINI_API_KEY"),
			BaseURL:   getEnv("GEMINI_BASE_URL", "https://generativelanguage.googleapis.com/v1beta"),
			Model:     getEnv("GEMINI_MODEL", "gemini-2.5-flash-lite"),
			Timeout:   getEnvDuration("UPSTREAM_TIMEOUT", 60*time.Second),
		},
		Chat: ChatConfig{
			HistoryLimit:       getEnvInt("CHAT_HISTORY_LIMIT", 10),
			MessageCharLimit:   getEnvInt("CHAT_MESSAGE_CHAR_LIMIT", 4000),
			DropEmpty:          getEnvBool("CHAT_DROP_EMPTY", true),
			Temperature:        getEnvFloat("CHAT_TEMPERATURE", 0.4),
			MaxOutputTokens:    getEnvInt("CHAT_MAX_OUTPUT_TOKENS", 600),
			MaxRequestBodySize: int64(getEnvInt("MAX_REQUEST_BODY_SIZE", 1<<20)),
		},
		RateLimit: RateLimitConfig{
			ChatRequests:   getEnvInt("RATE_LIMIT_REQUESTS", 10),
			AssessRequests: getEnvInt("ASSESS_RATE_LIMIT_REQUESTS", 60),
			Window:         getEnvDuration("RATE_LIMIT_WINDOW", time.Minute),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", ""),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		Audit: AuditConfig{
			Enabled:   getEnvBool("AUDIT_ENABLED", true),
			DBPath:    getEnv("DB_PATH", "./data/restwell.db"),
			Retention: getEnvDuration("AUDIT_RETENTION", 168*time.Hour),
			QueueSize: getEnvInt("AUDIT_QUEUE_SIZE", 256),
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// Validate checks that all required configuration fields are set.
func (c *Config) Validate() error {
	if c.Port == "" {
		return fmt.Errorf("PORT cannot be empty")
	}
	if c.Gemini.APIKeyEnv == "" {
		return fmt.Errorf("GEMINI_API_KEY_ENV cannot be empty")
	}
	if c.Gemini.BaseURL == "" {
		return fmt.Errorf("GEMINI_BASE_URL cannot be empty")
	}
	if c.Gemini.Model == "" {
		return fmt.Errorf("GEMINI_MODEL cannot be empty")
	}
	if c.Gemini.Timeout <= 0 {
		return fmt.Errorf("UPSTREAM_TIMEOUT must be > 0")
	}
	if c.Chat.HistoryLimit < 0 {
		return fmt.Errorf("CHAT_HISTORY_LIMIT must be >= 0")
	}
	if c.Chat.MessageCharLimit < 0 {
		return fmt.Errorf("CHAT_MESSAGE_CHAR_LIMIT must be >= 0")
	}
	if c.Chat.Temperature < 0 || c.Chat.Temperature > 2 {
		return fmt.Errorf("CHAT_TEMPERATURE must be between 0 and 2")
	}
	if c.Chat.MaxOutputTokens <= 0 {
		return fmt.Errorf("CHAT_MAX_OUTPUT_TOKENS must be > 0")
	}
	if c.Chat.MaxRequestBodySize <= 0 {
		return fmt.Errorf("MAX_REQUEST_BODY_SIZE must be > 0")
	}
	if c.RateLimit.ChatRequests < 0 || c.RateLimit.AssessRequests < 0 {
		return fmt.Errorf("rate limit requests must be >= 0")
	}
	if c.RateLimit.Window <= 0 {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be > 0")
	}
	if c.Audit.Enabled {
		if c.Audit.DBPath == "" {
			return fmt.Errorf("DB_PATH cannot be empty")
		}
		if c.Audit.Retention <= 0 {
			return fmt.Errorf("AUDIT_RETENTION must be > 0")
		}
		if c.Audit.QueueSize <= 0 {
			return fmt.Errorf("AUDIT_QUEUE_SIZE must be > 0")
		}
	}
	return nil
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.FrontendURL == "" ||
		strings.Contains(c.FrontendURL, "localhost") ||
		strings.Contains(c.FrontendURL, "127.0.0.1")
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on":
		return true
	case "0", "false", "no", "off":
		return false
	default:
		return fallback
	}
}

func getEnvInt(key string, fallback int) int {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return n
}

func getEnvFloat(key string, fallback float64) float64 {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return fallback
	}
	return f
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil {
		return fallback
	}
	return d
}

// getEnvList splits a comma-separated value, dropping blanks.
func getEnvList(key string, fallback []string) []string {
	value, ok := os.LookupEnv(key)
	if !ok {
		return fallback
	}
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	if len(out) == 0 {
		return fallback
	}
	return out
}
