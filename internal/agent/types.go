// Package agent implements the chat proxy between clients and the generative
// language model. The proxy is stateless: every request carries the full
// history and nothing is kept between requests.
package agent

import (
	"encoding/json"
	"time"
)

// DefaultPersona is the system instruction sent with every request.
const DefaultPersona = "You are a helpful health assistant specializing in sleep and caffeine. " +
	"Provide accurate, helpful answers. Keep responses concise (2-4 sentences for simple questions). " +
	"For medical concerns, recommend consulting a healthcare professional."

// FallbackReply is returned when the model produces no text.
const FallbackReply = "Sorry, I could not generate a response."

// Client-facing error messages.
const (
	msgMethodNotAllowed  = "Method not allowed"
	msgNoCredential      = "API key not configured"
	msgMessagesNotArray  = "messages must be an array"
	msgBodyTooLarge      = "request body too large"
	msgRateLimited       = "rate limit exceeded"
	msgFailedToProcess   = "Failed to process request"
	msgUpstreamGeneric   = "API error"
	defaultMaxBodySize   = 1 << 20 // 1MB
	defaultUpstreamLimit = 60 * time.Second
)

// ChatRequest is the body of POST /api/chat. Messages is kept raw so a
// missing or non-array value can be told apart from an empty list.
type ChatRequest struct {
	Messages json.RawMessage `json:"messages"`
}

// ContentPart is one block of reply text.
type ContentPart struct {
	Text string `json:"text"`
}

// ChatResponse is the normalized reply envelope.
type ChatResponse struct {
	Content []ContentPart `json:"content"`
}

// Guardrails bound what is forwarded upstream. A zero limit disables it.
type Guardrails struct {
	MaxMessages     int
	MaxMessageChars int
	DropEmpty       bool
}

// Config holds chat proxy configuration.
type Config struct {
	SystemPrompt       string
	Temperature        float64
	MaxOutputTokens    int
	Guardrails         Guardrails
	MaxRequestBodySize int64
	UpstreamTimeout    time.Duration
}

// DefaultConfig returns default chat proxy configuration.
func DefaultConfig() Config {
	return Config{
		SystemPrompt:    DefaultPersona,
		Temperature:     0.4,
		MaxOutputTokens: 600,
		Guardrails: Guardrails{
			MaxMessages:     10,
			MaxMessageChars: 4000,
			DropEmpty:       true,
		},
		MaxRequestBodySize: defaultMaxBodySize,
		UpstreamTimeout:    defaultUpstreamLimit,
	}
}
