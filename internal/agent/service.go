package agent

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/gemini"
)

// ErrNoCredential is returned when the upstream credential is not set.
var ErrNoCredential = errors.New(msgNoCredential)

// Reply is the normalized result of one upstream call.
type Reply struct {
	Text      string
	Forwarded domain.History
	// Fallback is set when the model returned no usable text.
	Fallback bool
}

// Service forwards chat histories to the model and normalizes the answer.
type Service struct {
	gen Generator
	key KeyFunc
	cfg Config
}

// NewService creates a chat service. Zero-valued config fields take their
// defaults.
func NewService(gen Generator, key KeyFunc, cfg Config) *Service {
	def := DefaultConfig()
	if cfg.SystemPrompt == "" {
		cfg.SystemPrompt = def.SystemPrompt
	}
	if cfg.MaxOutputTokens <= 0 {
		cfg.MaxOutputTokens = def.MaxOutputTokens
	}
	if cfg.MaxRequestBodySize <= 0 {
		cfg.MaxRequestBodySize = def.MaxRequestBodySize
	}
	if cfg.UpstreamTimeout <= 0 {
		cfg.UpstreamTimeout = def.UpstreamTimeout
	}
	if key == nil {
		key = StaticKey("")
	}
	return &Service{gen: gen, key: key, cfg: cfg}
}

// Config returns the effective configuration.
func (s *Service) Config() Config {
	return s.cfg
}

// CredentialConfigured reports whether the upstream credential is currently set.
func (s *Service) CredentialConfigured() bool {
	return s.key() != ""
}

// BuildRequest maps a prepared history onto the upstream request shape.
func (s *Service) BuildRequest(history domain.History) *gemini.GenerateContentRequest {
	contents := make([]gemini.Content, 0, len(history))
	for _, m := range history {
		role := gemini.RoleUser
		if m.Role == domain.RoleAssistant {
			role = gemini.RoleModel
		}
		contents = append(contents, gemini.Content{
			Role:  role,
			Parts: []gemini.Part{{Text: m.Content}},
		})
	}
	return &gemini.GenerateContentRequest{
		Contents:          contents,
		SystemInstruction: &gemini.Content{Parts: []gemini.Part{{Text: s.cfg.SystemPrompt}}},
		GenerationConfig: gemini.GenerationConfig{
			Temperature:     s.cfg.Temperature,
			MaxOutputTokens: s.cfg.MaxOutputTokens,
		},
	}
}

// ExtractText joins the non-empty text parts of the first candidate with
// spaces. ok is false when nothing usable came back.
func ExtractText(resp *gemini.GenerateContentResponse) (text string, ok bool) {
	if resp == nil || len(resp.Candidates) == 0 {
		return "", false
	}
	var parts []string
	for _, p := range resp.Candidates[0].Content.Parts {
		if p.Text != "" {
			parts = append(parts, p.Text)
		}
	}
	text = strings.TrimSpace(strings.Join(parts, " "))
	return text, text != ""
}

// Reply applies the guardrails to history, forwards it once and returns the
// normalized answer. The upstream call ignores cancellation of ctx and is
// bounded only by the configured timeout.
func (s *Service) Reply(ctx context.Context, history domain.History) (*Reply, error) {
	apiKey := s.key()
	if apiKey == "" {
		return nil, ErrNoCredential
	}

	forwarded := Prepare(history, s.cfg.Guardrails)

	callCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.UpstreamTimeout)
	defer cancel()

	resp, err := s.gen.GenerateContent(callCtx, apiKey, s.BuildRequest(forwarded))
	if err != nil {
		return &Reply{Forwarded: forwarded}, fmt.Errorf("generate content: %w", err)
	}

	text, ok := ExtractText(resp)
	if !ok {
		return &Reply{Text: FallbackReply, Forwarded: forwarded, Fallback: true}, nil
	}
	return &Reply{Text: text, Forwarded: forwarded}, nil
}
