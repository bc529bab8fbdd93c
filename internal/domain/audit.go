package domain

import (
	"time"
)

// Chat audit outcomes.
const (
	OutcomeOK             = "ok"
	OutcomeMethod         = "method_not_allowed"
	OutcomeNoCredential   = "no_credential"
	OutcomeInvalidBody    = "invalid_body"
	OutcomeBodyTooLarge   = "body_too_large"
	OutcomeUpstreamError  = "upstream_error"
	OutcomeInternalError  = "internal_error"
	OutcomeRateLimited    = "rate_limited"
	OutcomeEmptyCandidate = "empty_candidate"
)

// ChatAudit records the outcome of one proxied chat request.
// It never carries message text, only truncated content hashes.
type ChatAudit struct {
	ID                string
	ClientID          string
	Channel           string
	ReceivedMessages  int
	ForwardedMessages int
	Status            int
	Outcome           string
	Latency           time.Duration
	InputHash         string
	OutputHash        string
	CreatedAt         time.Time
}

// ChatStats aggregates audit records over a window.
type ChatStats struct {
	Since        time.Time        `json:"since"`
	Total        int64            `json:"total"`
	ByOutcome    map[string]int64 `json:"by_outcome"`
	AvgLatencyMs float64          `json:"avg_latency_ms"`
	Recent       []ChatSummary    `json:"recent,omitempty"`
}

// ChatSummary is the public view of one audit record. Client IDs and content
// hashes stay server side.
type ChatSummary struct {
	Channel   string    `json:"channel"`
	Status    int       `json:"status"`
	Outcome   string    `json:"outcome"`
	LatencyMs int64     `json:"latency_ms"`
	CreatedAt time.Time `json:"created_at"`
}

// Summary returns the public view of a.
func (a *ChatAudit) Summary() ChatSummary {
	return ChatSummary{
		Channel:   a.Channel,
		Status:    a.Status,
		Outcome:   a.Outcome,
		LatencyMs: a.Latency.Milliseconds(),
		CreatedAt: a.CreatedAt,
	}
}
