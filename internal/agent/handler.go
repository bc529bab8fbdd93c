package agent

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/ashureev/restwell/internal/api"
	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/gemini"
	"github.com/ashureev/restwell/internal/identity"
	"github.com/ashureev/restwell/internal/middleware"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Audit channels.
const (
	ChannelHTTP = "http"
	ChannelWS   = "ws"
)

// Handler serves the chat proxy over HTTP and WebSocket.
type Handler struct {
	svc            *Service
	limiter        middleware.Limiter
	audit          AuditLogger
	originPatterns []string
	now            func() time.Time
}

// NewHandler creates a chat handler. A nil limiter disables rate limiting; a
// nil audit logger discards records.
func NewHandler(svc *Service, limiter middleware.Limiter, audit AuditLogger, originPatterns []string) *Handler {
	if limiter == nil {
		limiter = middleware.AllowAll{}
	}
	if audit == nil {
		audit = NoopAuditLogger()
	}
	return &Handler{
		svc:            svc,
		limiter:        limiter,
		audit:          audit,
		originPatterns: originPatterns,
		now:            time.Now,
	}
}

// result is the terminal state of one chat exchange.
type result struct {
	status    int
	errMsg    string
	text      string
	outcome   string
	received  int
	forwarded domain.History
	limit     middleware.Decision
}

func (res result) ok() bool {
	return res.status == http.StatusOK
}

// HandleChat handles /api/chat. Every method is routed here so that non-POST
// requests get a JSON 405.
func (h *Handler) HandleChat(w http.ResponseWriter, r *http.Request) {
	start := h.now()
	clientID := identity.ClientIDFromContext(r.Context())
	res := h.serveChat(w, r)

	switch {
	case res.ok():
		api.JSON(w, http.StatusOK, ChatResponse{Content: []ContentPart{{Text: res.text}}})
	case res.status == http.StatusTooManyRequests:
		middleware.WriteRateLimited(w, res.limit)
	default:
		if res.status == http.StatusMethodNotAllowed {
			w.Header().Set("Allow", http.MethodPost)
		}
		api.Error(w, res.status, res.errMsg)
	}

	h.record(r.Context(), ChannelHTTP, clientID, start, res)
}

func (h *Handler) serveChat(w http.ResponseWriter, r *http.Request) result {
	if r.Method != http.MethodPost {
		return result{status: http.StatusMethodNotAllowed, errMsg: msgMethodNotAllowed, outcome: domain.OutcomeMethod}
	}
	if !h.svc.CredentialConfigured() {
		slog.Error("Chat request rejected: upstream credential not configured")
		return result{status: http.StatusInternalServerError, errMsg: msgNoCredential, outcome: domain.OutcomeNoCredential}
	}
	if d := h.limiter.Allow(r.Context(), identity.RateLimitKey(r)); !d.Allowed {
		return result{status: http.StatusTooManyRequests, errMsg: msgRateLimited, outcome: domain.OutcomeRateLimited, limit: d}
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.svc.Config().MaxRequestBodySize)
	history, err := DecodeChatRequest(r.Body)
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return result{status: http.StatusRequestEntityTooLarge, errMsg: msgBodyTooLarge, outcome: domain.OutcomeBodyTooLarge}
		}
		return result{status: http.StatusBadRequest, errMsg: msgMessagesNotArray, outcome: domain.OutcomeInvalidBody}
	}

	return h.complete(r.Context(), history)
}

// complete forwards a validated history and maps the answer or failure onto
// a result.
func (h *Handler) complete(ctx context.Context, history domain.History) result {
	reply, err := h.svc.Reply(ctx, history)
	res := result{received: len(history)}
	if reply != nil {
		res.forwarded = reply.Forwarded
	}

	if err != nil {
		var apiErr *gemini.APIError
		switch {
		case errors.Is(err, ErrNoCredential):
			res.status, res.errMsg, res.outcome = http.StatusInternalServerError, msgNoCredential, domain.OutcomeNoCredential
		case errors.As(err, &apiErr):
			msg := apiErr.Message
			if msg == "" {
				msg = msgUpstreamGeneric
			}
			slog.Warn("Upstream model returned an error", "status", apiErr.StatusCode, "message", msg)
			res.status, res.errMsg, res.outcome = apiErr.StatusCode, msg, domain.OutcomeUpstreamError
		default:
			slog.Error("Chat request failed", "error", err, "request_id", chiMiddleware.GetReqID(ctx))
			res.status, res.errMsg, res.outcome = http.StatusInternalServerError, msgFailedToProcess, domain.OutcomeInternalError
		}
		return res
	}

	res.status = http.StatusOK
	res.text = reply.Text
	res.outcome = domain.OutcomeOK
	if reply.Fallback {
		res.outcome = domain.OutcomeEmptyCandidate
	}
	return res
}

func (h *Handler) record(ctx context.Context, channel, clientID string, start time.Time, res result) {
	latency := h.now().Sub(start)
	slog.Info("Chat request completed",
		"channel", channel,
		"status", res.status,
		"outcome", res.outcome,
		"received", res.received,
		"forwarded", len(res.forwarded),
		"latency", latency,
		"request_id", chiMiddleware.GetReqID(ctx),
	)

	rec := domain.ChatAudit{
		ID:                uuid.NewString(),
		ClientID:          clientID,
		Channel:           channel,
		ReceivedMessages:  res.received,
		ForwardedMessages: len(res.forwarded),
		Status:            res.status,
		Outcome:           res.outcome,
		Latency:           latency,
		CreatedAt:         start.UTC(),
	}
	if len(res.forwarded) > 0 {
		rec.InputHash = contentHash(res.forwarded)
	}
	if res.text != "" {
		rec.OutputHash = contentHash(res.text)
	}
	h.audit.Log(rec)
}

// RegisterRoutes registers the chat routes.
func (h *Handler) RegisterRoutes(r chi.Router) {
	r.HandleFunc("/api/chat", h.HandleChat)
	r.Get("/ws/chat", h.HandleWebSocket)
}

// Close releases handler resources.
func (h *Handler) Close() {
	if err := h.audit.Close(); err != nil {
		slog.Warn("failed to close audit logger", "error", err)
	}
}
