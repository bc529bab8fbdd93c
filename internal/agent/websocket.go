package agent

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/identity"
	"github.com/coder/websocket"
)

const wsWriteTimeout = 10 * time.Second

// Frame types.
const (
	frameChat  = "chat"
	framePing  = "ping"
	framePong  = "pong"
	frameReply = "reply"
	frameError = "error"
)

// wsInbound is a client frame.
type wsInbound struct {
	Type     string          `json:"type"`
	Messages json.RawMessage `json:"messages,omitempty"`
}

// wsOutbound is a server frame.
type wsOutbound struct {
	Type    string        `json:"type"`
	Content []ContentPart `json:"content,omitempty"`
	Status  int           `json:"status,omitempty"`
	Error   string        `json:"error,omitempty"`
}

// OriginPatterns converts allowed origins (URLs or "*") to the host patterns
// the WebSocket handshake checks against.
func OriginPatterns(allowedOrigins []string) []string {
	patterns := make([]string, 0, len(allowedOrigins))
	for _, o := range allowedOrigins {
		o = strings.TrimSpace(o)
		if o == "" {
			continue
		}
		if o == "*" {
			patterns = append(patterns, "*")
			continue
		}
		if u, err := url.Parse(o); err == nil && u.Host != "" {
			patterns = append(patterns, u.Host)
			continue
		}
		patterns = append(patterns, o)
	}
	return patterns
}

// HandleWebSocket upgrades GET /ws/chat. Each chat frame gets exactly one
// reply or error frame; frames on one connection are handled in order.
func (h *Handler) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	clientID := identity.ClientIDFromContext(r.Context())
	rateKey := identity.RateLimitKey(r)

	ws, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		OriginPatterns: h.originPatterns,
	})
	if err != nil {
		slog.Warn("Failed to accept WebSocket", "error", err, "client_id", clientID)
		return
	}
	defer func() {
		if closeErr := ws.Close(websocket.StatusNormalClosure, "session ended"); closeErr != nil {
			slog.Debug("Failed to close websocket", "error", closeErr, "client_id", clientID)
		}
	}()
	ws.SetReadLimit(h.svc.Config().MaxRequestBodySize)

	ctx := r.Context()
	slog.Info("Chat WebSocket connected", "client_id", clientID)

	for {
		typ, data, err := ws.Read(ctx)
		if err != nil {
			status := websocket.CloseStatus(err)
			if status == websocket.StatusNormalClosure || status == websocket.StatusGoingAway || errors.Is(err, context.Canceled) {
				slog.Info("Chat WebSocket closed", "client_id", clientID)
			} else {
				slog.Debug("Chat WebSocket read error", "error", err, "client_id", clientID)
			}
			return
		}
		if typ != websocket.MessageText {
			continue
		}

		out := h.handleFrame(ctx, clientID, rateKey, data)
		if err := h.writeFrame(ws, out); err != nil {
			slog.Debug("Chat WebSocket write error", "error", err, "client_id", clientID)
			return
		}
	}
}

func (h *Handler) handleFrame(ctx context.Context, clientID, rateKey string, data []byte) wsOutbound {
	var in wsInbound
	if err := json.Unmarshal(data, &in); err != nil {
		return wsOutbound{Type: frameError, Status: http.StatusBadRequest, Error: msgMessagesNotArray}
	}

	switch in.Type {
	case framePing:
		return wsOutbound{Type: framePong}
	case frameChat:
	default:
		return wsOutbound{Type: frameError, Status: http.StatusBadRequest, Error: "unsupported frame type"}
	}

	start := h.now()
	res := h.serveFrame(ctx, rateKey, in.Messages)
	h.record(ctx, ChannelWS, clientID, start, res)

	if res.ok() {
		return wsOutbound{Type: frameReply, Content: []ContentPart{{Text: res.text}}}
	}
	return wsOutbound{Type: frameError, Status: res.status, Error: res.errMsg}
}

func (h *Handler) serveFrame(ctx context.Context, rateKey string, raw json.RawMessage) result {
	if !h.svc.CredentialConfigured() {
		return result{status: http.StatusInternalServerError, errMsg: msgNoCredential, outcome: domain.OutcomeNoCredential}
	}
	if d := h.limiter.Allow(ctx, rateKey); !d.Allowed {
		return result{status: http.StatusTooManyRequests, errMsg: msgRateLimited, outcome: domain.OutcomeRateLimited, limit: d}
	}
	history, err := ParseMessages(raw)
	if err != nil {
		return result{status: http.StatusBadRequest, errMsg: msgMessagesNotArray, outcome: domain.OutcomeInvalidBody}
	}
	return h.complete(ctx, history)
}

func (h *Handler) writeFrame(ws *websocket.Conn, out wsOutbound) error {
	data, err := json.Marshal(out)
	if err != nil {
		return err
	}
	ctx, cancel := context.WithTimeout(context.Background(), wsWriteTimeout)
	defer cancel()
	return ws.Write(ctx, websocket.MessageText, data)
}
