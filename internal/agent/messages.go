package agent

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/ashureev/restwell/internal/domain"
)

// ErrMessagesNotArray is returned when the body is not JSON or its messages
// field is absent or not an array.
var ErrMessagesNotArray = errors.New(msgMessagesNotArray)

type wireMessage struct {
	Role    json.RawMessage `json:"role"`
	Content json.RawMessage `json:"content"`
}

// DecodeChatRequest reads a chat request body and returns its messages.
// Read errors (including http.MaxBytesError) are wrapped alongside
// ErrMessagesNotArray so callers can still match them.
func DecodeChatRequest(r io.Reader) (domain.History, error) {
	var req ChatRequest
	if err := json.NewDecoder(r).Decode(&req); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessagesNotArray, err)
	}
	return ParseMessages(req.Messages)
}

// ParseMessages converts a raw messages value into a history. Elements whose
// content is not a string are dropped. A role that is not a string counts as
// the user.
func ParseMessages(raw json.RawMessage) (domain.History, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '[' {
		return nil, ErrMessagesNotArray
	}

	var elems []json.RawMessage
	if err := json.Unmarshal(trimmed, &elems); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrMessagesNotArray, err)
	}

	history := make(domain.History, 0, len(elems))
	for _, elem := range elems {
		var wm wireMessage
		if err := json.Unmarshal(elem, &wm); err != nil {
			continue
		}
		if !isJSONString(wm.Content) {
			continue
		}
		var content string
		if err := json.Unmarshal(wm.Content, &content); err != nil {
			continue
		}
		var role string
		_ = json.Unmarshal(wm.Role, &role)
		history = append(history, domain.Message{Role: domain.Role(role), Content: content})
	}
	return history, nil
}

// Prepare applies the guardrails in order: drop empty messages, keep the most
// recent MaxMessages, then truncate each to MaxMessageChars characters.
func Prepare(history domain.History, g Guardrails) domain.History {
	out := make(domain.History, 0, len(history))
	for _, m := range history {
		if g.DropEmpty && strings.TrimSpace(m.Content) == "" {
			continue
		}
		out = append(out, m)
	}

	out = out.Last(g.MaxMessages)

	if g.MaxMessageChars > 0 {
		for i, m := range out {
			out[i].Content = truncateRunes(m.Content, g.MaxMessageChars)
		}
	}
	return out
}

func isJSONString(raw json.RawMessage) bool {
	raw = bytes.TrimSpace(raw)
	return len(raw) > 0 && raw[0] == '"'
}

func truncateRunes(s string, n int) string {
	if len(s) <= n {
		return s
	}
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
