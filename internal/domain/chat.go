// Package domain contains core domain types for the RestWell application.
package domain

// Role identifies the author of a chat message.
type Role string

const (
	// RoleUser marks a message typed by the person using the tool.
	RoleUser Role = "user"
	// RoleAssistant marks a message produced by the assistant.
	RoleAssistant Role = "assistant"
)

// Message is a single chat turn.
type Message struct {
	Role    Role   `json:"role"`
	Content string `json:"content"`
}

// History is an ordered chat log owned by the caller. The proxy receives it by
// value on every request and never keeps a copy.
type History []Message

// Append returns the history extended with one message. The receiver is not
// modified when its backing array is shared.
func (h History) Append(role Role, content string) History {
	next := make(History, len(h), len(h)+1)
	copy(next, h)
	return append(next, Message{Role: role, Content: content})
}

// Last returns the most recent n messages. n <= 0 returns the full history.
func (h History) Last(n int) History {
	if n <= 0 || n >= len(h) {
		return h
	}
	return h[len(h)-n:]
}
