package commands

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/ashureev/restwell/internal/domain"
)

type scriptedSender struct {
	replies []string
	errs    []error
	seen    []domain.History
}

func (s *scriptedSender) Chat(_ context.Context, history domain.History) (string, error) {
	i := len(s.seen)
	s.seen = append(s.seen, history)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	return s.replies[i], nil
}

func TestChatLoopSendsFullHistory(t *testing.T) {
	sender := &scriptedSender{replies: []string{"Aim for 7-9 hours.", "Stop by 2 PM."}}
	in := strings.NewReader("How much sleep?\n\nWhen should I stop coffee?\n/exit\nignored\n")
	var out bytes.Buffer

	history, err := chatLoop(context.Background(), in, &out, sender)
	if err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}

	if len(sender.seen) != 2 {
		t.Fatalf("sent %d requests, want 2", len(sender.seen))
	}
	if got := sender.seen[1]; len(got) != 3 || got[1].Role != domain.RoleAssistant || got[2].Content != "When should I stop coffee?" {
		t.Errorf("second request history = %+v", got)
	}
	if len(history) != 4 {
		t.Errorf("final history length = %d, want 4", len(history))
	}
	if !strings.Contains(out.String(), "Stop by 2 PM.") {
		t.Errorf("output missing reply: %q", out.String())
	}
}

func TestChatLoopFailureMessage(t *testing.T) {
	sender := &scriptedSender{
		replies: []string{"", "Recovered."},
		errs:    []error{errors.New("upstream down")},
	}
	in := strings.NewReader("hello\nagain\n")
	var out bytes.Buffer

	history, err := chatLoop(context.Background(), in, &out, sender)
	if err != nil {
		t.Fatalf("chatLoop() error = %v", err)
	}

	if !strings.Contains(out.String(), failureMessage) {
		t.Errorf("output missing failure message: %q", out.String())
	}
	// The failed user turn stays in history so the next request carries it.
	if got := sender.seen[1]; len(got) != 2 || got[0].Content != "hello" || got[1].Content != "again" {
		t.Errorf("retry history = %+v", got)
	}
	if len(history) != 3 {
		t.Errorf("final history length = %d, want 3", len(history))
	}
}
