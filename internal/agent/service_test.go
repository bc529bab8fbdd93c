package agent

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/gemini"
)

func TestBuildRequestMapsRoles(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeGenerator{}, StaticKey("k"), DefaultConfig())
	req := svc.BuildRequest(domain.History{
		{Role: domain.RoleUser, Content: "q1"},
		{Role: domain.RoleAssistant, Content: "a1"},
		{Role: "system", Content: "sneaky"},
	})

	wantRoles := []string{gemini.RoleUser, gemini.RoleModel, gemini.RoleUser}
	if len(req.Contents) != 3 {
		t.Fatalf("expected 3 contents, got %d", len(req.Contents))
	}
	for i, c := range req.Contents {
		if c.Role != wantRoles[i] {
			t.Errorf("content %d role = %q, want %q", i, c.Role, wantRoles[i])
		}
		if len(c.Parts) != 1 {
			t.Errorf("content %d should have one part, got %d", i, len(c.Parts))
		}
	}
	if req.SystemInstruction == nil || req.SystemInstruction.Parts[0].Text != DefaultPersona {
		t.Errorf("unexpected system instruction %+v", req.SystemInstruction)
	}
	if req.GenerationConfig.Temperature != 0.4 || req.GenerationConfig.MaxOutputTokens != 600 {
		t.Errorf("unexpected generation config %+v", req.GenerationConfig)
	}
}

func TestExtractText(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		resp   *gemini.GenerateContentResponse
		want   string
		wantOK bool
	}{
		{"joined", textResponse("A", "B"), "A B", true},
		{"trimmed", textResponse("  hello ", ""), "hello", true},
		{"skips empty parts", textResponse("", "x", ""), "x", true},
		{"no candidates", &gemini.GenerateContentResponse{}, "", false},
		{"whitespace only", textResponse("   "), "", false},
		{"nil", nil, "", false},
	}
	for _, tt := range tests {
		got, ok := ExtractText(tt.resp)
		if got != tt.want || ok != tt.wantOK {
			t.Errorf("%s: got (%q, %v), want (%q, %v)", tt.name, got, ok, tt.want, tt.wantOK)
		}
	}
}

func TestReplyFallback(t *testing.T) {
	t.Parallel()

	svc := NewService(&fakeGenerator{resp: &gemini.GenerateContentResponse{}}, StaticKey("k"), DefaultConfig())
	reply, err := svc.Reply(context.Background(), domain.History{{Role: domain.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if reply.Text != FallbackReply || !reply.Fallback {
		t.Fatalf("unexpected reply %+v", reply)
	}
}

func TestReplyReadsKeyPerCall(t *testing.T) {
	t.Parallel()

	key := ""
	gen := &fakeGenerator{resp: textResponse("ok")}
	svc := NewService(gen, func() string { return key }, DefaultConfig())

	if _, err := svc.Reply(context.Background(), nil); !errors.Is(err, ErrNoCredential) {
		t.Fatalf("expected ErrNoCredential, got %v", err)
	}
	key = "rotated"
	if _, err := svc.Reply(context.Background(), nil); err != nil {
		t.Fatalf("Reply failed after key was set: %v", err)
	}
	if gen.keys[0] != "rotated" {
		t.Fatalf("expected the current key to be used, got %q", gen.keys[0])
	}
}

func TestReplyIgnoresCallerCancellation(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{resp: textResponse("ok")}
	svc := NewService(gen, StaticKey("k"), Config{UpstreamTimeout: time.Second})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := svc.Reply(ctx, domain.History{{Role: domain.RoleUser, Content: "hi"}}); err != nil {
		t.Fatalf("Reply failed: %v", err)
	}
	if !gen.ctxOK[0] {
		t.Fatal("upstream call should not inherit the caller's cancellation")
	}
}

func TestReplyWrapsUpstreamError(t *testing.T) {
	t.Parallel()

	gen := &fakeGenerator{err: &gemini.APIError{StatusCode: 429, Message: "quota"}}
	svc := NewService(gen, StaticKey("k"), DefaultConfig())
	_, err := svc.Reply(context.Background(), domain.History{{Role: domain.RoleUser, Content: "hi"}})
	var apiErr *gemini.APIError
	if !errors.As(err, &apiErr) || apiErr.StatusCode != 429 {
		t.Fatalf("expected wrapped APIError, got %v", err)
	}
}

func TestEnvKeyReadsEachCall(t *testing.T) {
	key := EnvKey("RW_TEST_GEMINI_KEY")
	t.Setenv("RW_TEST_GEMINI_KEY", "")
	if key() != "" {
		t.Fatal("expected empty key")
	}
	t.Setenv("RW_TEST_GEMINI_KEY", "rotated")
	if got := key(); got != "rotated" {
		t.Errorf("key() = %q, want rotated", got)
	}
}
