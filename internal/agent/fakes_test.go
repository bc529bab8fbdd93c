package agent

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/ashureev/restwell/internal/domain"
	"github.com/ashureev/restwell/internal/gemini"
)

type fakeGenerator struct {
	mu    sync.Mutex
	resp  *gemini.GenerateContentResponse
	err   error
	reqs  []*gemini.GenerateContentRequest
	keys  []string
	ctxOK []bool
}

func (f *fakeGenerator) GenerateContent(ctx context.Context, apiKey string, req *gemini.GenerateContentRequest) (*gemini.GenerateContentResponse, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reqs = append(f.reqs, req)
	f.keys = append(f.keys, apiKey)
	f.ctxOK = append(f.ctxOK, ctx.Err() == nil)
	return f.resp, f.err
}

func (f *fakeGenerator) calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.reqs)
}

func (f *fakeGenerator) lastRequest() *gemini.GenerateContentRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.reqs) == 0 {
		return nil
	}
	return f.reqs[len(f.reqs)-1]
}

func textResponse(parts ...string) *gemini.GenerateContentResponse {
	ps := make([]gemini.Part, len(parts))
	for i, p := range parts {
		ps[i] = gemini.Part{Text: p}
	}
	return &gemini.GenerateContentResponse{
		Candidates: []gemini.Candidate{{Content: gemini.Content{Parts: ps}}},
	}
}

type captureAudit struct {
	mu   sync.Mutex
	recs []domain.ChatAudit
}

func (c *captureAudit) Log(rec domain.ChatAudit) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.recs = append(c.recs, rec)
}

func (c *captureAudit) Close() error { return nil }

func (c *captureAudit) records() []domain.ChatAudit {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]domain.ChatAudit, len(c.recs))
	copy(out, c.recs)
	return out
}

func (c *captureAudit) waitFor(t *testing.T, n int) []domain.ChatAudit {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if recs := c.records(); len(recs) >= n {
			return recs
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %d audit records", n)
	return nil
}

type recordingRepo struct {
	mu    sync.Mutex
	recs  []domain.ChatAudit
	block chan struct{}
	busy  int
}

func (r *recordingRepo) RecordChat(_ context.Context, rec *domain.ChatAudit) error {
	if r.block != nil {
		<-r.block
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.busy > 0 {
		r.busy--
		return errors.New("SQLITE_BUSY")
	}
	r.recs = append(r.recs, *rec)
	return nil
}

func (r *recordingRepo) ids() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.recs))
	for i, rec := range r.recs {
		out[i] = rec.ID
	}
	return out
}
