package middleware

import (
	"context"
	"log/slog"
	"math"
	"net/http"
	"strconv"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate-limit check.
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter decides whether a request keyed by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) Decision
}

// AllowAll never limits. It stands in when limiting is disabled.
type AllowAll struct{}

// Allow always admits the request.
func (AllowAll) Allow(context.Context, string) Decision {
	return Decision{Allowed: true}
}

type memoryEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// MemoryLimiter is a per-key token bucket held in process memory. Each key
// may spend limit requests per window, refilled continuously.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*memoryEntry
	limit   int
	window  time.Duration
	every   rate.Limit
	done    chan struct{}
	once    sync.Once
}

// NewMemoryLimiter creates a limiter and starts the background eviction
// goroutine. Call Close to stop it.
func NewMemoryLimiter(limit int, window time.Duration) *MemoryLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	m := &MemoryLimiter{
		entries: make(map[string]*memoryEntry),
		limit:   limit,
		window:  window,
		every:   rate.Limit(float64(limit) / window.Seconds()),
		done:    make(chan struct{}),
	}
	go m.evictLoop()
	return m
}

// Allow consumes one token for key.
func (m *MemoryLimiter) Allow(_ context.Context, key string) Decision {
	now := time.Now()

	m.mu.Lock()
	e, ok := m.entries[key]
	if !ok {
		e = &memoryEntry{limiter: rate.NewLimiter(m.every, m.limit)}
		m.entries[key] = e
	}
	e.lastSeen = now
	m.mu.Unlock()

	d := Decision{Limit: m.limit}
	if e.limiter.AllowN(now, 1) {
		d.Allowed = true
		d.Remaining = int(math.Max(0, e.limiter.TokensAt(now)))
		return d
	}

	missing := 1 - e.limiter.TokensAt(now)
	d.RetryAfter = time.Duration(missing / float64(m.every) * float64(time.Second))
	return d
}

// Close stops the eviction goroutine.
func (m *MemoryLimiter) Close() {
	m.once.Do(func() { close(m.done) })
}

// evictLoop drops keys idle for a full window. An idle key's bucket is full
// again, so forgetting it changes nothing.
func (m *MemoryLimiter) evictLoop() {
	ticker := time.NewTicker(m.window)
	defer ticker.Stop()
	for {
		select {
		case <-m.done:
			return
		case now := <-ticker.C:
			m.evict(now)
		}
	}
}

func (m *MemoryLimiter) evict(now time.Time) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cutoff := now.Add(-m.window)
	for key, e := range m.entries {
		if e.lastSeen.Before(cutoff) {
			delete(m.entries, key)
		}
	}
}

func (m *MemoryLimiter) size() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}

// tokenBucketScript refills and spends a bucket atomically inside Redis.
// Returns {allowed, remaining, retry_after_ms}.
const tokenBucketScript = `
local key = KEYS[1]
local capacity = tonumber(ARGV[1])
local rate = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local ttl = tonumber(ARGV[4])

local bucket = redis.call('HMGET', key, 'tokens', 'updated_at')
local tokens = tonumber(bucket[1])
local updated_at = tonumber(bucket[2])

if tokens == nil or updated_at == nil then
    tokens = capacity
    updated_at = now
end

local elapsed = math.max(0, now - updated_at)
tokens = math.min(capacity, tokens + elapsed * rate)

local allowed = 0
local retry_after = 0

if tokens >= 1 then
    tokens = tokens - 1
    allowed = 1
else
    retry_after = (1 - tokens) / rate
end

redis.call('HSET', key, 'tokens', tokens, 'updated_at', now)
redis.call('EXPIRE', key, ttl)

return {allowed, math.floor(tokens), math.ceil(retry_after * 1000)}
`

var tokenBucket = redis.NewScript(tokenBucketScript)

// RedisLimiter is a token bucket shared across server instances. When Redis
// is unreachable it admits the request.
type RedisLimiter struct {
	client *redis.Client
	prefix string
	limit  int
	window time.Duration
}

// NewRedisLimiter creates a Redis-backed limiter with the same limit/window
// semantics as MemoryLimiter.
func NewRedisLimiter(client *redis.Client, prefix string, limit int, window time.Duration) *RedisLimiter {
	if limit <= 0 {
		limit = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, limit: limit, window: window}
}

// Allow spends one token for key.
func (l *RedisLimiter) Allow(ctx context.Context, key string) Decision {
	ratePerSec := float64(l.limit) / l.window.Seconds()
	now := float64(time.Now().UnixNano()) / 1e9
	ttl := int(math.Ceil(l.window.Seconds())) * 2

	res, err := tokenBucket.Run(ctx, l.client, []string{l.prefix + key}, l.limit, ratePerSec, now, ttl).Result()
	if err != nil {
		slog.Warn("Rate limiter unavailable, allowing request", "error", err)
		return Decision{Allowed: true, Limit: l.limit, Remaining: l.limit}
	}

	d := Decision{Limit: l.limit}
	if arr, ok := res.([]interface{}); ok && len(arr) >= 3 {
		if v, ok := arr[0].(int64); ok {
			d.Allowed = v == 1
		}
		if v, ok := arr[1].(int64); ok {
			d.Remaining = int(v)
		}
		if v, ok := arr[2].(int64); ok {
			d.RetryAfter = time.Duration(v) * time.Millisecond
		}
	}
	return d
}

// RateLimit rejects requests over the limit with 429 and a Retry-After header.
// keyFn selects the bucket for a request.
func RateLimit(l Limiter, keyFn func(*http.Request) string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			d := l.Allow(r.Context(), keyFn(r))
			if !d.Allowed {
				WriteRateLimited(w, d)
				return
			}
			if d.Limit > 0 {
				w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
				w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
			}
			next.ServeHTTP(w, r)
		})
	}
}

// RetryAfterSeconds rounds d up to whole seconds, at least 1.
func RetryAfterSeconds(d Decision) int {
	secs := int(math.Ceil(d.RetryAfter.Seconds()))
	if secs < 1 {
		secs = 1
	}
	return secs
}

// WriteRateLimited writes the 429 JSON response for a rejected decision.
func WriteRateLimited(w http.ResponseWriter, d Decision) {
	w.Header().Set("Retry-After", strconv.Itoa(RetryAfterSeconds(d)))
	if d.Limit > 0 {
		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(d.Limit))
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusTooManyRequests)
	_, _ = w.Write([]byte(`{"error":"rate limit exceeded"}` + "\n"))
}
