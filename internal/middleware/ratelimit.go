package middleware

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

// Limiter is a fixed-window request counter. Windows reset wholesale
// rather than sliding, which is enough to blunt brute-force attempts
// against the auth endpoints without per-request allocations.
type Limiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	max     int
	window  time.Duration
}

type bucket struct {
	count   int
	resetAt time.Time
}

func NewLimiter(max int, window time.Duration) *Limiter {
	l := &Limiter{
		buckets: make(map[string]*bucket),
		max:     max,
		window:  window,
	}
	go l.sweep()
	return l
}

// Allow counts one request against key and reports whether it still
// fits in the current window.
func (l *Limiter) Allow(key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	now := time.Now()
	b, ok := l.buckets[key]
	if !ok || now.After(b.resetAt) {
		l.buckets[key] = &bucket{count: 1, resetAt: now.Add(l.window)}
		return l.max >= 1
	}
	b.count++
	return b.count <= l.max
}

func (l *Limiter) sweep() {
	tick := time.NewTicker(time.Minute)
	for range tick.C {
		l.mu.Lock()
		now := time.Now()
		for k, b := range l.buckets {
			if now.After(b.resetAt) {
				delete(l.buckets, k)
			}
		}
		l.mu.Unlock()
	}
}

func tooManyRequests(c *gin.Context) {
	c.AbortWithStatusJSON(http.StatusTooManyRequests, gin.H{"error": "too many requests", "code": "RATE_LIMITED"})
}

// RateLimit limits by client IP.
func RateLimit(l *Limiter) gin.HandlerFunc {
	return func(c *gin.Context) {
		if !l.Allow(c.ClientIP()) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

// RateLimitByCredential limits by the first of the given JSON body
// fields that is present, scoped to the client IP. Keying login and
// register on the submitted email means one attacker cannot spread a
// guess run across a NAT's shared address, and hammering one account
// does not lock out everyone behind it. The body is restored for the
// handler.
func RateLimitByCredential(l *Limiter, fields ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		key := c.ClientIP()
		if cred := credentialFromBody(c, fields); cred != "" {
			key += "|" + cred
		}
		if !l.Allow(key) {
			tooManyRequests(c)
			return
		}
		c.Next()
	}
}

func credentialFromBody(c *gin.Context, fields []string) string {
	if c.Request.Body == nil {
		return ""
	}
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, 1<<16))
	if err != nil {
		return ""
	}
	c.Request.Body = io.NopCloser(bytes.NewReader(body))

	var payload map[string]json.RawMessage
	if json.Unmarshal(body, &payload) != nil {
		return ""
	}
	for _, f := range fields {
		raw, ok := payload[f]
		if !ok {
			continue
		}
		var v string
		if json.Unmarshal(raw, &v) == nil && v != "" {
			return strings.ToLower(strings.TrimSpace(v))
		}
	}
	return ""
}
