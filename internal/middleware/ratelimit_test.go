package middleware

import (
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestLimiterAllowsUpToMax(t *testing.T) {
	l := NewLimiter(3, time.Minute)
	for i := 0; i < 3; i++ {
		assert.True(t, l.Allow("1.2.3.4"), "request %d should pass", i)
	}
	assert.False(t, l.Allow("1.2.3.4"))
}

func TestLimiterIsolatesKeys(t *testing.T) {
	l := NewLimiter(1, time.Minute)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	assert.True(t, l.Allow("b"))
}

func TestLimiterWindowReset(t *testing.T) {
	l := NewLimiter(1, 20*time.Millisecond)
	assert.True(t, l.Allow("a"))
	assert.False(t, l.Allow("a"))
	time.Sleep(30 * time.Millisecond)
	assert.True(t, l.Allow("a"))
}

func newCredentialLimitedRouter(l *Limiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/login", RateLimitByCredential(l, "email"), func(c *gin.Context) {
		// The handler must still see the full body after the
		// middleware has read it.
		body, _ := io.ReadAll(c.Request.Body)
		c.String(http.StatusOK, string(body))
	})
	return r
}

func postLogin(r *gin.Engine, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, "/login", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimitByCredentialKeysOnEmail(t *testing.T) {
	r := newCredentialLimitedRouter(NewLimiter(2, time.Minute))

	for i := 0; i < 2; i++ {
		w := postLogin(r, `{"email":"ada@example.com","password":"x"}`)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	w := postLogin(r, `{"email":"ada@example.com","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	// A different account from the same address has its own budget.
	w = postLogin(r, `{"email":"bola@example.com","password":"x"}`)
	assert.Equal(t, http.StatusOK, w.Code)

	// Case and whitespace do not mint fresh budgets.
	w = postLogin(r, `{"email":" ADA@example.com ","password":"x"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRateLimitByCredentialRestoresBody(t *testing.T) {
	r := newCredentialLimitedRouter(NewLimiter(5, time.Minute))
	body := `{"email":"ada@example.com","password":"secret"}`
	w := postLogin(r, body)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, body, w.Body.String())
}

func TestRateLimitByCredentialFallsBackToIP(t *testing.T) {
	r := newCredentialLimitedRouter(NewLimiter(1, time.Minute))
	w := postLogin(r, `not json`)
	assert.Equal(t, http.StatusOK, w.Code)
	w = postLogin(r, `also not json`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
}
