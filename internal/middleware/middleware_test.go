package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/akolanti/PersonaRAG/internal/config"
	"github.com/akolanti/PersonaRAG/internal/domain/chatModel"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withAuth(t *testing.T, cfg config.ServerConfig) {
	t.Helper()
	previous := auth
	Init(cfg)
	t.Cleanup(func() { auth = previous })
}

type captured struct {
	called bool
	user   chatModel.User
	trace  string
}

func (c *captured) handler(w http.ResponseWriter, r *http.Request) {
	c.called = true
	c.user = chatModel.UserFrom(r.Context())
	c.trace = config.TraceID(r.Context())
	w.WriteHeader(http.StatusNoContent)
}

func request(remote string, headers map[string]string) *http.Request {
	req := httptest.NewRequest(http.MethodGet, "/api/personas", nil)
	req.RemoteAddr = remote
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func TestWrap_Authentication(t *testing.T) {
	withAuth(t, config.ServerConfig{AuthToken: "s3cret"})

	tests := []struct {
		name   string
		header string
		status int
	}{
		{"missing header", "", http.StatusUnauthorized},
		{"not bearer", "Basic s3cret", http.StatusUnauthorized},
		{"wrong token", "Bearer nope", http.StatusUnauthorized},
		{"valid token", "Bearer s3cret", http.StatusNoContent},
	}
	for i, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &captured{}
			rec := httptest.NewRecorder()
			headers := map[string]string{}
			if tt.header != "" {
				headers["Authorization"] = tt.header
			}
			Wrap(c.handler)(rec, request(fmt.Sprintf("10.0.1.%d:4000", i+1), headers))

			assert.Equal(t, tt.status, rec.Code)
			assert.Equal(t, tt.status == http.StatusNoContent, c.called)
		})
	}
}

func TestWrap_NoTokenConfiguredRejects(t *testing.T) {
	withAuth(t, config.ServerConfig{})

	c := &captured{}
	rec := httptest.NewRecorder()
	Wrap(c.handler)(rec, request("10.0.2.1:4000", map[string]string{"Authorization": "Bearer anything"}))

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.False(t, c.called)
}

func TestWrap_BypassSkipsToken(t *testing.T) {
	withAuth(t, config.ServerConfig{NoAuthBypass: true})

	c := &captured{}
	rec := httptest.NewRecorder()
	Wrap(c.handler)(rec, request("10.0.3.1:4000", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.True(t, c.called)
}

func TestWrap_ResolvesIdentity(t *testing.T) {
	withAuth(t, config.ServerConfig{NoAuthBypass: true})

	c := &captured{}
	Wrap(c.handler)(httptest.NewRecorder(), request("10.0.4.1:4000", map[string]string{
		config.HeaderUserName:      " Asha ",
		config.HeaderUserTradition: "Hindu",
		config.HeaderUserAge:       "12",
	}))
	require.True(t, c.called)
	assert.Equal(t, chatModel.User{Name: "Asha", Age: 12, Tradition: "hindu"}, c.user)

	c = &captured{}
	Wrap(c.handler)(httptest.NewRecorder(), request("10.0.4.2:4000", map[string]string{config.HeaderUserAge: "twelve"}))
	require.True(t, c.called)
	assert.True(t, c.user.IsGuest())
	assert.Zero(t, c.user.Age)
}

func TestWrap_TraceIdPropagates(t *testing.T) {
	withAuth(t, config.ServerConfig{NoAuthBypass: true})

	c := &captured{}
	rec := httptest.NewRecorder()
	Wrap(c.handler)(rec, request("10.0.5.1:4000", map[string]string{"X-Trace-Id": "trace-123"}))
	assert.Equal(t, "trace-123", c.trace)
	assert.Equal(t, "trace-123", rec.Header().Get("X-Trace-Id"))

	c = &captured{}
	rec = httptest.NewRecorder()
	Wrap(c.handler)(rec, request("10.0.5.2:4000", nil))
	assert.NotEmpty(t, c.trace)
	assert.Equal(t, c.trace, rec.Header().Get("X-Trace-Id"))
}

func TestWrap_RateLimitPerIP(t *testing.T) {
	withAuth(t, config.ServerConfig{NoAuthBypass: true})
	c := &captured{}
	h := Wrap(c.handler)

	codes := make([]int, 0, config.BURST_RATE_LIMIT_PER_SECOND+1)
	for range config.BURST_RATE_LIMIT_PER_SECOND + 1 {
		rec := httptest.NewRecorder()
		h(rec, request("10.0.6.1:4000", nil))
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, http.StatusTooManyRequests, codes[len(codes)-1])

	rec := httptest.NewRecorder()
	h(rec, request("10.0.6.2:4000", nil))
	assert.Equal(t, http.StatusNoContent, rec.Code)
}

func TestWrapPublic_SkipsAuth(t *testing.T) {
	withAuth(t, config.ServerConfig{AuthToken: "s3cret"})

	c := &captured{}
	rec := httptest.NewRecorder()
	WrapPublic(c.handler)(rec, request("10.0.7.1:4000", nil))

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.NotEmpty(t, c.trace)
}

func TestIPRateLimiter_SweepsIdleVisitors(t *testing.T) {
	l := NewIPRateLimiter(1, 1)
	l.idleAfter = 10 * time.Millisecond

	first := l.GetLimiter("10.9.0.1")
	l.GetLimiter("10.9.0.2")
	assert.Same(t, first, l.GetLimiter("10.9.0.1"))
	assert.Equal(t, 2, l.Tracked())

	time.Sleep(30 * time.Millisecond)
	l.GetLimiter("10.9.0.3")
	assert.Equal(t, 1, l.Tracked())
}
