package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-redis/redis/v8"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"storefront-api/models"
	"storefront-api/services/auth"
)

var okHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
})

type stubValidator struct {
	user *models.AdminUser
	err  error
}

func (s stubValidator) ValidateToken(string) (*models.AdminUser, error) {
	return s.user, s.err
}

func serve(h http.Handler, r *http.Request) *httptest.ResponseRecorder {
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, r)
	return rec
}

func TestAuthMiddleware(t *testing.T) {
	admin := &models.AdminUser{Username: "root", IsActive: true}

	var seen *models.AdminUser
	capture := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetUserFromContext(r.Context())
	})

	tests := []struct {
		name   string
		header string
		v      stubValidator
		status int
	}{
		{"missing header", "", stubValidator{user: admin}, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", stubValidator{user: admin}, http.StatusUnauthorized},
		{"expired", "Bearer abc", stubValidator{err: auth.ErrTokenExpired}, http.StatusUnauthorized},
		{"valid", "Bearer abc", stubValidator{user: admin}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			seen = nil
			req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}

			rec := serve(AuthMiddleware(tt.v, nil)(capture), req)

			assert.Equal(t, tt.status, rec.Code)
			if tt.status == http.StatusOK {
				assert.Equal(t, admin, seen)
			} else {
				assert.Nil(t, seen)
			}
		})
	}
}

func TestAuthMiddleware_ExpiredMessage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/api/admin/products", nil)
	req.Header.Set("Authorization", "Bearer abc")

	rec := serve(AuthMiddleware(stubValidator{err: auth.ErrTokenExpired}, nil)(okHandler), req)
	assert.Contains(t, rec.Body.String(), "Token expired")
}

func TestRequireAdmin(t *testing.T) {
	rec := serve(RequireAdmin()(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	chain := AuthMiddleware(stubValidator{user: &models.AdminUser{Username: "x", IsActive: false}}, nil)(RequireAdmin()(okHandler))
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer abc")
	assert.Equal(t, http.StatusForbidden, serve(chain, req).Code)
}

func newTestLimiter(t *testing.T, trustedProxies ...string) (*RateLimiter, *miniredis.Miniredis) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { client.Close() })
	trusted, err := ParseTrustedProxies(trustedProxies)
	require.NoError(t, err)
	rl := NewRateLimiter(client, trusted, nil)
	now := time.Date(2026, 10, 19, 12, 0, 30, 0, time.UTC)
	rl.now = func() time.Time { return now }
	return rl, mr
}

func TestRateLimiter_BlocksAfterLimit(t *testing.T) {
	rl, _ := newTestLimiter(t)
	h := rl.RateLimitMiddleware()(okHandler)

	for i := 0; i < 5; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		rec := serve(h, req)
		require.Equal(t, http.StatusOK, rec.Code, "attempt %d", i+1)
		assert.Equal(t, "5", rec.Header().Get("X-RateLimit-Limit"))
	}

	rec := serve(h, httptest.NewRequest(http.MethodPost, "/api/admin/login", nil))
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "0", rec.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, rec.Header().Get("Retry-After"))
	assert.Contains(t, rec.Body.String(), "Too many login attempts")

	other := httptest.NewRequest(http.MethodGet, "/api/products", nil)
	assert.Equal(t, http.StatusOK, serve(h, other).Code, "limits are per endpoint")
}

func TestRateLimiter_FailsOpen(t *testing.T) {
	rl, mr := newTestLimiter(t)
	mr.Close()

	rec := serve(rl.RateLimitMiddleware()(okHandler), httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestConfigForEndpoint(t *testing.T) {
	assert.Equal(t, 5, configForEndpoint("/api/admin/login").Requests)
	assert.Equal(t, 60, configForEndpoint("/api/admin/products").Requests)
	assert.Equal(t, 120, configForEndpoint("/api/cart/custom-hat").Requests)
	assert.Equal(t, defaultConfig, configForEndpoint("/api/products"))
}

func TestRateLimiter_ForwardedForCannotBypassLoginLimit(t *testing.T) {
	rl, _ := newTestLimiter(t)
	h := rl.RateLimitMiddleware()(okHandler)

	last := 0
	for i := 0; i < 6; i++ {
		req := httptest.NewRequest(http.MethodPost, "/api/admin/login", nil)
		req.RemoteAddr = "198.51.100.7:4000"
		req.Header.Set("X-Forwarded-For", fmt.Sprintf("203.0.113.%d", i))
		last = serve(h, req).Code
	}
	assert.Equal(t, http.StatusTooManyRequests, last)
}

func TestClientIP(t *testing.T) {
	untrusted, _ := newTestLimiter(t)
	behindProxy, _ := newTestLimiter(t, "10.0.0.0/8", "192.168.1.5")

	tests := []struct {
		name    string
		rl      *RateLimiter
		remote  string
		headers map[string]string
		want    string
	}{
		{"peer address", untrusted, "10.0.0.1:5555", nil, "10.0.0.1"},
		{"untrusted peer ignores forwarded for", untrusted, "198.51.100.7:4000",
			map[string]string{"X-Forwarded-For": "203.0.113.9"}, "198.51.100.7"},
		{"untrusted peer ignores real ip", untrusted, "198.51.100.7:4000",
			map[string]string{"X-Real-IP": "203.0.113.9"}, "198.51.100.7"},
		{"trusted proxy", behindProxy, "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "203.0.113.9"}, "203.0.113.9"},
		{"spoofed leftmost hop is skipped", behindProxy, "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "1.2.3.4, 203.0.113.9, 10.0.0.2"}, "203.0.113.9"},
		{"single trusted ip", behindProxy, "192.168.1.5:80",
			map[string]string{"X-Real-IP": "203.0.113.10"}, "203.0.113.10"},
		{"garbage header falls back to peer", behindProxy, "10.0.0.1:5555",
			map[string]string{"X-Forwarded-For": "not-an-ip"}, "10.0.0.1"},
		{"ipv6 peer", untrusted, "[2001:db8::1]:443", nil, "2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/", nil)
			req.RemoteAddr = tt.remote
			for k, v := range tt.headers {
				req.Header.Set(k, v)
			}
			assert.Equal(t, tt.want, tt.rl.clientIP(req))
		})
	}
}

func TestParseTrustedProxies(t *testing.T) {
	nets, err := ParseTrustedProxies([]string{"10.0.0.0/8", " 192.168.1.5 ", "", "::1"})
	require.NoError(t, err)
	require.Len(t, nets, 3)
	assert.Equal(t, "192.168.1.5/32", nets[1].String())
	assert.Equal(t, "::1/128", nets[2].String())

	_, err = ParseTrustedProxies([]string{"proxy.internal"})
	assert.Error(t, err)
}

func TestSecurityHeaders(t *testing.T) {
	rec := serve(SecurityHeadersMiddleware(okHandler), httptest.NewRequest(http.MethodGet, "/api/cart", nil))
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "no-cache, no-store, must-revalidate", rec.Header().Get("Cache-Control"))
}

func TestLoggingMiddleware_SetsRequestID(t *testing.T) {
	rec := serve(LoggingMiddleware(nil)(okHandler), httptest.NewRequest(http.MethodGet, "/", nil))
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("X-Request-ID", "abc")
	assert.Equal(t, "abc", serve(LoggingMiddleware(nil)(okHandler), req).Header().Get("X-Request-ID"))
}

func TestCORSMiddleware_Preflight(t *testing.T) {
	rec := serve(CORSMiddleware("https://shop.example.com")(http.NotFoundHandler()),
		httptest.NewRequest(http.MethodOptions, "/api/cart", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "https://shop.example.com", rec.Header().Get("Access-Control-Allow-Origin"))
	assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
}
