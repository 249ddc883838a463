package middleware

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-redis/redis/v8"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"storefront-api/utils"
)

type RateLimitConfig struct {
	Requests int
	Window   time.Duration
	Message  string
}

var endpointConfigs = map[string]RateLimitConfig{
	"/api/admin/login": {
		Requests: 5,
		Window:   15 * time.Minute,
		Message:  "Too many login attempts. Please try again in 15 minutes.",
	},
	"/api/checkout/submit": {
		Requests: 10,
		Window:   10 * time.Minute,
		Message:  "Too many order attempts. Please wait a few minutes.",
	},
	"/api/customizer/check": {
		Requests: 300,
		Window:   time.Minute,
		Message:  "Too many requests. Please slow down.",
	},
}

var prefixConfigs = []struct {
	prefix string
	config RateLimitConfig
}{
	{"/api/admin/", RateLimitConfig{Requests: 60, Window: time.Minute, Message: "Too many admin requests. Please slow down."}},
	{"/api/cart", RateLimitConfig{Requests: 120, Window: time.Minute, Message: "Too many cart updates. Please slow down."}},
}

var defaultConfig = RateLimitConfig{
	Requests: 120,
	Window:   time.Minute,
	Message:  "Rate limit exceeded. Please slow down your requests.",
}

// Trims the window and admits the request when under the limit, atomically.
var rateLimitScript = redis.NewScript(`
	local key = KEYS[1]
	local window_start = tonumber(ARGV[1])
	local limit = tonumber(ARGV[2])
	local now = tonumber(ARGV[3])
	local member = ARGV[4]
	local ttl = tonumber(ARGV[5])

	redis.call('ZREMRANGEBYSCORE', key, 0, window_start - 1)

	local current = redis.call('ZCARD', key)
	if current < limit then
		redis.call('ZADD', key, now, member)
		redis.call('EXPIRE', key, ttl)
		return {1, limit - current - 1}
	end
	return {0, 0}
`)

type RateLimiter struct {
	client  *redis.Client
	trusted []*net.IPNet
	logger  *zap.Logger
	now     func() time.Time
}

// NewRateLimiter shares the queue's Redis client. Forwarding headers are only read
// from requests whose peer address is inside one of trusted.
func NewRateLimiter(client *redis.Client, trusted []*net.IPNet, logger *zap.Logger) *RateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RateLimiter{client: client, trusted: trusted, logger: logger, now: time.Now}
}

// ParseTrustedProxies accepts plain IPs and CIDR ranges.
func ParseTrustedProxies(entries []string) ([]*net.IPNet, error) {
	var nets []*net.IPNet
	for _, entry := range entries {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		if !strings.Contains(entry, "/") {
			ip := net.ParseIP(entry)
			if ip == nil {
				return nil, fmt.Errorf("invalid trusted proxy %q", entry)
			}
			bits := 32
			if ip.To4() == nil {
				bits = 128
			}
			entry = fmt.Sprintf("%s/%d", ip.String(), bits)
		}
		_, ipNet, err := net.ParseCIDR(entry)
		if err != nil {
			return nil, fmt.Errorf("invalid trusted proxy %q: %w", entry, err)
		}
		nets = append(nets, ipNet)
	}
	return nets, nil
}

// RateLimitMiddleware fails open: a Redis error lets the request through.
func (rl *RateLimiter) RateLimitMiddleware() func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			config := configForEndpoint(r.URL.Path)
			key := rateLimitKey(r, rl.clientIP(r))

			allowed, remaining, resetTime, err := rl.check(r.Context(), key, config)
			if err != nil {
				rl.logger.Error("rate limit check failed", zap.String("key", key), zap.Error(err))
				next.ServeHTTP(w, r)
				return
			}

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(config.Requests))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetTime.Unix(), 10))

			if !allowed {
				rl.logger.Warn("rate limit exceeded", zap.String("key", key), zap.String("path", r.URL.Path))
				retryAfter := int64(resetTime.Sub(rl.now()).Seconds())
				if retryAfter < 1 {
					retryAfter = 1
				}
				w.Header().Set("Retry-After", strconv.FormatInt(retryAfter, 10))
				utils.SendErrorResponse(w, http.StatusTooManyRequests, config.Message)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

func configForEndpoint(path string) RateLimitConfig {
	if config, ok := endpointConfigs[path]; ok {
		return config
	}
	for _, p := range prefixConfigs {
		if strings.HasPrefix(path, p.prefix) {
			return p.config
		}
	}
	return defaultConfig
}

func rateLimitKey(r *http.Request, ip string) string {
	path := r.URL.Path

	if path == "/api/admin/login" {
		sum := sha256.Sum256([]byte(r.UserAgent()))
		return fmt.Sprintf("rate_limit:login:%s:%s", ip, hex.EncodeToString(sum[:4]))
	}
	return fmt.Sprintf("rate_limit:%s:%s", ip, path)
}

// clientIP is the peer address unless the peer is a trusted proxy. Then X-Forwarded-For
// is walked right to left and the first hop that is not itself trusted wins.
func (rl *RateLimiter) clientIP(r *http.Request) string {
	remote := r.RemoteAddr
	if host, _, err := net.SplitHostPort(remote); err == nil {
		remote = host
	}
	if !rl.isTrusted(remote) {
		return remote
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		for i := len(hops) - 1; i >= 0; i-- {
			hop := strings.TrimSpace(hops[i])
			if net.ParseIP(hop) == nil {
				break
			}
			if !rl.isTrusted(hop) {
				return hop
			}
		}
	}
	if ip := strings.TrimSpace(r.Header.Get("X-Real-IP")); net.ParseIP(ip) != nil {
		return ip
	}
	return remote
}

func (rl *RateLimiter) isTrusted(addr string) bool {
	ip := net.ParseIP(addr)
	if ip == nil {
		return false
	}
	for _, n := range rl.trusted {
		if n.Contains(ip) {
			return true
		}
	}
	return false
}

func (rl *RateLimiter) check(ctx context.Context, key string, config RateLimitConfig) (bool, int, time.Time, error) {
	now := rl.now()
	windowStart := now.Truncate(config.Window)
	windowEnd := windowStart.Add(config.Window)
	ttl := int64(config.Window.Seconds()) + 60

	result, err := rateLimitScript.Run(ctx, rl.client, []string{key},
		windowStart.Unix(), config.Requests, now.Unix(), uuid.New().String(), ttl).Result()
	if err != nil {
		return false, 0, time.Time{}, err
	}

	values, ok := result.([]interface{})
	if !ok || len(values) != 2 {
		return false, 0, time.Time{}, fmt.Errorf("unexpected redis result format")
	}
	allowed, ok1 := values[0].(int64)
	remaining, ok2 := values[1].(int64)
	if !ok1 || !ok2 {
		return false, 0, time.Time{}, fmt.Errorf("failed to parse redis result")
	}

	return allowed == 1, int(remaining), windowEnd, nil
}

// SecurityHeadersMiddleware sets conservative browser security headers on every response.
func SecurityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'")

		if strings.HasPrefix(r.URL.Path, "/api/") {
			w.Header().Set("Cache-Control", "no-cache, no-store, must-revalidate")
			w.Header().Set("Pragma", "no-cache")
			w.Header().Set("Expires", "0")
		}

		next.ServeHTTP(w, r)
	})
}
