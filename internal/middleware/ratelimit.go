package middleware

import (
	"net/http"
	"os"
	"strconv"
	"sync"
	"time"

	"parks-geojson/internal/logger"
)

// TokenBucket is a per-second limiter. Requests over the limit are dropped with 429, never queued.
type TokenBucket struct {
	capacity int
	tokens   int
	lastSec  int64
	mu       sync.Mutex
	now      func() time.Time
}

func NewTokenBucket(qps int) *TokenBucket {
	return &TokenBucket{capacity: qps, tokens: qps, lastSec: time.Now().Unix(), now: time.Now}
}

func (tb *TokenBucket) allow() bool {
	tb.mu.Lock()
	defer tb.mu.Unlock()
	nowSec := tb.now().Unix()
	if tb.lastSec != nowSec {
		tb.lastSec = nowSec
		tb.tokens = tb.capacity
	}
	if tb.tokens > 0 {
		tb.tokens--
		return true
	}
	return false
}

// Limit wraps next with tb.
func Limit(tb *TokenBucket, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !tb.allow() {
			logger.L().Debug().Str("path", r.URL.Path).Str("ip", r.RemoteAddr).Msg("rate_limited")
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Wrap applies the limiter when RATE_LIMIT_ENABLED=true, at RATE_LIMIT_QPS (default 200).
func Wrap(next http.Handler) http.Handler {
	if os.Getenv("RATE_LIMIT_ENABLED") != "true" {
		return next
	}
	qps := 200
	if s := os.Getenv("RATE_LIMIT_QPS"); s != "" {
		if n, e := strconv.Atoi(s); e == nil && n > 0 {
			qps = n
		}
	}
	logger.L().Info().Int("qps", qps).Msg("rate_limit_enabled")
	return Limit(NewTokenBucket(qps), next)
}
