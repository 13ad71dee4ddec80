package middleware

import (
	"math"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"assessment-backend/internal/shared/server/respond"
)

const (
	defaultRateLimitGroup = "DEFAULT"
	// GenerateRateLimitGroup covers quiz generation, which calls the model provider.
	GenerateRateLimitGroup = "GENERATE"

	limiterIdleTTL = 10 * time.Minute
	sweepEvery     = 1024
)

// RateLimitRule is a token bucket: Rate tokens per second up to Burst.
// A zero Rate or Burst disables limiting for the group.
type RateLimitRule struct {
	Rate  float64
	Burst int
}

type RateLimitConfig struct {
	Rules        map[string]RateLimitRule
	DefaultGroup string
	GroupFor     func(*gin.Context) string
	Limiter      *RateLimiter
}

// RateLimiter keeps one token bucket per principal and group. Buckets idle
// longer than ten minutes are dropped so guest ids do not accumulate.
type RateLimiter struct {
	mu      sync.Mutex
	buckets map[string]*bucket
	now     func() time.Time
	calls   int
}

type bucket struct {
	lim      *rate.Limiter
	lastSeen time.Time
}

func NewRateLimiter(now func() time.Time) *RateLimiter {
	if now == nil {
		now = time.Now
	}
	return &RateLimiter{
		buckets: make(map[string]*bucket),
		now:     now,
	}
}

func RateLimit(cfg RateLimitConfig) gin.HandlerFunc {
	if cfg.Limiter == nil {
		cfg.Limiter = NewRateLimiter(nil)
	}
	if cfg.DefaultGroup == "" {
		cfg.DefaultGroup = defaultRateLimitGroup
	}
	return func(c *gin.Context) {
		group := cfg.DefaultGroup
		if cfg.GroupFor != nil {
			if g := strings.TrimSpace(cfg.GroupFor(c)); g != "" {
				group = g
			}
		}
		rule, ok := cfg.Rules[group]
		if !ok {
			c.Next()
			return
		}
		principal := strings.TrimSpace(UserIDFromContext(c))
		if principal == "" {
			principal = strings.TrimSpace(c.ClientIP())
		}
		allowed, retryAfter := cfg.Limiter.Allow(principal+"|"+group, rule)
		if allowed {
			c.Next()
			return
		}
		retryAfterMs := max(int(retryAfter/time.Millisecond), 1000)
		c.Header("Retry-After", strconv.Itoa(int(math.Ceil(float64(retryAfterMs)/1000))))
		respond.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many requests", gin.H{
			"group":        group,
			"retryAfterMs": retryAfterMs,
		})
	}
}

// Allow takes a token for key. When none is available it reports how long
// until one will be, without consuming it.
func (l *RateLimiter) Allow(key string, rule RateLimitRule) (bool, time.Duration) {
	if l == nil || rule.Rate <= 0 || rule.Burst <= 0 {
		return true, 0
	}
	now := l.now()

	l.mu.Lock()
	l.calls++
	if l.calls%sweepEvery == 0 {
		l.sweep(now)
	}
	b, ok := l.buckets[key]
	if !ok {
		b = &bucket{lim: rate.NewLimiter(rate.Limit(rule.Rate), rule.Burst)}
		l.buckets[key] = b
	}
	b.lastSeen = now
	l.mu.Unlock()

	res := b.lim.ReserveN(now, 1)
	if !res.OK() {
		return false, time.Second
	}
	if delay := res.DelayFrom(now); delay > 0 {
		res.CancelAt(now)
		return false, delay
	}
	return true, 0
}

// Len reports the number of live buckets.
func (l *RateLimiter) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.buckets)
}

func (l *RateLimiter) sweep(now time.Time) {
	for key, b := range l.buckets {
		if now.Sub(b.lastSeen) > limiterIdleTTL {
			delete(l.buckets, key)
		}
	}
}
