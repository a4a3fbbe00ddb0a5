package middleware

import (
	"net/http"
	"sync"
	"time"

	"github.com/namnv1120/SEP490-FA25-G127-sub000/internal/apierror"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// ── API rate limiter ──────────────────────────────────────────────────────────
// Fixed window per client IP. Expired windows are swept at most once per
// purgeInterval from inside the request path, so no background goroutine
// outlives the engine.

const purgeInterval = 5 * time.Minute

type rateEntry struct {
	count     int
	windowEnd time.Time
}

type ipLimiter struct {
	mu        sync.Mutex
	entries   map[string]*rateEntry
	limit     int
	window    time.Duration
	nextPurge time.Time
	now       func() time.Time
}

func newIPLimiter(limit int, window time.Duration) *ipLimiter {
	return &ipLimiter{entries: make(map[string]*rateEntry), limit: limit, window: window, now: time.Now}
}

// allow records one request from ip and reports whether it fits the window,
// plus when the window resets.
func (l *ipLimiter) allow(ip string) (bool, time.Time) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	if now.After(l.nextPurge) {
		l.purge(now)
		l.nextPurge = now.Add(purgeInterval)
	}

	entry, ok := l.entries[ip]
	if !ok || now.After(entry.windowEnd) {
		entry = &rateEntry{windowEnd: now.Add(l.window)}
		l.entries[ip] = entry
	}
	entry.count++
	return entry.count <= l.limit, entry.windowEnd
}

func (l *ipLimiter) purge(now time.Time) {
	purged := 0
	for ip, entry := range l.entries {
		if now.After(entry.windowEnd) {
			delete(l.entries, ip)
			purged++
		}
	}
	if purged > 0 {
		log.Debug().Int("purged", purged).Int("remaining", len(l.entries)).Msg("rate limiter entries purged")
	}
}

// RateLimiter allows limit requests per window per client IP.
func RateLimiter(limit int, window time.Duration) gin.HandlerFunc {
	l := newIPLimiter(limit, window)
	return func(c *gin.Context) {
		ok, reset := l.allow(c.ClientIP())
		if !ok {
			c.Header("Retry-After", reset.UTC().Format(http.TimeFormat))
			c.AbortWithStatusJSON(http.StatusTooManyRequests, apierror.New("too many requests, try again shortly"))
			return
		}
		c.Next()
	}
}
