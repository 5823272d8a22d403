package http

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/alem-hub/studyhub/internal/infrastructure/metrics"
	"github.com/alem-hub/studyhub/pkg/logger"
)

// Header names.
const (
	HeaderRequestID = "X-Request-ID"
	HeaderCaller    = "X-Caller-Identity"
)

// RequestID propagates or assigns a request ID and stores a request-scoped
// logger in the request context.
func RequestID(log *logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(HeaderRequestID)
		if id == "" || len(id) > 128 {
			id = uuid.NewString()
		}
		c.Header(HeaderRequestID, id)
		c.Set(logger.RequestIDKey, id)

		ctx := logger.WithContext(c.Request.Context(), log.WithRequestID(id))
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequestLogger logs one line per request, at a level chosen by status.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		status := c.Writer.Status()
		path := c.FullPath()
		if path == "" {
			path = c.Request.URL.Path
		}
		fields := []logger.Field{
			logger.String("method", c.Request.Method),
			logger.String("path", path),
			logger.Int("status", status),
			logger.Latency(time.Since(start)),
		}
		if caller := callerOf(c); caller != "" {
			fields = append(fields, logger.Identity(caller))
		}

		log := logger.FromContext(c.Request.Context())
		switch {
		case status >= 500:
			log.Error("HTTP request", fields...)
		case status >= 400:
			log.Warn("HTTP request", fields...)
		default:
			log.Info("HTTP request", fields...)
		}
	}
}

// Recovery turns a handler panic into a 500 envelope.
func Recovery() gin.HandlerFunc {
	return gin.CustomRecovery(func(c *gin.Context, rec any) {
		logger.FromContext(c.Request.Context()).Error("panic recovered",
			logger.Any("panic", rec), logger.String("path", c.Request.URL.Path))
		respondError(c, http.StatusInternalServerError, CodeInternal, "internal error")
	})
}

// Metrics records request count and latency per route template.
func Metrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RecordHTTPRequest(c.Request.Method, c.FullPath(), c.Writer.Status(), time.Since(start))
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// RATE LIMITING
// ══════════════════════════════════════════════════════════════════════════════

// clientLimiter holds one token bucket per client IP.
type clientLimiter struct {
	mu      sync.Mutex
	rps     rate.Limit
	burst   int
	idle    time.Duration
	clients map[string]*clientEntry
	swept   time.Time
}

type clientEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

func newClientLimiter(rps float64, burst int) *clientLimiter {
	return &clientLimiter{
		rps:     rate.Limit(rps),
		burst:   burst,
		idle:    10 * time.Minute,
		clients: make(map[string]*clientEntry),
		swept:   time.Now(),
	}
}

func (l *clientLimiter) allow(key string, now time.Time) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if now.Sub(l.swept) > l.idle {
		for k, e := range l.clients {
			if now.Sub(e.lastSeen) > l.idle {
				delete(l.clients, k)
			}
		}
		l.swept = now
	}

	e, ok := l.clients[key]
	if !ok {
		e = &clientEntry{limiter: rate.NewLimiter(l.rps, l.burst)}
		l.clients[key] = e
	}
	e.lastSeen = now
	return e.limiter.AllowN(now, 1)
}

// RateLimit rejects clients exceeding rps with 429. rps <= 0 disables it.
func RateLimit(rps float64, burst int) gin.HandlerFunc {
	if rps <= 0 {
		return func(c *gin.Context) { c.Next() }
	}
	l := newClientLimiter(rps, burst)
	return func(c *gin.Context) {
		if !l.allow(c.ClientIP(), time.Now()) {
			c.Header("Retry-After", "1")
			respondError(c, http.StatusTooManyRequests, CodeRateLimited, "Too many requests, slow down")
			return
		}
		c.Next()
	}
}

func callerOf(c *gin.Context) string {
	return strings.TrimSpace(c.GetHeader(HeaderCaller))
}
