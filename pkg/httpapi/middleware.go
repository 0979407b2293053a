package httpapi

import (
	"fmt"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Black-And-White-Club/pic-perfect/pkg/arcadeerrors"
	"github.com/Black-And-White-Club/pic-perfect/pkg/observability/attr"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

const (
	// cleanupThreshold is the minimum map size before a cleanup pass runs.
	cleanupThreshold = 500
	// maxIdleAge is the duration after which an idle key is eligible for cleanup.
	maxIdleAge = 10 * time.Minute

	// CorrelationIDHeader carries the request correlation id in both directions.
	CorrelationIDHeader = "X-Correlation-ID"
	maxCorrelationIDLen = 64
)

// KeyFunc picks the bucket a request is counted against.
type KeyFunc func(r *http.Request) string

// ClientIP keys on the address of the connection.
func ClientIP(r *http.Request) string {
	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

// ForwardedClientIP keys on the first X-Forwarded-For hop, then X-Real-IP,
// then the connection address. Only safe behind a proxy that rewrites
// those headers.
func ForwardedClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if ip := net.ParseIP(strings.TrimSpace(first)); ip != nil {
			return ip.String()
		}
	}
	if ip := net.ParseIP(strings.TrimSpace(r.Header.Get("X-Real-IP"))); ip != nil {
		return ip.String()
	}
	return ClientIP(r)
}

// ClientKey returns ForwardedClientIP when proxy headers are trusted and
// ClientIP otherwise.
func ClientKey(trustProxy bool) KeyFunc {
	if trustProxy {
		return ForwardedClientIP
	}
	return ClientIP
}

type limiterEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter hands out one token bucket per key and prunes stale buckets
// inline.
type RateLimiter struct {
	buckets map[string]*limiterEntry
	mu      sync.Mutex
	r       rate.Limit
	b       int
}

// NewRateLimiter creates a RateLimiter allowing r requests per second with
// bursts of b per key.
func NewRateLimiter(r rate.Limit, b int) *RateLimiter {
	return &RateLimiter{
		buckets: make(map[string]*limiterEntry),
		r:       r,
		b:       b,
	}
}

// GetLimiter returns the bucket for key, pruning stale entries when the map
// exceeds cleanupThreshold.
func (l *RateLimiter) GetLimiter(key string) *rate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.buckets) > cleanupThreshold {
		cutoff := time.Now().Add(-maxIdleAge)
		for k, e := range l.buckets {
			if e.lastSeen.Before(cutoff) {
				delete(l.buckets, k)
			}
		}
	}

	e, exists := l.buckets[key]
	if !exists {
		e = &limiterEntry{limiter: rate.NewLimiter(l.r, l.b)}
		l.buckets[key] = e
	}
	e.lastSeen = time.Now()

	return e.limiter
}

// RateLimitMiddleware rejects requests over the key's budget with a
// RATE_LIMITED envelope. Retry-After is set when the wait is finite.
func RateLimitMiddleware(limiter *RateLimiter, key KeyFunc, logger *slog.Logger) func(http.Handler) http.Handler {
	if key == nil {
		key = ClientIP
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			k := key(r)
			res := limiter.GetLimiter(k).Reserve()
			if !res.OK() || res.Delay() > 0 {
				if res.OK() {
					w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(res.Delay().Seconds()))))
					res.Cancel()
				}
				if logger != nil {
					logger.WarnContext(r.Context(), "Request rate limited",
						attr.ExtractCorrelationID(r.Context()),
						attr.String("key", k),
						attr.String("path", r.URL.Path),
					)
				}
				WriteError(w, r, logger, fmt.Errorf("%w: too many requests, slow down", arcadeerrors.ErrRateLimited))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CORSMiddleware returns a middleware that sets CORS headers for the configured origins.
// When allowedOrigins is empty, no CORS headers are added.
func CORSMiddleware(allowedOrigins []string) func(http.Handler) http.Handler {
	origins := make(map[string]struct{}, len(allowedOrigins))
	for _, o := range allowedOrigins {
		origins[o] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if origin := r.Header.Get("Origin"); origin != "" {
				if _, ok := origins[origin]; ok {
					w.Header().Set("Access-Control-Allow-Origin", origin)
					w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					w.Header().Set("Access-Control-Allow-Headers", "Content-Type, X-Team-Name, "+CorrelationIDHeader)
					w.Header().Set("Access-Control-Expose-Headers", CorrelationIDHeader)
				}
			}

			if r.Method == http.MethodOptions {
				w.WriteHeader(http.StatusOK)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CorrelationIDMiddleware accepts a caller supplied correlation id or mints
// one, stores it on the request context and echoes it back.
func CorrelationIDMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := sanitizeCorrelationID(r.Header.Get(CorrelationIDHeader))
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(CorrelationIDHeader, id)
		next.ServeHTTP(w, r.WithContext(attr.WithCorrelationID(r.Context(), id)))
	})
}

// sanitizeCorrelationID keeps alphanumerics, hyphens and underscores.
func sanitizeCorrelationID(raw string) string {
	if len(raw) > maxCorrelationIDLen {
		raw = raw[:maxCorrelationIDLen]
	}
	var sb strings.Builder
	sb.Grow(len(raw))
	for _, r := range raw {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			sb.WriteRune(r)
		}
	}
	return sb.String()
}

// RequestLogger logs one line per request.
func RequestLogger(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r)

			logger.InfoContext(r.Context(), "HTTP request",
				attr.ExtractCorrelationID(r.Context()),
				attr.String("method", r.Method),
				attr.String("path", r.URL.Path),
				attr.Int("status", ww.Status()),
				attr.Int("bytes", ww.BytesWritten()),
				attr.Any("duration", time.Since(start)),
			)
		})
	}
}
