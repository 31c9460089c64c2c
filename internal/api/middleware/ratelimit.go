package middleware

import (
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/botify-ai/botify-backend/internal/ratelimit"
	"github.com/botify-ai/botify-backend/pkg/models"
	"github.com/rs/zerolog/log"
)

// RateLimit wraps every handler with sliding-window admission. Paths in
// bypass (health/readiness probes) skip admission entirely and never
// consume quota.
//
// Every response, accepted or rejected, carries the quota headers;
// accepted flows additionally get X-Process-Time. The headers are
// observability data — callers must not branch on them.
func RateLimit(gw *ratelimit.Gateway, bypass ...string) func(http.Handler) http.Handler {
	bypassSet := make(map[string]struct{}, len(bypass))
	for _, p := range bypass {
		bypassSet[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := bypassSet[r.URL.Path]; ok {
				next.ServeHTTP(w, r)
				return
			}

			client := ClientKey(r)
			dec := gw.Admit(client, time.Now())

			w.Header().Set("X-RateLimit-Limit", strconv.Itoa(dec.Limit))
			w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(dec.Remaining))
			w.Header().Set("X-RateLimit-Reset", strconv.Itoa(dec.ResetSeconds))

			if !dec.Allowed {
				log.Warn().Str("client", client).Msg("Rate limit exceeded")
				w.Header().Set("Retry-After", strconv.Itoa(dec.ResetSeconds))
				w.Header().Set("Content-Type", "application/json")
				w.WriteHeader(http.StatusTooManyRequests)
				json.NewEncoder(w).Encode(models.ErrorResponse{
					Error: "Too many requests. Please try again in a moment.",
					Code:  string(models.ClassRateLimited),
				})
				return
			}

			start := time.Now()
			rw := newResponseWriter(w)
			rw.beforeWrite = func(int) {
				rw.Header().Set("X-Process-Time", strconv.FormatFloat(time.Since(start).Seconds(), 'f', -1, 64))
			}
			next.ServeHTTP(rw, r)
		})
	}
}

// ClientKey derives the rate-limit identity for a request: the first
// X-Forwarded-For entry if present, else the peer address, else
// "unknown". Clients behind a shared NAT or proxy collapse to one key;
// that approximation is accepted, not a bug to paper over here.
func ClientKey(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		if ip := strings.TrimSpace(strings.Split(xff, ",")[0]); ip != "" {
			return ip
		}
	}

	host, _, err := net.SplitHostPort(strings.TrimSpace(r.RemoteAddr))
	if err == nil && host != "" {
		return host
	}
	if r.RemoteAddr != "" {
		return r.RemoteAddr
	}
	return "unknown"
}
