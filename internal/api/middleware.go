package api

import (
	"context"
	"net"
	"net/http"
	"strings"

	domainerrors "github.com/pagebound/bookstore-server/internal/errors"
	"github.com/pagebound/bookstore-server/internal/http/response"
)

// ctxKey is the type for context keys to avoid collisions.
type ctxKey string

// bearerTokenKey is the context key for the raw bearer token.
const bearerTokenKey ctxKey = "bearerToken"

// bearerTokenMiddleware stores the bearer token, if any, in the request context.
// Verification happens in the handlers, so each failure kind keeps its own code.
func bearerTokenMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := parseBearer(r.Header.Get("Authorization"))
		if token == "" {
			next.ServeHTTP(w, r)
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), bearerTokenKey, token)))
	})
}

// parseBearer extracts the token from an "Authorization: Bearer <token>" value.
func parseBearer(header string) string {
	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") {
		return ""
	}
	return strings.TrimSpace(token)
}

// bearerToken returns the token stored by bearerTokenMiddleware.
func bearerToken(ctx context.Context) string {
	token, _ := ctx.Value(bearerTokenKey).(string)
	return token
}

// rateLimitMiddleware throttles POSTs to the given paths per client IP.
// Returns 429 Too Many Requests when the limit is exceeded.
func (s *Server) rateLimitMiddleware(paths ...string) func(http.Handler) http.Handler {
	limited := make(map[string]struct{}, len(paths))
	for _, p := range paths {
		limited[p] = struct{}{}
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, ok := limited[r.URL.Path]; !ok || r.Method != http.MethodPost {
				next.ServeHTTP(w, r)
				return
			}

			key := clientIP(r)
			if !s.authRateLimiter.Allow(key) {
				s.logger.Warn("rate limit exceeded", "ip", key, "path", r.URL.Path)
				response.HandleError(w, domainerrors.RateLimited("too many requests, please try again later"), s.logger)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// clientIP returns the host part of RemoteAddr, which middleware.RealIP has
// already replaced with the forwarded address when present.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
