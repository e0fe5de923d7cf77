// Copyright 2025 The Switchboard Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

// Package auth provides authentication and rate-limit middleware for the
// daemon API.
package auth

import (
	"crypto/rand"
	"crypto/subtle"
	"encoding/hex"
	"log/slog"
	"net/http"
	"strings"

	"github.com/switchboard-io/switchboard/internal/daemon/httputil"
)

// Config contains authentication configuration.
type Config struct {
	// Enabled controls whether a Bearer token is required.
	Enabled bool

	// Token is the expected Bearer token, already resolved from any
	// secret reference.
	Token string

	// AllowUnixSocket allows unauthenticated access via Unix socket.
	AllowUnixSocket bool

	// RateLimit contains rate limiting configuration.
	RateLimit RateLimitConfig

	// Logger for auth failures. nil disables logging.
	Logger *slog.Logger
}

// Middleware enforces Bearer token authentication and per-client rate
// limits on the daemon API.
type Middleware struct {
	config      Config
	rateLimiter *RateLimiter
	logger      *slog.Logger
}

// NewMiddleware creates an auth middleware from cfg.
func NewMiddleware(cfg Config) *Middleware {
	return &Middleware{
		config:      cfg,
		rateLimiter: NewRateLimiter(cfg.RateLimit),
		logger:      cfg.Logger,
	}
}

// RateLimiter returns the per-client limiter so the daemon can run
// periodic cleanup of idle client entries.
func (m *Middleware) RateLimiter() *RateLimiter {
	return m.rateLimiter
}

// Wrap wraps an http.Handler with authentication and rate limiting.
//
// Unix socket connections bypass both when AllowUnixSocket is set; the
// socket's 0600 permissions are the access control there. The health
// endpoint is always reachable so probes work without credentials.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		local := isUnixSocketRequest(r)

		if m.requiresAuth(r, local) {
			// Tokens in query parameters end up in access logs and
			// shell history. Reject them outright.
			if r.URL.Query().Get("token") != "" {
				m.unauthorized(w, r, "Tokens in query parameters are not supported. Use the Authorization header.")
				return
			}

			token := extractBearerToken(r)
			if token == "" {
				m.unauthorized(w, r, "Authentication required")
				return
			}

			if !m.validToken(token) {
				m.unauthorized(w, r, "Invalid credentials")
				return
			}
		}

		if !local && !m.rateLimiter.Allow(ClientKey(r)) {
			w.Header().Set("Retry-After", "1")
			httputil.WriteError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}

		next.ServeHTTP(w, r)
	})
}

// requiresAuth reports whether the request must present a valid token.
func (m *Middleware) requiresAuth(r *http.Request, local bool) bool {
	if !m.config.Enabled {
		return false
	}
	if m.config.AllowUnixSocket && local {
		return false
	}
	if r.URL.Path == "/v1/health" {
		return false
	}
	return true
}

// validToken compares token against the configured token in constant
// time. An empty configured token matches nothing.
func (m *Middleware) validToken(token string) bool {
	if m.config.Token == "" {
		return false
	}
	return subtle.ConstantTimeCompare([]byte(token), []byte(m.config.Token)) == 1
}

// unauthorized sends a 401 response.
func (m *Middleware) unauthorized(w http.ResponseWriter, r *http.Request, message string) {
	if m.logger != nil {
		m.logger.Warn("request rejected",
			slog.String("path", r.URL.Path),
			slog.String("method", r.Method),
			slog.String("remote_addr", r.RemoteAddr),
			slog.String("reason", message))
	}
	w.Header().Set("WWW-Authenticate", "Bearer")
	httputil.WriteError(w, http.StatusUnauthorized, message)
}

// extractBearerToken extracts the token from the Authorization header.
// The scheme match is case-insensitive per RFC 6750.
func extractBearerToken(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	if len(auth) > 7 && strings.EqualFold(auth[:7], "Bearer ") {
		return strings.TrimSpace(auth[7:])
	}
	return ""
}

// GenerateToken generates a new random daemon token.
func GenerateToken() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return "swb_" + hex.EncodeToString(bytes), nil
}

// isUnixSocketRequest checks if the request came via Unix socket.
// The remote address is empty, or starts with "@" (abstract socket) or
// "/" (file-based socket).
func isUnixSocketRequest(r *http.Request) bool {
	addr := r.RemoteAddr
	return addr == "" || strings.HasPrefix(addr, "@") || strings.HasPrefix(addr, "/")
}
