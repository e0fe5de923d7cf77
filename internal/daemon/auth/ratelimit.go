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

package auth

import (
	"net"
	"net/http"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// localClient is the shared bucket key for Unix socket connections.
const localClient = "_local_"

// RateLimitConfig contains rate limiting configuration.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active.
	Enabled bool

	// RPS is the sustained request rate allowed per client.
	RPS float64

	// Burst is the token bucket capacity per client.
	Burst int
}

// clientLimiter pairs a limiter with its last use, so idle entries can
// be dropped.
type clientLimiter struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// RateLimiter provides per-client token-bucket rate limiting.
type RateLimiter struct {
	mu      sync.Mutex
	clients map[string]*clientLimiter
	rps     rate.Limit
	burst   int
	enabled bool
}

// NewRateLimiter creates a rate limiter from cfg. Zero or negative
// values take the defaults (50 rps, burst 100).
func NewRateLimiter(cfg RateLimitConfig) *RateLimiter {
	if cfg.RPS <= 0 {
		cfg.RPS = 50
	}
	if cfg.Burst <= 0 {
		cfg.Burst = 100
	}

	return &RateLimiter{
		clients: make(map[string]*clientLimiter),
		rps:     rate.Limit(cfg.RPS),
		burst:   cfg.Burst,
		enabled: cfg.Enabled,
	}
}

// Allow reports whether a request from the given client may proceed,
// consuming a token if so.
func (rl *RateLimiter) Allow(client string) bool {
	if !rl.enabled {
		return true
	}
	if client == "" {
		client = localClient
	}

	rl.mu.Lock()
	entry, ok := rl.clients[client]
	if !ok {
		entry = &clientLimiter{limiter: rate.NewLimiter(rl.rps, rl.burst)}
		rl.clients[client] = entry
	}
	entry.lastSeen = time.Now()
	rl.mu.Unlock()

	return entry.limiter.Allow()
}

// Cleanup removes limiters for clients idle longer than maxAge, so the
// client map does not grow without bound.
func (rl *RateLimiter) Cleanup(maxAge time.Duration) {
	rl.mu.Lock()
	defer rl.mu.Unlock()

	cutoff := time.Now().Add(-maxAge)
	for client, entry := range rl.clients {
		if entry.lastSeen.Before(cutoff) {
			delete(rl.clients, client)
		}
	}
}

// ClientKey derives the limiter key for a request. TCP clients are
// keyed by remote host; Unix socket clients share one bucket.
func ClientKey(r *http.Request) string {
	if isUnixSocketRequest(r) {
		return localClient
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
