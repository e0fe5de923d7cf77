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

package server

import (
	"golang.org/x/time/rate"
)

// RateLimiter throttles MCP tool calls. Agent loops can fire tool calls
// far faster than a human operator; the bucket keeps a runaway loop
// from hammering the catalog.
type RateLimiter struct {
	calls *rate.Limiter
}

// NewRateLimiter creates a rate limiter sustaining callsPerMinute tool
// calls. The bucket starts full, so a fresh session gets a full minute
// of burst before throttling kicks in.
func NewRateLimiter(callsPerMinute int) *RateLimiter {
	return &RateLimiter{
		calls: rate.NewLimiter(rate.Limit(float64(callsPerMinute)/60.0), callsPerMinute),
	}
}

// AllowCall reports whether another tool call may proceed now.
func (rl *RateLimiter) AllowCall() bool {
	return rl.calls.Allow()
}
