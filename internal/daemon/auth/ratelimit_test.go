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
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		RPS:     10,
		Burst:   20,
	})

	// Should allow the initial burst
	for i := 0; i < 20; i++ {
		assert.True(t, rl.Allow("client1"), "request %d should be allowed", i)
	}

	// Next request should be denied (burst exhausted)
	assert.False(t, rl.Allow("client1"))
}

func TestRateLimiter_Refill(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		RPS:     10,
		Burst:   10,
	})

	for i := 0; i < 10; i++ {
		rl.Allow("client1")
	}
	assert.False(t, rl.Allow("client1"))

	// 150ms at 10/sec refills at least one token
	time.Sleep(150 * time.Millisecond)

	assert.True(t, rl.Allow("client1"))
}

func TestRateLimiter_PerClient(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		RPS:     5,
		Burst:   5,
	})

	for i := 0; i < 5; i++ {
		rl.Allow("client1")
	}

	// client1 exhausted, client2 has its own bucket
	assert.False(t, rl.Allow("client1"))
	assert.True(t, rl.Allow("client2"))
}

func TestRateLimiter_Disabled(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: false,
	})

	for i := 0; i < 1000; i++ {
		assert.True(t, rl.Allow("client1"))
	}
}

func TestRateLimiter_EmptyClientSharesLocalBucket(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		RPS:     1,
		Burst:   2,
	})

	assert.True(t, rl.Allow(""))
	assert.True(t, rl.Allow(localClient))
	assert.False(t, rl.Allow(""))
}

func TestRateLimiter_Cleanup(t *testing.T) {
	rl := NewRateLimiter(RateLimitConfig{
		Enabled: true,
		RPS:     10,
		Burst:   10,
	})

	rl.Allow("client1")
	rl.Allow("client2")
	rl.Allow("client3")

	assert.Len(t, rl.clients, 3)

	// Entries are recent, a generous cutoff keeps them
	rl.Cleanup(time.Minute)
	assert.Len(t, rl.clients, 3)

	time.Sleep(5 * time.Millisecond)

	rl.Cleanup(1 * time.Millisecond)
	assert.Len(t, rl.clients, 0)
}

func TestClientKey(t *testing.T) {
	tests := []struct {
		name       string
		remoteAddr string
		want       string
	}{
		{
			name:       "tcp client keyed by host",
			remoteAddr: "127.0.0.1:54321",
			want:       "127.0.0.1",
		},
		{
			name:       "ipv6 client",
			remoteAddr: "[::1]:54321",
			want:       "::1",
		},
		{
			name:       "empty address is local",
			remoteAddr: "",
			want:       localClient,
		},
		{
			name:       "abstract unix socket is local",
			remoteAddr: "@",
			want:       localClient,
		},
		{
			name:       "file unix socket is local",
			remoteAddr: "/tmp/switchboardd.sock",
			want:       localClient,
		},
		{
			name:       "portless address passes through",
			remoteAddr: "somehost",
			want:       "somehost",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", "/v1/models", nil)
			r.RemoteAddr = tt.remoteAddr
			assert.Equal(t, tt.want, ClientKey(r))
		})
	}
}
