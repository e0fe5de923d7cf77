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

package secrets

import (
	"context"
	"errors"
	"strings"
	"testing"
)

// fakeBackend is a test implementation of SecretBackend.
type fakeBackend struct {
	name      string
	priority  int
	available bool
	readOnly  bool
	getErr    error
	secrets   map[string]string
}

func newFakeBackend(name string, priority int) *fakeBackend {
	return &fakeBackend{
		name:      name,
		priority:  priority,
		available: true,
		secrets:   make(map[string]string),
	}
}

func (f *fakeBackend) Name() string {
	return f.name
}

func (f *fakeBackend) Get(ctx context.Context, key string) (string, error) {
	if f.getErr != nil {
		return "", f.getErr
	}
	if value, ok := f.secrets[key]; ok {
		return value, nil
	}
	return "", ErrSecretNotFound
}

func (f *fakeBackend) Set(ctx context.Context, key string, value string) error {
	if f.readOnly {
		return ErrReadOnlyBackend
	}
	f.secrets[key] = value
	return nil
}

func (f *fakeBackend) Delete(ctx context.Context, key string) error {
	if f.readOnly {
		return ErrReadOnlyBackend
	}
	if _, ok := f.secrets[key]; !ok {
		return ErrSecretNotFound
	}
	delete(f.secrets, key)
	return nil
}

func (f *fakeBackend) List(ctx context.Context) ([]string, error) {
	keys := make([]string, 0, len(f.secrets))
	for k := range f.secrets {
		keys = append(keys, k)
	}
	return keys, nil
}

func (f *fakeBackend) Available() bool {
	return f.available
}

func (f *fakeBackend) Priority() int {
	return f.priority
}

func (f *fakeBackend) ReadOnly() bool {
	return f.readOnly
}

func TestResolver_Get(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name      string
		backends  []SecretBackend
		key       string
		wantValue string
		wantErr   error
	}{
		{
			name: "get from high priority backend",
			backends: func() []SecretBackend {
				high := newFakeBackend("high", 100)
				high.secrets["test"] = "high-value"
				low := newFakeBackend("low", 50)
				low.secrets["test"] = "low-value"
				return []SecretBackend{low, high}
			}(),
			key:       "test",
			wantValue: "high-value",
			wantErr:   nil,
		},
		{
			name: "fallback to lower priority",
			backends: func() []SecretBackend {
				high := newFakeBackend("high", 100)
				low := newFakeBackend("low", 50)
				low.secrets["test"] = "low-value"
				return []SecretBackend{high, low}
			}(),
			key:       "test",
			wantValue: "low-value",
			wantErr:   nil,
		},
		{
			name: "secret not found",
			backends: func() []SecretBackend {
				return []SecretBackend{newFakeBackend("test", 100)}
			}(),
			key:       "missing",
			wantValue: "",
			wantErr:   ErrSecretNotFound,
		},
		{
			name:      "no backends available",
			backends:  []SecretBackend{},
			key:       "test",
			wantValue: "",
			wantErr:   ErrBackendUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.backends...)
			got, err := resolver.Get(ctx, tt.key)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Get() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Get() unexpected error = %v", err)
				return
			}

			if got != tt.wantValue {
				t.Errorf("Get() = %v, want %v", got, tt.wantValue)
			}
		})
	}
}

func TestResolver_GetReportsBackendFailure(t *testing.T) {
	ctx := context.Background()

	broken := newFakeBackend("broken", 100)
	broken.getErr = errors.New("backend exploded")
	empty := newFakeBackend("empty", 50)

	resolver := NewResolver(broken, empty)

	_, err := resolver.Get(ctx, "test")
	if err == nil {
		t.Fatal("Get() error = nil, want backend failure")
	}
	if errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get() error = %v, want failure instead of not-found", err)
	}
	if !strings.Contains(err.Error(), "backend exploded") {
		t.Errorf("Get() error = %v, want underlying cause preserved", err)
	}
}

func TestResolver_Set(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		backends    []SecretBackend
		key         string
		value       string
		backendName string
		wantErr     bool
		checkFunc   func(t *testing.T, backends []SecretBackend)
	}{
		{
			name: "set in first writable backend",
			backends: func() []SecretBackend {
				ro := newFakeBackend("readonly", 100)
				ro.readOnly = true
				rw := newFakeBackend("writable", 50)
				return []SecretBackend{ro, rw}
			}(),
			key:         "test",
			value:       "value",
			backendName: "",
			wantErr:     false,
			checkFunc: func(t *testing.T, backends []SecretBackend) {
				rw := backends[1].(*fakeBackend)
				if val, ok := rw.secrets["test"]; !ok || val != "value" {
					t.Errorf("Secret not set in writable backend")
				}
			},
		},
		{
			name: "set in specific backend",
			backends: func() []SecretBackend {
				b1 := newFakeBackend("backend1", 100)
				b2 := newFakeBackend("backend2", 50)
				return []SecretBackend{b1, b2}
			}(),
			key:         "test",
			value:       "value",
			backendName: "backend2",
			wantErr:     false,
			checkFunc: func(t *testing.T, backends []SecretBackend) {
				b2 := backends[1].(*fakeBackend)
				if val, ok := b2.secrets["test"]; !ok || val != "value" {
					t.Errorf("Secret not set in backend2")
				}
				b1 := backends[0].(*fakeBackend)
				if _, ok := b1.secrets["test"]; ok {
					t.Errorf("Secret incorrectly set in backend1")
				}
			},
		},
		{
			name: "backend not found",
			backends: func() []SecretBackend {
				return []SecretBackend{newFakeBackend("test", 100)}
			}(),
			key:         "test",
			value:       "value",
			backendName: "missing",
			wantErr:     true,
		},
		{
			name: "no writable backends",
			backends: func() []SecretBackend {
				ro := newFakeBackend("readonly", 100)
				ro.readOnly = true
				return []SecretBackend{ro}
			}(),
			key:         "test",
			value:       "value",
			backendName: "",
			wantErr:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.backends...)
			err := resolver.Set(ctx, tt.key, tt.value, tt.backendName)

			if (err != nil) != tt.wantErr {
				t.Errorf("Set() error = %v, wantErr %v", err, tt.wantErr)
				return
			}

			if tt.checkFunc != nil && !tt.wantErr {
				tt.checkFunc(t, tt.backends)
			}
		})
	}
}

func TestResolver_Delete(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name        string
		backends    []SecretBackend
		key         string
		backendName string
		wantErr     error
	}{
		{
			name: "delete from specific backend",
			backends: func() []SecretBackend {
				b := newFakeBackend("test", 100)
				b.secrets["key"] = "value"
				return []SecretBackend{b}
			}(),
			key:         "key",
			backendName: "test",
			wantErr:     nil,
		},
		{
			name: "delete from all writable backends",
			backends: func() []SecretBackend {
				b1 := newFakeBackend("b1", 100)
				b1.secrets["key"] = "value1"
				b2 := newFakeBackend("b2", 50)
				b2.secrets["key"] = "value2"
				return []SecretBackend{b1, b2}
			}(),
			key:         "key",
			backendName: "",
			wantErr:     nil,
		},
		{
			name: "key not found",
			backends: func() []SecretBackend {
				return []SecretBackend{newFakeBackend("test", 100)}
			}(),
			key:         "missing",
			backendName: "",
			wantErr:     ErrSecretNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resolver := NewResolver(tt.backends...)
			err := resolver.Delete(ctx, tt.key, tt.backendName)

			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Delete() error = %v, wantErr %v", err, tt.wantErr)
				}
				return
			}

			if err != nil {
				t.Errorf("Delete() unexpected error = %v", err)
			}
		})
	}
}

func TestResolver_List(t *testing.T) {
	ctx := context.Background()

	high := newFakeBackend("high", 100)
	high.secrets["key1"] = "high1"
	high.secrets["key2"] = "high2"

	low := newFakeBackend("low", 50)
	low.secrets["key2"] = "low2" // Overlaps with high
	low.secrets["key3"] = "low3"

	resolver := NewResolver(high, low)
	metadata, err := resolver.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	if len(metadata) != 3 {
		t.Fatalf("List() returned %d keys, want 3", len(metadata))
	}

	// Output is sorted by key.
	wantKeys := []string{"key1", "key2", "key3"}
	for i, m := range metadata {
		if m.Key != wantKeys[i] {
			t.Errorf("List()[%d].Key = %v, want %v", i, m.Key, wantKeys[i])
		}
	}

	// The overlapping key is attributed to the higher-priority backend.
	if metadata[1].Backend != "high" {
		t.Errorf("key2 backend = %v, want high", metadata[1].Backend)
	}
}

func TestResolver_FilterUnavailableBackends(t *testing.T) {
	available := newFakeBackend("available", 100)
	unavailable := newFakeBackend("unavailable", 50)
	unavailable.available = false

	resolver := NewResolver(available, unavailable)

	backends := resolver.Backends()
	if len(backends) != 1 {
		t.Errorf("Backends() returned %d, want 1", len(backends))
	}

	if backends[0].Name() != "available" {
		t.Errorf("Backends()[0].Name() = %v, want available", backends[0].Name())
	}
}

func TestResolver_SortsByPriority(t *testing.T) {
	low := newFakeBackend("low", 25)
	medium := newFakeBackend("medium", 50)
	high := newFakeBackend("high", 100)

	// Pass in random order
	resolver := NewResolver(low, high, medium)

	backends := resolver.Backends()
	if len(backends) != 3 {
		t.Fatalf("Backends() returned %d, want 3", len(backends))
	}

	if backends[0].Name() != "high" {
		t.Errorf("Backends()[0].Name() = %v, want high", backends[0].Name())
	}
	if backends[1].Name() != "medium" {
		t.Errorf("Backends()[1].Name() = %v, want medium", backends[1].Name())
	}
	if backends[2].Name() != "low" {
		t.Errorf("Backends()[2].Name() = %v, want low", backends[2].Name())
	}
}
