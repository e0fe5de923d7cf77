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
	"fmt"
	"sort"
)

// Resolver manages a chain of SecretBackends and resolves secrets by
// querying backends in priority order.
type Resolver struct {
	backends []SecretBackend
}

// NewResolver creates a new secret resolver with the given backends.
// Unavailable backends are filtered out and the rest are sorted by
// priority (highest first).
func NewResolver(backends ...SecretBackend) *Resolver {
	available := make([]SecretBackend, 0, len(backends))
	for _, b := range backends {
		if b.Available() {
			available = append(available, b)
		}
	}

	sort.Slice(available, func(i, j int) bool {
		return available[i].Priority() > available[j].Priority()
	})

	return &Resolver{
		backends: available,
	}
}

// Get retrieves a secret by querying backends in priority order.
// Returns the first successful result, or ErrSecretNotFound when no
// backend holds the key.
func (r *Resolver) Get(ctx context.Context, key string) (string, error) {
	if len(r.backends) == 0 {
		return "", fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	var lastErr error
	for _, backend := range r.backends {
		value, err := backend.Get(ctx, key)
		if err == nil {
			return value, nil
		}

		// Remember errors other than a plain miss for the final report.
		if !errors.Is(err, ErrSecretNotFound) {
			lastErr = err
		}
	}

	if lastErr != nil {
		return "", fmt.Errorf("failed to get secret %q: %w", key, lastErr)
	}

	return "", fmt.Errorf("%w: %q", ErrSecretNotFound, key)
}

// Set stores a secret in the named backend, or in the highest-priority
// writable backend when backendName is empty.
func (r *Resolver) Set(ctx context.Context, key string, value string, backendName string) error {
	if len(r.backends) == 0 {
		return fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	if backendName != "" {
		backend, err := r.findBackend(backendName)
		if err != nil {
			return err
		}
		if err := backend.Set(ctx, key, value); err != nil {
			return fmt.Errorf("failed to set secret in %s: %w", backendName, err)
		}
		return nil
	}

	for _, backend := range r.backends {
		if isReadOnly(backend) {
			continue
		}

		if err := backend.Set(ctx, key, value); err != nil {
			if errors.Is(err, ErrReadOnlyBackend) {
				continue
			}
			return fmt.Errorf("failed to set secret in %s: %w", backend.Name(), err)
		}
		return nil
	}

	return fmt.Errorf("no writable backend available")
}

// Delete removes a secret from the named backend, or from every writable
// backend that holds the key when backendName is empty.
func (r *Resolver) Delete(ctx context.Context, key string, backendName string) error {
	if len(r.backends) == 0 {
		return fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	if backendName != "" {
		backend, err := r.findBackend(backendName)
		if err != nil {
			return err
		}
		if err := backend.Delete(ctx, key); err != nil {
			return fmt.Errorf("failed to delete secret from %s: %w", backendName, err)
		}
		return nil
	}

	deleted := false
	for _, backend := range r.backends {
		if isReadOnly(backend) {
			continue
		}

		if err := backend.Delete(ctx, key); err != nil {
			if errors.Is(err, ErrSecretNotFound) || errors.Is(err, ErrReadOnlyBackend) {
				continue
			}
			return fmt.Errorf("failed to delete secret from %s: %w", backend.Name(), err)
		}
		deleted = true
	}

	if !deleted {
		return fmt.Errorf("%w: %q", ErrSecretNotFound, key)
	}

	return nil
}

// List returns metadata for all secret keys across backends, sorted by
// key. When a key exists in several backends the highest-priority one
// wins.
func (r *Resolver) List(ctx context.Context) ([]SecretMetadata, error) {
	if len(r.backends) == 0 {
		return nil, fmt.Errorf("%w: no available backends", ErrBackendUnavailable)
	}

	keyMap := make(map[string]SecretMetadata)
	for _, backend := range r.backends {
		keys, err := backend.List(ctx)
		if err != nil {
			// A backend that cannot enumerate should not hide the rest.
			continue
		}

		for _, key := range keys {
			if _, exists := keyMap[key]; exists {
				continue
			}
			keyMap[key] = SecretMetadata{
				Key:      key,
				Backend:  backend.Name(),
				ReadOnly: isReadOnly(backend),
			}
		}
	}

	result := make([]SecretMetadata, 0, len(keyMap))
	for _, meta := range keyMap {
		result = append(result, meta)
	}
	sort.Slice(result, func(i, j int) bool {
		return result[i].Key < result[j].Key
	})

	return result, nil
}

// Backends returns the available backends in priority order.
func (r *Resolver) Backends() []SecretBackend {
	return r.backends
}

// findBackend locates an available backend by name.
func (r *Resolver) findBackend(name string) (SecretBackend, error) {
	for _, backend := range r.backends {
		if backend.Name() == name {
			return backend, nil
		}
	}
	return nil, fmt.Errorf("backend %q not found or unavailable", name)
}

// isReadOnly reports whether a backend declares itself read-only.
func isReadOnly(backend SecretBackend) bool {
	ro, ok := backend.(ReadOnlyBackend)
	return ok && ro.ReadOnly()
}
