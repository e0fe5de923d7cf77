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
	"fmt"
	"os"
	"strings"
)

const (
	// EnvBackendPriority is the priority for the environment variable backend.
	// This is the highest priority to allow environment overrides.
	EnvBackendPriority = 100

	// envSecretPrefix is the prefix for switchboard secret environment variables.
	envSecretPrefix = "SWITCHBOARD_SECRET_"
)

// EnvBackend provides read-only access to secrets via environment variables.
// A secret key maps to one variable by uppercasing and replacing separators:
// "auth_token" resolves SWITCHBOARD_SECRET_AUTH_TOKEN.
type EnvBackend struct{}

// NewEnvBackend creates a new environment variable backend.
func NewEnvBackend() *EnvBackend {
	return &EnvBackend{}
}

// Name returns the backend identifier.
func (e *EnvBackend) Name() string {
	return "env"
}

// Get retrieves a secret from a SWITCHBOARD_SECRET_* environment variable.
func (e *EnvBackend) Get(ctx context.Context, key string) (string, error) {
	if value := os.Getenv(e.normalizeKey(key)); value != "" {
		return value, nil
	}

	return "", fmt.Errorf("%w: environment variable not set", ErrSecretNotFound)
}

// Set returns ErrReadOnlyBackend as the environment backend is read-only.
func (e *EnvBackend) Set(ctx context.Context, key string, value string) error {
	return ErrReadOnlyBackend
}

// Delete returns ErrReadOnlyBackend as the environment backend is read-only.
func (e *EnvBackend) Delete(ctx context.Context, key string) error {
	return ErrReadOnlyBackend
}

// List returns all SWITCHBOARD_SECRET_* environment variables.
func (e *EnvBackend) List(ctx context.Context) ([]string, error) {
	var keys []string
	for _, env := range os.Environ() {
		if strings.HasPrefix(env, envSecretPrefix) {
			parts := strings.SplitN(env, "=", 2)
			if len(parts) == 2 && parts[1] != "" {
				keys = append(keys, e.denormalizeKey(parts[0]))
			}
		}
	}
	return keys, nil
}

// Available returns true as environment variables are always available.
func (e *EnvBackend) Available() bool {
	return true
}

// Priority returns the backend priority (highest).
func (e *EnvBackend) Priority() int {
	return EnvBackendPriority
}

// ReadOnly returns true as the environment backend is read-only.
func (e *EnvBackend) ReadOnly() bool {
	return true
}

// normalizeKey converts a secret key to an environment variable name.
// Example: "auth-token" -> "SWITCHBOARD_SECRET_AUTH_TOKEN"
func (e *EnvBackend) normalizeKey(key string) string {
	normalized := strings.NewReplacer("/", "_", "-", "_").Replace(key)
	return envSecretPrefix + strings.ToUpper(normalized)
}

// denormalizeKey converts an environment variable name back to a secret key.
// Secret keys are flat snake_case names, so the conversion is just a
// lowercase of the suffix: "SWITCHBOARD_SECRET_AUTH_TOKEN" -> "auth_token".
func (e *EnvBackend) denormalizeKey(envVar string) string {
	return strings.ToLower(strings.TrimPrefix(envVar, envSecretPrefix))
}
