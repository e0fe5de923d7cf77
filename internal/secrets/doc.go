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

/*
Package secrets provides secure credential storage and retrieval.

This package implements a multi-backend secret management system with support
for environment variables, OS keychains, and encrypted file storage. Secrets
are resolved through a priority-ordered chain of backends.

# Backends

The package provides three secret backends:

	env      - Environment variables (SWITCHBOARD_SECRET_*), read-only
	keychain - OS keychain (macOS Keychain, Linux Secret Service, Windows
	           Credential Manager)
	file     - AES-256-GCM encrypted file, key derived with Argon2id

Each backend implements the SecretBackend interface:

	type SecretBackend interface {
	    Name() string
	    Get(ctx context.Context, key string) (string, error)
	    Set(ctx context.Context, key string, value string) error
	    Delete(ctx context.Context, key string) error
	    List(ctx context.Context) ([]string, error)
	    Available() bool
	    Priority() int
	}

# Priority Order

Backends are queried highest priority first:

 1. Environment (priority 100) - Overrides for CI and containers
 2. Keychain (priority 50) - Preferred interactive storage
 3. File (priority 25) - Portable fallback

# Usage

Create the standard resolver chain:

	resolver, err := secrets.DefaultResolver()

Retrieve a secret:

	token, err := resolver.Get(ctx, "auth_token")

Store a secret in the first writable backend:

	err := resolver.Set(ctx, "auth_token", "swb_...", "")

# Configuration Integration

Config values may reference secrets instead of embedding them:

	server:
	  auth_token: $secret:auth_token

ResolveReference resolves such values at load time and passes plain
values through unchanged.

# Environment Variables

The env backend reads variables prefixed with SWITCHBOARD_SECRET_:

	export SWITCHBOARD_SECRET_AUTH_TOKEN=swb_...

Key names are normalized by uppercasing and replacing "-" and "/"
with "_":

  - auth_token → SWITCHBOARD_SECRET_AUTH_TOKEN
  - otlp-key → SWITCHBOARD_SECRET_OTLP_KEY

# File Backend

The file backend stores secrets in a single encrypted file, by default
~/.config/switchboard/secrets.enc. The encryption key is derived from a
master key via Argon2id; the master key comes from SWITCHBOARD_MASTER_KEY
or ~/.config/switchboard/master.key. Without a master key the backend
reports itself unavailable and the chain skips it.

# Error Handling

Common errors:

  - ErrSecretNotFound: secret does not exist in any backend
  - ErrBackendUnavailable: backend (or the whole chain) is unavailable
  - ErrReadOnlyBackend: write attempted on a read-only backend
*/
package secrets
