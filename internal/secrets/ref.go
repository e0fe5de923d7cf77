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
	"regexp"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
)

// secretRefPattern matches secret references like "$secret:auth_token".
var secretRefPattern = regexp.MustCompile(`^\$secret:(.+)$`)

// credentialPattern matches values that look like raw credentials
// (switchboard tokens plus common provider API key prefixes).
var credentialPattern = regexp.MustCompile(`^(swb_|sk-|ghp_|glpat-|xox[bap]-)`)

// IsReference reports whether a config value is a secret reference.
func IsReference(value string) bool {
	return secretRefPattern.MatchString(value)
}

// ParseReference extracts the secret key from a reference.
// Returns false when the value is not a reference.
func ParseReference(value string) (string, bool) {
	matches := secretRefPattern.FindStringSubmatch(value)
	if matches == nil {
		return "", false
	}
	return matches[1], true
}

// LooksLikeCredential reports whether a config value looks like a raw
// credential that should be a secret reference instead.
func LooksLikeCredential(value string) bool {
	return credentialPattern.MatchString(value) && !IsReference(value)
}

// DefaultResolver creates a resolver over the standard backend chain:
// environment variables, the system keychain, and the encrypted file.
func DefaultResolver() (*Resolver, error) {
	fileBackend, err := NewFileBackend("", "")
	if err != nil {
		return nil, fmt.Errorf("failed to create file backend: %w", err)
	}

	return NewResolver(
		NewEnvBackend(),
		NewKeychainBackend(),
		fileBackend,
	), nil
}

// ResolveReference resolves a config value that may be a secret
// reference. Plain values are returned unchanged; references are looked
// up through the resolver.
func ResolveReference(ctx context.Context, resolver *Resolver, value string) (string, error) {
	key, ok := ParseReference(value)
	if !ok {
		return value, nil
	}

	resolved, err := resolver.Get(ctx, key)
	if err != nil {
		return "", &swberrors.ConfigError{
			Key:    key,
			Reason: fmt.Sprintf("failed to resolve secret reference %q", key),
			Cause:  err,
		}
	}

	return resolved, nil
}
