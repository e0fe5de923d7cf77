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
	"strings"

	"github.com/zalando/go-keyring"
)

const (
	// KeychainBackendPriority is the priority for keychain backend.
	KeychainBackendPriority = 50

	// keychainService is the service name used for keychain entries.
	keychainService = "switchboard"
)

// KeychainBackend provides secure storage using the system keychain.
// Supported platforms:
//   - macOS: Keychain Access
//   - Linux: Secret Service API (GNOME Keyring, KWallet)
//   - Windows: Credential Manager
type KeychainBackend struct {
	available bool
}

// NewKeychainBackend creates a new keychain backend and probes availability.
func NewKeychainBackend() *KeychainBackend {
	b := &KeychainBackend{}
	b.available = b.checkAvailability()
	return b
}

// checkAvailability tests if the keychain is accessible.
func (k *KeychainBackend) checkAvailability() bool {
	// Probe with a key that should never exist. A NotFound error means
	// the keychain responded; anything else means it is unreachable.
	_, err := keyring.Get(keychainService, "__switchboard_availability_test__")
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return false
	}
	return true
}

// Name returns the backend identifier.
func (k *KeychainBackend) Name() string {
	return "keychain"
}

// Get retrieves a secret from the system keychain.
func (k *KeychainBackend) Get(ctx context.Context, key string) (string, error) {
	if !k.available {
		return "", ErrBackendUnavailable
	}

	value, err := keyring.Get(keychainService, key)
	if err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return "", fmt.Errorf("%w: not in keychain", ErrSecretNotFound)
		}
		if isKeychainUnavailableError(err) {
			k.available = false
			return "", fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return "", fmt.Errorf("keychain error: %w", err)
	}

	return value, nil
}

// Set stores a secret in the system keychain.
func (k *KeychainBackend) Set(ctx context.Context, key string, value string) error {
	if !k.available {
		return ErrBackendUnavailable
	}

	if err := keyring.Set(keychainService, key, value); err != nil {
		if isKeychainUnavailableError(err) {
			k.available = false
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return fmt.Errorf("failed to store in keychain: %w", err)
	}

	return nil
}

// Delete removes a secret from the system keychain.
func (k *KeychainBackend) Delete(ctx context.Context, key string) error {
	if !k.available {
		return ErrBackendUnavailable
	}

	if err := keyring.Delete(keychainService, key); err != nil {
		if errors.Is(err, keyring.ErrNotFound) {
			return fmt.Errorf("%w: not in keychain", ErrSecretNotFound)
		}
		if isKeychainUnavailableError(err) {
			k.available = false
			return fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
		}
		return fmt.Errorf("failed to delete from keychain: %w", err)
	}

	return nil
}

// List returns an empty list as go-keyring does not support enumeration.
func (k *KeychainBackend) List(ctx context.Context) ([]string, error) {
	if !k.available {
		return nil, ErrBackendUnavailable
	}

	// The keyring library cannot enumerate entries for a service.
	return []string{}, nil
}

// Available returns whether the keychain is accessible.
func (k *KeychainBackend) Available() bool {
	return k.available
}

// Priority returns the backend priority.
func (k *KeychainBackend) Priority() int {
	return KeychainBackendPriority
}

// isKeychainUnavailableError checks if an error indicates the keychain
// itself is unavailable rather than a problem with a specific entry.
func isKeychainUnavailableError(err error) bool {
	if err == nil {
		return false
	}

	msg := strings.ToLower(err.Error())
	indicators := []string{
		"locked",
		"cannot access",
		"permission denied",
		"failed to unlock",
		"user interaction required",
		"secret service",
		"dbus",
		"user canceled",
	}

	for _, indicator := range indicators {
		if strings.Contains(msg, indicator) {
			return true
		}
	}

	return false
}
