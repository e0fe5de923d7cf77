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

package errors

import "fmt"

// ValidationError represents malformed input or catalog data.
// Use this for invalid requirements, bad descriptor fields, or constraint
// violations discovered at load time. Validation failures are never
// silently coerced into defaults.
type ValidationError struct {
	// Field identifies which field failed validation
	// (e.g., "model_id", "context_window", "requirement.min_context")
	Field string

	// Message is the human-readable error description
	Message string

	// Suggestion provides actionable guidance for fixing the error
	Suggestion string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("validation failed on %s: %s", e.Field, e.Message)
	}
	return fmt.Sprintf("validation failed: %s", e.Message)
}

// ErrorType identifies the error category for programmatic handling.
func (e *ValidationError) ErrorType() string { return "validation" }

// IsRetryable reports whether retrying could succeed. Validation failures
// are deterministic, so no.
func (e *ValidationError) IsRetryable() bool { return false }

// NotFoundError represents a resource not found error.
// Use this when a requested resource does not exist.
type NotFoundError struct {
	// Resource is the type of resource (e.g., "model", "preference", "catalog")
	Resource string

	// ID is the identifier that was not found
	ID string
}

// Error implements the error interface.
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ErrorType identifies the error category for programmatic handling.
func (e *NotFoundError) ErrorType() string { return "not_found" }

// IsRetryable reports whether retrying could succeed.
func (e *NotFoundError) IsRetryable() bool { return false }

// ConfigError represents configuration problems.
// Use this for configuration file errors, missing settings, or invalid config values.
type ConfigError struct {
	// Key is the configuration key that has the problem (e.g., "catalog.path", "server.listen")
	Key string

	// Reason explains what's wrong with the configuration
	Reason string

	// Cause is the underlying error (e.g., file read error, parse error)
	Cause error
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	if e.Key != "" {
		return fmt.Sprintf("config error at %s: %s", e.Key, e.Reason)
	}
	return fmt.Sprintf("config error: %s", e.Reason)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *ConfigError) Unwrap() error {
	return e.Cause
}

// ErrorType identifies the error category for programmatic handling.
func (e *ConfigError) ErrorType() string { return "config" }

// IsRetryable reports whether retrying could succeed.
func (e *ConfigError) IsRetryable() bool { return false }

// StoreError represents a persistence layer failure.
// Use this for catalog or preference store I/O errors where the underlying
// driver error would be unhelpful on its own.
type StoreError struct {
	// Op describes the operation that failed (e.g., "load catalog", "set preference")
	Op string

	// Backend names the store backend (e.g., "sqlite", "file")
	Backend string

	// Cause is the underlying error
	Cause error
}

// Error implements the error interface.
func (e *StoreError) Error() string {
	if e.Backend != "" {
		return fmt.Sprintf("%s failed (%s): %v", e.Op, e.Backend, e.Cause)
	}
	return fmt.Sprintf("%s failed: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying cause for errors.Is/As support.
func (e *StoreError) Unwrap() error {
	return e.Cause
}

// ErrorType identifies the error category for programmatic handling.
func (e *StoreError) ErrorType() string { return "store" }

// IsRetryable reports whether retrying could succeed. Store failures are
// usually transient (locked database, mid-write file), so yes.
func (e *StoreError) IsRetryable() bool { return true }
