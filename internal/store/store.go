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

// Package store persists per-user model preferences. The SQLite backend is
// the daemon default; the memory backend serves tests and ephemeral runs.
// Both satisfy routing.PreferenceStore, so a store failure or a missing row
// degrades to the catalog default instead of failing selection.
package store

import (
	"context"

	"github.com/switchboard-io/switchboard/pkg/routing"
)

// Store reads and writes user model preferences.
type Store interface {
	routing.PreferenceStore

	// Set stores the preferred model id for a user, replacing any previous
	// preference.
	Set(ctx context.Context, userID, modelID string) error

	// Clear removes a user's preference. Returns NotFoundError when the
	// user has none.
	Clear(ctx context.Context, userID string) error

	// Close releases backend resources.
	Close() error
}
