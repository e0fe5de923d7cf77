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

// Package catalog provides the persisted model catalog the registry loads
// descriptors from. Two backends exist: a YAML file source and a SQLite
// source. Load order is stable for both, so downstream selection tie-breaks
// stay deterministic across reloads of unchanged data.
package catalog

import (
	"context"

	"github.com/switchboard-io/switchboard/pkg/routing"
)

// Source loads model descriptors from a catalog backend.
type Source interface {
	// Load reads all descriptors in the backend's stable order.
	Load(ctx context.Context) ([]routing.ModelDescriptor, error)

	// Close releases backend resources.
	Close() error
}

// Writer is implemented by sources that support catalog mutations.
// The admin CLI routes model add/remove/enable/disable/set-default
// operations through this interface.
type Writer interface {
	// Put inserts or replaces a descriptor by id.
	Put(ctx context.Context, model routing.ModelDescriptor) error

	// Remove deletes a descriptor by id. Returns NotFoundError when absent.
	Remove(ctx context.Context, id string) error

	// SetEnabled flips the enabled flag. Returns NotFoundError when absent.
	SetEnabled(ctx context.Context, id string, enabled bool) error

	// SetDefault marks id as the default and clears the flag on every other
	// descriptor. Returns NotFoundError when absent.
	SetDefault(ctx context.Context, id string) error
}

// Reload reads the source and publishes the result to the registry. All
// reload paths (startup, SIGHUP, admin endpoint, file watcher) go through
// here; a load or validation failure leaves the registry's previous
// snapshot serving.
func Reload(ctx context.Context, src Source, reg *routing.Registry) error {
	models, err := src.Load(ctx)
	if err != nil {
		return err
	}
	return reg.Load(models)
}
