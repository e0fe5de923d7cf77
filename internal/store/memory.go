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

package store

import (
	"context"
	"sync"

	swberrors "github.com/switchboard-io/switchboard/pkg/errors"
)

// MemoryStore holds preferences in process memory. Contents are lost on
// restart.
type MemoryStore struct {
	mu    sync.RWMutex
	prefs map[string]string
}

// NewMemoryStore creates an empty in-memory preference store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{prefs: make(map[string]string)}
}

// PreferredModel returns the stored model id for a user.
func (s *MemoryStore) PreferredModel(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	modelID, ok := s.prefs[userID]
	if !ok {
		return "", &swberrors.NotFoundError{Resource: "preference", ID: userID}
	}
	return modelID, nil
}

// Set stores a user's preferred model, replacing any previous preference.
func (s *MemoryStore) Set(ctx context.Context, userID, modelID string) error {
	if userID == "" {
		return &swberrors.ValidationError{
			Field:      "user_id",
			Message:    "user id must not be empty",
			Suggestion: "Provide the user the preference belongs to",
		}
	}
	if modelID == "" {
		return &swberrors.ValidationError{
			Field:      "preferred_model",
			Message:    "model id must not be empty",
			Suggestion: "Use clear to remove a preference",
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.prefs[userID] = modelID
	return nil
}

// Clear removes a user's preference.
func (s *MemoryStore) Clear(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.prefs[userID]; !ok {
		return &swberrors.NotFoundError{Resource: "preference", ID: userID}
	}
	delete(s.prefs, userID)
	return nil
}

// Close releases resources. The memory store holds none.
func (s *MemoryStore) Close() error {
	return nil
}
