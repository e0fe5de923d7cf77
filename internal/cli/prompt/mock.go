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

package prompt

import (
	"context"
	"fmt"
)

// MockPrompter implements Prompter with scripted responses for testing.
// It allows tests to simulate user input without requiring interactive terminals.
type MockPrompter struct {
	responses    []bool
	currentIndex int
	interactive  bool
	callLog      []string
}

// NewMockPrompter creates a new mock prompter with pre-scripted answers.
func NewMockPrompter(interactive bool, responses ...bool) *MockPrompter {
	return &MockPrompter{
		responses:   responses,
		interactive: interactive,
		callLog:     make([]string, 0),
	}
}

// Confirm returns the next scripted answer, or the default when the
// script is exhausted.
func (mp *MockPrompter) Confirm(ctx context.Context, message string, def bool) (bool, error) {
	mp.callLog = append(mp.callLog, fmt.Sprintf("Confirm(%s)", message))

	if !mp.interactive {
		return false, fmt.Errorf("cannot prompt in non-interactive mode")
	}

	if mp.currentIndex >= len(mp.responses) {
		return def, nil
	}

	resp := mp.responses[mp.currentIndex]
	mp.currentIndex++
	return resp, nil
}

// IsInteractive returns the configured interactive state.
func (mp *MockPrompter) IsInteractive() bool {
	return mp.interactive
}

// GetCallLog returns the log of all prompt calls made.
func (mp *MockPrompter) GetCallLog() []string {
	return mp.callLog
}

// Reset clears the call log and resets the response index.
func (mp *MockPrompter) Reset() {
	mp.currentIndex = 0
	mp.callLog = make([]string, 0)
}
