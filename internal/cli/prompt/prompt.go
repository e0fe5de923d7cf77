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

// Package prompt provides interactive confirmation for destructive CLI
// commands. It supports non-interactive mode for CI/CD environments,
// where confirmations fail instead of hanging on a prompt.
package prompt

import (
	"context"
)

// Prompter defines the interface for interactive confirmation.
// Implementations include SurveyPrompter (production) and MockPrompter (testing).
type Prompter interface {
	// Confirm asks a yes/no question and returns the user's answer
	Confirm(ctx context.Context, message string, def bool) (bool, error)

	// IsInteractive returns true if prompts can be displayed
	IsInteractive() bool
}
