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

package shared

import (
	"io"
	"log/slog"

	"github.com/switchboard-io/switchboard/internal/log"
)

// NewCLILogger builds the logger for one-shot commands. Warnings (like
// catalog default repairs) surface as text; info noise stays out unless
// --verbose is set.
func NewCLILogger(errOut io.Writer) *slog.Logger {
	level := "warn"
	if GetVerbose() {
		level = "debug"
	}
	return log.New(&log.Config{
		Level:  level,
		Format: log.FormatText,
		Output: errOut,
	})
}
