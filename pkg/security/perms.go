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

// Package security provides filesystem permission checks for the files
// switchboard reads and writes: the config file, the catalog, the
// preference database, and secret material. A world-writable catalog
// lets anyone on the host steer model selection, so the daemon and the
// validate command warn about loose permissions at startup rather than
// refusing to run.
package security

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// sensitivePatterns are basename fragments that mark a file as holding
// credentials or configuration. Matched case-insensitively.
var sensitivePatterns = []string{
	"config", "settings", "conf", ".cfg", ".ini",
	"secret", "credential", "password", "auth",
	"key", ".pem", "private",
	".env",
	"token", "bearer",
}

// isSensitiveName reports whether the basename suggests the file holds
// secrets or configuration.
func isSensitiveName(path string) bool {
	base := strings.ToLower(filepath.Base(path))
	for _, pattern := range sensitivePatterns {
		if strings.Contains(base, pattern) {
			return true
		}
	}
	return false
}

// CheckConfigPermissions inspects a config file or directory and returns
// warning messages for overly permissive modes. A missing path returns no
// warnings; the caller may not have created the file yet. Warnings are
// advisory, startup proceeds either way.
func CheckConfigPermissions(path string) []string {
	var warnings []string

	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return warnings
		}
		warnings = append(warnings, fmt.Sprintf("unable to check permissions for %s: %v", path, err))
		return warnings
	}

	perm := info.Mode().Perm()

	if info.Mode().IsDir() {
		if perm&0004 != 0 {
			warnings = append(warnings, fmt.Sprintf("directory %s is world-readable (permissions: %o), recommend chmod 0700 or 0750", path, perm))
		}
		if perm&0002 != 0 {
			warnings = append(warnings, fmt.Sprintf("directory %s is world-writable (permissions: %o), recommend chmod 0700 or 0750", path, perm))
		}
		if perm&0020 != 0 {
			warnings = append(warnings, fmt.Sprintf("directory %s is group-writable (permissions: %o), recommend chmod 0700", path, perm))
		}
		return warnings
	}

	if perm&0004 != 0 {
		warnings = append(warnings, fmt.Sprintf("file %s is world-readable (permissions: %o), recommend chmod 0600 or 0640", path, perm))
	}
	if perm&0002 != 0 {
		warnings = append(warnings, fmt.Sprintf("file %s is world-writable (permissions: %o), recommend chmod 0600 or 0640", path, perm))
	}
	if perm&0020 != 0 && isSensitiveName(path) {
		warnings = append(warnings, fmt.Sprintf("sensitive file %s is group-writable (permissions: %o), recommend chmod 0600", path, perm))
	}

	return warnings
}
