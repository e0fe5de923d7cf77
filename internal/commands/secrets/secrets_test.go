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
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/switchboard-io/switchboard/internal/commands/shared"
)

// isolateBackends points the file backend at an empty directory and
// strips the master key, leaving the env backend as the only live one.
func isolateBackends(t *testing.T) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", dir)
	t.Setenv("SWITCHBOARD_MASTER_KEY", "")
}

func runSecretsCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	cmd := NewCommand()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewCommand(t *testing.T) {
	cmd := NewCommand()
	if cmd.Use != "secrets" {
		t.Errorf("Use = %q, want %q", cmd.Use, "secrets")
	}

	want := []string{"set", "get", "list", "delete"}
	for _, name := range want {
		found := false
		for _, sub := range cmd.Commands() {
			if strings.HasPrefix(sub.Use, name) {
				found = true
				break
			}
		}
		if !found {
			t.Errorf("missing subcommand %q", name)
		}
	}
}

func TestValidateSecretKey(t *testing.T) {
	tests := []struct {
		key     string
		wantErr bool
	}{
		{"auth_token", false},
		{"api-key", false},
		{"vault/token", false},
		{"", true},
		{"has space", true},
		{"has\ttab", true},
		{"back\\slash", true},
	}

	for _, tt := range tests {
		err := validateSecretKey(tt.key)
		if (err != nil) != tt.wantErr {
			t.Errorf("validateSecretKey(%q) error = %v, wantErr %v", tt.key, err, tt.wantErr)
		}
	}
}

func TestNormalizeEnvKey(t *testing.T) {
	tests := []struct {
		key  string
		want string
	}{
		{"auth_token", "AUTH_TOKEN"},
		{"api-key", "API_KEY"},
		{"vault/token", "VAULT_TOKEN"},
	}

	for _, tt := range tests {
		if got := normalizeEnvKey(tt.key); got != tt.want {
			t.Errorf("normalizeEnvKey(%q) = %q, want %q", tt.key, got, tt.want)
		}
	}
}

func TestGet_EnvBackendMasked(t *testing.T) {
	isolateBackends(t)
	t.Setenv("SWITCHBOARD_SECRET_API_TOKEN", "swb_secret123456")

	out, err := runSecretsCommand(t, "get", "api_token")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if !strings.Contains(out, "swb_...3456") {
		t.Errorf("expected masked value, got:\n%s", out)
	}
	if strings.Contains(out, "secret123456") {
		t.Errorf("raw value leaked into masked output:\n%s", out)
	}
	if !strings.Contains(out, "--unmask") {
		t.Errorf("expected the unmask hint, got:\n%s", out)
	}
}

func TestGet_Unmask(t *testing.T) {
	isolateBackends(t)
	t.Setenv("SWITCHBOARD_SECRET_API_TOKEN", "swb_secret123456")

	out, err := runSecretsCommand(t, "get", "api_token", "--unmask")
	if err != nil {
		t.Fatalf("get error: %v", err)
	}
	if strings.TrimSpace(out) != "swb_secret123456" {
		t.Errorf("expected the raw value alone, got:\n%s", out)
	}
}

func TestGet_Missing(t *testing.T) {
	isolateBackends(t)

	_, err := runSecretsCommand(t, "get", "no_such_key")
	if err == nil {
		t.Fatal("expected an error for a missing secret")
	}

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != shared.ExitNotFound {
		t.Errorf("exit code = %d, want %d", exitErr.Code, shared.ExitNotFound)
	}
	if !strings.Contains(err.Error(), "secrets set") {
		t.Errorf("expected a hint to set the secret, got: %v", err)
	}
}

func TestList_EnvBackend(t *testing.T) {
	isolateBackends(t)
	t.Setenv("SWITCHBOARD_SECRET_API_TOKEN", "swb_secret123456")

	out, err := runSecretsCommand(t, "list")
	if err != nil {
		t.Fatalf("list error: %v", err)
	}
	for _, want := range []string{"KEY", "BACKEND", "READ-ONLY", "api_token", "env", "yes"} {
		if !strings.Contains(out, want) {
			t.Errorf("expected %q in listing, got:\n%s", want, out)
		}
	}
	if strings.Contains(out, "swb_secret123456") {
		t.Errorf("listing must not show values:\n%s", out)
	}
}

func TestDelete_NonInteractiveRequiresForce(t *testing.T) {
	isolateBackends(t)
	t.Setenv("SWITCHBOARD_NON_INTERACTIVE", "true")

	_, err := runSecretsCommand(t, "delete", "api_token")
	if err == nil {
		t.Fatal("expected delete without --force to fail in non-interactive mode")
	}
	if !strings.Contains(err.Error(), "--force") {
		t.Errorf("expected the error to mention --force, got: %v", err)
	}
}

func TestDelete_Missing(t *testing.T) {
	isolateBackends(t)

	_, err := runSecretsCommand(t, "delete", "no_such_key", "--force")
	if err == nil {
		t.Fatal("expected an error for a missing secret")
	}

	var exitErr *shared.ExitError
	if !errors.As(err, &exitErr) {
		t.Fatalf("expected ExitError, got %T: %v", err, err)
	}
	if exitErr.Code != shared.ExitNotFound {
		t.Errorf("exit code = %d, want %d", exitErr.Code, shared.ExitNotFound)
	}
}
