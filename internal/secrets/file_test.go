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
	"os"
	"path/filepath"
	"reflect"
	"testing"
)

func TestFileBackend_Metadata(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	backend, err := NewFileBackend(path, "test-master-key-123")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	if backend.Name() != "file" {
		t.Errorf("Name() = %v, want %v", backend.Name(), "file")
	}

	if backend.Priority() != FileBackendPriority {
		t.Errorf("Priority() = %v, want %v", backend.Priority(), FileBackendPriority)
	}

	if !backend.Available() {
		t.Error("Available() = false, want true")
	}

	if backend.Path() != path {
		t.Errorf("Path() = %v, want %v", backend.Path(), path)
	}
}

func TestFileBackend_SetGetDelete(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	backend, err := NewFileBackend(path, "test-master-key-for-encryption-123")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	ctx := context.Background()

	err = backend.Set(ctx, "auth_token", "swb_value1")
	if err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if info.Mode().Perm() != 0600 {
		t.Errorf("File permissions = %o, want 0600", info.Mode().Perm())
	}

	value, err := backend.Get(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "swb_value1" {
		t.Errorf("Get() = %v, want %v", value, "swb_value1")
	}

	_, err = backend.Get(ctx, "missing_token")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get() non-existent error = %v, want %v", err, ErrSecretNotFound)
	}

	err = backend.Set(ctx, "auth_token", "swb_updated")
	if err != nil {
		t.Fatalf("Set() (update) error = %v", err)
	}

	value, err = backend.Get(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Get() (after update) error = %v", err)
	}
	if value != "swb_updated" {
		t.Errorf("Get() (after update) = %v, want %v", value, "swb_updated")
	}

	err = backend.Delete(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Delete() error = %v", err)
	}

	_, err = backend.Get(ctx, "auth_token")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Get() after delete error = %v, want %v", err, ErrSecretNotFound)
	}

	err = backend.Delete(ctx, "auth_token")
	if !errors.Is(err, ErrSecretNotFound) {
		t.Errorf("Delete() non-existent error = %v, want %v", err, ErrSecretNotFound)
	}
}

func TestFileBackend_ListSorted(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	backend, err := NewFileBackend(path, "test-master-key-for-listing-456")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	ctx := context.Background()

	keys, err := backend.List(ctx)
	if err != nil {
		t.Fatalf("List() empty error = %v", err)
	}
	if len(keys) != 0 {
		t.Errorf("List() empty returned %d keys, want 0", len(keys))
	}

	for _, key := range []string{"gamma", "alpha", "beta"} {
		if err := backend.Set(ctx, key, "value-"+key); err != nil {
			t.Fatalf("Set(%q) error = %v", key, err)
		}
	}

	keys, err = backend.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}

	want := []string{"alpha", "beta", "gamma"}
	if !reflect.DeepEqual(keys, want) {
		t.Errorf("List() = %v, want %v", keys, want)
	}
}

func TestFileBackend_EncryptionRoundTrip(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")
	masterKey := "test-encryption-round-trip-key"

	backend1, err := NewFileBackend(path, masterKey)
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	ctx := context.Background()

	stored := map[string]string{
		"auth_token": "swb_secret1",
		"otlp_key":   "otlp-secret-2",
		"db_pass":    "database-password",
	}

	for k, v := range stored {
		if err := backend1.Set(ctx, k, v); err != nil {
			t.Fatalf("Set(%q) error = %v", k, err)
		}
	}

	// A fresh instance with the same key must decrypt everything.
	backend2, err := NewFileBackend(path, masterKey)
	if err != nil {
		t.Fatalf("NewFileBackend() (second) error = %v", err)
	}

	for k, want := range stored {
		got, err := backend2.Get(ctx, k)
		if err != nil {
			t.Errorf("Get(%q) error = %v", k, err)
			continue
		}
		if got != want {
			t.Errorf("Get(%q) = %v, want %v", k, got, want)
		}
	}
}

func TestFileBackend_WrongMasterKey(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	backend1, err := NewFileBackend(path, "correct-key")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	ctx := context.Background()
	if err := backend1.Set(ctx, "auth_token", "value"); err != nil {
		t.Fatalf("Set() error = %v", err)
	}

	backend2, err := NewFileBackend(path, "wrong-key")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	_, err = backend2.Get(ctx, "auth_token")
	if err == nil {
		t.Error("Get() with wrong key succeeded, want error")
	}
}

func TestFileBackend_NoMasterKey(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	t.Setenv("SWITCHBOARD_MASTER_KEY", "")

	backend, err := NewFileBackend(path, "")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	if backend.Available() {
		t.Error("Available() = true, want false (no master key)")
	}

	ctx := context.Background()

	_, err = backend.Get(ctx, "auth_token")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Get() error = %v, want %v", err, ErrBackendUnavailable)
	}

	err = backend.Set(ctx, "auth_token", "value")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Set() error = %v, want %v", err, ErrBackendUnavailable)
	}

	err = backend.Delete(ctx, "auth_token")
	if !errors.Is(err, ErrBackendUnavailable) {
		t.Errorf("Delete() error = %v, want %v", err, ErrBackendUnavailable)
	}
}

func TestFileBackend_MasterKeyFromEnv(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	t.Setenv("SWITCHBOARD_MASTER_KEY", "env-master-key-789")

	backend, err := NewFileBackend(path, "")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	if !backend.Available() {
		t.Error("Available() = false, want true (env key set)")
	}

	ctx := context.Background()
	if err := backend.Set(ctx, "auth_token", "value"); err != nil {
		t.Errorf("Set() with env key error = %v", err)
	}

	value, err := backend.Get(ctx, "auth_token")
	if err != nil {
		t.Errorf("Get() with env key error = %v", err)
	}
	if value != "value" {
		t.Errorf("Get() = %v, want %v", value, "value")
	}
}

func TestFileBackend_MasterKeyFromFile(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	t.Setenv("SWITCHBOARD_MASTER_KEY", "")

	keyPath := filepath.Join(tmpDir, "master.key")
	if err := os.WriteFile(keyPath, []byte("file-master-key\n"), 0600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	backend, err := NewFileBackend(path, "")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	if !backend.Available() {
		t.Error("Available() = false, want true (key file present)")
	}

	ctx := context.Background()
	if err := backend.Set(ctx, "auth_token", "value"); err != nil {
		t.Fatalf("Set() with file key error = %v", err)
	}

	// Trailing whitespace in the key file must not change the key.
	sameKey, err := NewFileBackend(path, "file-master-key")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	value, err := sameKey.Get(ctx, "auth_token")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if value != "value" {
		t.Errorf("Get() = %v, want %v", value, "value")
	}
}

func TestFileBackend_ConcurrentAccess(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "secrets.enc")

	backend, err := NewFileBackend(path, "concurrent-test-key")
	if err != nil {
		t.Fatalf("NewFileBackend() error = %v", err)
	}

	ctx := context.Background()

	done := make(chan bool, 10)
	for i := 0; i < 10; i++ {
		go func(n int) {
			backend.Set(ctx, fmt.Sprintf("key%d", n), fmt.Sprintf("value%d", n))
			done <- true
		}(i)
	}

	for i := 0; i < 10; i++ {
		<-done
	}

	for i := 0; i < 10; i++ {
		value, err := backend.Get(ctx, fmt.Sprintf("key%d", i))
		if err != nil {
			t.Errorf("Get(key%d) error = %v", i, err)
			continue
		}
		if want := fmt.Sprintf("value%d", i); value != want {
			t.Errorf("Get(key%d) = %v, want %v", i, value, want)
		}
	}
}

func TestZeroBytes(t *testing.T) {
	data := []byte{1, 2, 3, 4, 5}
	zeroBytes(data)

	for i, b := range data {
		if b != 0 {
			t.Errorf("zeroBytes() data[%d] = %d, want 0", i, b)
		}
	}
}

func TestVerifyFilePermissions(t *testing.T) {
	tmpDir := t.TempDir()

	tests := []struct {
		name    string
		perm    os.FileMode
		wantErr bool
	}{
		{
			name:    "secure permissions 0600",
			perm:    0600,
			wantErr: false,
		},
		{
			name:    "secure permissions 0400",
			perm:    0400,
			wantErr: false,
		},
		{
			name:    "insecure permissions 0644",
			perm:    0644,
			wantErr: true,
		},
		{
			name:    "insecure permissions 0666",
			perm:    0666,
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(tmpDir, tt.name)
			err := os.WriteFile(path, []byte("test"), tt.perm)
			if err != nil {
				t.Fatalf("WriteFile() error = %v", err)
			}

			err = verifyFilePermissions(path)
			if (err != nil) != tt.wantErr {
				t.Errorf("verifyFilePermissions() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}

	t.Run("symlink rejected", func(t *testing.T) {
		target := filepath.Join(tmpDir, "target")
		if err := os.WriteFile(target, []byte("test"), 0600); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}

		link := filepath.Join(tmpDir, "link")
		if err := os.Symlink(target, link); err != nil {
			t.Skipf("Symlink() not supported: %v", err)
		}

		if err := verifyFilePermissions(link); err == nil {
			t.Error("verifyFilePermissions() on symlink succeeded, want error")
		}
	})
}
