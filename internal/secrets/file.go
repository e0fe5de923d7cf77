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
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/argon2"
)

const (
	// FileBackendPriority is the priority for the encrypted file backend.
	FileBackendPriority = 25

	// Argon2id key derivation parameters.
	argon2Time        = 3
	argon2Memory      = 64 * 1024 // 64MB in KB
	argon2Parallelism = 4
	argon2KeyLength   = 32 // 256 bits for AES-256

	// AES-GCM nonce size.
	gcmNonceSize = 12 // 96 bits (standard for GCM)

	// Argon2 salt size.
	saltSize = 16

	// masterKeyEnv is the environment variable holding the master key.
	masterKeyEnv = "SWITCHBOARD_MASTER_KEY"

	defaultSecretsFile = "secrets.enc"
	masterKeyFile      = "master.key"
)

// FileBackend provides encrypted storage using AES-256-GCM.
// Secrets are stored in a JSON file encrypted with a key derived from a
// master key via Argon2id. The master key is resolved from:
//  1. The key passed to NewFileBackend
//  2. The SWITCHBOARD_MASTER_KEY environment variable
//  3. The master.key file next to the secrets file
//
// When no master key can be found the backend reports itself unavailable
// so that lookups fall through to the other backends.
type FileBackend struct {
	path      string
	masterKey []byte
	mu        sync.RWMutex
	available bool
}

// encryptedData is the on-disk envelope for the encrypted secrets file.
type encryptedData struct {
	Salt  []byte `json:"salt"`  // Salt for Argon2 key derivation
	Nonce []byte `json:"nonce"` // Nonce for AES-GCM
	Data  []byte `json:"data"`  // Encrypted JSON map of secrets
}

// NewFileBackend creates a new encrypted file backend. An empty path uses
// the default secrets file under the user config directory. An empty
// masterKey resolves the key from the environment or the master key file.
func NewFileBackend(path string, masterKey string) (*FileBackend, error) {
	if path == "" {
		configDir, err := os.UserConfigDir()
		if err != nil {
			return nil, fmt.Errorf("failed to determine config directory: %w", err)
		}
		path = filepath.Join(configDir, "switchboard", defaultSecretsFile)
	}

	b := &FileBackend{path: path}

	if masterKey != "" {
		b.masterKey = []byte(masterKey)
	} else {
		key, err := loadMasterKey(filepath.Join(filepath.Dir(path), masterKeyFile))
		if err != nil {
			return nil, err
		}
		b.masterKey = key
	}

	b.available = len(b.masterKey) > 0
	return b, nil
}

// loadMasterKey reads the master key from the environment or key file.
// A missing key is not an error; the backend is simply unavailable.
func loadMasterKey(keyPath string) ([]byte, error) {
	if key := os.Getenv(masterKeyEnv); key != "" {
		return []byte(key), nil
	}

	data, err := os.ReadFile(keyPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read master key file: %w", err)
	}

	if err := verifyFilePermissions(keyPath); err != nil {
		return nil, err
	}

	key := strings.TrimSpace(string(data))
	if key == "" {
		return nil, nil
	}
	return []byte(key), nil
}

// Name returns the backend identifier.
func (f *FileBackend) Name() string {
	return "file"
}

// Get retrieves a secret from the encrypted file.
func (f *FileBackend) Get(ctx context.Context, key string) (string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.available {
		return "", f.unavailableErr()
	}

	secrets, err := f.load()
	if err != nil {
		return "", err
	}

	value, ok := secrets[key]
	if !ok {
		return "", fmt.Errorf("%w: not in encrypted file", ErrSecretNotFound)
	}

	return value, nil
}

// Set stores a secret in the encrypted file.
func (f *FileBackend) Set(ctx context.Context, key string, value string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.available {
		return f.unavailableErr()
	}

	secrets, err := f.load()
	if err != nil {
		return err
	}

	secrets[key] = value
	return f.save(secrets)
}

// Delete removes a secret from the encrypted file.
func (f *FileBackend) Delete(ctx context.Context, key string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.available {
		return f.unavailableErr()
	}

	secrets, err := f.load()
	if err != nil {
		return err
	}

	if _, ok := secrets[key]; !ok {
		return fmt.Errorf("%w: not in encrypted file", ErrSecretNotFound)
	}

	delete(secrets, key)
	return f.save(secrets)
}

// List returns all secret keys in the encrypted file, sorted.
func (f *FileBackend) List(ctx context.Context) ([]string, error) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	if !f.available {
		return nil, f.unavailableErr()
	}

	secrets, err := f.load()
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(secrets))
	for key := range secrets {
		keys = append(keys, key)
	}
	sort.Strings(keys)

	return keys, nil
}

// Available returns whether a master key was found.
func (f *FileBackend) Available() bool {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.available
}

// Priority returns the backend priority (lowest).
func (f *FileBackend) Priority() int {
	return FileBackendPriority
}

// Path returns the location of the encrypted secrets file.
func (f *FileBackend) Path() string {
	return f.path
}

func (f *FileBackend) unavailableErr() error {
	return fmt.Errorf("%w: no master key (set %s or create %s)",
		ErrBackendUnavailable, masterKeyEnv, filepath.Join(filepath.Dir(f.path), masterKeyFile))
}

// load decrypts and parses the secrets file. A missing file yields an
// empty map so the first Set can create it.
func (f *FileBackend) load() (map[string]string, error) {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if os.IsNotExist(err) {
			return make(map[string]string), nil
		}
		return nil, fmt.Errorf("failed to read secrets file: %w", err)
	}

	if err := verifyFilePermissions(f.path); err != nil {
		return nil, err
	}

	var envelope encryptedData
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse secrets file: %w", err)
	}

	derived := deriveKey(f.masterKey, envelope.Salt)
	defer zeroBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return nil, fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCM: %w", err)
	}

	plaintext, err := gcm.Open(nil, envelope.Nonce, envelope.Data, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to decrypt secrets (wrong master key?): %w", err)
	}
	defer zeroBytes(plaintext)

	var secrets map[string]string
	if err := json.Unmarshal(plaintext, &secrets); err != nil {
		return nil, fmt.Errorf("failed to parse decrypted secrets: %w", err)
	}

	return secrets, nil
}

// save encrypts and writes the secrets file atomically. A fresh salt and
// nonce are generated on every save.
func (f *FileBackend) save(secrets map[string]string) error {
	plaintext, err := json.Marshal(secrets)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets: %w", err)
	}
	defer zeroBytes(plaintext)

	salt := make([]byte, saltSize)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to generate salt: %w", err)
	}

	derived := deriveKey(f.masterKey, salt)
	defer zeroBytes(derived)

	block, err := aes.NewCipher(derived)
	if err != nil {
		return fmt.Errorf("failed to create cipher: %w", err)
	}

	gcm, err := cipher.NewGCM(block)
	if err != nil {
		return fmt.Errorf("failed to create GCM: %w", err)
	}

	nonce := make([]byte, gcmNonceSize)
	if _, err := rand.Read(nonce); err != nil {
		return fmt.Errorf("failed to generate nonce: %w", err)
	}

	envelope := encryptedData{
		Salt:  salt,
		Nonce: nonce,
		Data:  gcm.Seal(nil, nonce, plaintext, nil),
	}

	data, err := json.Marshal(&envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal secrets file: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(f.path), 0700); err != nil {
		return fmt.Errorf("failed to create secrets directory: %w", err)
	}

	tmpPath := f.path + ".tmp"
	if err := os.WriteFile(tmpPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write secrets file: %w", err)
	}

	if err := os.Rename(tmpPath, f.path); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("failed to replace secrets file: %w", err)
	}

	return nil
}

// deriveKey derives an AES-256 key from the master key using Argon2id.
func deriveKey(masterKey, salt []byte) []byte {
	return argon2.IDKey(masterKey, salt, argon2Time, argon2Memory, argon2Parallelism, argon2KeyLength)
}

// verifyFilePermissions rejects files readable by group or other, and
// refuses to follow symlinks.
func verifyFilePermissions(path string) error {
	info, err := os.Lstat(path)
	if err != nil {
		return fmt.Errorf("failed to stat %s: %w", path, err)
	}

	if info.Mode()&os.ModeSymlink != 0 {
		return fmt.Errorf("refusing to use symlinked file %s", path)
	}

	if perm := info.Mode().Perm(); perm&0077 != 0 {
		return fmt.Errorf("file %s has insecure permissions %04o (want 0600)", path, perm)
	}

	return nil
}

// zeroBytes overwrites sensitive data in memory.
func zeroBytes(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
