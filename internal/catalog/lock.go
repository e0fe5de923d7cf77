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

package catalog

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"syscall"
	"time"
)

// ErrLockTimeout is returned when the catalog lock cannot be acquired
// within the timeout. Another process is holding the catalog open for
// writing.
var ErrLockTimeout = errors.New("timeout acquiring catalog lock")

const lockTimeout = 5 * time.Second

// fileLock serializes catalog file mutations across processes using an
// advisory flock on a sidecar lock file.
type fileLock struct {
	path     string
	lockFile *os.File
}

func newFileLock(path string) *fileLock {
	return &fileLock{path: path + ".lock"}
}

// Lock acquires an exclusive lock, retrying until lockTimeout.
func (l *fileLock) Lock() error {
	if err := os.MkdirAll(filepath.Dir(l.path), 0700); err != nil {
		return fmt.Errorf("failed to create lock directory: %w", err)
	}

	lockFile, err := os.OpenFile(l.path, os.O_CREATE|os.O_RDWR, 0600)
	if err != nil {
		return fmt.Errorf("failed to open lock file: %w", err)
	}

	deadline := time.Now().Add(lockTimeout)
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	for {
		err := syscall.Flock(int(lockFile.Fd()), syscall.LOCK_EX|syscall.LOCK_NB)
		if err == nil {
			l.lockFile = lockFile
			return nil
		}

		if time.Now().After(deadline) {
			lockFile.Close()
			return ErrLockTimeout
		}

		<-ticker.C
	}
}

// Unlock releases the lock and closes the lock file.
func (l *fileLock) Unlock() error {
	if l.lockFile == nil {
		return nil
	}

	err := syscall.Flock(int(l.lockFile.Fd()), syscall.LOCK_UN)
	closeErr := l.lockFile.Close()
	l.lockFile = nil

	if err != nil {
		return fmt.Errorf("failed to release lock: %w", err)
	}
	return closeErr
}
