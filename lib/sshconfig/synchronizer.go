// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package sshconfig

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/adrianmross/proxyctl/lib/hostsfile"
)

// BackupSuffix is appended to the config path to name the backup file
// written before each mutating call.
const BackupSuffix = ".proxyctl.bak"

// Synchronizer applies [Apply] and [ApplyRemoval] to an SSH config
// file on disk. The mutex serializes Add and Remove within the process
// so that the backup/read/transform/write sequence of one call cannot
// interleave with another; it provides no protection against edits by
// other processes.
type Synchronizer struct {
	path       string
	backupPath string
	mu         sync.Mutex
}

// New returns a Synchronizer for the SSH config at path. The backup is
// written next to it as <path>.proxyctl.bak.
func New(path string) *Synchronizer {
	return &Synchronizer{
		path:       path,
		backupPath: path + BackupSuffix,
	}
}

// Path returns the config file path the synchronizer manages.
func (s *Synchronizer) Path() string { return s.path }

// BackupPath returns the path of the backup written before mutations.
func (s *Synchronizer) BackupPath() string { return s.backupPath }

// Add ensures every registered host block in the config carries the
// expected ProxyCommand line. A missing config file starts from empty
// content and is created along with its parent directory. Returns
// whether the file was modified. Calling Add again with identical
// inputs is a no-op: no write, no backup.
func (s *Synchronizer) Add(entries []hostsfile.Entry, defaultProxy string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, exists, err := s.read()
	if err != nil {
		return false, err
	}

	updated, changed, err := Apply(original, entries, defaultProxy)
	if err != nil {
		return false, err
	}
	if !changed {
		return false, nil
	}

	if exists {
		if err := s.backup(original); err != nil {
			return false, err
		}
	}
	if err := s.write(updated); err != nil {
		return false, err
	}
	return true, nil
}

// Remove deletes tool-authored ProxyCommand lines from every
// registered host block. A missing config file is a no-op. When the
// file exists and entries are present, a backup is taken before the
// document is inspected, even if nothing ends up changing.
func (s *Synchronizer) Remove(entries []hostsfile.Entry) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	original, exists, err := s.read()
	if err != nil {
		return false, err
	}
	if !exists {
		return false, nil
	}

	if len(entries) > 0 {
		if err := s.backup(original); err != nil {
			return false, err
		}
	}

	updated, changed := ApplyRemoval(original, entries)
	if !changed {
		return false, nil
	}
	if err := s.write(updated); err != nil {
		return false, err
	}
	return true, nil
}

// read returns the current config content and whether the file exists.
func (s *Synchronizer) read() (string, bool, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading ssh config %s: %w", s.path, err)
	}
	return string(data), true, nil
}

// backup writes a byte-for-byte copy of content to the backup path,
// overwriting any previous backup.
func (s *Synchronizer) backup(content string) error {
	if err := os.WriteFile(s.backupPath, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing ssh config backup %s: %w", s.backupPath, err)
	}
	return nil
}

// write replaces the config content, creating the parent directory
// when needed.
func (s *Synchronizer) write(content string) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("creating ssh config directory: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(content), 0o600); err != nil {
		return fmt.Errorf("writing ssh config %s: %w", s.path, err)
	}
	return nil
}
