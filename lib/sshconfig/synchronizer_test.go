// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package sshconfig

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrianmross/proxyctl/lib/hostsfile"
)

func readFile(t *testing.T, path string) string {
	t.Helper()
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading %s: %v", path, err)
	}
	return string(data)
}

func TestSynchronizerAddCreatesConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".ssh", "config")
	sync := New(path)

	changed, err := sync.Add(devEntries, "proxy.corp:3128")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if changed {
		t.Error("Add reported a change for a config with no matching blocks")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("Add created a config file despite writing nothing")
	}
}

func TestSynchronizerAddWritesAndBacksUp(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	original := "Host devbox\n    User alice\n"
	if err := os.WriteFile(path, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}
	sync := New(path)

	changed, err := sync.Add(devEntries, "proxy.corp:3128")
	if err != nil {
		t.Fatalf("Add: %v", err)
	}
	if !changed {
		t.Fatal("Add reported no change")
	}
	if got := readFile(t, path); !strings.Contains(got, "ProxyCommand /usr/bin/nc -X connect -x proxy.corp:3128 %h %p") {
		t.Errorf("config missing proxy line:\n%s", got)
	}
	if got := readFile(t, sync.BackupPath()); got != original {
		t.Errorf("backup = %q, want prior content %q", got, original)
	}
}

func TestSynchronizerAddIdempotentSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	if err := os.WriteFile(path, []byte("Host devbox\n    User alice\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	sync := New(path)

	if _, err := sync.Add(devEntries, "proxy.corp:3128"); err != nil {
		t.Fatalf("first Add: %v", err)
	}
	afterFirst := readFile(t, path)
	if err := os.Remove(sync.BackupPath()); err != nil {
		t.Fatal(err)
	}

	changed, err := sync.Add(devEntries, "proxy.corp:3128")
	if err != nil {
		t.Fatalf("second Add: %v", err)
	}
	if changed {
		t.Error("second Add reported a change")
	}
	if got := readFile(t, path); got != afterFirst {
		t.Errorf("second Add altered the file:\n%s", got)
	}
	if _, err := os.Stat(sync.BackupPath()); !os.IsNotExist(err) {
		t.Error("second Add wrote a backup despite no change")
	}
}

func TestSynchronizerAddConflictLeavesFileUntouched(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	original := "Host devbox devbox.internal\n    User alice\n"
	if err := os.WriteFile(path, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}
	entries := []hostsfile.Entry{
		{Pattern: "devbox", Proxy: "a.corp:3128"},
		{Pattern: "devbox.internal", Proxy: "b.corp:3128"},
	}
	sync := New(path)

	_, err := sync.Add(entries, "")
	var conflict *ConflictError
	if !errors.As(err, &conflict) {
		t.Fatalf("err = %v, want ConflictError", err)
	}
	if got := readFile(t, path); got != original {
		t.Errorf("file modified on conflict:\n%s", got)
	}
	if _, err := os.Stat(sync.BackupPath()); !os.IsNotExist(err) {
		t.Error("backup written on conflict")
	}
}

func TestSynchronizerRemoveMissingFileIsNoop(t *testing.T) {
	sync := New(filepath.Join(t.TempDir(), "config"))
	changed, err := sync.Remove(devEntries)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if changed {
		t.Error("Remove reported a change for a missing file")
	}
}

func TestSynchronizerRemoveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	original := "Host devbox\n    HostName devbox.internal\n"
	if err := os.WriteFile(path, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}
	sync := New(path)

	if _, err := sync.Add(devEntries, "proxy.corp:3128"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	withProxy := readFile(t, path)

	changed, err := sync.Remove(devEntries)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if !changed {
		t.Fatal("Remove reported no change")
	}
	if got := readFile(t, path); got != original {
		t.Errorf("round trip diverged:\n%s\nwant:\n%s", got, original)
	}
	if got := readFile(t, sync.BackupPath()); got != withProxy {
		t.Errorf("backup = %q, want pre-removal content %q", got, withProxy)
	}
}

func TestSynchronizerRemoveBacksUpEvenWithoutChange(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config")
	original := "Host devbox\n    User alice\n"
	if err := os.WriteFile(path, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}
	sync := New(path)

	changed, err := sync.Remove(devEntries)
	if err != nil {
		t.Fatalf("Remove: %v", err)
	}
	if changed {
		t.Error("Remove reported a change with nothing to strip")
	}
	if got := readFile(t, sync.BackupPath()); got != original {
		t.Errorf("backup = %q, want %q", got, original)
	}
}
