// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package hostsfile

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeHosts(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "hosts")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("writing hosts file: %v", err)
	}
	return path
}

func TestParse(t *testing.T) {
	path := writeHosts(t, `# managed hosts
host1.example.com

host2.example.com proxy=special.example.com:8080
host3.example.com other.example.com:3128
host4.example.com  # went through the bastion once
`)

	entries, err := Parse(path)
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}

	want := []Entry{
		{Pattern: "host1.example.com"},
		{Pattern: "host2.example.com", Proxy: "special.example.com:8080"},
		{Pattern: "host3.example.com", Proxy: "other.example.com:3128"},
		{Pattern: "host4.example.com"},
	}
	if len(entries) != len(want) {
		t.Fatalf("got %d entries, want %d: %+v", len(entries), len(want), entries)
	}
	for i, entry := range entries {
		if entry != want[i] {
			t.Errorf("entry %d = %+v, want %+v", i, entry, want[i])
		}
	}
}

func TestParseMissingFileIsEmpty(t *testing.T) {
	entries, err := Parse(filepath.Join(t.TempDir(), "absent"))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("got %d entries, want 0", len(entries))
	}
}

func TestParseLineErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		line    int
	}{
		{"empty proxy value", "host1.example.com proxy=\n", 1},
		{"duplicate override", "ok.example.com\nhost1.example.com proxy=a:1 proxy=b:2\n", 2},
		{"extra bare token", "host1.example.com a:1 b:2\n", 1},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := writeHosts(t, tt.content)
			_, err := Parse(path)
			var parseErr *ParseError
			if !errors.As(err, &parseErr) {
				t.Fatalf("Parse error = %v, want ParseError", err)
			}
			if parseErr.Line != tt.line {
				t.Errorf("error line = %d, want %d", parseErr.Line, tt.line)
			}
			if parseErr.Path != path {
				t.Errorf("error path = %q, want %q", parseErr.Path, path)
			}
		})
	}
}
