// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package shellprofile

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

var exports = []string{
	`export http_proxy="http://proxy.corp:3128"`,
	`export no_proxy="localhost,127.0.0.1"`,
}

func TestRenderAppendsBlock(t *testing.T) {
	got := Render("export PATH=$PATH:~/bin\n", exports)
	want := "export PATH=$PATH:~/bin\n" +
		"\n" +
		StartSentinel + "\n" +
		exports[0] + "\n" +
		exports[1] + "\n" +
		EndSentinel + "\n"
	if got != want {
		t.Errorf("Render:\n%s\nwant:\n%s", got, want)
	}
}

func TestRenderReplacesExistingBlock(t *testing.T) {
	first := Render("alias ll='ls -l'\n", exports)
	second := Render(first, []string{`export all_proxy="http://new.corp:8080"`})

	if strings.Contains(second, "proxy.corp:3128") {
		t.Errorf("old exports survived:\n%s", second)
	}
	if n := strings.Count(second, StartSentinel); n != 1 {
		t.Errorf("got %d start sentinels, want 1:\n%s", n, second)
	}
	if !strings.HasPrefix(second, "alias ll='ls -l'\n") {
		t.Errorf("user content disturbed:\n%s", second)
	}
}

func TestRenderEmptyExportsRemovesBlock(t *testing.T) {
	withBlock := Render("# mine\n", exports)
	got := Render(withBlock, nil)
	if got != "# mine\n" {
		t.Errorf("Render = %q, want %q", got, "# mine\n")
	}
}

func TestRenderRemoveFromEmptyProfile(t *testing.T) {
	withBlock := Render("", exports)
	if got := Render(withBlock, nil); got != "" {
		t.Errorf("Render = %q, want empty", got)
	}
}

func TestRenderIsIdempotent(t *testing.T) {
	first := Render("# mine\n", exports)
	if second := Render(first, exports); second != first {
		t.Errorf("second Render diverged:\n%s\nwant:\n%s", second, first)
	}
}

func TestRenderPreservesContentBelowBlock(t *testing.T) {
	doc := StartSentinel + "\n" +
		`export http_proxy="http://stale:1"` + "\n" +
		EndSentinel + "\n" +
		"\n" +
		"eval \"$(direnv hook bash)\"\n"

	got := Render(doc, exports)
	if !strings.Contains(got, "direnv hook bash") {
		t.Errorf("content below block lost:\n%s", got)
	}
	if strings.Contains(got, "stale:1") {
		t.Errorf("stale export survived:\n%s", got)
	}
	if !strings.HasSuffix(got, EndSentinel+"\n") {
		t.Errorf("block not moved to the end:\n%s", got)
	}
}

func TestWriteBlockCreatesMissingProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bashrc")
	if err := WriteBlock([]string{path}, exports); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading profile: %v", err)
	}
	if !strings.Contains(string(data), exports[0]) {
		t.Errorf("profile missing export:\n%s", data)
	}
}

func TestWriteBlockEmptyExportsSkipsMissingProfile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".bashrc")
	if err := WriteBlock([]string{path}, nil); err != nil {
		t.Fatalf("WriteBlock: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Error("WriteBlock created a profile just to remove from it")
	}
}

func TestRemoveBlockLeavesBlocklessProfileUntouched(t *testing.T) {
	// Trailing blank lines would be normalized by a rewrite; a profile
	// without a managed block must come back byte-identical.
	content := "export PATH=$PATH:~/bin\n\n\n"
	path := filepath.Join(t.TempDir(), ".bashrc")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := RemoveBlock([]string{path}); err != nil {
		t.Fatalf("RemoveBlock: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != content {
		t.Errorf("profile rewritten without a managed block:\n%q\nwant:\n%q", data, content)
	}
}

func TestRemoveBlockAttemptsAllFiles(t *testing.T) {
	dir := t.TempDir()
	// A directory in place of a profile makes the read fail without
	// depending on file permissions.
	blocked := filepath.Join(dir, "profile-is-a-directory")
	if err := os.MkdirAll(blocked, 0o700); err != nil {
		t.Fatal(err)
	}

	good := filepath.Join(dir, ".bashrc")
	if err := os.WriteFile(good, []byte(Render("# mine\n", exports)), 0o644); err != nil {
		t.Fatal(err)
	}

	err := RemoveBlock([]string{blocked, good})
	if err == nil {
		t.Fatal("RemoveBlock succeeded despite unreadable profile")
	}
	data, readErr := os.ReadFile(good)
	if readErr != nil {
		t.Fatal(readErr)
	}
	if strings.Contains(string(data), StartSentinel) {
		t.Errorf("second profile not cleaned after first failed:\n%s", data)
	}
}
