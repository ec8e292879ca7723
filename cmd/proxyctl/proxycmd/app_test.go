// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxycmd

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/adrianmross/proxyctl/lib/proxyenv"
	"github.com/adrianmross/proxyctl/lib/proxyspec"
	"github.com/adrianmross/proxyctl/lib/shellprofile"
)

// testApp builds an App rooted in a temporary home directory so no
// test touches the real user environment.
func testApp(t *testing.T) *App {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(home, ".local", "share"))
	t.Setenv("SHELL", "/bin/bash")

	app, err := LoadApp(slog.New(slog.DiscardHandler))
	if err != nil {
		t.Fatalf("LoadApp: %v", err)
	}
	// Keep tests off the network.
	app.Settings.WPAD.Enabled = false
	return app
}

func clearProxyVariables(t *testing.T) {
	t.Helper()
	for _, pair := range proxyenv.Pairs() {
		t.Setenv(pair.Lower, "")
		t.Setenv(pair.Upper, "")
		os.Unsetenv(pair.Lower)
		os.Unsetenv(pair.Upper)
	}
}

func TestEnableDisableRoundTrip(t *testing.T) {
	clearProxyVariables(t)
	app := testApp(t)
	ctx := context.Background()

	resolved, err := proxyspec.FromValue("http://proxy.corp:3128")
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	if err := app.EnableProxy(ctx, resolved); err != nil {
		t.Fatalf("EnableProxy: %v", err)
	}

	if got := os.Getenv("http_proxy"); got != "http://proxy.corp:3128" {
		t.Errorf("http_proxy = %q", got)
	}

	profile := filepath.Join(os.Getenv("HOME"), ".bash_profile")
	data, err := os.ReadFile(profile)
	if err != nil {
		t.Fatalf("profile not written: %v", err)
	}
	if !strings.Contains(string(data), shellprofile.StartSentinel) {
		t.Errorf("profile missing managed block:\n%s", data)
	}

	store, err := app.OpenState()
	if err != nil {
		t.Fatalf("OpenState: %v", err)
	}
	state, err := store.Load(ctx)
	store.Close()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if state.HTTPProxy != "http://proxy.corp:3128" {
		t.Errorf("persisted HTTPProxy = %q", state.HTTPProxy)
	}

	if err := app.DisableProxy(ctx); err != nil {
		t.Fatalf("DisableProxy: %v", err)
	}
	if _, ok := os.LookupEnv("http_proxy"); ok {
		t.Error("http_proxy still set after disable")
	}
	data, err = os.ReadFile(profile)
	if err != nil {
		t.Fatalf("profile missing after disable: %v", err)
	}
	if strings.Contains(string(data), shellprofile.StartSentinel) {
		t.Errorf("managed block survived disable:\n%s", data)
	}

	store, err = app.OpenState()
	if err != nil {
		t.Fatalf("OpenState: %v", err)
	}
	defer store.Close()
	state, err = store.Load(ctx)
	if err != nil {
		t.Fatalf("Load after disable: %v", err)
	}
	if !state.IsZero() {
		t.Errorf("state not cleared: %+v", state)
	}
}

func TestAddRemoveSSH(t *testing.T) {
	app := testApp(t)

	hostsPath, err := app.Settings.HostsFilePath()
	if err != nil {
		t.Fatalf("HostsFilePath: %v", err)
	}
	if err := os.WriteFile(hostsPath, []byte("devbox\nstaging proxy=alt.corp:8080\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	sshPath := filepath.Join(os.Getenv("HOME"), ".ssh", "config")
	if err := os.MkdirAll(filepath.Dir(sshPath), 0o700); err != nil {
		t.Fatal(err)
	}
	original := "Host devbox\n    User alice\n\nHost staging\n    User bob\n"
	if err := os.WriteFile(sshPath, []byte(original), 0o600); err != nil {
		t.Fatal(err)
	}

	resolved, err := proxyspec.FromValue("proxy.corp:3128")
	if err != nil {
		t.Fatalf("FromValue: %v", err)
	}
	count, err := app.AddSSH(resolved)
	if err != nil {
		t.Fatalf("AddSSH: %v", err)
	}
	if count != 2 {
		t.Errorf("AddSSH count = %d, want 2", count)
	}

	data, err := os.ReadFile(sshPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "-x proxy.corp:3128 %h %p") {
		t.Errorf("default proxy missing:\n%s", data)
	}
	if !strings.Contains(string(data), "-x alt.corp:8080 %h %p") {
		t.Errorf("per-host override missing:\n%s", data)
	}

	if err := app.RemoveSSH(); err != nil {
		t.Fatalf("RemoveSSH: %v", err)
	}
	data, err = os.ReadFile(sshPath)
	if err != nil {
		t.Fatal(err)
	}
	if string(data) != original {
		t.Errorf("ssh config after remove:\n%s\nwant:\n%s", data, original)
	}
}

func TestExportValue(t *testing.T) {
	tests := []struct {
		resolved proxyspec.ResolvedProxy
		want     string
	}{
		{proxyspec.ResolvedProxy{URL: "http://proxy.corp:3128", HostPort: "proxy.corp:3128"}, "http://proxy.corp:3128"},
		{proxyspec.ResolvedProxy{URL: "proxy.corp:3128", HostPort: "proxy.corp:3128"}, "http://proxy.corp:3128"},
		{proxyspec.ResolvedProxy{URL: "PROXY proxy.corp:3128", HostPort: "proxy.corp:3128"}, "http://proxy.corp:3128"},
		{proxyspec.ResolvedProxy{URL: "socks5://s.corp:1080", HostPort: "s.corp:1080"}, "socks5://s.corp:1080"},
	}
	for _, tt := range tests {
		if got := exportValue(tt.resolved); got != tt.want {
			t.Errorf("exportValue(%q) = %q, want %q", tt.resolved.URL, got, tt.want)
		}
	}
}

func TestStateForRespectsToggles(t *testing.T) {
	toggles := proxyenv.Toggles{HTTP: true, NoProxy: true}
	state := stateFor(toggles, "http://proxy.corp:3128", "localhost")
	if state.HTTPProxy == "" || state.NoProxy == "" {
		t.Errorf("enabled fields empty: %+v", state)
	}
	if state.HTTPSProxy != "" || state.RsyncProxy != "" {
		t.Errorf("disabled fields set: %+v", state)
	}
}
