// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package statestore

import (
	"context"
	"path/filepath"
	"testing"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "env_state.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Errorf("Close: %v", err)
		}
	})
	return store
}

func TestSaveLoadRoundTrip(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	want := State{
		HTTPProxy:  "http://proxy.corp:3128",
		HTTPSProxy: "http://proxy.corp:3128",
		NoProxy:    "localhost,127.0.0.1",
	}
	if err := store.Save(ctx, want); err != nil {
		t.Fatalf("Save: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got != want {
		t.Errorf("Load = %+v, want %+v", got, want)
	}
}

func TestLoadEmptyStore(t *testing.T) {
	store := openTestStore(t)

	got, err := store.Load(context.Background())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Load = %+v, want zero state", got)
	}
}

func TestSaveReplacesPreviousState(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, State{HTTPProxy: "http://old:1", FTPProxy: "http://old:1"}); err != nil {
		t.Fatalf("first Save: %v", err)
	}
	if err := store.Save(ctx, State{HTTPProxy: "http://new:2"}); err != nil {
		t.Fatalf("second Save: %v", err)
	}

	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.HTTPProxy != "http://new:2" {
		t.Errorf("HTTPProxy = %q, want %q", got.HTTPProxy, "http://new:2")
	}
	if got.FTPProxy != "" {
		t.Errorf("FTPProxy = %q, want cleared", got.FTPProxy)
	}
}

func TestClear(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	if err := store.Save(ctx, State{AllProxy: "http://proxy.corp:3128"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	got, err := store.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if !got.IsZero() {
		t.Errorf("Load after Clear = %+v, want zero state", got)
	}
}

func TestStateMapOmitsEmptyFields(t *testing.T) {
	state := State{HTTPProxy: "http://proxy.corp:3128", RsyncProxy: "http://proxy.corp:3128"}
	m := state.Map()
	if len(m) != 2 {
		t.Errorf("Map = %v, want 2 entries", m)
	}
	if m["proxy_rsync"] != "http://proxy.corp:3128" {
		t.Errorf("proxy_rsync = %q", m["proxy_rsync"])
	}
}

func TestPersistenceAcrossReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "env_state.db")
	ctx := context.Background()

	store, err := Open(path, nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	if err := store.Save(ctx, State{HTTPProxy: "http://proxy.corp:3128"}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if err := store.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	reopened, err := Open(path, nil)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	got, err := reopened.Load(ctx)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.HTTPProxy != "http://proxy.corp:3128" {
		t.Errorf("HTTPProxy = %q after reopen", got.HTTPProxy)
	}
}
