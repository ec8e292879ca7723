// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxycmd

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/adrianmross/proxyctl/lib/hostsfile"
	"github.com/adrianmross/proxyctl/lib/proxyenv"
	"github.com/adrianmross/proxyctl/lib/proxyspec"
	"github.com/adrianmross/proxyctl/lib/settings"
	"github.com/adrianmross/proxyctl/lib/shellprofile"
	"github.com/adrianmross/proxyctl/lib/sshconfig"
	"github.com/adrianmross/proxyctl/lib/statestore"
	"github.com/adrianmross/proxyctl/lib/wpad"
)

// App wires the tool's collaborators together for one command
// invocation: settings, host registry, resolver, state database, and
// the shell-profile and SSH synchronizers.
type App struct {
	Settings *settings.Settings
	Logger   *slog.Logger
}

// LoadApp initializes the configuration (seeding defaults on first
// run) and loads it.
func LoadApp(logger *slog.Logger) (*App, error) {
	path, err := settings.Init()
	if err != nil {
		return nil, err
	}
	s, err := settings.Load(path)
	if err != nil {
		return nil, err
	}
	return &App{Settings: s, Logger: logger}, nil
}

// Resolver builds the proxy resolver from the settings: WPAD discovery
// when enabled, the configured default proxy as fallback, and the
// process environment.
func (a *App) Resolver() *proxyspec.Resolver {
	r := &proxyspec.Resolver{Fallback: a.Settings.DefaultProxy}
	if a.Settings.WPAD.Enabled {
		r.Source = &wpad.Client{URL: a.Settings.WPAD.URL}
	}
	return r
}

// Entries reads the host registry.
func (a *App) Entries() ([]hostsfile.Entry, error) {
	path, err := a.Settings.HostsFilePath()
	if err != nil {
		return nil, err
	}
	return hostsfile.Parse(path)
}

// OpenState opens the state database, migrating a legacy location
// first.
func (a *App) OpenState() (*statestore.Store, error) {
	path, err := settings.StateDBPath()
	if err != nil {
		return nil, err
	}
	return statestore.Open(path, a.Logger)
}

// exportValue is what gets written into the environment and shell
// profiles: the specification itself when it already carries a scheme,
// otherwise the canonical target with http:// prepended.
func exportValue(resolved proxyspec.ResolvedProxy) string {
	if strings.Contains(resolved.URL, "://") {
		return resolved.URL
	}
	return "http://" + resolved.HostPort
}

// stateFor maps the enabled toggles onto a persistable state.
func stateFor(t proxyenv.Toggles, proxyValue, noProxy string) statestore.State {
	var state statestore.State
	if t.HTTP {
		state.HTTPProxy = proxyValue
	}
	if t.HTTPS {
		state.HTTPSProxy = proxyValue
	}
	if t.FTP {
		state.FTPProxy = proxyValue
	}
	if t.All {
		state.AllProxy = proxyValue
	}
	if t.Rsync {
		state.RsyncProxy = proxyValue
	}
	if t.NoProxy {
		state.NoProxy = noProxy
	}
	return state
}

// EnableProxy applies the resolved proxy to the process environment,
// rewrites the managed block in the shell profiles, and persists the
// applied state.
func (a *App) EnableProxy(ctx context.Context, resolved proxyspec.ResolvedProxy) error {
	value := exportValue(resolved)
	noProxy := a.Settings.NoProxyValue()
	toggles := a.Settings.Proxy

	if err := proxyenv.Apply(toggles, value, noProxy); err != nil {
		return err
	}

	profiles := a.profiles()
	exports := proxyenv.ExportLines(toggles, value, noProxy)
	if err := shellprofile.WriteBlock(profiles, exports); err != nil {
		return fmt.Errorf("updating shell profiles: %w", err)
	}
	a.Logger.Info("shell profiles updated", "profiles", profiles, "proxy", resolved.HostPort)

	store, err := a.OpenState()
	if err != nil {
		return err
	}
	defer store.Close()
	if err := store.Save(ctx, stateFor(toggles, value, noProxy)); err != nil {
		return err
	}
	return nil
}

// DisableProxy clears the proxy variables from the process
// environment, strips the managed block from the shell profiles, and
// clears the persisted state.
func (a *App) DisableProxy(ctx context.Context) error {
	if err := proxyenv.Clear(); err != nil {
		return err
	}

	profiles := a.profiles()
	if err := shellprofile.RemoveBlock(profiles); err != nil {
		return fmt.Errorf("cleaning shell profiles: %w", err)
	}
	a.Logger.Info("shell profiles cleaned", "profiles", profiles)

	store, err := a.OpenState()
	if err != nil {
		return err
	}
	defer store.Close()
	return store.Clear(ctx)
}

// AddSSH writes ProxyCommand lines for every registered host into the
// SSH config. Returns the number of registry entries applied.
func (a *App) AddSSH(resolved proxyspec.ResolvedProxy) (int, error) {
	entries, err := a.Entries()
	if err != nil {
		return 0, err
	}
	if len(entries) == 0 {
		return 0, nil
	}
	configPath, err := settings.SSHConfigPath()
	if err != nil {
		return 0, err
	}
	sync := sshconfig.New(configPath)
	changed, err := sync.Add(entries, resolved.HostPort)
	if err != nil {
		return 0, err
	}
	if changed {
		a.Logger.Info("ssh config updated", "path", configPath, "proxy", resolved.HostPort)
	}
	return len(entries), nil
}

// RemoveSSH strips the tool's ProxyCommand lines from the SSH config.
func (a *App) RemoveSSH() error {
	entries, err := a.Entries()
	if err != nil {
		return err
	}
	configPath, err := settings.SSHConfigPath()
	if err != nil {
		return err
	}
	sync := sshconfig.New(configPath)
	changed, err := sync.Remove(entries)
	if err != nil {
		return err
	}
	if changed {
		a.Logger.Info("ssh config cleaned", "path", configPath)
	}
	return nil
}

func (a *App) profiles() []string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = os.Getenv("HOME")
	}
	return shellprofile.Resolve(a.Settings.Shell, home)
}
