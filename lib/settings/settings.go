// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package settings holds the tool's configuration: a YAML file in the
// user config directory, loaded as defaults-then-overlay so missing
// keys keep their default values.
package settings

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adrianmross/proxyctl/lib/proxyenv"
	"github.com/adrianmross/proxyctl/lib/shellprofile"
)

// Environment overrides consulted when building defaults.
const (
	noProxyEnv = "PROXYCTL_NO_PROXY"
	wpadURLEnv = "PROXYCTL_WPAD_URL"
)

const defaultWPADURL = "http://wpad.local/wpad.dat"

// WPADConfig controls proxy discovery.
type WPADConfig struct {
	Enabled bool   `yaml:"enabled"`
	URL     string `yaml:"url"`
}

// Settings is the persisted configuration.
type Settings struct {
	// DefaultHostsFile overrides the host registry location. Empty
	// means <config dir>/proxy_hosts.
	DefaultHostsFile string `yaml:"default_hosts_file,omitempty"`

	// NoProxy lists the hosts excluded from proxying, exported as the
	// comma-joined no_proxy value.
	NoProxy []string `yaml:"no_proxy"`

	// DefaultProxy is used when no proxy is given explicitly and
	// neither the environment nor discovery yields one.
	DefaultProxy string `yaml:"default_proxy,omitempty"`

	WPAD  WPADConfig               `yaml:"wpad"`
	Proxy proxyenv.Toggles         `yaml:"proxy"`
	Shell shellprofile.Integration `yaml:"shell"`
}

// Default returns the stock configuration. PROXYCTL_NO_PROXY and
// PROXYCTL_WPAD_URL override the built-in no-proxy list and WPAD URL.
func Default() *Settings {
	noProxy := []string{"localhost", "127.0.0.1"}
	if v := os.Getenv(noProxyEnv); v != "" {
		noProxy = splitList(v)
	}
	wpadURL := defaultWPADURL
	if v := os.Getenv(wpadURLEnv); v != "" {
		wpadURL = v
	}
	return &Settings{
		NoProxy: noProxy,
		WPAD:    WPADConfig{Enabled: true, URL: wpadURL},
		Proxy:   proxyenv.DefaultToggles(),
		Shell:   shellprofile.DefaultIntegration(),
	}
}

func splitList(value string) []string {
	var out []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// NoProxyValue returns the comma-joined no_proxy export value.
func (s *Settings) NoProxyValue() string {
	return strings.Join(s.NoProxy, ",")
}

// Load reads the configuration file at path, overlaying it onto the
// defaults. A missing file yields the defaults without error.
func Load(path string) (*Settings, error) {
	s := Default()
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("reading config %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, s); err != nil {
		return nil, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return s, nil
}

// Save writes the configuration to path, creating the parent
// directory when needed.
func Save(s *Settings, path string) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}
	return nil
}

// ConfigDir returns the tool's configuration directory.
func ConfigDir() (string, error) {
	base, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("locating config directory: %w", err)
	}
	return filepath.Join(base, "proxyctl"), nil
}

// ConfigPath returns the configuration file path.
func ConfigPath() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.yaml"), nil
}

// DataDir returns the tool's data directory ($XDG_DATA_HOME/proxyctl,
// defaulting to ~/.local/share/proxyctl).
func DataDir() (string, error) {
	if base := os.Getenv("XDG_DATA_HOME"); base != "" {
		return filepath.Join(base, "proxyctl"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".local", "share", "proxyctl"), nil
}

// HostsFilePath returns the host registry location: the configured
// override, or proxy_hosts in the config directory.
func (s *Settings) HostsFilePath() (string, error) {
	if s.DefaultHostsFile != "" {
		return s.DefaultHostsFile, nil
	}
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "proxy_hosts"), nil
}

// SSHConfigPath returns the user's SSH client config path.
func SSHConfigPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("locating home directory: %w", err)
	}
	return filepath.Join(home, ".ssh", "config"), nil
}

const hostsFileSeed = `# proxyctl host registry
#
# One entry per line:
#   <host-pattern>                   use the default proxy
#   <host-pattern> proxy=host:port   use a specific proxy
#
# Patterns match Host lines in your SSH config. Lines starting with #
# and blank lines are ignored.
`

// Init writes the default configuration and seeds the host registry,
// skipping whatever already exists. It returns the config path.
func Init() (string, error) {
	path, err := ConfigPath()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		if err := Save(Default(), path); err != nil {
			return "", err
		}
	}

	s, err := Load(path)
	if err != nil {
		return "", err
	}
	hostsPath, err := s.HostsFilePath()
	if err != nil {
		return "", err
	}
	if _, statErr := os.Stat(hostsPath); os.IsNotExist(statErr) {
		if err := os.MkdirAll(filepath.Dir(hostsPath), 0o700); err != nil {
			return "", fmt.Errorf("creating hosts file directory: %w", err)
		}
		if err := os.WriteFile(hostsPath, []byte(hostsFileSeed), 0o644); err != nil {
			return "", fmt.Errorf("seeding hosts file %s: %w", hostsPath, err)
		}
	}
	return path, nil
}

// StateDBPath returns the state database path in the data directory,
// creating the directory. A database left in the config directory by
// earlier versions is migrated over first.
func StateDBPath() (string, error) {
	dataDir, err := DataDir()
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dataDir, 0o700); err != nil {
		return "", fmt.Errorf("creating data directory: %w", err)
	}
	path := filepath.Join(dataDir, "env_state.db")

	configDir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	legacy := filepath.Join(configDir, "env_state.db")
	if _, err := os.Stat(path); os.IsNotExist(err) {
		if _, legacyErr := os.Stat(legacy); legacyErr == nil {
			if err := copyFile(legacy, path); err != nil {
				return "", fmt.Errorf("migrating legacy state database: %w", err)
			}
		}
	}
	return path, nil
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o600)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	return out.Close()
}
