// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package shellprofile

import (
	"os"
	"path/filepath"
	"strings"
)

// Integration configures which shell startup files the tool manages.
// The zero value resolves to nothing; [DefaultIntegration] gives the
// stock behavior of following $SHELL with a bash fallback.
type Integration struct {
	// DetectShell adds the shell named by $SHELL to the list.
	DetectShell bool `yaml:"detect_shell"`
	// DefaultShell is consulted when detection is off or $SHELL is
	// unset.
	DefaultShell string `yaml:"default_shell"`
	// Shells lists additional shells to manage profiles for.
	Shells []string `yaml:"shells,omitempty"`
	// ProfilePaths names profile files directly, bypassing shell
	// preference rules. Paths may start with ~/ or be relative to the
	// home directory.
	ProfilePaths []string `yaml:"profile_paths,omitempty"`
}

// DefaultIntegration follows $SHELL and falls back to bash.
func DefaultIntegration() Integration {
	return Integration{DetectShell: true, DefaultShell: "bash"}
}

// profilePreference maps a shell to its startup files in preference
// order. The first existing file wins; when none exist the first entry
// is created. zsh prefers .zshenv because it is sourced for every
// invocation, interactive or not.
func profilePreference(shell string) []string {
	switch filepath.Base(shell) {
	case "zsh":
		return []string{".zshenv", ".zprofile", ".zshrc"}
	case "bash":
		return []string{".bash_profile", ".bashrc"}
	default:
		return []string{".profile"}
	}
}

// Resolve returns the profile files to manage for the given
// integration settings, absolute and deduplicated in first-mention
// order.
func Resolve(integration Integration, home string) []string {
	return resolve(integration, home, os.Getenv)
}

func resolve(integration Integration, home string, getenv func(string) string) []string {
	var paths []string
	for _, p := range integration.ProfilePaths {
		paths = append(paths, expandPath(p, home))
	}

	shells := append([]string(nil), integration.Shells...)
	if integration.DetectShell {
		if shell := getenv("SHELL"); shell != "" {
			shells = append(shells, shell)
		}
	}
	if len(shells) == 0 && integration.DefaultShell != "" {
		shells = append(shells, integration.DefaultShell)
	}

	seenShell := make(map[string]bool)
	for _, shell := range shells {
		name := filepath.Base(shell)
		if seenShell[name] {
			continue
		}
		seenShell[name] = true
		paths = append(paths, preferredProfile(name, home))
	}

	seen := make(map[string]bool)
	out := paths[:0]
	for _, p := range paths {
		if seen[p] {
			continue
		}
		seen[p] = true
		out = append(out, p)
	}
	return out
}

// preferredProfile picks the shell's startup file: the first of its
// preference list that already exists in home, else the first entry.
func preferredProfile(shell, home string) string {
	candidates := profilePreference(shell)
	for _, name := range candidates {
		path := filepath.Join(home, name)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return filepath.Join(home, candidates[0])
}

func expandPath(path, home string) string {
	if path == "~" {
		return home
	}
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(home, path[2:])
	}
	if !filepath.IsAbs(path) {
		return filepath.Join(home, path)
	}
	return filepath.Clean(path)
}
