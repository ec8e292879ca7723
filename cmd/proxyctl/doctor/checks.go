// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/adrianmross/proxyctl/lib/hostsfile"
	"github.com/adrianmross/proxyctl/lib/settings"
	"github.com/adrianmross/proxyctl/lib/statestore"
	"github.com/adrianmross/proxyctl/lib/wpad"
)

// Status is the outcome of a single health check.
type Status string

const (
	StatusPass Status = "pass"
	StatusFail Status = "fail"
	StatusWarn Status = "warn"
	StatusSkip Status = "skip"
)

// Result holds the outcome of a single health check. Failures carry a
// hint naming the file or setting to look at.
type Result struct {
	Name    string
	Status  Status
	Message string
	Hint    string
}

func pass(name, message string) Result {
	return Result{Name: name, Status: StatusPass, Message: message}
}

func fail(name, message, hint string) Result {
	return Result{Name: name, Status: StatusFail, Message: message, Hint: hint}
}

func warn(name, message string) Result {
	return Result{Name: name, Status: StatusWarn, Message: message}
}

func skip(name, message string) Result {
	return Result{Name: name, Status: StatusSkip, Message: message}
}

// runChecks executes every health check and returns the results in
// display order.
func runChecks(ctx context.Context) []Result {
	var results []Result

	configPath, err := settings.ConfigPath()
	if err != nil {
		return append(results, fail("config location", err.Error(), "check HOME and XDG_CONFIG_HOME"))
	}

	s, err := settings.Load(configPath)
	if err != nil {
		results = append(results, fail("config file", err.Error(), "fix or delete "+configPath))
		return results
	}
	if _, statErr := os.Stat(configPath); os.IsNotExist(statErr) {
		results = append(results, warn("config file", configPath+" does not exist yet (using defaults); run any command to create it"))
	} else {
		results = append(results, pass("config file", configPath))
	}

	results = append(results, checkHostsFile(s))
	results = append(results, checkStateStore(ctx)...)
	results = append(results, checkWPAD(ctx, s))
	return results
}

func checkHostsFile(s *settings.Settings) Result {
	path, err := s.HostsFilePath()
	if err != nil {
		return fail("host registry", err.Error(), "check HOME and XDG_CONFIG_HOME")
	}
	entries, err := hostsfile.Parse(path)
	if err != nil {
		var parseErr *hostsfile.ParseError
		if errors.As(err, &parseErr) {
			return fail("host registry", err.Error(), "fix the line in "+path)
		}
		return fail("host registry", err.Error(), "check "+path)
	}
	if _, statErr := os.Stat(path); os.IsNotExist(statErr) {
		return warn("host registry", path+" does not exist yet; ssh commands will have nothing to manage")
	}
	return pass("host registry", fmt.Sprintf("%s (%d entries)", path, len(entries)))
}

func checkStateStore(ctx context.Context) []Result {
	path, err := settings.StateDBPath()
	if err != nil {
		return []Result{fail("state database", err.Error(), "check HOME and XDG_DATA_HOME")}
	}
	store, err := statestore.Open(path, nil)
	if err != nil {
		return []Result{fail("state database", err.Error(), "delete "+path+" to start fresh")}
	}
	defer store.Close()

	state, err := store.Load(ctx)
	if err != nil {
		return []Result{fail("state database", err.Error(), "delete "+path+" to start fresh")}
	}
	if state.IsZero() {
		return []Result{pass("state database", path+" (proxy currently off)")}
	}
	return []Result{pass("state database", path+" (proxy currently on)")}
}

func checkWPAD(ctx context.Context, s *settings.Settings) Result {
	if !s.WPAD.Enabled {
		return skip("wpad discovery", "disabled in config")
	}
	ctx, cancel := context.WithTimeout(ctx, 3*time.Second)
	defer cancel()

	client := &wpad.Client{URL: s.WPAD.URL}
	candidates, err := client.Discover(ctx)
	switch {
	case errors.Is(err, wpad.ErrNoCandidates):
		return warn("wpad discovery", s.WPAD.URL+" reachable but lists no proxies")
	case err != nil:
		// Off the corporate network this is the normal state, so a
		// warning rather than a failure.
		return warn("wpad discovery", s.WPAD.URL+" unreachable")
	}
	return pass("wpad discovery", fmt.Sprintf("%s (%d candidates)", s.WPAD.URL, len(candidates)))
}

var (
	passMark = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Render("✓")
	failMark = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Render("✗")
	warnMark = lipgloss.NewStyle().Foreground(lipgloss.Color("220")).Render("!")
	skipMark = lipgloss.NewStyle().Foreground(lipgloss.Color("245")).Render("-")
)

// renderResults writes the checklist and returns whether every check
// passed (warnings and skips do not count as failures).
func renderResults(w io.Writer, results []Result) bool {
	ok := true
	for _, r := range results {
		mark := passMark
		switch r.Status {
		case StatusFail:
			mark = failMark
			ok = false
		case StatusWarn:
			mark = warnMark
		case StatusSkip:
			mark = skipMark
		}
		fmt.Fprintf(w, " %s %s: %s\n", mark, r.Name, r.Message)
		if r.Hint != "" {
			fmt.Fprintf(w, "   → %s\n", r.Hint)
		}
	}
	return ok
}
