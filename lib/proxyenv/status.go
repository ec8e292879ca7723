// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxyenv

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Status is the reported state of one variable pair.
type Status struct {
	Key   string // lower-case variable name
	Value string // empty when unset
}

// Snapshot reports the state of every enabled variable pair. The
// stored map (keyed by lower-case name) holds the last-applied values;
// when it has no entry for a pair the process environment is consulted
// through lookup, checking both casings. A nil lookup skips the
// environment fallback.
func Snapshot(t Toggles, stored map[string]string, lookup func(string) (string, bool)) []Status {
	var statuses []Status
	for _, pair := range t.Enabled() {
		value := stored[pair.Lower]
		if value == "" && lookup != nil {
			if v, ok := lookup(pair.Lower); ok && v != "" {
				value = v
			} else if v, ok := lookup(pair.Upper); ok {
				value = v
			}
		}
		statuses = append(statuses, Status{Key: pair.Lower, Value: value})
	}
	return statuses
}

var (
	setStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("114")).Bold(true)
	unsetStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)
)

// RenderStatus formats a snapshot as an aligned, colored report: green
// for set values, red "Not set" otherwise.
func RenderStatus(statuses []Status) string {
	width := 0
	for _, s := range statuses {
		if len(s.Key) > width {
			width = len(s.Key)
		}
	}

	var b strings.Builder
	for _, s := range statuses {
		rendered := unsetStyle.Render("Not set")
		if s.Value != "" {
			rendered = setStyle.Render(s.Value)
		}
		fmt.Fprintf(&b, "%-*s  %s\n", width+1, s.Key+":", rendered)
	}
	return b.String()
}
