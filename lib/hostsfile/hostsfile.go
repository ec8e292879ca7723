// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package hostsfile parses the line-oriented registry of SSH host
// patterns that proxyctl routes through a proxy.
//
// Each non-blank, non-comment line names one host pattern and may carry
// a per-host proxy override, either as "proxy=<value>" or as a bare
// second token. "#" starts a comment, whole-line or trailing. A missing
// file is an empty registry, not an error — the registry is optional
// until the operator writes one.
package hostsfile

import (
	"bufio"
	"fmt"
	"os"
	"strings"
)

// Entry is one parsed registry line: a host pattern and an optional
// proxy override. An empty Proxy means the entry uses whatever default
// proxy the caller supplies.
type Entry struct {
	Pattern string
	Proxy   string
}

// ParseError reports a malformed registry line, identified by file path
// and 1-based line number.
type ParseError struct {
	Path string
	Line int
	Msg  string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("%s:%d: %s", e.Path, e.Line, e.Msg)
}

// Parse reads the registry at path. A file that does not exist yields
// an empty registry and no error.
func Parse(path string) ([]Entry, error) {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening hosts file %s: %w", path, err)
	}
	defer file.Close()

	var entries []Entry
	scanner := bufio.NewScanner(file)
	lineNumber := 0
	for scanner.Scan() {
		lineNumber++
		entry, ok, err := parseLine(path, lineNumber, scanner.Text())
		if err != nil {
			return nil, err
		}
		if ok {
			entries = append(entries, entry)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("reading hosts file %s: %w", path, err)
	}
	return entries, nil
}

// parseLine parses one registry line. ok is false for blank lines and
// comments.
func parseLine(path string, lineNumber int, line string) (Entry, bool, error) {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" || strings.HasPrefix(trimmed, "#") {
		return Entry{}, false, nil
	}

	fields := strings.Fields(trimmed)
	entry := Entry{Pattern: fields[0]}

	for _, token := range fields[1:] {
		if strings.HasPrefix(token, "#") {
			// Trailing comment ends the line.
			break
		}
		if value, isOverride := strings.CutPrefix(token, "proxy="); isOverride {
			if value == "" {
				return Entry{}, false, &ParseError{Path: path, Line: lineNumber, Msg: "empty proxy= value"}
			}
			if entry.Proxy != "" {
				return Entry{}, false, &ParseError{Path: path, Line: lineNumber, Msg: fmt.Sprintf("duplicate proxy override %q", token)}
			}
			entry.Proxy = value
			continue
		}
		if entry.Proxy != "" {
			return Entry{}, false, &ParseError{Path: path, Line: lineNumber, Msg: fmt.Sprintf("unexpected token %q", token)}
		}
		entry.Proxy = token
	}

	return entry, true, nil
}
