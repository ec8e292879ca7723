// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package sshconfig

import (
	"fmt"
	"strings"

	"github.com/adrianmross/proxyctl/lib/hostsfile"
)

// proxyCommand is the full command this tool writes into ProxyCommand
// directives. removalSignature is the substring used to recognize
// tool-authored lines on removal; it deliberately omits the nc path so
// lines written when the command used a different binary location are
// still recognized.
const (
	proxyCommand     = "/usr/bin/nc -X connect -x"
	removalSignature = "nc -X connect -x"
	defaultIndent    = "    "
)

// ProxyCommandLine renders the directive this tool maintains for a
// host, without indentation.
func ProxyCommandLine(proxy string) string {
	return fmt.Sprintf("ProxyCommand %s %s %%h %%p", proxyCommand, proxy)
}

// ConflictError reports a host block whose patterns match registry
// entries that resolve to more than one distinct proxy. The caller must
// split the block (or fix the registry) before the tool will touch it.
type ConflictError struct {
	HostLine string
	Proxies  []string
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("host block %q matches entries with conflicting proxies: %s",
		strings.TrimSpace(e.HostLine), strings.Join(e.Proxies, ", "))
}

// Apply returns the document text with every matching host block
// holding exactly the expected ProxyCommand line. Blocks that match no
// registry entry are preserved byte-for-byte. The returned bool reports
// whether anything changed; when it is false the returned text is the
// input text unchanged.
func Apply(text string, entries []hostsfile.Entry, defaultProxy string) (string, bool, error) {
	lines, hadFinalNewline := splitLines(text)
	out := make([]string, 0, len(lines)+len(entries))
	changed := false

	for i := 0; i < len(lines); {
		if !isHostLine(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		end := blockEnd(lines, i)
		block, blockChanged, err := applyBlock(lines[i:end], entries, defaultProxy)
		if err != nil {
			return "", false, err
		}
		out = append(out, block...)
		changed = changed || blockChanged
		i = end
	}

	if !changed {
		return text, false, nil
	}
	return joinLines(out, hadFinalNewline), true, nil
}

// ApplyRemoval returns the document text with tool-authored
// ProxyCommand lines deleted from every matching host block. Foreign
// ProxyCommand lines (without the tool's signature) are kept. A blank
// line left directly under the Host line is collapsed when it would
// otherwise stack against another blank line or the end of the block,
// so repeated add/remove cycles do not accumulate spacing.
func ApplyRemoval(text string, entries []hostsfile.Entry) (string, bool) {
	lines, hadFinalNewline := splitLines(text)
	out := make([]string, 0, len(lines))
	changed := false

	for i := 0; i < len(lines); {
		if !isHostLine(lines[i]) {
			out = append(out, lines[i])
			i++
			continue
		}
		end := blockEnd(lines, i)
		block, blockChanged := removeFromBlock(lines[i:end], entries)
		out = append(out, block...)
		changed = changed || blockChanged
		i = end
	}

	if !changed {
		return text, false
	}
	return joinLines(out, hadFinalNewline), true
}

// applyBlock transforms a single host block. The first line is the
// Host line.
func applyBlock(block []string, entries []hostsfile.Entry, defaultProxy string) ([]string, bool, error) {
	matched := matchEntries(block[0], entries)
	if len(matched) == 0 {
		return block, false, nil
	}

	proxy := ""
	var distinct []string
	for _, entry := range matched {
		value := entry.Proxy
		if value == "" {
			value = defaultProxy
		}
		if proxy == "" {
			proxy = value
		}
		if !contains(distinct, value) {
			distinct = append(distinct, value)
		}
	}
	if len(distinct) > 1 {
		return nil, false, &ConflictError{HostLine: block[0], Proxies: distinct}
	}

	expected := blockIndent(block) + ProxyCommandLine(proxy)

	for j := 1; j < len(block); j++ {
		if !strings.HasPrefix(strings.TrimSpace(block[j]), "ProxyCommand") {
			continue
		}
		if block[j] == expected {
			return block, false, nil
		}
		updated := make([]string, len(block))
		copy(updated, block)
		updated[j] = expected
		return updated, true, nil
	}

	// No ProxyCommand yet: insert directly under the Host line.
	updated := make([]string, 0, len(block)+1)
	updated = append(updated, block[0], expected)
	updated = append(updated, block[1:]...)
	return updated, true, nil
}

// removeFromBlock deletes tool-authored ProxyCommand lines from a
// single host block and collapses leftover blank-line stacking.
func removeFromBlock(block []string, entries []hostsfile.Entry) ([]string, bool) {
	if len(matchEntries(block[0], entries)) == 0 {
		return block, false
	}

	kept := make([]string, 0, len(block))
	changed := false
	for _, line := range block {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "ProxyCommand") && strings.Contains(trimmed, removalSignature) {
			changed = true
			continue
		}
		kept = append(kept, line)
	}
	if !changed {
		return block, false
	}

	// Collapse a blank line directly under the Host line when the next
	// line is also blank, or when the block ends there.
	if len(kept) >= 2 && strings.TrimSpace(kept[1]) == "" {
		if len(kept) == 2 || strings.TrimSpace(kept[2]) == "" {
			kept = append(kept[:1], kept[2:]...)
		}
	}
	return kept, true
}

// matchEntries returns the registry entries whose pattern matches any
// pattern declared on the Host line, case-insensitively.
func matchEntries(hostLine string, entries []hostsfile.Entry) []hostsfile.Entry {
	var matched []hostsfile.Entry
	for _, pattern := range hostPatterns(hostLine) {
		for _, entry := range entries {
			if strings.EqualFold(pattern, entry.Pattern) {
				matched = append(matched, entry)
			}
		}
	}
	return matched
}

// hostPatterns extracts the space-separated patterns from a Host line,
// stopping at a trailing comment.
func hostPatterns(hostLine string) []string {
	fields := strings.Fields(strings.TrimSpace(hostLine))
	if len(fields) == 0 {
		return nil
	}
	var patterns []string
	for _, field := range fields[1:] {
		if strings.HasPrefix(field, "#") {
			break
		}
		patterns = append(patterns, field)
	}
	return patterns
}

// blockIndent returns the prevailing indentation of the block's
// directive lines: the leading whitespace of the first non-blank,
// non-comment line after the Host line. Empty blocks fall back to four
// spaces.
func blockIndent(block []string) string {
	for _, line := range block[1:] {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "#") {
			continue
		}
		return line[:len(line)-len(strings.TrimLeft(line, " \t"))]
	}
	return defaultIndent
}

// isHostLine reports whether a line opens a host block. SSH config
// keywords are case-insensitive, and a Host line may itself be
// indented.
func isHostLine(line string) bool {
	trimmed := strings.TrimSpace(line)
	if len(trimmed) < 5 {
		return false
	}
	return strings.EqualFold(trimmed[:4], "host") && (trimmed[4] == ' ' || trimmed[4] == '\t')
}

// blockEnd returns the index one past the last line of the block that
// starts at index start.
func blockEnd(lines []string, start int) int {
	for i := start + 1; i < len(lines); i++ {
		if isHostLine(lines[i]) {
			return i
		}
	}
	return len(lines)
}

// splitLines splits document text into lines, reporting whether the
// text ended with a newline. The final empty element produced by a
// trailing newline is dropped so that line indices map one-to-one onto
// document lines.
func splitLines(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	hadFinalNewline := strings.HasSuffix(text, "\n")
	if hadFinalNewline {
		text = strings.TrimSuffix(text, "\n")
	}
	return strings.Split(text, "\n"), hadFinalNewline
}

// joinLines reassembles lines into document text. Non-empty documents
// always end with a newline; an original trailing newline is preserved
// either way.
func joinLines(lines []string, hadFinalNewline bool) string {
	if len(lines) == 0 {
		return ""
	}
	text := strings.Join(lines, "\n")
	if hadFinalNewline || text != "" {
		text += "\n"
	}
	return text
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
