// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package shellprofile

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StartSentinel and EndSentinel delimit the managed block. They are
// matched exactly (after trimming surrounding whitespace), so editing
// either line by hand orphans the block.
const (
	StartSentinel = "### MANAGED BY PROXYCTL START (DO NOT EDIT)"
	EndSentinel   = "### MANAGED BY PROXYCTL END (DO NOT EDIT)"
)

// WriteBlock replaces the managed block in every profile with the
// given export lines. A profile that does not exist yet is created,
// along with its parent directory. An empty exports slice removes the
// block instead. Every profile is attempted even when an earlier one
// fails; the per-file errors are joined.
func WriteBlock(paths []string, exports []string) error {
	var errs []error
	for _, path := range paths {
		if err := writeOne(path, exports); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// RemoveBlock deletes the managed block from every profile. Profiles
// that do not exist are skipped. Every profile is attempted; the
// per-file errors are joined.
func RemoveBlock(paths []string) error {
	var errs []error
	for _, path := range paths {
		if err := removeOne(path); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func writeOne(path string, exports []string) error {
	original, exists, err := readProfile(path)
	if err != nil {
		return err
	}
	if !exists && len(exports) == 0 {
		return nil
	}

	updated := Render(original, exports)
	if exists && updated == original {
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return fmt.Errorf("creating profile directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", path, err)
	}
	return nil
}

func removeOne(path string) error {
	original, exists, err := readProfile(path)
	if err != nil {
		return err
	}
	if !exists {
		return nil
	}
	// A profile without a managed block is not ours to rewrite, even
	// when re-rendering would normalize its trailing whitespace.
	if _, found := strip(original); !found {
		return nil
	}
	updated := Render(original, nil)
	if updated == original {
		return nil
	}
	if err := os.WriteFile(path, []byte(updated), 0o644); err != nil {
		return fmt.Errorf("writing profile %s: %w", path, err)
	}
	return nil
}

func readProfile(path string) (string, bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("reading profile %s: %w", path, err)
	}
	return string(data), true, nil
}

// Render returns the profile text with the managed block replaced by
// the given export lines, or stripped when exports is empty. The block
// is appended at the end, separated from preceding content by exactly
// one blank line, and the document always ends with a newline.
func Render(text string, exports []string) string {
	lines, _ := strip(text)

	// Drop trailing blank lines so the separator spacing is ours.
	for len(lines) > 0 && strings.TrimSpace(lines[len(lines)-1]) == "" {
		lines = lines[:len(lines)-1]
	}

	if len(exports) == 0 {
		if len(lines) == 0 {
			return ""
		}
		return strings.Join(lines, "\n") + "\n"
	}

	if len(lines) > 0 {
		lines = append(lines, "")
	}
	lines = append(lines, StartSentinel)
	lines = append(lines, exports...)
	lines = append(lines, EndSentinel)
	return strings.Join(lines, "\n") + "\n"
}

// strip returns the profile's lines with any managed block removed,
// including blank lines directly above it, and whether a start
// sentinel was found. A start sentinel without a matching end swallows
// the rest of the file.
func strip(text string) ([]string, bool) {
	if text == "" {
		return nil, false
	}
	raw := strings.Split(strings.TrimSuffix(text, "\n"), "\n")

	var kept []string
	found := false
	for i := 0; i < len(raw); i++ {
		if strings.TrimSpace(raw[i]) != StartSentinel {
			kept = append(kept, raw[i])
			continue
		}
		found = true
		for len(kept) > 0 && strings.TrimSpace(kept[len(kept)-1]) == "" {
			kept = kept[:len(kept)-1]
		}
		for i < len(raw) && strings.TrimSpace(raw[i]) != EndSentinel {
			i++
		}
	}
	return kept, found
}
