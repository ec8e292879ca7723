// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxyenv models the proxy environment variables: the
// lower/UPPER variable pairs, which of them are enabled, and how they
// are applied to the process environment or rendered as shell export
// lines.
package proxyenv

import (
	"errors"
	"fmt"
	"os"
)

// Pair is one proxy variable in both conventional casings. Tools
// disagree on which casing they read, so both are always written
// together.
type Pair struct {
	Lower string
	Upper string
}

var (
	HTTP    = Pair{"http_proxy", "HTTP_PROXY"}
	HTTPS   = Pair{"https_proxy", "HTTPS_PROXY"}
	FTP     = Pair{"ftp_proxy", "FTP_PROXY"}
	All     = Pair{"all_proxy", "ALL_PROXY"}
	Rsync   = Pair{"proxy_rsync", "PROXY_RSYNC"}
	NoProxy = Pair{"no_proxy", "NO_PROXY"}
)

// Pairs returns every variable pair in canonical order.
func Pairs() []Pair {
	return []Pair{HTTP, HTTPS, FTP, All, Rsync, NoProxy}
}

// Toggles selects which proxy variables the tool manages.
type Toggles struct {
	HTTP    bool `yaml:"http"`
	HTTPS   bool `yaml:"https"`
	FTP     bool `yaml:"ftp"`
	All     bool `yaml:"all"`
	Rsync   bool `yaml:"rsync"`
	NoProxy bool `yaml:"no_proxy"`
}

// DefaultToggles enables every variable.
func DefaultToggles() Toggles {
	return Toggles{HTTP: true, HTTPS: true, FTP: true, All: true, Rsync: true, NoProxy: true}
}

// Enabled returns the pairs selected by the toggles, in canonical
// order.
func (t Toggles) Enabled() []Pair {
	var pairs []Pair
	for _, sel := range []struct {
		on   bool
		pair Pair
	}{
		{t.HTTP, HTTP},
		{t.HTTPS, HTTPS},
		{t.FTP, FTP},
		{t.All, All},
		{t.Rsync, Rsync},
		{t.NoProxy, NoProxy},
	} {
		if sel.on {
			pairs = append(pairs, sel.pair)
		}
	}
	return pairs
}

// value returns what the pair should be set to: noProxy for the
// no_proxy pair, the proxy URL for everything else.
func value(pair Pair, proxyURL, noProxy string) string {
	if pair == NoProxy {
		return noProxy
	}
	return proxyURL
}

// Apply sets every enabled variable pair on the process environment.
// Pairs whose value is empty are skipped.
func Apply(t Toggles, proxyURL, noProxy string) error {
	var errs []error
	for _, pair := range t.Enabled() {
		v := value(pair, proxyURL, noProxy)
		if v == "" {
			continue
		}
		if err := os.Setenv(pair.Lower, v); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", pair.Lower, err))
		}
		if err := os.Setenv(pair.Upper, v); err != nil {
			errs = append(errs, fmt.Errorf("setting %s: %w", pair.Upper, err))
		}
	}
	return errors.Join(errs...)
}

// Clear unsets every proxy variable pair, managed or not, so that a
// toggle flipped off since the last apply still gets cleaned up.
func Clear() error {
	var errs []error
	for _, pair := range Pairs() {
		if err := os.Unsetenv(pair.Lower); err != nil {
			errs = append(errs, fmt.Errorf("unsetting %s: %w", pair.Lower, err))
		}
		if err := os.Unsetenv(pair.Upper); err != nil {
			errs = append(errs, fmt.Errorf("unsetting %s: %w", pair.Upper, err))
		}
	}
	return errors.Join(errs...)
}

// ExportLines renders the enabled, non-empty variables as shell export
// statements, both casings per pair, in canonical order.
func ExportLines(t Toggles, proxyURL, noProxy string) []string {
	var lines []string
	for _, pair := range t.Enabled() {
		v := value(pair, proxyURL, noProxy)
		if v == "" {
			continue
		}
		lines = append(lines,
			fmt.Sprintf("export %s=%q", pair.Lower, v),
			fmt.Sprintf("export %s=%q", pair.Upper, v),
		)
	}
	return lines
}
