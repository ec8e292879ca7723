// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxyspec

import (
	"context"
	"errors"
	"fmt"
	"os"
)

// ErrNoProxy is returned by [Resolver.Resolve] when no explicit value,
// environment variable, discovery candidate, or fallback produced a
// usable proxy.
var ErrNoProxy = errors.New("no usable proxy found")

// ResolvedProxy pairs a proxy specification with its canonical target.
// URL is the specification exactly as given (flag value, environment
// value, or discovery candidate); HostPort is the extracted target
// suitable for embedding in a generated command. Immutable after
// creation.
type ResolvedProxy struct {
	URL      string
	HostPort string
}

// CandidateSource returns discovered proxy specifications in preference
// order. Implemented by the WPAD client; a source error means discovery
// itself was unavailable, which is distinct from an empty candidate
// list.
type CandidateSource interface {
	Discover(ctx context.Context) ([]string, error)
}

// envPriority is the fixed lookup order for proxy environment
// variables: secure before insecure, lowercase before uppercase within
// each pair.
var envPriority = []string{
	"https_proxy", "HTTPS_PROXY",
	"http_proxy", "HTTP_PROXY",
	"all_proxy", "ALL_PROXY",
	"ftp_proxy", "FTP_PROXY",
	"proxy_rsync", "PROXY_RSYNC",
}

// Resolver selects which proxy specification to use. The zero value
// resolves from the process environment only; Source and Fallback widen
// the search.
type Resolver struct {
	// Source supplies discovered candidates. Nil disables discovery.
	Source CandidateSource

	// Fallback is the configured default proxy specification, consulted
	// when discovery yields nothing usable or is unavailable. Empty
	// disables the fallback.
	Fallback string

	// LookupEnv overrides environment access for tests. Nil means
	// os.Getenv.
	LookupEnv func(key string) string
}

// FromValue canonicalizes a single specification into a ResolvedProxy.
func FromValue(value string) (ResolvedProxy, error) {
	hostPort, err := HostPort(value)
	if err != nil {
		return ResolvedProxy{}, err
	}
	return ResolvedProxy{URL: value, HostPort: hostPort}, nil
}

// Resolve determines the proxy to use. Priority: the explicit value if
// non-empty, then the proxy environment variables in [envPriority]
// order (skipping values no target can be extracted from), then the
// discovery source's candidates in order, then the configured fallback.
// Returns [ErrNoProxy] when every layer comes up empty, or the last
// extraction error when candidates existed but none parsed.
func (r *Resolver) Resolve(ctx context.Context, explicit string) (ResolvedProxy, error) {
	if explicit != "" {
		return FromValue(explicit)
	}

	lookup := r.LookupEnv
	if lookup == nil {
		lookup = os.Getenv
	}
	for _, key := range envPriority {
		value := lookup(key)
		if value == "" {
			continue
		}
		if hostPort, err := HostPort(value); err == nil {
			return ResolvedProxy{URL: value, HostPort: hostPort}, nil
		}
	}

	if r.Source == nil {
		return r.fallback(ErrNoProxy)
	}

	candidates, err := r.Source.Discover(ctx)
	if err != nil {
		return r.fallback(err)
	}

	var lastErr error
	for _, candidate := range candidates {
		resolved, err := FromValue(candidate)
		if err != nil {
			lastErr = err
			continue
		}
		return resolved, nil
	}
	if lastErr == nil {
		lastErr = ErrNoProxy
	}
	return r.fallback(lastErr)
}

// fallback resolves the configured default proxy, or propagates cause
// when no fallback is configured.
func (r *Resolver) fallback(cause error) (ResolvedProxy, error) {
	if r.Fallback == "" {
		return ResolvedProxy{}, cause
	}
	resolved, err := FromValue(r.Fallback)
	if err != nil {
		return ResolvedProxy{}, fmt.Errorf("parsing default proxy %q: %w", r.Fallback, err)
	}
	return resolved, nil
}
