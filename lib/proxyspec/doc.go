// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxyspec normalizes heterogeneous proxy specifications into a
// canonical host:port target and selects which specification to use.
//
// A specification can arrive in several shapes: an absolute URL
// ("http://proxy.local:3128"), a bare "host:port", a bracketed IPv6
// literal ("[::1]:8080"), or a PAC-style directive token ("PROXY
// proxy.example.com:8080"). [HostPort] reduces any of them to the single
// "host:port" form that can be embedded in a generated command line. The
// function is pure: no network, no filesystem, no environment access.
//
// [Resolver] layers the selection policy on top: an explicit value wins,
// then the proxy environment variables in priority order, then candidates
// from an injected discovery source, then a configured fallback. The
// discovery source is an interface so that WPAD fetching stays out of
// this package entirely.
//
// Key exports:
//
//   - [HostPort] -- the canonicalizer
//   - [Resolver] and [ResolvedProxy] -- selection policy and its result
//   - [UnparseableError] and [ErrNoProxy] -- failure modes callers branch on
//
// This package depends on no other proxyctl packages.
package proxyspec
