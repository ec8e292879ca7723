// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package proxycmd implements the proxy toggle commands: "proxyctl on"
// and "proxyctl off" (full toggle including SSH config), "proxyctl
// proxy on|off" (environment and shell profiles only), plus "status"
// and "detect".
//
// The commands share one orchestration type, [App], which wires the
// settings file, the host registry, the proxy resolver, the state
// database, and the shell-profile and SSH synchronizers together. Each
// command is a thin Run function over App methods so the individual
// steps stay testable.
package proxycmd
