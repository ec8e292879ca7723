// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package doctor implements "proxyctl doctor": health checks over the
// tool's own moving parts (config file, host registry, state database,
// WPAD endpoint) plus a config inspector that shows the effective
// settings and how they diverge from the defaults.
//
// The doctor is read-only triage: it never fixes anything itself, and
// each failure names the file or setting to look at.
package doctor
