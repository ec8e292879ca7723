// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package sqlitepool provides a SQLite connection pool with the
// pragma defaults shared by everything in proxyctl that touches local
// storage.
//
// It wraps zombiezen.com/go/sqlite: WAL journal mode, NORMAL
// synchronous for process-crash durability without fsync-per-commit
// overhead, and a busy timeout so concurrent invocations of the tool
// wait for a write lock instead of failing with SQLITE_BUSY.
//
// Callers [Pool.Take] a connection, perform work, and [Pool.Put] it
// back. Connections are NOT safe for concurrent use — each goroutine
// must hold its own connection for the duration of its work. A CLI
// usually wants PoolSize 1.
//
// The package is intentionally thin: it applies standard pragmas and
// exposes the underlying zombiezen types directly. Callers write SQL,
// use sqlitex.Execute for cached statements, and manage transactions
// with sqlitex.ImmediateTransaction.
package sqlitepool
