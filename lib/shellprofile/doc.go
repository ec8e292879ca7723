// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package shellprofile maintains a sentinel-delimited block of export
// statements in the user's shell startup files.
//
// The block is bounded by exact-match sentinel lines so the tool can
// find and replace its own contribution without parsing shell syntax.
// Everything outside the sentinels belongs to the user and is
// preserved byte-for-byte. Writing an empty set of exports removes the
// block entirely.
//
// Which files to touch is decided by [Resolve]: explicitly configured
// paths are taken as-is, and otherwise the shell list (optionally
// augmented by $SHELL) maps to each shell's preferred startup file,
// favoring a file that already exists over creating the conventional
// first choice.
package shellprofile
