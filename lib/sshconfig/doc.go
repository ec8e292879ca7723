// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package sshconfig edits an SSH client configuration file in place,
// adding and removing ProxyCommand directives for registered hosts
// without disturbing anything else in the file.
//
// The document is modeled as an ordered sequence of lines, never as a
// parsed tree: everything the tool does not touch must survive
// byte-for-byte, including comments, blank lines, and indentation. A
// host block is a "Host <patterns...>" line plus every following line
// up to the next Host line or end of file; blocks partition the
// document completely and keep their order across edits.
//
// The pure transforms [Apply] and [ApplyRemoval] operate on document
// text and are what the tests exercise. [Synchronizer] wraps them with
// file I/O: read, transform, back up the prior content, write — with a
// mutex serializing concurrent in-process callers. The backup
// (<path>.proxyctl.bak) is a manual recovery aid; it is overwritten on
// every mutating call and never read back.
//
// Only lines the tool itself authored are ever removed: a ProxyCommand
// line is recognized as ours by the "nc -X connect -x" signature in its
// argument list, so manually written ProxyCommand directives for the
// same host are left alone. The signature match is deliberately loose
// about the nc path so lines written by older releases stay removable.
package sshconfig
