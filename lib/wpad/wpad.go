// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package wpad discovers proxy candidates from a WPAD/PAC document.
//
// The document is fetched over plain HTTP and scanned for proxy
// tokens rather than evaluated: PAC files are JavaScript, and the
// common corporate ones declare their proxies in either a
// `proxies = "..."` assignment or a `return "PROXY host:port; ..."`
// statement, both of which pattern extraction covers. Tokens are
// returned in document order for the resolver to canonicalize and
// probe.
package wpad

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"regexp"
	"strings"
	"time"
)

// ErrUnavailable wraps any failure to retrieve the WPAD document:
// network errors, non-200 responses, unreadable bodies. The resolver
// treats it as "discovery has nothing to offer" and moves on.
var ErrUnavailable = errors.New("wpad unavailable")

// ErrNoCandidates reports a document that was fetched successfully
// but yielded no proxy tokens.
var ErrNoCandidates = errors.New("wpad document contains no proxy candidates")

// maxDocumentSize bounds the body read. Real PAC files are a few
// kilobytes; anything past this is not one.
const maxDocumentSize = 1 << 20

var (
	assignmentPattern = regexp.MustCompile(`proxies\s*=\s*"([^"]+)"`)
	returnPattern     = regexp.MustCompile(`return\s+"([^"]+)"`)
)

// Client fetches and scans WPAD documents. The zero value is not
// usable; set URL, and optionally HTTPClient (defaults to a client
// with a 10 second timeout).
type Client struct {
	HTTPClient *http.Client
	URL        string
}

// Fetch retrieves the WPAD document as text. Failures of any kind
// wrap [ErrUnavailable].
func (c *Client) Fetch(ctx context.Context) (string, error) {
	httpClient := c.HTTPClient
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 10 * time.Second}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.URL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building request for %s: %v", ErrUnavailable, c.URL, err)
	}
	resp, err := httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: fetching %s: %v", ErrUnavailable, c.URL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("%w: fetching %s: status %s", ErrUnavailable, c.URL, resp.Status)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxDocumentSize))
	if err != nil {
		return "", fmt.Errorf("%w: reading %s: %v", ErrUnavailable, c.URL, err)
	}
	return string(body), nil
}

// Candidates extracts proxy tokens from a WPAD document, in document
// order, deduplicated. DIRECT entries and empties are dropped. Tokens
// keep their PAC directive prefix ("PROXY host:port"); canonicalizing
// them is the caller's concern.
func Candidates(text string) []string {
	var candidates []string
	seen := make(map[string]bool)

	for _, pattern := range []*regexp.Regexp{assignmentPattern, returnPattern} {
		for _, match := range pattern.FindAllStringSubmatch(text, -1) {
			for _, token := range strings.Split(match[1], ";") {
				token = strings.TrimSpace(token)
				if token == "" || strings.EqualFold(token, "DIRECT") {
					continue
				}
				if seen[token] {
					continue
				}
				seen[token] = true
				candidates = append(candidates, token)
			}
		}
	}
	return candidates
}

// Discover fetches the WPAD document and returns its proxy tokens. A
// successfully fetched document with no tokens returns
// [ErrNoCandidates].
func (c *Client) Discover(ctx context.Context) ([]string, error) {
	text, err := c.Fetch(ctx)
	if err != nil {
		return nil, err
	}
	candidates := Candidates(text)
	if len(candidates) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoCandidates, c.URL)
	}
	return candidates, nil
}
