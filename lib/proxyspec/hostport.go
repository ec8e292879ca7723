// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxyspec

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// UnparseableError reports a proxy specification from which no host:port
// target could be extracted. Raw is the specification as given, before
// any trimming or token stripping.
type UnparseableError struct {
	Raw string
}

func (e *UnparseableError) Error() string {
	return fmt.Sprintf("unable to determine proxy target from %q", e.Raw)
}

// defaultPorts maps URL schemes to their well-known ports, used when a
// specification names a scheme but no explicit port.
var defaultPorts = map[string]string{
	"http":   "80",
	"https":  "443",
	"ftp":    "21",
	"socks":  "1080",
	"socks4": "1080",
	"socks5": "1080",
}

// directives are the PAC-style keywords that may prefix a proxy token,
// longest-match-first so SOCKS4/SOCKS5 win over SOCKS and HTTPS over HTTP.
var directives = []string{"SOCKS5", "SOCKS4", "HTTPS", "SOCKS", "HTTP", "PROXY"}

// HostPort extracts the canonical "host:port" target from an arbitrary
// proxy specification. IPv6 hosts keep their brackets so the result can
// be passed directly as a command argument.
//
// The extraction tries, in order: a full URL parse (as given, then with
// a synthesized http:// prefix), a PAC directive strip followed by a
// re-parse of the first remaining token, and finally a raw rightmost-
// colon split. A scheme without an explicit port resolves to the
// scheme's well-known port, so the bare specification "proxy.local"
// canonicalizes to "proxy.local:80" via the synthesized http prefix.
func HostPort(raw string) (string, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return "", &UnparseableError{Raw: raw}
	}

	if hp, ok := tryURL(trimmed); ok {
		return hp, nil
	}
	if hp, ok := tryURL("http://" + trimmed); ok {
		return hp, nil
	}

	candidate := stripDirective(trimmed)

	// A bracketed IPv6 literal with a stray space after the colon
	// ("[::1]: 8080") only survives before the token split below.
	if strings.HasPrefix(candidate, "[") {
		if hp, ok := splitHostPort(candidate); ok {
			return hp, nil
		}
	}

	if fields := strings.Fields(candidate); len(fields) > 0 {
		candidate = fields[0]
	}
	candidate = strings.Trim(candidate, `;"'`)
	candidate = strings.TrimSuffix(candidate, "/")
	candidate = strings.TrimSpace(candidate)
	if candidate == "" {
		return "", &UnparseableError{Raw: raw}
	}

	if hp, ok := tryURL("http://" + candidate); ok {
		return hp, nil
	}
	if hp, ok := splitHostPort(candidate); ok {
		return hp, nil
	}

	return "", &UnparseableError{Raw: raw}
}

// tryURL parses input as a URL and returns host:port when the parse
// yields both a host and a port (explicit or defaulted from the scheme).
func tryURL(input string) (string, bool) {
	u, err := url.Parse(input)
	if err != nil {
		return "", false
	}
	host := u.Hostname()
	if !plausibleHost(host) {
		return "", false
	}
	port := u.Port()
	if port == "" {
		port = defaultPorts[strings.ToLower(u.Scheme)]
	}
	if port == "" {
		return "", false
	}
	return net.JoinHostPort(host, port), true
}

// stripDirective removes a leading PAC keyword (PROXY, HTTPS, SOCKS5,
// ...) and the separators and quoting around it. A keyword only counts
// when followed by whitespace, so hostnames that merely start with
// "socks" or "http" pass through untouched.
func stripDirective(s string) string {
	c := strings.Trim(s, `;"'`)
	c = strings.TrimSpace(c)
	upper := strings.ToUpper(c)
	for _, d := range directives {
		if !strings.HasPrefix(upper, d) {
			continue
		}
		rest := c[len(d):]
		if rest == "" || (rest[0] != ' ' && rest[0] != '\t') {
			continue
		}
		return strings.TrimSpace(rest)
	}
	return c
}

// splitHostPort splits on the rightmost colon, with special handling
// for bracketed IPv6 literals, including the malformed-but-observed
// "[::1]: 8080" variant with a space between colon and port.
func splitHostPort(input string) (string, bool) {
	input = strings.TrimSpace(input)

	if strings.HasPrefix(input, "[") {
		if i := strings.Index(input, "]: "); i >= 0 {
			host := input[:i+1]
			port := strings.TrimSpace(input[i+2:])
			if port != "" {
				return host + ":" + port, true
			}
			return "", false
		}
		if i := strings.LastIndex(input, "]:"); i >= 0 {
			host := input[:i+1]
			port := strings.TrimSpace(input[i+2:])
			if port != "" {
				return host + ":" + port, true
			}
			return "", false
		}
	}

	i := strings.LastIndex(input, ":")
	if i < 0 {
		return "", false
	}
	host := strings.TrimSpace(input[:i])
	port := strings.TrimSpace(input[i+1:])
	if !plausibleHost(host) || port == "" {
		return "", false
	}
	return host + ":" + port, true
}

// plausibleHost rejects hosts with characters that cannot appear in a
// hostname or IP literal. The standard URL parser is lenient about
// sub-delimiters in the authority, which would otherwise let junk like
// ";;;" canonicalize.
func plausibleHost(host string) bool {
	if host == "" {
		return false
	}
	for _, r := range host {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9':
		case r == '.' || r == '-' || r == '_' || r == ':':
		default:
			return false
		}
	}
	return true
}
