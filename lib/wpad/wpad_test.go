// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package wpad

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

const samplePAC = `
function FindProxyForURL(url, host) {
	var proxies = "PROXY proxy.corp:3128; PROXY backup.corp:3128; DIRECT";
	if (shExpMatch(host, "*.internal"))
		return "PROXY proxy.corp:3128";
	return proxies;
}
`

func TestCandidates(t *testing.T) {
	tests := []struct {
		name string
		text string
		want []string
	}{
		{
			name: "assignment and return forms deduplicated",
			text: samplePAC,
			want: []string{"PROXY proxy.corp:3128", "PROXY backup.corp:3128"},
		},
		{
			name: "direct only",
			text: `return "DIRECT";`,
			want: nil,
		},
		{
			name: "lowercase direct dropped",
			text: `var proxies = "direct; PROXY p.corp:8080";`,
			want: []string{"PROXY p.corp:8080"},
		},
		{
			name: "no proxy declarations",
			text: `function FindProxyForURL(url, host) { }`,
			want: nil,
		},
		{
			name: "socks return",
			text: `return "SOCKS5 socks.corp:1080; DIRECT";`,
			want: []string{"SOCKS5 socks.corp:1080"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Candidates(tt.text)
			if len(got) != len(tt.want) {
				t.Fatalf("Candidates = %v, want %v", got, tt.want)
			}
			for i := range tt.want {
				if got[i] != tt.want[i] {
					t.Errorf("Candidates[%d] = %q, want %q", i, got[i], tt.want[i])
				}
			}
		})
	}
}

func TestDiscover(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(samplePAC))
	}))
	defer server.Close()

	client := &Client{URL: server.URL}
	got, err := client.Discover(context.Background())
	if err != nil {
		t.Fatalf("Discover: %v", err)
	}
	if len(got) != 2 || got[0] != "PROXY proxy.corp:3128" {
		t.Errorf("Discover = %v", got)
	}
}

func TestDiscoverEmptyDocument(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("function FindProxyForURL(url, host) {}"))
	}))
	defer server.Close()

	client := &Client{URL: server.URL}
	_, err := client.Discover(context.Background())
	if !errors.Is(err, ErrNoCandidates) {
		t.Errorf("err = %v, want ErrNoCandidates", err)
	}
}

func TestDiscoverServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "not here", http.StatusNotFound)
	}))
	defer server.Close()

	client := &Client{URL: server.URL}
	_, err := client.Discover(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}

func TestDiscoverUnreachableHost(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := server.URL
	server.Close()

	client := &Client{URL: url}
	_, err := client.Discover(context.Background())
	if !errors.Is(err, ErrUnavailable) {
		t.Errorf("err = %v, want ErrUnavailable", err)
	}
}
