// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package commands builds the complete proxyctl command tree.
package commands

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/adrianmross/proxyctl/cmd/proxyctl/cli"
	doctorcmd "github.com/adrianmross/proxyctl/cmd/proxyctl/doctor"
	"github.com/adrianmross/proxyctl/cmd/proxyctl/proxycmd"
	"github.com/adrianmross/proxyctl/cmd/proxyctl/sshcmd"
	"github.com/adrianmross/proxyctl/lib/version"
)

// Root builds and returns the complete proxyctl command tree.
func Root() *cli.Command {
	return &cli.Command{
		Name: "proxyctl",
		Description: `proxyctl: one switch for your proxy configuration.

Toggle proxy environment variables, shell profile exports, and SSH
ProxyCommand directives together, with automatic proxy discovery and
per-host overrides from a simple host registry.`,
		Subcommands: []*cli.Command{
			proxycmd.OnCommand(),
			proxycmd.OffCommand(),
			proxycmd.ProxyCommand(),
			sshcmd.Command(),
			proxycmd.StatusCommand(),
			proxycmd.DetectCommand(),
			doctorcmd.Command(),
			{
				Name:    "version",
				Summary: "Print version information",
				Run: func(_ context.Context, args []string, _ *slog.Logger) error {
					fmt.Printf("proxyctl %s\n", version.Full())
					return nil
				},
			},
		},
		Examples: []cli.Example{
			{
				Description: "Enable the proxy everywhere (environment, profiles, SSH)",
				Command:     "proxyctl on",
			},
			{
				Description: "See which variables are currently set",
				Command:     "proxyctl status",
			},
			{
				Description: "Check what automatic resolution would pick",
				Command:     "proxyctl detect",
			},
			{
				Description: "Turn everything off again",
				Command:     "proxyctl off",
			},
		},
	}
}
