// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

// Package sshcmd implements "proxyctl ssh add" and "proxyctl ssh
// remove", which manage ProxyCommand lines for registered hosts in the
// user's SSH config.
package sshcmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/pflag"

	"github.com/adrianmross/proxyctl/cmd/proxyctl/cli"
	"github.com/adrianmross/proxyctl/cmd/proxyctl/proxycmd"
	"github.com/adrianmross/proxyctl/lib/hostsfile"
	"github.com/adrianmross/proxyctl/lib/settings"
	"github.com/adrianmross/proxyctl/lib/sshconfig"
)

// Command returns "proxyctl ssh" with its add/remove subcommands.
func Command() *cli.Command {
	var hostsFile string
	var proxy string

	return &cli.Command{
		Name:    "ssh",
		Summary: "Manage ProxyCommand lines in your SSH config",
		Description: `Add or remove ProxyCommand directives for every host registered in the
host registry. A backup of the SSH config is written next to it before
any modification.`,
		Subcommands: []*cli.Command{
			{
				Name:    "add",
				Summary: "Write ProxyCommand lines for registered hosts",
				Usage:   "proxyctl ssh add [--hosts-file PATH] [--proxy HOST:PORT]",
				Examples: []cli.Example{
					{Description: "Apply the registry with automatic proxy resolution", Command: "proxyctl ssh add"},
					{Description: "Use an alternate registry file", Command: "proxyctl ssh add --hosts-file ./team_hosts"},
				},
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("ssh add", pflag.ContinueOnError)
					flagSet.StringVar(&hostsFile, "hosts-file", "", "host registry to apply (default: the configured registry)")
					flagSet.StringVar(&proxy, "proxy", "", "proxy for entries without their own (default: auto-resolution)")
					return flagSet
				},
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					if len(args) > 0 {
						return fmt.Errorf("unexpected argument: %s", args[0])
					}
					app, err := proxycmd.LoadApp(logger.With("command", "ssh/add"))
					if err != nil {
						return err
					}
					entries, err := loadEntries(app, hostsFile)
					if err != nil {
						return err
					}
					if len(entries) == 0 {
						fmt.Println("Host registry is empty; nothing to do")
						return nil
					}
					resolved, err := app.Resolver().Resolve(ctx, proxy)
					if err != nil {
						return err
					}
					configPath, err := settings.SSHConfigPath()
					if err != nil {
						return err
					}
					sync := sshconfig.New(configPath)
					changed, err := sync.Add(entries, resolved.HostPort)
					if err != nil {
						return describeConflict(err)
					}
					if changed {
						fmt.Printf("SSH config updated for %d host entr%s (backup: %s)\n",
							len(entries), plural(len(entries)), sync.BackupPath())
					} else {
						fmt.Println("SSH config already up to date")
					}
					return nil
				},
			},
			{
				Name:    "remove",
				Summary: "Strip the tool's ProxyCommand lines from registered hosts",
				Usage:   "proxyctl ssh remove [--hosts-file PATH]",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("ssh remove", pflag.ContinueOnError)
					flagSet.StringVar(&hostsFile, "hosts-file", "", "host registry to apply (default: the configured registry)")
					return flagSet
				},
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					if len(args) > 0 {
						return fmt.Errorf("unexpected argument: %s", args[0])
					}
					app, err := proxycmd.LoadApp(logger.With("command", "ssh/remove"))
					if err != nil {
						return err
					}
					entries, err := loadEntries(app, hostsFile)
					if err != nil {
						return err
					}
					configPath, err := settings.SSHConfigPath()
					if err != nil {
						return err
					}
					sync := sshconfig.New(configPath)
					changed, err := sync.Remove(entries)
					if err != nil {
						return err
					}
					if changed {
						fmt.Println("SSH config cleaned")
					} else {
						fmt.Println("Nothing to remove")
					}
					return nil
				},
			},
		},
	}
}

func loadEntries(app *proxycmd.App, override string) ([]hostsfile.Entry, error) {
	if override != "" {
		return hostsfile.Parse(override)
	}
	return app.Entries()
}

// describeConflict points the user at the offending host block when
// the registry resolves to conflicting proxies.
func describeConflict(err error) error {
	var conflict *sshconfig.ConflictError
	if errors.As(err, &conflict) {
		return fmt.Errorf("%w\n\nSplit the host block or give the conflicting registry entries the same proxy.", err)
	}
	return err
}

func plural(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
