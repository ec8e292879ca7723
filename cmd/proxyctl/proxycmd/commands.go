// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package proxycmd

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/pflag"

	"github.com/adrianmross/proxyctl/cmd/proxyctl/cli"
	"github.com/adrianmross/proxyctl/lib/proxyenv"
	"github.com/adrianmross/proxyctl/lib/proxyspec"
)

// OnCommand returns "proxyctl on": enable the proxy everywhere.
func OnCommand() *cli.Command {
	var proxy string

	return &cli.Command{
		Name:    "on",
		Summary: "Enable the proxy: environment, shell profiles, and SSH config",
		Description: `Resolve the proxy to use (explicit flag, environment, WPAD discovery,
configured default — in that order), export the proxy variables, write
the managed block into your shell profiles, add ProxyCommand lines for
every registered host to your SSH config, and persist the applied
state.`,
		Usage: "proxyctl on [--proxy HOST:PORT]",
		Examples: []cli.Example{
			{Description: "Enable with automatic proxy resolution", Command: "proxyctl on"},
			{Description: "Enable with an explicit proxy", Command: "proxyctl on --proxy proxy.corp:3128"},
		},
		Flags: func() *pflag.FlagSet {
			flagSet := pflag.NewFlagSet("on", pflag.ContinueOnError)
			flagSet.StringVar(&proxy, "proxy", "", "proxy to use instead of auto-resolution (URL or host:port)")
			return flagSet
		},
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			app, err := LoadApp(logger.With("command", "on"))
			if err != nil {
				return err
			}
			resolved, err := app.Resolver().Resolve(ctx, proxy)
			if err != nil {
				return describeResolution(err)
			}
			if err := app.EnableProxy(ctx, resolved); err != nil {
				return err
			}
			count, err := app.AddSSH(resolved)
			if err != nil {
				return err
			}
			fmt.Printf("Proxy enabled: %s\n", resolved.HostPort)
			if count > 0 {
				fmt.Printf("SSH config: %d host entr%s managed\n", count, pluralY(count))
			}
			return nil
		},
	}
}

// OffCommand returns "proxyctl off": disable the proxy everywhere.
func OffCommand() *cli.Command {
	return &cli.Command{
		Name:    "off",
		Summary: "Disable the proxy: environment, shell profiles, and SSH config",
		Usage:   "proxyctl off",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			if len(args) > 0 {
				return fmt.Errorf("unexpected argument: %s", args[0])
			}
			app, err := LoadApp(logger.With("command", "off"))
			if err != nil {
				return err
			}
			if err := app.DisableProxy(ctx); err != nil {
				return err
			}
			if err := app.RemoveSSH(); err != nil {
				return err
			}
			fmt.Println("Proxy disabled")
			return nil
		},
	}
}

// ProxyCommand returns "proxyctl proxy" with its on/off subcommands,
// which toggle the environment and shell profiles without touching the
// SSH config.
func ProxyCommand() *cli.Command {
	var proxy string

	return &cli.Command{
		Name:    "proxy",
		Summary: "Toggle proxy environment variables only (no SSH changes)",
		Subcommands: []*cli.Command{
			{
				Name:    "on",
				Summary: "Export proxy variables and update shell profiles",
				Usage:   "proxyctl proxy on [--proxy HOST:PORT]",
				Flags: func() *pflag.FlagSet {
					flagSet := pflag.NewFlagSet("proxy on", pflag.ContinueOnError)
					flagSet.StringVar(&proxy, "proxy", "", "proxy to use instead of auto-resolution (URL or host:port)")
					return flagSet
				},
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					app, err := LoadApp(logger.With("command", "proxy/on"))
					if err != nil {
						return err
					}
					resolved, err := app.Resolver().Resolve(ctx, proxy)
					if err != nil {
						return describeResolution(err)
					}
					if err := app.EnableProxy(ctx, resolved); err != nil {
						return err
					}
					fmt.Printf("Proxy environment enabled: %s\n", resolved.HostPort)
					return nil
				},
			},
			{
				Name:    "off",
				Summary: "Unset proxy variables and clean shell profiles",
				Usage:   "proxyctl proxy off",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					app, err := LoadApp(logger.With("command", "proxy/off"))
					if err != nil {
						return err
					}
					if err := app.DisableProxy(ctx); err != nil {
						return err
					}
					fmt.Println("Proxy environment disabled")
					return nil
				},
			},
		},
	}
}

// StatusCommand returns "proxyctl status": report the state of every
// managed variable.
func StatusCommand() *cli.Command {
	return &cli.Command{
		Name:    "status",
		Summary: "Show the current proxy variable state",
		Usage:   "proxyctl status",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			app, err := LoadApp(logger.With("command", "status"))
			if err != nil {
				return err
			}
			store, err := app.OpenState()
			if err != nil {
				return err
			}
			defer store.Close()

			state, err := store.Load(ctx)
			if err != nil {
				return err
			}
			statuses := proxyenv.Snapshot(app.Settings.Proxy, state.Map(), os.LookupEnv)
			fmt.Print(proxyenv.RenderStatus(statuses))
			return nil
		},
	}
}

// DetectCommand returns "proxyctl detect": print the proxy that
// resolution would pick, without changing anything.
func DetectCommand() *cli.Command {
	return &cli.Command{
		Name:    "detect",
		Summary: "Print the proxy that automatic resolution would use",
		Usage:   "proxyctl detect",
		Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
			app, err := LoadApp(logger.With("command", "detect"))
			if err != nil {
				return err
			}
			resolved, err := app.Resolver().Resolve(ctx, "")
			if err != nil {
				return describeResolution(err)
			}
			fmt.Println(resolved.HostPort)
			return nil
		},
	}
}

// describeResolution turns resolver failures into actionable messages.
func describeResolution(err error) error {
	var unparseable *proxyspec.UnparseableError
	switch {
	case errors.As(err, &unparseable):
		return fmt.Errorf("%w\n\nGive the proxy as host:port or a URL, e.g. --proxy proxy.corp:3128.", err)
	case errors.Is(err, proxyspec.ErrNoProxy):
		return fmt.Errorf("%w\n\nSet default_proxy in the config file, export a *_proxy variable, or pass --proxy.", err)
	}
	return err
}

func pluralY(n int) string {
	if n == 1 {
		return "y"
	}
	return "ies"
}
