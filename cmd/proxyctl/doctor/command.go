// Copyright 2026 The Proxyctl Authors
// SPDX-License-Identifier: Apache-2.0

package doctor

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"reflect"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/adrianmross/proxyctl/cmd/proxyctl/cli"
	"github.com/adrianmross/proxyctl/lib/settings"
)

// Command returns "proxyctl doctor" with its run/config subcommands.
func Command() *cli.Command {
	return &cli.Command{
		Name:    "doctor",
		Summary: "Check the tool's configuration and storage health",
		Subcommands: []*cli.Command{
			{
				Name:    "run",
				Summary: "Run all health checks",
				Usage:   "proxyctl doctor run",
				Examples: []cli.Example{
					{Description: "Check config, registry, state database, and WPAD", Command: "proxyctl doctor run"},
				},
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					if len(args) > 0 {
						return fmt.Errorf("unexpected argument: %s", args[0])
					}
					results := runChecks(ctx)
					if ok := renderResults(os.Stdout, results); !ok {
						return &cli.ExitError{Code: 1}
					}
					return nil
				},
			},
			{
				Name:    "config",
				Summary: "Print the effective settings",
				Usage:   "proxyctl doctor config",
				Run: func(ctx context.Context, args []string, logger *slog.Logger) error {
					if len(args) > 0 {
						return fmt.Errorf("unexpected argument: %s", args[0])
					}
					path, err := settings.ConfigPath()
					if err != nil {
						return err
					}
					s, err := settings.Load(path)
					if err != nil {
						return err
					}
					return printConfig(os.Stdout, path, s)
				},
			},
		},
	}
}

// printConfig renders the effective settings as YAML, followed by the
// fields that diverge from the built-in defaults.
func printConfig(w io.Writer, path string, s *settings.Settings) error {
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("encoding settings: %w", err)
	}
	fmt.Fprintf(w, "# %s\n%s", path, data)

	diverging := diff("", reflect.ValueOf(*s), reflect.ValueOf(*settings.Default()))
	if len(diverging) > 0 {
		fmt.Fprintf(w, "\n# Diverging from defaults:\n")
		for _, d := range diverging {
			fmt.Fprintf(w, "#   %s\n", d)
		}
	}
	return nil
}

// diff walks two values of the same struct type and reports leaf
// fields whose values differ, as "path: current (default: X)" lines.
// Field paths use the yaml tag names.
func diff(prefix string, current, defaults reflect.Value) []string {
	var lines []string
	t := current.Type()
	for i := 0; i < t.NumField(); i++ {
		field := t.Field(i)
		name := strings.Split(field.Tag.Get("yaml"), ",")[0]
		if name == "" {
			name = strings.ToLower(field.Name)
		}
		if prefix != "" {
			name = prefix + "." + name
		}

		cv, dv := current.Field(i), defaults.Field(i)
		if field.Type.Kind() == reflect.Struct {
			lines = append(lines, diff(name, cv, dv)...)
			continue
		}
		if !reflect.DeepEqual(cv.Interface(), dv.Interface()) {
			lines = append(lines, fmt.Sprintf("%s: %v (default: %v)", name, cv.Interface(), dv.Interface()))
		}
	}
	return lines
}
