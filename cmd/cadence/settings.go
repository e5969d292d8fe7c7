package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/dshills/cadence/internal/config/loader"
)

func newSettingsCmd(flags *rootFlags) *cobra.Command {
	var (
		all  bool
		sets []string
	)

	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Render the settings page",
		Long: `Load every extension and render the settings page they registered.

Rows whose attachTo key is not exactly true are hidden unless --all is
given. Each --set key=value is written with setItem before rendering, so
extension listeners run.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			assignments, err := parseAssignments(sets)
			if err != nil {
				return err
			}

			application, err := startApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			for _, a := range assignments {
				application.SetItem(a.key, a.value)
			}

			rows := application.Resolver().Rows()
			if len(rows) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), mutedStyle.Render("no settings registered"))
				return nil
			}
			fmt.Fprint(cmd.OutOrStdout(), renderPage(rows, renderOptions{all: all}))
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include rows hidden by attachTo")
	cmd.Flags().StringArrayVar(&sets, "set", nil, "write key=value before rendering (repeatable)")
	return cmd
}

type assignment struct {
	key   string
	value any
}

// parseAssignments splits key=value pairs and decodes each value as a TOML
// literal.
func parseAssignments(pairs []string) ([]assignment, error) {
	out := make([]assignment, 0, len(pairs))
	for _, pair := range pairs {
		key, raw, ok := strings.Cut(pair, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid --set %q: want key=value", pair)
		}
		out = append(out, assignment{key: key, value: loader.ParseValue(raw)})
	}
	return out, nil
}
