package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/dshills/cadence/internal/app"
)

// rootFlags holds the persistent flags shared by every command.
type rootFlags struct {
	configFile string
}

// newRootCmd builds the command tree. Each call returns a fresh tree so
// tests can run commands in isolation.
func newRootCmd() *cobra.Command {
	flags := &rootFlags{}

	root := &cobra.Command{
		Use:   "cadence",
		Short: "Host extension settings from the command line",
		Long: titleStyle.Render("cadence") + mutedStyle.Render(" - extension configuration host") + `

cadence loads Lua extensions, lets them register configuration defaults
and settings rows, and renders the resulting settings page. Values come
from a TOML seed file and can be changed per invocation with --set.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&flags.configFile, "config", "", "options file (default is ./cadence.toml or the user config dir)")
	pf.StringSlice("extensions", nil, "directories searched for extensions")
	pf.String("seed", "", "TOML file applied to the store at start")
	pf.String("log-level", "", "log level (debug, info, warn, error)")
	pf.Duration("execution-timeout", 0, "limit for each run of extension code")

	root.AddCommand(
		newSettingsCmd(flags),
		newGetCmd(flags),
		newKeysCmd(flags),
		newExportCmd(flags),
		newWatchCmd(flags),
		newVersionCmd(),
	)

	return root
}

// loadOptions resolves options from the options file, CADENCE_* variables
// and any flags the user set.
func loadOptions(cmd *cobra.Command, flags *rootFlags) (app.Options, error) {
	v := app.NewViper()

	bindings := map[string]string{
		"extensions":        "extensions",
		"seed":              "seed",
		"log_level":         "log-level",
		"execution_timeout": "execution-timeout",
	}
	for key, name := range bindings {
		if err := bindFlag(v, key, cmd.Flags().Lookup(name)); err != nil {
			return app.Options{}, err
		}
	}

	opts, err := app.LoadOptions(v, flags.configFile)
	if err != nil {
		return app.Options{}, err
	}
	opts.LogOutput = cmd.ErrOrStderr()
	return opts, nil
}

type flagBinder interface {
	BindPFlag(key string, flag *pflag.Flag) error
}

func bindFlag(v flagBinder, key string, flag *pflag.Flag) error {
	if flag == nil {
		return nil
	}
	if err := v.BindPFlag(key, flag); err != nil {
		return fmt.Errorf("failed to bind --%s: %w", flag.Name, err)
	}
	return nil
}

// startApp creates and starts the application. The caller must Shutdown it.
func startApp(cmd *cobra.Command, flags *rootFlags, watch bool) (*app.Application, error) {
	opts, err := loadOptions(cmd, flags)
	if err != nil {
		return nil, err
	}
	opts.Watch = watch

	application, err := app.New(opts)
	if err != nil {
		return nil, err
	}
	if err := application.Start(cmd.Context()); err != nil {
		return nil, err
	}
	return application, nil
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), "cadence", versionString())
		},
	}
}
