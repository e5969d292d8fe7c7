package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newGetCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "get KEY",
		Short: "Print the effective value of a key",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			application, err := startApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			v, ok := application.Store().GetItem(args[0])
			if !ok {
				return fmt.Errorf("key %q has no value", args[0])
			}
			fmt.Fprintln(cmd.OutOrStdout(), fmt.Sprint(v))
			return nil
		},
	}
}

func newKeysCmd(flags *rootFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "keys",
		Short: "List every key with a value and where it comes from",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := startApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			store := application.Store()
			for _, key := range store.Keys() {
				fmt.Fprintf(cmd.OutOrStdout(), "%s %s\n", key, mutedStyle.Render(store.Source(key)))
			}
			return nil
		},
	}
}
