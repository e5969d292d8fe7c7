package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dshills/cadence/internal/config/loader"
)

func newExportCmd(flags *rootFlags) *cobra.Command {
	var (
		output    string
		effective bool
	)

	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored values as TOML",
		Long: `Write the live values as a flat TOML document. With --effective,
defaults registered by extensions are included for keys with no live value.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := startApp(cmd, flags, false)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			store := application.Store()
			values := store.Snapshot()
			if effective {
				values = make(map[string]any)
				for _, key := range store.Keys() {
					if v, ok := store.GetItem(key); ok {
						values[key] = v
					}
				}
			}

			data, err := loader.Encode(values)
			if err != nil {
				return err
			}

			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}
			if err := os.WriteFile(output, data, 0644); err != nil {
				return fmt.Errorf("failed to write %s: %w", output, err)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "file to write (default stdout)")
	cmd.Flags().BoolVar(&effective, "effective", false, "include defaults")
	return cmd
}
