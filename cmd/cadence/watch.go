package main

import (
	"fmt"
	"io"
	"sync"

	"github.com/spf13/cobra"

	"github.com/dshills/cadence/internal/app"
	"github.com/dshills/cadence/internal/settings"
)

func newWatchCmd(flags *rootFlags) *cobra.Command {
	var all bool

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Re-render the settings page whenever the seed file or row visibility changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			application, err := startApp(cmd, flags, true)
			if err != nil {
				return err
			}
			defer application.Shutdown()

			out := cmd.OutOrStdout()
			r := &reRenderer{app: application, out: out, all: all}
			application.OnSeedChange(func(keys []string) {
				r.render(fmt.Sprintf("%d keys changed", len(keys)))
			})
			application.OnVisibleChange(func(visible []settings.Descriptor) {
				r.render(fmt.Sprintf("%d rows visible", len(visible)))
			})
			r.render("watching " + application.Options().Seed)

			<-cmd.Context().Done()
			return nil
		},
	}

	cmd.Flags().BoolVar(&all, "all", false, "include rows hidden by attachTo")
	return cmd
}

// reRenderer prints the page; seed reloads and the visibility changes they
// cause arrive on the watcher goroutine.
type reRenderer struct {
	mu  sync.Mutex
	app *app.Application
	out io.Writer
	all bool
}

func (r *reRenderer) render(header string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	fmt.Fprintln(r.out, mutedStyle.Render("-- "+header))
	fmt.Fprint(r.out, renderPage(r.app.Resolver().Rows(), renderOptions{all: r.all}))
}
