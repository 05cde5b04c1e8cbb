package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/mapforge/sourcemap/pkg/diag"
	"github.com/mapforge/sourcemap/pkg/mapfile"
	"github.com/mapforge/sourcemap/pkg/watch"
)

func newWatchCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "watch <dir>",
		Short: "Re-validate source maps as they change",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := &watch.Options{Extensions: a.cfg.Extensions}
			mw, err := watch.NewMapWatcher(args[0], a.logger, func(path string) {
				validateMap(a, path)
			}, opts)
			if err != nil {
				return err
			}
			defer mw.Close()

			sig := make(chan os.Signal, 1)
			signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
			<-sig
			a.logger.Infof("Stopping")
			return nil
		},
	}
}

func validateMap(a *app, path string) {
	data, err := os.ReadFile(path)
	if err != nil {
		a.logger.Errorf("%s: %v", path, err)
		return
	}

	f, err := mapfile.Parse(data)
	if err != nil {
		a.logger.Errorf("%s: %v", path, err)
		return
	}

	sm, err := f.ToSourceMap(a.cfg.ProjectRoot)
	if err != nil {
		fmt.Fprintln(os.Stderr, a.styles.bad.Render(diag.Render([]byte(f.Mappings), err)))
		return
	}

	a.logger.Infof("%s ok: %d mappings over %d sources", path, len(sm.Mappings()), len(sm.Sources()))
}
