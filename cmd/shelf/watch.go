package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/aretw0/shelf"
	"github.com/aretw0/shelf/pkg/adapters/lifecycle"
)

func newWatchCmd(a *app) *cobra.Command {
	var pattern string

	cmd := &cobra.Command{
		Use:   "watch",
		Short: "Print library changes until interrupted",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			repo, err := a.open(shelf.WithWatcherErrorHandler(func(err error) {
				a.logger.Error("watcher failed", "error", err)
			}))
			if err != nil {
				return err
			}

			events, err := repo.Watch(ctx, pattern)
			if err != nil {
				return err
			}
			source := lifecycle.NewSource(events)
			if err := source.Start(ctx); err != nil {
				return err
			}

			a.logger.Info("watching", "root", repo.Path, "pattern", pattern)
			out := cmd.OutOrStdout()
			for e := range source.Events() {
				fmt.Fprintln(out, e.String())
			}
			a.logger.Debug("watch stopped", "cause", context.Cause(ctx))
			return nil
		},
	}

	cmd.Flags().StringVar(&pattern, "pattern", "", "glob of paths to watch, relative to the root (default: everything)")
	return cmd
}
