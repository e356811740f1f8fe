package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/aretw0/shelf"
	"github.com/aretw0/shelf/pkg/adapters/fs"
	"github.com/aretw0/shelf/pkg/core"
	"github.com/aretw0/shelf/pkg/naming"
)

func newAddCmd(a *app) *cobra.Command {
	var layout int

	cmd := &cobra.Command{
		Use:   "add [dir]",
		Short: "Copy the library in dir into the repository",
		Long: `Add reads the library whose descriptor sits at the top of dir and writes it
into the repository. With the current layout, nested includes of the library's
own headers are flattened on the way.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			target := core.Layout(layout)
			if target != core.LayoutLegacy && target != core.LayoutCurrent {
				return fmt.Errorf("unsupported layout %d: use 1 (legacy) or 2 (current)", layout)
			}

			repo, err := a.open(shelf.WithMustExist(false))
			if err != nil {
				return err
			}
			src := fs.NewRepository(fs.Config{
				Path:     args[0],
				Naming:   naming.Direct{},
				ReadOnly: true,
				Logger:   a.logger,
			})
			if err := src.Initialize(cmd.Context()); err != nil {
				return err
			}

			ctx := cmd.Context()
			var lib core.Library
			if target == core.LayoutCurrent {
				lib, err = core.NewService(repo).Promote(ctx, src, "")
			} else {
				lib, err = src.Fetch(ctx, "")
				if err == nil {
					err = repo.Add(ctx, lib, target)
				}
			}
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "added %s %s (%s layout)\n", lib.Name, lib.Metadata.Version, target)
			return nil
		},
	}

	cmd.Flags().IntVar(&layout, "layout", int(core.DefaultLayout), "descriptor layout to write: 1 (legacy) or 2 (current)")
	return cmd
}
