package main

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/aretw0/shelf/pkg/contrib"
)

func newPackCmd(a *app) *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "pack [name]",
		Short: "Validate a library and write its publication archive",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) (err error) {
			repo, err := a.open()
			if err != nil {
				return err
			}
			name := args[0]
			if output == "" {
				output = name + ".tar.gz"
			}

			pipeline := contrib.New(contrib.Config{
				Repository: repo,
				Validator:  contrib.LocalValidator{},
				Logger:     a.logger,
			})
			outcome, err := pipeline.Contribute(cmd.Context(), name, true)
			if err != nil {
				return fmt.Errorf("cannot pack %s: %w", name, err)
			}
			defer outcome.Archive.Close()

			f, err := os.Create(output)
			if err != nil {
				return fmt.Errorf("failed to create archive: %w", err)
			}
			defer func() {
				if cerr := f.Close(); err == nil {
					err = cerr
				}
			}()
			if _, err := io.Copy(f, outcome.Archive); err != nil {
				return fmt.Errorf("failed to write archive: %w", err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", output)
			if archive, ok := outcome.Archive.(*contrib.Archive); ok {
				fmt.Fprintf(cmd.OutOrStdout(), "blake3 %s\n", archive.Sum())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "archive path (default: NAME.tar.gz)")
	return cmd
}
