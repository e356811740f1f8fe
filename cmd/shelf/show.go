package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/aretw0/shelf/pkg/core"
)

type fileView struct {
	Name     string `json:"name" yaml:"name"`
	Kind     string `json:"kind" yaml:"kind"`
	Filename string `json:"filename" yaml:"filename"`
}

type libraryView struct {
	Name        string         `json:"name" yaml:"name"`
	Layout      string         `json:"layout" yaml:"layout"`
	Version     string         `json:"version,omitempty" yaml:"version,omitempty"`
	License     string         `json:"license,omitempty" yaml:"license,omitempty"`
	Author      string         `json:"author,omitempty" yaml:"author,omitempty"`
	Sentence    string         `json:"sentence,omitempty" yaml:"sentence,omitempty"`
	Description string         `json:"description,omitempty" yaml:"description,omitempty"`
	Extra       map[string]any `json:"extra,omitempty" yaml:"extra,omitempty"`
	Files       []fileView     `json:"files" yaml:"files"`
}

func newLibraryView(lib core.Library, layout core.Layout) libraryView {
	d := lib.Metadata
	view := libraryView{
		Name:        lib.Name,
		Layout:      layout.String(),
		Version:     d.Version,
		License:     d.License,
		Author:      d.Author,
		Sentence:    d.Sentence,
		Description: d.Description,
		Extra:       d.Extra,
		Files:       make([]fileView, 0, len(lib.Files)),
	}
	for _, f := range lib.Files {
		view.Files = append(view.Files, fileView{Name: f.Name, Kind: string(f.Kind), Filename: f.Filename()})
	}
	return view
}

func newShowCmd(a *app) *cobra.Command {
	var asJSON, asYAML bool

	cmd := &cobra.Command{
		Use:   "show [name]",
		Short: "Show a library's descriptor and files",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			repo, err := a.open()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			lib, err := repo.Fetch(ctx, args[0])
			if err != nil {
				return err
			}
			layout, err := repo.Layout(ctx, args[0])
			if err != nil {
				return err
			}
			view := newLibraryView(lib, layout)

			out := cmd.OutOrStdout()
			switch {
			case asJSON:
				encoder := json.NewEncoder(out)
				encoder.SetIndent("", "  ")
				return encoder.Encode(view)
			case asYAML:
				encoder := yaml.NewEncoder(out)
				encoder.SetIndent(2)
				defer encoder.Close()
				return encoder.Encode(view)
			default:
				printLibrary(out, view)
				return nil
			}
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "Output in JSON format")
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "Output in YAML format")
	cmd.MarkFlagsMutuallyExclusive("json", "yaml")
	return cmd
}

func printLibrary(w io.Writer, view libraryView) {
	fmt.Fprintf(w, "%s (%s layout)\n", view.Name, view.Layout)
	for _, field := range []struct{ key, value string }{
		{"version", view.Version},
		{"license", view.License},
		{"author", view.Author},
		{"sentence", view.Sentence},
	} {
		if field.value != "" {
			fmt.Fprintf(w, "  %-9s %s\n", field.key+":", field.value)
		}
	}
	for _, f := range view.Files {
		fmt.Fprintf(w, "  %-7s %s\n", f.Kind, f.Name+path.Ext(f.Filename))
	}
}

