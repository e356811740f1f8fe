package main

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/aretw0/shelf"
	"github.com/aretw0/shelf/internal/platform"
	"github.com/aretw0/shelf/pkg/naming"
)

// app carries what every subcommand needs: configuration and the logger.
type app struct {
	v      *viper.Viper
	logger *slog.Logger
}

// newRootCmd builds the command tree. Each call returns an independent tree.
func newRootCmd() *cobra.Command {
	a := &app{v: viper.New(), logger: slog.New(slog.DiscardHandler)}
	var cfgFile string

	rootCmd := &cobra.Command{
		Use:   "shelf",
		Short: "Manage repositories of versioned source-code libraries",
		Long: `Shelf stores source-code libraries as directories with a descriptor,
fetches them, upgrades legacy layouts, and packages them for publication.`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.configure(cmd, cfgFile)
		},
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&cfgFile, "config", "", "config file (default: shelf.yaml in the shelf root)")
	flags.String("root", "", "repository root (default: nearest directory with .shelf or shelf.yaml, else the working directory)")
	flags.String("naming", naming.KindByName, "naming strategy: by-name, by-name-at-version or direct")
	flags.BoolP("verbose", "v", false, "Enable verbose logging")

	rootCmd.AddCommand(
		newListCmd(a),
		newShowCmd(a),
		newAddCmd(a),
		newUpgradeCmd(a),
		newPackCmd(a),
		newWatchCmd(a),
		newVersionCmd(),
	)
	return rootCmd
}

func (a *app) configure(cmd *cobra.Command, cfgFile string) error {
	a.v.SetEnvPrefix("SHELF")
	a.v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	a.v.AutomaticEnv()
	if err := a.v.BindPFlags(cmd.Flags()); err != nil {
		return err
	}

	if cfgFile != "" {
		a.v.SetConfigFile(cfgFile)
		if err := a.v.ReadInConfig(); err != nil {
			return fmt.Errorf("failed to read config: %w", err)
		}
	} else if root, err := a.root(); err == nil {
		path := filepath.Join(root, platform.ConfigFilename)
		if _, err := os.Stat(path); err == nil {
			a.v.SetConfigFile(path)
			if err := a.v.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config: %w", err)
			}
		}
	}

	level := log.InfoLevel
	if a.v.GetBool("verbose") {
		level = log.DebugLevel
	}
	handler := log.NewWithOptions(cmd.ErrOrStderr(), log.Options{
		Level:  level,
		Prefix: "shelf",
	})
	a.logger = slog.New(handler)
	slog.SetDefault(a.logger)
	return nil
}

// root resolves the repository root from flags, environment, or discovery.
func (a *app) root() (string, error) {
	if root := a.v.GetString("root"); root != "" {
		return root, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get working directory: %w", err)
	}
	if root, err := platform.FindRoot(wd); err == nil {
		return root, nil
	}
	return wd, nil
}

// open opens the configured repository, which must exist.
func (a *app) open(opts ...shelf.Option) (*shelf.Repository, error) {
	root, err := a.root()
	if err != nil {
		return nil, err
	}
	strategy, err := naming.Parse(a.v.GetString("naming"))
	if err != nil {
		return nil, err
	}

	base := []shelf.Option{
		shelf.WithNaming(strategy),
		shelf.WithMustExist(true),
		shelf.WithLogger(a.logger),
	}
	return shelf.Open(root, append(base, opts...)...)
}
