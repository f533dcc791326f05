package cmd

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-git/go-billy/v5"
	"github.com/go-git/go-billy/v5/osfs"
	"github.com/go-git/go-billy/v5/util"
	"github.com/spf13/cobra"

	"github.com/syntax-tree/unist-util-is/internal/config"
	"github.com/syntax-tree/unist-util-is/internal/rules"
)

var (
	configPath string
	verbose    bool

	// cfg is loaded before any subcommand runs.
	cfg *config.Config

	// fsys serves every file the commands read. Paths are made absolute
	// first, so tests can swap in a memfs.
	fsys billy.Filesystem = osfs.New("/")
)

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config file (default ./unist-is.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Enable debug logging")
}

var rootCmd = &cobra.Command{
	Use:           "unist-is",
	Short:         "Check whether tree nodes pass unist tests",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.LoadConfig(configPath)
		if err != nil {
			return err
		}
		cfg = loaded

		level := cfg.Level()
		if verbose {
			level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{Level: level})))
		return nil
	},
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func readFile(path string) ([]byte, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	return util.ReadFile(fsys, abs)
}

// stringFlag returns the flag value when set on the command line, and the
// configured value otherwise.
func stringFlag(cmd *cobra.Command, name, value, configured string) string {
	if cmd.Flags().Changed(name) {
		return value
	}
	return configured
}

func loadRules(path string) ([]rules.Rule, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	rs, err := rules.Load(fsys, abs)
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded rules", "path", path, "count", len(rs))
	return rs, nil
}
