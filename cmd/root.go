/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/tristendillon/pytree/core/config"
	"github.com/tristendillon/pytree/core/generator"
	"github.com/tristendillon/pytree/core/logger"
)

var rootCmd = &cobra.Command{
	Use:   "pytree <file>",
	Short: "Print the local module dependency tree of a Python file.",
	Long: `pytree reads the imports of a Python file, follows the ones that refer to
modules inside the project and prints them as a tree. Circular imports are
reported and left out of the tree.`,
	Args:         cobra.ExactArgs(1),
	SilenceUsage: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cmd, args[0])
		if err != nil {
			return err
		}
		return gen.GenerateTree()
	},
}

var logfile string
var verbose bool
var noColor bool
var rootDir string
var maxDepth int

func Execute() {
	err := rootCmd.Execute()
	if closeErr := logger.Close(); closeErr != nil {
		fmt.Fprintf(os.Stderr, "failed to close log file: %v\n", closeErr)
	}
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logfile, "logfile", "", "File to write logs to")
	rootCmd.PersistentFlags().BoolVar(&verbose, "verbose", false, "Verbose output")
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable colored output")
	rootCmd.PersistentFlags().StringVar(&rootDir, "root", "", "Project root to index (default: directory of the entry file)")
	rootCmd.PersistentFlags().IntVar(&maxDepth, "max-depth", 0, "Abort when an import chain is deeper than this (0 = unlimited)")
}

// newGenerator applies the global flags and config for entryFile.
func newGenerator(cmd *cobra.Command, entryFile string) (*generator.TreeGenerator, error) {
	logger.SetVerbose(verbose)
	if logfile != "" {
		if err := logger.AddLogFile(logfile); err != nil {
			return nil, err
		}
	}
	logger.Debug("%s called with %s", cmd.Name(), entryFile)

	if _, err := os.Stat(entryFile); err != nil {
		return nil, fmt.Errorf("cannot read entry file: %w", err)
	}

	projectRoot := rootDir
	if projectRoot == "" {
		projectRoot = filepath.Dir(entryFile)
	}

	cfg, err := config.Load(projectRoot)
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if cmd.Flags().Changed("max-depth") {
		cfg.MaxDepth = maxDepth
	}
	if cfg.MaxDepth < 0 {
		return nil, fmt.Errorf("--max-depth must not be negative, got %d", cfg.MaxDepth)
	}

	logger.SetColor(colorEnabled(cfg))

	return generator.NewTreeGenerator(entryFile, projectRoot, cfg, cmd.OutOrStdout())
}

func colorEnabled(cfg *config.Config) bool {
	if noColor || !cfg.ColorEnabled() {
		return false
	}
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	fd := os.Stdout.Fd()
	return isatty.IsTerminal(fd) || isatty.IsCygwinTerminal(fd)
}
