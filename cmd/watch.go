package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/tristendillon/pytree/core/logger"
	"github.com/tristendillon/pytree/core/walker"
	"github.com/tristendillon/pytree/core/watcher"
)

// watchCmd represents the watch command
var watchCmd = &cobra.Command{
	Use:   "watch <file>",
	Short: "Reprint the dependency tree whenever a source file changes",
	Long: `Prints the dependency tree of the given file, then watches the project
root and prints it again after source files change.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		gen, err := newGenerator(cmd, args[0])
		if err != nil {
			return err
		}

		exclude := append([]string{}, walker.DefaultExcludes...)
		exclude = append(exclude, gen.Config.Exclude...)

		fw, err := watcher.NewFileWatcher(gen.RootDir, gen.Config.Extension, exclude, gen.Config.Watch.Debounce)
		if err != nil {
			return err
		}
		defer fw.Close()

		out := cmd.OutOrStdout()
		fw.FileWatcher.AddOnStartFunc(func() error {
			if err := gen.GenerateTree(); err != nil {
				logger.Error("%v", err)
			}
			logger.Info("Watching %s for changes", gen.RootDir)
			return nil
		})
		fw.FileWatcher.AddOnChangeFunc(func(changed []string) error {
			for _, path := range changed {
				gen.Cache().InvalidateFile(path)
			}
			fmt.Fprintln(out)
			if err := gen.GenerateTree(); err != nil {
				logger.Error("%v", err)
			}
			return nil
		})

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return fw.Watch(ctx)
	},
}

func init() {
	rootCmd.AddCommand(watchCmd)
}
