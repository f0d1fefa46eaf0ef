package main

import (
	"log/slog"
	"os"
	"time"

	"github.com/lmittmann/tint"
	"github.com/spf13/cobra"
)

func newRootCmd() *cobra.Command {
	var verbose bool

	cmd := &cobra.Command{
		Use:           "pagecheck",
		Short:         "UI-driven verification harness for canvas-based web applications",
		SilenceUsage:  true,
		SilenceErrors: false,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(tint.NewHandler(os.Stderr, &tint.Options{
				Level:      level,
				TimeFormat: time.TimeOnly,
			})))
		},
	}

	cmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	cmd.AddCommand(newRunCmd())
	cmd.AddCommand(newServeCmd())

	return cmd
}
