package main

import (
	"fmt"
	"log/slog"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/networkteam/pagecheck"
	"github.com/networkteam/pagecheck/checkpoint"
)

func newRunCmd() *cobra.Command {
	var (
		planPath   string
		targetURL  string
		outputDir  string
		engineName string
		viewport   string
		headless   bool
	)

	cmd := &cobra.Command{
		Use:   "run",
		Short: "Execute a verification plan against a target page",
		Long: `Execute a verification plan against a target page.

Without --plan the built-in default plan is used, which verifies the
standard menu / start / intro / gameplay sequence of a canvas game.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				plan *checkpoint.Plan
				err  error
			)
			if planPath != "" {
				plan, err = checkpoint.Load(planPath)
				if err != nil {
					return err
				}
			} else {
				plan = checkpoint.DefaultPlan()
			}

			if targetURL != "" {
				plan.TargetURL = targetURL
			}
			if outputDir != "" {
				plan.OutputDir = outputDir
			}
			if engineName != "" {
				plan.Engine = engineName
			}
			if cmd.Flags().Changed("headless") {
				plan.Headless = &headless
			}
			if viewport != "" {
				plan.Viewport, err = parseViewport(viewport)
				if err != nil {
					return err
				}
			}

			ctx, cancel := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer cancel()

			result, err := pagecheck.Run(ctx, plan, pagecheck.Options{
				Logger: slog.Default(),
			})
			if err != nil {
				return err
			}
			if result.Err() != nil {
				return fmt.Errorf("verification failed: %w", result.Err())
			}
			if !result.OK() {
				return fmt.Errorf("verification finished with degraded checkpoints: %v", result.Counts())
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&planPath, "plan", "p", "", "path to a YAML verification plan (default: built-in plan)")
	cmd.Flags().StringVarP(&targetURL, "url", "u", "", "target URL, overrides the plan")
	cmd.Flags().StringVarP(&outputDir, "out", "o", "", "output directory for screenshots and result.json, overrides the plan")
	cmd.Flags().StringVarP(&engineName, "engine", "e", "", "browser engine: playwright or chromedp, overrides the plan")
	cmd.Flags().StringVar(&viewport, "viewport", "", `viewport size as WIDTHxHEIGHT, e.g. "1280x720", overrides the plan`)
	cmd.Flags().BoolVar(&headless, "headless", true, "run the browser headless")

	return cmd
}

func parseViewport(s string) (checkpoint.Viewport, error) {
	parts := strings.SplitN(s, "x", 2)
	if len(parts) != 2 {
		return checkpoint.Viewport{}, fmt.Errorf("invalid viewport %q, expected WIDTHxHEIGHT", s)
	}
	width, err := strconv.Atoi(parts[0])
	if err != nil || width <= 0 {
		return checkpoint.Viewport{}, fmt.Errorf("invalid viewport width %q", parts[0])
	}
	height, err := strconv.Atoi(parts[1])
	if err != nil || height <= 0 {
		return checkpoint.Viewport{}, fmt.Errorf("invalid viewport height %q", parts[1])
	}
	return checkpoint.Viewport{Width: width, Height: height}, nil
}
