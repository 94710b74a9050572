package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"du-browser/internal/config"
)

var Version = "dev"

// exitError carries a process exit code without an error message.
type exitError struct {
	code int
}

func (e *exitError) Error() string {
	return fmt.Sprintf("exit status %d", e.code)
}

type globalOptions struct {
	configPath string
	debug      bool
}

func newRootCmd() *cobra.Command {
	global := &globalOptions{}
	serve := &serveOptions{}

	root := &cobra.Command{
		Use:           "du-browser [report]",
		Short:         "Browse a precomputed disk usage report in a web browser",
		Version:       Version,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runServe(cmd, global, serve, args[0])
		},
	}

	root.PersistentFlags().StringVarP(&global.configPath, "config", "c", "du-browser.yaml", "Config file path")
	root.PersistentFlags().BoolVar(&global.debug, "debug", false, "Enable debug logging")
	addServeFlags(root, serve)

	root.AddCommand(
		newServeCmd(global),
		newCheckCmd(global),
		newGenerateCmd(global),
		newCompareCmd(global),
	)

	return root
}

func loadConfig(global *globalOptions) (*config.Config, *slog.Logger, error) {
	cfg, err := config.LoadConfig(global.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load config: %w", err)
	}

	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return nil, nil, err
	}
	if global.debug {
		level = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return cfg, logger, nil
}

func main() {
	err := newRootCmd().Execute()
	if err == nil {
		return
	}

	var exit *exitError
	if errors.As(err, &exit) {
		os.Exit(exit.code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(1)
}
