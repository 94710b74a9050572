package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"runtime"

	"github.com/spf13/cobra"

	"du-browser/internal/progress"
	"du-browser/internal/walker"
)

func newGenerateCmd(global *globalOptions) *cobra.Command {
	var workers int

	cmd := &cobra.Command{
		Use:   "generate <directory> [output]",
		Short: "Scan a directory tree and write a disk usage report",
		Long: "Scan a directory tree and write a disk usage report. The report is\n" +
			"written to stdout unless an output file is given.",
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, logger, err := loadConfig(global)
			if err != nil {
				return err
			}

			logger.Info("Scanning directory", "directory", args[0], "workers", workers)

			result, err := walker.Walk(args[0], cfg.Exclude, workers)
			if err != nil {
				return err
			}

			for _, walkErr := range result.Errors {
				logger.Warn("Skipped path", "error", walkErr)
			}

			var out io.Writer = cmd.OutOrStdout()
			outputPath := "-"
			if len(args) == 2 {
				outputPath = args[1]
				if err := os.MkdirAll(filepath.Dir(outputPath), 0755); err != nil {
					return fmt.Errorf("failed to create output directory: %w", err)
				}
				f, err := os.Create(outputPath)
				if err != nil {
					return fmt.Errorf("failed to create report: %w", err)
				}
				defer f.Close()
				out = f
			}

			bar := progress.New(int64(len(result.Entries)), progress.Records)
			bar.SetLabel("writing")
			if err := walker.WriteReport(out, result, bar); err != nil {
				return err
			}
			bar.Finish()

			if f, ok := out.(*os.File); ok && outputPath != "-" {
				if err := f.Close(); err != nil {
					return fmt.Errorf("failed to close report: %w", err)
				}
			}

			logger.Info("Report generated",
				"root", result.Root,
				"entries", len(result.Entries),
				"skipped", len(result.Errors),
				"output", outputPath,
			)
			return nil
		},
	}

	cmd.Flags().IntVarP(&workers, "workers", "w", runtime.NumCPU()*2, "Number of worker goroutines")
	return cmd
}
