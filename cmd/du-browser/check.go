package main

import (
	"fmt"
	"io"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"du-browser/internal/hash"
	"du-browser/internal/progress"
	"du-browser/internal/report"
)

const maxReportedMalformed = 10

type checkSummary struct {
	Lines     int
	Entries   int
	Blank     int
	Malformed []*report.MalformedLineError
}

func newCheckCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "check <report>",
		Short: "Scan a whole report and count valid and malformed lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if _, _, err := loadConfig(global); err != nil {
				return err
			}

			store, err := report.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open report: %w", err)
			}

			info, err := os.Stat(args[0])
			if err != nil {
				return fmt.Errorf("failed to stat report: %w", err)
			}

			bar := progress.New(info.Size(), progress.Bytes)
			bar.SetLabel("scanning")
			summary, err := checkReport(store, bar)
			if err != nil {
				return err
			}
			bar.Finish()

			digest, err := hash.HashFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to hash report: %w", err)
			}

			printCheckSummary(cmd.OutOrStdout(), store, info.Size(), digest, summary)
			return nil
		},
	}
}

func checkReport(store *report.Store, bar *progress.Bar) (*checkSummary, error) {
	summary := &checkSummary{}

	stats, err := store.ScanWith("", report.ScanHandler{
		Malformed: func(m *report.MalformedLineError) {
			summary.Malformed = append(summary.Malformed, m)
		},
		Read: bar.Add,
	})
	if err != nil {
		return nil, err
	}

	summary.Lines = stats.Lines
	summary.Entries = stats.Matched
	summary.Blank = stats.Blank
	return summary, nil
}

func printCheckSummary(w io.Writer, store *report.Store, size int64, digest string, s *checkSummary) {
	fmt.Fprintf(w, "Report:       %s (%s)\n", store.Path(), humanize.Bytes(uint64(size)))
	fmt.Fprintf(w, "Digest:       %s\n", digest)
	fmt.Fprintf(w, "Default path: %s\n", store.DefaultPath())
	fmt.Fprintf(w, "Lines:        %s\n", humanize.Comma(int64(s.Lines)))
	fmt.Fprintf(w, "Entries:      %s\n", humanize.Comma(int64(s.Entries)))
	fmt.Fprintf(w, "Blank:        %s\n", humanize.Comma(int64(s.Blank)))
	fmt.Fprintf(w, "Malformed:    %s\n", humanize.Comma(int64(len(s.Malformed))))

	for i, m := range s.Malformed {
		if i == maxReportedMalformed {
			fmt.Fprintf(w, "  ... and %d more\n", len(s.Malformed)-maxReportedMalformed)
			break
		}
		fmt.Fprintf(w, "  %v\n", m)
	}
}
