package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"du-browser/internal/compare"
	"du-browser/internal/report"
	"du-browser/internal/resolver"
)

func newCompareCmd(global *globalOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "compare <old-report> <new-report> [path]",
		Short: "Compare a path's children between two reports",
		Long: "Compare a path's children between two reports. The path defaults to\n" +
			"the old report's root. Exits with status 1 when changes are found.",
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			_, logger, err := loadConfig(global)
			if err != nil {
				return err
			}

			resolvers := make([]*resolver.Resolver, 0, 2)
			var defaultPath string
			for _, p := range args[:2] {
				store, err := report.Open(p)
				if err != nil {
					return fmt.Errorf("failed to open report: %w", err)
				}
				if defaultPath == "" {
					defaultPath = store.DefaultPath()
				}
				r, err := resolver.New(store, resolver.Options{CacheSize: 1, Logger: logger})
				if err != nil {
					return err
				}
				resolvers = append(resolvers, r)
			}

			path := defaultPath
			if len(args) == 3 {
				path = args[2]
			}

			result, err := compare.Compare(resolvers[0], resolvers[1], path)
			if err != nil {
				return err
			}

			fmt.Fprintln(cmd.OutOrStdout(), compare.FormatReport(result))

			if result.HasChanges() {
				return &exitError{code: 1}
			}
			return nil
		},
	}
}
