package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// newSerialCmd runs the same engine as "run" but pinned to one worker and
// one statement per batch — useful for reproducing an ordering-sensitive
// failure without the concurrency the parallel lanes normally use.
func newSerialCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serial",
		Short: "Import statements one at a time, in strict source order",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd)
			if err != nil {
				return err
			}
			cfg.WorkersNumber = 1
			cfg.BatchSize = 1
			logger := slog.New(slog.NewJSONHandler(os.Stderr, nil))
			return runImport(cmd.Context(), cfg, logger)
		},
	}
}
