package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/selivandex/finvani-sentiment/internal/adapters/config"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// app carries state shared by subcommands
type app struct {
	cfg      *config.Config
	logLevel string
}

func newRootCmd() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "finvanictl",
		Short: "Finvani sentiment operator CLI",
		Long: `finvanictl runs the offline jobs of the Finvani sentiment service.

Example usage:
  finvanictl ingest                      # fetch every query/language feed once
  finvanictl train --data labeled.jsonl  # fine-tune and save a model directory
  finvanictl predict "RBI cuts repo rate"
  finvanictl synth -n 20 -o synth.json   # write synthetic headlines
  finvanictl migrate down                # roll back the last mirror migration`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.init()
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logger.Sync()
		},
	}

	root.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level (default from LOG_LEVEL)")

	root.AddCommand(
		newIngestCmd(a),
		newTrainCmd(a),
		newPredictCmd(a),
		newSynthCmd(),
		newMigrateCmd(a),
	)
	return root
}

func (a *app) init() error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	level := cfg.Logging.Level
	if a.logLevel != "" {
		level = a.logLevel
	}
	if err := logger.Init(level, cfg.Logging.File); err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	a.cfg = cfg
	return nil
}
