package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/selivandex/finvani-sentiment/internal/sentiment"
)

func newSynthCmd() *cobra.Command {
	var (
		count  int
		output string
		seed   int64
	)

	cmd := &cobra.Command{
		Use:   "synth",
		Short: "Generate synthetic finance headlines as a JSON array",
		RunE: func(cmd *cobra.Command, args []string) error {
			if count < 1 {
				return fmt.Errorf("count must be at least 1")
			}
			if !cmd.Flags().Changed("seed") {
				seed = time.Now().UnixNano()
			}

			headlines := sentiment.NewSyntheticGenerator(seed).Generate(count)

			var w io.Writer = cmd.OutOrStdout()
			if output != "" {
				f, err := os.Create(output)
				if err != nil {
					return fmt.Errorf("failed to create %s: %w", output, err)
				}
				defer f.Close()
				w = f
			}

			enc := json.NewEncoder(w)
			enc.SetIndent("", "  ")
			enc.SetEscapeHTML(false)
			if err := enc.Encode(headlines); err != nil {
				return fmt.Errorf("failed to write headlines: %w", err)
			}

			if output != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Generated %d synthetic headlines in %s\n", len(headlines), output)
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&count, "count", "n", 20, "number of headlines")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	cmd.Flags().Int64Var(&seed, "seed", 0, "random seed (default: time based)")
	return cmd
}
