package main

import (
	"encoding/json"

	"github.com/spf13/cobra"

	"github.com/selivandex/finvani-sentiment/internal/sentiment"
)

type predictResult struct {
	Text  string  `json:"text"`
	Label string  `json:"label"`
	Score float64 `json:"score"`
}

func newPredictCmd(a *app) *cobra.Command {
	var modelPath string

	cmd := &cobra.Command{
		Use:   "predict TEXT...",
		Short: "Classify one or more headlines",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if modelPath == "" {
				modelPath = a.cfg.Model.Path
			}

			analyzer, err := sentiment.LoadAnalyzer(modelPath, sentiment.Options{MaxLength: a.cfg.Model.MaxLength})
			if err != nil {
				return err
			}

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetEscapeHTML(false)
			for _, text := range args {
				p, err := analyzer.Predict(text)
				if err != nil {
					return err
				}
				if err := enc.Encode(predictResult{Text: text, Label: p.Label, Score: p.Score}); err != nil {
					return err
				}
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&modelPath, "model", "", "model directory (default from MODEL_PATH)")
	return cmd
}
