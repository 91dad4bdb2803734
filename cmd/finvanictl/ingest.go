package main

import (
	"encoding/json"
	"errors"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/adapters/news"
	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
)

// populateQueries is the broader query set of a manual full population
var populateQueries = []string{"MSME", "SME India", "Business Loan", "Economy India", "Finance Ministry", "RBI"}

func newIngestCmd(a *app) *cobra.Command {
	var (
		queries   []string
		languages []string
		dataDir   string
	)

	cmd := &cobra.Command{
		Use:   "ingest",
		Short: "Fetch every query/language feed once and append new articles",
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(languages) == 0 {
				languages = a.cfg.News.Languages
			}
			if dataDir == "" {
				dataDir = a.cfg.News.DataDir
			}

			in := ingestion.New(
				news.NewGoogleNewsProvider("", a.cfg.News.FetchTimeout),
				storage.NewDailyStore(dataDir),
				ingestion.Options{
					Queries:           queries,
					Languages:         languages,
					Concurrency:       a.cfg.News.FetchConcurrency,
					RequestsPerSecond: a.cfg.News.RequestsPerSecond,
				},
				nil, nil,
			)

			report, err := in.Run(cmd.Context())
			if err != nil && !errors.Is(err, ingestion.ErrRunInProgress) {
				return err
			}

			logger.Info("ingestion complete",
				zap.Int("new", report.New),
				zap.Int("failed_pairs", len(report.FailedPairs)),
			)

			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(report)
		},
	}

	cmd.Flags().StringSliceVar(&queries, "queries", populateQueries, "search queries")
	cmd.Flags().StringSliceVar(&languages, "languages", nil, "language codes (default from NEWS_LANGUAGES)")
	cmd.Flags().StringVar(&dataDir, "data-dir", "", "data directory (default from NEWS_DATA_DIR)")
	return cmd
}
