package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/internal/sentiment"
	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// demoRepeat is how many times the demo headlines are repeated for smoke training
const demoRepeat = 10

func newTrainCmd(a *app) *cobra.Command {
	var (
		dataPath  string
		baseModel string
		output    string
		epochs    int
		batchSize int
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Fine-tune the classifier and save a model directory",
		Long: `Fine-tune the classifier on labeled headlines (.jsonl, .json or .yaml).

Without --data the five demo headlines are repeated ten times and trained for
one epoch, which is a smoke test of the whole pipeline.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			tc := a.cfg.Training

			if !cmd.Flags().Changed("epochs") {
				epochs = tc.Epochs
				if dataPath == "" {
					epochs = 1
				}
			}
			if !cmd.Flags().Changed("batch-size") {
				batchSize = tc.BatchSize
			}
			if epochs < 1 || batchSize < 1 {
				return fmt.Errorf("epochs and batch size must be at least 1")
			}

			var examples []models.TrainingExample
			if dataPath == "" {
				examples = sentiment.Repeat(sentiment.DemoExamples(), demoRepeat)
			} else {
				loaded, err := sentiment.LoadExamples(dataPath)
				if err != nil {
					return err
				}
				examples = loaded
			}
			if output == "" {
				output = tc.OutputDir
			}

			trainer, err := sentiment.NewTrainer(sentiment.TrainerOptions{
				BaseModelDir: baseModel,
				LearningRate: tc.LearningRate,
				WeightDecay:  tc.WeightDecay,
			})
			if err != nil {
				return err
			}

			ds := sentiment.NewDataset(examples, trainer.Tokenizer(), trainer.Label2ID(), tc.MaxLength)
			loader := sentiment.NewDataLoader(ds, batchSize, true, tc.Seed)

			losses, err := trainer.Train(cmd.Context(), loader, epochs)
			if err != nil {
				return fmt.Errorf("training failed: %w", err)
			}

			eval, err := trainer.Evaluate(sentiment.NewDataLoader(ds, batchSize, false, tc.Seed))
			if err != nil {
				return fmt.Errorf("evaluation failed: %w", err)
			}

			if err := trainer.SaveModel(output); err != nil {
				return err
			}

			logger.Info("model trained",
				zap.Int("examples", ds.Len()),
				zap.Float64s("epoch_loss", losses),
				zap.Float64("accuracy", eval.Accuracy),
				zap.Float64("f1", eval.F1Score),
				zap.String("output", output),
			)

			fmt.Fprintf(cmd.OutOrStdout(), "epochs=%d batch_size=%d accuracy=%.4f f1=%.4f samples=%d saved=%s\n",
				epochs, batchSize, eval.Accuracy, eval.F1Score, eval.Samples, output)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "labeled examples file")
	cmd.Flags().StringVar(&baseModel, "base", "", "model directory to fine-tune (default: built-in base model)")
	cmd.Flags().StringVarP(&output, "output", "o", "", "output directory (default from TRAIN_OUTPUT_DIR)")
	cmd.Flags().IntVar(&epochs, "epochs", 0, "training epochs (default from TRAIN_EPOCHS, 1 for the demo set)")
	cmd.Flags().IntVar(&batchSize, "batch-size", 0, "batch size (default from TRAIN_BATCH_SIZE)")
	return cmd
}
