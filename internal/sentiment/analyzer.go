package sentiment

import (
	"fmt"
	"math"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// Options configures an Analyzer
type Options struct {
	// MaxLength is the token budget per input; longer inputs are truncated
	MaxLength int
}

// Analyzer classifies headline sentiment with a loaded model.
// It is read-only after construction and safe for concurrent use.
type Analyzer struct {
	model     *Model
	maxLength int
	source    string
	modelID   string
}

// NewAnalyzer wraps an in-memory model
func NewAnalyzer(model *Model, opts Options, source string) *Analyzer {
	maxLength := opts.MaxLength
	if maxLength <= 0 {
		maxLength = DefaultMaxLength
	}

	modelID, err := model.Fingerprint()
	if err != nil {
		logger.Warn("failed to fingerprint model, using its source as id",
			zap.String("source", source),
			zap.Error(err),
		)
		modelID = source
	}

	return &Analyzer{model: model, maxLength: maxLength, source: source, modelID: modelID}
}

// LoadAnalyzer loads the model in dir. When dir does not exist the built-in
// base model is used instead. A directory that exists but cannot be loaded
// is an error.
func LoadAnalyzer(dir string, opts Options) (*Analyzer, error) {
	if !ModelDirExists(dir) {
		logger.Warn("model directory not found, using built-in base model",
			zap.String("path", dir),
		)
		return NewAnalyzer(NewBaseModel(), opts, "base"), nil
	}

	model, err := LoadModel(dir)
	if err != nil {
		return nil, fmt.Errorf("failed to load model from %s: %w", dir, err)
	}

	logger.Info("sentiment model loaded",
		zap.String("path", dir),
		zap.Int("vocab_size", model.Config.VocabSize),
		zap.Int("num_labels", model.Config.NumLabels),
	)

	return NewAnalyzer(model, opts, dir), nil
}

// Source returns where the model came from: "base" or the model directory
func (a *Analyzer) Source() string {
	return a.source
}

// ModelID returns the model fingerprint. Cached predictions are scoped by it.
func (a *Analyzer) ModelID() string {
	return a.modelID
}

// Predict returns the most probable label of text and its probability
// rounded to 4 decimals
func (a *Analyzer) Predict(text string) (models.Prediction, error) {
	enc := a.model.Tokenizer.Encode(text, a.maxLength, false)
	probs := Softmax(a.model.Classifier.Forward(enc))

	best := argmax(probs)
	if math.IsNaN(probs[best]) || math.IsInf(probs[best], 0) {
		return models.Prediction{}, fmt.Errorf("model produced non-finite probability")
	}

	return models.Prediction{
		Label: a.model.Config.LabelFor(best),
		Score: models.RoundScore(probs[best]),
	}, nil
}
