package sentiment

import (
	"errors"
	"fmt"
	"math"
	"math/rand"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// Base model dimensions
const (
	DefaultVocabSize  = 32768
	DefaultHiddenSize = 16
	DefaultMaxLength  = 512

	// hidden channels 0 and 1 carry the lexicon's positive and negative signal
	positiveChannel = 0
	negativeChannel = 1

	lexiconHeadWeight  = 8.0
	lexiconCrossWeight = -4.0
	neutralBias        = 0.5
	initStdDev         = 0.02
)

// ErrInvalidModel is returned when model weights do not match the config
var ErrInvalidModel = errors.New("invalid model")

// ModelConfig is persisted as config.json
type ModelConfig struct {
	ModelType             string         `json:"model_type"`
	VocabSize             int            `json:"vocab_size"`
	HiddenSize            int            `json:"hidden_size"`
	NumLabels             int            `json:"num_labels"`
	MaxPositionEmbeddings int            `json:"max_position_embeddings"`
	ID2Label              map[int]string `json:"id2label"`
	Label2ID              map[string]int `json:"label2id"`
}

// DefaultID2Label is the id to label table of the base model
func DefaultID2Label() map[int]string {
	return map[int]string{
		0: models.LabelNegative,
		1: models.LabelNeutral,
		2: models.LabelPositive,
	}
}

// DefaultModelConfig returns the base model configuration
func DefaultModelConfig() ModelConfig {
	id2label := DefaultID2Label()
	return ModelConfig{
		ModelType:             "finvani-bow",
		VocabSize:             DefaultVocabSize,
		HiddenSize:            DefaultHiddenSize,
		NumLabels:             len(id2label),
		MaxPositionEmbeddings: DefaultMaxLength,
		ID2Label:              id2label,
		Label2ID:              invertLabels(id2label),
	}
}

// LabelFor returns the label of class id, UNKNOWN when the table lacks it
func (c ModelConfig) LabelFor(id int) string {
	if label, ok := c.ID2Label[id]; ok {
		return label
	}
	return models.LabelUnknown
}

func (c ModelConfig) validate() error {
	if c.VocabSize <= numSpecialTokens || c.HiddenSize < 2 || c.NumLabels < 2 {
		return fmt.Errorf("%w: vocab_size=%d hidden_size=%d num_labels=%d",
			ErrInvalidModel, c.VocabSize, c.HiddenSize, c.NumLabels)
	}
	return nil
}

func invertLabels(id2label map[int]string) map[string]int {
	out := make(map[string]int, len(id2label))
	for id, label := range id2label {
		out[label] = id
	}
	return out
}

// Classifier mean-pools token embeddings over the attention mask and
// projects the pooled vector to label logits.
type Classifier struct {
	VocabSize  int       `msgpack:"vocab_size"`
	HiddenSize int       `msgpack:"hidden_size"`
	NumLabels  int       `msgpack:"num_labels"`
	Embeddings []float64 `msgpack:"embeddings"` // VocabSize x HiddenSize
	Weights    []float64 `msgpack:"weights"`    // NumLabels x HiddenSize
	Bias       []float64 `msgpack:"bias"`       // NumLabels
}

// NewClassifier creates a classifier with small random embeddings
func NewClassifier(cfg ModelConfig, seed int64) *Classifier {
	c := &Classifier{
		VocabSize:  cfg.VocabSize,
		HiddenSize: cfg.HiddenSize,
		NumLabels:  cfg.NumLabels,
		Embeddings: make([]float64, cfg.VocabSize*cfg.HiddenSize),
		Weights:    make([]float64, cfg.NumLabels*cfg.HiddenSize),
		Bias:       make([]float64, cfg.NumLabels),
	}

	rng := rand.New(rand.NewSource(seed))
	for tok := numSpecialTokens; tok < c.VocabSize; tok++ {
		row := c.Embeddings[tok*c.HiddenSize : (tok+1)*c.HiddenSize]
		// lexicon channels start at zero so unknown words carry no polarity
		for d := negativeChannel + 1; d < c.HiddenSize; d++ {
			row[d] = rng.NormFloat64() * initStdDev
		}
	}
	for i := range c.Weights {
		c.Weights[i] = rng.NormFloat64() * initStdDev
	}

	return c
}

// NewBaseClassifier builds the pretrained base model: lexicon words load the
// positive/negative channels and the head reads them, with a bias towards
// NEUTRAL when no polar word is present.
func NewBaseClassifier(cfg ModelConfig, tok *Tokenizer, seed int64) *Classifier {
	c := NewClassifier(cfg, seed)

	for word, strength := range positiveWords() {
		c.Embeddings[tok.TokenID(normalize(word))*c.HiddenSize+positiveChannel] += strength
	}
	for word, strength := range negativeWords() {
		c.Embeddings[tok.TokenID(normalize(word))*c.HiddenSize+negativeChannel] += strength
	}

	pos, hasPos := cfg.Label2ID[models.LabelPositive]
	neg, hasNeg := cfg.Label2ID[models.LabelNegative]
	neu, hasNeu := cfg.Label2ID[models.LabelNeutral]
	if hasPos {
		c.Weights[pos*c.HiddenSize+positiveChannel] = lexiconHeadWeight
		c.Weights[pos*c.HiddenSize+negativeChannel] = lexiconCrossWeight
	}
	if hasNeg {
		c.Weights[neg*c.HiddenSize+negativeChannel] = lexiconHeadWeight
		c.Weights[neg*c.HiddenSize+positiveChannel] = lexiconCrossWeight
	}
	if hasNeu {
		c.Bias[neu] = neutralBias
	}

	return c
}

// Validate checks that weight shapes match the declared dimensions
func (c *Classifier) Validate(cfg ModelConfig) error {
	switch {
	case c.VocabSize != cfg.VocabSize || c.HiddenSize != cfg.HiddenSize || c.NumLabels != cfg.NumLabels:
		return fmt.Errorf("%w: weights are %dx%dx%d, config says %dx%dx%d", ErrInvalidModel,
			c.VocabSize, c.HiddenSize, c.NumLabels, cfg.VocabSize, cfg.HiddenSize, cfg.NumLabels)
	case len(c.Embeddings) != c.VocabSize*c.HiddenSize:
		return fmt.Errorf("%w: embeddings have %d values", ErrInvalidModel, len(c.Embeddings))
	case len(c.Weights) != c.NumLabels*c.HiddenSize:
		return fmt.Errorf("%w: head has %d weights", ErrInvalidModel, len(c.Weights))
	case len(c.Bias) != c.NumLabels:
		return fmt.Errorf("%w: head has %d biases", ErrInvalidModel, len(c.Bias))
	}
	return nil
}

// Pool returns the mean embedding of the attended tokens and their count
func (c *Classifier) Pool(enc Encoding) ([]float64, int) {
	pooled := make([]float64, c.HiddenSize)
	count := 0
	for i, id := range enc.InputIDs {
		if enc.AttentionMask[i] == 0 {
			continue
		}
		if id < 0 || id >= c.VocabSize {
			id = UNKTokenID
		}
		row := c.Embeddings[id*c.HiddenSize : (id+1)*c.HiddenSize]
		for d, v := range row {
			pooled[d] += v
		}
		count++
	}
	if count > 0 {
		for d := range pooled {
			pooled[d] /= float64(count)
		}
	}
	return pooled, count
}

// Logits projects a pooled vector to one score per label
func (c *Classifier) Logits(pooled []float64) []float64 {
	logits := make([]float64, c.NumLabels)
	for k := range logits {
		sum := c.Bias[k]
		w := c.Weights[k*c.HiddenSize : (k+1)*c.HiddenSize]
		for d, v := range pooled {
			sum += w[d] * v
		}
		logits[k] = sum
	}
	return logits
}

// Forward returns the logits for one encoded sequence
func (c *Classifier) Forward(enc Encoding) []float64 {
	pooled, _ := c.Pool(enc)
	return c.Logits(pooled)
}

// Softmax converts logits to probabilities
func Softmax(logits []float64) []float64 {
	maxLogit := math.Inf(-1)
	for _, l := range logits {
		maxLogit = math.Max(maxLogit, l)
	}

	probs := make([]float64, len(logits))
	var sum float64
	for i, l := range logits {
		probs[i] = math.Exp(l - maxLogit)
		sum += probs[i]
	}
	for i := range probs {
		probs[i] /= sum
	}
	return probs
}

// argmax returns the index of the largest value; ties go to the lowest index
func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
