package sentiment

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// ErrEmptyDataset is returned when training or evaluating on no samples
var ErrEmptyDataset = errors.New("empty dataset")

// TrainerOptions configures a Trainer
type TrainerOptions struct {
	// BaseModelDir is fine-tuned when set; otherwise the built-in base model is
	BaseModelDir string
	LearningRate float64
	WeightDecay  float64
}

// Trainer fine-tunes a classifier with AdamW and cross-entropy loss
type Trainer struct {
	model *Model
	opt   *adamW
}

// NewTrainer loads the base model and sets up the optimizer
func NewTrainer(opts TrainerOptions) (*Trainer, error) {
	if opts.LearningRate <= 0 {
		opts.LearningRate = 0.05
	}

	model := NewBaseModel()
	if opts.BaseModelDir != "" {
		loaded, err := LoadModel(opts.BaseModelDir)
		if err != nil {
			return nil, fmt.Errorf("failed to load base model: %w", err)
		}
		model = loaded
	}

	logger.Info("trainer initialized",
		zap.String("base_model", opts.BaseModelDir),
		zap.Float64("learning_rate", opts.LearningRate),
		zap.Float64("weight_decay", opts.WeightDecay),
	)

	return &Trainer{
		model: model,
		opt:   newAdamW(opts.LearningRate, opts.WeightDecay, model.Classifier.params()),
	}, nil
}

// Tokenizer returns the tokenizer used to build datasets
func (t *Trainer) Tokenizer() *Tokenizer {
	return t.model.Tokenizer
}

// Label2ID returns the label table datasets must encode against
func (t *Trainer) Label2ID() map[string]int {
	return t.model.Config.Label2ID
}

// Model returns the model being trained
func (t *Trainer) Model() *Model {
	return t.model
}

// Train runs epochs over loader with one optimizer step per batch and
// returns the average loss of each epoch
func (t *Trainer) Train(ctx context.Context, loader *DataLoader, epochs int) ([]float64, error) {
	if loader.Len() == 0 {
		return nil, ErrEmptyDataset
	}

	clf := t.model.Classifier
	grads := clf.zeroGrads()
	losses := make([]float64, 0, epochs)

	for epoch := 1; epoch <= epochs; epoch++ {
		start := time.Now()
		logger.Info("epoch started", zap.Int("epoch", epoch), zap.Int("epochs", epochs))

		var total float64
		batches := loader.Batches()
		for _, batch := range batches {
			if err := ctx.Err(); err != nil {
				return losses, err
			}

			grads.reset()
			total += clf.backward(batch, grads)
			t.opt.step(clf.params(), grads.params())
		}

		avg := total / float64(len(batches))
		losses = append(losses, avg)

		logger.Info("epoch completed",
			zap.Int("epoch", epoch),
			zap.Float64("avg_loss", avg),
			zap.Duration("duration", time.Since(start)),
		)
	}

	return losses, nil
}

// Evaluate predicts every sample without updating weights and returns
// accuracy and weighted F1
func (t *Trainer) Evaluate(loader *DataLoader) (models.EvaluationMetrics, error) {
	var truth, pred []int
	for _, batch := range loader.Batches() {
		for _, s := range batch {
			truth = append(truth, s.Label)
			pred = append(pred, argmax(t.model.Classifier.Forward(s.Encoding)))
		}
	}
	if len(truth) == 0 {
		return models.EvaluationMetrics{}, ErrEmptyDataset
	}

	return models.EvaluationMetrics{
		Accuracy: Accuracy(truth, pred),
		F1Score:  WeightedF1(truth, pred),
		Samples:  len(truth),
	}, nil
}

// SaveModel writes the trained weights, tokenizer and config to dir
func (t *Trainer) SaveModel(dir string) error {
	logger.Info("saving model", zap.String("path", dir))
	if err := t.model.Save(dir); err != nil {
		return err
	}
	logger.Info("model saved successfully", zap.String("path", dir))
	return nil
}

// gradients mirrors the classifier parameters
type gradients struct {
	embeddings []float64
	weights    []float64
	bias       []float64
}

func (g *gradients) reset() {
	clear(g.embeddings)
	clear(g.weights)
	clear(g.bias)
}

func (g *gradients) params() [][]float64 {
	return [][]float64{g.embeddings, g.weights, g.bias}
}

func (c *Classifier) params() [][]float64 {
	return [][]float64{c.Embeddings, c.Weights, c.Bias}
}

func (c *Classifier) zeroGrads() *gradients {
	return &gradients{
		embeddings: make([]float64, len(c.Embeddings)),
		weights:    make([]float64, len(c.Weights)),
		bias:       make([]float64, len(c.Bias)),
	}
}

// backward accumulates batch-averaged cross-entropy gradients into g and
// returns the mean loss of the batch
func (c *Classifier) backward(batch []Sample, g *gradients) float64 {
	scale := 1 / float64(len(batch))
	var loss float64

	for _, s := range batch {
		pooled, count := c.Pool(s.Encoding)
		probs := Softmax(c.Logits(pooled))
		loss -= math.Log(math.Max(probs[s.Label], 1e-12))

		// dL/dlogits = softmax - onehot
		dLogits := probs
		dLogits[s.Label] -= 1

		dPooled := make([]float64, c.HiddenSize)
		for k, dl := range dLogits {
			dl *= scale
			g.bias[k] += dl
			w := c.Weights[k*c.HiddenSize : (k+1)*c.HiddenSize]
			gw := g.weights[k*c.HiddenSize : (k+1)*c.HiddenSize]
			for d := range w {
				gw[d] += dl * pooled[d]
				dPooled[d] += dl * w[d]
			}
		}

		if count == 0 {
			continue
		}
		for i, id := range s.Encoding.InputIDs {
			if s.Encoding.AttentionMask[i] == 0 {
				continue
			}
			if id < 0 || id >= c.VocabSize {
				id = UNKTokenID
			}
			ge := g.embeddings[id*c.HiddenSize : (id+1)*c.HiddenSize]
			for d, v := range dPooled {
				ge[d] += v / float64(count)
			}
		}
	}

	return loss * scale
}

// adamW implements Adam with decoupled weight decay
type adamW struct {
	lr, beta1, beta2, eps, weightDecay float64

	t    int
	m, v [][]float64
}

func newAdamW(lr, weightDecay float64, params [][]float64) *adamW {
	o := &adamW{lr: lr, beta1: 0.9, beta2: 0.999, eps: 1e-8, weightDecay: weightDecay}
	for _, p := range params {
		o.m = append(o.m, make([]float64, len(p)))
		o.v = append(o.v, make([]float64, len(p)))
	}
	return o
}

func (o *adamW) step(params, grads [][]float64) {
	o.t++
	bc1 := 1 - math.Pow(o.beta1, float64(o.t))
	bc2 := 1 - math.Pow(o.beta2, float64(o.t))

	for i, p := range params {
		g, m, v := grads[i], o.m[i], o.v[i]
		for j := range p {
			p[j] -= o.lr * o.weightDecay * p[j]
			m[j] = o.beta1*m[j] + (1-o.beta1)*g[j]
			v[j] = o.beta2*v[j] + (1-o.beta2)*g[j]*g[j]
			p[j] -= o.lr * (m[j] / bc1) / (math.Sqrt(v[j]/bc2) + o.eps)
		}
	}
}
