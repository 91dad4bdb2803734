package sentiment

import (
	"math/rand"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// DefaultTrainMaxLength is the padded sequence length used for training
const DefaultTrainMaxLength = 128

// Sample is one encoded training example
type Sample struct {
	Text     string
	Encoding Encoding
	Label    int
}

// Dataset holds encoded training examples
type Dataset struct {
	samples []Sample
}

// NewDataset encodes examples with tok. Labels are resolved through
// label2id so the ids always agree with the model's id to label table;
// missing or invalid sentiments count as neutral.
func NewDataset(examples []models.TrainingExample, tok *Tokenizer, label2id map[string]int, maxLength int) *Dataset {
	if maxLength <= 0 {
		maxLength = DefaultTrainMaxLength
	}

	ds := &Dataset{samples: make([]Sample, 0, len(examples))}
	for _, ex := range examples {
		text := ex.Content()
		label, ok := label2id[models.InferenceLabel(ex.NormalizedSentiment())]
		if !ok {
			label = label2id[models.LabelNeutral]
		}
		ds.samples = append(ds.samples, Sample{
			Text:     text,
			Encoding: tok.Encode(text, maxLength, true),
			Label:    label,
		})
	}
	return ds
}

// Len returns the number of samples
func (d *Dataset) Len() int {
	return len(d.samples)
}

// At returns sample i
func (d *Dataset) At(i int) Sample {
	return d.samples[i]
}

// DataLoader yields batches over a dataset, optionally reshuffled every epoch
type DataLoader struct {
	dataset   *Dataset
	batchSize int
	shuffle   bool
	rng       *rand.Rand
}

// NewDataLoader creates a loader. The seed makes shuffling reproducible.
func NewDataLoader(ds *Dataset, batchSize int, shuffle bool, seed int64) *DataLoader {
	if batchSize < 1 {
		batchSize = 1
	}
	return &DataLoader{
		dataset:   ds,
		batchSize: batchSize,
		shuffle:   shuffle,
		rng:       rand.New(rand.NewSource(seed)),
	}
}

// Len returns the number of batches per epoch
func (l *DataLoader) Len() int {
	return (l.dataset.Len() + l.batchSize - 1) / l.batchSize
}

// Batches returns one epoch of batches. The last batch may be short.
func (l *DataLoader) Batches() [][]Sample {
	order := make([]int, l.dataset.Len())
	for i := range order {
		order[i] = i
	}
	if l.shuffle {
		l.rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	batches := make([][]Sample, 0, l.Len())
	for start := 0; start < len(order); start += l.batchSize {
		end := min(start+l.batchSize, len(order))
		batch := make([]Sample, 0, end-start)
		for _, idx := range order[start:end] {
			batch = append(batch, l.dataset.samples[idx])
		}
		batches = append(batches, batch)
	}
	return batches
}
