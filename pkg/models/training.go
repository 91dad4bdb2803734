package models

import (
	"encoding/json"

	"gopkg.in/yaml.v3"
)

// Training labels as they appear in labeled datasets
const (
	SentimentPOS = "POS"
	SentimentNEU = "NEU"
	SentimentNEG = "NEG"
)

// TrainingExample is one labeled headline. Either Headline or Text may carry the
// sentence; Headline wins when both are set.
type TrainingExample struct {
	Headline  string         `json:"headline,omitempty" yaml:"headline,omitempty"`
	Text      string         `json:"text,omitempty" yaml:"text,omitempty"`
	Sentiment SentimentLabel `json:"sentiment" yaml:"sentiment"`
}

// SentimentLabel is a raw dataset label. Values that are not strings decode to
// an empty label, which NormalizedSentiment turns into NEU.
type SentimentLabel string

func (l *SentimentLabel) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		*l = ""
		return nil
	}
	*l = SentimentLabel(s)
	return nil
}

func (l *SentimentLabel) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind != yaml.ScalarNode {
		*l = ""
		return nil
	}
	*l = SentimentLabel(node.Value)
	return nil
}

// Content returns the sentence to classify
func (e TrainingExample) Content() string {
	if e.Headline != "" {
		return e.Headline
	}
	return e.Text
}

// NormalizedSentiment maps missing or unknown labels to NEU
func (e TrainingExample) NormalizedSentiment() string {
	switch s := string(e.Sentiment); s {
	case SentimentPOS, SentimentNEU, SentimentNEG:
		return s
	default:
		return SentimentNEU
	}
}

// InferenceLabel translates a training label to the matching inference label
func InferenceLabel(sentiment string) string {
	switch sentiment {
	case SentimentPOS:
		return LabelPositive
	case SentimentNEG:
		return LabelNegative
	default:
		return LabelNeutral
	}
}

// EvaluationMetrics is the result of evaluating a classifier on a dataset
type EvaluationMetrics struct {
	Accuracy float64 `json:"accuracy"`
	F1Score  float64 `json:"f1_score"`
	Samples  int     `json:"samples"`
}
