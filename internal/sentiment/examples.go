package sentiment

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// DemoExamples returns the five labeled headlines used for smoke training
func DemoExamples() []models.TrainingExample {
	return []models.TrainingExample{
		{Headline: "Profits soar for MSME sector", Sentiment: models.SentimentPOS},
		{Headline: "Severe losses reported due to inflation", Sentiment: models.SentimentNEG},
		{Headline: "Market remains stable today", Sentiment: models.SentimentNEU},
		{Headline: "Government announces new loan scheme", Sentiment: models.SentimentPOS},
		{Headline: "Restrictions imposed on exports", Sentiment: models.SentimentNEG},
	}
}

// Repeat returns examples concatenated n times
func Repeat(examples []models.TrainingExample, n int) []models.TrainingExample {
	out := make([]models.TrainingExample, 0, len(examples)*n)
	for i := 0; i < n; i++ {
		out = append(out, examples...)
	}
	return out
}

// LoadExamples reads labeled examples from a .jsonl, .json (array) or
// .yaml/.yml (list) file
func LoadExamples(path string) ([]models.TrainingExample, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read training data: %w", err)
	}

	var examples []models.TrainingExample
	switch ext := strings.ToLower(filepath.Ext(path)); ext {
	case ".jsonl":
		examples, err = parseJSONL(raw)
	case ".json":
		err = json.Unmarshal(raw, &examples)
	case ".yaml", ".yml":
		err = yaml.Unmarshal(raw, &examples)
	default:
		return nil, fmt.Errorf("unsupported training data format %q", ext)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}

	return examples, nil
}

func parseJSONL(raw []byte) ([]models.TrainingExample, error) {
	var examples []models.TrainingExample

	scanner := bufio.NewScanner(bytes.NewReader(raw))
	scanner.Buffer(make([]byte, 0, 64*1024), 1<<20)
	for lineNo := 1; scanner.Scan(); lineNo++ {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var ex models.TrainingExample
		if err := json.Unmarshal(line, &ex); err != nil {
			return nil, fmt.Errorf("line %d: %w", lineNo, err)
		}
		examples = append(examples, ex)
	}

	return examples, scanner.Err()
}
