package sentiment

import (
	"crypto/md5"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/vmihailenco/msgpack/v5"
)

// Model directory layout
const (
	ConfigFile          = "config.json"
	TokenizerConfigFile = "tokenizer_config.json"
	WeightsFile         = "model_state.bin"

	baseModelSeed = 42
)

// Model bundles everything needed to run or train the classifier
type Model struct {
	Config     ModelConfig
	Tokenizer  *Tokenizer
	Classifier *Classifier
}

// NewBaseModel returns the built-in lexicon-seeded model
func NewBaseModel() *Model {
	cfg := DefaultModelConfig()
	tok := NewTokenizer(cfg.VocabSize, cfg.MaxPositionEmbeddings, lexiconVocabulary())
	return &Model{
		Config:     cfg,
		Tokenizer:  tok,
		Classifier: NewBaseClassifier(cfg, tok, baseModelSeed),
	}
}

// ModelDirExists reports whether dir exists and is a directory
func ModelDirExists(dir string) bool {
	if dir == "" {
		return false
	}
	info, err := os.Stat(dir)
	return err == nil && info.IsDir()
}

// LoadModel reads a model directory written by SaveModel
func LoadModel(dir string) (*Model, error) {
	var cfg ModelConfig
	if err := readJSON(filepath.Join(dir, ConfigFile), &cfg); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	if len(cfg.Label2ID) == 0 {
		cfg.Label2ID = invertLabels(cfg.ID2Label)
	}

	var tokCfg TokenizerConfig
	if err := readJSON(filepath.Join(dir, TokenizerConfigFile), &tokCfg); err != nil {
		return nil, err
	}
	if tokCfg.VocabSize != cfg.VocabSize {
		return nil, fmt.Errorf("%w: tokenizer vocab %d does not match model vocab %d",
			ErrInvalidModel, tokCfg.VocabSize, cfg.VocabSize)
	}

	raw, err := os.ReadFile(filepath.Join(dir, WeightsFile))
	if err != nil {
		return nil, fmt.Errorf("failed to read weights: %w", err)
	}
	var clf Classifier
	if err := msgpack.Unmarshal(raw, &clf); err != nil {
		return nil, fmt.Errorf("failed to decode weights: %w", err)
	}
	if err := clf.Validate(cfg); err != nil {
		return nil, err
	}

	return &Model{
		Config:     cfg,
		Tokenizer:  NewTokenizerFromConfig(tokCfg),
		Classifier: &clf,
	}, nil
}

// Fingerprint identifies the weights, tokenizer and label table. A retrained
// model gets a different fingerprint.
func (m *Model) Fingerprint() (string, error) {
	h := md5.New()
	if err := msgpack.NewEncoder(h).Encode(m.Classifier); err != nil {
		return "", fmt.Errorf("failed to hash weights: %w", err)
	}
	if err := json.NewEncoder(h).Encode(m.Tokenizer.Config()); err != nil {
		return "", fmt.Errorf("failed to hash tokenizer config: %w", err)
	}
	if err := json.NewEncoder(h).Encode(m.Config); err != nil {
		return "", fmt.Errorf("failed to hash model config: %w", err)
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

// Save writes weights, tokenizer and config to dir, creating it if needed
func (m *Model) Save(dir string) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create model dir: %w", err)
	}

	raw, err := msgpack.Marshal(m.Classifier)
	if err != nil {
		return fmt.Errorf("failed to encode weights: %w", err)
	}
	if err := os.WriteFile(filepath.Join(dir, WeightsFile), raw, 0o644); err != nil {
		return fmt.Errorf("failed to write weights: %w", err)
	}

	if err := writeJSON(filepath.Join(dir, TokenizerConfigFile), m.Tokenizer.Config()); err != nil {
		return err
	}
	return writeJSON(filepath.Join(dir, ConfigFile), m.Config)
}

func readJSON(path string, v any) error {
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("%w: missing %s", ErrInvalidModel, filepath.Base(path))
	}
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", filepath.Base(path), err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("failed to parse %s: %w", filepath.Base(path), err)
	}
	return nil
}

func writeJSON(path string, v any) error {
	raw, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", filepath.Base(path), err)
	}
	if err := os.WriteFile(path, append(raw, '\n'), 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", filepath.Base(path), err)
	}
	return nil
}
