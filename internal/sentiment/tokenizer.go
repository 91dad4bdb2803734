package sentiment

import (
	"hash/fnv"
	"sort"
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Special token ids
const (
	PadTokenID = 0
	CLSTokenID = 1
	UNKTokenID = 2

	numSpecialTokens = 3

	// words longer than this are mapped to [UNK]
	maxWordRunes = 64
)

// Encoding is a tokenized sequence ready for the classifier
type Encoding struct {
	InputIDs      []int
	AttentionMask []int
}

// TokenizerConfig is persisted as tokenizer_config.json
type TokenizerConfig struct {
	TokenizerClass string   `json:"tokenizer_class"`
	VocabSize      int      `json:"vocab_size"`
	ModelMaxLength int      `json:"model_max_length"`
	Normalization  string   `json:"normalization"`
	DoLowerCase    bool     `json:"do_lower_case"`
	Vocab          []string `json:"vocab"`
}

// Tokenizer splits text into words and maps them to ids. Words in the
// reserved vocabulary get dedicated ids; all other words are hashed into
// the remaining id range.
type Tokenizer struct {
	vocabSize int
	maxLength int
	vocab     map[string]int
	words     []string
}

// NewTokenizer builds a tokenizer with the given reserved vocabulary
func NewTokenizer(vocabSize, maxLength int, reserved []string) *Tokenizer {
	t := &Tokenizer{
		vocabSize: vocabSize,
		maxLength: maxLength,
		vocab:     make(map[string]int, len(reserved)),
	}

	for _, w := range reserved {
		w = normalize(w)
		if w == "" {
			continue
		}
		if _, ok := t.vocab[w]; ok {
			continue
		}
		t.vocab[w] = numSpecialTokens + len(t.words)
		t.words = append(t.words, w)
	}

	return t
}

// NewTokenizerFromConfig restores a tokenizer saved with Config
func NewTokenizerFromConfig(cfg TokenizerConfig) *Tokenizer {
	return NewTokenizer(cfg.VocabSize, cfg.ModelMaxLength, cfg.Vocab)
}

// Config returns the persisted form of the tokenizer
func (t *Tokenizer) Config() TokenizerConfig {
	return TokenizerConfig{
		TokenizerClass: "FinvaniHashTokenizer",
		VocabSize:      t.vocabSize,
		ModelMaxLength: t.maxLength,
		Normalization:  "NFKC",
		DoLowerCase:    true,
		Vocab:          t.ReservedWords(),
	}
}

// VocabSize returns the number of token ids
func (t *Tokenizer) VocabSize() int {
	return t.vocabSize
}

// TokenID returns the id of a single normalized word
func (t *Tokenizer) TokenID(word string) int {
	if id, ok := t.vocab[word]; ok {
		return id
	}
	if word == "" || len([]rune(word)) > maxWordRunes {
		return UNKTokenID
	}

	offset := numSpecialTokens + len(t.words)
	buckets := t.vocabSize - offset
	if buckets <= 0 {
		return UNKTokenID
	}

	h := fnv.New32a()
	_, _ = h.Write([]byte(word))
	return offset + int(h.Sum32()%uint32(buckets))
}

// Words returns the normalized word tokens of text
func (t *Tokenizer) Words(text string) []string {
	return strings.FieldsFunc(normalize(text), isSeparator)
}

// Encode tokenizes text as [CLS] followed by word ids, truncated to
// maxLength tokens. With pad set the sequence is right-padded to maxLength.
// maxLength <= 0 uses the tokenizer's model max length.
func (t *Tokenizer) Encode(text string, maxLength int, pad bool) Encoding {
	if maxLength <= 0 {
		maxLength = t.maxLength
	}
	if maxLength < 1 {
		maxLength = 1
	}

	words := t.Words(text)
	n := 1 + len(words)
	if n > maxLength {
		n = maxLength
	}

	size := n
	if pad {
		size = maxLength
	}

	enc := Encoding{
		InputIDs:      make([]int, size),
		AttentionMask: make([]int, size),
	}
	enc.InputIDs[0] = CLSTokenID
	enc.AttentionMask[0] = 1
	for i := 1; i < n; i++ {
		enc.InputIDs[i] = t.TokenID(words[i-1])
		enc.AttentionMask[i] = 1
	}

	return enc
}

// ReservedWords returns the reserved vocabulary in id order
func (t *Tokenizer) ReservedWords() []string {
	return append([]string(nil), t.words...)
}

func normalize(text string) string {
	return cases.Fold().String(norm.NFKC.String(text))
}

// isSeparator keeps letters, digits and combining marks together so Indic
// vowel signs and viramas stay inside their word.
func isSeparator(r rune) bool {
	return !(unicode.IsLetter(r) || unicode.IsDigit(r) || unicode.In(r, unicode.Mn, unicode.Mc))
}

func sortedKeys(m map[string]float64) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
