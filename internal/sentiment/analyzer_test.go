package sentiment

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

func TestAnalyzer_BaseModelPredictions(t *testing.T) {
	analyzer := NewAnalyzer(NewBaseModel(), Options{}, "base")

	tests := []struct {
		name string
		text string
		want string
	}{
		{"positive english", "Profits soar for MSME sector", models.LabelPositive},
		{"negative english", "Severe losses reported due to inflation", models.LabelNegative},
		{"neutral english", "Market remains stable today", models.LabelNeutral},
		{"positive hindi", "MSME क्षेत्र में वृद्धि", models.LabelPositive},
		{"negative hindi", "छोटे उद्योगों को भारी नुकसान", models.LabelNegative},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := analyzer.Predict(tt.text)
			require.NoError(t, err)
			assert.Equal(t, tt.want, p.Label)
			assert.GreaterOrEqual(t, p.Score, 0.0)
			assert.LessOrEqual(t, p.Score, 1.0)
		})
	}
}

func TestAnalyzer_Predict(t *testing.T) {
	analyzer := NewAnalyzer(NewBaseModel(), Options{MaxLength: 512}, "base")

	t.Run("deterministic", func(t *testing.T) {
		first, err := analyzer.Predict("RBI hikes interest rates, impacting MSME loans.")
		require.NoError(t, err)
		second, err := analyzer.Predict("RBI hikes interest rates, impacting MSME loans.")
		require.NoError(t, err)
		assert.Equal(t, first, second)
		assert.True(t, first.IsKnown())
	})

	t.Run("empty text", func(t *testing.T) {
		p, err := analyzer.Predict("")
		require.NoError(t, err)
		assert.True(t, p.IsKnown())
		assert.GreaterOrEqual(t, p.Score, 0.0)
		assert.LessOrEqual(t, p.Score, 1.0)
	})

	t.Run("score has at most 4 decimals", func(t *testing.T) {
		p, err := analyzer.Predict("Exports surge for textile units")
		require.NoError(t, err)
		assert.Equal(t, models.RoundScore(p.Score), p.Score)
	})

	t.Run("unknown class id", func(t *testing.T) {
		model := NewBaseModel()
		delete(model.Config.ID2Label, 1)
		p, err := NewAnalyzer(model, Options{}, "base").Predict("Market remains stable today")
		require.NoError(t, err)
		assert.Equal(t, models.LabelUnknown, p.Label)
	})
}

func TestLoadAnalyzer(t *testing.T) {
	t.Run("missing directory falls back to base model", func(t *testing.T) {
		analyzer, err := LoadAnalyzer(filepath.Join(t.TempDir(), "model_output"), Options{})
		require.NoError(t, err)
		assert.Equal(t, "base", analyzer.Source())
	})

	t.Run("broken directory fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, os.WriteFile(filepath.Join(dir, ConfigFile), []byte("{not json"), 0o644))

		_, err := LoadAnalyzer(dir, Options{})
		assert.Error(t, err)
	})

	t.Run("directory without weights fails", func(t *testing.T) {
		dir := t.TempDir()
		require.NoError(t, NewBaseModel().Save(dir))
		require.NoError(t, os.Remove(filepath.Join(dir, WeightsFile)))

		_, err := LoadAnalyzer(dir, Options{})
		assert.Error(t, err)
	})

	t.Run("saved model round trip", func(t *testing.T) {
		dir := t.TempDir()
		base := NewBaseModel()
		require.NoError(t, base.Save(dir))

		loaded, err := LoadAnalyzer(dir, Options{})
		require.NoError(t, err)
		assert.Equal(t, dir, loaded.Source())

		want, err := NewAnalyzer(base, Options{}, "base").Predict("Government announces new loan scheme")
		require.NoError(t, err)
		got, err := loaded.Predict("Government announces new loan scheme")
		require.NoError(t, err)
		assert.Equal(t, want, got)
	})
}

func TestSoftmax(t *testing.T) {
	probs := Softmax([]float64{1000, 1000, 1000})
	for _, p := range probs {
		assert.InDelta(t, 1.0/3, p, 1e-9)
	}
	assert.Equal(t, 2, argmax(Softmax([]float64{-1, 0, 3})))
}
