package workers

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/internal/ingestion"
	"github.com/selivandex/finvani-sentiment/internal/metrics"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

type fakeRunner struct {
	report *ingestion.RunReport
	err    error
	calls  int
}

func (r *fakeRunner) Run(ctx context.Context) (*ingestion.RunReport, error) {
	r.calls++
	return r.report, r.err
}

func TestIngestWorker_Run(t *testing.T) {
	tests := []struct {
		name    string
		runner  *fakeRunner
		wantErr bool
	}{
		{"completed", &fakeRunner{report: &ingestion.RunReport{Status: ingestion.StatusOK, New: 4}}, false},
		{"lock held elsewhere", &fakeRunner{report: &ingestion.RunReport{Status: ingestion.StatusSkipped}, err: ingestion.ErrRunInProgress}, false},
		{"write failure", &fakeRunner{err: errors.New("disk full")}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := NewIngestWorker(tt.runner)
			assert.Equal(t, "news_ingest", w.Name())

			err := w.Run(context.Background())
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
			assert.Equal(t, 1, tt.runner.calls)
		})
	}
}

type fakeMirror struct {
	counts map[string]int
	err    error
}

func (m *fakeMirror) CountByLanguage(ctx context.Context) (map[string]int, error) {
	return m.counts, m.err
}

func TestStoreStatsWorker(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "raw")
	store := storage.NewDailyStore(dir)

	w := NewStoreStatsWorker(store, nil)
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 0.0, testutil.ToFloat64(metrics.DataFiles))

	a := models.Article{Title: "Loans rise", Link: "https://news.example/a", Language: "en"}
	a.AssignID()
	_, err := store.Append([]models.Article{a})
	require.NoError(t, err)

	w = NewStoreStatsWorker(store, &fakeMirror{counts: map[string]int{"ta": 12}})
	require.NoError(t, w.Run(context.Background()))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.DataFiles))
	assert.Equal(t, 12.0, testutil.ToFloat64(metrics.MirroredArticles.WithLabelValues("ta")))

	w = NewStoreStatsWorker(store, &fakeMirror{err: errors.New("db down")})
	assert.NoError(t, w.Run(context.Background()), "mirror errors are logged, not returned")
}
