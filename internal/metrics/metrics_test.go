package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordIngestion(t *testing.T) {
	before := testutil.ToFloat64(ArticlesIngested.WithLabelValues("ta"))
	runs := testutil.ToFloat64(IngestionRuns.WithLabelValues("ok"))

	RecordIngestion("ok", 1.5, map[string]int{"ta": 3}, map[string]int{"sa": 1})

	assert.Equal(t, before+3, testutil.ToFloat64(ArticlesIngested.WithLabelValues("ta")))
	assert.Equal(t, runs+1, testutil.ToFloat64(IngestionRuns.WithLabelValues("ok")))
	assert.GreaterOrEqual(t, testutil.ToFloat64(FeedErrors.WithLabelValues("sa")), 1.0)
}

func TestSetModelLoaded(t *testing.T) {
	SetModelLoaded(true)
	assert.Equal(t, 1.0, testutil.ToFloat64(ModelLoaded))
	SetModelLoaded(false)
	assert.Equal(t, 0.0, testutil.ToFloat64(ModelLoaded))
}
