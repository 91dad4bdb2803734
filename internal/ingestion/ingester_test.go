package ingestion

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/internal/adapters/storage"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

type fakeProvider struct {
	mu     sync.Mutex
	feeds  map[string][]string // "query|lang" -> titles
	fail   map[string]error
	calls  int
	delays map[string]time.Duration
}

func (p *fakeProvider) GetName() string { return "fake" }

func (p *fakeProvider) FetchFeed(ctx context.Context, query, lang string) ([]models.Article, error) {
	key := query + "|" + lang

	p.mu.Lock()
	p.calls++
	delay := p.delays[key]
	err := p.fail[key]
	titles := p.feeds[key]
	p.mu.Unlock()

	if delay > 0 {
		time.Sleep(delay)
	}
	if err != nil {
		return nil, err
	}

	articles := make([]models.Article, 0, len(titles))
	for _, title := range titles {
		a := models.Article{
			Source:    models.SourceGoogleNews,
			Query:     query,
			Language:  lang,
			Title:     title,
			Link:      "https://news.example/" + strings.ReplaceAll(title, " ", "-"),
			FetchedAt: "2025-03-14T10:00:00Z",
		}
		a.AssignID()
		articles = append(articles, a)
	}
	return articles, nil
}

type fakeSink struct {
	saved []models.Article
}

func (s *fakeSink) SaveArticles(ctx context.Context, articles []models.Article) (int, error) {
	s.saved = append(s.saved, articles...)
	return len(articles), nil
}

type deniedLock struct{}

func (deniedLock) TryAcquire(ctx context.Context) (bool, error) { return false, nil }
func (deniedLock) Release(ctx context.Context) error             { return nil }

func assertNoDailyFile(t *testing.T, store *storage.DailyStore) {
	t.Helper()
	_, err := os.Stat(store.TodayPath())
	assert.True(t, errors.Is(err, fs.ErrNotExist), "daily file must not be written, stat err: %v", err)
}

func newStore(t *testing.T) *storage.DailyStore {
	t.Helper()
	return storage.NewDailyStore(t.TempDir()).WithClock(func() time.Time {
		return time.Date(2025, 3, 14, 10, 0, 0, 0, time.UTC)
	})
}

func readRecords(t *testing.T, store *storage.DailyStore) []map[string]any {
	t.Helper()
	var records []map[string]any
	err := store.ReadArticles(store.TodayPath(), func(r map[string]any) bool {
		records = append(records, r)
		return true
	})
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	require.NoError(t, err)
	return records
}

func TestIngester_DeduplicatesAcrossPairsAndRuns(t *testing.T) {
	provider := &fakeProvider{
		feeds: map[string][]string{
			"MSME|en":    {"Credit growth", "Shared headline"},
			"MSME|hi":    {"ऋण वृद्धि"},
			"Economy|en": {"Shared headline", "GDP beats forecast"},
		},
		// finish the first pair last: order must not depend on completion
		delays: map[string]time.Duration{"MSME|en": 30 * time.Millisecond},
	}
	store := newStore(t)
	sink := &fakeSink{}

	in := New(provider, store, Options{
		Queries:     []string{"MSME", "Economy"},
		Languages:   []string{"en", "hi"},
		Concurrency: 4,
	}, sink, nil)

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, StatusOK, report.Status)
	assert.Equal(t, 4, report.Pairs)
	assert.Equal(t, 5, report.Fetched)
	assert.Equal(t, 4, report.New)
	assert.Equal(t, 4, report.Mirrored)
	assert.Empty(t, report.FailedPairs)

	records := readRecords(t, store)
	require.Len(t, records, 4)

	titles := make([]string, len(records))
	for i, r := range records {
		titles[i] = r["title"].(string)
	}
	assert.Equal(t, []string{"Credit growth", "Shared headline", "ऋण वृद्धि", "GDP beats forecast"}, titles)
	assert.Equal(t, "MSME", records[1]["query"], "first pair in query-major order wins")

	ids := make(map[string]bool)
	for _, r := range records {
		id := r["id"].(string)
		assert.False(t, ids[id], "duplicate id %s", id)
		ids[id] = true
	}

	// second run over identical feeds adds nothing
	again, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, again.New)
	assert.Len(t, readRecords(t, store), 4)
	assert.Len(t, sink.saved, 4)

	last, ok := in.LastRun()
	require.True(t, ok)
	assert.Equal(t, 0, last.New)
}

func TestIngester_SeedsFromExistingFile(t *testing.T) {
	store := newStore(t)
	provider := &fakeProvider{feeds: map[string][]string{"MSME|en": {"Old news", "Fresh news"}}}

	existing, err := provider.FetchFeed(context.Background(), "MSME", "en")
	require.NoError(t, err)
	_, err = store.Append(existing[:1])
	require.NoError(t, err)

	in := New(provider, store, Options{Queries: []string{"MSME"}, Languages: []string{"en"}}, nil, nil)
	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, report.New)

	records := readRecords(t, store)
	require.Len(t, records, 2)
	assert.Equal(t, "Fresh news", records[1]["title"])
}

func TestIngester_FailedPairsDoNotAbortRun(t *testing.T) {
	store := newStore(t)
	provider := &fakeProvider{
		feeds: map[string][]string{"MSME|en": {"Credit growth"}},
		fail:  map[string]error{"MSME|sa": errors.New("503 Service Unavailable")},
	}

	in := New(provider, store, Options{Queries: []string{"MSME"}, Languages: []string{"en", "sa"}, Concurrency: 2}, nil, nil)
	report, err := in.Run(context.Background())
	require.NoError(t, err)

	assert.Equal(t, 1, report.New)
	require.Len(t, report.FailedPairs, 1)
	assert.Equal(t, FailedPair{Query: "MSME", Language: "sa", Error: "503 Service Unavailable"}, report.FailedPairs[0])
}

func TestIngester_NothingFetchedWritesNothing(t *testing.T) {
	store := newStore(t)
	in := New(&fakeProvider{}, store, Options{Queries: []string{"MSME"}, Languages: []string{"en"}}, nil, nil)

	report, err := in.Run(context.Background())
	require.NoError(t, err)
	assert.Zero(t, report.New)
	assertNoDailyFile(t, store)
}

func TestIngester_SkipsWhenLockHeld(t *testing.T) {
	store := newStore(t)
	provider := &fakeProvider{feeds: map[string][]string{"MSME|en": {"Credit growth"}}}

	in := New(provider, store, Options{Queries: []string{"MSME"}, Languages: []string{"en"}}, nil, deniedLock{})
	report, err := in.Run(context.Background())
	assert.ErrorIs(t, err, ErrRunInProgress)
	assert.Equal(t, StatusSkipped, report.Status)
	assert.Zero(t, provider.calls)
	assertNoDailyFile(t, store)

	_, ok := in.LastRun()
	assert.False(t, ok, "skipped runs are not recorded")
}

func TestIngester_CancelledContext(t *testing.T) {
	store := newStore(t)
	provider := &fakeProvider{feeds: map[string][]string{"MSME|en": {"Credit growth"}}}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	in := New(provider, store, Options{Queries: []string{"MSME"}, Languages: []string{"en"}, RequestsPerSecond: 1}, nil, nil)
	report, err := in.Run(ctx)
	require.NoError(t, err)
	assert.Zero(t, report.New)
	assert.Len(t, report.FailedPairs, 1)
}
