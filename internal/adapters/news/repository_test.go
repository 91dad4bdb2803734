package news

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/pkg/models"
	"github.com/selivandex/finvani-sentiment/test/testdb"
)

func TestRepository_SaveArticles(t *testing.T) {
	conn := testdb.Setup(t)
	repo := NewRepository(conn)
	ctx := context.Background()

	published := "2025-03-14T06:30:00Z"
	articles := []models.Article{
		{Source: models.SourceGoogleNews, Query: "MSME", Language: "en", Title: "Credit growth", Link: "https://news.example/1", Published: &published, FetchedAt: published},
		{Source: models.SourceGoogleNews, Query: "MSME", Language: "hi", Title: "ऋण वृद्धि", Link: "https://news.example/2", FetchedAt: published},
	}
	for i := range articles {
		articles[i].AssignID()
	}

	saved, err := repo.SaveArticles(ctx, articles)
	require.NoError(t, err)
	assert.Equal(t, 2, saved)

	saved, err = repo.SaveArticles(ctx, articles)
	require.NoError(t, err)
	assert.Equal(t, 0, saved, "existing ids are ignored")
	assert.Equal(t, 2, testdb.CountArticles(t, conn))

	counts, err := repo.CountByLanguage(ctx)
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"en": 1, "hi": 1}, counts)
}

func TestRepository_SaveArticlesEmpty(t *testing.T) {
	saved, err := NewRepository(nil).SaveArticles(context.Background(), nil)
	require.NoError(t, err)
	assert.Zero(t, saved)
}
