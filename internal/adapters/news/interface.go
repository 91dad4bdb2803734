package news

import (
	"context"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// FeedProvider fetches articles for one search term in one language
type FeedProvider interface {
	// GetName returns provider name
	GetName() string

	// FetchFeed performs a single fetch of the search feed. Returned articles
	// carry their content hash id but are not deduplicated.
	FetchFeed(ctx context.Context, query, lang string) ([]models.Article, error)
}
