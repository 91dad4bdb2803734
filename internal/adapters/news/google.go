package news

import (
	"context"
	"fmt"
	"html"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/microcosm-cc/bluemonday"
	"github.com/mmcdole/gofeed"
	"go.uber.org/zap"

	"github.com/selivandex/finvani-sentiment/pkg/logger"
	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// GoogleNewsSearchURL is the public Google News RSS search endpoint
const GoogleNewsSearchURL = "https://news.google.com/rss/search"

const userAgent = "finvani-ingester/1.0 (+https://github.com/selivandex/finvani-sentiment)"

// GoogleNewsProvider reads the Google News RSS search feed, India edition
type GoogleNewsProvider struct {
	baseURL string
	parser  *gofeed.Parser
	policy  *bluemonday.Policy
	now     func() time.Time
}

// NewGoogleNewsProvider creates a provider. An empty baseURL means the public endpoint.
func NewGoogleNewsProvider(baseURL string, timeout time.Duration) *GoogleNewsProvider {
	if baseURL == "" {
		baseURL = GoogleNewsSearchURL
	}

	parser := gofeed.NewParser()
	parser.Client = &http.Client{Timeout: timeout}
	parser.UserAgent = userAgent

	return &GoogleNewsProvider{
		baseURL: baseURL,
		parser:  parser,
		policy:  bluemonday.StrictPolicy(),
		now:     time.Now,
	}
}

func (g *GoogleNewsProvider) GetName() string {
	return models.SourceGoogleNews
}

// FeedURL builds the search URL for a (query, language) pair
func (g *GoogleNewsProvider) FeedURL(query, lang string) string {
	return fmt.Sprintf("%s?q=%s&hl=%s-IN&gl=IN&ceid=IN:%s", g.baseURL, url.QueryEscape(query), lang, lang)
}

func (g *GoogleNewsProvider) FetchFeed(ctx context.Context, query, lang string) ([]models.Article, error) {
	feedURL := g.FeedURL(query, lang)

	logger.Info("fetching feed",
		zap.String("query", query),
		zap.String("lang", lang),
	)

	feed, err := g.parser.ParseURLWithContext(feedURL, ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch feed for %q/%s: %w", query, lang, err)
	}

	articles := make([]models.Article, 0, len(feed.Items))
	for _, item := range feed.Items {
		if item == nil {
			continue
		}
		articles = append(articles, g.toArticle(item, query, lang))
	}

	logger.Debug("feed parsed",
		zap.String("query", query),
		zap.String("lang", lang),
		zap.Int("entries", len(articles)),
	)

	return articles, nil
}

func (g *GoogleNewsProvider) toArticle(item *gofeed.Item, query, lang string) models.Article {
	fetchedAt := g.now()

	article := models.Article{
		Source:    models.SourceGoogleNews,
		Query:     query,
		Language:  lang,
		Title:     item.Title,
		Link:      item.Link,
		Published: publishedTimestamp(item, fetchedAt),
		Summary:   g.plainText(item.Description),
		FetchedAt: fetchedAt.Format(time.RFC3339),
	}
	article.AssignID()

	return article
}

// publishedTimestamp is nil when the entry has no publish date and the fetch
// time when the date is present but unparsable
func publishedTimestamp(item *gofeed.Item, fetchedAt time.Time) *string {
	if item.Published == "" && item.PublishedParsed == nil {
		return nil
	}

	ts := fetchedAt
	if item.PublishedParsed != nil {
		ts = *item.PublishedParsed
	}
	formatted := ts.Format(time.RFC3339)
	return &formatted
}

func (g *GoogleNewsProvider) plainText(fragment string) string {
	if fragment == "" {
		return ""
	}
	text := html.UnescapeString(g.policy.Sanitize(fragment))
	return strings.Join(strings.Fields(text), " ")
}
