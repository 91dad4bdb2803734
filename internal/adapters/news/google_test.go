package news

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

const sampleFeed = `<?xml version="1.0" encoding="UTF-8"?>
<rss version="2.0">
<channel>
  <title>"MSME" - Google News</title>
  <item>
    <title>RBI eases credit norms for MSMEs - The Hindu</title>
    <link>https://news.example/rbi-msme</link>
    <pubDate>Fri, 14 Mar 2025 06:30:00 GMT</pubDate>
    <description>&lt;a href="https://news.example/rbi-msme"&gt;RBI eases credit norms&lt;/a&gt;&amp;nbsp;&amp;nbsp;&lt;font color="#6f6f6f"&gt;The Hindu&lt;/font&gt;</description>
  </item>
  <item>
    <title>Exports slow for textile units</title>
    <link>https://news.example/textile</link>
    <pubDate>sometime last week</pubDate>
  </item>
  <item>
    <title>Budget talk</title>
    <link>https://news.example/budget</link>
  </item>
</channel>
</rss>`

func newFeedServer(t *testing.T, body string, status int) (*httptest.Server, *[]*http.Request) {
	t.Helper()
	var requests []*http.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests = append(requests, r)
		w.Header().Set("Content-Type", "application/rss+xml")
		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv, &requests
}

func TestGoogleNewsProvider_FeedURL(t *testing.T) {
	p := NewGoogleNewsProvider("", time.Second)
	assert.Equal(t,
		"https://news.google.com/rss/search?q=SME+India&hl=hi-IN&gl=IN&ceid=IN:hi",
		p.FeedURL("SME India", "hi"),
	)
}

func TestGoogleNewsProvider_FetchFeed(t *testing.T) {
	srv, requests := newFeedServer(t, sampleFeed, http.StatusOK)

	fetchedAt := time.Date(2025, 3, 14, 12, 0, 0, 0, time.UTC)
	p := NewGoogleNewsProvider(srv.URL, 5*time.Second)
	p.now = func() time.Time { return fetchedAt }

	articles, err := p.FetchFeed(context.Background(), "MSME loan", "en")
	require.NoError(t, err)
	require.Len(t, articles, 3)

	require.Len(t, *requests, 1)
	q := (*requests)[0].URL.Query()
	assert.Equal(t, "MSME loan", q.Get("q"))
	assert.Equal(t, "en-IN", q.Get("hl"))
	assert.Equal(t, "IN", q.Get("gl"))
	assert.Equal(t, "IN:en", q.Get("ceid"))

	first := articles[0]
	assert.Equal(t, models.SourceGoogleNews, first.Source)
	assert.Equal(t, "MSME loan", first.Query)
	assert.Equal(t, "en", first.Language)
	assert.Equal(t, "RBI eases credit norms for MSMEs - The Hindu", first.Title)
	assert.Equal(t, models.ArticleID(first.Link, first.Title), first.ID)
	require.NotNil(t, first.Published)
	assert.Equal(t, "2025-03-14T06:30:00Z", *first.Published)
	assert.Equal(t, "RBI eases credit norms The Hindu", first.Summary)
	assert.Equal(t, "2025-03-14T12:00:00Z", first.FetchedAt)

	// unparsable date falls back to fetch time
	require.NotNil(t, articles[1].Published)
	assert.Equal(t, "2025-03-14T12:00:00Z", *articles[1].Published)

	// no date at all stays null
	assert.Nil(t, articles[2].Published)
}

func TestGoogleNewsProvider_FetchFeedErrors(t *testing.T) {
	t.Run("malformed body", func(t *testing.T) {
		srv, _ := newFeedServer(t, "<html>not a feed", http.StatusOK)
		_, err := NewGoogleNewsProvider(srv.URL, time.Second).FetchFeed(context.Background(), "MSME", "en")
		assert.Error(t, err)
	})

	t.Run("http error status", func(t *testing.T) {
		srv, _ := newFeedServer(t, "", http.StatusServiceUnavailable)
		_, err := NewGoogleNewsProvider(srv.URL, time.Second).FetchFeed(context.Background(), "MSME", "en")
		assert.Error(t, err)
	})
}
