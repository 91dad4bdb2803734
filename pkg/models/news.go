package models

import (
	"crypto/md5"
	"encoding/hex"
)

// SourceGoogleNews tags records produced by the Google News ingester
const SourceGoogleNews = "google_news"

// Article is one ingested headline as stored in the daily JSONL file.
// Published is nil when the feed entry carried no publish date.
type Article struct {
	Source    string  `json:"source" db:"source"`
	Query     string  `json:"query" db:"query"`
	Language  string  `json:"language" db:"language"`
	Title     string  `json:"title" db:"title"`
	Link      string  `json:"link" db:"link"`
	Published *string `json:"published" db:"published"`
	Summary   string  `json:"summary" db:"summary"`
	FetchedAt string  `json:"fetched_at" db:"fetched_at"`
	ID        string  `json:"id" db:"id"`
}

// ArticleID returns the content hash id of an article: hex MD5 of link+title
func ArticleID(link, title string) string {
	sum := md5.Sum([]byte(link + title))
	return hex.EncodeToString(sum[:])
}

// AssignID computes and stores the content hash id
func (a *Article) AssignID() string {
	a.ID = ArticleID(a.Link, a.Title)
	return a.ID
}

// PlaceholderArticle is returned by the news API when nothing was ingested yet
type PlaceholderArticle struct {
	Title         string `json:"title"`
	Link          string `json:"link"`
	PublishedDate string `json:"published_date"`
	Source        string `json:"source"`
	Language      string `json:"language"`
}

// NoDataPlaceholder builds the single "no data" record
func NoDataPlaceholder() PlaceholderArticle {
	return PlaceholderArticle{
		Title:         "No data found - please run ingestion script",
		Link:          "#",
		PublishedDate: "N/A",
		Source:        "System",
		Language:      "en",
	}
}

// DataFile describes a daily JSONL file on disk
type DataFile struct {
	Name     string  `json:"name"`
	Size     int64   `json:"size"`
	Modified float64 `json:"modified"`
}
