package news

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/selivandex/finvani-sentiment/pkg/models"
)

// Repository mirrors ingested articles into Postgres.
// The daily JSONL files stay the source of truth for the API.
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates new news repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// SaveArticles inserts articles, ignoring ids that are already stored.
// Returns the number of newly inserted rows.
func (r *Repository) SaveArticles(ctx context.Context, articles []models.Article) (int, error) {
	if len(articles) == 0 {
		return 0, nil
	}

	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareNamedContext(ctx, `
		INSERT INTO news_articles (
			id, source, query, language, title, link, published, summary, fetched_at
		) VALUES (
			:id, :source, :query, :language, :title, :link, :published, :summary, :fetched_at
		)
		ON CONFLICT (id) DO NOTHING
	`)
	if err != nil {
		return 0, fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer stmt.Close()

	saved := 0
	for i := range articles {
		res, err := stmt.ExecContext(ctx, &articles[i])
		if err != nil {
			return 0, fmt.Errorf("failed to insert article %s: %w", articles[i].ID, err)
		}
		if n, _ := res.RowsAffected(); n > 0 {
			saved++
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit: %w", err)
	}

	return saved, nil
}

// CountByLanguage returns how many mirrored articles exist per language
func (r *Repository) CountByLanguage(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT language, COUNT(*) AS total
		FROM news_articles
		GROUP BY language
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var (
			lang  string
			total int
		)
		if err := rows.Scan(&lang, &total); err != nil {
			return nil, fmt.Errorf("failed to scan count: %w", err)
		}
		counts[lang] = total
	}

	return counts, rows.Err()
}
