package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/nevermarine/city-backend/internal/domain/news"
)

type NewsRepository struct {
	db queryer
}

const newsColumns = `id, title, body, author, created_at, updated_at`

func scanArticle(row pgx.Row) (news.Article, error) {
	var article news.Article
	err := row.Scan(
		&article.ID,
		&article.Title,
		&article.Body,
		&article.Author,
		&article.CreatedAt,
		&article.UpdatedAt,
	)
	return article, err
}

func (r *NewsRepository) Create(ctx context.Context, article news.Article) (news.Article, error) {
	created, err := scanArticle(r.db.QueryRow(ctx, `
INSERT INTO news (id, title, body, author)
VALUES ($1, $2, $3, $4)
RETURNING `+newsColumns,
		article.ID, article.Title, article.Body, article.Author,
	))
	if err != nil {
		return news.Article{}, fmt.Errorf("insert article: %w", err)
	}
	return created, nil
}

func (r *NewsRepository) Get(ctx context.Context, id string) (news.Article, error) {
	article, err := scanArticle(r.db.QueryRow(ctx, `
SELECT `+newsColumns+`
  FROM news
 WHERE id = $1`,
		id,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("get article: %w", err)
	}
	return article, nil
}

func (r *NewsRepository) List(ctx context.Context) ([]news.Article, error) {
	rows, err := r.db.Query(ctx, `
SELECT `+newsColumns+`
  FROM news
 ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	defer rows.Close()

	out := make([]news.Article, 0)
	for rows.Next() {
		article, err := scanArticle(rows)
		if err != nil {
			return nil, fmt.Errorf("scan article: %w", err)
		}
		out = append(out, article)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list news: %w", err)
	}
	return out, nil
}

func (r *NewsRepository) Update(ctx context.Context, id string, params news.UpdateParams) (news.Article, error) {
	article, err := scanArticle(r.db.QueryRow(ctx, `
UPDATE news
   SET title      = COALESCE($2, title),
       body       = COALESCE($3, body),
       updated_at = now()
 WHERE id = $1
RETURNING `+newsColumns,
		id, params.Title, params.Body,
	))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return news.Article{}, news.ErrNotFound
		}
		return news.Article{}, fmt.Errorf("update article: %w", err)
	}
	return article, nil
}

func (r *NewsRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM news WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete article: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return news.ErrNotFound
	}
	return nil
}
