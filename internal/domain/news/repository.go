package news

import (
	"context"
	"errors"
	"time"
)

var ErrNotFound = errors.New("article not found")

// Article is a published municipal news item.
type Article struct {
	ID        string
	Title     string
	Body      string
	Author    string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type UpdateParams struct {
	Title *string
	Body  *string
}

type Repository interface {
	Create(ctx context.Context, article Article) (Article, error)
	Get(ctx context.Context, id string) (Article, error)
	List(ctx context.Context) ([]Article, error)
	Update(ctx context.Context, id string, params UpdateParams) (Article, error)
	Delete(ctx context.Context, id string) error
}
