package news

import (
	"context"
	"crypto/rand"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/audit"
)

type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "news").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, author, title, body string) (Article, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return Article{}, fmt.Errorf("mint article id: %w", err)
	}

	article, err := s.repo.Create(ctx, Article{
		ID:     id.String(),
		Title:  title,
		Body:   body,
		Author: author,
	})
	if err != nil {
		return Article{}, err
	}

	s.auditLogger.LogSuccess("news.created", author, "article", article.ID, nil)
	return article, nil
}

func (s *Service) Get(ctx context.Context, id string) (Article, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Article, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id, actor string, params UpdateParams) (Article, error) {
	article, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Article{}, err
	}

	s.auditLogger.LogSuccess("news.updated", actor, "article", id, nil)
	return article, nil
}

func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.LogSuccess("news.deleted", actor, "article", id, nil)
	return nil
}
