package events

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/audit"
)

var ErrInvalidSchedule = errors.New("event ends before it starts")

type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "events").Logger(),
	}
}

type CreateParams struct {
	Title       string
	Description string
	Location    string
	StartsAt    time.Time
	EndsAt      *time.Time
}

func (s *Service) Create(ctx context.Context, actor string, params CreateParams) (Event, error) {
	if params.EndsAt != nil && params.EndsAt.Before(params.StartsAt) {
		return Event{}, ErrInvalidSchedule
	}

	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return Event{}, fmt.Errorf("mint event id: %w", err)
	}

	event, err := s.repo.Create(ctx, Event{
		ID:          id.String(),
		Title:       params.Title,
		Description: params.Description,
		Location:    params.Location,
		StartsAt:    params.StartsAt,
		EndsAt:      params.EndsAt,
	})
	if err != nil {
		return Event{}, err
	}

	s.auditLogger.LogSuccess("event.created", actor, "event", event.ID, nil)
	return event, nil
}

func (s *Service) Get(ctx context.Context, id string) (Event, error) {
	return s.repo.Get(ctx, id)
}

func (s *Service) List(ctx context.Context) ([]Event, error) {
	return s.repo.List(ctx)
}

func (s *Service) Update(ctx context.Context, id, actor string, params UpdateParams) (Event, error) {
	event, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Event{}, err
	}

	s.auditLogger.LogSuccess("event.updated", actor, "event", id, nil)
	return event, nil
}

func (s *Service) Delete(ctx context.Context, id, actor string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.LogSuccess("event.deleted", actor, "event", id, nil)
	return nil
}
