package requests

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

var ErrInvalidStatus = errors.New("invalid request status")

// Service manages citizen requests. Listing visibility is decided by the
// caller-supplied Scope; status and response updates are open to any
// authenticated principal so municipal staff can answer residents.
type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "requests").Logger(),
	}
}

func (s *Service) Create(ctx context.Context, username, message string) (Request, error) {
	id, err := newID()
	if err != nil {
		return Request{}, fmt.Errorf("mint request id: %w", err)
	}

	req, err := s.repo.Create(ctx, Request{
		ID:       id,
		Username: username,
		Message:  message,
		Status:   StatusPending,
	})
	if err != nil {
		return Request{}, err
	}

	s.auditLogger.LogSuccess("request.created", username, "request", req.ID, nil)
	return req, nil
}

// Get returns the request only when it is inside the caller's scope. Out-of-
// scope records are indistinguishable from missing ones.
func (s *Service) Get(ctx context.Context, id string, scope Scope) (Request, error) {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return Request{}, err
	}
	if !scope.Matches(req) {
		return Request{}, ErrNotFound
	}
	return req, nil
}

func (s *Service) List(ctx context.Context, scope Scope) ([]Request, error) {
	return s.repo.List(ctx, scope)
}

// Update applies status and response changes. Attaching a response resolves
// the request. The one-way Pending -> Resolved transition is enforced by the
// repository, atomically with the write, so concurrent updates cannot reopen
// a resolved request.
func (s *Service) Update(ctx context.Context, id string, actor string, params UpdateParams) (Request, error) {
	if params.Status != nil && !params.Status.Valid() {
		return Request{}, ErrInvalidStatus
	}

	if params.Response != nil && params.Status == nil {
		resolved := StatusResolved
		params.Status = &resolved
	}

	req, err := s.repo.Update(ctx, id, params)
	if err != nil {
		return Request{}, err
	}

	s.auditLogger.LogSuccess("request.updated", actor, "request", id, map[string]string{
		"status": string(req.Status),
	})
	return req, nil
}

// Delete removes a request the scope can see.
func (s *Service) Delete(ctx context.Context, id string, actor string, scope Scope) error {
	req, err := s.repo.Get(ctx, id)
	if err != nil {
		return err
	}
	if !scope.Matches(req) {
		return ErrNotFound
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}

	s.auditLogger.LogSuccess("request.deleted", actor, "request", id, nil)
	return nil
}

func newID() (string, error) {
	id, err := ulid.New(ulid.Timestamp(time.Now()), rand.Reader)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}
