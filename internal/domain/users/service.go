package users

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/nevermarine/city-backend/internal/audit"
)

// Service handles registration, credential verification, and user lifecycle.
// Plaintext passwords exist only on the stack of Register and Authenticate;
// they are never stored, returned, or logged.
type Service struct {
	repo        Repository
	auditLogger *audit.Logger
	logger      zerolog.Logger
}

func NewService(repo Repository, auditLogger *audit.Logger, logger zerolog.Logger) *Service {
	return &Service{
		repo:        repo,
		auditLogger: auditLogger,
		logger:      logger.With().Str("component", "users").Logger(),
	}
}

type RegisterParams struct {
	Username string
	FullName string
	Email    string
	Password string
}

// Register creates a user together with its hashed credential. Duplicate
// usernames or emails fail with ErrUsernameTaken / ErrEmailTaken; the
// uniqueness race between concurrent registrations is settled by the storage
// layer, not by a lookup here.
func (s *Service) Register(ctx context.Context, params RegisterParams) (User, error) {
	hash, err := hashPassword(params.Password)
	if err != nil {
		return User{}, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.repo.Create(ctx, User{
		Username: params.Username,
		FullName: params.FullName,
		Email:    params.Email,
	}, hash)
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("username", user.Username).Msg("user registered")
	s.auditLogger.LogSuccess("user.created", user.Username, "user", user.Username, map[string]string{
		"email": user.Email,
	})
	return user, nil
}

// Authenticate verifies a username/password pair. Unknown users and wrong
// passwords both return ErrInvalidCredentials so callers cannot probe which
// usernames exist; the unknown-user path still burns a bcrypt compare.
func (s *Service) Authenticate(ctx context.Context, username, password string) (User, error) {
	hash, err := s.repo.CredentialHash(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			checkPassword(dummyHash, password)
			s.auditLogger.LogFailure("user.login", username, nil)
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("load credential: %w", err)
	}

	if !checkPassword(hash, password) {
		s.auditLogger.LogFailure("user.login", username, nil)
		return User{}, ErrInvalidCredentials
	}

	user, err := s.repo.Get(ctx, username)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) {
			s.auditLogger.LogFailure("user.login", username, nil)
			return User{}, ErrInvalidCredentials
		}
		return User{}, fmt.Errorf("load user: %w", err)
	}

	s.auditLogger.LogSuccess("user.login", username, "user", username, nil)
	return user, nil
}

func (s *Service) Get(ctx context.Context, username string) (User, error) {
	return s.repo.Get(ctx, username)
}

func (s *Service) List(ctx context.Context) ([]User, error) {
	return s.repo.List(ctx)
}

// Update patches profile fields. The credential and the username itself are
// not updatable through any operation.
func (s *Service) Update(ctx context.Context, username string, params UpdateParams) (User, error) {
	user, err := s.repo.Update(ctx, username, params)
	if err != nil {
		return User{}, err
	}

	s.auditLogger.LogSuccess("user.updated", username, "user", username, nil)
	return user, nil
}

// Delete removes the user, its credential, and all owned requests in one
// transaction and returns the pre-delete snapshot.
func (s *Service) Delete(ctx context.Context, username string) (User, error) {
	user, err := s.repo.Delete(ctx, username)
	if err != nil {
		return User{}, err
	}

	s.logger.Info().Str("username", username).Msg("user deleted")
	s.auditLogger.LogSuccess("user.deleted", username, "user", username, nil)
	return user, nil
}
