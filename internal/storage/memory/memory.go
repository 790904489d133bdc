// Package memory is an in-memory Repository used by tests and local tooling.
// It mirrors the relational schema's guarantees: unique usernames and emails,
// a credential per user, and cascading deletion of owned records.
package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/nevermarine/city-backend/internal/domain/events"
	"github.com/nevermarine/city-backend/internal/domain/news"
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

type Store struct {
	mu          sync.Mutex
	users       map[string]users.User
	credentials map[string]string
	requests    map[string]requests.Request
	news        map[string]news.Article
	events      map[string]events.Event
}

func NewStore() *Store {
	return &Store{
		users:       make(map[string]users.User),
		credentials: make(map[string]string),
		requests:    make(map[string]requests.Request),
		news:        make(map[string]news.Article),
		events:      make(map[string]events.Event),
	}
}

func (s *Store) Users() users.Repository       { return &userRepo{s} }
func (s *Store) Requests() requests.Repository { return &requestRepo{s} }
func (s *Store) News() news.Repository         { return &newsRepo{s} }
func (s *Store) Events() events.Repository     { return &eventRepo{s} }

type userRepo struct{ store *Store }

func (r *userRepo) Create(_ context.Context, user users.User, passwordHash string) (users.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.users[user.Username]; exists {
		return users.User{}, users.ErrUsernameTaken
	}
	for _, existing := range s.users {
		if existing.Email == user.Email {
			return users.User{}, users.ErrEmailTaken
		}
	}

	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now
	s.users[user.Username] = user
	s.credentials[user.Username] = passwordHash
	return user, nil
}

func (r *userRepo) Get(_ context.Context, username string) (users.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}
	return user, nil
}

func (r *userRepo) CredentialHash(_ context.Context, username string) (string, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	hash, ok := s.credentials[username]
	if !ok {
		return "", users.ErrUserNotFound
	}
	return hash, nil
}

func (r *userRepo) List(_ context.Context) ([]users.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]users.User, 0, len(s.users))
	for _, user := range s.users {
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Username < out[j].Username })
	return out, nil
}

func (r *userRepo) Update(_ context.Context, username string, params users.UpdateParams) (users.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}

	if params.Email != nil && *params.Email != user.Email {
		for _, existing := range s.users {
			if existing.Email == *params.Email {
				return users.User{}, users.ErrEmailTaken
			}
		}
		user.Email = *params.Email
	}
	if params.FullName != nil {
		user.FullName = *params.FullName
	}
	if params.Disabled != nil {
		user.Disabled = *params.Disabled
	}
	user.UpdatedAt = time.Now().UTC()
	s.users[username] = user
	return user, nil
}

func (r *userRepo) Delete(_ context.Context, username string) (users.User, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	user, ok := s.users[username]
	if !ok {
		return users.User{}, users.ErrUserNotFound
	}

	delete(s.users, username)
	delete(s.credentials, username)
	for id, req := range s.requests {
		if req.Username == username {
			delete(s.requests, id)
		}
	}
	return user, nil
}

type requestRepo struct{ store *Store }

func (r *requestRepo) Create(_ context.Context, req requests.Request) (requests.Request, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[req.Username]; !ok {
		return requests.Request{}, requests.ErrOwnerNotFound
	}

	now := time.Now().UTC()
	req.CreatedAt = now
	req.UpdatedAt = now
	s.requests[req.ID] = req
	return req, nil
}

func (r *requestRepo) Get(_ context.Context, id string) (requests.Request, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return requests.Request{}, requests.ErrNotFound
	}
	return req, nil
}

func (r *requestRepo) List(_ context.Context, scope requests.Scope) ([]requests.Request, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]requests.Request, 0)
	for _, req := range s.requests {
		if scope.Matches(req) {
			out = append(out, req)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *requestRepo) Update(_ context.Context, id string, params requests.UpdateParams) (requests.Request, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	req, ok := s.requests[id]
	if !ok {
		return requests.Request{}, requests.ErrNotFound
	}
	if req.Status == requests.StatusResolved && params.Status != nil && *params.Status != requests.StatusResolved {
		return requests.Request{}, requests.ErrAlreadyResolved
	}

	if params.Status != nil {
		req.Status = *params.Status
	}
	if params.Response != nil {
		req.Response = params.Response
	}
	req.UpdatedAt = time.Now().UTC()
	s.requests[id] = req
	return req, nil
}

func (r *requestRepo) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.requests[id]; !ok {
		return requests.ErrNotFound
	}
	delete(s.requests, id)
	return nil
}

type newsRepo struct{ store *Store }

func (r *newsRepo) Create(_ context.Context, article news.Article) (news.Article, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	article.CreatedAt = now
	article.UpdatedAt = now
	s.news[article.ID] = article
	return article, nil
}

func (r *newsRepo) Get(_ context.Context, id string) (news.Article, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.news[id]
	if !ok {
		return news.Article{}, news.ErrNotFound
	}
	return article, nil
}

func (r *newsRepo) List(_ context.Context) ([]news.Article, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]news.Article, 0, len(s.news))
	for _, article := range s.news {
		out = append(out, article)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *newsRepo) Update(_ context.Context, id string, params news.UpdateParams) (news.Article, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	article, ok := s.news[id]
	if !ok {
		return news.Article{}, news.ErrNotFound
	}

	if params.Title != nil {
		article.Title = *params.Title
	}
	if params.Body != nil {
		article.Body = *params.Body
	}
	article.UpdatedAt = time.Now().UTC()
	s.news[id] = article
	return article, nil
}

func (r *newsRepo) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.news[id]; !ok {
		return news.ErrNotFound
	}
	delete(s.news, id)
	return nil
}

type eventRepo struct{ store *Store }

func (r *eventRepo) Create(_ context.Context, event events.Event) (events.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	event.CreatedAt = now
	event.UpdatedAt = now
	s.events[event.ID] = event
	return event, nil
}

func (r *eventRepo) Get(_ context.Context, id string) (events.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}
	return event, nil
}

func (r *eventRepo) List(_ context.Context) ([]events.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]events.Event, 0, len(s.events))
	for _, event := range s.events {
		out = append(out, event)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *eventRepo) Update(_ context.Context, id string, params events.UpdateParams) (events.Event, error) {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	event, ok := s.events[id]
	if !ok {
		return events.Event{}, events.ErrNotFound
	}

	if params.Title != nil {
		event.Title = *params.Title
	}
	if params.Description != nil {
		event.Description = *params.Description
	}
	if params.Location != nil {
		event.Location = *params.Location
	}
	if params.StartsAt != nil {
		event.StartsAt = *params.StartsAt
	}
	if params.EndsAt != nil {
		event.EndsAt = params.EndsAt
	}
	event.UpdatedAt = time.Now().UTC()
	s.events[id] = event
	return event, nil
}

func (r *eventRepo) Delete(_ context.Context, id string) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.events[id]; !ok {
		return events.ErrNotFound
	}
	delete(s.events, id)
	return nil
}
