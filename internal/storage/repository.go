// Package storage groups the persistence contracts the domain services run
// against. Two implementations satisfy them: postgres for production and
// memory for tests, per the same create/get/update/delete/list contract.
package storage

import (
	"github.com/nevermarine/city-backend/internal/domain/events"
	"github.com/nevermarine/city-backend/internal/domain/news"
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// Repository groups data access by domain.
type Repository interface {
	Users() users.Repository
	Requests() requests.Repository
	News() news.Repository
	Events() events.Repository
}
