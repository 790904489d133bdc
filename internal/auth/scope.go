package auth

import (
	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

// VisibleScope decides which requests a resolved user may see: admins see
// every record, everyone else only their own.
func VisibleScope(user users.User) requests.Scope {
	if user.Admin {
		return requests.ScopeAll()
	}
	return requests.ScopeOwner(user.Username)
}
