package auth

import (
	"testing"

	"github.com/nevermarine/city-backend/internal/domain/requests"
	"github.com/nevermarine/city-backend/internal/domain/users"
)

func TestVisibleScope(t *testing.T) {
	own := requests.Request{ID: "1", Username: "maxim"}
	other := requests.Request{ID: "2", Username: "darinka"}

	scope := VisibleScope(users.User{Username: "maxim"})
	if !scope.Matches(own) {
		t.Error("non-admin scope should match own request")
	}
	if scope.Matches(other) {
		t.Error("non-admin scope should not match another user's request")
	}

	adminScope := VisibleScope(users.User{Username: "darinka", Admin: true})
	if !adminScope.Matches(own) || !adminScope.Matches(other) {
		t.Error("admin scope should match every request")
	}
}

func TestZeroScopeMatchesNothing(t *testing.T) {
	var scope requests.Scope
	if scope.Matches(requests.Request{ID: "1", Username: "maxim"}) {
		t.Error("zero scope must not match any request")
	}
}
