package fixtures

import "github.com/mesh-intelligence/larder/pkg/types"

// LogIn authenticates the scenario as user.
func (s *Scenario) LogIn(user *types.Entity) error {
	if s.auth == nil {
		return ErrNoAuth
	}
	return s.auth.LogIn(user)
}

// LogOut ends the scenario's session.
func (s *Scenario) LogOut() error {
	if s.auth == nil {
		return ErrNoAuth
	}
	return s.auth.LogOut()
}

// LoggedIn reports whether the scenario has an authenticated session.
func (s *Scenario) LoggedIn() bool {
	return s.auth != nil && s.auth.LoggedIn()
}

// LoggedInWithRole reports whether the session is authenticated as a user
// holding every role in the comma-separated list.
func (s *Scenario) LoggedInWithRole(roles string) bool {
	return s.LoggedIn() && s.users.CurrentUserHasRole(roles)
}
