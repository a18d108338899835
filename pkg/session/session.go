package session

import (
	"io"
	"log/slog"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Session is an Authenticator that records the logged-in account in a user
// registry. It has no browser behind it; the runner uses it to drive login
// steps and role checks.
type Session struct {
	users    types.UserRegistry
	loggedIn bool
	logger   *slog.Logger
}

// New creates a logged-out session over the registry. A nil logger discards
// output.
func New(users types.UserRegistry, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Session{
		users:  users,
		logger: logger.With("subsystem", "session"),
	}
}

// LogIn authenticates as user and makes it the current user.
func (s *Session) LogIn(user *types.Entity) error {
	if user == nil {
		return ErrNoUser
	}
	if s.loggedIn {
		if err := s.LogOut(); err != nil {
			return err
		}
	}
	s.users.SetCurrentUser(user)
	s.loggedIn = true
	s.logger.Debug("logged in", "user", user.String(FieldName))
	return nil
}

// LogOut ends the session and clears the current user.
func (s *Session) LogOut() error {
	if !s.loggedIn {
		return nil
	}
	s.users.SetCurrentUser(nil)
	s.loggedIn = false
	s.logger.Debug("logged out")
	return nil
}

// LoggedIn reports whether the session is authenticated.
func (s *Session) LoggedIn() bool {
	return s.loggedIn
}
