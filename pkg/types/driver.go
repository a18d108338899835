package types

// Driver persists and removes fixtures in the system under test. All calls
// are synchronous; errors are specific to the implementation and callers
// propagate them unchanged.
type Driver interface {
	// CreateNode saves a content item and returns the saved handle.
	CreateNode(node *Entity) (*Entity, error)

	// CreateTerm saves a taxonomy term and returns the saved handle.
	CreateTerm(term *Entity) (*Entity, error)

	// UserCreate saves an account. The entity is updated in place with the
	// identifiers the backend assigned.
	UserCreate(user *Entity) error

	// CreateLanguage enables a language and returns its handle. It returns
	// a nil handle and no error when the language already exists.
	CreateLanguage(language *Entity) (*Entity, error)

	NodeDelete(node *Entity) error
	TermDelete(term *Entity) error
	UserDelete(user *Entity) error
	RoleDelete(rid string) error
	LanguageDelete(language *Entity) error

	// IsField reports whether name is a configured field of the entity kind.
	// Only fields the driver recognizes are parsed into structured values.
	IsField(kind Kind, name string) bool

	// ProcessBatch flushes deferred operations, such as queued account
	// deletions.
	ProcessBatch() error

	// ClearStaticCaches drops any per-process caches the driver keeps.
	ClearStaticCaches() error
}

// APIVersioner is implemented by drivers that know the major API version of
// the system under test.
type APIVersioner interface {
	APIVersion() int
}

// RoleCreator is implemented by drivers that can create roles. Role creation
// happens outside the fixture tracker; only deletion is tracked.
type RoleCreator interface {
	CreateRole(rid, label string) error
}

// Authenticator manages the browser session of the scenario.
type Authenticator interface {
	LogIn(user *Entity) error
	LogOut() error
	LoggedIn() bool
}

// UserRegistry holds the accounts created during a scenario. It is shared by
// everything that needs to look up the current user or test role membership.
type UserRegistry interface {
	AddUser(user *Entity)
	HasUsers() bool
	Users() []*Entity
	ClearUsers()
	CurrentUser() *Entity
	SetCurrentUser(user *Entity)

	// CurrentUserHasRole reports whether the current user holds every role
	// in the comma-separated list.
	CurrentUserHasRole(roles string) bool
}
