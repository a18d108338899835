// Package session tracks the accounts created during a scenario and the
// account the scenario is currently authenticated as.
package session

import (
	"errors"
	"slices"
	"strings"
	"sync"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// ErrNoUser is returned when logging in without an account.
var ErrNoUser = errors.New("no user to log in")

// User fields the registry reads.
const (
	FieldName  = "name"
	FieldRoles = "roles"
)

// roleSeparator separates role names in the roles field and in role queries.
const roleSeparator = ","

// Users is the in-memory user registry. Accounts are kept in creation order
// and keyed by name; adding a second account with the same name replaces the
// first.
type Users struct {
	mu      sync.RWMutex
	order   []string
	byName  map[string]*types.Entity
	current *types.Entity
}

// NewUsers creates an empty registry.
func NewUsers() *Users {
	return &Users{byName: make(map[string]*types.Entity)}
}

// AddUser registers an account.
func (u *Users) AddUser(user *types.Entity) {
	if user == nil {
		return
	}
	u.mu.Lock()
	defer u.mu.Unlock()

	name := user.String(FieldName)
	if _, ok := u.byName[name]; !ok {
		u.order = append(u.order, name)
	}
	u.byName[name] = user
}

// HasUsers reports whether any account is registered.
func (u *Users) HasUsers() bool {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return len(u.order) > 0
}

// Users returns the registered accounts in creation order.
func (u *Users) Users() []*types.Entity {
	u.mu.RLock()
	defer u.mu.RUnlock()

	out := make([]*types.Entity, 0, len(u.order))
	for _, name := range u.order {
		out = append(out, u.byName[name])
	}
	return out
}

// User returns the account registered under name.
func (u *Users) User(name string) (*types.Entity, bool) {
	u.mu.RLock()
	defer u.mu.RUnlock()
	user, ok := u.byName[name]
	return user, ok
}

// ClearUsers forgets every account and the current user.
func (u *Users) ClearUsers() {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.order = nil
	u.byName = make(map[string]*types.Entity)
	u.current = nil
}

// CurrentUser returns the account in use, or nil.
func (u *Users) CurrentUser() *types.Entity {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.current
}

// SetCurrentUser marks the account in use. nil clears it.
func (u *Users) SetCurrentUser(user *types.Entity) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.current = user
}

// CurrentUserHasRole reports whether the current user holds every role in
// the comma-separated list. An empty list is satisfied by any current user.
func (u *Users) CurrentUserHasRole(roles string) bool {
	current := u.CurrentUser()
	if current == nil {
		return false
	}
	held := heldRoles(current)
	for _, want := range SplitRoles(roles) {
		if !slices.Contains(held, want) {
			return false
		}
	}
	return true
}

// heldRoles reads the roles field, which is either the raw comma-separated
// string or a parsed List.
func heldRoles(user *types.Entity) []string {
	v, _ := user.Get(FieldRoles)
	list, ok := v.(types.List)
	if !ok {
		return SplitRoles(user.String(FieldRoles))
	}
	var out []string
	for _, item := range list {
		if s, ok := item.(types.Scalar); ok {
			out = append(out, SplitRoles(string(s))...)
		}
	}
	return out
}

// SplitRoles splits a comma-separated role list, trimming blanks and
// dropping empty names.
func SplitRoles(list string) []string {
	var out []string
	for _, r := range strings.Split(list, roleSeparator) {
		if r = strings.TrimSpace(r); r != "" {
			out = append(out, r)
		}
	}
	return out
}
