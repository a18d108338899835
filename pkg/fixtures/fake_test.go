package fixtures

import (
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// fakeDriver records every call and assigns sequential ids.
type fakeDriver struct {
	fields  map[types.Kind][]string
	calls   []string
	nextID  int
	version int

	failDelete map[string]error
	failCreate error
	existing   map[string]bool
	onDelete   func()
}

func newFakeDriver() *fakeDriver {
	return &fakeDriver{
		fields:     map[types.Kind][]string{},
		failDelete: map[string]error{},
		existing:   map[string]bool{},
	}
}

func (d *fakeDriver) record(format string, args ...any) {
	d.calls = append(d.calls, fmt.Sprintf(format, args...))
}

func (d *fakeDriver) id() string {
	d.nextID++
	return fmt.Sprint(d.nextID)
}

func (d *fakeDriver) save(kind, idField string, e *types.Entity) (*types.Entity, error) {
	if d.failCreate != nil {
		return nil, d.failCreate
	}
	saved := e.Clone()
	saved.Set(idField, d.id())
	d.record("create %s %s", kind, saved.String(idField))
	return saved, nil
}

func (d *fakeDriver) CreateNode(node *types.Entity) (*types.Entity, error) {
	return d.save("node", "nid", node)
}

func (d *fakeDriver) CreateTerm(term *types.Entity) (*types.Entity, error) {
	return d.save("term", "tid", term)
}

func (d *fakeDriver) UserCreate(user *types.Entity) error {
	if d.failCreate != nil {
		return d.failCreate
	}
	user.Set("uid", d.id())
	d.record("create user %s", user.String("uid"))
	return nil
}

func (d *fakeDriver) CreateLanguage(language *types.Entity) (*types.Entity, error) {
	code := language.String("langcode")
	if d.existing[code] {
		return nil, nil
	}
	d.record("create language %s", code)
	return language.Clone(), nil
}

func (d *fakeDriver) del(key string) error {
	d.record("delete %s", key)
	if d.onDelete != nil {
		d.onDelete()
	}
	return d.failDelete[key]
}

func (d *fakeDriver) NodeDelete(node *types.Entity) error {
	return d.del("node " + node.String("nid"))
}

func (d *fakeDriver) TermDelete(term *types.Entity) error {
	return d.del("term " + term.String("tid"))
}

func (d *fakeDriver) UserDelete(user *types.Entity) error {
	return d.del("user " + user.String("uid"))
}

func (d *fakeDriver) RoleDelete(rid string) error {
	return d.del("role " + rid)
}

func (d *fakeDriver) LanguageDelete(language *types.Entity) error {
	return d.del("language " + language.String("langcode"))
}

func (d *fakeDriver) IsField(kind types.Kind, name string) bool {
	for _, f := range d.fields[kind] {
		if f == name {
			return true
		}
	}
	return false
}

func (d *fakeDriver) ProcessBatch() error {
	d.record("process batch")
	return nil
}

func (d *fakeDriver) ClearStaticCaches() error {
	d.record("clear caches")
	return nil
}

func (d *fakeDriver) APIVersion() int { return d.version }

// fakeUsers is a minimal user registry.
type fakeUsers struct {
	users   []*types.Entity
	current *types.Entity
	roles   map[string]bool
}

func (u *fakeUsers) AddUser(user *types.Entity)     { u.users = append(u.users, user) }
func (u *fakeUsers) HasUsers() bool                 { return len(u.users) > 0 }
func (u *fakeUsers) Users() []*types.Entity         { return u.users }
func (u *fakeUsers) ClearUsers()                    { u.users = nil }
func (u *fakeUsers) CurrentUser() *types.Entity     { return u.current }
func (u *fakeUsers) SetCurrentUser(e *types.Entity) { u.current = e }

func (u *fakeUsers) CurrentUserHasRole(roles string) bool {
	return u.current != nil && u.roles[roles]
}

// fakeAuth records logins against the driver call log.
type fakeAuth struct {
	driver   *fakeDriver
	loggedIn bool
}

func (a *fakeAuth) LogIn(user *types.Entity) error {
	a.loggedIn = true
	a.driver.record("log in %s", user.String("uid"))
	return nil
}

func (a *fakeAuth) LogOut() error {
	a.loggedIn = false
	a.driver.record("log out")
	return nil
}

func (a *fakeAuth) LoggedIn() bool { return a.loggedIn }
