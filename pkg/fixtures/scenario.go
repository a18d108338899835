// Package fixtures tracks the entities a scenario creates and tears them
// down when the scenario ends.
//
// A Scenario is created by the runner when a scenario starts and discarded
// after Cleanup. Every create runs the before hooks, parses the raw fields,
// calls the driver, runs the after hooks and records the returned handle.
// Cleanup deletes every recorded handle, kind by kind, and leaves the
// scenario empty for the next one.
package fixtures

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/mesh-intelligence/larder/pkg/fields"
	"github.com/mesh-intelligence/larder/pkg/hooks"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Scenario errors.
var (
	ErrNoDriver       = errors.New("fixtures: driver must not be nil")
	ErrNoUserRegistry = errors.New("fixtures: user registry must not be nil")
	ErrDraining       = errors.New("fixtures: scenario is being cleaned up")
	ErrNoAuth         = errors.New("fixtures: no authenticator configured")
)

// FieldLangcode keys language handles in the registry.
const FieldLangcode = "langcode"

// State is the lifecycle position of a scenario.
type State int

const (
	StateEmpty State = iota
	StatePopulated
	StateDraining
)

func (s State) String() string {
	switch s {
	case StateEmpty:
		return "empty"
	case StatePopulated:
		return "populated"
	case StateDraining:
		return "draining"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

// Options configures a Scenario.
type Options struct {
	// Name labels the scenario in log output.
	Name string

	Driver types.Driver

	// Dispatcher runs creation hooks. Nil means no hooks.
	Dispatcher *hooks.Dispatcher

	// Users is the shared user registry created accounts are added to.
	Users types.UserRegistry

	// Auth is the session collaborator. Optional; without it the scenario
	// is never logged in.
	Auth types.Authenticator

	Logger *slog.Logger
}

// Scenario is the scenario-scoped fixture tracker.
type Scenario struct {
	name       string
	driver     types.Driver
	dispatcher *hooks.Dispatcher
	users      types.UserRegistry
	auth       types.Authenticator
	logger     *slog.Logger

	nodes     []*types.Entity
	terms     []*types.Entity
	roles     []string
	languages *languageSet

	draining bool
	dirty    bool
}

// New creates an empty scenario.
func New(opts Options) (*Scenario, error) {
	if opts.Driver == nil {
		return nil, ErrNoDriver
	}
	if opts.Users == nil {
		return nil, ErrNoUserRegistry
	}
	dispatcher := opts.Dispatcher
	if dispatcher == nil {
		dispatcher = hooks.NewDispatcher()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Scenario{
		name:       opts.Name,
		driver:     opts.Driver,
		dispatcher: dispatcher,
		users:      opts.Users,
		auth:       opts.Auth,
		logger:     logger.With("subsystem", "fixtures", "scenario", opts.Name),
		languages:  newLanguageSet(),
	}, nil
}

// Name returns the scenario label.
func (s *Scenario) Name() string { return s.name }

// Driver returns the persistence driver. It makes the scenario a hooks.Owner.
func (s *Scenario) Driver() types.Driver { return s.driver }

// State reports where the scenario is in its lifecycle.
func (s *Scenario) State() State {
	if s.draining {
		return StateDraining
	}
	if len(s.nodes)+len(s.terms)+len(s.roles)+s.languages.len() > 0 || s.users.HasUsers() {
		return StatePopulated
	}
	return StateEmpty
}

// Nodes returns the tracked content items in creation order.
func (s *Scenario) Nodes() []*types.Entity { return cloneHandles(s.nodes) }

// Terms returns the tracked taxonomy terms in creation order.
func (s *Scenario) Terms() []*types.Entity { return cloneHandles(s.terms) }

// Roles returns the tracked role ids in creation order.
func (s *Scenario) Roles() []string {
	out := make([]string, len(s.roles))
	copy(out, s.roles)
	return out
}

// Languages returns the tracked languages in creation order.
func (s *Scenario) Languages() []*types.Entity { return s.languages.all() }

// Users returns the accounts in the shared user registry.
func (s *Scenario) Users() []*types.Entity { return s.users.Users() }

func cloneHandles(in []*types.Entity) []*types.Entity {
	out := make([]*types.Entity, len(in))
	copy(out, in)
	return out
}

func (s *Scenario) checkWritable() error {
	if s.draining {
		return ErrDraining
	}
	return nil
}

func (s *Scenario) dispatch(stage hooks.Stage, kind types.Kind, entity *types.Entity) error {
	tag, err := hooks.TagFor(stage, kind)
	if err != nil {
		return err
	}
	results, err := s.dispatcher.Dispatch(tag, entity, s)
	for _, failed := range results.Failed() {
		s.logger.Debug("hook failed", "tag", tag, "observer", failed.Observer, "error", failed.Err)
	}
	return err
}

// create runs the shared before hook, parse and save sequence. save returns
// the handle the after hook runs on.
func (s *Scenario) create(kind types.Kind, raw *types.Entity, save func(*types.Entity) (*types.Entity, error)) (*types.Entity, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, types.ErrNilEntity
	}
	if err := s.dispatch(hooks.StageBefore, kind, raw); err != nil {
		return nil, err
	}
	parsed, err := fields.Parse(kind, raw, s.driver.IsField)
	if err != nil {
		return nil, err
	}
	return save(parsed)
}

// afterCreate runs the after hook. The handle is tracked before the error is
// returned, since the driver has already persisted it.
func (s *Scenario) afterCreate(kind types.Kind, handle *types.Entity, track func()) error {
	err := s.dispatch(hooks.StageAfter, kind, handle)
	track()
	s.dirty = true
	if err != nil {
		return err
	}
	s.logger.Debug("created fixture", "kind", kind, "id", handleID(kind, handle))
	return nil
}

// CreateNode creates and tracks a content item.
func (s *Scenario) CreateNode(raw *types.Entity) (*types.Entity, error) {
	saved, err := s.create(types.KindNode, raw, s.driver.CreateNode)
	if err != nil {
		return nil, err
	}
	err = s.afterCreate(types.KindNode, saved, func() { s.nodes = append(s.nodes, saved) })
	return saved, err
}

// CreateTerm creates and tracks a taxonomy term.
func (s *Scenario) CreateTerm(raw *types.Entity) (*types.Entity, error) {
	saved, err := s.create(types.KindTerm, raw, s.driver.CreateTerm)
	if err != nil {
		return nil, err
	}
	err = s.afterCreate(types.KindTerm, saved, func() { s.terms = append(s.terms, saved) })
	return saved, err
}

// CreateUser creates an account and adds it to the shared user registry.
// The driver updates the parsed entity in place, so the returned handle is
// the parsed entity itself.
func (s *Scenario) CreateUser(raw *types.Entity) (*types.Entity, error) {
	user, err := s.create(types.KindUser, raw, func(parsed *types.Entity) (*types.Entity, error) {
		if err := s.driver.UserCreate(parsed); err != nil {
			return nil, err
		}
		return parsed, nil
	})
	if err != nil {
		return nil, err
	}
	err = s.afterCreate(types.KindUser, user, func() { s.users.AddUser(user) })
	return user, err
}

// CreateLanguage enables a language. Language fields are not parsed. When
// the driver reports the language already exists, CreateLanguage returns a
// nil handle: no after hook runs and nothing is tracked.
func (s *Scenario) CreateLanguage(raw *types.Entity) (*types.Entity, error) {
	if err := s.checkWritable(); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, types.ErrNilEntity
	}
	if err := s.dispatch(hooks.StageBefore, types.KindLanguage, raw); err != nil {
		return nil, err
	}
	language, err := s.driver.CreateLanguage(raw)
	if err != nil {
		return nil, err
	}
	if language == nil {
		s.logger.Debug("language already exists", "langcode", raw.String(FieldLangcode))
		return nil, nil
	}
	err = s.afterCreate(types.KindLanguage, language, func() { s.languages.put(language) })
	return language, err
}

// TrackRole records a role created out of band so Cleanup deletes it.
func (s *Scenario) TrackRole(rid string) error {
	if err := s.checkWritable(); err != nil {
		return err
	}
	s.roles = append(s.roles, rid)
	s.dirty = true
	s.logger.Debug("tracking role", "rid", rid)
	return nil
}

func handleID(kind types.Kind, handle *types.Entity) string {
	var field string
	switch kind {
	case types.KindNode:
		field = "nid"
	case types.KindTerm:
		field = "tid"
	case types.KindUser:
		field = "uid"
	case types.KindLanguage:
		field = FieldLangcode
	}
	if id := handle.String(field); id != "" {
		return id
	}
	return handle.String("name")
}
