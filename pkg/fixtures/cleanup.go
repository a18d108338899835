package fixtures

import (
	"errors"
	"fmt"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Cleanup tears the scenario down. Every kind is cleaned independently in
// teardown order, then the driver's static caches are cleared. Failures do
// not stop the remaining deletions; they are returned joined. The registries
// are empty afterwards even when deletions failed.
//
// Cleanup on a scenario that tracked nothing since the last Cleanup does
// nothing and returns nil.
func (s *Scenario) Cleanup() error {
	if !s.dirty && s.State() == StateEmpty {
		return nil
	}
	s.draining = true
	defer func() {
		s.draining = false
		s.dirty = false
	}()

	var errs []error
	for _, kind := range types.Kinds() {
		if err := s.cleanKind(kind); err != nil {
			errs = append(errs, err)
		}
	}
	if err := s.ClearStaticCaches(); err != nil {
		errs = append(errs, err)
	}

	err := errors.Join(errs...)
	if err != nil {
		s.logger.Warn("cleanup incomplete", "error", err)
	} else {
		s.logger.Debug("cleanup complete")
	}
	return err
}

func (s *Scenario) cleanKind(kind types.Kind) error {
	switch kind {
	case types.KindNode:
		return s.CleanNodes()
	case types.KindUser:
		return s.CleanUsers()
	case types.KindTerm:
		return s.CleanTerms()
	case types.KindRole:
		return s.CleanRoles()
	case types.KindLanguage:
		return s.CleanLanguages()
	default:
		return fmt.Errorf("%w: %s", types.ErrInvalidKind, kind)
	}
}

// deleteAll calls del for every handle and joins the failures.
func deleteAll[T any](kind types.Kind, handles []T, id func(T) string, del func(T) error) error {
	var errs []error
	for _, h := range handles {
		if err := del(h); err != nil {
			errs = append(errs, fmt.Errorf("delete %s %s: %w", kind, id(h), err))
		}
	}
	return errors.Join(errs...)
}

func entityID(kind types.Kind) func(*types.Entity) string {
	return func(e *types.Entity) string { return handleID(kind, e) }
}

// CleanNodes deletes every tracked content item and empties the registry.
func (s *Scenario) CleanNodes() error {
	nodes := s.nodes
	s.nodes = nil
	return deleteAll(types.KindNode, nodes, entityID(types.KindNode), s.driver.NodeDelete)
}

// CleanTerms deletes every tracked taxonomy term and empties the registry.
func (s *Scenario) CleanTerms() error {
	terms := s.terms
	s.terms = nil
	return deleteAll(types.KindTerm, terms, entityID(types.KindTerm), s.driver.TermDelete)
}

// CleanRoles deletes every tracked role and empties the registry.
func (s *Scenario) CleanRoles() error {
	roles := s.roles
	s.roles = nil
	return deleteAll(types.KindRole, roles, func(rid string) string { return rid }, s.driver.RoleDelete)
}

// CleanUsers deletes every account in the user registry, flushes the driver
// batch, logs the session out if it is authenticated and clears the user
// registry. It does nothing when the registry is empty.
func (s *Scenario) CleanUsers() error {
	if !s.users.HasUsers() {
		return nil
	}
	errs := []error{
		deleteAll(types.KindUser, s.users.Users(), entityID(types.KindUser), s.driver.UserDelete),
	}
	if err := s.driver.ProcessBatch(); err != nil {
		errs = append(errs, fmt.Errorf("process batch: %w", err))
	}
	if s.auth != nil && s.auth.LoggedIn() {
		if err := s.auth.LogOut(); err != nil {
			errs = append(errs, fmt.Errorf("log out: %w", err))
		}
	}
	s.users.ClearUsers()
	return errors.Join(errs...)
}

// CleanLanguages deletes every tracked language, removing each from the
// registry by langcode as it goes.
func (s *Scenario) CleanLanguages() error {
	var errs []error
	for _, language := range s.languages.all() {
		if err := s.driver.LanguageDelete(language); err != nil {
			errs = append(errs, fmt.Errorf("delete %s %s: %w", types.KindLanguage, language.String(FieldLangcode), err))
		}
		s.languages.remove(language.String(FieldLangcode))
	}
	return errors.Join(errs...)
}

// ClearStaticCaches forwards to the driver.
func (s *Scenario) ClearStaticCaches() error {
	if err := s.driver.ClearStaticCaches(); err != nil {
		return fmt.Errorf("clear static caches: %w", err)
	}
	return nil
}

// languageSet keeps languages keyed by langcode in insertion order.
type languageSet struct {
	order  []string
	byCode map[string]*types.Entity
}

func newLanguageSet() *languageSet {
	return &languageSet{byCode: make(map[string]*types.Entity)}
}

func (l *languageSet) put(language *types.Entity) {
	code := language.String(FieldLangcode)
	if _, ok := l.byCode[code]; !ok {
		l.order = append(l.order, code)
	}
	l.byCode[code] = language
}

func (l *languageSet) remove(code string) {
	if _, ok := l.byCode[code]; !ok {
		return
	}
	delete(l.byCode, code)
	for i, c := range l.order {
		if c == code {
			l.order = append(l.order[:i:i], l.order[i+1:]...)
			break
		}
	}
}

func (l *languageSet) len() int { return len(l.order) }

func (l *languageSet) all() []*types.Entity {
	out := make([]*types.Entity, 0, len(l.order))
	for _, code := range l.order {
		out = append(out, l.byCode[code])
	}
	return out
}
