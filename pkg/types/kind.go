package types

import (
	"errors"
	"fmt"
)

// Kind identifies the entity type of a fixture.
type Kind string

// Fixture kinds. The values match the entity type names the backend uses
// when it answers field-definition queries.
const (
	KindNode     Kind = "node"
	KindUser     Kind = "user"
	KindTerm     Kind = "taxonomy_term"
	KindRole     Kind = "role"
	KindLanguage Kind = "language"
)

// ErrInvalidKind is returned when a kind name is not one of the known kinds.
var ErrInvalidKind = errors.New("invalid entity kind")

// validKinds is the set of recognized kinds.
var validKinds = map[Kind]bool{
	KindNode:     true,
	KindUser:     true,
	KindTerm:     true,
	KindRole:     true,
	KindLanguage: true,
}

// Kinds returns every known kind in teardown order.
func Kinds() []Kind {
	return []Kind{KindNode, KindUser, KindTerm, KindRole, KindLanguage}
}

// ParseKind converts a name to a Kind. The short alias "term" is accepted for
// taxonomy terms.
func ParseKind(name string) (Kind, error) {
	if name == "term" {
		return KindTerm, nil
	}
	k := Kind(name)
	if !validKinds[k] {
		return "", fmt.Errorf("%w: %q", ErrInvalidKind, name)
	}
	return k, nil
}

func (k Kind) String() string {
	return string(k)
}
