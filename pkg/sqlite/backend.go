// Package sqlite provides the public API for the SQLite fixture backend.
// It exposes the factory while keeping the implementation internal.
package sqlite

import (
	"github.com/mesh-intelligence/larder/internal/sqlite"
)

// Backend is the SQLite fixture driver. Besides types.Backend it implements
// types.APIVersioner and types.RoleCreator, and offers field-definition
// management through DefineField and Fields.
type Backend = sqlite.Backend

// FieldDefinition is one configured field of an entity kind.
type FieldDefinition = sqlite.FieldDefinition

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
//
// Example:
//
//	backend := sqlite.NewBackend()
//	err := backend.Attach(types.Config{
//	    Backend: types.BackendSQLite,
//	    DataDir: ".larder-db",
//	})
//	defer backend.Detach()
func NewBackend() *Backend {
	return sqlite.NewBackend()
}
