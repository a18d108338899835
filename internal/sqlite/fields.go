package sqlite

import (
	"errors"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// FieldDefinition is one configured field of an entity kind, as stored in
// fields.jsonl.
type FieldDefinition struct {
	EntityType string `json:"entity_type"`
	FieldName  string `json:"field_name"`
}

// IsField reports whether name is a configured field of the kind. Answers
// come from the static cache, which is filled from field_config on the first
// lookup per kind.
func (b *Backend) IsField(kind types.Kind, name string) bool {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return false
	}
	set, err := b.cachedFields(kind)
	if err != nil {
		return false
	}
	return set[name]
}

// ClearStaticCaches drops the field-definition cache.
func (b *Backend) ClearStaticCaches() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	b.resetFieldCache()
	return nil
}

// DefineField adds a field definition and persists the full set to
// fields.jsonl. Defining an existing field is a no-op. The static cache is
// not touched, so a kind that was already looked up only sees the new field
// after ClearStaticCaches.
func (b *Backend) DefineField(kind types.Kind, name string) error {
	if name == "" {
		return fmt.Errorf("%w: field name is required", types.ErrInvalidData)
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	added, err := b.insertField(kind, name)
	if err != nil || !added {
		return err
	}
	return b.persistFields()
}

// Fields returns the field definitions from the database, sorted by kind and
// name. It bypasses the static cache.
func (b *Backend) Fields() ([]FieldDefinition, error) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	return b.queryFields()
}

func (b *Backend) resetFieldCache() {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()
	b.fieldCache = make(map[types.Kind]map[string]bool)
}

// cachedFields returns the cached field set of a kind, loading it on a miss.
// The caller must hold b.mu.
func (b *Backend) cachedFields(kind types.Kind) (map[string]bool, error) {
	b.cacheMu.Lock()
	defer b.cacheMu.Unlock()

	if set, ok := b.fieldCache[kind]; ok {
		return set, nil
	}
	rows, err := b.db.Query("SELECT field_name FROM field_config WHERE entity_type = ?", string(kind))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, err
		}
		set[name] = true
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	b.fieldCache[kind] = set
	return set, nil
}

// seedFields loads definitions from fields.jsonl and the config, then writes
// the merged set back so the file always reflects the configured fields.
// The caller must hold b.mu write lock.
func (b *Backend) seedFields() error {
	path := paths.FieldsFile(b.config.DataDir)
	defs, err := readJSONL[FieldDefinition](path)
	if err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	for kindName, names := range b.config.Fields {
		kind, err := types.ParseKind(kindName)
		if err != nil {
			return err
		}
		for _, name := range names {
			defs = append(defs, FieldDefinition{EntityType: string(kind), FieldName: name})
		}
	}
	for _, d := range defs {
		kind, err := types.ParseKind(d.EntityType)
		if err != nil || d.FieldName == "" {
			continue
		}
		if _, err := b.insertField(kind, d.FieldName); err != nil {
			return err
		}
	}
	return b.persistFields()
}

func (b *Backend) insertField(kind types.Kind, name string) (bool, error) {
	res, err := b.db.Exec(
		"INSERT OR IGNORE INTO field_config (entity_type, field_name, created_at) VALUES (?, ?, ?)",
		string(kind), name, time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return false, fmt.Errorf("insert field %s.%s: %w", kind, name, err)
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

func (b *Backend) queryFields() ([]FieldDefinition, error) {
	rows, err := b.db.Query("SELECT entity_type, field_name FROM field_config")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var defs []FieldDefinition
	for rows.Next() {
		var d FieldDefinition
		if err := rows.Scan(&d.EntityType, &d.FieldName); err != nil {
			return nil, err
		}
		defs = append(defs, d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	sort.Slice(defs, func(i, j int) bool {
		if defs[i].EntityType != defs[j].EntityType {
			return defs[i].EntityType < defs[j].EntityType
		}
		return defs[i].FieldName < defs[j].FieldName
	})
	return defs, nil
}

func (b *Backend) persistFields() error {
	defs, err := b.queryFields()
	if err != nil {
		return err
	}
	return writeJSONL(paths.FieldsFile(b.config.DataDir), defs)
}
