package sqlite

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// CreateNode saves a content item and returns a copy carrying its nid.
func (b *Backend) CreateNode(node *types.Entity) (*types.Entity, error) {
	return b.insertCopy(types.KindNode, node)
}

// CreateTerm saves a taxonomy term and returns a copy carrying its tid.
func (b *Backend) CreateTerm(term *types.Entity) (*types.Entity, error) {
	return b.insertCopy(types.KindTerm, term)
}

// UserCreate saves an account and sets its uid on the entity.
func (b *Backend) UserCreate(user *types.Entity) error {
	if user == nil {
		return types.ErrNilEntity
	}
	if user.String("name") == "" {
		return fmt.Errorf("%w: user name is required", types.ErrInvalidData)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	uid := generateUUID()
	if err := b.insert(types.KindUser, uid, user); err != nil {
		return err
	}
	user.Set("uid", uid)
	return nil
}

// CreateLanguage enables a language keyed by its langcode. It returns a nil
// handle when the language is already enabled.
func (b *Backend) CreateLanguage(language *types.Entity) (*types.Entity, error) {
	if language == nil {
		return nil, types.ErrNilEntity
	}
	code := language.String("langcode")
	if code == "" {
		return nil, fmt.Errorf("%w: langcode is required", types.ErrInvalidData)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	exists, err := b.exists(types.KindLanguage, code)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, nil
	}
	if err := b.insert(types.KindLanguage, code, language); err != nil {
		return nil, err
	}
	return language.Clone(), nil
}

// CreateRole saves a role under rid.
func (b *Backend) CreateRole(rid, label string) error {
	if rid == "" {
		return fmt.Errorf("%w: role id is required", types.ErrInvalidData)
	}
	if label == "" {
		label = rid
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	return b.insert(types.KindRole, rid, types.EntityOf("rid", rid, "label", label))
}

// NodeDelete removes a content item by nid.
func (b *Backend) NodeDelete(node *types.Entity) error {
	return b.deleteHandle(types.KindNode, node)
}

// TermDelete removes a taxonomy term by tid.
func (b *Backend) TermDelete(term *types.Entity) error {
	return b.deleteHandle(types.KindTerm, term)
}

// LanguageDelete disables a language by langcode.
func (b *Backend) LanguageDelete(language *types.Entity) error {
	return b.deleteHandle(types.KindLanguage, language)
}

// RoleDelete removes a role.
func (b *Backend) RoleDelete(rid string) error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	return b.deleteRow(types.KindRole, rid)
}

// UserDelete queues the removal of an account. The row is deleted by the
// next ProcessBatch.
func (b *Backend) UserDelete(user *types.Entity) error {
	if user == nil {
		return types.ErrNilEntity
	}
	uid := user.String("uid")
	if uid == "" {
		return fmt.Errorf("%w: user has no uid", types.ErrInvalidData)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	b.queueWrite(types.KindUser, "delete", uid, func() error {
		return b.deleteRow(types.KindUser, uid)
	})
	return nil
}

// Get loads a stored fixture by id.
func (b *Backend) Get(kind types.Kind, id string) (*types.Entity, error) {
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}

	var raw string
	row := b.db.QueryRow(fmt.Sprintf("SELECT fields FROM %s WHERE %s = ?", t.name, t.idColumn), id)
	if err := row.Scan(&raw); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("%w: %s %s", types.ErrNotFound, kind, id)
		}
		return nil, err
	}
	e := types.NewEntity()
	if err := json.Unmarshal([]byte(raw), e); err != nil {
		return nil, fmt.Errorf("%w: %s %s: %v", types.ErrInvalidData, kind, id, err)
	}
	e.Set(t.idColumn, id)
	return e, nil
}

// Count returns the number of stored fixtures of a kind.
func (b *Backend) Count(kind types.Kind) (int, error) {
	t, err := tableFor(kind)
	if err != nil {
		return 0, err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return 0, types.ErrBackendDetached
	}
	var n int
	if err := b.db.QueryRow("SELECT COUNT(*) FROM " + t.name).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (b *Backend) insertCopy(kind types.Kind, e *types.Entity) (*types.Entity, error) {
	if e == nil {
		return nil, types.ErrNilEntity
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return nil, types.ErrBackendDetached
	}
	t, err := tableFor(kind)
	if err != nil {
		return nil, err
	}
	id := generateUUID()
	if err := b.insert(kind, id, e); err != nil {
		return nil, err
	}
	saved := e.Clone()
	saved.Set(t.idColumn, id)
	return saved, nil
}

// insert writes one row. The caller must hold b.mu.
func (b *Backend) insert(kind types.Kind, id string, e *types.Entity) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	data, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("%w: %v", types.ErrInvalidData, err)
	}
	label := e.String(t.labelField)
	if label == "" {
		label = id
	}
	_, err = b.db.Exec(
		fmt.Sprintf("INSERT INTO %s (%s, label, fields, created_at) VALUES (?, ?, ?, ?)", t.name, t.idColumn),
		id, label, string(data), time.Now().UTC().Format(time.RFC3339),
	)
	if err != nil {
		return fmt.Errorf("insert %s: %w", kind, err)
	}
	return nil
}

func (b *Backend) exists(kind types.Kind, id string) (bool, error) {
	t, err := tableFor(kind)
	if err != nil {
		return false, err
	}
	var n int
	err = b.db.QueryRow(fmt.Sprintf("SELECT COUNT(*) FROM %s WHERE %s = ?", t.name, t.idColumn), id).Scan(&n)
	return n > 0, err
}

func (b *Backend) deleteHandle(kind types.Kind, handle *types.Entity) error {
	if handle == nil {
		return types.ErrNilEntity
	}
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	id := handle.String(t.idColumn)
	if id == "" {
		return fmt.Errorf("%w: %s has no %s", types.ErrInvalidData, kind, t.idColumn)
	}
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	return b.deleteRow(kind, id)
}

// deleteRow removes one row and reports ErrNotFound when nothing matched.
// The caller must hold b.mu.
func (b *Backend) deleteRow(kind types.Kind, id string) error {
	t, err := tableFor(kind)
	if err != nil {
		return err
	}
	res, err := b.db.Exec(fmt.Sprintf("DELETE FROM %s WHERE %s = ?", t.name, t.idColumn), id)
	if err != nil {
		return fmt.Errorf("delete %s: %w", kind, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", types.ErrNotFound, kind, id)
	}
	return nil
}
