// Package sqlite implements the fixture driver over an embedded SQLite
// database. Each Attach starts from a fresh database file in the data
// directory; field definitions survive across runs in fields.jsonl.
package sqlite

import (
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/mesh-intelligence/larder/internal/paths"
	"github.com/mesh-intelligence/larder/pkg/types"
)

// Backend implements types.Backend using SQLite. Account deletions are
// deferred until ProcessBatch, and field definitions are answered from a
// static cache until ClearStaticCaches.
type Backend struct {
	mu       sync.RWMutex
	attached bool
	config   types.Config
	db       *sql.DB

	// Deferred operations flushed by ProcessBatch and Detach.
	pendingWrites []pendingWrite
	batchMu       sync.Mutex

	// Static field-definition cache, loaded per kind on first use.
	fieldCache map[types.Kind]map[string]bool
	cacheMu    sync.Mutex
}

// pendingWrite is a deferred database operation.
type pendingWrite struct {
	kind      types.Kind
	operation string
	id        string
	apply     func() error
}

// NewBackend creates a new SQLite backend instance.
// The backend is not attached; call Attach with a Config to initialize.
func NewBackend() *Backend {
	return &Backend{
		fieldCache: make(map[types.Kind]map[string]bool),
	}
}

// Attach initializes the backend with the given configuration.
// Creates DataDir if it does not exist, creates a fresh schema and seeds the
// field definitions from the config and fields.jsonl.
// Returns ErrAlreadyAttached if already attached.
func (b *Backend) Attach(config types.Config) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.attached {
		return types.ErrAlreadyAttached
	}
	if err := config.Validate(); err != nil {
		return err
	}

	dataDir := config.DataDir
	if dataDir == "" {
		dataDir = "."
	}
	if err := os.MkdirAll(dataDir, 0755); err != nil {
		return err
	}
	config.DataDir = dataDir

	// Fixtures never outlive a run, so every attach starts from an empty
	// database.
	dbPath := filepath.Join(dataDir, paths.DatabaseName)
	_ = os.Remove(dbPath)

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(1)

	for _, ddl := range append(append([]string{}, schemaDDL...), indexDDL...) {
		if _, err := db.Exec(ddl); err != nil {
			db.Close()
			return fmt.Errorf("create schema: %w", err)
		}
	}

	b.db = db
	b.config = config
	b.pendingWrites = nil
	b.resetFieldCache()

	if err := b.seedFields(); err != nil {
		db.Close()
		b.db = nil
		return fmt.Errorf("seed fields: %w", err)
	}

	b.attached = true
	return nil
}

// Detach releases all resources held by the backend.
// Flushes pending writes, then closes the SQLite connection. After Detach,
// all operations return ErrBackendDetached. Detach is idempotent.
func (b *Backend) Detach() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	if !b.attached {
		return nil
	}

	flushErr := b.flushPendingWrites()

	if b.db != nil {
		if err := b.db.Close(); err != nil {
			return errors.Join(flushErr, err)
		}
		b.db = nil
	}
	b.attached = false
	b.resetFieldCache()

	if flushErr != nil {
		return fmt.Errorf("flush pending writes: %w", flushErr)
	}
	return nil
}

// APIVersion returns the configured API version of the system under test.
func (b *Backend) APIVersion() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.APIVersion
}

// DataDir returns the directory the backend is attached to.
func (b *Backend) DataDir() string {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.config.DataDir
}

// ProcessBatch flushes the deferred operations. Every queued operation is
// attempted; failures are returned joined.
func (b *Backend) ProcessBatch() error {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.attached {
		return types.ErrBackendDetached
	}
	return b.flushPendingWrites()
}

// Pending returns the number of queued operations.
func (b *Backend) Pending() int {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()
	return len(b.pendingWrites)
}

// queueWrite adds a deferred operation. The caller must hold b.mu.
func (b *Backend) queueWrite(kind types.Kind, operation, id string, apply func() error) {
	b.batchMu.Lock()
	defer b.batchMu.Unlock()

	b.pendingWrites = append(b.pendingWrites, pendingWrite{
		kind:      kind,
		operation: operation,
		id:        id,
		apply:     apply,
	})
}

// flushPendingWrites runs and clears the queue. The caller must hold b.mu.
func (b *Backend) flushPendingWrites() error {
	b.batchMu.Lock()
	pending := b.pendingWrites
	b.pendingWrites = nil
	b.batchMu.Unlock()

	var errs []error
	for _, pw := range pending {
		if err := pw.apply(); err != nil {
			errs = append(errs, fmt.Errorf("flush %s %s %s: %w", pw.operation, pw.kind, pw.id, err))
		}
	}
	return errors.Join(errs...)
}

// generateUUID generates a new UUID v7 for entity IDs.
func generateUUID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
