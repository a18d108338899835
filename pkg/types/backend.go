package types

// Backend is a Driver with an explicit connection lifecycle. Callers attach
// to a backend, run scenarios against it, and detach when done.
type Backend interface {
	Driver

	// Attach connects the backend described by config. Creates the DataDir
	// if it does not exist. Returns ErrAlreadyAttached if called while
	// already attached.
	Attach(config Config) error

	// Detach releases backend resources. Idempotent: multiple calls succeed.
	// After Detach, driver calls return ErrBackendDetached.
	Detach() error
}
