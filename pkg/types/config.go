package types

import "errors"

// Config holds backend selection and parameters for Backend.Attach.
type Config struct {
	Backend string `json:"backend" yaml:"backend"`
	DataDir string `json:"data_dir" yaml:"data_dir"`

	// APIVersion is the major version of the system under test, reported
	// to hooks through APIVersioner. Zero means unknown.
	APIVersion int `json:"api_version" yaml:"api_version"`

	// Fields lists the configured fields per entity kind. These seed the
	// field definitions the driver consults in IsField.
	Fields map[string][]string `json:"fields,omitempty" yaml:"fields,omitempty"`
}

// Supported backend names.
const (
	BackendSQLite = "sqlite"
)

// Config validation errors.
var (
	ErrBackendEmpty   = errors.New("backend must not be empty")
	ErrBackendUnknown = errors.New("unknown backend")
)

// Backend lifecycle errors.
var (
	ErrBackendDetached = errors.New("backend is detached")
	ErrAlreadyAttached = errors.New("backend is already attached")
)

// knownBackends lists the backends that Validate accepts.
var knownBackends = map[string]bool{
	BackendSQLite: true,
}

// Validate checks that the Config is well-formed. It returns a sentinel error
// from this package on failure.
func (c Config) Validate() error {
	if c.Backend == "" {
		return ErrBackendEmpty
	}
	if !knownBackends[c.Backend] {
		return ErrBackendUnknown
	}
	for kind := range c.Fields {
		if _, err := ParseKind(kind); err != nil {
			return err
		}
	}
	return nil
}
