package sqlite

import "github.com/mesh-intelligence/larder/pkg/types"

// Schema DDL for the fixture tables. Every fixture table stores the entity
// fields as a JSON object next to its identifier and label.
const (
	createNodes = `CREATE TABLE nodes (
    nid TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createTerms = `CREATE TABLE terms (
    tid TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createUsers = `CREATE TABLE users (
    uid TEXT PRIMARY KEY,
    label TEXT NOT NULL UNIQUE,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createRoles = `CREATE TABLE roles (
    rid TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createLanguages = `CREATE TABLE languages (
    langcode TEXT PRIMARY KEY,
    label TEXT NOT NULL,
    fields TEXT NOT NULL,
    created_at TEXT NOT NULL
);`

	createFieldConfig = `CREATE TABLE field_config (
    entity_type TEXT NOT NULL,
    field_name TEXT NOT NULL,
    created_at TEXT NOT NULL,
    PRIMARY KEY (entity_type, field_name)
);`
)

// Index DDL.
const (
	idxTermsLabel      = `CREATE INDEX idx_terms_label ON terms(label);`
	idxFieldConfigType = `CREATE INDEX idx_field_config_type ON field_config(entity_type);`
)

// schemaDDL lists all CREATE TABLE statements.
var schemaDDL = []string{
	createNodes,
	createTerms,
	createUsers,
	createRoles,
	createLanguages,
	createFieldConfig,
}

// indexDDL lists all CREATE INDEX statements.
var indexDDL = []string{
	idxTermsLabel,
	idxFieldConfigType,
}

// fixtureTable describes where a kind is stored.
type fixtureTable struct {
	name       string // SQL table name
	idColumn   string // primary key column, also the handle field
	labelField string // entity field copied into the label column
}

var fixtureTables = map[types.Kind]fixtureTable{
	types.KindNode:     {name: "nodes", idColumn: "nid", labelField: "title"},
	types.KindTerm:     {name: "terms", idColumn: "tid", labelField: "name"},
	types.KindUser:     {name: "users", idColumn: "uid", labelField: "name"},
	types.KindRole:     {name: "roles", idColumn: "rid", labelField: "label"},
	types.KindLanguage: {name: "languages", idColumn: "langcode", labelField: "name"},
}

func tableFor(kind types.Kind) (fixtureTable, error) {
	t, ok := fixtureTables[kind]
	if !ok {
		return fixtureTable{}, types.ErrInvalidKind
	}
	return t, nil
}
