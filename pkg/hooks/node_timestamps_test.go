package hooks

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// fakeOwner exposes a driver that optionally reports an API version.
type fakeOwner struct {
	driver types.Driver
}

func (o *fakeOwner) Driver() types.Driver { return o.driver }

type versionedDriver struct {
	types.Driver
	version int
}

func (d versionedDriver) APIVersion() int { return d.version }

func TestNodeTimestamps(t *testing.T) {
	created := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

	tests := []struct {
		name    string
		owner   Owner
		node    *types.Entity
		want    map[string]any
		wantErr bool
	}{
		{
			name:  "version 8 converts dates",
			owner: &fakeOwner{driver: versionedDriver{version: 8}},
			node: types.EntityOf(
				"title", "T",
				"created", "2024-03-01T12:00:00Z",
				"changed", "2024-03-01 12:00:00",
			),
			want: map[string]any{
				"title":   "T",
				"created": created.Unix(),
				"changed": created.Unix(),
			},
		},
		{
			name:  "numeric and empty values are kept",
			owner: &fakeOwner{driver: versionedDriver{version: 8}},
			node:  types.EntityOf("created", "1709294400", "changed", ""),
			want:  map[string]any{"created": "1709294400", "changed": ""},
		},
		{
			name:  "other versions are untouched",
			owner: &fakeOwner{driver: versionedDriver{version: 7}},
			node:  types.EntityOf("created", "2024-03-01T12:00:00Z"),
			want:  map[string]any{"created": "2024-03-01T12:00:00Z"},
		},
		{
			name:  "drivers without a version are untouched",
			owner: &fakeOwner{},
			node:  types.EntityOf("created", "2024-03-01T12:00:00Z"),
			want:  map[string]any{"created": "2024-03-01T12:00:00Z"},
		},
		{
			name:  "nil owner is untouched",
			owner: nil,
			node:  types.EntityOf("created", "2024-03-01T12:00:00Z"),
			want:  map[string]any{"created": "2024-03-01T12:00:00Z"},
		},
		{
			name:    "unparseable date fails",
			owner:   &fakeOwner{driver: versionedDriver{version: 8}},
			node:    types.EntityOf("revision_timestamp", "not a date"),
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NodeTimestamps().Observe(NewScope(BeforeNodeCreate, tt.node, tt.owner))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			for field, want := range tt.want {
				got, _ := tt.node.Get(field)
				assert.Equal(t, want, got, field)
			}
		})
	}
}
