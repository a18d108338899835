package hooks

import (
	"fmt"
	"strings"

	"github.com/spf13/cast"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// timestampAPIVersion is the API version that stores node timestamps as
// UNIX seconds.
const timestampAPIVersion = 8

var timestampFields = []string{"changed", "created", "revision_timestamp"}

// NodeTimestamps returns the observer that converts human-readable node
// timestamps into UNIX seconds. It only acts when the owner's driver reports
// API version 8; numeric and empty values are left alone.
func NodeTimestamps() Observer {
	return Func("node_timestamps", func(scope Scope) error {
		if !wantsUnixTimestamps(scope.Owner()) {
			return nil
		}
		node := scope.Entity()
		for _, field := range timestampFields {
			raw, ok := node.Get(field)
			if !ok {
				continue
			}
			s, ok := raw.(string)
			if !ok {
				continue
			}
			s = strings.TrimSpace(s)
			if s == "" {
				continue
			}
			if _, err := cast.ToInt64E(s); err == nil {
				continue
			}
			ts, err := cast.ToTimeE(s)
			if err != nil {
				return fmt.Errorf("node field %s: %w", field, err)
			}
			node.Set(field, ts.Unix())
		}
		return nil
	})
}

func wantsUnixTimestamps(owner Owner) bool {
	if owner == nil {
		return false
	}
	v, ok := owner.Driver().(types.APIVersioner)
	return ok && v.APIVersion() == timestampAPIVersion
}
