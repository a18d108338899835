// Package hooks dispatches before/after observers around fixture creation.
//
// Observers are registered against a closed set of tags, one per lifecycle
// stage and entity kind. A dispatch runs every observer for the tag and only
// then reports the first failure, so all observers see the event even when
// an earlier one fails.
package hooks

import (
	"errors"
	"fmt"
	"slices"

	"github.com/mesh-intelligence/larder/pkg/types"
)

// Stage is the point in a creation event at which a hook runs.
type Stage string

const (
	StageBefore Stage = "before"
	StageAfter  Stage = "after"
)

// Tag identifies the scope an observer is registered for.
type Tag string

// Known tags.
const (
	BeforeNodeCreate     Tag = "before_node_create"
	AfterNodeCreate      Tag = "after_node_create"
	BeforeUserCreate     Tag = "before_user_create"
	AfterUserCreate      Tag = "after_user_create"
	BeforeTermCreate     Tag = "before_term_create"
	AfterTermCreate      Tag = "after_term_create"
	BeforeLanguageCreate Tag = "before_language_create"
	AfterLanguageCreate  Tag = "after_language_create"
)

type tagInfo struct {
	stage Stage
	kind  types.Kind
}

var tagRegistry = map[Tag]tagInfo{
	BeforeNodeCreate:     {StageBefore, types.KindNode},
	AfterNodeCreate:      {StageAfter, types.KindNode},
	BeforeUserCreate:     {StageBefore, types.KindUser},
	AfterUserCreate:      {StageAfter, types.KindUser},
	BeforeTermCreate:     {StageBefore, types.KindTerm},
	AfterTermCreate:      {StageAfter, types.KindTerm},
	BeforeLanguageCreate: {StageBefore, types.KindLanguage},
	AfterLanguageCreate:  {StageAfter, types.KindLanguage},
}

// ErrUnknownTag indicates a tag outside the known set.
var ErrUnknownTag = errors.New("hooks: unknown tag")

// KnownTags returns the sorted list of tags.
func KnownTags() []Tag {
	keys := make([]Tag, 0, len(tagRegistry))
	for k := range tagRegistry {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}

// IsKnownTag reports whether the tag is in the known set.
func IsKnownTag(t Tag) bool {
	_, ok := tagRegistry[t]
	return ok
}

// ParseTag validates a string identifier and returns the typed Tag.
func ParseTag(value string) (Tag, error) {
	t := Tag(value)
	if !IsKnownTag(t) {
		return "", fmt.Errorf("%w: %s", ErrUnknownTag, value)
	}
	return t, nil
}

// TagFor returns the tag of a stage and kind. Roles have no creation hooks.
func TagFor(stage Stage, kind types.Kind) (Tag, error) {
	for t, info := range tagRegistry {
		if info.stage == stage && info.kind == kind {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: %s %s", ErrUnknownTag, stage, kind)
}

// Stage returns the lifecycle stage of the tag.
func (t Tag) Stage() Stage {
	return tagRegistry[t].stage
}

// Kind returns the entity kind of the tag.
func (t Tag) Kind() types.Kind {
	return tagRegistry[t].kind
}

func (t Tag) String() string {
	return string(t)
}
