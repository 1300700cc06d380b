package query

import (
	"reflect"
)

// BodyDiff represents the top-level changes mediation made to a request body.
// It is designed to be serialized to JSON for dry-run reports and debug logs.
type BodyDiff struct {
	// Changed contains added or modified keys with their new value.
	Changed map[string]Node `json:"changed,omitempty"`

	// Removed lists keys present before and absent after.
	Removed []string `json:"removed,omitempty"`
}

// Diff calculates the difference between the body a caller sent and the mediated body.
// If before is nil, every key in after counts as changed. It returns nil when nothing changed.
func Diff(before, after Mapping) *BodyDiff {
	diff := &BodyDiff{}

	for _, k := range after.Keys() {
		newVal := after[k]
		oldVal, exists := before[k]
		if !exists || !reflect.DeepEqual(valueOf(oldVal), valueOf(newVal)) {
			if diff.Changed == nil {
				diff.Changed = make(map[string]Node)
			}
			diff.Changed[k] = newVal
		}
	}

	for _, k := range before.Keys() {
		if _, exists := after[k]; !exists {
			diff.Removed = append(diff.Removed, k)
		}
	}

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

// IsEmpty checks if the diff contains any changes.
func (d *BodyDiff) IsEmpty() bool {
	return d == nil || (len(d.Changed) == 0 && len(d.Removed) == 0)
}

// ChangedKeys returns the changed keys in sorted order.
func (d *BodyDiff) ChangedKeys() []string {
	if d == nil {
		return nil
	}
	return Mapping(d.Changed).Keys()
}
