package query

import (
	"reflect"
	"testing"
)

func TestDiff(t *testing.T) {
	matchAll := Mapping{"match_all": Mapping{}}

	tests := []struct {
		name        string
		before      Mapping
		after       Mapping
		wantChanged []string
		wantRemoved []string
	}{
		{
			name:        "Initial Load (Before is Nil)",
			before:      nil,
			after:       Mapping{"size": Scalar{V: 10}, "query": matchAll},
			wantChanged: []string{"query", "size"},
		},
		{
			name:   "No Changes",
			before: Mapping{"size": Scalar{V: 5}, "query": matchAll},
			after:  Mapping{"size": Scalar{V: 5}, "query": Mapping{"match_all": Mapping{}}},
		},
		{
			name:        "Size Clamped",
			before:      Mapping{"size": Scalar{V: 500}},
			after:       Mapping{"size": Scalar{V: 100}},
			wantChanged: []string{"size"},
		},
		{
			name:        "Key Removed",
			before:      Mapping{"size": Scalar{V: 5}, "from": Scalar{V: 0}},
			after:       Mapping{"size": Scalar{V: 5}},
			wantRemoved: []string{"from"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Diff(tt.before, tt.after)
			if tt.wantChanged == nil && tt.wantRemoved == nil {
				if got != nil {
					t.Fatalf("Diff() = %+v, want nil", got)
				}
				return
			}
			if got == nil {
				t.Fatal("Diff() = nil, want changes")
			}
			if !reflect.DeepEqual(got.ChangedKeys(), normalize(tt.wantChanged)) {
				t.Errorf("changed = %v, want %v", got.ChangedKeys(), tt.wantChanged)
			}
			if !reflect.DeepEqual(got.Removed, tt.wantRemoved) {
				t.Errorf("removed = %v, want %v", got.Removed, tt.wantRemoved)
			}
		})
	}
}

func normalize(keys []string) []string {
	if keys == nil {
		return []string{}
	}
	return keys
}
