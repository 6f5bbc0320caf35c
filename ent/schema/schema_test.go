package schema

import (
	"testing"

	"entgo.io/ent"
)

func fieldNames(mixins []ent.Mixin, fields []ent.Field) []string {
	var names []string
	for _, m := range mixins {
		for _, f := range m.Fields() {
			names = append(names, f.Descriptor().Name)
		}
	}
	for _, f := range fields {
		names = append(names, f.Descriptor().Name)
	}
	return names
}

// The store creates its tables by hand; these lists keep the schema and the
// DDL in step.
func TestSchemaColumns(t *testing.T) {
	tests := []struct {
		name string
		got  []string
		want []string
	}{
		{"snapshot", fieldNames(nil, Snapshot{}.Fields()),
			[]string{"sequence", "timestamp", "data"}},
		{"child_event", fieldNames(ChildEvent{}.Mixin(), ChildEvent{}.Fields()),
			[]string{"sequence", "timestamp", "child_id", "name", "mr_number"}},
		{"session_event", fieldNames(SessionEvent{}.Mixin(), SessionEvent{}.Fields()),
			[]string{"sequence", "timestamp", "session_id", "child_id", "category_id", "goal_id",
				"is_passed", "activities_passed", "activities_total", "therapist_name",
				"session_date", "goal_passed", "unlocked_goal_id"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if len(tt.got) != len(tt.want) {
				t.Fatalf("columns = %v, want %v", tt.got, tt.want)
			}
			for i := range tt.want {
				if tt.got[i] != tt.want[i] {
					t.Errorf("column %d = %q, want %q", i, tt.got[i], tt.want[i])
				}
			}
		})
	}
}

func TestEventMixinSequenceUnique(t *testing.T) {
	for _, f := range (EventMixin{}).Fields() {
		d := f.Descriptor()
		if d.Name == "sequence" && !d.Unique {
			t.Error("sequence must be unique")
		}
	}
}
