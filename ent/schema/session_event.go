package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
)

// SessionEvent records one submitted therapy session and what it changed.
type SessionEvent struct {
	ent.Schema
}

func (SessionEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (SessionEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("session_id").
			NotEmpty(),
		field.String("child_id").
			NotEmpty(),
		field.String("category_id").
			NotEmpty(),
		field.String("goal_id").
			NotEmpty(),
		field.Bool("is_passed").
			Comment("Majority of activities passed"),
		field.Int("activities_passed"),
		field.Int("activities_total"),
		field.String("therapist_name").
			NotEmpty(),
		field.Time("session_date").
			Comment("Date the session took place, not when it was entered"),
		field.Bool("goal_passed").
			Comment("This session completed the pass streak"),
		field.String("unlocked_goal_id").
			Default("").
			Comment("Goal unlocked by this session; empty if none"),
	}
}

func (SessionEvent) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("child_id", "sequence"),
	}
}
