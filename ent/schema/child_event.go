package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/schema/field"
)

// ChildEvent records a child registration.
type ChildEvent struct {
	ent.Schema
}

func (ChildEvent) Mixin() []ent.Mixin {
	return []ent.Mixin{EventMixin{}}
}

func (ChildEvent) Fields() []ent.Field {
	return []ent.Field{
		field.String("child_id").
			NotEmpty().
			Comment("UUID assigned at registration"),
		field.String("name").
			NotEmpty(),
		field.String("mr_number").
			NotEmpty().
			Comment("Medical record number"),
	}
}
