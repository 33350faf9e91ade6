package schema

import (
	"entgo.io/ent"
	"entgo.io/ent/dialect"
	"entgo.io/ent/dialect/entsql"
	"entgo.io/ent/schema"
	"entgo.io/ent/schema/field"
	"entgo.io/ent/schema/index"
	"github.com/google/uuid"

	"github.com/joseph-ayodele/doc-analyzer/db/ent/schema/utils"
	"github.com/joseph-ayodele/doc-analyzer/internal/entity"
)

// Document is the registry row written after each stored upload. Field order
// matches the column order the repository selects.
type Document struct{ ent.Schema }

func (Document) Annotations() []schema.Annotation {
	return []schema.Annotation{
		entsql.Annotation{Table: "documents"},
	}
}

func (Document) Fields() []ent.Field {
	return []ent.Field{
		field.UUID("id", uuid.UUID{}).
			Default(uuid.New).
			Immutable(),
		field.String("object_key").NotEmpty().Unique(),
		field.String("file_name").NotEmpty(),
		field.String("content_type").NotEmpty(),
		field.Int64("size_bytes").NonNegative(),
		field.String("extraction_method").
			Validate(utils.EnumValidator(
				string(entity.MethodDirect),
				string(entity.MethodPDFPrimary),
				string(entity.MethodPDFFallback),
				string(entity.MethodPlaceholder),
			)),
		field.Bool("truncated").Default(false),
		field.String("language").Default(""),
		field.Int("text_chars").NonNegative().Default(0),
		field.String("analysis_key").Default(""),
		field.Text("summary").Default(""),
		field.Float("sentiment").Min(-1).Max(1).Default(0).
			SchemaType(map[string]string{dialect.Postgres: "double precision"}),
		field.Float("confidence").Min(0).Max(1).Default(0).
			SchemaType(map[string]string{dialect.Postgres: "double precision"}),
		field.Bool("simulated").Default(false),
		// unix milliseconds
		field.Int64("created_at").Immutable(),
	}
}

func (Document) Indexes() []ent.Index {
	return []ent.Index{
		index.Fields("created_at"),
	}
}
