package sqlxml

import (
	"encoding/xml"

	"github.com/schemabridge/schemabridge/internal/resolve"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// Read parses a SQL Schema XML document into a canonical model. Foreign
// keys and junction tables are raised into relationships, exactly as the
// DDL reader does.
func (Codec) Read(data []byte) (*schema.Model, error) {
	var doc xmlDatabase
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, "", "not well-formed schema XML: %v", err)
	}

	m := &schema.Model{Name: doc.Name}
	for _, t := range doc.Tables {
		entity, err := readTable(t)
		if err != nil {
			return nil, err
		}
		m.Entities = append(m.Entities, entity)
	}

	// Foreign keys resolve after all tables are known, so a table may
	// reference one declared later in the document.
	for _, t := range doc.Tables {
		for _, fk := range t.ForeignKeys {
			if err := applyForeignKey(m, t.Name, fk); err != nil {
				return nil, err
			}
		}
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := resolve.Raise(m); err != nil {
		return nil, err
	}
	return m, nil
}

func readTable(t xmlTable) (schema.Entity, error) {
	entity := schema.Entity{Name: t.Name}
	if t.Name == "" {
		return entity, schema.NewError(schema.ErrMalformedDocument, "table", "table element has no name")
	}

	for _, col := range t.Columns {
		locator := t.Name + "." + col.Name
		if col.Name == "" {
			return entity, schema.NewError(schema.ErrMalformedDocument, t.Name,
				"table %q has a column without a name", t.Name)
		}
		mapped, ok := typemap.ParseSQL(col.Type)
		if !ok {
			return entity, schema.NewError(schema.ErrUnknownType, locator,
				"column type %q has no semantic mapping", col.Type)
		}

		isPK := col.PrimaryKey == "true"
		field := schema.Field{
			Name:      col.Name,
			Type:      mapped.Type,
			Length:    mapped.Length,
			Precision: mapped.Precision,
			Scale:     mapped.Scale,
			Nullable:  col.Nullable == "true" && !isPK,
			Unique:    col.Unique == "true",
		}
		entity.Fields = append(entity.Fields, field)
		if isPK {
			entity.PrimaryKey = append(entity.PrimaryKey, col.Name)
		}
	}

	return entity, nil
}

func applyForeignKey(m *schema.Model, table string, fk xmlForeignKey) error {
	if len(fk.References) != 1 {
		return schema.NewError(schema.ErrUnsupportedCardinality, table,
			"foreignKey on %q has %d reference elements, expected 1", table, len(fk.References))
	}
	ref := fk.References[0]
	locator := table + "." + ref.LocalColumn

	field := m.Entity(table).Field(ref.LocalColumn)
	if field == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"foreignKey names unknown column %q", ref.LocalColumn)
	}
	if field.Ref != nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"column %q carries more than one foreignKey element", ref.LocalColumn)
	}

	target := m.Entity(fk.TargetTable)
	if target == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"foreignKey references unknown table %q", fk.TargetTable)
	}
	if target.Field(ref.ForeignColumn) == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"foreignKey references unknown column %q.%q", fk.TargetTable, ref.ForeignColumn)
	}

	field.Ref = &schema.Ref{Entity: fk.TargetTable, Field: ref.ForeignColumn}
	return nil
}
