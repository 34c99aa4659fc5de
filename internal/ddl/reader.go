package ddl

import (
	"github.com/schemabridge/schemabridge/internal/resolve"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// pendingFK defers foreign-key resolution until every table has been
// parsed, so statements may reference tables defined later in the script.
type pendingFK struct {
	table   string
	ast     *foreignKeyAST
}

// Read parses a DDL script into a canonical model. Foreign keys and
// junction tables are raised into relationships, so the result matches what
// the XMI reader produces for an equivalent diagram.
func (Codec) Read(data []byte) (*schema.Model, error) {
	ast, err := ddlParser.ParseBytes("", data)
	if err != nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, "", "invalid DDL: %v", err)
	}

	m := &schema.Model{}
	var fks []pendingFK

	for ti := range ast.Tables {
		t := &ast.Tables[ti]
		entity, tableFKs, err := readTable(t)
		if err != nil {
			return nil, err
		}
		m.Entities = append(m.Entities, entity)
		fks = append(fks, tableFKs...)
	}

	for _, fk := range fks {
		if err := applyForeignKey(m, fk); err != nil {
			return nil, err
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

func readTable(t *tableAST) (schema.Entity, []pendingFK, error) {
	name := string(t.Name)
	entity := schema.Entity{Name: name}
	var fks []pendingFK
	var inlinePK, tablePK []string

	for i := range t.Items {
		item := &t.Items[i]
		switch {
		case item.Column != nil:
			c := item.Column
			locator := name + "." + string(c.Name)
			mapped, ok := typemap.FromSQL(c.Type.Name, c.Type.Args)
			if !ok {
				return entity, nil, schema.NewError(schema.ErrUnknownType, locator,
					"column type %q has no semantic mapping (line %d)", c.Type.Name, c.Pos.Line)
			}
			field := schema.Field{
				Name:      string(c.Name),
				Type:      mapped.Type,
				Length:    mapped.Length,
				Precision: mapped.Precision,
				Scale:     mapped.Scale,
				Nullable:  true,
			}
			for _, attr := range c.Attrs {
				if attr.NotNull {
					field.Nullable = false
				}
				if attr.Unique {
					field.Unique = true
				}
				if attr.PrimaryKey {
					field.Nullable = false
					inlinePK = append(inlinePK, field.Name)
				}
			}
			entity.Fields = append(entity.Fields, field)

		case item.PrimaryKey != nil:
			if tablePK != nil {
				return entity, nil, schema.NewError(schema.ErrMalformedDocument, name,
					"table %q declares more than one PRIMARY KEY constraint (line %d)", name, item.PrimaryKey.Pos.Line)
			}
			for _, col := range item.PrimaryKey.Columns {
				tablePK = append(tablePK, string(col))
			}

		case item.ForeignKey != nil:
			fks = append(fks, pendingFK{table: name, ast: item.ForeignKey})

		case item.Unique != nil:
			if len(item.Unique.Columns) != 1 {
				return entity, nil, schema.NewError(schema.ErrUnsupportedCardinality, name,
					"multi-column UNIQUE constraint on %q maps to no relationship shape (line %d)", name, item.Unique.Pos.Line)
			}
			col := string(item.Unique.Columns[0])
			field := entity.Field(col)
			if field == nil {
				return entity, nil, schema.NewError(schema.ErrMalformedDocument, name+"."+col,
					"UNIQUE constraint names unknown column %q (line %d)", col, item.Unique.Pos.Line)
			}
			field.Unique = true
		}
	}

	switch {
	case tablePK != nil && inlinePK != nil:
		return entity, nil, schema.NewError(schema.ErrMalformedDocument, name,
			"table %q mixes an inline PRIMARY KEY with a table-level one", name)
	case tablePK != nil:
		entity.PrimaryKey = tablePK
	default:
		entity.PrimaryKey = inlinePK
	}
	for _, pk := range entity.PrimaryKey {
		if f := entity.Field(pk); f != nil {
			f.Nullable = false
		}
	}

	return entity, fks, nil
}

func applyForeignKey(m *schema.Model, fk pendingFK) error {
	ast := fk.ast
	if len(ast.Columns) != 1 || len(ast.RefColumns) != 1 {
		return schema.NewError(schema.ErrUnsupportedCardinality, fk.table,
			"composite foreign key on %q maps to no relationship shape (line %d)", fk.table, ast.Pos.Line)
	}
	col := string(ast.Columns[0])
	locator := fk.table + "." + col

	entity := m.Entity(fk.table)
	field := entity.Field(col)
	if field == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"FOREIGN KEY names unknown column %q (line %d)", col, ast.Pos.Line)
	}
	if field.Ref != nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"column %q carries more than one FOREIGN KEY constraint (line %d)", col, ast.Pos.Line)
	}

	refTable := string(ast.RefTable)
	refCol := string(ast.RefColumns[0])
	target := m.Entity(refTable)
	if target == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"FOREIGN KEY references unknown table %q (line %d)", refTable, ast.Pos.Line)
	}
	if target.Field(refCol) == nil {
		return schema.NewError(schema.ErrMalformedDocument, locator,
			"FOREIGN KEY references unknown column %q.%q (line %d)", refTable, refCol, ast.Pos.Line)
	}

	field.Ref = &schema.Ref{Entity: refTable, Field: refCol}
	return nil
}
