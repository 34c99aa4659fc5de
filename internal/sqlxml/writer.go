package sqlxml

import (
	"encoding/xml"
	"strconv"

	"github.com/schemabridge/schemabridge/internal/resolve"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// Write lowers the model's relationships and emits the schema as SQL
// Schema XML, tables in the same dependency order the DDL writer uses.
func (Codec) Write(m *schema.Model) ([]byte, error) {
	if err := resolve.Lower(m); err != nil {
		return nil, err
	}

	order, err := resolve.EmissionOrder(m)
	if err != nil {
		return nil, err
	}

	doc := xmlDatabase{Name: m.Name}
	for _, e := range order {
		doc.Tables = append(doc.Tables, writeTable(e))
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, "", "cannot serialize schema XML: %v", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func writeTable(e *schema.Entity) xmlTable {
	t := xmlTable{Name: e.Name}
	for _, f := range e.Fields {
		col := xmlColumn{
			Name:       f.Name,
			Type:       typemap.ToSQL(f),
			PrimaryKey: strconv.FormatBool(e.IsPrimaryKey(f.Name)),
			Nullable:   strconv.FormatBool(f.Nullable),
		}
		if f.Unique {
			col.Unique = "true"
		}
		t.Columns = append(t.Columns, col)

		if f.Ref != nil {
			t.ForeignKeys = append(t.ForeignKeys, xmlForeignKey{
				TargetTable: f.Ref.Entity,
				References: []xmlReference{{
					LocalColumn:   f.Name,
					ForeignColumn: f.Ref.Field,
				}},
			})
		}
	}
	return t
}
