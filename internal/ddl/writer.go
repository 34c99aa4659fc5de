package ddl

import (
	"strings"

	"github.com/schemabridge/schemabridge/internal/resolve"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// Write lowers the model's relationships into physical constructs and emits
// one CREATE TABLE statement per entity. Referenced tables are emitted
// before referencing ones; junction tables always come last.
func (Codec) Write(m *schema.Model) ([]byte, error) {
	if err := resolve.Lower(m); err != nil {
		return nil, err
	}

	order, err := resolve.EmissionOrder(m)
	if err != nil {
		return nil, err
	}

	var b strings.Builder
	for i, e := range order {
		if i > 0 {
			b.WriteByte('\n')
		}
		writeTable(&b, e)
	}
	return []byte(b.String()), nil
}

func writeTable(b *strings.Builder, e *schema.Entity) {
	b.WriteString("CREATE TABLE ")
	b.WriteString(e.Name)
	b.WriteString(" (\n")

	var lines []string
	for _, f := range e.Fields {
		line := "  " + f.Name + " " + typemap.ToSQL(f)
		if !f.Nullable {
			line += " NOT NULL"
		}
		if f.Unique {
			line += " UNIQUE"
		}
		lines = append(lines, line)
	}

	if len(e.PrimaryKey) > 0 {
		lines = append(lines, "  PRIMARY KEY ("+strings.Join(e.PrimaryKey, ", ")+")")
	}
	for _, fk := range e.ForeignKeys() {
		lines = append(lines, "  FOREIGN KEY ("+fk.Name+") REFERENCES "+fk.Ref.Entity+" ("+fk.Ref.Field+")")
	}

	b.WriteString(strings.Join(lines, ",\n"))
	b.WriteString("\n);\n")
}
