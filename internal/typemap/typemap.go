// Package typemap holds the fixed lookup tables between SQL type names, UML
// primitive type names and the semantic data types of the canonical model.
// The tables are process-wide constants; nothing mutates them at runtime.
package typemap

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// Mapped is the result of resolving a format-specific type spelling.
type Mapped struct {
	Type      schema.DataType
	Length    int
	Precision int
	Scale     int
}

var sqlTypes = map[string]schema.DataType{
	"INT":       schema.TypeInteger,
	"INTEGER":   schema.TypeInteger,
	"BIGINT":    schema.TypeInteger,
	"SMALLINT":  schema.TypeInteger,
	"VARCHAR":   schema.TypeText,
	"CHAR":      schema.TypeText,
	"TEXT":      schema.TypeText,
	"DECIMAL":   schema.TypeDecimal,
	"NUMERIC":   schema.TypeDecimal,
	"FLOAT":     schema.TypeFloat,
	"DOUBLE":    schema.TypeFloat,
	"REAL":      schema.TypeFloat,
	"BOOLEAN":   schema.TypeBoolean,
	"BOOL":      schema.TypeBoolean,
	"DATE":      schema.TypeDate,
	"TIMESTAMP": schema.TypeDate,
	"DATETIME":  schema.TypeDate,

	// Introspection spellings reported by live databases.
	"CHARACTER VARYING":           schema.TypeText,
	"CHARACTER":                   schema.TypeText,
	"DOUBLE PRECISION":            schema.TypeFloat,
	"TIMESTAMP WITHOUT TIME ZONE": schema.TypeDate,
	"TIMESTAMP WITH TIME ZONE":    schema.TypeDate,
	"SERIAL":                      schema.TypeInteger,
	"BIGSERIAL":                   schema.TypeInteger,
	"TINYINT":                     schema.TypeInteger,
	"MEDIUMINT":                   schema.TypeInteger,
}

var umlTypes = map[string]schema.DataType{
	"String":  schema.TypeText,
	"Integer": schema.TypeInteger,
	"Long":    schema.TypeInteger,
	"Boolean": schema.TypeBoolean,
	"Float":   schema.TypeFloat,
	"Double":  schema.TypeFloat,
	"Real":    schema.TypeFloat,
	"Decimal": schema.TypeDecimal,
	"Date":    schema.TypeDate,
}

// FromSQL resolves a SQL type name plus optional parenthesized arguments,
// e.g. ("VARCHAR", [255]). The boolean is false when the name has no
// semantic mapping.
func FromSQL(name string, args []int) (Mapped, bool) {
	t, ok := sqlTypes[strings.ToUpper(strings.TrimSpace(name))]
	if !ok {
		return Mapped{}, false
	}
	m := Mapped{Type: t}
	switch t {
	case schema.TypeText:
		if len(args) > 0 {
			m.Length = args[0]
		}
	case schema.TypeDecimal:
		if len(args) > 0 {
			m.Precision = args[0]
		}
		if len(args) > 1 {
			m.Scale = args[1]
		}
	}
	return m, ok
}

// ParseSQL resolves a full SQL type spelling such as "VARCHAR(255)" or
// "DECIMAL(10,2)".
func ParseSQL(s string) (Mapped, bool) {
	s = strings.TrimSpace(s)
	name := s
	var args []int
	if open := strings.IndexByte(s, '('); open >= 0 {
		close := strings.LastIndexByte(s, ')')
		if close < open {
			return Mapped{}, false
		}
		name = strings.TrimSpace(s[:open])
		for _, part := range strings.Split(s[open+1:close], ",") {
			n, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				return Mapped{}, false
			}
			args = append(args, n)
		}
	}
	return FromSQL(name, args)
}

// ToSQL renders a field's semantic type as its SQL spelling.
func ToSQL(f schema.Field) string {
	switch f.Type {
	case schema.TypeInteger:
		return "INTEGER"
	case schema.TypeText:
		length := f.Length
		if length == 0 {
			length = 255
		}
		return fmt.Sprintf("VARCHAR(%d)", length)
	case schema.TypeDecimal:
		if f.Precision > 0 {
			return fmt.Sprintf("DECIMAL(%d,%d)", f.Precision, f.Scale)
		}
		return "DECIMAL"
	case schema.TypeFloat:
		return "FLOAT"
	case schema.TypeBoolean:
		return "BOOLEAN"
	case schema.TypeDate:
		return "DATE"
	}
	return "VARCHAR(255)"
}

// FromUML resolves a UML primitive type name. The boolean is false when the
// name has no semantic mapping.
func FromUML(name string) (schema.DataType, bool) {
	t, ok := umlTypes[name]
	return t, ok
}

// ToUML renders a semantic type as its UML primitive type name.
func ToUML(t schema.DataType) string {
	switch t {
	case schema.TypeInteger:
		return "Integer"
	case schema.TypeDecimal:
		return "Decimal"
	case schema.TypeFloat:
		return "Float"
	case schema.TypeBoolean:
		return "Boolean"
	case schema.TypeDate:
		return "Date"
	case schema.TypeText:
		return "String"
	}
	return "String"
}
