// Package db builds canonical models by introspecting live databases.
// Column types map onto semantic types through the shared type tables, and
// foreign-key constraints are raised into relationships, so an introspected
// model is indistinguishable from one read from a DDL script.
package db

import (
	"github.com/schemabridge/schemabridge/internal/resolve"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// finishModel validates an introspected model and raises its foreign keys
// and junction tables into relationships.
func finishModel(m *schema.Model) (*schema.Model, error) {
	if err := m.Validate(); err != nil {
		return nil, err
	}
	if err := resolve.Raise(m); err != nil {
		return nil, err
	}
	return m, nil
}

// mapColumnType resolves a native column type spelling, or fails with an
// Unknown-Type error naming the column.
func mapColumnType(table, column, nativeType string) (typemap.Mapped, error) {
	mapped, ok := typemap.ParseSQL(nativeType)
	if !ok {
		return typemap.Mapped{}, schema.NewError(schema.ErrUnknownType, table+"."+column,
			"column type %q has no semantic mapping", nativeType)
	}
	return mapped, nil
}
