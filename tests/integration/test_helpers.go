//go:build integration
// +build integration

package integration

import (
	"testing"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// verifyEntitiesExist checks that all expected entities are present in the model
func verifyEntitiesExist(t *testing.T, m *schema.Model, expected []string) {
	t.Helper()
	for _, name := range expected {
		if m.Entity(name) == nil {
			t.Errorf("expected entity %q not found", name)
		}
	}
}

// verifyPrimaryKey checks an entity's primary key columns in order
func verifyPrimaryKey(t *testing.T, e *schema.Entity, expected []string) {
	t.Helper()
	if len(e.PrimaryKey) != len(expected) {
		t.Errorf("entity %q primary key = %v, want %v", e.Name, e.PrimaryKey, expected)
		return
	}
	for i, col := range expected {
		if e.PrimaryKey[i] != col {
			t.Errorf("entity %q primary key = %v, want %v", e.Name, e.PrimaryKey, expected)
			return
		}
	}
}

// verifyFields checks that an entity carries all expected fields
func verifyFields(t *testing.T, e *schema.Entity, expected []string) {
	t.Helper()
	for _, name := range expected {
		if e.Field(name) == nil {
			t.Errorf("entity %q is missing field %q", e.Name, name)
		}
	}
}

// verifyUnique checks that a field carries a unique constraint
func verifyUnique(t *testing.T, e *schema.Entity, field string) {
	t.Helper()
	f := e.Field(field)
	if f == nil {
		t.Errorf("entity %q is missing field %q", e.Name, field)
		return
	}
	if !f.Unique {
		t.Errorf("field %s.%s should be unique", e.Name, field)
	}
}

// verifyRelationship checks that the model contains a relationship with the
// given endpoints and cardinality
func verifyRelationship(t *testing.T, m *schema.Model, source, target string, c schema.Cardinality) {
	t.Helper()
	for _, r := range m.Relationships {
		if r.Source == source && r.Target == target && r.Cardinality == c {
			return
		}
	}
	t.Errorf("relationship %s %s %s not found in %+v", source, c, target, m.Relationships)
}
