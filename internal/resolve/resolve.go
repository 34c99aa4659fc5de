// Package resolve converts between the logical form of a model (explicit
// relationships, no foreign keys) and its physical form (foreign-key fields
// and junction tables, no relationships).
//
// Lower and Raise are exact structural inverses and both are idempotent:
// lowering an already-lowered model and raising an already-raised model are
// no-ops.
package resolve

import (
	"strings"

	"github.com/schemabridge/schemabridge/internal/schema"
)

// Lower materializes every relationship as its physical artifact: a unique
// foreign key for one-to-one, a plain foreign key on the many side for
// one-to-many, and a junction table for many-to-many. The relationship list
// is consumed.
func Lower(m *schema.Model) error {
	for _, r := range m.Relationships {
		var err error
		switch r.Cardinality {
		case schema.OneToOne:
			err = lowerOneToOne(m, r)
		case schema.OneToMany:
			err = lowerOneToMany(m, r)
		case schema.ManyToMany:
			err = lowerManyToMany(m, r)
		default:
			err = schema.NewError(schema.ErrUnsupportedCardinality, r.Source+"-"+r.Target,
				"relationship %s-%s has no cardinality", r.Source, r.Target)
		}
		if err != nil {
			return err
		}
	}
	m.Relationships = nil
	return nil
}

// Raise scans all entities for foreign keys and junction tables and folds
// them back into relationships: a junction table becomes many-to-many and is
// removed from the entity list, a unique foreign key becomes one-to-one, a
// plain foreign key becomes one-to-many. Any other foreign-key pattern is an
// unsupported shape, reported rather than guessed.
func Raise(m *schema.Model) error {
	var junctions []string
	for i := range m.Entities {
		e := &m.Entities[i]
		if IsJunction(e) {
			srcField := e.Field(e.PrimaryKey[0])
			tgtField := e.Field(e.PrimaryKey[1])
			m.Relationships = append(m.Relationships, schema.Relationship{
				Source:      srcField.Ref.Entity,
				Target:      tgtField.Ref.Entity,
				Cardinality: schema.ManyToMany,
				SourceRole:  deriveRole(srcField.Name, srcField.Ref),
				TargetRole:  deriveRole(tgtField.Name, tgtField.Ref),
			})
			junctions = append(junctions, e.Name)
			continue
		}

		var folded []string
		for _, f := range e.ForeignKeys() {
			if e.IsPrimaryKey(f.Name) {
				return schema.NewError(schema.ErrUnsupportedCardinality, e.Name+"."+f.Name,
					"foreign key %q participates in the primary key of %q outside the junction-table shape", f.Name, e.Name)
			}
			if f.Unique {
				m.Relationships = append(m.Relationships, schema.Relationship{
					Source:      e.Name,
					Target:      f.Ref.Entity,
					Cardinality: schema.OneToOne,
					TargetRole:  deriveRole(f.Name, f.Ref),
				})
			} else {
				m.Relationships = append(m.Relationships, schema.Relationship{
					Source:      f.Ref.Entity,
					Target:      e.Name,
					Cardinality: schema.OneToMany,
					SourceRole:  deriveRole(f.Name, f.Ref),
				})
			}
			folded = append(folded, f.Name)
		}
		for _, name := range folded {
			e.RemoveField(name)
		}
	}

	for _, name := range junctions {
		m.RemoveEntity(name)
	}
	return nil
}

// IsJunction reports whether an entity has the junction-table shape: exactly
// two fields, both foreign keys to two distinct entities, and a primary key
// composed of exactly those two fields.
func IsJunction(e *schema.Entity) bool {
	if len(e.Fields) != 2 || len(e.PrimaryKey) != 2 {
		return false
	}
	a, b := &e.Fields[0], &e.Fields[1]
	if a.Ref == nil || b.Ref == nil || a.Ref.Entity == b.Ref.Entity {
		return false
	}
	return e.IsPrimaryKey(a.Name) && e.IsPrimaryKey(b.Name)
}

func lowerOneToMany(m *schema.Model, r schema.Relationship) error {
	pk, err := singlePrimaryKey(m, r.Source)
	if err != nil {
		return err
	}
	name := foreignKeyName(r.SourceRole, r.Source, pk.Name)
	return addForeignKey(m, r.Target, schema.Field{
		Name:     name,
		Type:     pk.Type,
		Length:   pk.Length,
		Nullable: true,
		Ref:      &schema.Ref{Entity: r.Source, Field: pk.Name},
	})
}

func lowerOneToOne(m *schema.Model, r schema.Relationship) error {
	pk, err := singlePrimaryKey(m, r.Target)
	if err != nil {
		return err
	}
	name := foreignKeyName(r.TargetRole, r.Target, pk.Name)
	return addForeignKey(m, r.Source, schema.Field{
		Name:     name,
		Type:     pk.Type,
		Length:   pk.Length,
		Nullable: true,
		Unique:   true,
		Ref:      &schema.Ref{Entity: r.Target, Field: pk.Name},
	})
}

func lowerManyToMany(m *schema.Model, r schema.Relationship) error {
	srcPK, err := singlePrimaryKey(m, r.Source)
	if err != nil {
		return err
	}
	tgtPK, err := singlePrimaryKey(m, r.Target)
	if err != nil {
		return err
	}

	name := r.Source + "_" + r.Target
	if m.Entity(name) != nil {
		return schema.NewError(schema.ErrNameCollision, name,
			"junction table %q collides with an existing entity", name)
	}

	srcCol := foreignKeyName(r.SourceRole, r.Source, srcPK.Name)
	tgtCol := foreignKeyName(r.TargetRole, r.Target, tgtPK.Name)
	if srcCol == tgtCol {
		return schema.NewError(schema.ErrNameCollision, name+"."+srcCol,
			"junction table %q would contain two columns named %q", name, srcCol)
	}

	m.Entities = append(m.Entities, schema.Entity{
		Name: name,
		Fields: []schema.Field{
			{Name: srcCol, Type: srcPK.Type, Length: srcPK.Length, Ref: &schema.Ref{Entity: r.Source, Field: srcPK.Name}},
			{Name: tgtCol, Type: tgtPK.Type, Length: tgtPK.Length, Ref: &schema.Ref{Entity: r.Target, Field: tgtPK.Name}},
		},
		PrimaryKey: []string{srcCol, tgtCol},
	})
	return nil
}

func addForeignKey(m *schema.Model, entityName string, fk schema.Field) error {
	e := m.Entity(entityName)
	if e == nil {
		return schema.NewError(schema.ErrMalformedDocument, entityName,
			"relationship endpoint %q is not a modeled entity", entityName)
	}
	if e.Field(fk.Name) != nil {
		return schema.NewError(schema.ErrNameCollision, entityName+"."+fk.Name,
			"synthesized foreign key %q collides with an existing field of %q", fk.Name, entityName)
	}
	e.Fields = append(e.Fields, fk)
	return nil
}

// singlePrimaryKey returns the sole primary-key field of the named entity.
// Referencing an entity with a composite primary key has no single-column
// foreign-key lowering and is refused.
func singlePrimaryKey(m *schema.Model, entityName string) (*schema.Field, error) {
	e := m.Entity(entityName)
	if e == nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, entityName,
			"relationship endpoint %q is not a modeled entity", entityName)
	}
	if len(e.PrimaryKey) != 1 {
		return nil, schema.NewError(schema.ErrUnsupportedCardinality, entityName,
			"entity %q needs a single-field primary key to be referenced by a relationship, has %d", entityName, len(e.PrimaryKey))
	}
	f := e.Field(e.PrimaryKey[0])
	if f == nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, entityName,
			"primary key of %q names unknown field %q", entityName, e.PrimaryKey[0])
	}
	return f, nil
}

// foreignKeyName derives the deterministic name of a synthesized foreign-key
// column: the association role if present, otherwise the lowercased entity
// name, suffixed with the referenced key field.
func foreignKeyName(role, entityName, pkName string) string {
	base := role
	if base == "" {
		base = strings.ToLower(entityName)
	}
	return base + "_" + pkName
}

// deriveRole recovers the association role encoded in a foreign-key column
// name. The default name (lowercased entity plus key suffix) carries no
// explicit role.
func deriveRole(columnName string, ref *schema.Ref) string {
	suffix := "_" + ref.Field
	if !strings.HasSuffix(columnName, suffix) {
		return ""
	}
	base := strings.TrimSuffix(columnName, suffix)
	if base == strings.ToLower(ref.Entity) {
		return ""
	}
	return base
}
