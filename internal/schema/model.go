package schema

// Entity returns the entity with the given name, or nil.
func (m *Model) Entity(name string) *Entity {
	for i := range m.Entities {
		if m.Entities[i].Name == name {
			return &m.Entities[i]
		}
	}
	return nil
}

// RemoveEntity deletes the named entity, preserving the order of the rest.
func (m *Model) RemoveEntity(name string) {
	for i := range m.Entities {
		if m.Entities[i].Name == name {
			m.Entities = append(m.Entities[:i], m.Entities[i+1:]...)
			return
		}
	}
}

// Field returns the field with the given name, or nil.
func (e *Entity) Field(name string) *Field {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			return &e.Fields[i]
		}
	}
	return nil
}

// RemoveField deletes the named field, preserving the order of the rest.
func (e *Entity) RemoveField(name string) {
	for i := range e.Fields {
		if e.Fields[i].Name == name {
			e.Fields = append(e.Fields[:i], e.Fields[i+1:]...)
			return
		}
	}
}

// IsPrimaryKey reports whether the named field is part of the primary key.
func (e *Entity) IsPrimaryKey(name string) bool {
	for _, pk := range e.PrimaryKey {
		if pk == name {
			return true
		}
	}
	return false
}

// ForeignKeys returns the entity's foreign-key fields in declaration order.
func (e *Entity) ForeignKeys() []*Field {
	var fks []*Field
	for i := range e.Fields {
		if e.Fields[i].Ref != nil {
			fks = append(fks, &e.Fields[i])
		}
	}
	return fks
}

// Validate checks the model's structural invariants: unique entity names,
// unique field names per entity, primary keys naming existing fields, and
// relationship and foreign-key endpoints resolving to modeled entities.
func (m *Model) Validate() error {
	seen := make(map[string]bool, len(m.Entities))
	for i := range m.Entities {
		e := &m.Entities[i]
		if seen[e.Name] {
			return NewError(ErrMalformedDocument, e.Name, "duplicate entity %q", e.Name)
		}
		seen[e.Name] = true

		fields := make(map[string]bool, len(e.Fields))
		for _, f := range e.Fields {
			if fields[f.Name] {
				return NewError(ErrMalformedDocument, e.Name+"."+f.Name, "duplicate field %q in entity %q", f.Name, e.Name)
			}
			fields[f.Name] = true
		}
		for _, pk := range e.PrimaryKey {
			if !fields[pk] {
				return NewError(ErrMalformedDocument, e.Name, "primary key names unknown field %q", pk)
			}
		}
	}

	for i := range m.Entities {
		e := &m.Entities[i]
		for _, f := range e.Fields {
			if f.Ref == nil {
				continue
			}
			target := m.Entity(f.Ref.Entity)
			if target == nil {
				return NewError(ErrMalformedDocument, e.Name+"."+f.Name, "foreign key references unknown entity %q", f.Ref.Entity)
			}
			if target.Field(f.Ref.Field) == nil {
				return NewError(ErrMalformedDocument, e.Name+"."+f.Name, "foreign key references unknown field %q.%q", f.Ref.Entity, f.Ref.Field)
			}
		}
	}

	for _, r := range m.Relationships {
		if m.Entity(r.Source) == nil {
			return NewError(ErrMalformedDocument, r.Source, "relationship endpoint %q is not a modeled entity", r.Source)
		}
		if m.Entity(r.Target) == nil {
			return NewError(ErrMalformedDocument, r.Target, "relationship endpoint %q is not a modeled entity", r.Target)
		}
	}

	return nil
}

// Clone returns a deep copy of the model.
func (m *Model) Clone() *Model {
	out := &Model{Name: m.Name}
	out.Entities = make([]Entity, len(m.Entities))
	for i, e := range m.Entities {
		ce := Entity{Name: e.Name}
		ce.Fields = make([]Field, len(e.Fields))
		for j, f := range e.Fields {
			cf := f
			if f.Ref != nil {
				ref := *f.Ref
				cf.Ref = &ref
			}
			ce.Fields[j] = cf
		}
		ce.PrimaryKey = append([]string(nil), e.PrimaryKey...)
		out.Entities[i] = ce
	}
	out.Relationships = append([]Relationship(nil), m.Relationships...)
	return out
}
