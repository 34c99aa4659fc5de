package schema

// Model is the canonical, format-neutral representation of a schema.
// Every reader produces one, every writer consumes one; a model is owned
// by a single conversion call and never shared.
type Model struct {
	Name          string
	Entities      []Entity
	Relationships []Relationship
}

// Entity represents a class or table.
type Entity struct {
	Name       string
	Fields     []Field
	PrimaryKey []string // field names, order-significant for composite keys
}

// Field represents an attribute or column.
type Field struct {
	Name      string
	Type      DataType
	Length    int // text length, 0 = unspecified
	Precision int // decimal precision, 0 = unspecified
	Scale     int
	Nullable  bool
	Unique    bool
	Ref       *Ref // non-nil marks a foreign key
}

// Ref identifies the entity and field a foreign key points at.
type Ref struct {
	Entity string
	Field  string
}

// DataType is the semantic type tag shared by all formats.
type DataType int

const (
	TypeInteger DataType = iota + 1
	TypeDecimal
	TypeFloat
	TypeText
	TypeBoolean
	TypeDate
)

// String returns the semantic tag name.
func (t DataType) String() string {
	switch t {
	case TypeInteger:
		return "integer"
	case TypeDecimal:
		return "decimal"
	case TypeFloat:
		return "float"
	case TypeText:
		return "text"
	case TypeBoolean:
		return "boolean"
	case TypeDate:
		return "date"
	}
	return "unknown"
}

// Cardinality tags a relationship. Switches over it must handle all three
// values; an unknown value is a bug, not a fourth cardinality.
type Cardinality int

const (
	OneToOne Cardinality = iota + 1
	OneToMany
	ManyToMany
)

// String returns the conventional notation for the cardinality.
func (c Cardinality) String() string {
	switch c {
	case OneToOne:
		return "1:1"
	case OneToMany:
		return "1:N"
	case ManyToMany:
		return "N:M"
	}
	return "unknown"
}

// Relationship is an association between two entities. For OneToMany the
// Source is the "one" side and the Target the "many" side. For OneToOne the
// physical foreign key is placed on the Source. Roles name the association
// ends and drive generated foreign-key and junction-table names.
type Relationship struct {
	Source      string
	Target      string
	Cardinality Cardinality
	SourceRole  string
	TargetRole  string
}
