package resolve

import (
	"errors"
	"reflect"
	"testing"

	"github.com/schemabridge/schemabridge/internal/schema"
)

func libraryModel() *schema.Model {
	return &schema.Model{
		Name: "Library",
		Entities: []schema.Entity{
			{
				Name: "author",
				Fields: []schema.Field{
					{Name: "id", Type: schema.TypeInteger},
					{Name: "name", Type: schema.TypeText, Length: 100},
				},
				PrimaryKey: []string{"id"},
			},
			{
				Name: "book",
				Fields: []schema.Field{
					{Name: "isbn", Type: schema.TypeText, Length: 13},
					{Name: "title", Type: schema.TypeText, Length: 200},
				},
				PrimaryKey: []string{"isbn"},
			},
		},
		Relationships: []schema.Relationship{
			{Source: "author", Target: "book", Cardinality: schema.OneToMany},
		},
	}
}

func kindOf(t *testing.T, err error) schema.ErrorKind {
	t.Helper()
	var serr *schema.Error
	if !errors.As(err, &serr) {
		t.Fatalf("error %v is not a *schema.Error", err)
	}
	return serr.Kind
}

func TestLowerOneToMany(t *testing.T) {
	m := libraryModel()
	if err := Lower(m); err != nil {
		t.Fatalf("Lower() error = %v", err)
	}

	if len(m.Relationships) != 0 {
		t.Errorf("relationships not consumed: %v", m.Relationships)
	}

	book := m.Entity("book")
	fk := book.Field("author_id")
	if fk == nil {
		t.Fatal("book has no author_id foreign key")
	}
	if fk.Type != schema.TypeInteger {
		t.Errorf("foreign key type = %v, want Integer", fk.Type)
	}
	if !fk.Nullable {
		t.Error("foreign key should be nullable")
	}
	if fk.Unique {
		t.Error("one-to-many foreign key must not be unique")
	}
	if fk.Ref == nil || fk.Ref.Entity != "author" || fk.Ref.Field != "id" {
		t.Errorf("foreign key ref = %+v, want author.id", fk.Ref)
	}
}

func TestLowerOneToManyWithRole(t *testing.T) {
	m := libraryModel()
	m.Relationships[0].SourceRole = "editor"

	if err := Lower(m); err != nil {
		t.Fatalf("Lower() error = %v", err)
	}

	if fk := m.Entity("book").Field("editor_id"); fk == nil {
		t.Error("role-named foreign key editor_id missing")
	}
}

func TestLowerOneToOne(t *testing.T) {
	m := libraryModel()
	m.Relationships[0].Cardinality = schema.OneToOne

	if err := Lower(m); err != nil {
		t.Fatalf("Lower() error = %v", err)
	}

	// The one-to-one foreign key lands on the source entity.
	fk := m.Entity("author").Field("book_isbn")
	if fk == nil {
		t.Fatal("author has no book_isbn foreign key")
	}
	if !fk.Unique {
		t.Error("one-to-one foreign key must be unique")
	}
	if fk.Ref.Entity != "book" || fk.Ref.Field != "isbn" {
		t.Errorf("foreign key ref = %+v, want book.isbn", fk.Ref)
	}
}

func TestLowerManyToMany(t *testing.T) {
	m := libraryModel()
	m.Relationships[0].Cardinality = schema.ManyToMany

	if err := Lower(m); err != nil {
		t.Fatalf("Lower() error = %v", err)
	}

	j := m.Entity("author_book")
	if j == nil {
		t.Fatal("junction table author_book missing")
	}
	if !IsJunction(j) {
		t.Errorf("author_book does not have the junction shape: %+v", j)
	}
	if got, want := j.PrimaryKey, []string{"author_id", "book_isbn"}; !reflect.DeepEqual(got, want) {
		t.Errorf("junction primary key = %v, want %v", got, want)
	}
}

func TestLowerErrors(t *testing.T) {
	tests := []struct {
		name     string
		mutate   func(m *schema.Model)
		wantKind schema.ErrorKind
	}{
		{
			name: "foreign key name collision",
			mutate: func(m *schema.Model) {
				book := m.Entity("book")
				book.Fields = append(book.Fields, schema.Field{Name: "author_id", Type: schema.TypeText})
			},
			wantKind: schema.ErrNameCollision,
		},
		{
			name: "junction name collision",
			mutate: func(m *schema.Model) {
				m.Relationships[0].Cardinality = schema.ManyToMany
				m.Entities = append(m.Entities, schema.Entity{
					Name:       "author_book",
					Fields:     []schema.Field{{Name: "id", Type: schema.TypeInteger}},
					PrimaryKey: []string{"id"},
				})
			},
			wantKind: schema.ErrNameCollision,
		},
		{
			name: "composite primary key target",
			mutate: func(m *schema.Model) {
				author := m.Entity("author")
				author.PrimaryKey = []string{"id", "name"}
			},
			wantKind: schema.ErrUnsupportedCardinality,
		},
		{
			name: "missing endpoint",
			mutate: func(m *schema.Model) {
				m.Relationships[0].Target = "publisher"
			},
			wantKind: schema.ErrMalformedDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := libraryModel()
			tt.mutate(m)

			err := Lower(m)
			if err == nil {
				t.Fatal("Lower() error = nil")
			}
			if got := kindOf(t, err); got != tt.wantKind {
				t.Errorf("error kind = %v, want %v", got, tt.wantKind)
			}
		})
	}
}

func TestRaiseInvertsLower(t *testing.T) {
	tests := []struct {
		name        string
		cardinality schema.Cardinality
	}{
		{"one-to-one", schema.OneToOne},
		{"one-to-many", schema.OneToMany},
		{"many-to-many", schema.ManyToMany},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := libraryModel()
			m.Relationships[0].Cardinality = tt.cardinality
			want := m.Clone()

			if err := Lower(m); err != nil {
				t.Fatalf("Lower() error = %v", err)
			}
			if err := Raise(m); err != nil {
				t.Fatalf("Raise() error = %v", err)
			}

			if !reflect.DeepEqual(m, want) {
				t.Errorf("round trip diverged:\ngot  %+v\nwant %+v", m, want)
			}
		})
	}
}

func TestLowerIdempotent(t *testing.T) {
	m := libraryModel()
	if err := Lower(m); err != nil {
		t.Fatalf("Lower() error = %v", err)
	}
	want := m.Clone()

	if err := Lower(m); err != nil {
		t.Fatalf("second Lower() error = %v", err)
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("second Lower() changed the model:\ngot  %+v\nwant %+v", m, want)
	}
}

func TestRaiseIdempotent(t *testing.T) {
	m := libraryModel()
	if err := Raise(m); err != nil {
		t.Fatalf("Raise() error = %v", err)
	}
	want := m.Clone()

	if err := Raise(m); err != nil {
		t.Fatalf("second Raise() error = %v", err)
	}
	if !reflect.DeepEqual(m, want) {
		t.Errorf("second Raise() changed the model:\ngot  %+v\nwant %+v", m, want)
	}
}

func TestRaiseJunction(t *testing.T) {
	m := &schema.Model{
		Entities: []schema.Entity{
			{
				Name:       "student",
				Fields:     []schema.Field{{Name: "id", Type: schema.TypeInteger}},
				PrimaryKey: []string{"id"},
			},
			{
				Name:       "course",
				Fields:     []schema.Field{{Name: "id", Type: schema.TypeInteger}},
				PrimaryKey: []string{"id"},
			},
			{
				Name: "student_course",
				Fields: []schema.Field{
					{Name: "student_id", Type: schema.TypeInteger, Ref: &schema.Ref{Entity: "student", Field: "id"}},
					{Name: "course_id", Type: schema.TypeInteger, Ref: &schema.Ref{Entity: "course", Field: "id"}},
				},
				PrimaryKey: []string{"student_id", "course_id"},
			},
		},
	}

	if err := Raise(m); err != nil {
		t.Fatalf("Raise() error = %v", err)
	}

	if m.Entity("student_course") != nil {
		t.Error("junction table should have been removed")
	}
	if len(m.Relationships) != 1 {
		t.Fatalf("relationships = %d, want 1", len(m.Relationships))
	}
	r := m.Relationships[0]
	if r.Source != "student" || r.Target != "course" || r.Cardinality != schema.ManyToMany {
		t.Errorf("relationship = %+v, want student-course N:M", r)
	}
}

func TestRaiseUnsupportedShape(t *testing.T) {
	// A foreign key inside a primary key, without the junction shape.
	m := &schema.Model{
		Entities: []schema.Entity{
			{
				Name:       "author",
				Fields:     []schema.Field{{Name: "id", Type: schema.TypeInteger}},
				PrimaryKey: []string{"id"},
			},
			{
				Name: "book",
				Fields: []schema.Field{
					{Name: "author_id", Type: schema.TypeInteger, Ref: &schema.Ref{Entity: "author", Field: "id"}},
					{Name: "seq", Type: schema.TypeInteger},
					{Name: "title", Type: schema.TypeText},
				},
				PrimaryKey: []string{"author_id", "seq"},
			},
		},
	}

	err := Raise(m)
	if err == nil {
		t.Fatal("Raise() error = nil")
	}
	if got := kindOf(t, err); got != schema.ErrUnsupportedCardinality {
		t.Errorf("error kind = %v, want ErrUnsupportedCardinality", got)
	}
}

func TestIsJunction(t *testing.T) {
	tests := []struct {
		name string
		e    schema.Entity
		want bool
	}{
		{
			name: "canonical junction",
			e: schema.Entity{
				Name: "a_b",
				Fields: []schema.Field{
					{Name: "a_id", Ref: &schema.Ref{Entity: "a", Field: "id"}},
					{Name: "b_id", Ref: &schema.Ref{Entity: "b", Field: "id"}},
				},
				PrimaryKey: []string{"a_id", "b_id"},
			},
			want: true,
		},
		{
			name: "extra payload column",
			e: schema.Entity{
				Name: "a_b",
				Fields: []schema.Field{
					{Name: "a_id", Ref: &schema.Ref{Entity: "a", Field: "id"}},
					{Name: "b_id", Ref: &schema.Ref{Entity: "b", Field: "id"}},
					{Name: "added_at"},
				},
				PrimaryKey: []string{"a_id", "b_id"},
			},
			want: false,
		},
		{
			name: "both ends reference the same entity",
			e: schema.Entity{
				Name: "a_a",
				Fields: []schema.Field{
					{Name: "parent_id", Ref: &schema.Ref{Entity: "a", Field: "id"}},
					{Name: "child_id", Ref: &schema.Ref{Entity: "a", Field: "id"}},
				},
				PrimaryKey: []string{"parent_id", "child_id"},
			},
			want: false,
		},
		{
			name: "primary key covers one column only",
			e: schema.Entity{
				Name: "a_b",
				Fields: []schema.Field{
					{Name: "a_id", Ref: &schema.Ref{Entity: "a", Field: "id"}},
					{Name: "b_id", Ref: &schema.Ref{Entity: "b", Field: "id"}},
				},
				PrimaryKey: []string{"a_id"},
			},
			want: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsJunction(&tt.e); got != tt.want {
				t.Errorf("IsJunction() = %v, want %v", got, tt.want)
			}
		})
	}
}
