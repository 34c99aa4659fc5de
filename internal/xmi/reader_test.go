package xmi

import (
	"errors"
	"strings"
	"testing"

	"github.com/schemabridge/schemabridge/internal/schema"
)

const libraryXMI = `<?xml version="1.0" encoding="UTF-8"?>
<uml:Model xmlns:xmi="http://schema.omg.org/spec/XMI/2.1" xmlns:uml="http://www.eclipse.org/uml2/3.0.0/UML" xmi:version="2.1" name="Library">
  <packagedElement xmi:type="uml:Class" xmi:id="c_author" name="author">
    <ownedAttribute xmi:id="a1" name="id" type="Integer" isID="true"/>
    <ownedAttribute xmi:id="a2" name="name" type="String"/>
    <ownedAttribute xmi:id="a3" name="bio" type="String" lower="0"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Class" xmi:id="c_book" name="book">
    <ownedAttribute xmi:id="b1" name="isbn" type="String" isID="true"/>
    <ownedAttribute xmi:id="b2" name="title" type="String"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Association" xmi:id="as1">
    <ownedEnd xmi:id="e1" type="c_author" lower="1" upper="1"/>
    <ownedEnd xmi:id="e2" type="c_book" name="works" lower="0" upper="*"/>
  </packagedElement>
</uml:Model>
`

func TestReadLibraryDiagram(t *testing.T) {
	m, err := Codec{}.Read([]byte(libraryXMI))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}

	if m.Name != "Library" {
		t.Errorf("model name = %q, want Library", m.Name)
	}
	if len(m.Entities) != 2 {
		t.Fatalf("entities = %d, want 2", len(m.Entities))
	}

	author := m.Entity("author")
	if got := author.PrimaryKey; len(got) != 1 || got[0] != "id" {
		t.Errorf("author primary key = %v, want [id]", got)
	}
	if f := author.Field("name"); f.Nullable || f.Type != schema.TypeText {
		t.Errorf("name field = %+v, want required Text", f)
	}
	if f := author.Field("bio"); !f.Nullable {
		t.Error("bio should be nullable (lower=0)")
	}

	if len(m.Relationships) != 1 {
		t.Fatalf("relationships = %d, want 1", len(m.Relationships))
	}
	r := m.Relationships[0]
	if r.Source != "author" || r.Target != "book" || r.Cardinality != schema.OneToMany {
		t.Errorf("relationship = %+v, want author 1:N book", r)
	}
	if r.TargetRole != "works" {
		t.Errorf("target role = %q, want works", r.TargetRole)
	}
}

func TestReadPlainAttributeNames(t *testing.T) {
	// Some producers omit the xmi: prefix on type and id.
	input := `<?xml version="1.0"?>
<Model name="M">
  <packagedElement type="uml:Class" id="c1" name="thing">
    <ownedAttribute name="id" type="Integer" isID="true"/>
  </packagedElement>
</Model>
`
	m, err := Codec{}.Read([]byte(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if m.Entity("thing") == nil {
		t.Error("class with plain attributes not read")
	}
}

func TestReadAssociationDirections(t *testing.T) {
	doc := func(endA, endB string) string {
		return `<?xml version="1.0"?>
<uml:Model xmlns:xmi="http://schema.omg.org/spec/XMI/2.1" xmlns:uml="http://www.eclipse.org/uml2/3.0.0/UML" xmi:version="2.1" name="M">
  <packagedElement xmi:type="uml:Class" xmi:id="c_a" name="a">
    <ownedAttribute xmi:id="a1" name="id" type="Integer" isID="true"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Class" xmi:id="c_b" name="b">
    <ownedAttribute xmi:id="b1" name="id" type="Integer" isID="true"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Association" xmi:id="as1">
    ` + endA + `
    ` + endB + `
  </packagedElement>
</uml:Model>
`
	}

	tests := []struct {
		name       string
		endA, endB string
		want       schema.Relationship
	}{
		{
			name: "one to one",
			endA: `<ownedEnd xmi:id="e1" type="c_a" lower="1" upper="1"/>`,
			endB: `<ownedEnd xmi:id="e2" type="c_b" lower="1" upper="1"/>`,
			want: schema.Relationship{Source: "a", Target: "b", Cardinality: schema.OneToOne},
		},
		{
			name: "many side second",
			endA: `<ownedEnd xmi:id="e1" type="c_a" lower="1" upper="1"/>`,
			endB: `<ownedEnd xmi:id="e2" type="c_b" lower="0" upper="*"/>`,
			want: schema.Relationship{Source: "a", Target: "b", Cardinality: schema.OneToMany},
		},
		{
			name: "many side first normalizes direction",
			endA: `<ownedEnd xmi:id="e1" type="c_a" lower="0" upper="*"/>`,
			endB: `<ownedEnd xmi:id="e2" type="c_b" lower="1" upper="1"/>`,
			want: schema.Relationship{Source: "b", Target: "a", Cardinality: schema.OneToMany},
		},
		{
			name: "many to many",
			endA: `<ownedEnd xmi:id="e1" type="c_a" lower="0" upper="*"/>`,
			endB: `<ownedEnd xmi:id="e2" type="c_b" lower="0" upper="-1"/>`,
			want: schema.Relationship{Source: "a", Target: "b", Cardinality: schema.ManyToMany},
		},
		{
			name: "missing multiplicity defaults to 1..1",
			endA: `<ownedEnd xmi:id="e1" type="c_a"/>`,
			endB: `<ownedEnd xmi:id="e2" type="c_b"/>`,
			want: schema.Relationship{Source: "a", Target: "b", Cardinality: schema.OneToOne},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, err := Codec{}.Read([]byte(doc(tt.endA, tt.endB)))
			if err != nil {
				t.Fatalf("Read() error = %v", err)
			}
			if len(m.Relationships) != 1 {
				t.Fatalf("relationships = %d, want 1", len(m.Relationships))
			}
			if got := m.Relationships[0]; got != tt.want {
				t.Errorf("relationship = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestReadErrors(t *testing.T) {
	classes := `
  <packagedElement xmi:type="uml:Class" xmi:id="c_a" name="a">
    <ownedAttribute xmi:id="a1" name="id" type="Integer" isID="true"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Class" xmi:id="c_b" name="b">
    <ownedAttribute xmi:id="b1" name="id" type="Integer" isID="true"/>
  </packagedElement>`

	wrap := func(inner string) string {
		return `<?xml version="1.0"?>
<uml:Model xmlns:xmi="http://schema.omg.org/spec/XMI/2.1" xmlns:uml="http://www.eclipse.org/uml2/3.0.0/UML" xmi:version="2.1" name="M">` +
			inner + `
</uml:Model>
`
	}

	tests := []struct {
		name     string
		input    string
		wantKind schema.ErrorKind
	}{
		{
			name:     "not XML",
			input:    "CREATE TABLE author (id INTEGER);",
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name:     "wrong root element",
			input:    `<uml:Package xmlns:uml="http://www.eclipse.org/uml2/3.0.0/UML" name="M"/>`,
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name: "class without name",
			input: wrap(`
  <packagedElement xmi:type="uml:Class" xmi:id="c_x">
    <ownedAttribute xmi:id="x1" name="id" type="Integer" isID="true"/>
  </packagedElement>`),
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name: "class without primary key",
			input: wrap(`
  <packagedElement xmi:type="uml:Class" xmi:id="c_x" name="x">
    <ownedAttribute xmi:id="x1" name="id" type="Integer"/>
  </packagedElement>`),
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name: "unknown UML type",
			input: wrap(`
  <packagedElement xmi:type="uml:Class" xmi:id="c_x" name="x">
    <ownedAttribute xmi:id="x1" name="id" type="Currency" isID="true"/>
  </packagedElement>`),
			wantKind: schema.ErrUnknownType,
		},
		{
			name: "association with one end",
			input: wrap(classes + `
  <packagedElement xmi:type="uml:Association" xmi:id="as1">
    <ownedEnd xmi:id="e1" type="c_a" lower="1" upper="1"/>
  </packagedElement>`),
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name: "association end references unknown class",
			input: wrap(classes + `
  <packagedElement xmi:type="uml:Association" xmi:id="as1">
    <ownedEnd xmi:id="e1" type="c_a" lower="1" upper="1"/>
    <ownedEnd xmi:id="e2" type="c_ghost" lower="1" upper="1"/>
  </packagedElement>`),
			wantKind: schema.ErrMalformedDocument,
		},
		{
			name: "bounded multiplicity",
			input: wrap(classes + `
  <packagedElement xmi:type="uml:Association" xmi:id="as1">
    <ownedEnd xmi:id="e1" type="c_a" lower="1" upper="1"/>
    <ownedEnd xmi:id="e2" type="c_b" lower="2" upper="5"/>
  </packagedElement>`),
			wantKind: schema.ErrUnsupportedCardinality,
		},
		{
			name: "duplicate class name",
			input: wrap(`
  <packagedElement xmi:type="uml:Class" xmi:id="c_1" name="a">
    <ownedAttribute xmi:id="a1" name="id" type="Integer" isID="true"/>
  </packagedElement>
  <packagedElement xmi:type="uml:Class" xmi:id="c_2" name="a">
    <ownedAttribute xmi:id="a2" name="id" type="Integer" isID="true"/>
  </packagedElement>`),
			wantKind: schema.ErrMalformedDocument,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Codec{}.Read([]byte(tt.input))
			if err == nil {
				t.Fatal("Read() error = nil")
			}
			var serr *schema.Error
			if !errors.As(err, &serr) || serr.Kind != tt.wantKind {
				t.Errorf("error = %v, want kind %v", err, tt.wantKind)
			}
		})
	}
}

func TestReadIgnoresForeignElements(t *testing.T) {
	input := strings.Replace(libraryXMI,
		`<packagedElement xmi:type="uml:Association" xmi:id="as1">`,
		`<packagedElement xmi:type="uml:Comment" xmi:id="note1"/>
  <packagedElement xmi:type="uml:Association" xmi:id="as1">`, 1)

	m, err := Codec{}.Read([]byte(input))
	if err != nil {
		t.Fatalf("Read() error = %v", err)
	}
	if len(m.Entities) != 2 || len(m.Relationships) != 1 {
		t.Errorf("entities/relationships = %d/%d, want 2/1", len(m.Entities), len(m.Relationships))
	}
}
