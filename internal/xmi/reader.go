package xmi

import (
	"encoding/xml"
	"fmt"

	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

// Some producers emit xmi:type/xmi:id, others plain type/id; both are
// accepted. The namespaced variant comes first so it wins when present.
type inModel struct {
	XMLName  xml.Name
	Name     string      `xml:"name,attr"`
	Elements []inElement `xml:"packagedElement"`
}

type inElement struct {
	TypeNS string `xml:"http://schema.omg.org/spec/XMI/2.1 type,attr"`
	Type   string `xml:"type,attr"`
	IDNS   string `xml:"http://schema.omg.org/spec/XMI/2.1 id,attr"`
	ID     string `xml:"id,attr"`
	Name   string `xml:"name,attr"`

	Attributes []inAttribute `xml:"ownedAttribute"`
	Ends       []inEnd       `xml:"ownedEnd"`
}

// The leading namespaced field absorbs any xmi:type element annotation so it
// cannot shadow the plain type attribute carrying the referenced type.
type inAttribute struct {
	TypeNS string `xml:"http://schema.omg.org/spec/XMI/2.1 type,attr"`
	Type   string `xml:"type,attr"`
	Name   string `xml:"name,attr"`
	IsID   string `xml:"isID,attr"`
	Lower  string `xml:"lower,attr"`
}

type inEnd struct {
	TypeNS string `xml:"http://schema.omg.org/spec/XMI/2.1 type,attr"`
	Type   string `xml:"type,attr"`
	Name   string `xml:"name,attr"`
	Lower  string `xml:"lower,attr"`
	Upper  string `xml:"upper,attr"`
}

func (e *inElement) xmiType() string {
	if e.TypeNS != "" {
		return e.TypeNS
	}
	return e.Type
}

func (e *inElement) xmiID() string {
	if e.IDNS != "" {
		return e.IDNS
	}
	return e.ID
}

// Read parses an XMI 2.1 document into a canonical model. Associations are
// translated directly into relationships, so the result is already in
// raised form.
func (Codec) Read(data []byte) (*schema.Model, error) {
	var doc inModel
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, "", "not well-formed XMI: %v", err)
	}
	if doc.XMLName.Local != "Model" {
		return nil, schema.NewError(schema.ErrMalformedDocument, doc.XMLName.Local,
			"root element is %q, expected uml:Model", doc.XMLName.Local)
	}

	m := &schema.Model{Name: doc.Name}
	classByID := make(map[string]string)

	for _, el := range doc.Elements {
		if el.xmiType() != typeClass {
			continue
		}
		if el.Name == "" {
			return nil, schema.NewError(schema.ErrMalformedDocument, el.xmiID(), "class has no name")
		}
		entity, err := readClass(el)
		if err != nil {
			return nil, err
		}
		if el.xmiID() != "" {
			classByID[el.xmiID()] = entity.Name
		}
		m.Entities = append(m.Entities, entity)
	}

	for _, el := range doc.Elements {
		if el.xmiType() != typeAssociation {
			continue
		}
		rel, err := readAssociation(el, classByID)
		if err != nil {
			return nil, err
		}
		m.Relationships = append(m.Relationships, rel)
	}

	if err := m.Validate(); err != nil {
		return nil, err
	}
	return m, nil
}

func readClass(el inElement) (schema.Entity, error) {
	entity := schema.Entity{Name: el.Name}
	for _, attr := range el.Attributes {
		if attr.Name == "" {
			return entity, schema.NewError(schema.ErrMalformedDocument, el.Name,
				"class %q has an attribute without a name", el.Name)
		}
		locator := el.Name + "." + attr.Name
		if attr.Type == "" {
			return entity, schema.NewError(schema.ErrUnknownType, locator,
				"attribute %q has no type", attr.Name)
		}
		dataType, ok := typemap.FromUML(attr.Type)
		if !ok {
			return entity, schema.NewError(schema.ErrUnknownType, locator,
				"UML type %q has no semantic mapping", attr.Type)
		}
		entity.Fields = append(entity.Fields, schema.Field{
			Name:     attr.Name,
			Type:     dataType,
			Nullable: attr.Lower == "0" && attr.IsID != "true",
		})
		if attr.IsID == "true" {
			entity.PrimaryKey = append(entity.PrimaryKey, attr.Name)
		}
	}
	if len(entity.PrimaryKey) == 0 {
		return entity, schema.NewError(schema.ErrMalformedDocument, el.Name,
			"class %q has no isID attribute marking a primary key", el.Name)
	}
	return entity, nil
}

func readAssociation(el inElement, classByID map[string]string) (schema.Relationship, error) {
	var rel schema.Relationship
	locator := el.xmiID()
	if locator == "" {
		locator = "association"
	}

	if len(el.Ends) != 2 {
		return rel, schema.NewError(schema.ErrMalformedDocument, locator,
			"association has %d ends, expected 2", len(el.Ends))
	}

	var classes [2]string
	var many [2]bool
	for i, end := range el.Ends {
		class, ok := classByID[end.Type]
		if !ok {
			return rel, schema.NewError(schema.ErrMalformedDocument, locator,
				"association end references %q, which is not a modeled class", end.Type)
		}
		classes[i] = class

		isMany, err := endIsMany(end, locator)
		if err != nil {
			return rel, err
		}
		many[i] = isMany
	}

	switch {
	case !many[0] && !many[1]:
		rel = schema.Relationship{
			Source: classes[0], Target: classes[1],
			Cardinality: schema.OneToOne,
			SourceRole:  el.Ends[0].Name, TargetRole: el.Ends[1].Name,
		}
	case many[0] && many[1]:
		rel = schema.Relationship{
			Source: classes[0], Target: classes[1],
			Cardinality: schema.ManyToMany,
			SourceRole:  el.Ends[0].Name, TargetRole: el.Ends[1].Name,
		}
	case many[1]:
		rel = schema.Relationship{
			Source: classes[0], Target: classes[1],
			Cardinality: schema.OneToMany,
			SourceRole:  el.Ends[0].Name, TargetRole: el.Ends[1].Name,
		}
	default:
		rel = schema.Relationship{
			Source: classes[1], Target: classes[0],
			Cardinality: schema.OneToMany,
			SourceRole:  el.Ends[1].Name, TargetRole: el.Ends[0].Name,
		}
	}
	return rel, nil
}

// endIsMany maps an end's multiplicity onto one/many. Only 0..1, 1..1, 0..*
// and 1..* are recognized; anything else maps to none of the supported
// cardinalities.
func endIsMany(end inEnd, locator string) (bool, error) {
	lower := end.Lower
	if lower == "" {
		lower = "1"
	}
	upper := end.Upper
	if upper == "" {
		upper = "1"
	}

	if lower != "0" && lower != "1" {
		return false, unsupportedMultiplicity(locator, lower, upper)
	}
	switch upper {
	case "1":
		return false, nil
	case "*", "-1":
		return true, nil
	}
	return false, unsupportedMultiplicity(locator, lower, upper)
}

func unsupportedMultiplicity(locator, lower, upper string) error {
	return schema.NewError(schema.ErrUnsupportedCardinality, locator,
		"association multiplicity %s maps to none of 1:1, 1:N, N:M", fmt.Sprintf("%s..%s", lower, upper))
}
