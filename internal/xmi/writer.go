package xmi

import (
	"encoding/xml"
	"fmt"

	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/typemap"
)

type outModel struct {
	XMLName    xml.Name     `xml:"uml:Model"`
	XMLNSXMI   string       `xml:"xmlns:xmi,attr"`
	XMLNSUML   string       `xml:"xmlns:uml,attr"`
	XMIVersion string       `xml:"xmi:version,attr"`
	Name       string       `xml:"name,attr"`
	Elements   []outElement `xml:"packagedElement"`
}

type outElement struct {
	Type string `xml:"xmi:type,attr"`
	ID   string `xml:"xmi:id,attr"`
	Name string `xml:"name,attr,omitempty"`

	Attributes []outAttribute `xml:"ownedAttribute,omitempty"`
	Ends       []outEnd       `xml:"ownedEnd,omitempty"`
}

type outAttribute struct {
	ID    string `xml:"xmi:id,attr"`
	Name  string `xml:"name,attr"`
	Type  string `xml:"type,attr"`
	IsID  string `xml:"isID,attr,omitempty"`
	Lower string `xml:"lower,attr,omitempty"`
}

type outEnd struct {
	ID    string `xml:"xmi:id,attr"`
	Type  string `xml:"type,attr"`
	Name  string `xml:"name,attr,omitempty"`
	Lower string `xml:"lower,attr"`
	Upper string `xml:"upper,attr"`
}

// Write emits a model as a well-formed XMI 2.1 document. The model must be
// in raised form; entity and field names are emitted verbatim so round
// trips preserve identifiers.
func (Codec) Write(m *schema.Model) ([]byte, error) {
	name := m.Name
	if name == "" {
		name = "Model"
	}
	doc := outModel{
		XMLNSXMI:   xmiNamespace,
		XMLNSUML:   umlNamespace,
		XMIVersion: xmiVersion,
		Name:       name,
	}

	classIDs := make(map[string]string, len(m.Entities))
	for _, e := range m.Entities {
		id := elementID("class", e.Name)
		classIDs[e.Name] = id

		el := outElement{Type: typeClass, ID: id, Name: e.Name}
		for _, f := range e.Fields {
			attr := outAttribute{
				ID:   elementID("attr", e.Name+"."+f.Name),
				Name: f.Name,
				Type: typemap.ToUML(f.Type),
			}
			if e.IsPrimaryKey(f.Name) {
				attr.IsID = "true"
			} else if f.Nullable {
				attr.Lower = "0"
			}
			el.Attributes = append(el.Attributes, attr)
		}
		doc.Elements = append(doc.Elements, el)
	}

	for i, r := range m.Relationships {
		el, err := writeAssociation(i, r, classIDs)
		if err != nil {
			return nil, err
		}
		doc.Elements = append(doc.Elements, el)
	}

	body, err := xml.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, schema.NewError(schema.ErrMalformedDocument, "", "cannot serialize XMI: %v", err)
	}
	return append([]byte(xml.Header), append(body, '\n')...), nil
}

func writeAssociation(index int, r schema.Relationship, classIDs map[string]string) (outElement, error) {
	locator := r.Source + "-" + r.Target
	srcID, ok := classIDs[r.Source]
	if !ok {
		return outElement{}, schema.NewError(schema.ErrMalformedDocument, locator,
			"relationship endpoint %q is not a modeled entity", r.Source)
	}
	tgtID, ok := classIDs[r.Target]
	if !ok {
		return outElement{}, schema.NewError(schema.ErrMalformedDocument, locator,
			"relationship endpoint %q is not a modeled entity", r.Target)
	}

	// The index keeps ids distinct when two relationships share endpoints.
	id := elementID("assoc", fmt.Sprintf("%s:%d", locator, index))
	src := outEnd{ID: id + "_a", Type: srcID, Name: r.SourceRole}
	tgt := outEnd{ID: id + "_b", Type: tgtID, Name: r.TargetRole}

	switch r.Cardinality {
	case schema.OneToOne:
		src.Lower, src.Upper = "1", "1"
		tgt.Lower, tgt.Upper = "1", "1"
	case schema.OneToMany:
		src.Lower, src.Upper = "1", "1"
		tgt.Lower, tgt.Upper = "0", "*"
	case schema.ManyToMany:
		src.Lower, src.Upper = "0", "*"
		tgt.Lower, tgt.Upper = "0", "*"
	default:
		return outElement{}, schema.NewError(schema.ErrUnsupportedCardinality, locator,
			"relationship %s has no cardinality", locator)
	}

	return outElement{Type: typeAssociation, ID: id, Ends: []outEnd{src, tgt}}, nil
}
