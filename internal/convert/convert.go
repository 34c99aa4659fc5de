// Package convert dispatches conversion requests to the format codecs. It
// is the engine's only entry point: bytes in, bytes out, no I/O and no
// state shared between calls.
package convert

import (
	"strings"

	"github.com/schemabridge/schemabridge/internal/ddl"
	"github.com/schemabridge/schemabridge/internal/schema"
	"github.com/schemabridge/schemabridge/internal/sqlxml"
	"github.com/schemabridge/schemabridge/internal/xmi"
)

// Format identifies one of the supported document formats.
type Format string

const (
	XMI       Format = "xmi"
	DDL       Format = "ddl"
	SchemaXML Format = "schema-xml"
)

// Codec is a format front-end. Read produces a canonical model in raised
// form; Write consumes one. The relational codecs run the relationship
// resolver internally (raise at the end of Read, lower at the start of
// Write), so every model crossing this boundary carries explicit
// relationships and no physical foreign keys.
type Codec interface {
	Read(data []byte) (*schema.Model, error)
	Write(m *schema.Model) ([]byte, error)
}

var codecs = map[Format]Codec{
	XMI:       xmi.Codec{},
	DDL:       ddl.Codec{},
	SchemaXML: sqlxml.Codec{},
}

// Every supported direction crosses the UML/relational boundary; the two
// relational formats convert to each other only via XMI.
var supported = map[[2]Format]bool{
	{XMI, DDL}:       true,
	{DDL, XMI}:       true,
	{XMI, SchemaXML}: true,
	{SchemaXML, XMI}: true,
}

// ParseFormat maps a user-supplied format name onto a Format.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "xmi", "uml":
		return XMI, nil
	case "ddl", "sql":
		return DDL, nil
	case "schema-xml", "sqlxml":
		return SchemaXML, nil
	}
	return "", schema.NewError(schema.ErrUnsupportedConversion, s, "unknown format %q", s)
}

// Convert runs one of the four supported conversions end to end. The input
// document is parsed into a fresh canonical model, which is consumed by
// exactly one writer and then discarded.
func Convert(source, target Format, input []byte) ([]byte, error) {
	if !supported[[2]Format{source, target}] {
		return nil, schema.NewError(schema.ErrUnsupportedConversion, string(source)+"->"+string(target),
			"conversion from %s to %s is not supported", source, target)
	}
	m, err := codecs[source].Read(input)
	if err != nil {
		return nil, err
	}
	return codecs[target].Write(m)
}

// WriteModel emits an already-constructed model in the given format. Used
// by sources that build models without a document, such as database
// introspection.
func WriteModel(m *schema.Model, target Format) ([]byte, error) {
	codec, ok := codecs[target]
	if !ok {
		return nil, schema.NewError(schema.ErrUnsupportedConversion, string(target),
			"unknown target format %q", target)
	}
	return codec.Write(m)
}
