// Package xmi parses and emits UML class-diagram documents serialized as
// XMI 2.1. Classes map to entities, owned attributes to fields (the isID
// marker selects primary-key members), and associations to relationships
// with their cardinality read from the end multiplicities.
package xmi

import (
	"github.com/google/uuid"
)

const (
	xmiNamespace = "http://schema.omg.org/spec/XMI/2.1"
	umlNamespace = "http://www.eclipse.org/uml2/3.0.0/UML"

	xmiVersion = "2.1"

	typeClass       = "uml:Class"
	typeAssociation = "uml:Association"
)

// Codec reads and writes XMI 2.1 documents.
type Codec struct{}

// idNamespace seeds the deterministic xmi:id values so that identical models
// serialize byte-identically.
var idNamespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("github.com/schemabridge/schemabridge"))

func elementID(kind, qualified string) string {
	return "id_" + uuid.NewSHA1(idNamespace, []byte(kind+":"+qualified)).String()
}
