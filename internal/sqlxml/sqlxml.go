// Package sqlxml parses and emits the SQL Schema XML dialect: a declarative
// element set (database/table/column/foreignKey/reference) describing the
// same relational constructs the DDL format expresses as SQL syntax. It
// shares the type tables and the relationship raise/lower passes with the
// ddl package, so the two relational formats are cardinality-preserving
// mirrors of each other.
package sqlxml

import "encoding/xml"

// Codec reads and writes SQL Schema XML documents.
type Codec struct{}

type xmlDatabase struct {
	XMLName xml.Name   `xml:"database"`
	Name    string     `xml:"name,attr,omitempty"`
	Tables  []xmlTable `xml:"table"`
}

type xmlTable struct {
	Name        string          `xml:"name,attr"`
	Columns     []xmlColumn     `xml:"column"`
	ForeignKeys []xmlForeignKey `xml:"foreignKey"`
}

type xmlColumn struct {
	Name       string `xml:"name,attr"`
	Type       string `xml:"type,attr"`
	PrimaryKey string `xml:"primaryKey,attr"`
	Nullable   string `xml:"nullable,attr"`
	Unique     string `xml:"unique,attr,omitempty"`
}

type xmlForeignKey struct {
	TargetTable string         `xml:"targetTable,attr"`
	References  []xmlReference `xml:"reference"`
}

type xmlReference struct {
	LocalColumn   string `xml:"localColumn,attr"`
	ForeignColumn string `xml:"foreignColumn,attr"`
}
