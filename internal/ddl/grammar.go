// Package ddl parses and emits SQL DDL scripts. The reader is a
// grammar-driven parser over the supported CREATE TABLE subset, producing a
// typed statement list; input outside the subset is rejected rather than
// best-effort matched.
package ddl

import (
	"strings"

	"github.com/alecthomas/participle/v2"
	"github.com/alecthomas/participle/v2/lexer"
)

// Codec reads and writes SQL DDL scripts.
type Codec struct{}

// sqlIdent strips backtick and double-quote identifier quoting.
type sqlIdent string

func (i *sqlIdent) Capture(values []string) error {
	*i = sqlIdent(strings.Trim(values[0], "`\""))
	return nil
}

var ddlLexer = lexer.MustSimple([]lexer.SimpleRule{
	{Name: "CREATE", Pattern: `(?i)\bCREATE\b`},
	{Name: "TABLE", Pattern: `(?i)\bTABLE\b`},
	{Name: "PRIMARYKEY", Pattern: `(?i)\bPRIMARY[ \r\n\t]+KEY\b`},
	{Name: "FOREIGNKEY", Pattern: `(?i)\bFOREIGN[ \r\n\t]+KEY\b`},
	{Name: "NOTNULL", Pattern: `(?i)\bNOT[ \r\n\t]+NULL\b`},
	{Name: "REFERENCES", Pattern: `(?i)\bREFERENCES\b`},
	{Name: "UNIQUE", Pattern: `(?i)\bUNIQUE\b`},
	{Name: "CONSTRAINT", Pattern: `(?i)\bCONSTRAINT\b`},
	{Name: "Int", Pattern: `\d+`},
	{Name: "Ident", Pattern: "`[^`]+`|\"[^\"]+\"|[a-zA-Z_][a-zA-Z0-9_]*"},
	{Name: "Punct", Pattern: `[(),;]`},
	{Name: "Whitespace", Pattern: `[ \r\n\t]+`},
	{Name: "Comment", Pattern: `--[^\n]*`},
})

type scriptAST struct {
	Tables []tableAST `parser:"@@*"`
}

type tableAST struct {
	Pos   lexer.Position
	Name  sqlIdent       `parser:"CREATE TABLE @Ident"`
	Items []tableItemAST `parser:"'(' @@ (',' @@)* ')' ';'"`
}

type tableItemAST struct {
	PrimaryKey *primaryKeyAST `parser:"@@"`
	ForeignKey *foreignKeyAST `parser:"| @@"`
	Unique     *uniqueAST     `parser:"| @@"`
	Column     *columnAST     `parser:"| @@"`
}

type primaryKeyAST struct {
	Pos     lexer.Position
	Columns []sqlIdent `parser:"(CONSTRAINT Ident)? PRIMARYKEY '(' @Ident (',' @Ident)* ')'"`
}

type foreignKeyAST struct {
	Pos        lexer.Position
	Columns    []sqlIdent `parser:"(CONSTRAINT Ident)? FOREIGNKEY '(' @Ident (',' @Ident)* ')'"`
	RefTable   sqlIdent   `parser:"REFERENCES @Ident"`
	RefColumns []sqlIdent `parser:"'(' @Ident (',' @Ident)* ')'"`
}

type uniqueAST struct {
	Pos     lexer.Position
	Columns []sqlIdent `parser:"(CONSTRAINT Ident)? UNIQUE '(' @Ident (',' @Ident)* ')'"`
}

type columnAST struct {
	Pos   lexer.Position
	Name  sqlIdent        `parser:"@Ident"`
	Type  typeAST         `parser:"@@"`
	Attrs []columnAttrAST `parser:"@@*"`
}

type typeAST struct {
	Name string `parser:"@Ident"`
	Args []int  `parser:"('(' @Int (',' @Int)* ')')?"`
}

type columnAttrAST struct {
	NotNull    bool `parser:"@NOTNULL"`
	PrimaryKey bool `parser:"| @PRIMARYKEY"`
	Unique     bool `parser:"| @UNIQUE"`
}

var ddlParser = participle.MustBuild[scriptAST](
	participle.Lexer(ddlLexer),
	participle.Elide("Whitespace", "Comment"),
	participle.UseLookahead(2),
)
