// Package token defines the lexical tokens of the schema language.
package token

import "fmt"

// Type identifies the kind of a lexical token.
type Type int32

const (
	// Special tokens
	EOF Type = iota
	ILLEGAL

	// Literals
	IDENT  // category_id, Customer
	NUMBER // 123, 45.67
	STRING // "hello" or 'hello'

	// Punctuation and operators
	COLON    // :
	COMMA    // ,
	DOT      // .
	EQ       // =
	NE       // !=
	LT       // <
	GT       // >
	LE       // <=
	GE       // >=
	LPAREN   // (
	RPAREN   // )
	LBRACKET // [
	RBRACKET // ]
	LBRACE   // {
	RBRACE   // }

	// Declaration keywords
	MODEL // Model
	PIVOT // Pivot
	ENUM  // Enum

	// Section keywords
	FIELDS      // fields
	INDEXES     // indexes
	RELATIONS   // relations
	COMPUTED    // computed_attributes
	CONSTRAINTS // constraints

	// Expression keywords
	AND   // and
	OR    // or
	NOT   // not
	IS    // is
	NULL  // null
	TRUE  // true
	FALSE // false
)

// String returns a human-readable representation of the token type.
func (t Type) String() string {
	if name, ok := tokenNames[t]; ok {
		return name
	}
	return fmt.Sprintf("TOKEN(%d)", t)
}

// tokenNames maps token types to their string representations.
var tokenNames = map[Type]string{
	EOF:     "EOF",
	ILLEGAL: "ILLEGAL",

	IDENT:  "IDENT",
	NUMBER: "NUMBER",
	STRING: "STRING",

	COLON:    ":",
	COMMA:    ",",
	DOT:      ".",
	EQ:       "=",
	NE:       "!=",
	LT:       "<",
	GT:       ">",
	LE:       "<=",
	GE:       ">=",
	LPAREN:   "(",
	RPAREN:   ")",
	LBRACKET: "[",
	RBRACKET: "]",
	LBRACE:   "{",
	RBRACE:   "}",

	MODEL: "Model",
	PIVOT: "Pivot",
	ENUM:  "Enum",

	FIELDS:      "fields",
	INDEXES:     "indexes",
	RELATIONS:   "relations",
	COMPUTED:    "computed_attributes",
	CONSTRAINTS: "constraints",

	AND:   "and",
	OR:    "or",
	NOT:   "not",
	IS:    "is",
	NULL:  "null",
	TRUE:  "true",
	FALSE: "false",
}

// keywords maps keyword strings to their token types.
// Declaration keywords are capitalized; everything else is lowercase.
// Lookup is case-sensitive: `model` is an ordinary identifier.
var keywords = map[string]Type{
	"Model": MODEL,
	"Pivot": PIVOT,
	"Enum":  ENUM,

	"fields":              FIELDS,
	"indexes":             INDEXES,
	"relations":           RELATIONS,
	"computed_attributes": COMPUTED,
	"constraints":         CONSTRAINTS,

	"and":   AND,
	"or":    OR,
	"not":   NOT,
	"is":    IS,
	"null":  NULL,
	"true":  TRUE,
	"false": FALSE,
}

// LookupIdent returns the token type for the given identifier.
// If the identifier is a keyword, the keyword token type is returned,
// otherwise IDENT.
func LookupIdent(ident string) Type {
	if tok, ok := keywords[ident]; ok {
		return tok
	}
	return IDENT
}

// IsDeclKeyword returns true for the three top-level declaration keywords.
// The parser resynchronizes on these after a syntax error.
func IsDeclKeyword(t Type) bool {
	return t == MODEL || t == PIVOT || t == ENUM
}

// IsSectionKeyword returns true for the five declaration section keywords.
func IsSectionKeyword(t Type) bool {
	return t >= FIELDS && t <= CONSTRAINTS
}

// IsComparison returns true for the six comparison operator tokens.
func IsComparison(t Type) bool {
	return t >= EQ && t <= GE
}

// Token represents a lexical token with position information.
type Token struct {
	Type    Type
	Literal string
	Pos     Position // start of the token
	End     Position // position just past the token
}

// Span returns the source range covered by the token.
func (t Token) Span() Span {
	return Span{Start: t.Pos, End: t.End}
}
