// Package diag provides the diagnostic engine for the compiler.
//
// Every pipeline stage records findings into a Bag instead of aborting.
// The Bag is a passive accumulator; the driver consults HasErrors to
// decide final success or failure.
package diag

import (
	"fmt"

	"github.com/dspeclang/dspec/pkg/token"
)

// Kind identifies a diagnostic category.
type Kind int

// Diagnostic kinds.
const (
	LexError Kind = iota
	SyntaxError
	ArityError
	DuplicateName
	DuplicateTopLevelName
	DuplicateSection
	UndefinedReference
	UndefinedField
	UndefinedEnum
	UndefinedEnumMember
	TypeMismatch
	MissingEnumValue
	InvalidForeignKeyTarget
	InvalidRelationTarget
	CyclicComputedAttribute
)

// kindNames maps diagnostic kinds to their identifiers.
var kindNames = map[Kind]string{
	LexError:                "LexError",
	SyntaxError:             "SyntaxError",
	ArityError:              "ArityError",
	DuplicateName:           "DuplicateName",
	DuplicateTopLevelName:   "DuplicateTopLevelName",
	DuplicateSection:        "DuplicateSection",
	UndefinedReference:      "UndefinedReference",
	UndefinedField:          "UndefinedField",
	UndefinedEnum:           "UndefinedEnum",
	UndefinedEnumMember:     "UndefinedEnumMember",
	TypeMismatch:            "TypeMismatch",
	MissingEnumValue:        "MissingEnumValue",
	InvalidForeignKeyTarget: "InvalidForeignKeyTarget",
	InvalidRelationTarget:   "InvalidRelationTarget",
	CyclicComputedAttribute: "CyclicComputedAttribute",
}

// String returns the identifier of the diagnostic kind.
func (k Kind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("Kind(%d)", k)
}

// ParseKind converts an identifier to a Kind. Returns false for
// unknown identifiers.
func ParseKind(s string) (Kind, bool) {
	for k, name := range kindNames {
		if name == s {
			return k, true
		}
	}
	return 0, false
}

// Diagnostic is a structured finding with source location and severity.
type Diagnostic struct {
	Kind     Kind
	Severity Severity
	Message  string
	Unit     string // source unit identifier
	Span     token.Span
}

// Error renders the diagnostic in file:line:col format.
func (d Diagnostic) Error() string {
	return fmt.Sprintf("%s:%d:%d: %s: %s [%s]",
		d.Unit, d.Span.Start.Line, d.Span.Start.Column, d.Severity, d.Message, d.Kind)
}
