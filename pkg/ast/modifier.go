package ast

import (
	"fmt"

	"github.com/dspeclang/dspec/pkg/token"
)

// ModifierKind identifies a field modifier variant.
type ModifierKind int

// Modifier kinds. At most one of each kind may appear per field.
const (
	ModPrimaryKey ModifierKind = iota
	ModUnique
	ModIndex
	ModNullable
	ModEncrypted
	ModUnsigned
	ModDefault
	ModForeignKey
	ModOnDelete
	ModOnUpdate
)

// modifierNames maps modifier kinds to their source spellings.
var modifierNames = map[ModifierKind]string{
	ModPrimaryKey: "primary_key",
	ModUnique:     "unique",
	ModIndex:      "index",
	ModNullable:   "nullable",
	ModEncrypted:  "encrypted",
	ModUnsigned:   "unsigned",
	ModDefault:    "default",
	ModForeignKey: "foreign_key",
	ModOnDelete:   "on_delete",
	ModOnUpdate:   "on_update",
}

// String returns the source spelling of the modifier kind.
func (k ModifierKind) String() string {
	if name, ok := modifierNames[k]; ok {
		return name
	}
	return fmt.Sprintf("modifier(%d)", k)
}

// LookupModifierKind returns the modifier kind for a source spelling.
func LookupModifierKind(name string) (ModifierKind, bool) {
	for k, n := range modifierNames {
		if n == name {
			return k, true
		}
	}
	return 0, false
}

// HasValue returns true for modifier kinds that take a `: value` argument.
func (k ModifierKind) HasValue() bool {
	switch k {
	case ModDefault, ModForeignKey, ModOnDelete, ModOnUpdate:
		return true
	}
	return false
}

// ReferentialAction is the action named by an on_delete modifier.
type ReferentialAction string

// Referential actions.
const (
	ActionCascade  ReferentialAction = "cascade"
	ActionRestrict ReferentialAction = "restrict"
	ActionSetNull  ReferentialAction = "set_null"
	ActionNoAction ReferentialAction = "no_action"
)

// LookupAction returns the referential action for a source spelling.
func LookupAction(name string) (ReferentialAction, bool) {
	switch ReferentialAction(name) {
	case ActionCascade, ActionRestrict, ActionSetNull, ActionNoAction:
		return ReferentialAction(name), true
	}
	return "", false
}

// Modifier is a per-field annotation. Only the value fields matching
// Kind are meaningful.
type Modifier struct {
	Kind ModifierKind
	Span token.Span

	// ModDefault: exactly one of Default or DefaultEnum is set.
	Default     *Literal
	DefaultEnum *EnumValueRef

	// ModForeignKey: Model.field target.
	Target      string
	TargetField string

	// ModOnDelete.
	Action ReferentialAction

	// ModOnUpdate: function call such as now().
	Call string
}

// EnumValueRef is an Enum.Member reference used as a default value.
type EnumValueRef struct {
	Enum   string
	Member string
	Span   token.Span
}
