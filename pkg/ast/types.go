package ast

import "fmt"

// TypeKind identifies a field type variant.
type TypeKind int

// Field type kinds.
const (
	TypeInvalid TypeKind = iota
	TypeUUID
	TypeString
	TypeFixedString
	TypeText
	TypeBoolean
	TypeTimestamp
	TypeInteger
	TypeBigInt
	TypeDecimal
	TypeEnum
)

// typeNames maps type kinds to their source spellings.
var typeNames = map[TypeKind]string{
	TypeUUID:        "uuid",
	TypeString:      "string",
	TypeFixedString: "fixed_string",
	TypeText:        "text",
	TypeBoolean:     "boolean",
	TypeTimestamp:   "timestamp",
	TypeInteger:     "integer",
	TypeBigInt:      "bigint",
	TypeDecimal:     "decimal",
	TypeEnum:        "enum",
}

// String returns the source spelling of the type kind.
func (k TypeKind) String() string {
	if name, ok := typeNames[k]; ok {
		return name
	}
	return fmt.Sprintf("type(%d)", k)
}

// LookupTypeKind returns the type kind for a source spelling.
func LookupTypeKind(name string) (TypeKind, bool) {
	for k, n := range typeNames {
		if n == name {
			return k, true
		}
	}
	return TypeInvalid, false
}

// FieldType is a field type with its kind-specific parameters.
// Only the parameters matching Kind are meaningful.
type FieldType struct {
	Kind      TypeKind
	MaxLength int    // string(n); 0 means unbounded
	Length    int    // fixed_string(n)
	Precision int    // decimal(p, s)
	Scale     int    // decimal(p, s)
	Enum      string // enum(Name)
}

// String renders the type as it appears in source.
func (t FieldType) String() string {
	switch t.Kind {
	case TypeString:
		if t.MaxLength > 0 {
			return fmt.Sprintf("string(%d)", t.MaxLength)
		}
		return "string()"
	case TypeFixedString:
		return fmt.Sprintf("fixed_string(%d)", t.Length)
	case TypeDecimal:
		return fmt.Sprintf("decimal(%d, %d)", t.Precision, t.Scale)
	case TypeEnum:
		return fmt.Sprintf("enum(%s)", t.Enum)
	default:
		return t.Kind.String() + "()"
	}
}

// IsEnum returns true for enum(Name) references.
func (t FieldType) IsEnum() bool {
	return t.Kind == TypeEnum
}
