package diag

import "strings"

// Severity indicates the importance of a diagnostic.
type Severity int

// Severity levels.
const (
	// SeverityError blocks downstream generation for the affected
	// construct; sibling constructs still resolve.
	SeverityError Severity = iota
	// SeverityWarning does not block generation.
	SeverityWarning
)

// String returns the string representation of the severity.
func (s Severity) String() string {
	switch s {
	case SeverityError:
		return "error"
	case SeverityWarning:
		return "warning"
	default:
		return "unknown"
	}
}

// ParseSeverity converts a string to a Severity value.
// Returns the severity and true if valid, or SeverityWarning and false
// if invalid.
func ParseSeverity(s string) (Severity, bool) {
	switch strings.ToLower(s) {
	case "error":
		return SeverityError, true
	case "warning":
		return SeverityWarning, true
	default:
		return SeverityWarning, false
	}
}

// Policy maps diagnostic kinds to severities. The zero value is not
// usable; construct with DefaultPolicy.
type Policy struct {
	severities map[Kind]Severity
}

// DefaultPolicy returns the default severity policy: everything is an
// error except InvalidForeignKeyTarget and InvalidRelationTarget,
// which some schemas tolerate.
func DefaultPolicy() Policy {
	return Policy{severities: map[Kind]Severity{
		InvalidForeignKeyTarget: SeverityWarning,
		InvalidRelationTarget:   SeverityWarning,
	}}
}

// Override sets the severity for a kind, promoting a default warning
// to an error or vice versa.
func (p Policy) Override(kind Kind, severity Severity) Policy {
	m := make(map[Kind]Severity, len(p.severities)+1)
	for k, s := range p.severities {
		m[k] = s
	}
	m[kind] = severity
	return Policy{severities: m}
}

// SeverityOf returns the severity for a diagnostic kind.
func (p Policy) SeverityOf(kind Kind) Severity {
	if s, ok := p.severities[kind]; ok {
		return s
	}
	return SeverityError
}
