package diag

import (
	"fmt"
	"sync"

	"github.com/dspeclang/dspec/pkg/token"
)

// Bag accumulates diagnostics from every pipeline stage. It is safe
// for concurrent append; declarations resolve in parallel and share
// one Bag.
type Bag struct {
	mu     sync.Mutex
	policy Policy
	diags  []Diagnostic
}

// NewBag creates an empty Bag with the given severity policy.
func NewBag(policy Policy) *Bag {
	return &Bag{policy: policy}
}

// Record appends a diagnostic, assigning severity from the policy.
func (b *Bag) Record(kind Kind, unit string, span token.Span, format string, args ...any) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.diags = append(b.diags, Diagnostic{
		Kind:     kind,
		Severity: b.policy.SeverityOf(kind),
		Message:  fmt.Sprintf(format, args...),
		Unit:     unit,
		Span:     span,
	})
}

// Add appends an already-built diagnostic, overriding its severity
// from the policy.
func (b *Bag) Add(d Diagnostic) {
	b.mu.Lock()
	defer b.mu.Unlock()
	d.Severity = b.policy.SeverityOf(d.Kind)
	b.diags = append(b.diags, d)
}

// All returns the recorded diagnostics in insertion order.
func (b *Bag) All() []Diagnostic {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]Diagnostic, len(b.diags))
	copy(out, b.diags)
	return out
}

// HasErrors returns true if any recorded diagnostic has error severity.
func (b *Bag) HasErrors() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, d := range b.diags {
		if d.Severity == SeverityError {
			return true
		}
	}
	return false
}

// Count returns the number of recorded diagnostics.
func (b *Bag) Count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.diags)
}

// CountKind returns the number of recorded diagnostics of the given kind.
func (b *Bag) CountKind(kind Kind) int {
	b.mu.Lock()
	defer b.mu.Unlock()
	n := 0
	for _, d := range b.diags {
		if d.Kind == kind {
			n++
		}
	}
	return n
}
