package diag

import "sort"

// Sort orders diagnostics by unit, then source position, then kind.
// Parallel pipeline stages record in nondeterministic order; sorting
// makes reported output stable.
func Sort(diags []Diagnostic) {
	sort.SliceStable(diags, func(i, j int) bool {
		a, b := diags[i], diags[j]
		if a.Unit != b.Unit {
			return a.Unit < b.Unit
		}
		if a.Span.Start.Line != b.Span.Start.Line {
			return a.Span.Start.Line < b.Span.Start.Line
		}
		if a.Span.Start.Column != b.Span.Start.Column {
			return a.Span.Start.Column < b.Span.Start.Column
		}
		return a.Kind < b.Kind
	})
}
