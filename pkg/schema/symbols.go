package schema

import (
	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
)

// SymbolTable maps declaration names to handles into the declaration
// arena. Models, pivots, and enums share one namespace. The table is
// frozen after Collect and safe for concurrent reads.
type SymbolTable struct {
	decls []*ast.Declaration
	index map[string]Handle
}

// Collect builds the symbol table from parsed declarations, in source
// order. When two declarations share a name the first wins; every later
// one is reported as DuplicateTopLevelName and excluded from the arena,
// so references to the name bind to the first declaration.
func Collect(decls []*ast.Declaration, bag *diag.Bag) *SymbolTable {
	t := &SymbolTable{
		decls: make([]*ast.Declaration, 0, len(decls)),
		index: make(map[string]Handle, len(decls)),
	}
	for _, d := range decls {
		if prev, ok := t.index[d.Name]; ok {
			bag.Record(diag.DuplicateTopLevelName, d.Unit, d.Span,
				"%s %q already declared as %s in %s; this declaration is ignored",
				d.Kind, d.Name, t.decls[prev].Kind, t.decls[prev].Unit)
			continue
		}
		h := Handle(len(t.decls))
		t.decls = append(t.decls, d)
		t.index[d.Name] = h
	}
	return t
}

// Lookup returns the handle for a declaration name.
func (t *SymbolTable) Lookup(name string) (Handle, bool) {
	h, ok := t.index[name]
	return h, ok
}

// Decl returns the declaration for a handle, or nil if the handle is
// invalid.
func (t *SymbolTable) Decl(h Handle) *ast.Declaration {
	if h < 0 || int(h) >= len(t.decls) {
		return nil
	}
	return t.decls[h]
}

// Len returns the number of collected declarations.
func (t *SymbolTable) Len() int {
	return len(t.decls)
}

// Handles returns every valid handle in arena order.
func (t *SymbolTable) Handles() []Handle {
	hs := make([]Handle, len(t.decls))
	for i := range t.decls {
		hs[i] = Handle(i)
	}
	return hs
}
