// Package compiler drives the full pipeline: per-unit lexing and
// parsing, symbol collection, and reference resolution.
//
// Units parse in parallel; the symbol table is a barrier between the
// parse and resolve stages, and declarations then resolve in parallel
// against the frozen table. All stages share one diagnostic bag, so a
// single Compile call yields every finding across every unit.
package compiler

import (
	"context"
	"log/slog"
	"runtime"
	"strings"
	"time"
	"unicode/utf8"

	"golang.org/x/sync/errgroup"

	"github.com/dspeclang/dspec/pkg/ast"
	"github.com/dspeclang/dspec/pkg/diag"
	"github.com/dspeclang/dspec/pkg/parser"
	"github.com/dspeclang/dspec/pkg/schema"
	"github.com/dspeclang/dspec/pkg/token"
)

// Unit is one source unit to compile, typically a file.
type Unit struct {
	Name   string
	Source string
}

// Options configures a compilation.
type Options struct {
	// Policy assigns severities to diagnostic kinds. Use
	// diag.DefaultPolicy as the starting point.
	Policy diag.Policy

	// Parallelism bounds concurrent parse and resolve work. Zero or
	// negative means GOMAXPROCS.
	Parallelism int

	// Logger receives stage timings at debug level. Nil means the
	// default logger.
	Logger *slog.Logger
}

// DefaultOptions returns options with the default severity policy and
// GOMAXPROCS parallelism.
func DefaultOptions() Options {
	return Options{
		Policy:      diag.DefaultPolicy(),
		Parallelism: runtime.GOMAXPROCS(0),
	}
}

// Result is the outcome of one compilation.
type Result struct {
	// Decls are the parsed declarations across all units, in unit
	// order. Declarations excluded from resolution (duplicates) are
	// still present here.
	Decls []*ast.Declaration

	// Graph is the resolved schema graph.
	Graph *schema.SchemaGraph

	// Diagnostics are all findings, sorted by unit and position.
	Diagnostics []diag.Diagnostic
}

// HasErrors returns true if any diagnostic has error severity.
func (r *Result) HasErrors() bool {
	for _, d := range r.Diagnostics {
		if d.Severity == diag.SeverityError {
			return true
		}
	}
	return false
}

// Compile runs the pipeline over the given units. It returns an error
// only when the context is canceled; malformed input is never an
// error, it is diagnostics in the result.
func Compile(ctx context.Context, units []Unit, opts Options) (*Result, error) {
	if opts.Parallelism <= 0 {
		opts.Parallelism = runtime.GOMAXPROCS(0)
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}

	bag := diag.NewBag(opts.Policy)

	// Stage 1: parse units in parallel. Results land in a per-unit
	// slot so declaration order stays deterministic.
	start := time.Now()
	parsed := make([][]*ast.Declaration, len(units))
	pg, pctx := errgroup.WithContext(ctx)
	pg.SetLimit(opts.Parallelism)
	for i, u := range units {
		i, u := i, u
		pg.Go(func() error {
			if err := pctx.Err(); err != nil {
				return err
			}
			if msg, ok := checkSource(u.Source); !ok {
				bag.Record(diag.LexError, u.Name, token.Span{}, "%s", msg)
				return nil
			}
			parsed[i] = parser.Parse(u.Name, u.Source, bag)
			return nil
		})
	}
	if err := pg.Wait(); err != nil {
		return nil, err
	}

	var decls []*ast.Declaration
	for _, ds := range parsed {
		decls = append(decls, ds...)
	}
	log.Debug("parsed units",
		"units", len(units),
		"declarations", len(decls),
		"duration", time.Since(start))

	// Stage 2: collect the symbol table. This is the barrier; after
	// it the table is frozen and safe for concurrent reads.
	symbols := schema.Collect(decls, bag)

	// Stage 3: resolve declarations in parallel. Each goroutine
	// writes a distinct graph slot.
	start = time.Now()
	graph := &schema.SchemaGraph{
		Decls: make([]*schema.Decl, symbols.Len()),
		Index: make(map[string]schema.Handle, symbols.Len()),
	}
	resolver := schema.NewResolver(symbols, bag)
	rg, rctx := errgroup.WithContext(ctx)
	rg.SetLimit(opts.Parallelism)
	for _, h := range symbols.Handles() {
		h := h
		rg.Go(func() error {
			if err := rctx.Err(); err != nil {
				return err
			}
			graph.Decls[h] = resolver.ResolveDecl(h)
			return nil
		})
	}
	if err := rg.Wait(); err != nil {
		return nil, err
	}
	for h, d := range graph.Decls {
		graph.Index[d.Name] = schema.Handle(h)
	}
	log.Debug("resolved declarations",
		"declarations", symbols.Len(),
		"duration", time.Since(start))

	diags := bag.All()
	diag.Sort(diags)
	return &Result{
		Decls:       decls,
		Graph:       graph,
		Diagnostics: diags,
	}, nil
}

// checkSource rejects input the lexer cannot meaningfully scan: empty
// units, binary data, and invalid UTF-8. Such a unit contributes one
// diagnostic and zero declarations.
func checkSource(src string) (string, bool) {
	switch {
	case strings.TrimSpace(src) == "":
		return "source unit is empty", false
	case strings.ContainsRune(src, 0):
		return "source unit contains binary data", false
	case !utf8.ValidString(src):
		return "source unit is not valid UTF-8", false
	}
	return "", true
}
