package commands

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/jedib0t/go-pretty/v6/table"

	"github.com/dspeclang/dspec/pkg/compiler"
	"github.com/dspeclang/dspec/pkg/diag"
)

// renderResult writes the diagnostics of a compilation in the
// configured format, followed by a summary for the human formats.
func renderResult(w io.Writer, res *compiler.Result, format string) error {
	switch format {
	case "json":
		return renderResultJSON(w, res)
	case "text":
		return renderResultText(w, res)
	default:
		return renderResultTable(w, res)
	}
}

func renderResultTable(w io.Writer, res *compiler.Result) error {
	if len(res.Diagnostics) > 0 {
		t := table.NewWriter()
		t.SetOutputMirror(w)
		t.SetStyle(table.StyleLight)
		t.AppendHeader(table.Row{"SEVERITY", "LOCATION", "KIND", "MESSAGE"})
		for _, d := range res.Diagnostics {
			t.AppendRow(table.Row{
				d.Severity,
				fmt.Sprintf("%s:%d:%d", d.Unit, d.Span.Start.Line, d.Span.Start.Column),
				d.Kind,
				d.Message,
			})
		}
		t.Render()
	}
	writeSummary(w, res)
	return nil
}

func renderResultText(w io.Writer, res *compiler.Result) error {
	for _, d := range res.Diagnostics {
		_, _ = fmt.Fprintln(w, d.Error())
	}
	writeSummary(w, res)
	return nil
}

func renderResultJSON(w io.Writer, res *compiler.Result) error {
	errs, warns := countSeverities(res.Diagnostics)

	type jsonDiag struct {
		Kind     string `json:"kind"`
		Severity string `json:"severity"`
		Unit     string `json:"unit"`
		Line     int    `json:"line"`
		Column   int    `json:"column"`
		Message  string `json:"message"`
	}
	out := struct {
		Declarations int        `json:"declarations"`
		Errors       int        `json:"errors"`
		Warnings     int        `json:"warnings"`
		Diagnostics  []jsonDiag `json:"diagnostics"`
	}{
		Declarations: len(res.Decls),
		Errors:       errs,
		Warnings:     warns,
		Diagnostics:  make([]jsonDiag, 0, len(res.Diagnostics)),
	}
	for _, d := range res.Diagnostics {
		out.Diagnostics = append(out.Diagnostics, jsonDiag{
			Kind:     d.Kind.String(),
			Severity: d.Severity.String(),
			Unit:     d.Unit,
			Line:     d.Span.Start.Line,
			Column:   d.Span.Start.Column,
			Message:  d.Message,
		})
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(out)
}

func writeSummary(w io.Writer, res *compiler.Result) {
	errs, warns := countSeverities(res.Diagnostics)
	_, _ = fmt.Fprintf(w, "%d declaration(s), %d error(s), %d warning(s)\n",
		len(res.Decls), errs, warns)
}

func countSeverities(diags []diag.Diagnostic) (errs, warns int) {
	for _, d := range diags {
		switch d.Severity {
		case diag.SeverityError:
			errs++
		case diag.SeverityWarning:
			warns++
		}
	}
	return errs, warns
}
