package commands

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"github.com/dspeclang/dspec/pkg/parser"
	"github.com/dspeclang/dspec/pkg/token"
)

// NewTokensCommand creates the tokens command, a lexer debugging aid.
func NewTokensCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "tokens <file>",
		Short: "Print the token stream of a schema file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}

			lex := parser.NewLexer(string(src))

			t := table.NewWriter()
			t.SetOutputMirror(cmd.OutOrStdout())
			t.SetStyle(table.StyleLight)
			t.AppendHeader(table.Row{"POS", "TYPE", "LITERAL"})
			for {
				tok := lex.NextToken()
				t.AppendRow(table.Row{
					fmt.Sprintf("%d:%d", tok.Pos.Line, tok.Pos.Column),
					tok.Type,
					tok.Literal,
				})
				if tok.Type == token.EOF {
					break
				}
			}
			t.Render()

			for _, e := range lex.Errors {
				_, _ = fmt.Fprintf(cmd.ErrOrStderr(), "%s:%d:%d: %s\n",
					args[0], e.Pos.Line, e.Pos.Column, e.Message)
			}
			return nil
		},
	}
}
