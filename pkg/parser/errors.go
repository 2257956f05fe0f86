package parser

import (
	"fmt"

	"github.com/dspeclang/dspec/pkg/token"
)

// LexError represents a lexical analysis error.
type LexError struct {
	Pos     token.Position
	Message string
}

func (e *LexError) Error() string {
	return fmt.Sprintf("lexer error at line %d, column %d: %s", e.Pos.Line, e.Pos.Column, e.Message)
}

// Common error messages
const (
	ErrUnexpectedToken     = "unexpected token %s, expected %s"
	ErrUnterminatedString  = "unterminated string literal"
	ErrUnterminatedComment = "unterminated block comment"
	ErrInvalidCharacter    = "invalid character"
	ErrNoSpaceBeforeColon  = "no whitespace allowed between %q and ':'"
	ErrCompositeBrackets   = "composite index columns must be bracketed: [a, b]"
	ErrMalformedExpression = "malformed expression: %s"
)
