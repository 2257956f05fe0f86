package parser

import (
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/dspeclang/dspec/pkg/token"
)

// Lexer tokenizes schema source text.
//
// The lexer never fails hard: unterminated strings, unterminated block
// comments, and invalid characters produce an ILLEGAL token plus an
// entry in Errors, and scanning resumes at the next recognizable
// boundary.
type Lexer struct {
	input   string
	pos     int  // byte offset of the current rune
	readPos int  // byte offset after the current rune
	ch      rune // current rune under examination
	line    int  // current line number (1-based)
	col     int  // current column number (1-based, counted in runes)

	// Comments collected during lexing. Doc comments are attached to
	// declarations by the parser.
	Comments []*token.Comment

	// Errors collected during lexing, drained by the parser into the
	// diagnostic bag.
	Errors []*LexError
}

// NewLexer creates a new Lexer for the given input.
func NewLexer(input string) *Lexer {
	l := &Lexer{
		input: input,
		line:  1,
		col:   0,
	}
	l.readChar()
	return l
}

// readChar advances to the next rune.
func (l *Lexer) readChar() {
	l.pos = l.readPos
	if l.readPos >= len(l.input) {
		l.ch = 0 // NUL = EOF
		l.readPos++
	} else {
		r, w := utf8.DecodeRuneInString(l.input[l.readPos:])
		l.ch = r
		l.readPos += w
	}

	if l.ch == '\n' {
		l.line++
		l.col = 0
	} else {
		l.col++
	}
}

// peekChar returns the next rune without advancing.
func (l *Lexer) peekChar() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos:])
	return r
}

// peekChar2 returns the rune after next without advancing.
func (l *Lexer) peekChar2() rune {
	if l.readPos >= len(l.input) {
		return 0
	}
	_, w := utf8.DecodeRuneInString(l.input[l.readPos:])
	if l.readPos+w >= len(l.input) {
		return 0
	}
	r, _ := utf8.DecodeRuneInString(l.input[l.readPos+w:])
	return r
}

// currentPos returns the current position.
func (l *Lexer) currentPos() token.Position {
	return token.Position{
		Line:   l.line,
		Column: l.col,
		Offset: l.pos,
	}
}

// addError records a lexical error.
func (l *Lexer) addError(pos token.Position, msg string) {
	l.Errors = append(l.Errors, &LexError{Pos: pos, Message: msg})
}

// NextToken returns the next token.
func (l *Lexer) NextToken() token.Token {
	l.skipWhitespaceAndComments()

	pos := l.currentPos()

	var tok token.Token
	tok.Pos = pos

	switch l.ch {
	case 0:
		tok.Type = token.EOF
		tok.Literal = ""
		tok.End = pos
		return tok
	case ':':
		tok.Type, tok.Literal = token.COLON, ":"
	case ',':
		tok.Type, tok.Literal = token.COMMA, ","
	case '.':
		tok.Type, tok.Literal = token.DOT, "."
	case '=':
		tok.Type, tok.Literal = token.EQ, "="
	case '<':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.LE, "<="
		} else {
			tok.Type, tok.Literal = token.LT, "<"
		}
	case '>':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.GE, ">="
		} else {
			tok.Type, tok.Literal = token.GT, ">"
		}
	case '!':
		if l.peekChar() == '=' {
			l.readChar()
			tok.Type, tok.Literal = token.NE, "!="
		} else {
			l.addError(pos, ErrInvalidCharacter+": '!'")
			tok.Type, tok.Literal = token.ILLEGAL, "!"
		}
	case '(':
		tok.Type, tok.Literal = token.LPAREN, "("
	case ')':
		tok.Type, tok.Literal = token.RPAREN, ")"
	case '[':
		tok.Type, tok.Literal = token.LBRACKET, "["
	case ']':
		tok.Type, tok.Literal = token.RBRACKET, "]"
	case '{':
		tok.Type, tok.Literal = token.LBRACE, "{"
	case '}':
		tok.Type, tok.Literal = token.RBRACE, "}"
	case '\'', '"':
		lit, ok := l.readString(l.ch)
		tok.Literal = lit
		tok.End = l.currentPos()
		if ok {
			tok.Type = token.STRING
		} else {
			l.addError(pos, ErrUnterminatedString)
			tok.Type = token.ILLEGAL
		}
		return tok
	default:
		switch {
		case isLetter(l.ch) || l.ch == '_':
			tok.Literal = l.readIdentifier()
			tok.Type = token.LookupIdent(tok.Literal)
			tok.End = l.currentPos()
			return tok
		case isDigit(l.ch):
			tok.Type = token.NUMBER
			tok.Literal = l.readNumber()
			tok.End = l.currentPos()
			return tok
		default:
			l.addError(pos, ErrInvalidCharacter+": "+quoteRune(l.ch))
			tok.Type, tok.Literal = token.ILLEGAL, string(l.ch)
		}
	}

	l.readChar()
	tok.End = l.currentPos()
	return tok
}

// skipWhitespaceAndComments skips whitespace and collects comments.
func (l *Lexer) skipWhitespaceAndComments() {
	for {
		for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
			l.readChar()
		}

		// Line comment (// ...)
		if l.ch == '/' && l.peekChar() == '/' {
			l.collectLineComment()
			continue
		}

		// Block or doc comment (/* ... */ or /** ... */)
		if l.ch == '/' && l.peekChar() == '*' {
			l.collectBlockComment()
			continue
		}

		break
	}
}

// collectLineComment collects a // comment up to end of line.
func (l *Lexer) collectLineComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	for l.ch != '\n' && l.ch != 0 {
		l.readChar()
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: token.LineComment,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// collectBlockComment collects a /* ... */ or /** ... */ comment.
// An unterminated comment is recorded as a lex error; scanning resumes
// at end of input.
func (l *Lexer) collectBlockComment() {
	startPos := l.currentPos()
	startOffset := l.pos

	// /**/ is an empty block comment, /** ... */ is a doc comment.
	// The comment markers are ASCII, so byte offsets are safe here.
	kind := token.BlockComment
	if l.peekChar2() == '*' && l.offsetAt(l.pos+3) != '/' {
		kind = token.DocComment
	}

	l.readChar() // skip '/'
	l.readChar() // skip '*'

	terminated := false
	for l.ch != 0 {
		if l.ch == '*' && l.peekChar() == '/' {
			l.readChar() // skip '*'
			l.readChar() // skip '/'
			terminated = true
			break
		}
		l.readChar()
	}

	if !terminated {
		l.addError(startPos, ErrUnterminatedComment)
	}

	l.Comments = append(l.Comments, &token.Comment{
		Kind: kind,
		Text: l.input[startOffset:l.pos],
		Span: token.Span{Start: startPos, End: l.currentPos()},
	})
}

// offsetAt returns the byte at the given offset, or 0 past the end.
func (l *Lexer) offsetAt(offset int) byte {
	if offset >= len(l.input) {
		return 0
	}
	return l.input[offset]
}

// readString reads a quoted string literal terminated by quote.
// Strings do not span lines; a newline or end of input before the
// closing quote makes the literal unterminated and ok is false.
func (l *Lexer) readString(quote rune) (lit string, ok bool) {
	l.readChar() // skip opening quote

	var result strings.Builder
	for l.ch != 0 && l.ch != '\n' {
		if l.ch == quote {
			l.readChar() // skip closing quote
			return result.String(), true
		}
		if l.ch == '\\' && l.peekChar() != 0 {
			l.readChar() // skip escape
		}
		result.WriteRune(l.ch)
		l.readChar()
	}
	return result.String(), false
}

// readIdentifier reads an identifier.
func (l *Lexer) readIdentifier() string {
	start := l.pos
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[start:l.pos]
}

// readNumber reads a numeric literal (integer or decimal).
func (l *Lexer) readNumber() string {
	start := l.pos

	for isDigit(l.ch) {
		l.readChar()
	}

	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar() // skip '.'
		for isDigit(l.ch) {
			l.readChar()
		}
	}

	return l.input[start:l.pos]
}

// isLetter returns true if ch is a letter.
func isLetter(ch rune) bool {
	return unicode.IsLetter(ch)
}

// isDigit returns true if ch is an ASCII digit.
func isDigit(ch rune) bool {
	return ch >= '0' && ch <= '9'
}

// quoteRune renders a rune for an error message.
func quoteRune(ch rune) string {
	if ch >= 0x20 && ch < 0x7f {
		return "'" + string(ch) + "'"
	}
	return fmt.Sprintf("%#U", ch)
}

// Tokenize returns all tokens from the input, including the final EOF.
func Tokenize(input string) []token.Token {
	l := NewLexer(input)
	var tokens []token.Token
	for {
		tok := l.NextToken()
		tokens = append(tokens, tok)
		if tok.Type == token.EOF {
			break
		}
	}
	return tokens
}
