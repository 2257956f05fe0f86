package token

// CommentKind distinguishes the three comment forms.
type CommentKind int

// Comment kinds.
const (
	LineComment  CommentKind = iota // // comment
	BlockComment                    // /* comment */
	DocComment                      // /** comment */
)

// Comment represents a source comment with position.
// Doc comments attach to the following declaration as its description
// unless the declaration carries an explicit description property.
type Comment struct {
	Kind CommentKind
	Text string // includes delimiters
	Span Span
}

// IsDoc returns true if this is a /** ... */ doc comment.
func (c *Comment) IsDoc() bool {
	return c.Kind == DocComment
}
