// Package token defines the lexical classes and shared vocabularies used by
// the SQL formatter and highlighter.
//
// Classification is lexical only: a token is a contiguous run of text with a
// class, not a node in a grammar.
package token

import "fmt"

// Class is the lexical category assigned to a span of SQL text.
type Class int

// Token classes. Highlighting precedence follows the order in which the
// highlighter applies its rules, not the numeric values below.
const (
	Plain Class = iota
	Comment
	String
	Number
	Keyword
	Function
	Markup // embedded non-SQL markup, passed through verbatim
)

var classNames = map[Class]string{
	Plain:    "plain",
	Comment:  "comment",
	String:   "string",
	Number:   "number",
	Keyword:  "keyword",
	Function: "function",
	Markup:   "markup",
}

// String returns the class identifier used in rendered output.
func (c Class) String() string {
	if name, ok := classNames[c]; ok {
		return name
	}
	return fmt.Sprintf("CLASS(%d)", int(c))
}

// Wrapped reports whether renderers give this class a distinguishing wrapper.
// Plain text and embedded markup are emitted as-is.
func (c Class) Wrapped() bool {
	switch c {
	case Comment, String, Number, Keyword, Function:
		return true
	default:
		return false
	}
}

// Classes returns the wrapped classes in highlighting precedence order.
func Classes() []Class {
	return []Class{Comment, String, Number, Keyword, Function}
}

// Token is a classified run of text.
type Token struct {
	Class Class
	Text  string
	Span  Span
}

// IsComment returns true if the token is a line or block comment.
func (t Token) IsComment() bool {
	return t.Class == Comment
}

// IsLineComment returns true if the token is a "--" comment.
func (t Token) IsLineComment() bool {
	return t.Class == Comment && len(t.Text) >= 2 && t.Text[:2] == "--"
}

// IsBlockComment returns true if the token is a "/* */" comment.
func (t Token) IsBlockComment() bool {
	return t.Class == Comment && len(t.Text) >= 2 && t.Text[:2] == "/*"
}
