package highlight

import (
	"html"
	"strings"

	"github.com/leapstack-labs/sqlprism/pkg/token"
)

// DefaultClassPrefix is prepended to class identifiers in HTML output,
// giving span classes such as "sql-keyword".
const DefaultClassPrefix = "sql-"

// Renderer turns classified tokens into output text.
//
// Text renders literal SQL text; it is never given embedded markup, which
// the highlighter emits verbatim. Wrap encloses the already-rendered body of
// a classified token.
type Renderer interface {
	Text(s string) string
	Wrap(class token.Class, body string) string
}

// HTMLRenderer renders tokens as HTML spans with escaped text.
type HTMLRenderer struct {
	Prefix string
}

// NewHTMLRenderer returns an HTMLRenderer using DefaultClassPrefix.
func NewHTMLRenderer() HTMLRenderer {
	return HTMLRenderer{Prefix: DefaultClassPrefix}
}

// Text escapes &, <, >, ' and ".
func (r HTMLRenderer) Text(s string) string {
	return html.EscapeString(s)
}

// Wrap encloses body in <span class="PREFIXclass">.
func (r HTMLRenderer) Wrap(class token.Class, body string) string {
	var b strings.Builder
	b.Grow(len(body) + len(r.Prefix) + 32)
	b.WriteString(`<span class="`)
	b.WriteString(r.Prefix)
	b.WriteString(class.String())
	b.WriteString(`">`)
	b.WriteString(body)
	b.WriteString(`</span>`)
	return b.String()
}

// PlainRenderer reproduces the input unchanged.
type PlainRenderer struct{}

// Text returns s.
func (PlainRenderer) Text(s string) string { return s }

// Wrap returns body.
func (PlainRenderer) Wrap(_ token.Class, body string) string { return body }
