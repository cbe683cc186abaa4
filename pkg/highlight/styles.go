package highlight

import (
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/leapstack-labs/sqlprism/pkg/token"
	"github.com/muesli/termenv"
)

// Terminal colors per token class.
var (
	CommentColor  = lipgloss.AdaptiveColor{Light: "#6A737D", Dark: "#8B949E"}
	StringColor   = lipgloss.AdaptiveColor{Light: "#0A7E2E", Dark: "#A5D6A7"}
	NumberColor   = lipgloss.AdaptiveColor{Light: "#B35900", Dark: "#FFB86C"}
	KeywordColor  = lipgloss.AdaptiveColor{Light: "#0550AE", Dark: "#79C0FF"}
	FunctionColor = lipgloss.AdaptiveColor{Light: "#8250DF", Dark: "#D2A8FF"}
)

// Styles holds the terminal style for each wrapped class.
type Styles struct {
	Comment  lipgloss.Style
	String   lipgloss.Style
	Number   lipgloss.Style
	Keyword  lipgloss.Style
	Function lipgloss.Style
}

// DefaultStyles builds the default class styles on r.
func DefaultStyles(r *lipgloss.Renderer) Styles {
	// Tabs must survive as-is: highlighting never changes the text.
	base := r.NewStyle().TabWidth(lipgloss.NoTabConversion)
	return Styles{
		Comment:  base.Foreground(CommentColor).Italic(true),
		String:   base.Foreground(StringColor),
		Number:   base.Foreground(NumberColor),
		Keyword:  base.Foreground(KeywordColor).Bold(true),
		Function: base.Foreground(FunctionColor),
	}
}

func (s Styles) forClass(c token.Class) (lipgloss.Style, bool) {
	switch c {
	case token.Comment:
		return s.Comment, true
	case token.String:
		return s.String, true
	case token.Number:
		return s.Number, true
	case token.Keyword:
		return s.Keyword, true
	case token.Function:
		return s.Function, true
	default:
		return lipgloss.Style{}, false
	}
}

// ANSIRenderer renders tokens with terminal color codes.
type ANSIRenderer struct {
	styles Styles
}

// NewANSIRenderer returns a renderer whose color profile is detected from w.
func NewANSIRenderer(w io.Writer, opts ...termenv.OutputOption) *ANSIRenderer {
	return &ANSIRenderer{styles: DefaultStyles(lipgloss.NewRenderer(w, opts...))}
}

// NewANSIRendererWithProfile returns a renderer with a fixed color profile
// and a dark background, without inspecting any terminal.
func NewANSIRendererWithProfile(p termenv.Profile) *ANSIRenderer {
	r := lipgloss.NewRenderer(io.Discard)
	r.SetColorProfile(p)
	r.SetHasDarkBackground(true)
	return &ANSIRenderer{styles: DefaultStyles(r)}
}

// NewANSIRendererWithStyles returns a renderer using the given styles.
func NewANSIRendererWithStyles(s Styles) *ANSIRenderer {
	return &ANSIRenderer{styles: s}
}

// Text returns s unchanged; terminals need no escaping.
func (r *ANSIRenderer) Text(s string) string {
	return s
}

// Wrap styles body line by line so multi-line comments are not padded.
func (r *ANSIRenderer) Wrap(class token.Class, body string) string {
	style, ok := r.styles.forClass(class)
	if !ok || body == "" {
		return body
	}
	lines := strings.Split(body, "\n")
	for i, line := range lines {
		if line != "" {
			lines[i] = style.Render(line)
		}
	}
	return strings.Join(lines, "\n")
}
