// Package highlight classifies SQL text into lexical classes and renders
// each class with a distinguishing wrapper.
//
// Embedded non-SQL markup (markup comments and tags) is protected before
// classification and emitted byte-for-byte in the output, never escaped or
// reclassified. Classification precedence is:
//
//	comment, string > markup > number > keyword > function > plain
//
// Comments and strings are scanned together, leftmost first, so "--" inside
// a string literal and quotes inside a comment do not start a new token.
package highlight

import (
	"errors"
	"fmt"
	"strings"

	"github.com/leapstack-labs/sqlprism/pkg/token"
)

// ErrHighlightFailed is returned (wrapped) when highlighting faults.
var ErrHighlightFailed = errors.New("highlight failed")

// Option configures a Highlighter.
type Option func(*Highlighter)

// WithVocabulary sets the keyword and function vocabulary.
func WithVocabulary(v *token.Vocabulary) Option {
	return func(h *Highlighter) {
		if v != nil {
			h.vocab = v
		}
	}
}

// WithRenderer sets the output renderer. The default renders HTML spans.
func WithRenderer(r Renderer) Option {
	return func(h *Highlighter) {
		if r != nil {
			h.renderer = r
		}
	}
}

// Highlighter classifies and renders SQL text. A Highlighter is immutable
// after New and safe for concurrent use; each call keeps its own
// placeholder map.
type Highlighter struct {
	vocab    *token.Vocabulary
	renderer Renderer
	tiers    staticTiers
}

// New creates a Highlighter with the given options.
func New(opts ...Option) *Highlighter {
	h := &Highlighter{
		vocab:    token.Default,
		renderer: NewHTMLRenderer(),
	}
	for _, opt := range opts {
		opt(h)
	}
	h.tiers = buildTiers(h.vocab)
	return h
}

// Renderer returns the renderer used for output.
func (h *Highlighter) Renderer() Renderer {
	return h.renderer
}

// Highlight renders sql with every classified token wrapped. Empty input
// yields "". On failure no partial output is returned.
func (h *Highlighter) Highlight(sql string) (out string, err error) {
	if sql == "" {
		return "", nil
	}
	defer recoverInto(&out, &err)

	protected, ph, err := protect(sql)
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrHighlightFailed, err)
	}

	var b strings.Builder
	b.Grow(len(sql) * 2)
	for _, tok := range classify(protected, h.tiersFor(ph)) {
		b.WriteString(h.renderToken(tok, ph))
	}
	return b.String(), nil
}

// Tokenize classifies sql without rendering. Token text has embedded markup
// restored, and spans are byte offsets into sql; concatenating the token
// texts reproduces sql exactly.
func (h *Highlighter) Tokenize(sql string) (toks []token.Token, err error) {
	if sql == "" {
		return nil, nil
	}
	defer func() {
		if r := recover(); r != nil {
			toks = nil
			err = fmt.Errorf("%w: %v", ErrHighlightFailed, r)
		}
	}()

	protected, ph, err := protect(sql)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHighlightFailed, err)
	}

	classified := classify(protected, h.tiersFor(ph))
	toks = make([]token.Token, 0, len(classified))
	offset := 0
	for _, tok := range classified {
		text := ph.restore(tok.Text)
		toks = append(toks, token.Token{
			Class: tok.Class,
			Text:  text,
			Span:  token.Span{Start: offset, End: offset + len(text)},
		})
		offset += len(text)
	}
	return toks, nil
}

// tiersFor returns the full tier list for one call, with the markup tier
// placed after comments and strings.
func (h *Highlighter) tiersFor(ph *placeholders) []tier {
	tiers := make([]tier, 0, len(h.tiers.rest)+2)
	tiers = append(tiers, h.tiers.literals)
	if ph.Len() > 0 {
		tiers = append(tiers, newTier(rule{token.Markup, ph.pattern()}))
	}
	return append(tiers, h.tiers.rest...)
}

func (h *Highlighter) renderToken(tok token.Token, ph *placeholders) string {
	var body strings.Builder
	ph.split(tok.Text, func(s string, markup bool) {
		if markup {
			body.WriteString(s)
			return
		}
		body.WriteString(h.renderer.Text(s))
	})
	if tok.Class.Wrapped() {
		return h.renderer.Wrap(tok.Class, body.String())
	}
	return body.String()
}

func recoverInto(out *string, err *error) {
	if r := recover(); r != nil {
		*out = ""
		*err = fmt.Errorf("%w: %v", ErrHighlightFailed, r)
	}
}

var defaultHighlighter = New()

// Highlight renders sql as HTML spans using the default vocabulary.
func Highlight(sql string) (string, error) {
	return defaultHighlighter.Highlight(sql)
}

// Tokenize classifies sql using the default vocabulary.
func Tokenize(sql string) ([]token.Token, error) {
	return defaultHighlighter.Tokenize(sql)
}
