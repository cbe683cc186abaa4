package highlight

import (
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlprism/pkg/token"
)

// Rule sources. Each is self-contained (no capturing groups, flags scoped)
// so rules can be combined into a single tier pattern.
const (
	lineCommentExpr  = `--[^\n]*`
	blockCommentExpr = `(?s:/\*.*?\*/)`
	stringExpr       = `'(?:[^']|'')*'`
	numberExpr       = `\b\d+(?:\.\d+)?\b`
)

// rule classifies the text matched by expr.
type rule struct {
	class token.Class
	expr  string
}

// tier is a set of rules scanned together, leftmost match first. When two
// rules match at the same offset the earlier rule wins.
type tier struct {
	classes []token.Class
	re      *regexp.Regexp
}

func newTier(rules ...rule) tier {
	t := tier{classes: make([]token.Class, 0, len(rules))}
	parts := make([]string, 0, len(rules))
	for _, r := range rules {
		if r.expr == "" {
			continue
		}
		t.classes = append(t.classes, r.class)
		parts = append(parts, "("+r.expr+")")
	}
	if len(parts) > 0 {
		t.re = regexp.MustCompile(strings.Join(parts, "|"))
	}
	return t
}

// split classifies the matches of the tier inside a plain token. Gaps
// between matches stay plain.
func (t tier) split(tok token.Token, out []token.Token) []token.Token {
	if t.re == nil {
		return append(out, tok)
	}
	text := tok.Text
	base := tok.Span.Start
	last := 0
	for _, m := range t.re.FindAllStringSubmatchIndex(text, -1) {
		if m[0] == m[1] {
			continue
		}
		if m[0] > last {
			out = append(out, plainToken(text[last:m[0]], base+last))
		}
		out = append(out, token.Token{
			Class: t.classOf(m),
			Text:  text[m[0]:m[1]],
			Span:  token.Span{Start: base + m[0], End: base + m[1]},
		})
		last = m[1]
	}
	if last < len(text) {
		out = append(out, plainToken(text[last:], base+last))
	}
	return out
}

// classOf returns the class of the rule whose group matched.
func (t tier) classOf(m []int) token.Class {
	for i, c := range t.classes {
		if m[2*(i+1)] >= 0 {
			return c
		}
	}
	return token.Plain
}

func plainToken(text string, start int) token.Token {
	return token.Token{
		Class: token.Plain,
		Text:  text,
		Span:  token.Span{Start: start, End: start + len(text)},
	}
}

// staticTiers are the classification tiers that do not depend on a call's
// placeholder map, in precedence order. The markup tier is inserted after
// the first (comments and strings) per call.
type staticTiers struct {
	literals tier // comments and strings
	rest     []tier
}

func buildTiers(vocab *token.Vocabulary) staticTiers {
	var keywordExpr, functionExpr string
	if re := vocab.KeywordPattern(); re != nil {
		keywordExpr = re.String()
	}
	if re := vocab.FunctionPattern(); re != nil {
		functionExpr = re.String()
	}

	return staticTiers{
		literals: newTier(
			rule{token.Comment, lineCommentExpr},
			rule{token.Comment, blockCommentExpr},
			rule{token.String, stringExpr},
		),
		rest: []tier{
			newTier(rule{token.Number, numberExpr}),
			newTier(rule{token.Keyword, keywordExpr}),
			newTier(rule{token.Function, functionExpr}),
		},
	}
}

// classify partitions text into tokens by applying tiers in order. Each tier
// only scans text still plain after earlier tiers, so tokens never overlap
// and earlier classes are never reclassified.
func classify(text string, tiers []tier) []token.Token {
	toks := []token.Token{plainToken(text, 0)}
	for _, t := range tiers {
		next := make([]token.Token, 0, len(toks))
		for _, tok := range toks {
			if tok.Class != token.Plain {
				next = append(next, tok)
				continue
			}
			next = t.split(tok, next)
		}
		toks = next
	}
	return toks
}
