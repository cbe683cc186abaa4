// Package format provides lexical SQL reformatting.
//
// Formatting is a fixed sequence of whole-string rewrite passes. It never
// parses the statement and never fails on malformed SQL: the worst case is a
// less tidy layout.
package format

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/leapstack-labs/sqlprism/pkg/token"
)

// DefaultIndent is the indent string used for items inside parenthesized
// lists and after commas.
const DefaultIndent = "  "

// ErrFormatFailed is returned (wrapped) when a formatting pass faults.
var ErrFormatFailed = errors.New("format failed")

// MajorClauses are the clause keywords that start a new line, in the order
// they are listed for documentation. Matching uses a single combined pattern
// so multi-word clauses are never split by their single-word parts.
var MajorClauses = []string{
	"SELECT", "FROM", "WHERE", "JOIN", "LEFT JOIN", "RIGHT JOIN",
	"INNER JOIN", "GROUP BY", "ORDER BY", "HAVING", "LIMIT",
}

var (
	whitespaceRe    = regexp.MustCompile(`\s+`)
	clauseRe        = clausePattern(MajorClauses)
	createTableRe   = regexp.MustCompile(`\b` + token.FoldPattern("CREATE") + `\s+` + token.FoldPattern("TABLE") + `\b`)
	openParenRe     = regexp.MustCompile(`\s*\(\s*`)
	closeParenRe    = regexp.MustCompile(`\s*\)`)
	commaRe         = regexp.MustCompile(`\s*,\s*`)
	trailingBlankRe = regexp.MustCompile(`[ \t]+\n`)
	blankLinesRe    = regexp.MustCompile(`\n\s*\n`)
)

// Option configures a Formatter.
type Option func(*Formatter)

// WithIndent sets the indent string. An empty string keeps the default.
func WithIndent(indent string) Option {
	return func(f *Formatter) {
		if indent != "" {
			f.indent = indent
		}
	}
}

// WithVocabulary sets the vocabulary whose keywords are uppercased.
func WithVocabulary(v *token.Vocabulary) Option {
	return func(f *Formatter) {
		if v != nil {
			f.vocab = v
		}
	}
}

// pass is one rewrite step over the whole statement.
type pass struct {
	name  string
	apply func(string) string
}

// Formatter reformats SQL text. A Formatter is immutable after New and safe
// for concurrent use.
type Formatter struct {
	indent string
	vocab  *token.Vocabulary
	passes []pass
}

// New creates a Formatter with the given options.
func New(opts ...Option) *Formatter {
	f := &Formatter{
		indent: DefaultIndent,
		vocab:  token.Default,
	}
	for _, opt := range opts {
		opt(f)
	}
	f.passes = f.buildPasses()
	return f
}

// Indent returns the configured indent string.
func (f *Formatter) Indent() string {
	return f.indent
}

func (f *Formatter) buildPasses() []pass {
	listIndent := "\n" + f.indent
	keywordRe := f.vocab.KeywordPattern()

	return []pass{
		{"collapse whitespace", func(s string) string {
			return strings.TrimSpace(whitespaceRe.ReplaceAllString(s, " "))
		}},
		{"break clauses", func(s string) string {
			return clauseRe.ReplaceAllStringFunc(s, func(m string) string {
				return "\n" + canonicalClause(m)
			})
		}},
		{"canonical create table", func(s string) string {
			return createTableRe.ReplaceAllString(s, "CREATE TABLE")
		}},
		{"open parens", func(s string) string {
			return openParenRe.ReplaceAllLiteralString(s, " ("+listIndent)
		}},
		{"close parens", func(s string) string {
			return closeParenRe.ReplaceAllLiteralString(s, "\n)")
		}},
		{"commas", func(s string) string {
			return commaRe.ReplaceAllLiteralString(s, ","+listIndent)
		}},
		{"uppercase keywords", func(s string) string {
			if keywordRe == nil {
				return s
			}
			return keywordRe.ReplaceAllStringFunc(s, token.UpperASCII)
		}},
		{"collapse blank lines", func(s string) string {
			s = trailingBlankRe.ReplaceAllLiteralString(s, "\n")
			s = blankLinesRe.ReplaceAllLiteralString(s, "\n")
			return strings.TrimSpace(s)
		}},
	}
}

// Format reformats sql. Empty or whitespace-only input yields "" and no
// error. A fault inside any pass is reported as ErrFormatFailed and no
// partial output is returned.
func (f *Formatter) Format(sql string) (out string, err error) {
	if strings.TrimSpace(sql) == "" {
		return "", nil
	}

	current := ""
	defer func() {
		if r := recover(); r != nil {
			out = ""
			err = fmt.Errorf("%w: %s: %v", ErrFormatFailed, current, r)
		}
	}()

	for _, p := range f.passes {
		current = p.name
		sql = p.apply(sql)
	}
	return sql, nil
}

// Format reformats sql with a Formatter built from opts.
func Format(sql string, opts ...Option) (string, error) {
	if len(opts) == 0 {
		return defaultFormatter.Format(sql)
	}
	return New(opts...).Format(sql)
}

var defaultFormatter = New()

// clausePattern builds a whole-word pattern for clauses that ignores ASCII
// case. Multi-word clauses come first and accept any internal whitespace.
func clausePattern(clauses []string) *regexp.Regexp {
	ordered := make([]string, 0, len(clauses))
	for _, multi := range []bool{true, false} {
		for _, c := range clauses {
			if strings.Contains(c, " ") == multi {
				ordered = append(ordered, strings.Join(foldFields(c), `\s+`))
			}
		}
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(ordered, "|") + `)\b`)
}

func foldFields(s string) []string {
	fields := strings.Fields(s)
	for i, f := range fields {
		fields[i] = token.FoldPattern(f)
	}
	return fields
}

// canonicalClause returns the uppercase, single-spaced form of a matched
// clause.
func canonicalClause(m string) string {
	return strings.Join(strings.Fields(token.UpperASCII(m)), " ")
}
