package token

import (
	"regexp"
	"sort"
	"strings"
)

// keywords is the reserved-word set, in canonical (uppercase) form.
var keywords = []string{
	"SELECT", "FROM", "WHERE", "INSERT", "UPDATE", "DELETE", "CREATE", "DROP", "ALTER",
	"TABLE", "VIEW", "INDEX", "DATABASE", "SCHEMA", "PRIMARY", "KEY", "FOREIGN",
	"CONSTRAINT", "UNIQUE", "NOT", "NULL", "DEFAULT", "AUTO_INCREMENT", "CASCADE",
	"ON", "REFERENCES", "AS", "JOIN", "LEFT", "RIGHT", "INNER", "OUTER", "FULL",
	"UNION", "ALL", "DISTINCT", "ORDER", "BY", "GROUP", "HAVING", "LIMIT", "OFFSET",
	"INTO", "VALUES", "SET", "AND", "OR", "IN", "BETWEEN", "LIKE", "IS", "EXISTS",
	"CASE", "WHEN", "THEN", "ELSE", "END", "IF", "BEGIN", "COMMIT", "ROLLBACK",
	"GRANT", "REVOKE", "WITH", "RECURSIVE", "ENGINE", "CHARSET", "COLLATE", "COMMENT",
	"ADD", "MODIFY", "CHANGE", "RENAME", "TRUNCATE", "REPLACE", "CHECK", "TINYINT",
	"SMALLINT", "INT", "BIGINT", "DECIMAL", "VARCHAR", "CHAR", "TEXT", "LONGTEXT",
	"DATETIME", "TIMESTAMP", "BLOB", "LONGBLOB", "VARBINARY",
}

// functions is the built-in function name set, in canonical form.
var functions = []string{
	"COUNT", "SUM", "AVG", "MAX", "MIN", "UPPER", "LOWER", "LENGTH", "SUBSTRING",
	"CONCAT", "NOW", "CURRENT_TIMESTAMP", "DATE", "TIME", "YEAR", "MONTH", "DAY",
	"IFNULL", "COALESCE", "CAST", "CONVERT", "ROUND", "FLOOR", "CEIL", "ABS",
}

// Default is the built-in vocabulary. It is built once and never modified.
var Default = NewVocabulary(keywords, functions)

// Vocabulary is an ordered set of keywords and function names, matched
// ignoring ASCII case. A Vocabulary is immutable once built and safe for concurrent use.
type Vocabulary struct {
	keywords  []string
	functions []string
	lookup    map[string]Class // lowercase word -> Keyword or Function

	keywordRe  *regexp.Regexp
	functionRe *regexp.Regexp
}

// NewVocabulary builds a vocabulary from the given word lists. Words are
// canonicalized to ASCII uppercase and de-duplicated case-insensitively; a
// word present in both lists is kept only as a keyword.
func NewVocabulary(keywords, functions []string) *Vocabulary {
	v := &Vocabulary{lookup: make(map[string]Class, len(keywords)+len(functions))}
	v.keywords = v.add(keywords, Keyword)
	v.functions = v.add(functions, Function)
	v.keywordRe = wholeWordPattern(v.keywords)
	v.functionRe = wholeWordPattern(v.functions)
	return v
}

func (v *Vocabulary) add(words []string, class Class) []string {
	out := make([]string, 0, len(words))
	for _, w := range words {
		w = strings.TrimSpace(w)
		if w == "" {
			continue
		}
		lower := LowerASCII(w)
		if _, seen := v.lookup[lower]; seen {
			continue
		}
		v.lookup[lower] = class
		out = append(out, UpperASCII(w))
	}
	return out
}

// With returns a new vocabulary extended with extra keywords and functions.
// The receiver is left unchanged.
func (v *Vocabulary) With(extraKeywords, extraFunctions []string) *Vocabulary {
	if len(extraKeywords) == 0 && len(extraFunctions) == 0 {
		return v
	}
	kw := append(append([]string{}, v.keywords...), extraKeywords...)
	fn := append(append([]string{}, v.functions...), extraFunctions...)
	return NewVocabulary(kw, fn)
}

// Keywords returns a copy of the keyword list in vocabulary order.
func (v *Vocabulary) Keywords() []string {
	return append([]string(nil), v.keywords...)
}

// Functions returns a copy of the function list in vocabulary order.
func (v *Vocabulary) Functions() []string {
	return append([]string(nil), v.functions...)
}

// Lookup classifies a single word. It returns Keyword or Function for
// vocabulary members (case-insensitive) and Plain otherwise.
func (v *Vocabulary) Lookup(word string) Class {
	if c, ok := v.lookup[LowerASCII(word)]; ok {
		return c
	}
	return Plain
}

// IsKeyword returns true if word is a keyword, ignoring case.
func (v *Vocabulary) IsKeyword(word string) bool {
	return v.Lookup(word) == Keyword
}

// IsFunction returns true if word is a function name, ignoring case.
func (v *Vocabulary) IsFunction(word string) bool {
	return v.Lookup(word) == Function
}

// KeywordPattern matches any keyword as a whole word, ignoring case.
// It returns nil for an empty keyword list.
func (v *Vocabulary) KeywordPattern() *regexp.Regexp {
	return v.keywordRe
}

// FunctionPattern matches any function name as a whole word, ignoring case.
// It returns nil for an empty function list.
func (v *Vocabulary) FunctionPattern() *regexp.Regexp {
	return v.functionRe
}

// wholeWordPattern compiles an alternation of words bounded by \b, folding
// ASCII case. Longer words come first so a prefix never shadows a longer
// member.
func wholeWordPattern(words []string) *regexp.Regexp {
	if len(words) == 0 {
		return nil
	}
	sorted := append([]string(nil), words...)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i]) > len(sorted[j])
	})
	folded := make([]string, len(sorted))
	for i, w := range sorted {
		folded[i] = FoldPattern(w)
	}
	return regexp.MustCompile(`\b(?:` + strings.Join(folded, "|") + `)\b`)
}
