package highlight

import (
	"strings"
	"testing"

	"github.com/leapstack-labs/sqlprism/pkg/format"
	"github.com/leapstack-labs/sqlprism/pkg/token"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func kw(s string) string  { return `<span class="sql-keyword">` + s + `</span>` }
func fn(s string) string  { return `<span class="sql-function">` + s + `</span>` }
func num(s string) string { return `<span class="sql-number">` + s + `</span>` }
func str(s string) string { return `<span class="sql-string">` + s + `</span>` }
func cmt(s string) string { return `<span class="sql-comment">` + s + `</span>` }

func TestHighlight(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "keywords and number",
			input:    "select a from t where b = 10",
			expected: kw("select") + " a " + kw("from") + " t " + kw("where") + " b = " + num("10"),
		},
		{
			name:     "function",
			input:    "SELECT count(*) FROM t",
			expected: kw("SELECT") + " " + fn("count") + "(*) " + kw("FROM") + " t",
		},
		{
			name:     "escaped quote stays in one string",
			input:    "SELECT 'a''b' FROM t",
			expected: kw("SELECT") + " " + str("&#39;a&#39;&#39;b&#39;") + " " + kw("FROM") + " t",
		},
		{
			name:     "line comment swallows keywords",
			input:    "-- SELECT FROM",
			expected: cmt("-- SELECT FROM"),
		},
		{
			name:     "block comment",
			input:    "/* select\n1 */ select 2",
			expected: cmt("/* select\n1 */") + " " + kw("select") + " " + num("2"),
		},
		{
			name:     "unterminated block comment is not a comment",
			input:    "/* select",
			expected: "/* " + kw("select"),
		},
		{
			name:     "dash dash inside string",
			input:    "select '--x' from t",
			expected: kw("select") + " " + str("&#39;--x&#39;") + " " + kw("from") + " t",
		},
		{
			name:     "quote inside comment",
			input:    "-- it's\nselect 'x'",
			expected: cmt("-- it&#39;s") + "\n" + kw("select") + " " + str("&#39;x&#39;"),
		},
		{
			name:     "decimal number",
			input:    "select 3.14, t1.c2",
			expected: kw("select") + " " + num("3.14") + ", t1.c2",
		},
		{
			name:     "keyword inside identifier",
			input:    "select orderid from orders",
			expected: kw("select") + " orderid " + kw("from") + " orders",
		},
		{
			name:     "comparison is escaped",
			input:    "select a < b and c > d",
			expected: kw("select") + " a &lt; b " + kw("and") + " c &gt; d",
		},
		{
			name:     "tag-like comparison is treated as markup",
			input:    "select a<b and c>d",
			expected: kw("select") + " a<b and c>d",
		},
		{
			name:     "unicode case folding does not make keywords",
			input:    "select exi\u017fts, \u212Aey from t",
			expected: kw("select") + " exi\u017fts, \u212Aey " + kw("from") + " t",
		},
		{
			name:     "ampersand and double quote",
			input:    `select "x" & 1`,
			expected: kw("select") + " &#34;x&#34; &amp; " + num("1"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Highlight(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHighlight_Empty(t *testing.T) {
	result, err := Highlight("")
	require.NoError(t, err)
	assert.Empty(t, result)

	toks, err := Tokenize("")
	require.NoError(t, err)
	assert.Empty(t, toks)
}

func TestHighlight_MarkupPreserved(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "tags and markup comment",
			input:    "SELECT <b>x</b> FROM t <!-- a 'b' 1 -->",
			expected: kw("SELECT") + " <b>x</b> " + kw("FROM") + " t <!-- a 'b' 1 -->",
		},
		{
			name:     "tag attributes with quotes",
			input:    `<span class="hl">select</span> 1`,
			expected: `<span class="hl">` + kw("select") + `</span> ` + num("1"),
		},
		{
			name:     "markup inside string literal",
			input:    "select '<i>x</i>'",
			expected: kw("select") + " " + str("&#39;<i>x</i>&#39;"),
		},
		{
			name:     "markup inside line comment",
			input:    "-- <b>from</b> 2",
			expected: cmt("-- <b>from</b> 2"),
		},
		{
			name:     "multi-line markup comment",
			input:    "<!-- select\n<b> -->select",
			expected: "<!-- select\n<b> -->" + kw("select"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := Highlight(tt.input)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, result)
		})
	}
}

func TestHighlight_SentinelNeverCollides(t *testing.T) {
	// A forged marker using the first private-use rune must not be restored.
	forged := "\uE0000\uE000"
	result, err := Highlight(forged + " <b>")
	require.NoError(t, err)

	assert.Equal(t, "\uE000"+num("0")+"\uE000 <b>", result)
}

func TestHighlight_FormatThenHighlight(t *testing.T) {
	formatted, err := format.Format("select id,name from users where id=1")
	require.NoError(t, err)

	lines := strings.Split(formatted, "\n")
	require.Len(t, lines, 4)
	assert.True(t, strings.HasPrefix(lines[0], "SELECT"))
	assert.True(t, strings.HasPrefix(lines[2], "FROM"))
	assert.True(t, strings.HasPrefix(lines[3], "WHERE"))

	result, err := Highlight(formatted)
	require.NoError(t, err)

	expected := kw("SELECT") + " id,\n  name\n" +
		kw("FROM") + " users\n" +
		kw("WHERE") + " id=" + num("1")
	assert.Equal(t, expected, result)
}

func TestHighlight_KeywordBeatsFunction(t *testing.T) {
	vocab := token.NewVocabulary([]string{"select", "replace"}, []string{"replace", "upper"})
	h := New(WithVocabulary(vocab))

	result, err := h.Highlight("select replace(upper(a))")
	require.NoError(t, err)
	assert.Equal(t, kw("select")+" "+kw("replace")+"("+fn("upper")+"(a))", result)
}

func TestHighlight_CustomPrefix(t *testing.T) {
	h := New(WithRenderer(HTMLRenderer{Prefix: "hl-"}))

	result, err := h.Highlight("select 1")
	require.NoError(t, err)
	assert.Equal(t, `<span class="hl-keyword">select</span> <span class="hl-number">1</span>`, result)
}

func TestHighlight_PlainRendererRoundTrip(t *testing.T) {
	h := New(WithRenderer(PlainRenderer{}))
	inputs := []string{
		"select 'a''b', <b>x</b> -- c\n/* d */ from t where n = 1.5",
		"<!-- c --><i>",
		"\uE000 text",
	}

	for _, input := range inputs {
		result, err := h.Highlight(input)
		require.NoError(t, err)
		assert.Equal(t, input, result)
	}
}

type panicRenderer struct{ PlainRenderer }

func (panicRenderer) Wrap(token.Class, string) string { panic("renderer exploded") }

func TestHighlight_FailureReturnsNoOutput(t *testing.T) {
	h := New(WithRenderer(panicRenderer{}))

	result, err := h.Highlight("select 1")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrHighlightFailed)
	assert.Contains(t, err.Error(), "renderer exploded")
	assert.Empty(t, result)

	// Nothing to wrap: no fault.
	result, err = h.Highlight("a b c")
	require.NoError(t, err)
	assert.Equal(t, "a b c", result)
}

func TestTokenize(t *testing.T) {
	input := "select <b>n</b>, 'x' -- c"
	toks, err := Tokenize(input)
	require.NoError(t, err)

	var rebuilt strings.Builder
	offset := 0
	for _, tok := range toks {
		assert.Equal(t, offset, tok.Span.Start)
		assert.Equal(t, input[tok.Span.Start:tok.Span.End], tok.Text)
		rebuilt.WriteString(tok.Text)
		offset = tok.Span.End
	}
	assert.Equal(t, input, rebuilt.String())

	var classes []token.Class
	for _, tok := range toks {
		if tok.Class != token.Plain {
			classes = append(classes, tok.Class)
		}
	}
	assert.Equal(t, []token.Class{
		token.Keyword, token.Markup, token.Markup, token.String, token.Comment,
	}, classes)

	last := toks[len(toks)-1]
	assert.True(t, last.IsLineComment())
	assert.Equal(t, "-- c", last.Text)
}

func TestTokenize_NoOverlap(t *testing.T) {
	toks, err := Tokenize("select sum(x) /* max */ from t where y = 'min' and z = 2")
	require.NoError(t, err)

	for i := 1; i < len(toks); i++ {
		assert.False(t, toks[i-1].Span.Overlaps(toks[i].Span))
		assert.Equal(t, toks[i-1].Span.End, toks[i].Span.Start)
	}

	var comments []token.Token
	for _, tok := range toks {
		if tok.IsComment() {
			comments = append(comments, tok)
		}
	}
	require.Len(t, comments, 1)
	assert.True(t, comments[0].IsBlockComment())
	assert.False(t, comments[0].IsLineComment())
}
