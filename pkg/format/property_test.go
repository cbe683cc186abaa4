package format

import (
	"strings"
	"testing"

	"pgregory.net/rapid"
)

// selectGen draws simple single-table queries with random keyword case
// and random whitespace between tokens.
func selectGen() *rapid.Generator[string] {
	return rapid.Custom(func(t *rapid.T) string {
		ws := rapid.SampledFrom([]string{" ", "  ", "\n", "\t ", " \n\t"})
		kw := func(word string) string {
			switch rapid.IntRange(0, 2).Draw(t, "case") {
			case 0:
				return strings.ToLower(word)
			case 1:
				return strings.ToUpper(word)
			default:
				return strings.ToUpper(word[:1]) + strings.ToLower(word[1:])
			}
		}

		cols := rapid.SliceOfN(rapid.SampledFrom([]string{"id", "name", "total", "created_at"}), 1, 4).Draw(t, "cols")
		var b strings.Builder
		b.WriteString(ws.Draw(t, "lead"))
		b.WriteString(kw("select"))
		b.WriteString(ws.Draw(t, "ws"))
		for i, c := range cols {
			if i > 0 {
				b.WriteString(rapid.SampledFrom([]string{",", ", ", " ,", ",\n"}).Draw(t, "comma"))
			}
			b.WriteString(c)
		}
		b.WriteString(ws.Draw(t, "ws"))
		b.WriteString(kw("from"))
		b.WriteString(ws.Draw(t, "ws"))
		b.WriteString(rapid.SampledFrom([]string{"users", "orders", "audit_log"}).Draw(t, "table"))
		if rapid.Bool().Draw(t, "where") {
			b.WriteString(ws.Draw(t, "ws"))
			b.WriteString(kw("where"))
			b.WriteString(ws.Draw(t, "ws"))
			b.WriteString(cols[0])
			b.WriteString("=")
			b.WriteString(rapid.StringMatching(`[1-9][0-9]{0,3}`).Draw(t, "n"))
		}
		b.WriteString(ws.Draw(t, "trail"))
		return b.String()
	})
}

func TestFormat_IdempotentProperty(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		input := selectGen().Draw(t, "sql")

		once, err := Format(input)
		if err != nil {
			t.Fatalf("Format(%q): %v", input, err)
		}
		twice, err := Format(once)
		if err != nil {
			t.Fatalf("Format(%q): %v", once, err)
		}
		if once != twice {
			t.Fatalf("not idempotent:\n%q\n%q", once, twice)
		}
		if !strings.HasPrefix(once, "SELECT ") {
			t.Fatalf("expected leading SELECT, got %q", once)
		}
		for _, line := range strings.Split(once, "\n") {
			if strings.TrimRight(line, " \t") != line {
				t.Fatalf("trailing whitespace in %q", once)
			}
		}
	})
}
