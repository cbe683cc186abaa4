// Package diff computes line diffs between original and reformatted SQL.
package diff

import (
	"fmt"
	"io"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// Op is the kind of change a line represents.
type Op int

// Line operations.
const (
	Equal Op = iota
	Delete
	Insert
)

// Line is one line of a diff, without its trailing newline.
type Line struct {
	Op   Op
	Text string
}

// Lines returns the line-level diff turning before into after.
func Lines(before, after string) []Line {
	before = withNewline(before)
	after = withNewline(after)
	if before == after {
		return equalLines(before)
	}

	dmp := diffmatchpatch.New()
	a, b, table := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), table)

	var out []Line
	for _, d := range diffs {
		op := Equal
		switch d.Type {
		case diffmatchpatch.DiffDelete:
			op = Delete
		case diffmatchpatch.DiffInsert:
			op = Insert
		}
		for _, text := range split(d.Text) {
			out = append(out, Line{Op: op, Text: text})
		}
	}
	return out
}

// HasChanges reports whether any line was deleted or inserted.
func HasChanges(lines []Line) bool {
	for _, l := range lines {
		if l.Op != Equal {
			return true
		}
	}
	return false
}

// Write prints the changes in lines as hunks, each with up to context
// unchanged lines around it. Nothing is written when there are no changes.
func Write(w io.Writer, name string, lines []Line, context int) error {
	if !HasChanges(lines) {
		return nil
	}
	if context < 0 {
		context = 0
	}

	keep := make([]bool, len(lines))
	for i, l := range lines {
		if l.Op == Equal {
			continue
		}
		for j := max(0, i-context); j <= min(len(lines)-1, i+context); j++ {
			keep[j] = true
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n+++ %s (formatted)\n", name, name)
	oldLine, newLine := 1, 1
	inHunk := false
	for i, l := range lines {
		if keep[i] {
			if !inHunk {
				fmt.Fprintf(&b, "@@ -%d +%d @@\n", oldLine, newLine)
				inHunk = true
			}
			b.WriteString(l.Op.prefix())
			b.WriteString(l.Text)
			b.WriteByte('\n')
		} else {
			inHunk = false
		}

		switch l.Op {
		case Equal:
			oldLine++
			newLine++
		case Delete:
			oldLine++
		case Insert:
			newLine++
		}
	}

	_, err := io.WriteString(w, b.String())
	return err
}

func (o Op) prefix() string {
	switch o {
	case Delete:
		return "-"
	case Insert:
		return "+"
	default:
		return " "
	}
}

func withNewline(s string) string {
	if s == "" || strings.HasSuffix(s, "\n") {
		return s
	}
	return s + "\n"
}

func equalLines(s string) []Line {
	var out []Line
	for _, text := range split(s) {
		out = append(out, Line{Op: Equal, Text: text})
	}
	return out
}

func split(s string) []string {
	if s == "" {
		return nil
	}
	return strings.Split(strings.TrimSuffix(s, "\n"), "\n")
}
