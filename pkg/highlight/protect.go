package highlight

import (
	"errors"
	"regexp"
	"strconv"
	"strings"
)

var (
	// markup comments: <!-- ... --> (non-greedy, may span lines)
	markupCommentRe = regexp.MustCompile(`(?s)<!--.*?-->`)

	// markup tags: opening, closing, self-closing, declarations.
	// The name must follow '<' directly so "a < b" stays SQL.
	markupTagRe = regexp.MustCompile(`<[A-Za-z/!?][^<>]*>`)
)

// Private-use plane scanned for a sentinel rune absent from the input.
const (
	sentinelFirst = '\uE000'
	sentinelLast  = '\uF8FF'
)

var errNoSentinel = errors.New("no free sentinel rune for markup placeholders")

// placeholders maps markers to the markup they replaced. It belongs to a
// single Highlight call and is discarded afterwards.
//
// A marker is sentinel + decimal index + sentinel. The sentinel is a
// private-use rune that does not occur in the input, so every sentinel in
// the protected text belongs to a marker. Sentinels are not word characters
// and never match a comment, string, or number pattern.
type placeholders struct {
	sentinel  rune
	originals []string
	markerRe  *regexp.Regexp
}

// protect replaces markup comments, then markup tags, with markers. It
// returns the protected text and the placeholder map needed to restore it.
func protect(text string) (string, *placeholders, error) {
	sentinel, ok := freeSentinel(text)
	if !ok {
		return "", nil, errNoSentinel
	}

	s := regexp.QuoteMeta(string(sentinel))
	p := &placeholders{
		sentinel: sentinel,
		markerRe: regexp.MustCompile(s + `\d+` + s),
	}

	replace := func(match string) string {
		marker := p.marker(len(p.originals))
		p.originals = append(p.originals, match)
		return marker
	}

	// Order matters: comments may contain tag-like text.
	text = markupCommentRe.ReplaceAllStringFunc(text, replace)
	text = markupTagRe.ReplaceAllStringFunc(text, replace)

	return text, p, nil
}

func (p *placeholders) marker(i int) string {
	var b strings.Builder
	b.WriteRune(p.sentinel)
	b.WriteString(strconv.Itoa(i))
	b.WriteRune(p.sentinel)
	return b.String()
}

// Len returns the number of protected regions.
func (p *placeholders) Len() int {
	return len(p.originals)
}

// pattern returns the marker regexp source, for use in classification. It
// has no capturing groups.
func (p *placeholders) pattern() string {
	return p.markerRe.String()
}

// restore substitutes every marker in text with its original markup.
func (p *placeholders) restore(text string) string {
	if len(p.originals) == 0 || !strings.ContainsRune(text, p.sentinel) {
		return text
	}
	return p.markerRe.ReplaceAllStringFunc(text, func(marker string) string {
		if orig, ok := p.lookup(marker); ok {
			return orig
		}
		return marker
	})
}

// split breaks text into alternating runs of literal text and restored
// markup, calling fn for each run in order.
func (p *placeholders) split(text string, fn func(s string, markup bool)) {
	if len(p.originals) == 0 || !strings.ContainsRune(text, p.sentinel) {
		fn(text, false)
		return
	}
	last := 0
	for _, loc := range p.markerRe.FindAllStringIndex(text, -1) {
		orig, ok := p.lookup(text[loc[0]:loc[1]])
		if !ok {
			continue
		}
		if loc[0] > last {
			fn(text[last:loc[0]], false)
		}
		fn(orig, true)
		last = loc[1]
	}
	if last < len(text) {
		fn(text[last:], false)
	}
}

func (p *placeholders) lookup(marker string) (string, bool) {
	if !p.markerRe.MatchString(marker) {
		return "", false
	}
	sentinel := string(p.sentinel)
	digits := strings.TrimSuffix(strings.TrimPrefix(marker, sentinel), sentinel)
	idx, err := strconv.Atoi(digits)
	if err != nil || idx < 0 || idx >= len(p.originals) {
		return "", false
	}
	return p.originals[idx], true
}

// freeSentinel returns the first private-use rune not present in text.
func freeSentinel(text string) (rune, bool) {
	used := make(map[rune]struct{})
	for _, r := range text {
		if r >= sentinelFirst && r <= sentinelLast {
			used[r] = struct{}{}
		}
	}
	for r := rune(sentinelFirst); r <= sentinelLast; r++ {
		if _, taken := used[r]; !taken {
			return r, true
		}
	}
	return 0, false
}
