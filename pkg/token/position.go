package token

// Span is a half-open byte range [Start, End) into the text a token was
// taken from.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int {
	return s.End - s.Start
}

// Contains returns true if the span contains the given offset.
func (s Span) Contains(offset int) bool {
	return offset >= s.Start && offset < s.End
}

// IsValid returns true if the span is non-negative and ordered.
func (s Span) IsValid() bool {
	return s.Start >= 0 && s.End >= s.Start
}

// Overlaps returns true if the two spans share at least one byte.
func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}
