package buffer

import (
	"fmt"
	"sort"
	"unicode/utf16"
	"unicode/utf8"
)

// Span is a formatting or structural region of the buffer.
// Tag names the element that produced it, for example "strong" or "p".
type Span struct {
	Range BufferRange
	Tag   string
}

// Buffer is the logical text content together with its spans.
// It holds no DOM references.
type Buffer struct {
	Content string
	Spans   []Span
}

// New returns a buffer with the given content and spans.
func New(content string, spans ...Span) Buffer {
	return Buffer{Content: content, Spans: spans}
}

// Len returns the length of the content in UTF-16 code units.
func (b Buffer) Len() int {
	return UTF16Len(b.Content)
}

// Text returns the content covered by r.
func (b Buffer) Text(r BufferRange) string {
	lo, hi, ok := Positions(r, b.Len())
	if !ok {
		return ""
	}
	return Slice(b.Content, lo, hi)
}

// Validate checks that every span lies within the buffer.
func (b Buffer) Validate() error {
	n := b.Len()
	for i, span := range b.Spans {
		if err := Validate(span.Range, n); err != nil {
			return fmt.Errorf("span %d (%s): %w", i, span.Tag, err)
		}
	}
	return nil
}

// SpansAt returns the spans including the given position, innermost first.
// Spans may nest or overlap; the shortest span wins, and among equally long spans the
// one starting later wins.
func (b Buffer) SpansAt(offset int) []Span {
	n := b.Len()

	var found []Span
	for _, span := range b.Spans {
		if Contains(span.Range, n, offset) {
			found = append(found, span)
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		li, hi, _ := Positions(found[i].Range, n)
		lj, hj, _ := Positions(found[j].Range, n)
		if hi-li != hj-lj {
			return hi-li < hj-lj
		}
		return li > lj
	})

	return found
}

// UTF16Len returns the number of UTF-16 code units needed to encode s.
func UTF16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}

// Slice returns s between the UTF-16 offsets lo and hi.
// Offsets are clamped to s; an offset splitting a surrogate pair rounds down.
func Slice(s string, lo, hi int) string {
	if lo > hi {
		return ""
	}
	return s[ByteOffset(s, lo):ByteOffset(s, hi)]
}

// ByteOffset converts a UTF-16 offset into a byte offset of s.
func ByteOffset(s string, offset int) int {
	if offset <= 0 {
		return 0
	}

	// Invalid bytes decode as utf8.RuneError with a width of one byte.
	units := 0
	for i := 0; i < len(s); {
		r, size := utf8.DecodeRuneInString(s[i:])
		w := utf16.RuneLen(r)
		if units+w > offset {
			return i
		}
		units += w
		i += size
		if units == offset {
			return i
		}
	}

	return len(s)
}
