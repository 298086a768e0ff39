package commons

import (
	"github.com/google/uuid"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/cursor"
)

// ReportKind represents the kind of cursor in a report.
type ReportKind string

const (
	NoCursor     ReportKind = "none"
	InsertCursor ReportKind = "insert"
	SelectCursor ReportKind = "select"
)

// Report is the serializable form of a resolved cursor.
type Report struct {
	// Editor represents the editor's UUID.
	Editor uuid.UUID `json:"editor"`

	Kind ReportKind `json:"kind"`

	// Start and End are logical offsets in UTF-16 code units. They are equal for carets.
	Start int `json:"start"`
	End   int `json:"end"`

	// Text represents the selected text. Empty for carets.
	Text string `json:"text,omitempty"`

	// Spans represents the tags of the spans at the cursor, innermost first.
	Spans []string `json:"spans,omitempty"`
}

// NewReport describes c against buf.
func NewReport(id uuid.UUID, c cursor.Cursor, buf buffer.Buffer) Report {
	r := Report{Editor: id, Kind: NoCursor}

	switch c := c.(type) {
	case cursor.Insert:
		r.Kind = InsertCursor
		r.Start, r.End = c.Offset, c.Offset
	case cursor.Select:
		r.Kind = SelectCursor
		r.Start, r.End, _ = buffer.Positions(c.Range, buf.Len())
		r.Text = buf.Text(c.Range)
	default:
		return r
	}

	for _, span := range buf.SpansAt(r.End) {
		r.Spans = append(r.Spans, span.Tag)
	}

	return r
}
