package commons

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/google/uuid"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/cursor"
)

func TestNewReport(t *testing.T) {
	id := uuid.New()
	buf := buffer.New("hello world",
		buffer.Span{Range: buffer.Closed(6, 11), Tag: "p"},
		buffer.Span{Range: buffer.Closed(6, 9), Tag: "b"},
	)

	tests := []struct {
		description string
		cursor      cursor.Cursor
		expected    Report
	}{
		{description: "no cursor", cursor: nil,
			expected: Report{Editor: id, Kind: NoCursor}},
		{description: "caret", cursor: cursor.Insert{Offset: 2},
			expected: Report{Editor: id, Kind: InsertCursor, Start: 2, End: 2}},
		{description: "caret inside nested spans", cursor: cursor.Insert{Offset: 7},
			expected: Report{Editor: id, Kind: InsertCursor, Start: 7, End: 7, Spans: []string{"b", "p"}}},
		{description: "selection", cursor: cursor.Select{Range: buffer.Closed(4, 8)},
			expected: Report{Editor: id, Kind: SelectCursor, Start: 4, End: 8, Text: "o wo", Spans: []string{"b", "p"}}},
	}

	for _, tc := range tests {
		got := NewReport(id, tc.cursor, buf)
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestReportJSON(t *testing.T) {
	r := Report{Editor: uuid.Nil, Kind: InsertCursor, Start: 3, End: 3}

	data, err := json.Marshal(r)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}

	expected := `{"editor":"00000000-0000-0000-0000-000000000000","kind":"insert","start":3,"end":3}`
	if !cmp.Equal(string(data), expected) {
		t.Errorf("got != expected, diff: %v\n", cmp.Diff(string(data), expected))
	}
}

func TestIsEvent(t *testing.T) {
	for _, ev := range Events {
		if !IsEvent(string(ev)) {
			t.Errorf("%s should be an event", ev)
		}
	}
	if IsEvent("click") {
		t.Errorf("click is not a cursor event")
	}
}
