package spanmap

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/dom/htmldom"
	"github.com/burntcarrot/duald/host"
)

func hostOf(t *testing.T, inner string) *host.Host {
	t.Helper()

	doc, err := htmldom.ParseString(`<html><body><div id="editor">` + inner + `</div></body></html>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n, _ := doc.QuerySelector("#editor")
	root, _ := dom.AsElement(n)

	h, err := host.New(root, host.Config{})
	if err != nil {
		t.Fatalf("host: %v", err)
	}
	return h
}

func TestExtractRoundTrip(t *testing.T) {
	tests := []struct {
		description string
		inner       string
		expected    string
	}{
		{description: "plain", inner: "hello world", expected: "hello world"},
		{description: "formatted", inner: "hello <b>wor</b>ld", expected: "hello world"},
		{description: "whitespace is kept", inner: "hello  <i> world</i>\n", expected: "hello   world\n"},
		{description: "comments are skipped", inner: "hello<!-- x --> world", expected: "hello world"},
		{description: "empty", inner: "", expected: ""},
	}

	for _, tc := range tests {
		h := hostOf(t, tc.inner)

		buf, m, err := Extract(h)
		if err != nil {
			t.Fatalf("(%s) extract: %v", tc.description, err)
		}

		if !cmp.Equal(buf.Content, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(buf.Content, tc.expected))
		}
		if rendered := h.Content().TextContent(); rendered != buf.Content {
			t.Errorf("(%s) buffer %q does not reproduce rendered text %q", tc.description, buf.Content, rendered)
		}
		if err := m.Verify(h, buf); err != nil {
			t.Errorf("(%s) verify: %v", tc.description, err)
		}
	}
}

func TestExtractSpans(t *testing.T) {
	h := hostOf(t, "ab<b>cd<i>e</i></b>f<br>")

	buf, _, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	expected := []buffer.Span{
		{Range: buffer.Closed(4, 5), Tag: "i"},
		{Range: buffer.Closed(2, 5), Tag: "b"},
		{Range: buffer.Closed(6, 6), Tag: "br"},
	}
	if !cmp.Equal(buf.Spans, expected) {
		t.Errorf("got != expected, diff: %v\n", cmp.Diff(buf.Spans, expected))
	}
}

func TestLookup(t *testing.T) {
	h := hostOf(t, "abc<b>def</b>")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}
	entries := m.Entries()
	plain, bold := entries[0].DOM.Start.Value.Node, entries[1].DOM.Start.Value.Node

	tests := []struct {
		description string
		offset      int
		expected    Position
		expectedErr error
	}{
		{description: "start", offset: 0, expected: Position{Node: plain, Offset: 0}},
		{description: "inside plain", offset: 2, expected: Position{Node: plain, Offset: 2}},
		{description: "shared boundary, preceding run wins", offset: 3, expected: Position{Node: plain, Offset: 3}},
		{description: "inside bold", offset: 4, expected: Position{Node: bold, Offset: 1}},
		{description: "end", offset: 6, expected: Position{Node: bold, Offset: 3}},
		{description: "past end", offset: 7, expectedErr: ErrOutOfRange},
		{description: "negative", offset: -1, expectedErr: ErrOutOfRange},
	}

	for _, tc := range tests {
		got, err := m.Lookup(tc.offset)
		if !errors.Is(err, tc.expectedErr) {
			t.Errorf("(%s) got error %v, expected %v", tc.description, err, tc.expectedErr)
			continue
		}
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestOffset(t *testing.T) {
	h := hostOf(t, "ab<b>cd</b><span></span>e<i>f</i>")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	content := h.Content()
	kids := content.ChildNodes()
	boldText := kids[1].ChildNodes()[0]
	span := kids[2]

	tests := []struct {
		description string
		node        dom.Node
		offset      int
		expected    int
	}{
		{description: "text", node: kids[0], offset: 1, expected: 1},
		{description: "text in bold", node: boldText, offset: 2, expected: 4},
		{description: "content start", node: content, offset: 0, expected: 0},
		{description: "before bold", node: content, offset: 1, expected: 2},
		{description: "empty element", node: span, offset: 0, expected: 4},
		{description: "before italic", node: content, offset: 4, expected: 5},
		{description: "content end", node: content, offset: 5, expected: 6},
	}

	for _, tc := range tests {
		got, err := m.Offset(h, tc.node, tc.offset)
		if err != nil {
			t.Fatalf("(%s) offset: %v", tc.description, err)
		}
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}

	if _, err := m.Offset(h, h.Root().ParentNode(), 0); !errors.Is(err, ErrNotMapped) {
		t.Errorf("got %v, expected ErrNotMapped", err)
	}
}

func TestLocateRoundTrip(t *testing.T) {
	h := hostOf(t, "ab<b>cd</b>e<i>f<u>g</u></i>")

	buf, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	for k := 0; k <= buf.Len(); k++ {
		node, off, err := m.Locate(h, k)
		if err != nil {
			t.Fatalf("locate %d: %v", k, err)
		}
		got, err := m.Offset(h, node, off)
		if err != nil {
			t.Fatalf("offset %d: %v", k, err)
		}
		if got != k {
			t.Errorf("offset %d mapped back to %d", k, got)
		}
	}
}

func TestStale(t *testing.T) {
	h := hostOf(t, "abc")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	h.Invalidate()

	if m.Valid(h) {
		t.Errorf("map should be invalid after the host is invalidated")
	}
	if _, _, err := m.Locate(h, 1); !errors.Is(err, ErrStale) {
		t.Errorf("got %v, expected ErrStale", err)
	}
	if _, err := m.Offset(h, h.Content(), 0); !errors.Is(err, ErrStale) {
		t.Errorf("got %v, expected ErrStale", err)
	}
}

func TestEditedText(t *testing.T) {
	h := hostOf(t, "ab<b>cd</b>ef")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	bold := h.Content().ChildNodes()[1]
	text, ok := h.Content().ChildNodes()[0].(*htmldom.Node)
	if !ok {
		t.Fatalf("expected a text node")
	}
	if err := text.SetData("XYab"); err != nil {
		t.Fatalf("set data: %v", err)
	}

	if !m.Valid(h) {
		t.Errorf("editing text does not invalidate the host")
	}

	tests := []struct {
		description string
		call        func() error
	}{
		{description: "current", call: func() error { return m.Current(h) }},
		{description: "locate inside the edited run", call: func() error {
			_, _, err := m.Locate(h, 1)
			return err
		}},
		{description: "offset in the edited run", call: func() error {
			_, err := m.Offset(h, text, 2)
			return err
		}},
		{description: "offset before a run after the edit", call: func() error {
			_, err := m.Offset(h, h.Content(), 0)
			return err
		}},
		{description: "verify", call: func() error {
			return m.Verify(h, buffer.New("abcdef"))
		}},
	}

	for _, tc := range tests {
		if err := tc.call(); !errors.Is(err, ErrStale) {
			t.Errorf("(%s) got %v, expected ErrStale", tc.description, err)
		}
	}

	// Untouched runs still resolve.
	if node, off, err := m.Locate(h, 3); err != nil || !node.IsSameNode(bold.ChildNodes()[0]) || off != 1 {
		t.Errorf("untouched run: got %v, %d, %v", node, off, err)
	}

	buf, m, err := Extract(h)
	if err != nil {
		t.Fatalf("re-extract: %v", err)
	}
	if buf.Content != "XYabcdef" {
		t.Errorf("got %q, expected %q", buf.Content, "XYabcdef")
	}
	if err := m.Current(h); err != nil {
		t.Errorf("fresh map: %v", err)
	}
}

func TestEditedEmptyContent(t *testing.T) {
	h := hostOf(t, "")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	doc, _ := h.Content().OwnerDocument()
	p, err := doc.CreateElement("p")
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if err := p.SetInnerHTML("x"); err != nil {
		t.Fatalf("inner: %v", err)
	}
	if err := h.Content().AppendChild(p); err != nil {
		t.Fatalf("append: %v", err)
	}

	if _, _, err := m.Locate(h, 0); !errors.Is(err, ErrStale) {
		t.Errorf("got %v, expected ErrStale", err)
	}
}

func TestLocateEmpty(t *testing.T) {
	h := hostOf(t, "")

	_, m, err := Extract(h)
	if err != nil {
		t.Fatalf("extract: %v", err)
	}

	node, off, err := m.Locate(h, 0)
	if err != nil || !node.IsSameNode(h.Content()) || off != 0 {
		t.Errorf("empty buffer should map to the content start, got %v, %d, %v", node, off, err)
	}
}
