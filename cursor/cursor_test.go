package cursor

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"
	"github.com/sirupsen/logrus/hooks/test"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/dom/htmldom"
)

func setup(t *testing.T, inner string, opts ...htmldom.Option) (*htmldom.Document, dom.Element, *Resolver, *test.Hook) {
	t.Helper()

	doc, err := htmldom.ParseString(`<html><body><div id="editor">`+inner+`</div><p id="outside">zz</p></body></html>`, opts...)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}
	n, _ := doc.QuerySelector("#editor")
	root, ok := dom.AsElement(n)
	if !ok {
		t.Fatalf("no editor element")
	}

	logger, hook := test.NewNullLogger()
	logger.SetLevel(logrus.TraceLevel)

	return doc, root, NewResolver(logger), hook
}

// boundaries lists every text boundary point under n in tree order.
func boundaries(n dom.Node) [][2]any {
	var points [][2]any
	if n.NodeType() == dom.TextNode {
		for i := 0; i <= buffer.UTF16Len(n.TextContent()); i++ {
			points = append(points, [2]any{n, i})
		}
	}
	for _, c := range n.ChildNodes() {
		points = append(points, boundaries(c)...)
	}
	return points
}

func TestResolveCollapsed(t *testing.T) {
	doc, root, r, _ := setup(t, "abcdef")
	text := root.ChildNodes()[0]

	for k := 0; k <= 6; k++ {
		if err := doc.Selection().Collapse(text, k); err != nil {
			t.Fatalf("collapse: %v", err)
		}

		got := r.Resolve(root)
		expected := Insert{Offset: k}

		if !cmp.Equal(got, Cursor(expected)) {
			t.Errorf("(caret at %d) got != expected, diff: %v\n", k, cmp.Diff(got, Cursor(expected)))
		}
	}
}

func TestResolveInvalidUTF8(t *testing.T) {
	doc, root, r, _ := setup(t, "caf\xe9")
	text := root.ChildNodes()[0]

	for k := 0; k <= 4; k++ {
		if err := doc.Selection().Collapse(text, k); err != nil {
			t.Fatalf("collapse: %v", err)
		}

		got := r.Resolve(root)
		expected := Insert{Offset: k}

		if !cmp.Equal(got, Cursor(expected)) {
			t.Errorf("(caret at %d) got != expected, diff: %v\n", k, cmp.Diff(got, Cursor(expected)))
		}
	}

	if err := doc.Selection().SetBaseAndExtent(text, 2, text, 4); err != nil {
		t.Fatalf("select: %v", err)
	}
	got := r.Resolve(root)
	expected := Cursor(Select{Range: buffer.Closed(2, 4)})
	if !cmp.Equal(got, expected) {
		t.Errorf("(selection over the invalid byte) got != expected, diff: %v\n", cmp.Diff(got, expected))
	}
}

func TestResolveCollapsedNested(t *testing.T) {
	doc, root, r, _ := setup(t, "ab<b>cd</b>e<i>f<u>gh</u></i>")

	// Neighbouring text nodes share an offset: the end of one is the start of the next.
	expected := []int{0, 1, 2, 2, 3, 4, 4, 5, 5, 6, 6, 7, 8}

	var got []int
	for _, p := range boundaries(root) {
		if err := doc.Selection().Collapse(p[0].(dom.Node), p[1].(int)); err != nil {
			t.Fatalf("collapse: %v", err)
		}
		c, ok := r.Resolve(root).(Insert)
		if !ok {
			t.Fatalf("expected an Insert cursor")
		}
		got = append(got, c.Offset)
	}

	if !cmp.Equal(got, expected) {
		t.Errorf("got != expected, diff: %v\n", cmp.Diff(got, expected))
	}
}

func TestResolveSelect(t *testing.T) {
	tests := []struct {
		description string
		inner       string
		start       func(root dom.Element) (dom.Node, int)
		end         func(root dom.Element) (dom.Node, int)
		expected    Cursor
	}{
		{
			description: "cd in abcdef",
			inner:       "abcdef",
			start:       func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[0], 2 },
			end:         func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[0], 4 },
			expected:    Select{Range: buffer.Closed(2, 4)},
		},
		{
			description: "across formatting",
			inner:       "ab<b>cd</b>ef",
			start:       func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[0], 1 },
			end:         func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[2], 1 },
			expected:    Select{Range: buffer.Closed(1, 5)},
		},
		{
			description: "element boundaries",
			inner:       "ab<b>cd</b>ef",
			start:       func(root dom.Element) (dom.Node, int) { return root, 1 },
			end:         func(root dom.Element) (dom.Node, int) { return root, 2 },
			expected:    Select{Range: buffer.Closed(2, 4)},
		},
		{
			description: "backwards selection is normalized",
			inner:       "abcdef",
			start:       func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[0], 5 },
			end:         func(root dom.Element) (dom.Node, int) { return root.ChildNodes()[0], 1 },
			expected:    Select{Range: buffer.Closed(1, 5)},
		},
	}

	for _, tc := range tests {
		doc, root, r, _ := setup(t, tc.inner)

		sn, so := tc.start(root)
		en, eo := tc.end(root)
		if err := doc.Selection().SetBaseAndExtent(sn, so, en, eo); err != nil {
			t.Fatalf("(%s) select: %v", tc.description, err)
		}

		got := r.Resolve(root)
		if !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestResolveIsIdempotentAndReadOnly(t *testing.T) {
	doc, root, r, _ := setup(t, "abcdef")
	text := root.ChildNodes()[0]

	if err := doc.Selection().SetBaseAndExtent(text, 2, text, 4); err != nil {
		t.Fatalf("select: %v", err)
	}

	first := r.Resolve(root)
	second := r.Resolve(root)
	if !cmp.Equal(first, second) {
		t.Errorf("resolve is not idempotent, diff: %v", cmp.Diff(first, second))
	}

	live, _ := doc.Selection().GetRangeAt(0)
	s, _ := live.String()
	if s != "cd" {
		t.Errorf("the live selection changed to %q", s)
	}
}

func TestResolveNone(t *testing.T) {
	tests := []struct {
		description string
		opts        []htmldom.Option
		prepare     func(doc *htmldom.Document, root dom.Element)
	}{
		{description: "no default view", opts: []htmldom.Option{htmldom.WithoutWindow()}},
		{description: "no selection", opts: []htmldom.Option{htmldom.WithoutSelection()}},
		{description: "zero ranges", prepare: func(doc *htmldom.Document, root dom.Element) {
			_ = doc.Selection().RemoveAllRanges()
		}},
		{description: "selection outside the editor", prepare: func(doc *htmldom.Document, root dom.Element) {
			n, _ := doc.QuerySelector("#outside")
			_ = doc.Selection().Collapse(n.ChildNodes()[0], 1)
		}},
		{description: "selection starts outside the editor", prepare: func(doc *htmldom.Document, root dom.Element) {
			body := root.ParentNode()
			_ = doc.Selection().SetBaseAndExtent(body, 0, root.ChildNodes()[0], 2)
		}},
	}

	for _, tc := range tests {
		doc, root, r, _ := setup(t, "abcdef", tc.opts...)
		if sel := doc.Selection(); sel != nil {
			_ = sel.Collapse(root.ChildNodes()[0], 3)
		}
		if tc.prepare != nil {
			tc.prepare(doc, root)
		}

		if got := r.Resolve(root); got != nil {
			t.Errorf("(%s) got %v, expected no cursor", tc.description, got)
		}
	}
}

func TestResolveDetachedRoot(t *testing.T) {
	root, err := htmldom.Detached(`<div>abcdef</div>`)
	if err != nil {
		t.Fatalf("detached: %v", err)
	}

	if got := NewResolver(nil).Resolve(root); got != nil {
		t.Errorf("got %v, expected no cursor", got)
	}
	if got := NewResolver(nil).Resolve(nil); got != nil {
		t.Errorf("got %v, expected no cursor", got)
	}
}

func TestResolveFallsBackToDocument(t *testing.T) {
	doc, root, r, hook := setup(t, "abcdef", htmldom.WithWindowSelectionError(errors.New("not supported")))

	if err := doc.Selection().Collapse(root.ChildNodes()[0], 3); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	got := r.Resolve(root)
	if !cmp.Equal(got, Cursor(Insert{Offset: 3})) {
		t.Errorf("got != expected, diff: %v", cmp.Diff(got, Cursor(Insert{Offset: 3})))
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.WarnLevel {
		t.Errorf("expected the retry to be logged as a warning, got %v", entry)
	}
}

// failingRange fails every boundary accessor.
type failingRange struct {
	dom.Range
}

func (failingRange) EndContainer() (dom.Node, error) {
	return nil, errors.New("detached")
}

type failingSelection struct {
	dom.Selection
}

func (s failingSelection) GetRangeAt(i int) (dom.Range, error) {
	r, err := s.Selection.GetRangeAt(i)
	if err != nil {
		return nil, err
	}
	return failingRange{r}, nil
}

type failingWindow struct {
	dom.Window
}

func (w failingWindow) GetSelection() (dom.Selection, error) {
	sel, err := w.Window.GetSelection()
	if err != nil {
		return nil, err
	}
	return failingSelection{sel}, nil
}

type failingDocument struct {
	dom.Document
}

func (d failingDocument) DefaultView() (dom.Window, bool) {
	w, ok := d.Document.DefaultView()
	return failingWindow{w}, ok
}

type failingRoot struct {
	dom.Element
	doc dom.Document
}

func (r failingRoot) OwnerDocument() (dom.Document, bool) {
	return failingDocument{r.doc}, true
}

func TestResolveAbsorbsAccessorFailures(t *testing.T) {
	doc, root, r, hook := setup(t, "abcdef")
	if err := doc.Selection().Collapse(root.ChildNodes()[0], 3); err != nil {
		t.Fatalf("collapse: %v", err)
	}

	got := r.Resolve(failingRoot{Element: root, doc: doc})
	if got != nil {
		t.Errorf("got %v, expected no cursor", got)
	}

	entry := hook.LastEntry()
	if entry == nil || entry.Level != logrus.ErrorLevel {
		t.Errorf("expected the failure to be logged as an error, got %v", entry)
	}
}
