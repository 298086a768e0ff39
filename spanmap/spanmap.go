// Package spanmap maps logical buffer offsets to DOM positions and back.
package spanmap

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/host"
)

var (
	ErrEmpty      = errors.New("span map has no entries")
	ErrOutOfRange = errors.New("offset outside of the buffer")
	ErrStale      = errors.New("span map is stale, the content was mutated since extraction")
	ErrNotMapped  = errors.New("DOM position is not inside the content element")
	ErrCoverage   = errors.New("span map does not cover the buffer")
)

// Position is a point in the DOM: a node handle and an offset inside that node.
type Position struct {
	Node   host.Handle
	Offset int
}

// DOMRange is a range of DOM positions.
type DOMRange = buffer.Range[Position]

// Entry pairs a logical range with the DOM range that renders it.
type Entry struct {
	Buffer buffer.BufferRange
	DOM    DOMRange

	// Text is the node's data at extraction.
	Text string
}

// Map is the HtmlSpanMap of one extraction. Entries are in document order, one per
// non-empty Text node, and neighbouring entries share their boundary position.
// The map holds handles only; it is valid for as long as the host generation it was
// built against and the nodes still hold the text they held at extraction.
type Map struct {
	entries    []Entry
	index      map[host.Handle]int
	text       string
	length     int
	generation uint64
}

// Entries returns a copy of the map's entries.
func (m *Map) Entries() []Entry {
	return append([]Entry(nil), m.entries...)
}

// Len returns the length of the buffer the map was built for.
func (m *Map) Len() int {
	return m.length
}

// Generation returns the host generation the map was built against.
func (m *Map) Generation() uint64 {
	return m.generation
}

// Valid reports whether h has not been invalidated since the map was built. It does not
// look at the DOM; see Current.
func (m *Map) Valid(h *host.Host) bool {
	return h.Generation() == m.generation
}

// Current returns ErrStale when h was invalidated or the text of the content element
// differs from the extracted buffer, as it does after the user typed into it.
func (m *Map) Current(h *host.Host) error {
	if !m.Valid(h) {
		return ErrStale
	}
	if got := h.Content().TextContent(); got != m.text {
		return fmt.Errorf("%w: content holds %d code units, buffer holds %d", ErrStale, buffer.UTF16Len(got), m.length)
	}
	return nil
}

// live resolves the node of entry i and checks it still holds the entry's text.
func (m *Map) live(h *host.Host, i int) (dom.Node, error) {
	e := m.entries[i]
	node, err := h.Resolve(e.DOM.Start.Value.Node)
	if err != nil {
		return nil, err
	}
	if node.TextContent() != e.Text {
		return nil, fmt.Errorf("%w: text of entry %d was edited", ErrStale, i)
	}
	return node, nil
}

// Lookup returns the DOM position of a logical offset. At a boundary shared by two
// runs the preceding run wins, so a caret after bold text stays inside the bold run.
func (m *Map) Lookup(offset int) (Position, error) {
	pos, _, err := m.lookup(offset)
	return pos, err
}

func (m *Map) lookup(offset int) (Position, int, error) {
	if len(m.entries) == 0 {
		return Position{}, -1, ErrEmpty
	}
	if offset < 0 || offset > m.length {
		return Position{}, -1, fmt.Errorf("%w: %d not in [0, %d]", ErrOutOfRange, offset, m.length)
	}

	// First entry whose end is at or after offset.
	i := sort.Search(len(m.entries), func(i int) bool {
		_, hi, _ := buffer.Positions(m.entries[i].Buffer, m.length)
		return hi >= offset
	})
	if i < len(m.entries) {
		e := m.entries[i]
		lo, _, _ := buffer.Positions(e.Buffer, m.length)
		if lo <= offset {
			return Position{Node: e.DOM.Start.Value.Node, Offset: e.DOM.Start.Value.Offset + offset - lo}, i, nil
		}
	}

	return Position{}, -1, fmt.Errorf("%w: no entry for %d", ErrCoverage, offset)
}

// Locate resolves a logical offset to a live node and offset. An empty buffer maps to
// the start of the content element.
func (m *Map) Locate(h *host.Host, offset int) (dom.Node, int, error) {
	if !m.Valid(h) {
		return nil, 0, ErrStale
	}

	pos, i, err := m.lookup(offset)
	if errors.Is(err, ErrEmpty) && offset == 0 {
		if h.Content().TextContent() != "" {
			return nil, 0, fmt.Errorf("%w: text was added to an empty buffer", ErrStale)
		}
		return h.Content(), 0, nil
	}
	if err != nil {
		return nil, 0, err
	}

	node, err := m.live(h, i)
	if err != nil {
		return nil, 0, err
	}
	return node, pos.Offset, nil
}

// Offset returns the logical offset of the DOM position (node, offset). Element
// positions count children, like Range boundaries do.
func (m *Map) Offset(h *host.Host, node dom.Node, offset int) (int, error) {
	if !m.Valid(h) {
		return 0, ErrStale
	}
	if node == nil || !h.Content().Contains(node) {
		return 0, ErrNotMapped
	}

	if isText(node) {
		i, ok := m.entryOf(h, node)
		if !ok {
			// Empty text nodes have no entry; they sit where their parent puts them.
			if node.TextContent() != "" {
				return 0, fmt.Errorf("%w: text node was not extracted", ErrStale)
			}
			parent := node.ParentNode()
			return m.before(h, parent, indexOf(parent, node))
		}
		if _, err := m.live(h, i); err != nil {
			return 0, err
		}
		e := m.entries[i]
		lo, hi, _ := buffer.Positions(e.Buffer, m.length)
		return clamp(lo+offset-e.DOM.Start.Value.Offset, lo, hi), nil
	}

	return m.before(h, node, offset)
}

func (m *Map) entryOf(h *host.Host, n dom.Node) (int, bool) {
	handle, ok := h.HandleOf(n)
	if !ok {
		return -1, false
	}
	i, ok := m.index[handle]
	return i, ok
}

// before returns the offset of the boundary point (n, i): the start of the first run
// after it, or the end of the buffer.
func (m *Map) before(h *host.Host, n dom.Node, i int) (int, error) {
	kids := n.ChildNodes()
	for k := i; k < len(kids); k++ {
		lo, ok, err := m.firstIn(h, kids[k])
		if err != nil {
			return 0, err
		}
		if ok {
			return lo, nil
		}
	}

	if n.IsSameNode(h.Content()) {
		return m.length, nil
	}

	parent := n.ParentNode()
	if parent == nil {
		return m.length, nil
	}
	return m.before(h, parent, indexOf(parent, n)+1)
}

// firstIn returns the start of the first run whose node is n or inside n. Runs are in
// document order, so the first extracted text node of the subtree starts it.
func (m *Map) firstIn(h *host.Host, n dom.Node) (int, bool, error) {
	if isText(n) {
		i, ok := m.entryOf(h, n)
		if !ok {
			if n.TextContent() != "" {
				return 0, false, fmt.Errorf("%w: text node was not extracted", ErrStale)
			}
			return 0, false, nil
		}
		if _, err := m.live(h, i); err != nil {
			return 0, false, err
		}
		lo, _, _ := buffer.Positions(m.entries[i].Buffer, m.length)
		return lo, true, nil
	}

	for _, c := range n.ChildNodes() {
		lo, ok, err := m.firstIn(h, c)
		if err != nil || ok {
			return lo, ok, err
		}
	}
	return 0, false, nil
}

// Verify checks that the entries cover the buffer contiguously and that each entry's DOM
// text is the buffer text it maps to.
func (m *Map) Verify(h *host.Host, buf buffer.Buffer) error {
	if err := m.Current(h); err != nil {
		return err
	}
	if m.length != buf.Len() {
		return fmt.Errorf("%w: map length %d, buffer length %d", ErrCoverage, m.length, buf.Len())
	}

	next := 0
	for i, e := range m.entries {
		lo, hi, _ := buffer.Positions(e.Buffer, m.length)
		if lo != next {
			return fmt.Errorf("%w: entry %d starts at %d, expected %d", ErrCoverage, i, lo, next)
		}

		node, err := m.live(h, i)
		if err != nil {
			return err
		}
		got := buffer.Slice(node.TextContent(), e.DOM.Start.Value.Offset, e.DOM.End.Value.Offset)
		if want := buf.Text(e.Buffer); got != want {
			return fmt.Errorf("%w: entry %d renders %q, buffer holds %q", ErrCoverage, i, got, want)
		}

		next = hi
	}

	if next != m.length {
		return fmt.Errorf("%w: entries end at %d, buffer ends at %d", ErrCoverage, next, m.length)
	}
	return nil
}

// Extract walks the content element of h and builds the buffer and its span map.
// The buffer holds the Text data of the subtree in tree order, exactly what
// Range.toString() yields for the same content; no whitespace is collapsed in either
// direction. Every element below the content element contributes a span.
func Extract(h *host.Host) (buffer.Buffer, *Map, error) {
	h.Invalidate()

	x := extractor{h: h}
	x.walk(h.Content(), true)

	buf := buffer.New(x.text.String(), x.spans...)
	if err := buf.Validate(); err != nil {
		return buffer.Buffer{}, nil, err
	}

	m := &Map{
		entries:    x.entries,
		index:      make(map[host.Handle]int, len(x.entries)),
		text:       buf.Content,
		length:     x.offset,
		generation: h.Generation(),
	}
	for i, e := range x.entries {
		m.index[e.DOM.Start.Value.Node] = i
	}
	return buf, m, nil
}

type extractor struct {
	h       *host.Host
	text    strings.Builder
	offset  int
	entries []Entry
	spans   []buffer.Span
}

func (x *extractor) walk(n dom.Node, root bool) {
	switch {
	case isText(n):
		data := n.TextContent()
		length := buffer.UTF16Len(data)
		if length == 0 {
			return
		}

		handle := x.h.Register(n)
		x.entries = append(x.entries, Entry{
			Buffer: buffer.Closed(x.offset, x.offset+length),
			DOM: DOMRange{
				Start: buffer.Incl(Position{Node: handle, Offset: 0}),
				End:   buffer.Incl(Position{Node: handle, Offset: length}),
			},
			Text: data,
		})
		x.text.WriteString(data)
		x.offset += length

	case n.NodeType() == dom.ElementNode:
		start := x.offset
		for _, c := range n.ChildNodes() {
			x.walk(c, false)
		}
		if !root {
			x.spans = append(x.spans, buffer.Span{
				Range: buffer.Closed(start, x.offset),
				Tag:   strings.ToLower(n.NodeName()),
			})
		}
	}
}

func isText(n dom.Node) bool {
	t := n.NodeType()
	return t == dom.TextNode || t == dom.CDATANode
}

func indexOf(parent, child dom.Node) int {
	for i, c := range parent.ChildNodes() {
		if c.IsSameNode(child) {
			return i
		}
	}
	return -1
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
