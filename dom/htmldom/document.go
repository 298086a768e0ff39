// Package htmldom is an in-memory DOM built on golang.org/x/net/html.
//
// Ranges and selections follow the DOM standard closely enough for the editor core to be
// exercised outside a browser: boundary points are compared in tree order, setStart and
// setEnd collapse the range when a boundary crosses the other one, and String() returns
// the Text data inside the range the way Range.toString() does.
package htmldom

import (
	"errors"
	"io"
	"strings"
	"sync"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/burntcarrot/duald/dom"
)

// Option configures a Document.
type Option func(*Document)

// WithoutWindow makes the document behave like one without a browsing context.
func WithoutWindow() Option {
	return func(d *Document) {
		d.window = nil
	}
}

// WithWindowSelectionError makes window.getSelection() fail with err while the
// document still exposes its selection.
func WithWindowSelectionError(err error) Option {
	return func(d *Document) {
		d.windowSelErr = err
	}
}

// WithoutSelection makes both window.getSelection() and document.getSelection() return null.
func WithoutSelection() Option {
	return func(d *Document) {
		d.selection = nil
	}
}

// Document is an HTML document.
type Document struct {
	root         *html.Node
	window       *Window
	selection    *Selection
	windowSelErr error

	mu        sync.Mutex
	listeners map[string][]*listener
}

type listener struct {
	fn func(dom.Event)
}

// NewDocument wraps a parsed document node.
func NewDocument(root *html.Node, opts ...Option) (*Document, error) {
	if root == nil || root.Type != html.DocumentNode {
		return nil, errors.New("htmldom: root is not a document node")
	}

	d := &Document{
		root:      root,
		listeners: make(map[string][]*listener),
	}
	d.window = &Window{doc: d}
	d.selection = &Selection{doc: d}

	for _, opt := range opts {
		opt(d)
	}

	return d, nil
}

// Parse parses an HTML document from r.
func Parse(r io.Reader, opts ...Option) (*Document, error) {
	root, err := html.Parse(r)
	if err != nil {
		return nil, err
	}
	return NewDocument(root, opts...)
}

// ParseString parses an HTML document from s.
func ParseString(s string, opts ...Option) (*Document, error) {
	return Parse(strings.NewReader(s), opts...)
}

// Detached parses a single element that belongs to no document.
func Detached(markup string) (dom.Element, error) {
	body := &html.Node{Type: html.ElementNode, Data: "body", DataAtom: atom.Body}
	nodes, err := html.ParseFragment(strings.NewReader(markup), body)
	if err != nil {
		return nil, err
	}

	for _, n := range nodes {
		if el, ok := dom.AsElement(wrap(nil, n)); ok {
			return el, nil
		}
	}

	return nil, errors.New("htmldom: markup contains no element")
}

// Root returns the underlying document node.
func (d *Document) Root() *html.Node {
	return d.root
}

// Selection returns the document's selection, or nil when it has none.
func (d *Document) Selection() *Selection {
	return d.selection
}

// Render writes the document as HTML.
func (d *Document) Render(w io.Writer) error {
	return html.Render(w, d.root)
}

func (d *Document) htmlNode() *html.Node {
	return d.root
}

func (d *Document) NodeType() dom.NodeType {
	return dom.DocumentNode
}

func (d *Document) NodeName() string {
	return "#document"
}

func (d *Document) ParentNode() dom.Node {
	return nil
}

func (d *Document) ChildNodes() []dom.Node {
	return children(d, d.root)
}

func (d *Document) TextContent() string {
	return ""
}

func (d *Document) OwnerDocument() (dom.Document, bool) {
	return nil, false
}

func (d *Document) Contains(other dom.Node) bool {
	return contains(d.root, other)
}

func (d *Document) Key() any {
	return d.root
}

func (d *Document) IsSameNode(other dom.Node) bool {
	o, ok := unwrap(other)
	return ok && o == d.root
}

func (d *Document) DefaultView() (dom.Window, bool) {
	if d.window == nil {
		return nil, false
	}
	return d.window, true
}

func (d *Document) GetSelection() (dom.Selection, error) {
	if d.selection == nil {
		return nil, nil
	}
	return d.selection, nil
}

func (d *Document) QuerySelector(selector string) (dom.Node, error) {
	return querySelector(d, d.root, selector)
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	tag = strings.ToLower(tag)
	if tag == "" || strings.ContainsAny(tag, " \t\n\f\r<>/") {
		return nil, dom.Errorf(dom.ErrInvalidState, "%q is not a valid tag name", tag)
	}

	n := &html.Node{Type: html.ElementNode, Data: tag, DataAtom: atom.Lookup([]byte(tag))}
	return &Element{Node{n: n, doc: d}}, nil
}

func (d *Document) CreateRange() (dom.Range, error) {
	return &Range{
		startNode: d.root,
		endNode:   d.root,
		doc:       d,
	}, nil
}

func (d *Document) AddEventListener(eventType string, fn func(dom.Event)) (func(), error) {
	if fn == nil {
		return nil, errors.New("htmldom: nil listener")
	}

	l := &listener{fn: fn}

	d.mu.Lock()
	d.listeners[eventType] = append(d.listeners[eventType], l)
	d.mu.Unlock()

	remove := func() {
		d.mu.Lock()
		defer d.mu.Unlock()

		ls := d.listeners[eventType]
		for i, other := range ls {
			if other == l {
				d.listeners[eventType] = append(ls[:i:i], ls[i+1:]...)
				return
			}
		}
	}

	return remove, nil
}

// Dispatch fires an event of the given type at the document and returns the number of
// listeners that received it.
func (d *Document) Dispatch(eventType string) int {
	d.mu.Lock()
	ls := append([]*listener(nil), d.listeners[eventType]...)
	d.mu.Unlock()

	ev := Event{kind: eventType}
	for _, l := range ls {
		l.fn(ev)
	}

	return len(ls)
}

// Listeners returns the number of listeners registered for eventType.
func (d *Document) Listeners(eventType string) int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return len(d.listeners[eventType])
}

// Event is a dispatched event.
type Event struct {
	kind string
}

func (e Event) Type() string {
	return e.kind
}

// Window is the browsing context of a Document.
type Window struct {
	doc *Document
}

func (w *Window) GetSelection() (dom.Selection, error) {
	if w.doc.windowSelErr != nil {
		return nil, w.doc.windowSelErr
	}
	return w.doc.GetSelection()
}

func (w *Window) Document() (dom.Document, bool) {
	return w.doc, true
}
