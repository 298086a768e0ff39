// Package dom describes the slice of the browser DOM the editor core depends on.
//
// Every accessor that can throw in a browser returns an error, and every accessor that
// can return null reports absence with a nil value or a false ok. Implementations live in
// htmldom (in-memory, over golang.org/x/net/html) and jsdom (syscall/js).
package dom

import "sync"

// NodeType mirrors Node.nodeType.
type NodeType int

const (
	ElementNode  NodeType = 1
	TextNode     NodeType = 3
	CDATANode    NodeType = 4
	CommentNode  NodeType = 8
	DocumentNode NodeType = 9
	DoctypeNode  NodeType = 10
	FragmentNode NodeType = 11
)

// Node is a node of a DOM tree.
type Node interface {
	NodeType() NodeType
	NodeName() string

	// ParentNode returns nil for roots.
	ParentNode() Node
	ChildNodes() []Node

	// TextContent returns the data of text nodes and the concatenated descendant text of
	// elements.
	TextContent() string

	// OwnerDocument reports false for documents and for nodes with no document.
	OwnerDocument() (Document, bool)

	// Contains reports whether other is this node or one of its descendants.
	Contains(other Node) bool
	IsSameNode(other Node) bool
}

// Keyer is implemented by nodes with a comparable identity. Every value handed out for
// the same node returns an equal Key.
type Keyer interface {
	Key() any
}

// Element is an HTML element.
type Element interface {
	Node

	ID() string
	HasClass(name string) bool
	AddClass(name string) error
	GetAttribute(name string) (string, bool)
	SetAttribute(name, value string) error
	RemoveAttribute(name string) error

	InnerHTML() (string, error)
	SetInnerHTML(markup string) error
	OuterHTML() (string, error)

	AppendChild(child Node) error
	RemoveChild(child Node) error

	// QuerySelector returns the first matching descendant, or nil.
	QuerySelector(selector string) (Node, error)
}

// Event is a dispatched DOM event.
type Event interface {
	Type() string
}

// Document is the owner of a DOM tree.
type Document interface {
	Node

	// DefaultView reports false when the document has no browsing context.
	DefaultView() (Window, bool)

	// GetSelection may return a nil selection with a nil error.
	GetSelection() (Selection, error)

	// QuerySelector returns the first matching element, or nil.
	QuerySelector(selector string) (Node, error)
	CreateElement(tag string) (Element, error)
	CreateRange() (Range, error)

	// AddEventListener registers fn and returns a function removing it again.
	AddEventListener(eventType string, fn func(Event)) (remove func(), err error)
}

// Window is a browsing context.
type Window interface {
	// GetSelection may return a nil selection with a nil error.
	GetSelection() (Selection, error)
	Document() (Document, bool)
}

// Selection is the user's selection.
type Selection interface {
	RangeCount() int
	GetRangeAt(index int) (Range, error)
	IsCollapsed() bool
	RemoveAllRanges() error
	AddRange(r Range) error
}

// Range is a live DOM range.
type Range interface {
	StartContainer() (Node, error)
	StartOffset() (int, error)
	EndContainer() (Node, error)
	EndOffset() (int, error)
	Collapsed() bool

	SetStart(node Node, offset int) error
	SetEnd(node Node, offset int) error
	SelectNodeContents(node Node) error
	CloneRange() (Range, error)

	// String is Range.toString(): the Text data inside the range.
	String() (string, error)
}

// AsElement returns n as an HTML element.
func AsElement(n Node) (Element, bool) {
	if n == nil || n.NodeType() != ElementNode {
		return nil, false
	}
	el, ok := n.(Element)
	return el, ok
}

var (
	globalMu sync.RWMutex
	global   func() (Window, bool)
)

// RegisterGlobal makes fn the provider of the global window.
// Hosts with a rendering context register one from an init function.
func RegisterGlobal(fn func() (Window, bool)) {
	globalMu.Lock()
	defer globalMu.Unlock()
	global = fn
}

// GlobalWindow returns the registered global window, if any.
func GlobalWindow() (Window, bool) {
	globalMu.RLock()
	fn := global
	globalMu.RUnlock()

	if fn == nil {
		return nil, false
	}
	return fn()
}
