// Package host owns the editable content element inside an editor root and the address
// space of its nodes.
//
// Nodes are never handed out across callbacks directly. Callers register a node and keep
// its Handle; the handle is resolved back through the Host and stops resolving once the
// Host is invalidated, which happens whenever the content subtree is rebuilt.
package host

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/dom"
)

// DefaultContentClass marks the inner editable element.
const DefaultContentClass = "duald_editor_content"

var (
	ErrNoDocument  = errors.New("editor root has no owning document")
	ErrStaleHandle = errors.New("handle does not resolve to a live node")
	ErrAmbiguous   = errors.New("more than one content element")
)

// Handle is an opaque reference to a node of the content subtree.
type Handle uuid.UUID

func (h Handle) String() string {
	return uuid.UUID(h).String()
}

// IsZero reports whether h is the zero handle.
func (h Handle) IsZero() bool {
	return uuid.UUID(h) == uuid.Nil
}

// Config configures a Host.
type Config struct {
	// ContentClass is the marker class of the content element.
	ContentClass string

	// Sanitize passes adopted markup through Policy before it enters the content element.
	Sanitize bool
	Policy   *bluemonday.Policy

	Logger logrus.FieldLogger
}

type entry struct {
	handle Handle
	node   dom.Node
}

// Host is the DOM Content Host of one editor.
type Host struct {
	root    dom.Element
	content dom.Element
	doc     dom.Document
	log     logrus.FieldLogger

	mu         sync.RWMutex
	generation uint64
	nodes      map[Handle]dom.Node

	// Nodes implementing dom.Keyer are indexed by key; the rest are scanned.
	keyed   map[any]Handle
	unkeyed []entry
}

// New realizes the content element inside root. An existing content element carrying
// the marker class is reused; otherwise the children of root are moved into a new one.
func New(root dom.Element, cfg Config) (*Host, error) {
	if cfg.ContentClass == "" {
		cfg.ContentClass = DefaultContentClass
	}
	if cfg.Logger == nil {
		cfg.Logger = logrus.StandardLogger()
	}
	if cfg.Sanitize && cfg.Policy == nil {
		cfg.Policy = bluemonday.UGCPolicy()
	}

	doc, ok := root.OwnerDocument()
	if !ok {
		return nil, ErrNoDocument
	}

	h := &Host{
		root: root,
		doc:  doc,
		log:  cfg.Logger.WithField("component", "host"),
	}

	content, found, err := Find(root, cfg.ContentClass)
	if err != nil {
		return nil, err
	}
	if found {
		h.log.Debugf("reusing content element .%s", cfg.ContentClass)
		h.content = content
		return h, nil
	}

	content, err = adopt(doc, root, cfg)
	if err != nil {
		return nil, err
	}
	h.content = content

	return h, nil
}

// Find locates the content element of root by its marker class.
func Find(root dom.Element, class string) (dom.Element, bool, error) {
	var found []dom.Element
	for _, c := range root.ChildNodes() {
		el, ok := dom.AsElement(c)
		if ok && el.HasClass(class) {
			found = append(found, el)
		}
	}

	switch len(found) {
	case 0:
		return nil, false, nil
	case 1:
		return found[0], true, nil
	}
	return nil, false, fmt.Errorf("%w: %d children carry .%s", ErrAmbiguous, len(found), class)
}

func adopt(doc dom.Document, root dom.Element, cfg Config) (dom.Element, error) {
	content, err := doc.CreateElement("div")
	if err != nil {
		return nil, err
	}
	if err := content.AddClass(cfg.ContentClass); err != nil {
		return nil, err
	}
	if err := content.SetAttribute("contenteditable", "true"); err != nil {
		return nil, err
	}

	before := root.TextContent()

	if cfg.Sanitize {
		markup, err := root.InnerHTML()
		if err != nil {
			return nil, err
		}
		if err := content.SetInnerHTML(cfg.Policy.Sanitize(markup)); err != nil {
			return nil, err
		}
		for _, c := range root.ChildNodes() {
			if err := root.RemoveChild(c); err != nil {
				return nil, err
			}
		}
	} else {
		for _, c := range root.ChildNodes() {
			if err := content.AppendChild(c); err != nil {
				return nil, err
			}
		}
	}

	if err := root.RemoveAttribute("contenteditable"); err != nil {
		return nil, err
	}
	if err := root.AppendChild(content); err != nil {
		return nil, err
	}

	if after := content.TextContent(); after != before {
		cfg.Logger.Warnf("content text changed while adopting markup (%d -> %d bytes)", len(before), len(after))
	}

	return content, nil
}

func (h *Host) Root() dom.Element {
	return h.root
}

func (h *Host) Content() dom.Element {
	return h.content
}

func (h *Host) Document() dom.Document {
	return h.doc
}

// Register returns the handle of n, creating one if n has none yet.
func (h *Host) Register(n dom.Node) Handle {
	h.mu.Lock()
	defer h.mu.Unlock()

	if handle, ok := h.lookup(n); ok {
		return handle
	}

	handle := Handle(uuid.New())
	if h.nodes == nil {
		h.nodes = make(map[Handle]dom.Node)
		h.keyed = make(map[any]Handle)
	}
	h.nodes[handle] = n
	if k, ok := n.(dom.Keyer); ok {
		h.keyed[k.Key()] = handle
	} else {
		h.unkeyed = append(h.unkeyed, entry{handle: handle, node: n})
	}
	return handle
}

// HandleOf returns the handle already registered for n.
func (h *Host) HandleOf(n dom.Node) (Handle, bool) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.lookup(n)
}

func (h *Host) lookup(n dom.Node) (Handle, bool) {
	if k, ok := n.(dom.Keyer); ok {
		handle, found := h.keyed[k.Key()]
		return handle, found
	}

	for _, e := range h.unkeyed {
		if e.node.IsSameNode(n) {
			return e.handle, true
		}
	}
	return Handle{}, false
}

// Resolve returns the node behind handle. Handles released by Invalidate, and nodes
// that have since left the content element, do not resolve.
func (h *Host) Resolve(handle Handle) (dom.Node, error) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	node, ok := h.nodes[handle]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStaleHandle, handle)
	}
	if !h.content.Contains(node) {
		return nil, fmt.Errorf("%w: %s left the content element", ErrStaleHandle, handle)
	}
	return node, nil
}

// Generation increases every time the Host is invalidated.
func (h *Host) Generation() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.generation
}

// Invalidate releases every handle. It must be called whenever the content subtree is
// mutated outside of the Host.
func (h *Host) Invalidate() {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nodes = nil
	h.keyed = nil
	h.unkeyed = nil
	h.generation++
}
