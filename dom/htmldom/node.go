package htmldom

import (
	"bytes"
	"strings"

	"github.com/andybalholm/cascadia"
	"golang.org/x/net/html"

	"github.com/burntcarrot/duald/dom"
)

// htmlNoder is implemented by every value this package hands out as a dom.Node.
type htmlNoder interface {
	htmlNode() *html.Node
}

func unwrap(n dom.Node) (*html.Node, bool) {
	if n == nil {
		return nil, false
	}
	hn, ok := n.(htmlNoder)
	if !ok {
		return nil, false
	}
	return hn.htmlNode(), true
}

// wrap returns the dom.Node for n. doc may be nil for nodes outside any document.
func wrap(doc *Document, n *html.Node) dom.Node {
	if n == nil {
		return nil
	}
	if doc != nil && n == doc.root {
		return doc
	}
	if n.Type == html.ElementNode && n.Namespace == "" {
		return &Element{Node{n: n, doc: doc}}
	}
	return &Node{n: n, doc: doc}
}

// Node is a non-element node, and the base of Element.
type Node struct {
	n   *html.Node
	doc *Document
}

func (n *Node) htmlNode() *html.Node {
	return n.n
}

func (n *Node) NodeType() dom.NodeType {
	return nodeType(n.n)
}

func (n *Node) NodeName() string {
	return nodeName(n.n)
}

func (n *Node) ParentNode() dom.Node {
	return wrap(n.doc, n.n.Parent)
}

func (n *Node) ChildNodes() []dom.Node {
	return children(n.doc, n.n)
}

func (n *Node) TextContent() string {
	return textContent(n.n)
}

func (n *Node) OwnerDocument() (dom.Document, bool) {
	if n.doc == nil {
		return nil, false
	}
	return n.doc, true
}

func (n *Node) Contains(other dom.Node) bool {
	return contains(n.n, other)
}

func (n *Node) IsSameNode(other dom.Node) bool {
	o, ok := unwrap(other)
	return ok && o == n.n
}

// Key returns the underlying *html.Node.
func (n *Node) Key() any {
	return n.n
}

// SetData replaces the data of a text or comment node, the way typing into an editable
// element does.
func (n *Node) SetData(data string) error {
	if n.n.Type != html.TextNode && n.n.Type != html.CommentNode {
		return dom.Errorf(dom.ErrInvalidNodeType, "%s has no character data", nodeName(n.n))
	}
	n.n.Data = data
	return nil
}

// Element is an HTML element.
type Element struct {
	Node
}

func (e *Element) ID() string {
	id, _ := e.GetAttribute("id")
	return id
}

func (e *Element) HasClass(name string) bool {
	class, _ := e.GetAttribute("class")
	for _, c := range strings.Fields(class) {
		if c == name {
			return true
		}
	}
	return false
}

func (e *Element) AddClass(name string) error {
	if strings.ContainsAny(name, " \t\n\f\r") || name == "" {
		return dom.Errorf(dom.ErrSyntax, "invalid class name %q", name)
	}
	if e.HasClass(name) {
		return nil
	}
	class, _ := e.GetAttribute("class")
	return e.SetAttribute("class", strings.TrimSpace(class+" "+name))
}

func (e *Element) GetAttribute(name string) (string, bool) {
	for _, attr := range e.n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			return attr.Val, true
		}
	}
	return "", false
}

func (e *Element) SetAttribute(name, value string) error {
	name = strings.ToLower(name)
	for i, attr := range e.n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			e.n.Attr[i].Val = value
			return nil
		}
	}
	e.n.Attr = append(e.n.Attr, html.Attribute{Key: name, Val: value})
	return nil
}

func (e *Element) RemoveAttribute(name string) error {
	name = strings.ToLower(name)
	for i, attr := range e.n.Attr {
		if attr.Namespace == "" && attr.Key == name {
			e.n.Attr = append(e.n.Attr[:i], e.n.Attr[i+1:]...)
			return nil
		}
	}
	return nil
}

func (e *Element) InnerHTML() (string, error) {
	var buf bytes.Buffer
	for c := e.n.FirstChild; c != nil; c = c.NextSibling {
		if err := html.Render(&buf, c); err != nil {
			return "", err
		}
	}
	return buf.String(), nil
}

func (e *Element) SetInnerHTML(markup string) error {
	nodes, err := html.ParseFragment(strings.NewReader(markup), e.n)
	if err != nil {
		return dom.Errorf(dom.ErrSyntax, "parse inner HTML: %v", err)
	}

	for c := e.n.FirstChild; c != nil; c = e.n.FirstChild {
		e.n.RemoveChild(c)
	}
	for _, c := range nodes {
		e.n.AppendChild(c)
	}

	return nil
}

func (e *Element) OuterHTML() (string, error) {
	var buf bytes.Buffer
	if err := html.Render(&buf, e.n); err != nil {
		return "", err
	}
	return buf.String(), nil
}

func (e *Element) AppendChild(child dom.Node) error {
	c, ok := unwrap(child)
	if !ok {
		return dom.Errorf(dom.ErrWrongDocument, "the new child was not created by htmldom")
	}
	if contains(c, e) {
		return dom.Errorf(dom.ErrHierarchy, "the new child contains the parent")
	}

	if c.Parent != nil {
		c.Parent.RemoveChild(c)
	}
	e.n.AppendChild(c)

	return nil
}

func (e *Element) RemoveChild(child dom.Node) error {
	c, ok := unwrap(child)
	if !ok || c.Parent != e.n {
		return dom.Errorf(dom.ErrNotFound, "the node to be removed is not a child of this node")
	}
	e.n.RemoveChild(c)
	return nil
}

func (e *Element) QuerySelector(selector string) (dom.Node, error) {
	return querySelector(e.doc, e.n, selector)
}

func nodeType(n *html.Node) dom.NodeType {
	switch n.Type {
	case html.ElementNode:
		return dom.ElementNode
	case html.TextNode:
		return dom.TextNode
	case html.CommentNode:
		return dom.CommentNode
	case html.DocumentNode:
		return dom.DocumentNode
	case html.DoctypeNode:
		return dom.DoctypeNode
	}
	return 0
}

func nodeName(n *html.Node) string {
	switch n.Type {
	case html.ElementNode:
		if n.Namespace == "" {
			return strings.ToUpper(n.Data)
		}
		return n.Data
	case html.TextNode:
		return "#text"
	case html.CommentNode:
		return "#comment"
	case html.DocumentNode:
		return "#document"
	}
	return n.Data
}

func children(doc *Document, n *html.Node) []dom.Node {
	var nodes []dom.Node
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		nodes = append(nodes, wrap(doc, c))
	}
	return nodes
}

func textContent(n *html.Node) string {
	switch n.Type {
	case html.TextNode, html.CommentNode:
		return n.Data
	case html.DocumentNode, html.DoctypeNode:
		return ""
	}

	var sb strings.Builder
	iterNodes(n, func(c *html.Node) {
		if c.Type == html.TextNode {
			sb.WriteString(c.Data)
		}
	})
	return sb.String()
}

func contains(n *html.Node, other dom.Node) bool {
	o, ok := unwrap(other)
	if !ok {
		return false
	}
	for ; o != nil; o = o.Parent {
		if o == n {
			return true
		}
	}
	return false
}

// iterNodes calls f for n and its descendants in tree order.
func iterNodes(n *html.Node, f func(*html.Node)) {
	f(n)
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		iterNodes(c, f)
	}
}

func querySelector(doc *Document, n *html.Node, selector string) (dom.Node, error) {
	sel, err := cascadia.Compile(selector)
	if err != nil {
		return nil, dom.Errorf(dom.ErrSyntax, "%q is not a valid selector: %v", selector, err)
	}

	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if match := sel.MatchFirst(c); match != nil {
			return wrap(doc, match), nil
		}
	}

	return nil, nil
}
