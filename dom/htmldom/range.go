package htmldom

import (
	"strings"

	"golang.org/x/net/html"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/dom"
)

// Range is a DOM range. Offsets into Text nodes count UTF-16 code units.
type Range struct {
	startNode *html.Node
	startOff  int
	endNode   *html.Node
	endOff    int
	doc       *Document
}

func (r *Range) StartContainer() (dom.Node, error) {
	return wrap(r.doc, r.startNode), nil
}

func (r *Range) StartOffset() (int, error) {
	return r.startOff, nil
}

func (r *Range) EndContainer() (dom.Node, error) {
	return wrap(r.doc, r.endNode), nil
}

func (r *Range) EndOffset() (int, error) {
	return r.endOff, nil
}

func (r *Range) Collapsed() bool {
	return r.startNode == r.endNode && r.startOff == r.endOff
}

func (r *Range) SetStart(node dom.Node, offset int) error {
	n, err := r.boundary(node, offset)
	if err != nil {
		return err
	}

	if treeRoot(n) != treeRoot(r.endNode) || comparePoints(n, offset, r.endNode, r.endOff) > 0 {
		r.endNode, r.endOff = n, offset
	}
	r.startNode, r.startOff = n, offset

	return nil
}

func (r *Range) SetEnd(node dom.Node, offset int) error {
	n, err := r.boundary(node, offset)
	if err != nil {
		return err
	}

	if treeRoot(n) != treeRoot(r.startNode) || comparePoints(n, offset, r.startNode, r.startOff) < 0 {
		r.startNode, r.startOff = n, offset
	}
	r.endNode, r.endOff = n, offset

	return nil
}

func (r *Range) SelectNodeContents(node dom.Node) error {
	n, err := r.boundary(node, 0)
	if err != nil {
		return err
	}

	r.startNode, r.startOff = n, 0
	r.endNode, r.endOff = n, nodeLength(n)

	return nil
}

func (r *Range) CloneRange() (dom.Range, error) {
	clone := *r
	return &clone, nil
}

func (r *Range) String() (string, error) {
	if r.startNode == r.endNode && r.startNode.Type == html.TextNode {
		return buffer.Slice(r.startNode.Data, r.startOff, r.endOff), nil
	}

	var sb strings.Builder

	if r.startNode.Type == html.TextNode {
		sb.WriteString(buffer.Slice(r.startNode.Data, r.startOff, nodeLength(r.startNode)))
	}

	iterNodes(treeRoot(r.startNode), func(n *html.Node) {
		if n.Type != html.TextNode {
			return
		}
		if comparePoints(n, 0, r.startNode, r.startOff) > 0 && comparePoints(n, nodeLength(n), r.endNode, r.endOff) < 0 {
			sb.WriteString(n.Data)
		}
	})

	if r.endNode.Type == html.TextNode {
		sb.WriteString(buffer.Slice(r.endNode.Data, 0, r.endOff))
	}

	return sb.String(), nil
}

func (r *Range) boundary(node dom.Node, offset int) (*html.Node, error) {
	n, ok := unwrap(node)
	if !ok {
		return nil, dom.Errorf(dom.ErrWrongDocument, "boundary node was not created by htmldom")
	}
	if n.Type == html.DoctypeNode {
		return nil, dom.Errorf(dom.ErrInvalidNodeType, "boundary node is a doctype")
	}
	if offset < 0 || offset > nodeLength(n) {
		return nil, dom.Errorf(dom.ErrIndexSize, "offset %d is larger than the node's length (%d)", offset, nodeLength(n))
	}
	return n, nil
}

// nodeLength is the DOM length of n: UTF-16 units for character data, children otherwise.
func nodeLength(n *html.Node) int {
	switch n.Type {
	case html.DoctypeNode:
		return 0
	case html.TextNode, html.CommentNode:
		return buffer.UTF16Len(n.Data)
	}

	count := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		count++
	}
	return count
}

func treeRoot(n *html.Node) *html.Node {
	for n.Parent != nil {
		n = n.Parent
	}
	return n
}

func index(n *html.Node) int {
	i := 0
	for s := n.PrevSibling; s != nil; s = s.PrevSibling {
		i++
	}
	return i
}

// path returns the child indexes leading from the tree root to n.
func path(n *html.Node) []int {
	var p []int
	for ; n.Parent != nil; n = n.Parent {
		p = append(p, index(n))
	}
	for i, j := 0, len(p)-1; i < j; i, j = i+1, j-1 {
		p[i], p[j] = p[j], p[i]
	}
	return p
}

// following reports whether a comes after b in tree order.
func following(a, b *html.Node) bool {
	pa, pb := path(a), path(b)
	for i := 0; i < len(pa) && i < len(pb); i++ {
		if pa[i] != pb[i] {
			return pa[i] > pb[i]
		}
	}
	// An ancestor precedes its descendants.
	return len(pa) > len(pb)
}

func isAncestor(a, b *html.Node) bool {
	for p := b.Parent; p != nil; p = p.Parent {
		if p == a {
			return true
		}
	}
	return false
}

// comparePoints returns -1, 0 or 1 when boundary point (a, ao) is before, equal to or
// after (b, bo). Both nodes must share a tree root.
func comparePoints(a *html.Node, ao int, b *html.Node, bo int) int {
	if a == b {
		switch {
		case ao < bo:
			return -1
		case ao > bo:
			return 1
		}
		return 0
	}

	if following(a, b) {
		return -comparePoints(b, bo, a, ao)
	}

	if isAncestor(a, b) {
		child := b
		for child.Parent != a {
			child = child.Parent
		}
		if index(child) < ao {
			return 1
		}
	}

	return -1
}
