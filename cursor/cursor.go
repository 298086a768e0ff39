// Package cursor derives the logical cursor from the host's native selection.
package cursor

import (
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/dom"
)

// Cursor is either an Insert or a Select. A nil Cursor means there is no selection.
type Cursor interface {
	fmt.Stringer
	isCursor()
}

// Insert is a collapsed caret at a logical offset.
type Insert struct {
	Offset int
}

// Select is a non-collapsed selection; both bounds are Included.
type Select struct {
	Range buffer.BufferRange
}

func (Insert) isCursor() {}
func (Select) isCursor() {}

func (c Insert) String() string {
	return fmt.Sprintf("Insert(%d)", c.Offset)
}

func (c Select) String() string {
	return fmt.Sprintf("Select%s", c.Range)
}

// Resolver computes cursors from DOM selections.
//
// Offsets are the length of Range.toString() from the start of the root to each
// selection boundary. They are only as accurate as the engine's toString(): engines
// differ in how they count newlines for block boundaries and <br>, and the resolver
// does not try to reconcile them.
//
// A boundary outside the root yields no cursor. This includes a selection that starts
// before the root and ends inside it; it is not clamped to offset 0.
type Resolver struct {
	log logrus.FieldLogger
}

// NewResolver returns a Resolver logging to log.
func NewResolver(log logrus.FieldLogger) *Resolver {
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Resolver{log: log.WithField("component", "cursor")}
}

// Resolve returns the cursor of the current selection relative to root, or nil.
// It never fails: any DOM accessor failure is logged and yields nil. The live
// selection range is never modified; measurements run on a clone.
func (r *Resolver) Resolve(root dom.Node) Cursor {
	if root == nil {
		return nil
	}

	doc, ok := root.OwnerDocument()
	if !ok {
		return nil
	}
	win, ok := doc.DefaultView()
	if !ok {
		return nil
	}

	sel := r.selection(win, doc)
	if sel == nil || sel.RangeCount() == 0 {
		return nil
	}

	// Only the first range counts, even on engines supporting several.
	selRange, err := sel.GetRangeAt(0)
	if err != nil {
		r.log.Errorf("Failed to get the selection range due to %v.", err)
		return nil
	}

	probe, err := selRange.CloneRange()
	if err != nil {
		r.log.Errorf("Failed to clone the selection range due to %v.", err)
		return nil
	}
	if err := probe.SelectNodeContents(root); err != nil {
		r.log.Errorf("Failed to select the editor contents due to %v.", err)
		return nil
	}

	endContainer, err := selRange.EndContainer()
	if err != nil {
		r.log.Errorf("Failed to get end container due to %v.", err)
		return nil
	}
	endOffset, err := selRange.EndOffset()
	if err != nil {
		r.log.Errorf("Failed to get end offset due to %v.", err)
		return nil
	}
	end, ok := r.measure(root, probe, endContainer, endOffset, "end")
	if !ok {
		return nil
	}

	if sel.IsCollapsed() {
		return Insert{Offset: end}
	}

	startContainer, err := selRange.StartContainer()
	if err != nil {
		r.log.Errorf("Failed to get start container due to %v.", err)
		return nil
	}
	startOffset, err := selRange.StartOffset()
	if err != nil {
		r.log.Errorf("Failed to get start offset due to %v.", err)
		return nil
	}
	start, ok := r.measure(root, probe, startContainer, startOffset, "start")
	if !ok {
		return nil
	}

	return Select{Range: buffer.Closed(start, end)}
}

// selection asks the window first and falls back to the document; some engines only
// expose the selection on one of them.
func (r *Resolver) selection(win dom.Window, doc dom.Document) dom.Selection {
	sel, err := win.GetSelection()
	if err == nil && sel != nil {
		return sel
	}

	r.log.Warn("Failed to get selection from window. Retrying with document.")

	sel, err = doc.GetSelection()
	if err != nil {
		r.log.Errorf("The selection could not be detected on document either due to %v.", err)
		return nil
	}
	return sel
}

// measure moves the probe's end to the boundary and returns the length of the text
// between the start of root and the boundary.
func (r *Resolver) measure(root dom.Node, probe dom.Range, container dom.Node, offset int, which string) (int, bool) {
	if container == nil || !root.Contains(container) {
		r.log.Debugf("Selection %s lies outside of the editor.", which)
		return 0, false
	}

	if err := probe.SetEnd(container, offset); err != nil {
		r.log.Errorf("Failed to set range end to selection %s due to %v.", which, err)
		return 0, false
	}

	text, err := probe.String()
	if err != nil {
		r.log.Errorf("Failed to serialize range up to selection %s due to %v.", which, err)
		return 0, false
	}

	return buffer.UTF16Len(text), true
}
