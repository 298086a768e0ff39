package htmldom

import (
	"github.com/burntcarrot/duald/dom"
)

// Selection holds the document's selected ranges.
// Like Gecko it keeps every added range; most callers only look at the first.
type Selection struct {
	doc    *Document
	ranges []*Range
}

func (s *Selection) RangeCount() int {
	return len(s.ranges)
}

func (s *Selection) GetRangeAt(i int) (dom.Range, error) {
	if i < 0 || i >= len(s.ranges) {
		return nil, dom.Errorf(dom.ErrIndexSize, "%d is not a valid range index", i)
	}
	return s.ranges[i], nil
}

func (s *Selection) IsCollapsed() bool {
	if len(s.ranges) == 0 {
		return true
	}
	return s.ranges[0].Collapsed()
}

func (s *Selection) RemoveAllRanges() error {
	s.ranges = nil
	return nil
}

func (s *Selection) AddRange(r dom.Range) error {
	rr, ok := r.(*Range)
	if !ok || rr.doc != s.doc {
		return dom.Errorf(dom.ErrWrongDocument, "range belongs to another document")
	}
	s.ranges = append(s.ranges, rr)
	return nil
}

// Collapse replaces the selection with a caret at (node, offset).
func (s *Selection) Collapse(node dom.Node, offset int) error {
	return s.SetBaseAndExtent(node, offset, node, offset)
}

// SetBaseAndExtent replaces the selection with the range between the two boundary points.
// The range is ordered in tree order regardless of the argument order.
func (s *Selection) SetBaseAndExtent(anchor dom.Node, anchorOffset int, focus dom.Node, focusOffset int) error {
	r, err := s.doc.CreateRange()
	if err != nil {
		return err
	}
	if err := r.SetStart(anchor, anchorOffset); err != nil {
		return err
	}
	// Setting the end before the start collapses the range, so order the points first.
	a, _ := unwrap(anchor)
	f, ok := unwrap(focus)
	if !ok {
		return dom.Errorf(dom.ErrWrongDocument, "focus node was not created by htmldom")
	}
	if treeRoot(a) == treeRoot(f) && comparePoints(f, focusOffset, a, anchorOffset) < 0 {
		if err := r.SetStart(focus, focusOffset); err != nil {
			return err
		}
		if err := r.SetEnd(anchor, anchorOffset); err != nil {
			return err
		}
	} else if err := r.SetEnd(focus, focusOffset); err != nil {
		return err
	}

	s.ranges = []*Range{r.(*Range)}
	return nil
}
