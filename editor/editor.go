// Package editor composes the content host, the span map and the cursor resolver into
// an editor attached to one DOM element.
package editor

import (
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/cursor"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/host"
	"github.com/burntcarrot/duald/spanmap"
)

var (
	ErrAlreadyAttached = errors.New("editor is already attached")
	ErrNotAttached     = errors.New("editor is not attached")
	ErrNoSelection     = errors.New("document exposes no selection")
)

// UI renders the editor surface inside the root element.
type UI interface {
	Init(root dom.Element) error

	// Host returns the content host, or nil before Init and after Detach.
	Host() *host.Host
	Detach() error
}

// Processor turns host events into cursor updates.
type Processor interface {
	Attach(root dom.Element, sink Sink) error
	Detach() error
}

// Sink receives the cursors a Processor resolves.
type Sink interface {
	// Target is the node cursors are measured against.
	Target() dom.Node
	Update(c cursor.Cursor)
}

// State is the lifecycle state of an Editor.
type State int

const (
	Uninitialized State = iota
	Attached
	Detached
)

func (s State) String() string {
	switch s {
	case Uninitialized:
		return "uninitialized"
	case Attached:
		return "attached"
	case Detached:
		return "detached"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Editor is the composition root of one editor instance.
type Editor[U UI, P Processor] struct {
	id       uuid.UUID
	ui       U
	proc     P
	resolver *cursor.Resolver
	log      logrus.FieldLogger

	mu     sync.RWMutex
	state  State
	root   dom.Element
	buf    buffer.Buffer
	spans  *spanmap.Map
	cursor cursor.Cursor
}

// New returns an uninitialized editor.
func New[U UI, P Processor](ui U, proc P, logger logrus.FieldLogger) *Editor[U, P] {
	if logger == nil {
		logger = logrus.StandardLogger()
	}

	id := uuid.New()
	log := logger.WithField("editor", id.String())

	return &Editor[U, P]{
		id:       id,
		ui:       ui,
		proc:     proc,
		resolver: cursor.NewResolver(log),
		log:      log,
	}
}

// Init attaches the editor to root: the processor is attached, the UI is initialized and
// the content is extracted into the buffer. On failure everything attached so far is
// detached again and the editor keeps its previous state.
func (e *Editor[U, P]) Init(root dom.Element) error {
	if root == nil {
		return &ConfigError{Msg: "editor root is nil", Err: ErrElementNotFound}
	}

	e.mu.Lock()
	if e.state == Attached {
		e.mu.Unlock()
		return ErrAlreadyAttached
	}
	e.root = root
	e.mu.Unlock()

	if _, ok := root.OwnerDocument(); !ok {
		return &ConfigError{
			Msg: fmt.Sprintf("editor root #%s is not part of a document", root.ID()),
			Err: ErrNoOwnerDocument,
		}
	}

	if err := e.proc.Attach(root, e); err != nil {
		return fmt.Errorf("attaching processor: %w", err)
	}

	if err := e.ui.Init(root); err != nil {
		e.rollback()
		return fmt.Errorf("initializing UI: %w", err)
	}

	h := e.ui.Host()
	if h == nil {
		e.rollback()
		return fmt.Errorf("initializing UI: %w", host.ErrNoDocument)
	}

	buf, m, err := spanmap.Extract(h)
	if err != nil {
		e.rollback()
		return fmt.Errorf("extracting content: %w", err)
	}

	e.mu.Lock()
	e.state = Attached
	e.buf = buf
	e.spans = m
	e.cursor = nil
	e.mu.Unlock()

	e.log.Infof("attached to #%s (%d code units, %d spans)", root.ID(), buf.Len(), len(buf.Spans))
	return nil
}

func (e *Editor[U, P]) rollback() {
	if err := e.ui.Detach(); err != nil {
		e.log.Warnf("failed to detach UI: %v", err)
	}
	if err := e.proc.Detach(); err != nil {
		e.log.Warnf("failed to detach processor: %v", err)
	}
}

// Detach stops event processing and releases the content host. The DOM is left as it is;
// a later Init reuses the content element.
func (e *Editor[U, P]) Detach() error {
	e.mu.Lock()
	if e.state != Attached {
		e.mu.Unlock()
		return ErrNotAttached
	}
	e.state = Detached
	e.spans = nil
	e.cursor = nil
	e.mu.Unlock()

	err := errors.Join(e.proc.Detach(), e.ui.Detach())
	if err != nil {
		e.log.Errorf("detached with errors: %v", err)
		return err
	}

	e.log.Info("detached")
	return nil
}

// Refresh re-extracts the buffer after the content was mutated and re-resolves the cursor.
func (e *Editor[U, P]) Refresh() error {
	if e.State() != Attached {
		return ErrNotAttached
	}

	h := e.ui.Host()
	if h == nil {
		return ErrNotAttached
	}

	buf, m, err := spanmap.Extract(h)
	if err != nil {
		return fmt.Errorf("extracting content: %w", err)
	}
	c := e.resolver.Resolve(h.Content())

	e.mu.Lock()
	e.buf = buf
	e.spans = m
	e.cursor = c
	e.mu.Unlock()

	e.log.Debugf("refreshed (%d code units)", buf.Len())
	return nil
}

// Select places the document selection over the logical range [start, end]. Equal
// offsets place a caret. Offsets refer to the current Buffer; when the content was
// edited since, Select fails with spanmap.ErrStale until the next event or Refresh.
func (e *Editor[U, P]) Select(start, end int) error {
	e.mu.RLock()
	state, m := e.state, e.spans
	e.mu.RUnlock()

	if state != Attached {
		return ErrNotAttached
	}
	if start > end {
		return fmt.Errorf("%w: start %d is after end %d", buffer.ErrInvalidRange, start, end)
	}

	h := e.ui.Host()
	startNode, startOffset, err := m.Locate(h, start)
	if err != nil {
		return err
	}
	endNode, endOffset, err := m.Locate(h, end)
	if err != nil {
		return err
	}

	doc := h.Document()
	r, err := doc.CreateRange()
	if err != nil {
		return err
	}
	if err := r.SetStart(startNode, startOffset); err != nil {
		return err
	}
	if err := r.SetEnd(endNode, endOffset); err != nil {
		return err
	}

	sel, err := selectionOf(doc)
	if err != nil {
		return err
	}
	if err := sel.RemoveAllRanges(); err != nil {
		return err
	}
	if err := sel.AddRange(r); err != nil {
		return err
	}

	e.Update(e.resolver.Resolve(h.Content()))
	return nil
}

func selectionOf(doc dom.Document) (dom.Selection, error) {
	if win, ok := doc.DefaultView(); ok {
		if sel, err := win.GetSelection(); err == nil && sel != nil {
			return sel, nil
		}
	}

	sel, err := doc.GetSelection()
	if err != nil {
		return nil, err
	}
	if sel == nil {
		return nil, ErrNoSelection
	}
	return sel, nil
}

// Target returns the content element once the UI realized it, else the root.
func (e *Editor[U, P]) Target() dom.Node {
	if h := e.ui.Host(); h != nil {
		return h.Content()
	}

	e.mu.RLock()
	defer e.mu.RUnlock()
	if e.root == nil {
		return nil
	}
	return e.root
}

// Update stores the latest cursor. When the content was edited since the last
// extraction, the buffer and span map are extracted again first. Updates arriving while
// the editor is not attached are dropped.
func (e *Editor[U, P]) Update(c cursor.Cursor) {
	e.mu.RLock()
	state, m := e.state, e.spans
	e.mu.RUnlock()

	if state != Attached {
		return
	}

	var (
		buf   buffer.Buffer
		fresh *spanmap.Map
	)
	if h := e.ui.Host(); h != nil && m != nil {
		if err := m.Current(h); err != nil {
			e.log.Debugf("re-extracting: %v", err)
			var xerr error
			buf, fresh, xerr = spanmap.Extract(h)
			if xerr != nil {
				e.log.Errorf("Failed to re-extract content due to %v.", xerr)
				fresh = nil
			}
		}
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.state != Attached {
		return
	}
	if fresh != nil {
		e.buf = buf
		e.spans = fresh
	}
	e.cursor = c
}

// Cursor returns the latest cursor, or nil.
func (e *Editor[U, P]) Cursor() cursor.Cursor {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.cursor
}

// Buffer returns the buffer of the last extraction.
func (e *Editor[U, P]) Buffer() buffer.Buffer {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return buffer.New(e.buf.Content, append([]buffer.Span(nil), e.buf.Spans...)...)
}

// SpanMap returns the span map of the last extraction, or nil when not attached.
func (e *Editor[U, P]) SpanMap() *spanmap.Map {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.spans
}

func (e *Editor[U, P]) Host() *host.Host {
	return e.ui.Host()
}

func (e *Editor[U, P]) UI() U {
	return e.ui
}

func (e *Editor[U, P]) Processor() P {
	return e.proc
}

func (e *Editor[U, P]) State() State {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return e.state
}

func (e *Editor[U, P]) ID() uuid.UUID {
	return e.id
}
