//go:build js && wasm

// Package jsdom implements the dom interfaces over syscall/js for the browser.
//
// Importing the package registers the browser window as the global window. Every call
// that can throw is made through call, which turns the thrown exception into a
// *dom.Error carrying the exception's name.
package jsdom

import (
	"fmt"
	"syscall/js"

	"github.com/burntcarrot/duald/dom"
)

func init() {
	dom.RegisterGlobal(GlobalWindow)
}

// GlobalWindow returns the browser's window, if the host has one.
func GlobalWindow() (dom.Window, bool) {
	w := js.Global().Get("window")
	if !present(w) {
		return nil, false
	}
	return &Window{v: w}, true
}

func present(v js.Value) bool {
	return !v.IsNull() && !v.IsUndefined()
}

// call invokes v[method](args...) and recovers thrown exceptions.
func call(v js.Value, method string, args ...any) (res js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	return v.Call(method, args...), nil
}

// get reads v[prop] and recovers throwing getters.
func get(v js.Value, prop string) (res js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	return v.Get(prop), nil
}

func toError(r any) error {
	jerr, ok := r.(js.Error)
	if !ok {
		return fmt.Errorf("jsdom: %v", r)
	}

	e := &dom.Error{Name: "Error"}
	if name := jerr.Value.Get("name"); name.Type() == js.TypeString {
		e.Name = name.String()
	}
	if msg := jerr.Value.Get("message"); msg.Type() == js.TypeString {
		e.Message = msg.String()
	}
	return e
}

func wrap(v js.Value) dom.Node {
	if !present(v) {
		return nil
	}

	switch dom.NodeType(v.Get("nodeType").Int()) {
	case dom.ElementNode:
		if v.InstanceOf(js.Global().Get("HTMLElement")) {
			return &Element{Node{v: v}}
		}
	case dom.DocumentNode:
		return &Document{Node{v: v}}
	}
	return &Node{v: v}
}

func unwrap(n dom.Node) (js.Value, bool) {
	switch n := n.(type) {
	case *Node:
		return n.v, true
	case *Element:
		return n.v, true
	case *Document:
		return n.v, true
	}
	return js.Null(), false
}

func mustUnwrap(n dom.Node) (js.Value, error) {
	v, ok := unwrap(n)
	if !ok {
		return js.Null(), dom.Errorf(dom.ErrWrongDocument, "%T is not a browser node", n)
	}
	return v, nil
}

// Node is a browser node.
type Node struct {
	v js.Value
}

// Value returns the underlying JavaScript object.
func (n *Node) Value() js.Value {
	return n.v
}

func (n *Node) NodeType() dom.NodeType {
	return dom.NodeType(n.v.Get("nodeType").Int())
}

func (n *Node) NodeName() string {
	return n.v.Get("nodeName").String()
}

func (n *Node) ParentNode() dom.Node {
	return wrap(n.v.Get("parentNode"))
}

func (n *Node) ChildNodes() []dom.Node {
	list := n.v.Get("childNodes")
	kids := make([]dom.Node, 0, list.Length())
	for i := 0; i < list.Length(); i++ {
		kids = append(kids, wrap(list.Index(i)))
	}
	return kids
}

func (n *Node) TextContent() string {
	t := n.v.Get("textContent")
	if !present(t) {
		return ""
	}
	return t.String()
}

func (n *Node) OwnerDocument() (dom.Document, bool) {
	d := n.v.Get("ownerDocument")
	if !present(d) {
		return nil, false
	}
	return &Document{Node{v: d}}, true
}

func (n *Node) Contains(other dom.Node) bool {
	o, ok := unwrap(other)
	if !ok {
		return false
	}
	res, err := call(n.v, "contains", o)
	return err == nil && res.Truthy()
}

func (n *Node) IsSameNode(other dom.Node) bool {
	o, ok := unwrap(other)
	return ok && n.v.Equal(o)
}

// Element is a browser HTMLElement.
type Element struct {
	Node
}

func (e *Element) ID() string {
	return e.v.Get("id").String()
}

func (e *Element) HasClass(name string) bool {
	res, err := call(e.v.Get("classList"), "contains", name)
	return err == nil && res.Truthy()
}

func (e *Element) AddClass(name string) error {
	_, err := call(e.v.Get("classList"), "add", name)
	return err
}

func (e *Element) GetAttribute(name string) (string, bool) {
	res, err := call(e.v, "getAttribute", name)
	if err != nil || !present(res) {
		return "", false
	}
	return res.String(), true
}

func (e *Element) SetAttribute(name, value string) error {
	_, err := call(e.v, "setAttribute", name, value)
	return err
}

func (e *Element) RemoveAttribute(name string) error {
	_, err := call(e.v, "removeAttribute", name)
	return err
}

func (e *Element) InnerHTML() (string, error) {
	res, err := get(e.v, "innerHTML")
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (e *Element) SetInnerHTML(markup string) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = toError(r)
		}
	}()
	e.v.Set("innerHTML", markup)
	return nil
}

func (e *Element) OuterHTML() (string, error) {
	res, err := get(e.v, "outerHTML")
	if err != nil {
		return "", err
	}
	return res.String(), nil
}

func (e *Element) AppendChild(child dom.Node) error {
	c, err := mustUnwrap(child)
	if err != nil {
		return err
	}
	_, err = call(e.v, "appendChild", c)
	return err
}

func (e *Element) RemoveChild(child dom.Node) error {
	c, err := mustUnwrap(child)
	if err != nil {
		return err
	}
	_, err = call(e.v, "removeChild", c)
	return err
}

func (e *Element) QuerySelector(selector string) (dom.Node, error) {
	res, err := call(e.v, "querySelector", selector)
	if err != nil {
		return nil, err
	}
	return wrap(res), nil
}

// Document is a browser document.
type Document struct {
	Node
}

// OwnerDocument reports false: documents have no owner.
func (d *Document) OwnerDocument() (dom.Document, bool) {
	return nil, false
}

func (d *Document) DefaultView() (dom.Window, bool) {
	w := d.v.Get("defaultView")
	if !present(w) {
		return nil, false
	}
	return &Window{v: w}, true
}

func (d *Document) GetSelection() (dom.Selection, error) {
	return selection(d.v)
}

func (d *Document) QuerySelector(selector string) (dom.Node, error) {
	res, err := call(d.v, "querySelector", selector)
	if err != nil {
		return nil, err
	}
	return wrap(res), nil
}

func (d *Document) CreateElement(tag string) (dom.Element, error) {
	res, err := call(d.v, "createElement", tag)
	if err != nil {
		return nil, err
	}
	el, ok := dom.AsElement(wrap(res))
	if !ok {
		return nil, dom.Errorf(dom.ErrInvalidState, "<%s> is not an HTML element", tag)
	}
	return el, nil
}

func (d *Document) CreateRange() (dom.Range, error) {
	res, err := call(d.v, "createRange")
	if err != nil {
		return nil, err
	}
	return &Range{v: res}, nil
}

func (d *Document) AddEventListener(eventType string, fn func(dom.Event)) (func(), error) {
	cb := js.FuncOf(func(this js.Value, args []js.Value) any {
		ev := Event{v: js.Undefined()}
		if len(args) > 0 {
			ev.v = args[0]
		}
		fn(ev)
		return nil
	})

	if _, err := call(d.v, "addEventListener", eventType, cb); err != nil {
		cb.Release()
		return nil, err
	}

	remove := func() {
		_, _ = call(d.v, "removeEventListener", eventType, cb)
		cb.Release()
	}
	return remove, nil
}

// Event is a browser event.
type Event struct {
	v js.Value
}

func (e Event) Type() string {
	if !present(e.v) {
		return ""
	}
	return e.v.Get("type").String()
}

// Window is a browser window.
type Window struct {
	v js.Value
}

func (w *Window) GetSelection() (dom.Selection, error) {
	return selection(w.v)
}

func (w *Window) Document() (dom.Document, bool) {
	d := w.v.Get("document")
	if !present(d) {
		return nil, false
	}
	return &Document{Node{v: d}}, true
}

func selection(owner js.Value) (dom.Selection, error) {
	if owner.Get("getSelection").Type() != js.TypeFunction {
		return nil, dom.Errorf(dom.ErrInvalidState, "getSelection is not supported")
	}

	res, err := call(owner, "getSelection")
	if err != nil {
		return nil, err
	}
	if !present(res) {
		return nil, nil
	}
	return &Selection{v: res}, nil
}

// Selection is a browser Selection.
type Selection struct {
	v js.Value
}

func (s *Selection) RangeCount() int {
	return s.v.Get("rangeCount").Int()
}

func (s *Selection) GetRangeAt(index int) (dom.Range, error) {
	res, err := call(s.v, "getRangeAt", index)
	if err != nil {
		return nil, err
	}
	return &Range{v: res}, nil
}

func (s *Selection) IsCollapsed() bool {
	return s.v.Get("isCollapsed").Truthy()
}

func (s *Selection) RemoveAllRanges() error {
	_, err := call(s.v, "removeAllRanges")
	return err
}

func (s *Selection) AddRange(r dom.Range) error {
	jr, ok := r.(*Range)
	if !ok {
		return dom.Errorf(dom.ErrWrongDocument, "%T is not a browser range", r)
	}
	_, err := call(s.v, "addRange", jr.v)
	return err
}

// Range is a browser Range.
type Range struct {
	v js.Value
}

func (r *Range) StartContainer() (dom.Node, error) {
	res, err := get(r.v, "startContainer")
	if err != nil {
		return nil, err
	}
	return wrap(res), nil
}

func (r *Range) StartOffset() (int, error) {
	res, err := get(r.v, "startOffset")
	if err != nil {
		return 0, err
	}
	return res.Int(), nil
}

func (r *Range) EndContainer() (dom.Node, error) {
	res, err := get(r.v, "endContainer")
	if err != nil {
		return nil, err
	}
	return wrap(res), nil
}

func (r *Range) EndOffset() (int, error) {
	res, err := get(r.v, "endOffset")
	if err != nil {
		return 0, err
	}
	return res.Int(), nil
}

func (r *Range) Collapsed() bool {
	return r.v.Get("collapsed").Truthy()
}

func (r *Range) SetStart(node dom.Node, offset int) error {
	n, err := mustUnwrap(node)
	if err != nil {
		return err
	}
	_, err = call(r.v, "setStart", n, offset)
	return err
}

func (r *Range) SetEnd(node dom.Node, offset int) error {
	n, err := mustUnwrap(node)
	if err != nil {
		return err
	}
	_, err = call(r.v, "setEnd", n, offset)
	return err
}

func (r *Range) SelectNodeContents(node dom.Node) error {
	n, err := mustUnwrap(node)
	if err != nil {
		return err
	}
	_, err = call(r.v, "selectNodeContents", n)
	return err
}

func (r *Range) CloneRange() (dom.Range, error) {
	res, err := call(r.v, "cloneRange")
	if err != nil {
		return nil, err
	}
	return &Range{v: res}, nil
}

func (r *Range) String() (string, error) {
	res, err := call(r.v, "toString")
	if err != nil {
		return "", err
	}
	return res.String(), nil
}
