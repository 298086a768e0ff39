// Package duald attaches a rich-text editor core to a DOM element.
//
// The editor keeps a logical text buffer annotated with formatting spans in sync with
// the element's content and derives a logical cursor from the host's native selection:
//
//	e, err := duald.AttachEditorTo("notes", nil)
//	if err != nil {
//		return err
//	}
//	fmt.Println(e.Cursor())
//
// The target element must carry the duald_editor class. Pass a nil document to use the
// document of the registered global window (see dom.RegisterGlobal).
package duald

import (
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/editor"
)

// Editor is the editor AttachEditorTo returns.
type Editor = editor.DefaultEditor

// AttachEditorTo attaches an editor with the default configuration, UI and processor to
// the element with the given id. Configuration problems are reported as
// *editor.ConfigError.
func AttachEditorTo(id string, doc dom.Document) (*Editor, error) {
	return AttachEditorWith(id, doc, editor.DefaultConfig())
}

// AttachEditorWith is AttachEditorTo with an explicit configuration.
func AttachEditorWith(id string, doc dom.Document, cfg editor.Config) (*Editor, error) {
	return editor.AttachTo(id, doc, editor.NewDefaultUI(cfg), editor.NewDefaultProcessor(cfg.Logger), cfg)
}
