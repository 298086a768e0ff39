package duald

import (
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/buffer"
	"github.com/burntcarrot/duald/cursor"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/dom/htmldom"
	"github.com/burntcarrot/duald/editor"
)

func init() {
	logrus.SetOutput(io.Discard)
}

func TestAttachEditorTo(t *testing.T) {
	doc, err := htmldom.ParseString(`<div id="notes" class="duald_editor">abcdef</div>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	e, err := AttachEditorTo("notes", doc)
	if err != nil {
		t.Fatalf("attach: %v", err)
	}

	text := e.Host().Content().ChildNodes()[0]

	tests := []struct {
		description string
		anchor      int
		focus       int
		expected    cursor.Cursor
	}{
		{description: "caret at start", anchor: 0, focus: 0, expected: cursor.Insert{Offset: 0}},
		{description: "caret at end", anchor: 6, focus: 6, expected: cursor.Insert{Offset: 6}},
		{description: "select cd", anchor: 2, focus: 4, expected: cursor.Select{Range: buffer.Closed(2, 4)}},
	}

	for _, tc := range tests {
		if err := doc.Selection().SetBaseAndExtent(text, tc.anchor, text, tc.focus); err != nil {
			t.Fatalf("(%s) select: %v", tc.description, err)
		}
		doc.Dispatch("mouseup")

		if got := e.Cursor(); !cmp.Equal(got, tc.expected) {
			t.Errorf("(%s) got != expected, diff: %v\n", tc.description, cmp.Diff(got, tc.expected))
		}
	}
}

func TestAttachEditorToMissingClass(t *testing.T) {
	doc, err := htmldom.ParseString(`<div id="notes">abcdef</div>`)
	if err != nil {
		t.Fatalf("parse: %v", err)
	}

	_, err = AttachEditorTo("notes", doc)

	var cerr *editor.ConfigError
	if !errors.As(err, &cerr) {
		t.Fatalf("expected a ConfigError, got %v", err)
	}
	if !errors.Is(err, editor.ErrElementNotFound) {
		t.Errorf("got %v, expected ErrElementNotFound", err)
	}
	if !strings.Contains(cerr.Error(), editor.DefaultPrimaryClass) {
		t.Errorf("message %q does not name the required class", cerr.Error())
	}
}

func TestAttachEditorToNoRenderingContext(t *testing.T) {
	dom.RegisterGlobal(nil)

	_, err := AttachEditorTo("notes", nil)
	if !errors.Is(err, editor.ErrNoRenderingContext) {
		t.Errorf("got %v, expected ErrNoRenderingContext", err)
	}
}
