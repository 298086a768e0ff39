//go:build js && wasm

// Command wasm exposes the editor to JavaScript.
//
// It defines two globals:
//
//	attachEditorTo(id)  attaches an editor to #id.duald_editor and returns a handle object
//	                    with cursor(), buffer(), select(start, end), refresh() and detach(),
//	                    or an Error on failure
//	setLogLevel(level)  sets the log level from 0 (errors) to 4 (trace); debug builds only
//
// Build a debug binary with -ldflags "-X main.debug=true".
package main

import (
	"encoding/json"
	"errors"
	"syscall/js"

	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald"
	"github.com/burntcarrot/duald/commons"
	"github.com/burntcarrot/duald/dom/jsdom"
	"github.com/burntcarrot/duald/editor"
	"github.com/burntcarrot/duald/logging"
)

var debug = "false"

var logger *logging.Logger

func main() {
	var err error
	logger, err = logging.New(logging.Config{Debug: debug == "true", Verbosity: 2})
	if err != nil {
		panic(err)
	}

	if _, ok := jsdom.GlobalWindow(); !ok {
		logger.Error("no window, the editor cannot attach")
	}

	js.Global().Set("attachEditorTo", js.FuncOf(attachEditorTo))
	js.Global().Set("setLogLevel", js.FuncOf(setLogLevel))

	// Keep the exported functions alive.
	select {}
}

func jsError(name string, err error) js.Value {
	e := js.Global().Get("Error").New(err.Error())
	e.Set("name", name)
	return e
}

func attachEditorTo(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeString {
		return jsError("TypeError", errors.New("attachEditorTo expects the id of the editor element"))
	}

	cfg := editor.DefaultConfig()
	cfg.Logger = logger

	e, err := duald.AttachEditorWith(args[0].String(), nil, cfg)
	if err != nil {
		var cerr *editor.ConfigError
		if errors.As(err, &cerr) {
			return jsError("ConfigError", err)
		}
		return jsError("Error", err)
	}

	return handle(e)
}

func handle(e *duald.Editor) js.Value {
	obj := js.Global().Get("Object").New()
	obj.Set("id", e.ID().String())

	obj.Set("cursor", js.FuncOf(func(this js.Value, args []js.Value) any {
		return toJS(commons.NewReport(e.ID(), e.Cursor(), e.Buffer()))
	}))
	obj.Set("buffer", js.FuncOf(func(this js.Value, args []js.Value) any {
		return toJS(e.Buffer())
	}))
	obj.Set("select", js.FuncOf(func(this js.Value, args []js.Value) any {
		if len(args) < 2 {
			return jsError("TypeError", errors.New("select expects start and end offsets"))
		}
		if err := e.Select(args[0].Int(), args[1].Int()); err != nil {
			return jsError("RangeError", err)
		}
		return toJS(commons.NewReport(e.ID(), e.Cursor(), e.Buffer()))
	}))
	obj.Set("refresh", js.FuncOf(func(this js.Value, args []js.Value) any {
		if err := e.Refresh(); err != nil {
			return jsError("Error", err)
		}
		return js.Undefined()
	}))
	obj.Set("detach", js.FuncOf(func(this js.Value, args []js.Value) any {
		if err := e.Detach(); err != nil {
			return jsError("Error", err)
		}
		return js.Undefined()
	}))

	return obj
}

func toJS(v any) any {
	data, err := json.Marshal(v)
	if err != nil {
		return jsError("Error", err)
	}
	return js.Global().Get("JSON").Call("parse", string(data))
}

func setLogLevel(this js.Value, args []js.Value) any {
	if len(args) < 1 || args[0].Type() != js.TypeNumber {
		return jsError("TypeError", errors.New("setLogLevel expects a level from 0 to 4"))
	}

	if err := logger.SetVerbosity(args[0].Int()); err != nil {
		return jsError("Error", err)
	}

	logger.WithField("level", logger.GetLevel()).Log(logrus.InfoLevel, "log level changed")
	return js.Undefined()
}
