package editor

import (
	"errors"
	"fmt"

	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/host"
)

// DefaultPrimaryClass marks elements an editor may attach to.
const DefaultPrimaryClass = "duald_editor"

var (
	ErrNoRenderingContext = errors.New("no rendering context")
	ErrElementNotFound    = errors.New("editor element not found")
	ErrNotHTMLElement     = errors.New("editor element is not an HTML element")
	ErrNoOwnerDocument    = errors.New("editor element has no owner document")
)

// ConfigError reports a configuration problem: a missing document or element, or an
// element that cannot host an editor. Err is one of the Err* sentinels above.
type ConfigError struct {
	Msg string
	Err error
}

func (e *ConfigError) Error() string {
	return e.Msg
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Config represents the editor's configuration.
type Config struct {
	// PrimaryClass is the class the root element must carry.
	PrimaryClass string

	// ContentClass marks the inner editable element.
	ContentClass string

	// Sanitize runs adopted markup through bluemonday's UGC policy.
	Sanitize bool

	Logger logrus.FieldLogger
}

// DefaultConfig returns the configuration AttachEditorTo uses.
func DefaultConfig() Config {
	return Config{
		PrimaryClass: DefaultPrimaryClass,
		ContentClass: host.DefaultContentClass,
		Logger:       logrus.StandardLogger(),
	}
}

func (c Config) withDefaults() Config {
	d := DefaultConfig()
	if c.PrimaryClass == "" {
		c.PrimaryClass = d.PrimaryClass
	}
	if c.ContentClass == "" {
		c.ContentClass = d.ContentClass
	}
	if c.Logger == nil {
		c.Logger = d.Logger
	}
	return c
}

func (c Config) hostConfig() host.Config {
	return host.Config{
		ContentClass: c.ContentClass,
		Sanitize:     c.Sanitize,
		Logger:       c.Logger,
	}
}

// DefaultEditor is the editor built from DefaultUI and DefaultProcessor.
type DefaultEditor = Editor[*DefaultUI, *DefaultProcessor]

// NewDefault returns an uninitialized DefaultEditor.
func NewDefault(cfg Config) *DefaultEditor {
	cfg = cfg.withDefaults()
	return New(NewDefaultUI(cfg), NewDefaultProcessor(cfg.Logger), cfg.Logger)
}

// AttachTo finds the element with the given id and the primary class and initializes an
// editor on it. With a nil doc the document of the global window is used.
func AttachTo[U UI, P Processor](id string, doc dom.Document, ui U, proc P, cfg Config) (*Editor[U, P], error) {
	cfg = cfg.withDefaults()

	if doc == nil {
		win, ok := dom.GlobalWindow()
		if ok {
			doc, ok = win.Document()
		}
		if !ok || doc == nil {
			return nil, &ConfigError{
				Msg: "no document was given and there is no global window to take one from",
				Err: ErrNoRenderingContext,
			}
		}
	}

	root, err := findRoot(doc, id, cfg.PrimaryClass)
	if err != nil {
		return nil, err
	}

	e := New(ui, proc, cfg.Logger)
	if err := e.Init(root); err != nil {
		return nil, err
	}
	return e, nil
}

func findRoot(doc dom.Document, id, class string) (dom.Element, error) {
	notFound := &ConfigError{
		Msg: fmt.Sprintf("could not find an element with id %q and class %q; the editor root must carry the %q class", id, class, class),
		Err: ErrElementNotFound,
	}
	if id == "" {
		return nil, notFound
	}

	n, err := doc.QuerySelector(fmt.Sprintf("#%s.%s", id, class))
	if err != nil {
		notFound.Msg = fmt.Sprintf("invalid editor id %q: %v", id, err)
		return nil, notFound
	}
	if n == nil {
		return nil, notFound
	}

	root, ok := dom.AsElement(n)
	if !ok {
		return nil, &ConfigError{
			Msg: fmt.Sprintf("element #%s is a %s, not an HTML element", id, n.NodeName()),
			Err: ErrNotHTMLElement,
		}
	}
	return root, nil
}
