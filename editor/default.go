package editor

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/burntcarrot/duald/commons"
	"github.com/burntcarrot/duald/cursor"
	"github.com/burntcarrot/duald/dom"
	"github.com/burntcarrot/duald/host"
)

// DefaultUI realizes the content host inside the root.
type DefaultUI struct {
	cfg host.Config

	mu   sync.RWMutex
	host *host.Host
}

func NewDefaultUI(cfg Config) *DefaultUI {
	return &DefaultUI{cfg: cfg.withDefaults().hostConfig()}
}

func (u *DefaultUI) Init(root dom.Element) error {
	h, err := host.New(root, u.cfg)
	if err != nil {
		return err
	}

	u.mu.Lock()
	u.host = h
	u.mu.Unlock()
	return nil
}

func (u *DefaultUI) Host() *host.Host {
	u.mu.RLock()
	defer u.mu.RUnlock()
	return u.host
}

// Detach releases every handle of the host. The content element stays in the DOM.
func (u *DefaultUI) Detach() error {
	u.mu.Lock()
	h := u.host
	u.host = nil
	u.mu.Unlock()

	if h != nil {
		h.Invalidate()
	}
	return nil
}

// DefaultProcessor recomputes the cursor whenever one of commons.Events fires on the
// owner document of the root.
type DefaultProcessor struct {
	log      logrus.FieldLogger
	resolver *cursor.Resolver

	mu      sync.Mutex
	removes []func()
}

func NewDefaultProcessor(logger logrus.FieldLogger) *DefaultProcessor {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &DefaultProcessor{
		log:      logger.WithField("component", "processor"),
		resolver: cursor.NewResolver(logger),
	}
}

func (p *DefaultProcessor) Attach(root dom.Element, sink Sink) error {
	doc, ok := root.OwnerDocument()
	if !ok {
		return &ConfigError{Msg: "cannot listen for events without an owner document", Err: ErrNoOwnerDocument}
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if len(p.removes) > 0 {
		return ErrAlreadyAttached
	}

	for _, ev := range commons.Events {
		remove, err := doc.AddEventListener(string(ev), func(event dom.Event) {
			p.handle(sink, event)
		})
		if err != nil {
			p.removeAll()
			return err
		}
		p.removes = append(p.removes, remove)
	}

	p.log.Debugf("listening for %v", commons.Events)
	return nil
}

func (p *DefaultProcessor) handle(sink Sink, event dom.Event) {
	if !commons.IsEvent(event.Type()) {
		return
	}

	c := p.resolver.Resolve(sink.Target())
	p.log.WithField("event", event.Type()).Infof("cursor: %v", c)
	sink.Update(c)
}

// Detach removes the event listeners. Detaching twice is a no-op.
func (p *DefaultProcessor) Detach() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.removeAll()
	return nil
}

func (p *DefaultProcessor) removeAll() {
	for _, remove := range p.removes {
		remove()
	}
	p.removes = nil
}

// Attached reports whether the processor is listening.
func (p *DefaultProcessor) Attached() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.removes) > 0
}
