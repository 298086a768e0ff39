package commons

// EventType names a DOM event the editor listens to.
type EventType string

// Currently, duald recomputes the cursor on 4 event types:
// - mousedown and mouseup (caret placement and drag selections)
// - keydown and keyup (caret movement and shift selections)

const (
	MouseDownEvent EventType = "mousedown"
	MouseUpEvent   EventType = "mouseup"
	KeyDownEvent   EventType = "keydown"
	KeyUpEvent     EventType = "keyup"
)

// Events lists every event type the default processor registers for.
var Events = []EventType{MouseDownEvent, MouseUpEvent, KeyDownEvent, KeyUpEvent}

// IsEvent reports whether name is one of Events.
func IsEvent(name string) bool {
	for _, ev := range Events {
		if string(ev) == name {
			return true
		}
	}
	return false
}
