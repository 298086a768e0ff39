package dom

import "fmt"

// Error mirrors a DOMException.
type Error struct {
	Name    string
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Name
	}
	return fmt.Sprintf("%s: %s", e.Name, e.Message)
}

// Is matches errors with the same Name so callers can test against the values below.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Name == e.Name
}

var (
	ErrIndexSize       = &Error{Name: "IndexSizeError"}
	ErrInvalidNodeType = &Error{Name: "InvalidNodeTypeError"}
	ErrHierarchy       = &Error{Name: "HierarchyRequestError"}
	ErrNotFound        = &Error{Name: "NotFoundError"}
	ErrSyntax          = &Error{Name: "SyntaxError"}
	ErrWrongDocument   = &Error{Name: "WrongDocumentError"}
	ErrInvalidState    = &Error{Name: "InvalidStateError"}
)

// Errorf returns a DOM error with the given name and a formatted message.
func Errorf(kind *Error, format string, args ...any) error {
	return &Error{Name: kind.Name, Message: fmt.Sprintf(format, args...)}
}
