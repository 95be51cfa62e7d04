package shell

import "fmt"

// Kind classifies the failures the shell reports. None of them is fatal.
type Kind int

const (
	KindInvalidPath Kind = iota + 1
	KindProcessFailure
	KindStoreIOFailure
	KindAliasSyntax
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindInvalidPath:
		return "InvalidPath"
	case KindProcessFailure:
		return "ProcessFailure"
	case KindStoreIOFailure:
		return "StoreIOFailure"
	case KindAliasSyntax:
		return "AliasSyntaxError"
	case KindNotFound:
		return "NotFound"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error is a user-visible failure. Message is the text shown at the prompt.
type Error struct {
	Kind    Kind
	Message string
}

func (e *Error) Error() string {
	if e.Message == "" {
		return e.Kind.String()
	}
	return e.Message
}

// Is matches the sentinel of the same kind, so errors.Is(err, ErrNotFound) works.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Message == "" && t.Kind == e.Kind
}

var (
	ErrInvalidPath    = &Error{Kind: KindInvalidPath}
	ErrProcessFailure = &Error{Kind: KindProcessFailure}
	ErrStoreIOFailure = &Error{Kind: KindStoreIOFailure}
	ErrAliasSyntax    = &Error{Kind: KindAliasSyntax}
	ErrNotFound       = &Error{Kind: KindNotFound}
)

func newError(kind Kind, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}
