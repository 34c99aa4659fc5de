package schema

import "fmt"

// ErrorKind classifies conversion failures. All kinds are terminal for the
// current conversion: no partial output, no retry.
type ErrorKind int

const (
	ErrMalformedDocument ErrorKind = iota + 1
	ErrUnsupportedCardinality
	ErrUnknownType
	ErrNameCollision
	ErrCyclicReference
	ErrUnsupportedConversion
)

// String returns the kind's wire name.
func (k ErrorKind) String() string {
	switch k {
	case ErrMalformedDocument:
		return "malformed-document"
	case ErrUnsupportedCardinality:
		return "unsupported-cardinality"
	case ErrUnknownType:
		return "unknown-type"
	case ErrNameCollision:
		return "name-collision"
	case ErrCyclicReference:
		return "cyclic-reference"
	case ErrUnsupportedConversion:
		return "unsupported-conversion"
	}
	return "unknown"
}

// Error is a structured conversion error: a kind, a human-readable message
// and a locator pinpointing the offending construct (entity, field,
// statement or line).
type Error struct {
	Kind    ErrorKind
	Message string
	Locator string
}

func (e *Error) Error() string {
	if e.Locator != "" {
		return fmt.Sprintf("%s: %s (at %s)", e.Kind, e.Message, e.Locator)
	}
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// NewError builds a structured error with a formatted message.
func NewError(kind ErrorKind, locator, format string, args ...any) *Error {
	return &Error{
		Kind:    kind,
		Message: fmt.Sprintf(format, args...),
		Locator: locator,
	}
}
