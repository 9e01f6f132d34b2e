package psd

import (
	"fmt"

	"github.com/pkg/errors"
)

// ErrorClass names the five-way error taxonomy this package reports under.
type ErrorClass int

const (
	// ErrStructural marks a violation of the container format itself:
	// a bad signature, an out-of-range version, a length prefix that
	// doesn't fit the remaining bytes.
	ErrStructural ErrorClass = iota
	// ErrDomain marks a value that parses fine but is not a member of
	// the format's defined vocabulary (an unknown compression code, an
	// out-of-range color mode).
	ErrDomain
	// ErrCapability marks a construct this package recognizes but does
	// not implement (an unsupported bit depth for a given codec).
	ErrCapability
	// ErrShape marks an internal inconsistency between sections that
	// must agree (a channel whose byte count disagrees with its
	// declared dimensions).
	ErrShape
	// ErrInputExhaustion marks running out of bytes mid-record.
	ErrInputExhaustion
)

func (c ErrorClass) String() string {
	switch c {
	case ErrStructural:
		return "structural"
	case ErrDomain:
		return "domain"
	case ErrCapability:
		return "capability"
	case ErrShape:
		return "shape"
	case ErrInputExhaustion:
		return "input-exhaustion"
	default:
		return "unknown"
	}
}

// FormatError is the concrete error type returned for every taxonomy
// violation. It always names the section it occurred in and the offending
// value, per spec ERROR HANDLING DESIGN.
type FormatError struct {
	Class   ErrorClass
	Section string
	Value   interface{}
	Message string
	cause   error
}

func (e *FormatError) Error() string {
	if e.Value != nil {
		return fmt.Sprintf("%s: %s in %s (value=%v)", e.Class, e.Message, e.Section, e.Value)
	}
	return fmt.Sprintf("%s: %s in %s", e.Class, e.Message, e.Section)
}

func (e *FormatError) Unwrap() error {
	return e.cause
}

// newFormatError builds a FormatError with a stack trace attached via
// github.com/pkg/errors, so a caller debugging a corrupt file can see where
// in the section tree the failure was detected.
func newFormatError(class ErrorClass, section, message string, value interface{}) error {
	return errors.WithStack(&FormatError{
		Class:   class,
		Section: section,
		Value:   value,
		Message: message,
	})
}

func structuralError(section, message string, value interface{}) error {
	return newFormatError(ErrStructural, section, message, value)
}

func domainError(section, message string, value interface{}) error {
	return newFormatError(ErrDomain, section, message, value)
}

func capabilityError(section, message string, value interface{}) error {
	return newFormatError(ErrCapability, section, message, value)
}

func shapeError(section, message string, value interface{}) error {
	return newFormatError(ErrShape, section, message, value)
}

func exhaustionError(section, message string, value interface{}) error {
	return newFormatError(ErrInputExhaustion, section, message, value)
}
