package syntax

import (
	"errors"
	"fmt"

	"github.com/yaklabco/astnav/pkg/document"
)

// Sentinel errors.
var (
	// ErrMalformedTree marks a reply that violates containment or omits a
	// required field. The probe is treated as a miss.
	ErrMalformedTree = errors.New("malformed syntax tree")

	// ErrParentNotFound is returned at the document root, or when the service
	// cannot relate a node to any enclosing construct.
	ErrParentNotFound = errors.New("parent not found")

	// ErrStaleEpoch marks a reply that arrived after its command was
	// cancelled or the document changed. It is never shown to the user.
	ErrStaleEpoch = errors.New("stale epoch")

	// ErrInvalidRange is returned for inverted or out-of-bounds query ranges.
	ErrInvalidRange = errors.New("invalid range")
)

// LSP error codes that mark a transient failure.
const (
	CodeRequestCancelled = -32800
	CodeContentModified  = -32801
)

// ServiceErrorKind classifies service failures.
type ServiceErrorKind int

// Service failure kinds.
const (
	Unreachable ServiceErrorKind = iota
	Timeout
	Protocol
)

func (k ServiceErrorKind) String() string {
	switch k {
	case Unreachable:
		return "unreachable"
	case Timeout:
		return "timeout"
	case Protocol:
		return "protocol"
	default:
		return fmt.Sprintf("ServiceErrorKind(%d)", int(k))
	}
}

// ServiceError is a failure talking to the syntax service.
type ServiceError struct {
	Kind ServiceErrorKind
	Op   string
	Code int
	Err  error
}

func (e *ServiceError) Error() string {
	msg := fmt.Sprintf("syntax service %s: %s", e.Kind, e.Op)
	if e.Code != 0 {
		msg += fmt.Sprintf(" (code %d)", e.Code)
	}
	if e.Err != nil {
		msg += ": " + e.Err.Error()
	}
	return msg
}

func (e *ServiceError) Unwrap() error {
	return e.Err
}

// IsTransient reports whether the service signalled that the request raced
// with a document change and may succeed if reissued.
func (e *ServiceError) IsTransient() bool {
	return e.Kind == Protocol && (e.Code == CodeContentModified || e.Code == CodeRequestCancelled)
}

// IsTransient reports whether err wraps a transient ServiceError.
func IsTransient(err error) bool {
	var svcErr *ServiceError
	return errors.As(err, &svcErr) && svcErr.IsTransient()
}

// MalformedTreeError describes why a reply was rejected.
type MalformedTreeError struct {
	Reason string
	Range  document.Range
}

func (e *MalformedTreeError) Error() string {
	return fmt.Sprintf("%s at %s: %s", ErrMalformedTree, e.Range, e.Reason)
}

func (e *MalformedTreeError) Unwrap() error {
	return ErrMalformedTree
}
