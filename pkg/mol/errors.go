package mol

import (
	"errors"
	"fmt"
)

// Sentinel errors. Every typed error below unwraps to one of them, so callers
// can test with errors.Is without caring about the concrete type.
var (
	// ErrInvalidHandle is returned for operations on a zero handle or a handle
	// whose node has been deleted.
	ErrInvalidHandle = errors.New("invalid handle")

	// ErrIntegrity is returned for structural violations such as duplicate
	// chain names or mixing handles of different entities.
	ErrIntegrity = errors.New("integrity violation")

	// ErrNotConnected is returned by internal coordinate edits between atoms
	// that share no bond.
	ErrNotConnected = errors.New("atoms are not connected")

	// ErrProperty is returned for unknown built-in properties or properties
	// requested at the wrong hierarchy level.
	ErrProperty = errors.New("property error")

	// ErrLockedState is returned when directionality tracing stops making
	// progress.
	ErrLockedState = errors.New("directionality trace reached a locked state")
)

// InvalidHandleError reports which kind of handle was stale.
type InvalidHandleError struct {
	Kind string
}

func (e *InvalidHandleError) Error() string {
	return fmt.Sprintf("invalid %s handle", e.Kind)
}

func (e *InvalidHandleError) Unwrap() error { return ErrInvalidHandle }

// IntegrityError describes a structural violation.
type IntegrityError struct {
	Msg string
}

func (e *IntegrityError) Error() string { return "integrity violation: " + e.Msg }

func (e *IntegrityError) Unwrap() error { return ErrIntegrity }

// DuplicateNameError is returned when a chain name is already taken.
type DuplicateNameError struct {
	Name string
}

func (e *DuplicateNameError) Error() string {
	return fmt.Sprintf("chain %q already exists", e.Name)
}

func (e *DuplicateNameError) Unwrap() error { return ErrIntegrity }

// NotConnectedError names the two atoms that were expected to share a bond.
type NotConnectedError struct {
	A, B AtomHandle
}

func (e *NotConnectedError) Error() string {
	return fmt.Sprintf("atoms %s and %s are not connected", e.A.safeName(), e.B.safeName())
}

func (e *NotConnectedError) Unwrap() error { return ErrNotConnected }

// PropertyError reports an unknown or level-mismatched property.
type PropertyError struct {
	Name  string
	Level Level
	Msg   string
}

func (e *PropertyError) Error() string {
	if e.Msg != "" {
		return fmt.Sprintf("property %q: %s", e.Name, e.Msg)
	}
	return fmt.Sprintf("property %q is not available at %s level", e.Name, e.Level)
}

func (e *PropertyError) Unwrap() error { return ErrProperty }

func integrityf(format string, args ...any) error {
	return &IntegrityError{Msg: fmt.Sprintf(format, args...)}
}
