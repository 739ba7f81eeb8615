package authz

import (
	"errors"
	"fmt"
)

var (
	// ErrAccessDenied is matched by every denial of an authenticated caller.
	ErrAccessDenied = errors.New("access denied")

	// ErrUnauthenticated is returned when an operation needs a caller identity.
	ErrUnauthenticated = errors.New("authentication required")
)

// Effect is the outcome kind of a Decision.
type Effect int

const (
	// Deny is the zero value so an unset Decision never grants access.
	Deny Effect = iota
	Allow
	Unauthenticated
)

func (e Effect) String() string {
	switch e {
	case Allow:
		return "allow"
	case Unauthenticated:
		return "unauthenticated"
	default:
		return "deny"
	}
}

// Decision is the result of evaluating the policy.
type Decision struct {
	Effect Effect
	Reason string
}

// Allowed reports whether the decision grants access.
func (d Decision) Allowed() bool {
	return d.Effect == Allow
}

// Err converts a non-allow decision into an error; it is nil when allowed.
func (d Decision) Err() error {
	switch d.Effect {
	case Allow:
		return nil
	case Unauthenticated:
		return ErrUnauthenticated
	default:
		return &DeniedError{Reason: d.Reason}
	}
}

// DeniedError carries the client-facing reason for a denial.
type DeniedError struct {
	Reason string
}

func (e *DeniedError) Error() string {
	if e.Reason == "" {
		return ErrAccessDenied.Error()
	}
	return fmt.Sprintf("%s: %s", ErrAccessDenied, e.Reason)
}

func (e *DeniedError) Unwrap() error {
	return ErrAccessDenied
}

func allow() Decision { return Decision{Effect: Allow} }

func deny(reason string) Decision { return Decision{Effect: Deny, Reason: reason} }
