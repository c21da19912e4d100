// Package faultclass normalizes arbitrary errors from the remote storefront
// backend into a small taxonomy with user-presentable messages. Raw backend
// errors (reject texts, transport failures, role-check traps) are never shown
// to an end user directly; everything crossing into UI state passes through
// Classify first.
package faultclass

import (
	"errors"
	"fmt"
)

// Kind partitions backend failures by how the UI should respond to them.
type Kind int

const (
	// KindGeneric is any failure with no more specific handling; the cleaned
	// backend message (or a fallback sentence) is shown as-is.
	KindGeneric Kind = iota
	// KindUnavailable covers a stopped, undeployed, or unreachable backend.
	// The UI pairs these with an explicit retry affordance.
	KindUnavailable
	// KindUnauthorized covers permission and role failures. The user message
	// is deliberately neutral and never echoes role internals.
	KindUnauthorized
	// KindInvalid covers local input validation failures detected before any
	// network call is made.
	KindInvalid
)

// String returns a stable name for the kind, used in log fields.
func (k Kind) String() string {
	switch k {
	case KindUnavailable:
		return "unavailable"
	case KindUnauthorized:
		return "unauthorized"
	case KindInvalid:
		return "invalid"
	default:
		return "generic"
	}
}

// Classified is the normalized form of a backend failure. It is constructed
// once per failure and never mutated.
type Classified struct {
	Kind        Kind
	UserMessage string
	Cause       error
}

// Error returns the user-facing message, satisfying the error interface.
func (c *Classified) Error() string {
	return c.UserMessage
}

// Unwrap exposes the original error for errors.Is/As chains.
func (c *Classified) Unwrap() error {
	return c.Cause
}

// New constructs a Classified directly, bypassing pattern matching. Used for
// failures whose kind is known at the call site (e.g. a sign-in requirement
// detected locally).
func New(kind Kind, userMessage string, cause error) *Classified {
	return &Classified{Kind: kind, UserMessage: userMessage, Cause: cause}
}

// Invalidf constructs a KindInvalid error for a local validation failure.
// These are surfaced immediately and never reach the network.
func Invalidf(format string, args ...any) *Classified {
	return &Classified{Kind: KindInvalid, UserMessage: fmt.Sprintf(format, args...)}
}

// As extracts a Classified from an error chain.
func As(err error) (*Classified, bool) {
	var c *Classified
	if errors.As(err, &c) {
		return c, true
	}
	return nil, false
}
