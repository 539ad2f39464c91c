package network

import (
	"errors"
	"fmt"
)

// Sentinel errors
var (
	ErrVirtualExpansion  = errors.New("cannot expand a virtual node")
	ErrInvalidUpwardEdge = errors.New("invalid upward edge")
	ErrNodeOutOfRange    = errors.New("node out of range")
	ErrInvariant         = errors.New("network invariant violated")
	ErrInvalidParams     = errors.New("invalid growth parameters")
)

// InvariantError describes one structural violation found by Validate or
// rejected by a mutation. Node is always set; Neighbor is -1 when the
// violation is about a single node.
type InvariantError struct {
	Check    string // e.g. "symmetry", "depth", "subnet_size"
	Node     int
	Neighbor int
	Relation string // "in", "side", "up", "down" or "" for node-level checks
	Expected any
	Actual   any
	Cause    error
}

// Error implements the error interface.
func (e *InvariantError) Error() string {
	where := fmt.Sprintf("node %d", e.Node)
	if e.Neighbor >= 0 {
		where = fmt.Sprintf("%s %s-neighbor %d", where, e.Relation, e.Neighbor)
	} else if e.Relation != "" {
		where = fmt.Sprintf("%s (%s)", where, e.Relation)
	}
	return fmt.Sprintf("%s: %s: expected %v, got %v: %v", e.Check, where, e.Expected, e.Actual, e.cause())
}

func (e *InvariantError) cause() error {
	if e.Cause == nil {
		return ErrInvariant
	}
	return e.Cause
}

// Unwrap returns the underlying cause for error chain support.
func (e *InvariantError) Unwrap() error {
	return e.cause()
}

// Is reports whether target matches the cause.
func (e *InvariantError) Is(target error) bool {
	if target == nil {
		return false
	}
	return errors.Is(e.cause(), target)
}

func violation(check string, u, v int, relation string, expected, actual any) *InvariantError {
	return &InvariantError{
		Check:    check,
		Node:     u,
		Neighbor: v,
		Relation: relation,
		Expected: expected,
		Actual:   actual,
	}
}

// IsInvariantViolation reports whether err is a structural violation.
func IsInvariantViolation(err error) bool {
	var ie *InvariantError
	return errors.As(err, &ie)
}
