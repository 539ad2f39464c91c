package attack

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrUnresolved is returned when a physical node ends without a target.
	ErrUnresolved = errors.New("attack: physical nodes left without a target")
	// ErrInvalidVictim is returned for a victim id outside the network or on
	// a virtual node.
	ErrInvalidVictim = errors.New("attack: invalid victim")
	// ErrInvalidSideWeight is returned for a negative side link cost.
	ErrInvalidSideWeight = errors.New("attack: side weight must be non-negative")
)

// maxListed caps the node ids spelled out in an UnresolvedError message.
const maxListed = 10

// UnresolvedError lists the physical nodes no victim could be reached from.
type UnresolvedError struct {
	Nodes []int
}

func (e *UnresolvedError) Error() string {
	ids := make([]string, 0, min(len(e.Nodes), maxListed))
	for _, u := range e.Nodes[:min(len(e.Nodes), maxListed)] {
		ids = append(ids, fmt.Sprint(u))
	}
	more := ""
	if len(e.Nodes) > maxListed {
		more = fmt.Sprintf(" and %d more", len(e.Nodes)-maxListed)
	}
	return fmt.Sprintf("%v: %d nodes [%s%s]", ErrUnresolved, len(e.Nodes), strings.Join(ids, " "), more)
}

func (e *UnresolvedError) Unwrap() error {
	return ErrUnresolved
}

// IsUnresolved reports whether err carries unresolved nodes.
func IsUnresolved(err error) bool {
	return errors.Is(err, ErrUnresolved)
}
