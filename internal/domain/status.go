package domain

import "fmt"

// Status enumerates catalogue lifecycle states.
type Status string

const (
	StatusPreparing Status = "preparing"
	StatusActive    Status = "active"
	StatusError     Status = "error"
	StatusInactive  Status = "inactive"
)

// statusTransitions is the validated transition table. The inactive edges
// belong to the external usage-limit process; they are listed so this
// service never treats them as illegal when it reads a record another
// writer has touched.
var statusTransitions = map[Status][]Status{
	StatusPreparing: {StatusActive, StatusError},
	StatusError:     {StatusPreparing},
	StatusActive:    {StatusInactive},
	StatusInactive:  {StatusActive},
}

// CanTransition reports whether moving from one status to another is legal.
func CanTransition(from, to Status) bool {
	for _, next := range statusTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CheckTransition returns a descriptive error for illegal status moves.
func CheckTransition(from, to Status) error {
	if !CanTransition(from, to) {
		return fmt.Errorf("%w: %s -> %s", ErrIllegalTransition, from, to)
	}
	return nil
}

// ValidStatus reports whether s is a known lifecycle state.
func ValidStatus(s Status) bool {
	switch s {
	case StatusPreparing, StatusActive, StatusError, StatusInactive:
		return true
	}
	return false
}
