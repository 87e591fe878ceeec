package appointment

import "github.com/SaltaGet/Back-SIJAC/internal/httperr"

// ===============================
// Appointment State
// ===============================

type State string

const (
	StateNull     State = "null"
	StateReserved State = "reserved"
	StatePending  State = "pending"
	StateAccept   State = "accept"
	StateReject   State = "reject"
	StateCancel   State = "cancel"
)

var states = []State{
	StateNull,
	StateReserved,
	StatePending,
	StateAccept,
	StateReject,
	StateCancel,
}

// ParseState accepts exactly the six known states. Anything else, including
// historical spellings, is an input error.
func ParseState(s string) (State, error) {
	for _, st := range states {
		if string(st) == s {
			return st, nil
		}
	}
	return "", httperr.ErrInvalidOperation("invalid_state_value", s)
}

// IsActive reports whether the slot carries a commitment that constrains
// availability edits.
func (s State) IsActive() bool {
	return s == StatePending || s == StateAccept
}

func (s State) IsDecision() bool {
	return s == StateAccept || s == StateReject
}

func (s State) String() string {
	return string(s)
}
