package model

import "fmt"

// State is the usage state of a device. The zero value means no state was
// recorded.
type State string

const (
	StateUnset     State = ""
	StateAvailable State = "AVAILABLE"
	StateInUse     State = "IN_USE"
	StateInactive  State = "INACTIVE"
)

func (s State) String() string {
	return string(s)
}

func (s State) IsSet() bool {
	return s != StateUnset
}

func (s State) IsValid() bool {
	switch s {
	case StateAvailable, StateInUse, StateInactive:
		return true
	default:
		return false
	}
}

// ParseState matches s exactly (case-sensitive) against the known states.
func ParseState(s string) (State, error) {
	state := State(s)
	if !state.IsValid() {
		return StateUnset, fmt.Errorf("%w: %q", ErrInvalidState, s)
	}

	return state, nil
}

func AllStates() []State {
	return []State{StateAvailable, StateInUse, StateInactive}
}
