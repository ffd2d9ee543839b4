package statemachine

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidTransition = errors.New("statemachine: transition needs at least one source state")
	ErrNoTransition      = errors.New("statemachine: no transition for event")
	ErrRejected          = errors.New("statemachine: transition rejected by guards")
)

// TransitionError reports why Fire left the machine in State. Err is
// ErrNoTransition or ErrRejected.
type TransitionError struct {
	State string
	Event string
	Err   error
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("%v (state %q, event %q)", e.Err, e.State, e.Event)
}

func (e *TransitionError) Unwrap() error { return e.Err }

func transitionError(state, event any, err error) *TransitionError {
	return &TransitionError{State: fmt.Sprint(state), Event: fmt.Sprint(event), Err: err}
}
