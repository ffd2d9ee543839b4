// Package statemachine provides a small, type-safe finite state machine.
//
// States and events are any comparable types, usually string constants:
//
//	type State string
//	type Event string
//
//	const (
//		Idle    State = "idle"
//		Loading State = "loading"
//		Ready   State = "ready"
//
//		Load   Event = "load"
//		Loaded Event = "loaded"
//	)
//
//	m := statemachine.MustNew(Idle,
//		statemachine.WithTransitionFrom([]State{Idle, Ready}, Loading, Load),
//		statemachine.WithTransition(Loading, Ready, Loaded),
//	)
//	_ = m.Fire(ctx, Load, nil)
//
// # Guards and Actions
//
// Guards veto a transition based on runtime data. When several transitions
// share a from/event pair, the first one whose guards pass is taken. Actions
// run after the guards and before the state changes; an action error aborts
// the transition. Listeners registered with OnTransition observe committed
// transitions outside the lock.
//
// # Error Handling
//
// Fire returns a *TransitionError wrapping ErrNoTransition when nothing is
// registered for the current state and event, or ErrRejected when every
// candidate's guards failed:
//
//	if errors.Is(err, statemachine.ErrNoTransition) { /* ... */ }
//
// # Concurrency
//
// Machine guards its state with a RWMutex; Current and CanFire take the read lock.
package statemachine
