package statemachine

// Option configures a machine during construction.
type Option[S, E comparable] func(*Machine[S, E]) error

// TransitionOption attaches guards and actions to a transition.
type TransitionOption[S, E comparable] func(*Transition[S, E])

// WithTransition adds a single transition.
func WithTransition[S, E comparable](from, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return WithTransitionFrom([]S{from}, to, event, opts...)
}

// WithTransitionFrom adds the same transition from each of the given states.
func WithTransitionFrom[S, E comparable](from []S, to S, event E, opts ...TransitionOption[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		if len(from) == 0 {
			return ErrInvalidTransition
		}
		for _, f := range from {
			t := Transition[S, E]{From: f, To: to, Event: event}
			for _, opt := range opts {
				opt(&t)
			}
			m.AddTransition(t)
		}
		return nil
	}
}

// WithTransitions adds prebuilt transitions.
func WithTransitions[S, E comparable](transitions ...Transition[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		for _, t := range transitions {
			m.AddTransition(t)
		}
		return nil
	}
}

// WithListener registers a transition listener at construction.
func WithListener[S, E comparable](l Listener[S, E]) Option[S, E] {
	return func(m *Machine[S, E]) error {
		m.OnTransition(l)
		return nil
	}
}

// WithGuard adds a guard to a transition.
func WithGuard[S, E comparable](guard Guard[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if guard != nil {
			t.Guards = append(t.Guards, guard)
		}
	}
}

// WithAction adds an action to a transition.
func WithAction[S, E comparable](action Action[S, E]) TransitionOption[S, E] {
	return func(t *Transition[S, E]) {
		if action != nil {
			t.Actions = append(t.Actions, action)
		}
	}
}
