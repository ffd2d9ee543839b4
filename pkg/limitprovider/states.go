package limitprovider

import "github.com/teamarena/quotakit/pkg/statemachine"

// State is the loading state of a Provider.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoadingPlan   State = "loading_plan"
	StateLoadingLimits State = "loading_limits"
	StateLoadingUsage  State = "loading_usage"
	StateReady         State = "ready"
	StateError         State = "error"
)

func (s State) String() string { return string(s) }

type event string

func (e event) String() string { return string(e) }

const (
	eventLoadPlan     event = "load_plan"
	eventPlanLoaded   event = "plan_loaded"
	eventLimitsLoaded event = "limits_loaded"
	eventUsageLoaded  event = "usage_loaded"
	eventRefresh      event = "refresh"
	eventFail         event = "fail"
)

var loadingStates = []State{StateLoadingPlan, StateLoadingLimits, StateLoadingUsage}

func newMachine() *statemachine.Machine[State, event] {
	return statemachine.MustNew(StateUninitialized,
		statemachine.WithTransitionFrom(
			[]State{StateUninitialized, StateReady, StateError, StateLoadingPlan, StateLoadingLimits, StateLoadingUsage},
			StateLoadingPlan, eventLoadPlan,
		),
		statemachine.WithTransition[State, event](StateLoadingPlan, StateLoadingLimits, eventPlanLoaded),
		statemachine.WithTransition[State, event](StateLoadingLimits, StateLoadingUsage, eventLimitsLoaded),
		statemachine.WithTransition[State, event](StateLoadingUsage, StateReady, eventUsageLoaded),
		statemachine.WithTransitionFrom([]State{StateReady, StateError}, StateLoadingUsage, eventRefresh),
		statemachine.WithTransitionFrom(loadingStates, StateError, eventFail),
	)
}
