package workflows

import (
	"context"
	"errors"
	"fmt"

	"github.com/looplab/fsm"
)

// Onboarding session lifecycle states
const (
	StateInProgress = "in_progress"
	StateCompleted  = "completed"
	StateAbandoned  = "abandoned"
)

// Lifecycle events
const (
	EventComplete = "complete"
	EventAbandon  = "abandon"
)

// ErrTransitionNotAllowed is returned when an event is not valid from the current state
var ErrTransitionNotAllowed = errors.New("transition not allowed")

// StateMachine enforces onboarding session status transitions
type StateMachine struct {
	allowedTransitions map[string][]string
	events             fsm.Events
}

// NewStateMachine creates a new state machine with allowed transitions
func NewStateMachine() *StateMachine {
	return &StateMachine{
		allowedTransitions: map[string][]string{
			StateInProgress: {StateCompleted, StateAbandoned},
			StateCompleted:  {},
			StateAbandoned:  {},
		},
		events: fsm.Events{
			{Name: EventComplete, Src: []string{StateInProgress}, Dst: StateCompleted},
			{Name: EventAbandon, Src: []string{StateInProgress}, Dst: StateAbandoned},
		},
	}
}

// CanTransition checks if a status transition is allowed
func (sm *StateMachine) CanTransition(from, to string) bool {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return false
	}
	for _, allowedTo := range allowed {
		if allowedTo == to {
			return true
		}
	}
	return false
}

// GetAllowedTransitions returns the allowed next statuses for a given status
func (sm *StateMachine) GetAllowedTransitions(from string) []string {
	allowed, exists := sm.allowedTransitions[from]
	if !exists {
		return []string{}
	}
	return allowed
}

// IsTerminal reports whether no transition leaves the state
func (sm *StateMachine) IsTerminal(state string) bool {
	return len(sm.GetAllowedTransitions(state)) == 0
}

// Fire applies an event to the current state and returns the destination state.
// A short-lived FSM is built per call since the session owns its state.
func (sm *StateMachine) Fire(ctx context.Context, current, event string) (string, error) {
	machine := fsm.NewFSM(current, sm.events, nil)

	if err := machine.Event(ctx, event); err != nil {
		var invalidEvent fsm.InvalidEventError
		var unknownEvent fsm.UnknownEventError
		if errors.As(err, &invalidEvent) || errors.As(err, &unknownEvent) {
			return current, fmt.Errorf("%w: %s from %s", ErrTransitionNotAllowed, event, current)
		}
		return current, err
	}

	return machine.Current(), nil
}
