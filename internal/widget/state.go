package widget

import (
	"errors"
	"fmt"
	"slices"
)

var ErrIllegalTransition = errors.New("illegal widget state transition")

type State string

const (
	StateIdle             State = "idle"
	StateWidgetLoading    State = "widget_loading"
	StateWidgetReady      State = "widget_ready"
	StateSubmitting       State = "submitting"
	StateRedirectCaptured State = "redirect_captured"
	StateVerifying        State = "verifying"
	StateSucceeded        State = "succeeded"
	StateFailed           State = "failed"
)

// remember to add new states to the transitions map
var transitions = map[State][]State{
	StateIdle:             {StateWidgetLoading},
	StateWidgetLoading:    {StateWidgetLoading, StateWidgetReady, StateIdle, StateFailed},
	StateWidgetReady:      {StateWidgetLoading, StateSubmitting, StateRedirectCaptured, StateFailed},
	StateSubmitting:       {StateRedirectCaptured, StateFailed},
	StateRedirectCaptured: {StateVerifying},
	StateVerifying:        {StateSucceeded, StateFailed},
	StateSucceeded:        {},
	StateFailed:           {},
}

func (s State) IsTerminal() bool {
	return s == StateSucceeded || s == StateFailed
}

func CanTransition(from, to State) bool {
	return slices.Contains(transitions[from], to)
}

// transition returns the next state or ErrIllegalTransition. It is the only
// place that decides whether the coordinator may move.
func transition(from, to State) (State, error) {
	if !CanTransition(from, to) {
		return from, fmt.Errorf("%s -> %s: %w", from, to, ErrIllegalTransition)
	}
	return to, nil
}
