// Package scheduler contains the pure lifecycle rules for the queue scheduler.
// This is part of the Functional Core - no I/O, only pure functions.
package scheduler

import "fmt"

// State represents the lifecycle state of a scheduler.
type State string

const (
	StateStopped State = "stopped"
	StateRunning State = "running"
)

// InitialState returns the state of a newly constructed scheduler.
func InitialState() State {
	return StateStopped
}

// TransitionResult is the outcome of a lifecycle request.
// A NoOp result carries a warning for the caller to log; it is not an error.
type TransitionResult struct {
	NewState State
	NoOp     bool
	Warning  string
}

// Start evaluates a start request from the current state.
// Rule: starting a running scheduler is a no-op with a warning.
func Start(current State) TransitionResult {
	if current == StateRunning {
		return TransitionResult{
			NewState: StateRunning,
			NoOp:     true,
			Warning:  "queue scheduler is already running",
		}
	}
	return TransitionResult{NewState: StateRunning}
}

// Stop evaluates a stop request from the current state.
// Rule: stopping a stopped scheduler is a no-op with a warning.
func Stop(current State) TransitionResult {
	if current == StateStopped {
		return TransitionResult{
			NewState: StateStopped,
			NoOp:     true,
			Warning:  "queue scheduler is not running",
		}
	}
	return TransitionResult{NewState: StateStopped}
}

// TickSource identifies what triggered a queue drain.
type TickSource string

const (
	SourceTimer  TickSource = "timer"
	SourceManual TickSource = "manual"
)

// TickDecision is the outcome of the single-flight check.
type TickDecision struct {
	Run    bool
	Reason string
}

// CanBeginTick evaluates whether a drain may begin.
// Rule: only one drain may be in flight at a time; overlapping requests are skipped.
func CanBeginTick(source TickSource, inFlight bool) TickDecision {
	if inFlight {
		return TickDecision{
			Run:    false,
			Reason: fmt.Sprintf("%s drain skipped: queue drain already in progress", source),
		}
	}
	return TickDecision{Run: true}
}
