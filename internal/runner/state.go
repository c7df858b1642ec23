package runner

import "github.com/petasbytes/support-bot/internal/provider"

// State is the local view of where a turn is.
type State int

const (
	StateStarted State = iota
	StateQueued
	StateInProgress
	StateRequiresAction
	StateCompleted
	StateFailed
	StateTimedOut
)

func (s State) String() string {
	switch s {
	case StateStarted:
		return "started"
	case StateQueued:
		return "queued"
	case StateInProgress:
		return "in_progress"
	case StateRequiresAction:
		return "requires_action"
	case StateCompleted:
		return "completed"
	case StateFailed:
		return "failed"
	case StateTimedOut:
		return "timed_out"
	}
	return "unknown"
}

// Done reports whether no further polling happens from s.
func (s State) Done() bool {
	return s == StateCompleted || s == StateFailed || s == StateTimedOut
}

// StateFor folds a remote run status into a turn state. Statuses the service
// may add later count as in progress and stay bounded by the poll budget.
func StateFor(status provider.RunStatus) State {
	switch {
	case status == provider.RunQueued:
		return StateQueued
	case status == provider.RunRequiresAction:
		return StateRequiresAction
	case status == provider.RunCompleted:
		return StateCompleted
	case status.Terminal():
		return StateFailed
	}
	return StateInProgress
}
