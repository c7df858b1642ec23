package runner

import (
	"errors"
	"fmt"
	"time"

	"github.com/petasbytes/support-bot/internal/provider"
)

// ErrMissingThread is returned when the thread id is empty or unknown to the hosted service.
var ErrMissingThread = errors.New("missing thread_id")

// ErrRunTimeout is matched by every RunTimeoutError.
var ErrRunTimeout = errors.New("assistant run timed out")

// RunFailedError reports a run that ended in failed, cancelled, expired or incomplete.
type RunFailedError struct {
	RunID   string
	Status  provider.RunStatus
	Code    string
	Message string
}

func (e *RunFailedError) Error() string {
	msg := fmt.Sprintf("run %s ended with status %s", e.RunID, e.Status)
	if e.Code != "" || e.Message != "" {
		msg += fmt.Sprintf(" (%s: %s)", e.Code, e.Message)
	}
	return msg
}

// RunTimeoutError reports a turn that ran out of time or polls.
type RunTimeoutError struct {
	RunID   string
	Polls   int
	Elapsed time.Duration
}

func (e *RunTimeoutError) Error() string {
	return fmt.Sprintf("run %s: no terminal status after %d polls in %s", e.RunID, e.Polls, e.Elapsed.Round(time.Millisecond))
}

func (e *RunTimeoutError) Unwrap() error { return ErrRunTimeout }
