package provider

import (
	"context"
	"errors"
)

// ErrNotFound is returned when the hosted service reports that a thread, run or
// assistant does not exist.
var ErrNotFound = errors.New("provider: resource not found")

// RunStatus mirrors the status string reported by the hosted service.
type RunStatus string

const (
	RunQueued         RunStatus = "queued"
	RunInProgress     RunStatus = "in_progress"
	RunRequiresAction RunStatus = "requires_action"
	RunCancelling     RunStatus = "cancelling"
	RunCompleted      RunStatus = "completed"
	RunFailed         RunStatus = "failed"
	RunCancelled      RunStatus = "cancelled"
	RunExpired        RunStatus = "expired"
	RunIncomplete     RunStatus = "incomplete"
)

// Terminal reports whether the run ended without completing.
func (s RunStatus) Terminal() bool {
	switch s {
	case RunFailed, RunCancelled, RunExpired, RunIncomplete:
		return true
	}
	return false
}

// Run is the subset of a remote run the gateway acts on.
type Run struct {
	ID        string
	ThreadID  string
	Status    RunStatus
	ToolCalls []ToolCall // populated only when Status is requires_action

	// Set by the hosted service on failed runs.
	ErrorCode    string
	ErrorMessage string
}

// ToolCall is a function invocation requested by a run.
type ToolCall struct {
	ID        string
	Name      string
	Arguments string // raw JSON object
}

// ToolOutput answers exactly one ToolCall.
type ToolOutput struct {
	ToolCallID string
	Output     string
}

// FunctionSpec declares one callable tool on the assistant.
type FunctionSpec struct {
	Name        string
	Description string
	Parameters  any // JSON schema; marshalled as-is
}

// AssistantSpec is the full remote assistant definition.
type AssistantSpec struct {
	Name         string
	Model        string
	Instructions string
	Functions    []FunctionSpec
}

// API is the narrow view of the hosted assistants service used by the gateway.
type API interface {
	FindAssistant(ctx context.Context, name string) (id string, found bool, err error)
	CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error)
	UpdateAssistant(ctx context.Context, id string, spec AssistantSpec) error

	CreateThread(ctx context.Context, metadata map[string]string) (string, error)
	AddUserMessage(ctx context.Context, threadID, text string) error
	LatestMessage(ctx context.Context, threadID string) (string, error)

	CreateRun(ctx context.Context, threadID, assistantID string) (Run, error)
	GetRun(ctx context.Context, threadID, runID string) (Run, error)
	SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error)
	CancelRun(ctx context.Context, threadID, runID string) error
}
