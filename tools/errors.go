package tools

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/petasbytes/support-bot/internal/safety"
)

// UnknownToolError is returned when a run asks for a tool outside the registry.
type UnknownToolError struct {
	Name string
}

func (e *UnknownToolError) Error() string {
	return fmt.Sprintf("unknown tool %q", e.Name)
}

// MissingArgumentError lists required fields absent from a tool call.
type MissingArgumentError struct {
	Tool   string
	Fields []string
}

func (e *MissingArgumentError) Error() string {
	return fmt.Sprintf("%s: missing required argument(s): %s", e.Tool, strings.Join(e.Fields, ", "))
}

// InvalidArgumentsError covers undecodable or schema-violating arguments.
type InvalidArgumentsError struct {
	Tool   string
	Reason string
}

func (e *InvalidArgumentsError) Error() string {
	return fmt.Sprintf("%s: invalid arguments: %s", e.Tool, e.Reason)
}

const (
	CodeUnknownTool      = "ERR_UNKNOWN_TOOL"
	CodeMissingArgument  = "ERR_MISSING_ARGUMENT"
	CodeInvalidArguments = "ERR_INVALID_ARGUMENTS"
	CodeToolFailed       = "ERR_TOOL_FAILED"
)

// ErrorCode maps an error returned by Dispatch to a stable machine-readable code.
func ErrorCode(err error) string {
	var (
		unknown *UnknownToolError
		missing *MissingArgumentError
		invalid *InvalidArgumentsError
		te      safety.ToolError
	)
	switch {
	case errors.As(err, &unknown):
		return CodeUnknownTool
	case errors.As(err, &missing):
		return CodeMissingArgument
	case errors.As(err, &invalid):
		return CodeInvalidArguments
	case errors.As(err, &te):
		return te.Code
	}
	return CodeToolFailed
}

// ErrorOutput renders err as the JSON payload returned to the assistant in place of a result.
func ErrorOutput(err error) string {
	payload := map[string]any{
		"error": map[string]string{
			"code":    ErrorCode(err),
			"message": err.Error(),
		},
	}
	b, mErr := json.Marshal(payload)
	if mErr != nil {
		return `{"error":{"code":"` + CodeToolFailed + `"}}`
	}
	return string(b)
}
