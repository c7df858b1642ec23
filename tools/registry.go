package tools

import (
	"context"
	"encoding/json"
	"fmt"

	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// Registry returns all tool definitions wired for the assistant.
func Registry(leads LeadStore, answers AnswerStore) []ToolDefinition {
	return []ToolDefinition{CreateLeadDefinition(leads), SaveAnswersDefinition(answers)}
}

type compiledTool struct {
	def    ToolDefinition
	schema *sjsonschema.Schema
}

// Dispatcher routes tool calls by name. It is safe for concurrent use once built.
type Dispatcher struct {
	defs  []ToolDefinition
	tools map[string]compiledTool
}

// NewDispatcher compiles every definition's input schema up front.
func NewDispatcher(defs []ToolDefinition) (*Dispatcher, error) {
	d := &Dispatcher{defs: defs, tools: make(map[string]compiledTool, len(defs))}
	for _, def := range defs {
		if _, dup := d.tools[def.Name]; dup {
			return nil, fmt.Errorf("duplicate tool %q", def.Name)
		}
		s, err := def.compile()
		if err != nil {
			return nil, err
		}
		d.tools[def.Name] = compiledTool{def: def, schema: s}
	}
	return d, nil
}

// Definitions returns the registered tools in registration order.
func (d *Dispatcher) Definitions() []ToolDefinition {
	return d.defs
}

// Dispatch validates arguments and runs the named tool, returning its JSON result.
func (d *Dispatcher) Dispatch(ctx context.Context, name, arguments string) (string, error) {
	t, ok := d.tools[name]
	if !ok {
		return "", &UnknownToolError{Name: name}
	}
	input := json.RawMessage(arguments)
	if len(input) == 0 {
		input = json.RawMessage("{}")
	}
	if err := t.def.validate(t.schema, input); err != nil {
		return "", err
	}
	return t.def.Function(ctx, input)
}
