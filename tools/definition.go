package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/invopop/jsonschema"
	sjsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// HandlerFunc executes a tool with already validated JSON arguments and returns a JSON result.
type HandlerFunc func(ctx context.Context, input json.RawMessage) (string, error)

type ToolDefinition struct {
	Name        string
	Description string
	InputSchema *jsonschema.Schema
	Function    HandlerFunc
}

// GenerateSchema reflects T into an inline object schema. Fields without
// omitempty are required; unknown properties are rejected.
func GenerateSchema[T any]() *jsonschema.Schema {
	reflector := jsonschema.Reflector{
		AllowAdditionalProperties: false,
		DoNotReference:            true,
		ExpandedStruct:            true,
		Anonymous:                 true,
	}
	var v T
	s := reflector.Reflect(v)
	s.Version = ""
	return s
}

// Parameters returns the schema as a plain JSON value suitable for the assistant tool declaration.
func (d ToolDefinition) Parameters() map[string]any {
	b, err := json.Marshal(d.InputSchema)
	if err != nil {
		return map[string]any{"type": "object"}
	}
	var m map[string]any
	if err := json.Unmarshal(b, &m); err != nil {
		return map[string]any{"type": "object"}
	}
	return m
}

func (d ToolDefinition) compile() (*sjsonschema.Schema, error) {
	b, err := json.Marshal(d.InputSchema)
	if err != nil {
		return nil, fmt.Errorf("marshal schema for %s: %w", d.Name, err)
	}
	url := d.Name + ".schema.json"
	c := sjsonschema.NewCompiler()
	if err := c.AddResource(url, bytes.NewReader(b)); err != nil {
		return nil, fmt.Errorf("add schema for %s: %w", d.Name, err)
	}
	s, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile schema for %s: %w", d.Name, err)
	}
	return s, nil
}

// validate checks raw arguments against the input schema. Missing or blank
// required fields are reported as MissingArgumentError; anything else that
// fails the schema is an InvalidArgumentsError.
func (d ToolDefinition) validate(compiled *sjsonschema.Schema, input json.RawMessage) error {
	var doc any
	if err := json.Unmarshal(input, &doc); err != nil {
		return &InvalidArgumentsError{Tool: d.Name, Reason: "arguments are not valid JSON: " + err.Error()}
	}
	obj, ok := doc.(map[string]any)
	if !ok {
		return &InvalidArgumentsError{Tool: d.Name, Reason: "arguments must be a JSON object"}
	}

	var missing []string
	for _, name := range d.InputSchema.Required {
		v, present := obj[name]
		if !present || v == nil {
			missing = append(missing, name)
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return &MissingArgumentError{Tool: d.Name, Fields: missing}
	}

	if err := compiled.Validate(doc); err != nil {
		return &InvalidArgumentsError{Tool: d.Name, Reason: err.Error()}
	}
	return nil
}
