// Package tools defines the functions the hosted assistant may call back into.
//
// Includes:
//   - ToolDefinition: name, description, JSON input schema, handler.
//   - GenerateSchema[T](): derive JSON Schema from Go structs; the same schema is
//     sent to the assistant and used to validate incoming arguments.
//   - create_lead and save_answers, backed by LeadStore and AnswerStore.
//   - Dispatcher: name lookup plus typed errors for unknown tools and bad arguments.
//   - Invariant: every requested call produces exactly one output, errors included.
package tools
