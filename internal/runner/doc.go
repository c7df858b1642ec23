// Package runner drives one chat turn against a hosted assistant run and
// dispatches the tool calls the run asks for.
//
// Invariant:
//   - every tool call surfaced by a requires_action run gets exactly one output,
//     and all outputs of that batch are submitted together in a single call.
//
// Flow:
//
//	user(text) -> run(queued|in_progress)* -> run(requires_action) -> outputs -> ... -> run(completed) -> reply
//
// A turn is bounded by a wall-clock timeout and a poll budget. Failed, cancelled,
// expired and incomplete runs end the turn with RunFailedError.
package runner
