package runner

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/internal/telemetry"
	"github.com/petasbytes/support-bot/tools"
)

// Defaults applied by New when a Config field is zero.
const (
	DefaultPollInterval    = 500 * time.Millisecond
	DefaultToolSubmitDelay = time.Second
	DefaultTurnTimeout     = 2 * time.Minute
	DefaultMaxPolls        = 600
)

// cancelTimeout bounds the best-effort cancel sent after a timed-out turn.
const cancelTimeout = 5 * time.Second

// Config bounds a single turn.
type Config struct {
	PollInterval    time.Duration // pause between status checks
	ToolSubmitDelay time.Duration // pause before submitting a batch of tool outputs
	TurnTimeout     time.Duration // wall-clock cap on one turn
	MaxPolls        int           // cap on status checks in one turn
}

// SleepFunc waits for d or until ctx is done.
type SleepFunc func(ctx context.Context, d time.Duration) error

type Runner struct {
	API         provider.API
	AssistantID string
	Tools       *tools.Dispatcher
	Config      Config

	// Sleep is swapped out in tests; nil means a real, context-aware sleep.
	Sleep SleepFunc
}

func New(api provider.API, assistantID string, dispatcher *tools.Dispatcher, cfg Config) *Runner {
	if cfg.PollInterval <= 0 {
		cfg.PollInterval = DefaultPollInterval
	}
	if cfg.ToolSubmitDelay < 0 {
		cfg.ToolSubmitDelay = 0
	}
	if cfg.TurnTimeout <= 0 {
		cfg.TurnTimeout = DefaultTurnTimeout
	}
	if cfg.MaxPolls <= 0 {
		cfg.MaxPolls = DefaultMaxPolls
	}
	return &Runner{API: api, AssistantID: assistantID, Tools: dispatcher, Config: cfg, Sleep: sleepCtx}
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// turn carries the mutable state of one ExecuteTurn call.
type turn struct {
	id       string
	threadID string
	run      provider.Run
	state    State
	polls    int
	start    time.Time
}

// ExecuteTurn appends message to the thread, starts a run and polls it to completion,
// answering tool calls along the way. It returns the newest message on the thread.
func (r *Runner) ExecuteTurn(ctx context.Context, threadID, message string) (string, error) {
	if threadID == "" {
		return "", ErrMissingThread
	}

	turnID, ok := telemetry.TurnIDFromContext(ctx)
	if !ok {
		turnID = telemetry.NewTurnID()
	}
	ctx = telemetry.WithTurnID(ctx, turnID)
	ctx, cancel := context.WithTimeoutCause(ctx, r.Config.TurnTimeout, ErrRunTimeout)
	defer cancel()

	t := &turn{id: turnID, threadID: threadID, state: StateStarted, start: time.Now()}
	in := telemetry.CountFeatures(message)
	telemetry.Emit("turn_started", map[string]any{
		"turn_id":     turnID,
		"thread_id":   threadID,
		"input_bytes": in.Bytes,
		"input_words": in.Words,
	})

	reply, err := r.drive(ctx, t, message)
	if err != nil {
		r.fail(ctx, t, err)
		return "", err
	}

	out := telemetry.CountFeatures(reply)
	telemetry.Emit("turn_completed", map[string]any{
		"turn_id":      turnID,
		"thread_id":    threadID,
		"run_id":       t.run.ID,
		"polls":        t.polls,
		"duration_ms":  time.Since(t.start).Milliseconds(),
		"output_bytes": out.Bytes,
		"output_words": out.Words,
	})
	return reply, nil
}

func (r *Runner) drive(ctx context.Context, t *turn, message string) (string, error) {
	if err := r.API.AddUserMessage(ctx, t.threadID, message); err != nil {
		if errors.Is(err, provider.ErrNotFound) {
			return "", fmt.Errorf("%w: %s", ErrMissingThread, t.threadID)
		}
		return "", r.ctxErr(ctx, t, err)
	}

	run, err := r.API.CreateRun(ctx, t.threadID, r.AssistantID)
	if err != nil {
		return "", r.ctxErr(ctx, t, err)
	}
	t.run = run
	t.state = StateFor(run.Status)
	vlogf("turn %s: run %s created (%s)\n", t.id, run.ID, run.Status)

	for {
		if t.polls >= r.Config.MaxPolls {
			return "", r.timeout(t)
		}
		run, err := r.API.GetRun(ctx, t.threadID, t.run.ID)
		if err != nil {
			return "", r.ctxErr(ctx, t, err)
		}
		t.polls++
		t.run = run
		t.state = StateFor(run.Status)
		telemetry.Emit("run_polled", map[string]any{
			"turn_id": t.id,
			"run_id":  run.ID,
			"status":  string(run.Status),
			"poll":    t.polls,
		})

		switch t.state {
		case StateCompleted:
			reply, err := r.API.LatestMessage(ctx, t.threadID)
			if err != nil {
				return "", r.ctxErr(ctx, t, err)
			}
			return reply, nil

		case StateFailed:
			return "", &RunFailedError{
				RunID:   run.ID,
				Status:  run.Status,
				Code:    run.ErrorCode,
				Message: run.ErrorMessage,
			}

		case StateRequiresAction:
			if len(run.ToolCalls) == 0 {
				// Nothing to answer yet; keep polling.
				if err := r.sleep(ctx, r.Config.PollInterval); err != nil {
					return "", r.ctxErr(ctx, t, err)
				}
				continue
			}
			outputs := r.execTools(ctx, t.threadID, run.ToolCalls)
			if err := r.sleep(ctx, r.Config.ToolSubmitDelay); err != nil {
				return "", r.ctxErr(ctx, t, err)
			}
			next, err := r.API.SubmitToolOutputs(ctx, t.threadID, run.ID, outputs)
			if err != nil {
				return "", r.ctxErr(ctx, t, err)
			}
			telemetry.Emit("tool_outputs_submitted", map[string]any{
				"turn_id": t.id,
				"run_id":  run.ID,
				"count":   len(outputs),
			})
			if next.ID != "" {
				t.run = next
				t.state = StateFor(next.Status)
			}

		default:
			if err := r.sleep(ctx, r.Config.PollInterval); err != nil {
				return "", r.ctxErr(ctx, t, err)
			}
		}
	}
}

func (r *Runner) sleep(ctx context.Context, d time.Duration) error {
	if r.Sleep == nil {
		return sleepCtx(ctx, d)
	}
	return r.Sleep(ctx, d)
}

// ctxErr converts an error seen after the turn deadline fired into RunTimeoutError.
// Cancellation by the caller is passed through unchanged.
func (r *Runner) ctxErr(ctx context.Context, t *turn, err error) error {
	if errors.Is(context.Cause(ctx), ErrRunTimeout) {
		return r.timeout(t)
	}
	return err
}

func (r *Runner) timeout(t *turn) error {
	t.state = StateTimedOut
	return &RunTimeoutError{RunID: t.run.ID, Polls: t.polls, Elapsed: time.Since(t.start)}
}

func (r *Runner) fail(ctx context.Context, t *turn, err error) {
	var te *RunTimeoutError
	if errors.As(err, &te) && t.run.ID != "" {
		// The turn context is already done; cancel on a detached one.
		cctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), cancelTimeout)
		defer cancel()
		if cErr := r.API.CancelRun(cctx, t.threadID, t.run.ID); cErr != nil {
			vlogf("turn %s: cancel run %s: %v\n", t.id, t.run.ID, cErr)
		}
	}
	if t.state != StateTimedOut {
		t.state = StateFailed
	}
	telemetry.Emit("turn_failed", map[string]any{
		"turn_id":     t.id,
		"thread_id":   t.threadID,
		"run_id":      t.run.ID,
		"state":       t.state.String(),
		"polls":       t.polls,
		"duration_ms": time.Since(t.start).Milliseconds(),
		"error":       errorKind(err),
	})
}

// errorKind names the failure without leaking provider messages into telemetry.
func errorKind(err error) string {
	var (
		failed  *RunFailedError
		timeout *RunTimeoutError
	)
	switch {
	case errors.As(err, &failed):
		return "run_" + string(failed.Status)
	case errors.As(err, &timeout):
		return "timeout"
	case errors.Is(err, ErrMissingThread):
		return "missing_thread"
	case errors.Is(err, context.Canceled):
		return "canceled"
	}
	return "provider_error"
}

func vlogf(format string, args ...any) {
	if os.Getenv("AGT_VERBOSE") == "1" {
		fmt.Printf(format, args...)
	}
}
