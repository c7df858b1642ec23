package runner_test

import (
	"bufio"
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/petasbytes/support-bot/internal/provider"
)

// fakeAPI replays a scripted sequence of run statuses and records submissions.
type fakeAPI struct {
	mu sync.Mutex

	addErr    error
	createErr error
	reply     string

	runs      []provider.Run // returned by successive GetRun calls; the last one repeats
	polls     int
	messages  []string
	submitted [][]provider.ToolOutput
	cancelled []string
}

func (f *fakeAPI) FindAssistant(context.Context, string) (string, bool, error) { return "", false, nil }
func (f *fakeAPI) CreateAssistant(context.Context, provider.AssistantSpec) (string, error) {
	return "", errors.New("not used")
}
func (f *fakeAPI) UpdateAssistant(context.Context, string, provider.AssistantSpec) error { return nil }
func (f *fakeAPI) CreateThread(context.Context, map[string]string) (string, error) {
	return "thread_1", nil
}

func (f *fakeAPI) AddUserMessage(_ context.Context, _ string, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return f.addErr
	}
	f.messages = append(f.messages, text)
	return nil
}

func (f *fakeAPI) LatestMessage(context.Context, string) (string, error) {
	return f.reply, nil
}

func (f *fakeAPI) CreateRun(_ context.Context, threadID, _ string) (provider.Run, error) {
	if f.createErr != nil {
		return provider.Run{}, f.createErr
	}
	return provider.Run{ID: "run_1", ThreadID: threadID, Status: provider.RunQueued}, nil
}

func (f *fakeAPI) GetRun(ctx context.Context, _, _ string) (provider.Run, error) {
	if err := ctx.Err(); err != nil {
		return provider.Run{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.polls
	if i >= len(f.runs) {
		i = len(f.runs) - 1
	}
	f.polls++
	return f.runs[i], nil
}

func (f *fakeAPI) SubmitToolOutputs(_ context.Context, _, runID string, outputs []provider.ToolOutput) (provider.Run, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.submitted = append(f.submitted, outputs)
	return provider.Run{ID: runID, Status: provider.RunQueued}, nil
}

func (f *fakeAPI) CancelRun(_ context.Context, _, runID string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.cancelled = append(f.cancelled, runID)
	return nil
}

// recordSleep returns a SleepFunc that records durations without waiting.
func recordSleep(got *[]time.Duration) func(context.Context, time.Duration) error {
	return func(ctx context.Context, d time.Duration) error {
		*got = append(*got, d)
		return ctx.Err()
	}
}

// chdirTemp switches into a fresh temp dir for the duration of the test.
func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func readEventLines(t *testing.T) []string {
	t.Helper()
	f, err := os.Open(filepath.Join(".agent", "events.jsonl"))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		t.Fatalf("open events: %v", err)
	}
	defer f.Close()
	var lines []string
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		lines = append(lines, sc.Text())
	}
	if err := sc.Err(); err != nil {
		t.Fatalf("scan events: %v", err)
	}
	return lines
}
