//go:build cucumber

package httpapi_test

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/cucumber/godog"

	"github.com/petasbytes/support-bot/internal/conversation"
	"github.com/petasbytes/support-bot/internal/httpapi"
	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/internal/runner"
	"github.com/petasbytes/support-bot/tools"
)

// TestChatScenarios runs the gateway feature scenarios.
func TestChatScenarios(t *testing.T) {
	suite := godog.TestSuite{
		Name:                "chat-gateway",
		ScenarioInitializer: InitializeChatScenario,
		Options: &godog.Options{
			Format:    "pretty",
			Paths:     []string{filepath.Join("features", "chat.feature")},
			Strict:    true,
			TestingT:  t,
			Randomize: 0,
		},
	}
	if suite.Run() != 0 {
		t.Fatalf("non-zero godog status")
	}
}

// InitializeChatScenario wires steps for the chat gateway scenarios.
func InitializeChatScenario(ctx *godog.ScenarioContext) {
	state := &chatScenarioState{}
	ctx.Before(func(ctx context.Context, _ *godog.Scenario) (context.Context, error) {
		state.reset()
		return ctx, nil
	})

	ctx.Step(`^a started conversation$`, state.givenStartedConversation)
	ctx.Step(`^the assistant replies "([^"]*)"$`, state.givenAssistantReplies)
	ctx.Step(`^the assistant run ends with status "([^"]+)"$`, state.givenRunEndsWith)
	ctx.Step(`^the assistant run never finishes$`, state.givenRunNeverFinishes)
	ctx.Step(`^the assistant service does not know thread "([^"]+)"$`, state.givenUnknownThread)
	ctx.Step(`^I request GET "([^"]+)"$`, state.whenIGet)
	ctx.Step(`^I POST "([^"]+)" with body '([^']*)'$`, state.whenIPost)
	ctx.Step(`^I send the message "([^"]*)" on that thread$`, state.whenISendMessage)
	ctx.Step(`^the response status is (\d+)$`, state.thenResponseStatus)
	ctx.Step(`^the response has a thread_id$`, state.thenResponseHasThreadID)
	ctx.Step(`^the response field "([^"]+)" is "([^"]*)"$`, state.thenResponseField)
	ctx.Step(`^the recorded platform is "([^"]+)"$`, state.thenRecordedPlatform)
}

// scenarioAPI is an in-memory stand-in for the hosted assistants service.
type scenarioAPI struct {
	provider.API

	mu        sync.Mutex
	threads   map[string]string // id -> platform
	reply     string
	endStatus provider.RunStatus
}

func (a *scenarioAPI) CreateThread(_ context.Context, md map[string]string) (string, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	id := fmt.Sprintf("thread_%d", len(a.threads)+1)
	a.threads[id] = md["platform"]
	return id, nil
}

func (a *scenarioAPI) AddUserMessage(_ context.Context, threadID, _ string) error {
	a.mu.Lock()
	defer a.mu.Unlock()
	if _, ok := a.threads[threadID]; !ok {
		return errors.Join(provider.ErrNotFound, fmt.Errorf("no thread %s", threadID))
	}
	return nil
}

func (a *scenarioAPI) CreateRun(_ context.Context, threadID, _ string) (provider.Run, error) {
	return provider.Run{ID: "run_1", ThreadID: threadID, Status: provider.RunQueued}, nil
}

func (a *scenarioAPI) GetRun(_ context.Context, threadID, runID string) (provider.Run, error) {
	return provider.Run{ID: runID, ThreadID: threadID, Status: a.endStatus}, nil
}

func (a *scenarioAPI) SubmitToolOutputs(_ context.Context, threadID, runID string, _ []provider.ToolOutput) (provider.Run, error) {
	return provider.Run{ID: runID, ThreadID: threadID, Status: provider.RunQueued}, nil
}

func (a *scenarioAPI) CancelRun(context.Context, string, string) error { return nil }

func (a *scenarioAPI) LatestMessage(context.Context, string) (string, error) {
	return a.reply, nil
}

type nopLeadStore struct{}

func (nopLeadStore) CreateLead(context.Context, tools.Lead) (any, error) { return nil, nil }

type nopAnswerStore struct{}

func (nopAnswerStore) SaveAnswers(context.Context, string, tools.Answers) (any, error) {
	return nil, nil
}

// chatScenarioState holds scenario state for gateway feature tests.
type chatScenarioState struct {
	api      *scenarioAPI
	handler  http.Handler
	threadID string
	response *httptest.ResponseRecorder
}

func (s *chatScenarioState) reset() {
	s.api = &scenarioAPI{threads: map[string]string{}, endStatus: provider.RunCompleted}
	s.threadID = ""
	s.response = nil

	d, err := tools.NewDispatcher(tools.Registry(nopLeadStore{}, nopAnswerStore{}))
	if err != nil {
		panic(err)
	}
	r := runner.New(s.api, "asst_1", d, runner.Config{
		PollInterval: time.Millisecond,
		TurnTimeout:  time.Second,
		MaxPolls:     20,
	})
	s.handler = httpapi.NewHandler(httpapi.Config{
		Turns:         r,
		Conversations: &conversation.Initiator{API: s.api},
	})
}

func (s *chatScenarioState) givenStartedConversation() error {
	if err := s.whenIGet("/start"); err != nil {
		return err
	}
	var got struct {
		ThreadID string `json:"thread_id"`
	}
	if err := json.Unmarshal(s.response.Body.Bytes(), &got); err != nil {
		return err
	}
	s.threadID = got.ThreadID
	return nil
}

func (s *chatScenarioState) givenAssistantReplies(text string) error {
	s.api.reply = text
	return nil
}

func (s *chatScenarioState) givenRunEndsWith(status string) error {
	s.api.endStatus = provider.RunStatus(status)
	return nil
}

func (s *chatScenarioState) givenRunNeverFinishes() error {
	s.api.endStatus = provider.RunInProgress
	return nil
}

func (s *chatScenarioState) givenUnknownThread(id string) error {
	if _, ok := s.api.threads[id]; ok {
		return fmt.Errorf("thread %s unexpectedly exists", id)
	}
	return nil
}

func (s *chatScenarioState) whenIGet(path string) error {
	req := httptest.NewRequest(http.MethodGet, "http://example.com"+path, nil)
	s.response = httptest.NewRecorder()
	s.handler.ServeHTTP(s.response, req)
	return nil
}

func (s *chatScenarioState) whenIPost(path, body string) error {
	req := httptest.NewRequest(http.MethodPost, "http://example.com"+path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	s.response = httptest.NewRecorder()
	s.handler.ServeHTTP(s.response, req)
	return nil
}

func (s *chatScenarioState) whenISendMessage(text string) error {
	if s.threadID == "" {
		return fmt.Errorf("no conversation started")
	}
	b, err := json.Marshal(map[string]string{"thread_id": s.threadID, "message": text})
	if err != nil {
		return err
	}
	return s.whenIPost("/chat", string(b))
}

func (s *chatScenarioState) thenResponseStatus(expected int) error {
	if s.response == nil {
		return fmt.Errorf("response not recorded")
	}
	if s.response.Code != expected {
		return fmt.Errorf("expected status %d, got %d (%s)", expected, s.response.Code, s.response.Body.String())
	}
	return nil
}

func (s *chatScenarioState) thenResponseHasThreadID() error {
	return s.thenResponseFieldMatches("thread_id", func(v string) bool { return v != "" })
}

func (s *chatScenarioState) thenResponseField(field, want string) error {
	return s.thenResponseFieldMatches(field, func(v string) bool { return v == want })
}

func (s *chatScenarioState) thenResponseFieldMatches(field string, ok func(string) bool) error {
	if s.response == nil {
		return fmt.Errorf("response not recorded")
	}
	var m map[string]any
	if err := json.Unmarshal(s.response.Body.Bytes(), &m); err != nil {
		return fmt.Errorf("parse response: %w", err)
	}
	v, _ := m[field].(string)
	if !ok(v) {
		return fmt.Errorf("unexpected %s %q in %s", field, v, s.response.Body.String())
	}
	return nil
}

func (s *chatScenarioState) thenRecordedPlatform(want string) error {
	for _, p := range s.api.threads {
		if p == want {
			return nil
		}
	}
	return fmt.Errorf("no thread recorded with platform %q: %v", want, s.api.threads)
}
