package provider

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	openai "github.com/sashabaranov/go-openai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = openai.GPT4o

// listPageSize is the page size used when scanning assistants by name.
const listPageSize = 100

// OpenAI implements API on top of the hosted Assistants endpoints.
type OpenAI struct {
	Client *openai.Client
}

// NewOpenAIClient returns a client for apiKey. baseURL and httpClient are optional.
func NewOpenAIClient(apiKey, baseURL string, httpClient *http.Client) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = strings.TrimRight(baseURL, "/")
	}
	if httpClient != nil {
		cfg.HTTPClient = httpClient
	}
	return &OpenAI{Client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) FindAssistant(ctx context.Context, name string) (string, bool, error) {
	limit := listPageSize
	order := "desc"
	var after *string
	for {
		page, err := o.Client.ListAssistants(ctx, &limit, &order, after, nil)
		if err != nil {
			return "", false, fmt.Errorf("list assistants: %w", mapErr(err))
		}
		for _, a := range page.Assistants {
			if a.Name != nil && *a.Name == name {
				return a.ID, true, nil
			}
		}
		if !page.HasMore || page.LastID == nil || *page.LastID == "" {
			return "", false, nil
		}
		after = page.LastID
	}
}

func (o *OpenAI) CreateAssistant(ctx context.Context, spec AssistantSpec) (string, error) {
	a, err := o.Client.CreateAssistant(ctx, assistantRequest(spec))
	if err != nil {
		return "", fmt.Errorf("create assistant: %w", mapErr(err))
	}
	return a.ID, nil
}

func (o *OpenAI) UpdateAssistant(ctx context.Context, id string, spec AssistantSpec) error {
	if _, err := o.Client.ModifyAssistant(ctx, id, assistantRequest(spec)); err != nil {
		return fmt.Errorf("modify assistant %s: %w", id, mapErr(err))
	}
	return nil
}

func assistantRequest(spec AssistantSpec) openai.AssistantRequest {
	name := spec.Name
	instructions := spec.Instructions
	model := spec.Model
	if model == "" {
		model = DefaultModel
	}
	tools := make([]openai.AssistantTool, 0, len(spec.Functions))
	for _, f := range spec.Functions {
		tools = append(tools, openai.AssistantTool{
			Type: openai.AssistantToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        f.Name,
				Description: f.Description,
				Parameters:  f.Parameters,
			},
		})
	}
	return openai.AssistantRequest{
		Model:        model,
		Name:         &name,
		Instructions: &instructions,
		Tools:        tools,
	}
}

func (o *OpenAI) CreateThread(ctx context.Context, metadata map[string]string) (string, error) {
	req := openai.ThreadRequest{}
	if len(metadata) > 0 {
		req.Metadata = make(map[string]any, len(metadata))
		for k, v := range metadata {
			req.Metadata[k] = v
		}
	}
	th, err := o.Client.CreateThread(ctx, req)
	if err != nil {
		return "", fmt.Errorf("create thread: %w", mapErr(err))
	}
	return th.ID, nil
}

func (o *OpenAI) AddUserMessage(ctx context.Context, threadID, text string) error {
	_, err := o.Client.CreateMessage(ctx, threadID, openai.MessageRequest{
		Role:    "user",
		Content: text,
	})
	if err != nil {
		return fmt.Errorf("add message to thread %s: %w", threadID, mapErr(err))
	}
	return nil
}

// LatestMessage returns the text of the newest message in the thread.
// Non-text content parts are skipped; multiple text parts are joined by newlines.
func (o *OpenAI) LatestMessage(ctx context.Context, threadID string) (string, error) {
	limit := 1
	order := "desc"
	list, err := o.Client.ListMessage(ctx, threadID, &limit, &order, nil, nil, nil)
	if err != nil {
		return "", fmt.Errorf("list messages for thread %s: %w", threadID, mapErr(err))
	}
	if len(list.Messages) == 0 {
		return "", fmt.Errorf("thread %s has no messages", threadID)
	}
	var parts []string
	for _, c := range list.Messages[0].Content {
		if c.Text != nil {
			parts = append(parts, c.Text.Value)
		}
	}
	return strings.Join(parts, "\n"), nil
}

func (o *OpenAI) CreateRun(ctx context.Context, threadID, assistantID string) (Run, error) {
	r, err := o.Client.CreateRun(ctx, threadID, openai.RunRequest{AssistantID: assistantID})
	if err != nil {
		return Run{}, fmt.Errorf("create run on thread %s: %w", threadID, mapErr(err))
	}
	return fromRun(r), nil
}

func (o *OpenAI) GetRun(ctx context.Context, threadID, runID string) (Run, error) {
	r, err := o.Client.RetrieveRun(ctx, threadID, runID)
	if err != nil {
		return Run{}, fmt.Errorf("retrieve run %s: %w", runID, mapErr(err))
	}
	return fromRun(r), nil
}

func (o *OpenAI) SubmitToolOutputs(ctx context.Context, threadID, runID string, outputs []ToolOutput) (Run, error) {
	req := openai.SubmitToolOutputsRequest{ToolOutputs: make([]openai.ToolOutput, 0, len(outputs))}
	for _, out := range outputs {
		req.ToolOutputs = append(req.ToolOutputs, openai.ToolOutput{
			ToolCallID: out.ToolCallID,
			Output:     out.Output,
		})
	}
	r, err := o.Client.SubmitToolOutputs(ctx, threadID, runID, req)
	if err != nil {
		return Run{}, fmt.Errorf("submit tool outputs for run %s: %w", runID, mapErr(err))
	}
	return fromRun(r), nil
}

func (o *OpenAI) CancelRun(ctx context.Context, threadID, runID string) error {
	if _, err := o.Client.CancelRun(ctx, threadID, runID); err != nil {
		return fmt.Errorf("cancel run %s: %w", runID, mapErr(err))
	}
	return nil
}

func fromRun(r openai.Run) Run {
	out := Run{
		ID:       r.ID,
		ThreadID: r.ThreadID,
		Status:   RunStatus(r.Status),
	}
	if r.LastError != nil {
		out.ErrorCode = string(r.LastError.Code)
		out.ErrorMessage = r.LastError.Message
	}
	if r.RequiredAction != nil && r.RequiredAction.SubmitToolOutputs != nil {
		for _, tc := range r.RequiredAction.SubmitToolOutputs.ToolCalls {
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				ID:        tc.ID,
				Name:      tc.Function.Name,
				Arguments: tc.Function.Arguments,
			})
		}
	}
	return out
}

// mapErr folds 404 responses into ErrNotFound while keeping the SDK error in the chain.
func mapErr(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusNotFound {
		return errors.Join(ErrNotFound, err)
	}
	return err
}
