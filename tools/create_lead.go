package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

type CreateLeadInput struct {
	Name    string `json:"name" jsonschema_description:"Full name of the lead."`
	Phone   string `json:"phone" jsonschema_description:"Phone number of the lead."`
	Address string `json:"address" jsonschema_description:"Street address of the lead."`
	Email   string `json:"email" jsonschema_description:"Email address of the lead."`
}

// Lead is what the lead store receives; fields are forwarded exactly as the assistant sent them.
type Lead struct {
	ThreadID string
	Name     string
	Phone    string
	Address  string
	Email    string
}

// LeadStore persists leads. The returned value is JSON-encoded and handed back to the assistant unchanged.
type LeadStore interface {
	CreateLead(ctx context.Context, lead Lead) (any, error)
}

var CreateLeadInputSchema = GenerateSchema[CreateLeadInput]()

// CreateLeadDefinition builds the create_lead tool on top of store.
func CreateLeadDefinition(store LeadStore) ToolDefinition {
	return ToolDefinition{
		Name:        "create_lead",
		Description: "Capture lead details (name, phone, address and email) for follow-up by the sales team.",
		InputSchema: CreateLeadInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var in CreateLeadInput
			if err := json.Unmarshal(input, &in); err != nil {
				return "", &InvalidArgumentsError{Tool: "create_lead", Reason: err.Error()}
			}
			threadID, _ := ThreadIDFromContext(ctx)
			res, err := store.CreateLead(ctx, Lead{
				ThreadID: threadID,
				Name:     in.Name,
				Phone:    in.Phone,
				Address:  in.Address,
				Email:    in.Email,
			})
			if err != nil {
				return "", fmt.Errorf("create lead: %w", err)
			}
			b, err := json.Marshal(res)
			if err != nil {
				return "", fmt.Errorf("encode lead result: %w", err)
			}
			return string(b), nil
		},
	}
}
