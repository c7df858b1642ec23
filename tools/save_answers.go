package tools

import (
	"context"
	"encoding/json"
	"fmt"
)

// SaveAnswersInput is the fixed survey schema. Every field is optional.
type SaveAnswersInput struct {
	FullName    string `json:"full_name,omitempty" jsonschema_description:"Full name of the respondent."`
	Phone       string `json:"phone,omitempty" jsonschema_description:"Phone number of the respondent."`
	Email       string `json:"email,omitempty" jsonschema_description:"Email address of the respondent."`
	StreetName  string `json:"street_name,omitempty" jsonschema_description:"Street name and number."`
	ZipCode     string `json:"zip_code,omitempty" jsonschema_description:"Postal code."`
	City        string `json:"city,omitempty" jsonschema_description:"City."`
	ServiceType string `json:"service_type,omitempty" jsonschema_description:"Requested service type."`

	OT1 string `json:"ot1,omitempty"`
	OT2 string `json:"ot2,omitempty"`
	OT3 string `json:"ot3,omitempty"`
	OT4 string `json:"ot4,omitempty"`
	OT5 string `json:"ot5,omitempty"`

	RC1 string `json:"rc1,omitempty"`
	RC2 string `json:"rc2,omitempty"`
	RC3 string `json:"rc3,omitempty"`
	RC4 string `json:"rc4,omitempty"`
	RC5 string `json:"rc5,omitempty"`

	PC1 string `json:"pc1,omitempty"`
	PC2 string `json:"pc2,omitempty"`
	PC3 string `json:"pc3,omitempty"`
	PC4 string `json:"pc4,omitempty"`
	PC5 string `json:"pc5,omitempty"`
	PC6 string `json:"pc6,omitempty"`

	WW1 string `json:"ww1,omitempty"`
	WW2 string `json:"ww2,omitempty"`
	WW3 string `json:"ww3,omitempty"`
	WW4 string `json:"ww4,omitempty"`
	WW5 string `json:"ww5,omitempty"`

	CC1 string `json:"cc1,omitempty"`
	CC2 string `json:"cc2,omitempty"`
	CC3 string `json:"cc3,omitempty"`
	CC4 string `json:"cc4,omitempty"`

	SC1 string `json:"sc1,omitempty"`
	SC2 string `json:"sc2,omitempty"`
	SC3 string `json:"sc3,omitempty"`
	SC4 string `json:"sc4,omitempty"`
}

// AnswerFields lists the survey keys in sheet column order. Keep in sync with SaveAnswersInput.
var AnswerFields = []string{
	"full_name", "phone", "email", "street_name", "zip_code", "city", "service_type",
	"ot1", "ot2", "ot3", "ot4", "ot5",
	"rc1", "rc2", "rc3", "rc4", "rc5",
	"pc1", "pc2", "pc3", "pc4", "pc5", "pc6",
	"ww1", "ww2", "ww3", "ww4", "ww5",
	"cc1", "cc2", "cc3", "cc4",
	"sc1", "sc2", "sc3", "sc4",
}

// Answers maps every key in AnswerFields to its value; omitted answers are "".
type Answers map[string]string

// Values returns the answers in AnswerFields order.
func (a Answers) Values() []string {
	out := make([]string, len(AnswerFields))
	for i, k := range AnswerFields {
		out[i] = a[k]
	}
	return out
}

// NewAnswers fills defaults for every defined field. Keys outside AnswerFields are dropped.
func NewAnswers(partial map[string]string) Answers {
	a := make(Answers, len(AnswerFields))
	for _, k := range AnswerFields {
		a[k] = partial[k]
	}
	return a
}

// AnswerStore persists one completed survey.
type AnswerStore interface {
	SaveAnswers(ctx context.Context, threadID string, answers Answers) (any, error)
}

var SaveAnswersInputSchema = GenerateSchema[SaveAnswersInput]()

// SaveAnswersDefinition builds the save_answers tool on top of store.
func SaveAnswersDefinition(store AnswerStore) ToolDefinition {
	return ToolDefinition{
		Name:        "save_answers",
		Description: "Store the customer's survey answers once the questionnaire is finished. Omit questions that were not answered.",
		InputSchema: SaveAnswersInputSchema,
		Function: func(ctx context.Context, input json.RawMessage) (string, error) {
			var partial map[string]string
			if err := json.Unmarshal(input, &partial); err != nil {
				return "", &InvalidArgumentsError{Tool: "save_answers", Reason: err.Error()}
			}
			threadID, _ := ThreadIDFromContext(ctx)
			res, err := store.SaveAnswers(ctx, threadID, NewAnswers(partial))
			if err != nil {
				return "", fmt.Errorf("save answers: %w", err)
			}
			b, err := json.Marshal(res)
			if err != nil {
				return "", fmt.Errorf("encode answers result: %w", err)
			}
			return string(b), nil
		},
	}
}

// AnswerStores fans a survey out to several stores in order. The first store's
// result is returned; the first error stops the fan-out.
type AnswerStores []AnswerStore

func (s AnswerStores) SaveAnswers(ctx context.Context, threadID string, answers Answers) (any, error) {
	var first any
	for i, store := range s {
		res, err := store.SaveAnswers(ctx, threadID, answers)
		if err != nil {
			return nil, err
		}
		if i == 0 {
			first = res
		}
	}
	return first, nil
}
