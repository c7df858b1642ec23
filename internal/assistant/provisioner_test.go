package assistant_test

import (
	"context"
	"errors"
	"testing"

	"github.com/petasbytes/support-bot/internal/assistant"
	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/tools"
)

type fakeAPI struct {
	provider.API // unused methods panic

	existing map[string]string // name -> id
	findErr  error

	created []provider.AssistantSpec
	updated map[string]provider.AssistantSpec
}

func (f *fakeAPI) FindAssistant(_ context.Context, name string) (string, bool, error) {
	if f.findErr != nil {
		return "", false, f.findErr
	}
	id, ok := f.existing[name]
	return id, ok, nil
}

func (f *fakeAPI) CreateAssistant(_ context.Context, spec provider.AssistantSpec) (string, error) {
	f.created = append(f.created, spec)
	if f.existing == nil {
		f.existing = map[string]string{}
	}
	f.existing[spec.Name] = "asst_new"
	return "asst_new", nil
}

func (f *fakeAPI) UpdateAssistant(_ context.Context, id string, spec provider.AssistantSpec) error {
	if f.updated == nil {
		f.updated = map[string]provider.AssistantSpec{}
	}
	f.updated[id] = spec
	return nil
}

type nopLeads struct{}

func (nopLeads) CreateLead(context.Context, tools.Lead) (any, error) { return nil, nil }

type nopAnswers struct{}

func (nopAnswers) SaveAnswers(context.Context, string, tools.Answers) (any, error) { return nil, nil }

func newProvisioner(t *testing.T, api provider.API) *assistant.Provisioner {
	t.Helper()
	d, err := tools.NewDispatcher(tools.Registry(nopLeads{}, nopAnswers{}))
	if err != nil {
		t.Fatalf("NewDispatcher: %v", err)
	}
	return &assistant.Provisioner{
		API:   api,
		Tools: d,
		Definition: assistant.Definition{
			Name:         "Customer Support Assistant",
			Model:        "gpt-4o",
			Instructions: "Help customers.",
		},
	}
}

func TestEnsureAssistant_CreatesWhenMissing(t *testing.T) {
	api := &fakeAPI{}
	p := newProvisioner(t, api)

	id, err := p.EnsureAssistant(context.Background())
	if err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if id != "asst_new" || len(api.created) != 1 {
		t.Fatalf("expected one create, got id=%q created=%d", id, len(api.created))
	}
	spec := api.created[0]
	if spec.Model != "gpt-4o" || spec.Instructions != "Help customers." {
		t.Fatalf("unexpected spec: %+v", spec)
	}
	if len(spec.Functions) != 2 || spec.Functions[0].Name != "create_lead" || spec.Functions[1].Name != "save_answers" {
		t.Fatalf("unexpected functions: %+v", spec.Functions)
	}
	params, ok := spec.Functions[0].Parameters.(map[string]any)
	if !ok || params["type"] != "object" {
		t.Fatalf("parameters should be an object schema, got %#v", spec.Functions[0].Parameters)
	}
}

func TestEnsureAssistant_ReusesByNameAndUpdates(t *testing.T) {
	api := &fakeAPI{existing: map[string]string{"Customer Support Assistant": "asst_old"}}
	p := newProvisioner(t, api)

	for i := 0; i < 2; i++ {
		id, err := p.EnsureAssistant(context.Background())
		if err != nil {
			t.Fatalf("unexpected err: %v", err)
		}
		if id != "asst_old" {
			t.Fatalf("id: got %q want asst_old", id)
		}
	}
	if len(api.created) != 0 {
		t.Fatalf("must not create a duplicate, created %d", len(api.created))
	}
	if _, ok := api.updated["asst_old"]; !ok {
		t.Fatal("existing assistant should be updated to the current definition")
	}
}

func TestEnsureAssistant_PinnedIDSkipsLookup(t *testing.T) {
	api := &fakeAPI{findErr: errors.New("should not be called")}
	p := newProvisioner(t, api)
	p.AssistantID = "asst_pinned"

	id, err := p.EnsureAssistant(context.Background())
	if err != nil || id != "asst_pinned" {
		t.Fatalf("got id=%q err=%v", id, err)
	}
}

func TestEnsureAssistant_LookupErrorIsWrapped(t *testing.T) {
	boom := errors.New("503")
	api := &fakeAPI{findErr: boom}
	p := newProvisioner(t, api)

	if _, err := p.EnsureAssistant(context.Background()); !errors.Is(err, boom) {
		t.Fatalf("expected wrapped lookup error, got %v", err)
	}
	if len(api.created) != 0 {
		t.Fatal("must not create after a failed lookup")
	}
}
