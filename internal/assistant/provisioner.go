// Package assistant makes sure the hosted assistant exists and matches the local tool set.
package assistant

import (
	"context"
	"errors"
	"fmt"

	"github.com/petasbytes/support-bot/internal/provider"
	"github.com/petasbytes/support-bot/tools"
)

// Definition is the locally owned part of the assistant.
type Definition struct {
	Name         string `yaml:"name"`
	Model        string `yaml:"model"`
	Instructions string `yaml:"instructions"`
}

type Provisioner struct {
	API        provider.API
	Definition Definition
	Tools      *tools.Dispatcher

	// AssistantID pins an existing assistant and skips the lookup entirely.
	AssistantID string
}

// Spec builds the remote definition from Definition and the dispatcher's tools.
func (p *Provisioner) Spec() provider.AssistantSpec {
	defs := p.Tools.Definitions()
	fns := make([]provider.FunctionSpec, 0, len(defs))
	for _, d := range defs {
		fns = append(fns, provider.FunctionSpec{
			Name:        d.Name,
			Description: d.Description,
			Parameters:  d.Parameters(),
		})
	}
	return provider.AssistantSpec{
		Name:         p.Definition.Name,
		Model:        p.Definition.Model,
		Instructions: p.Definition.Instructions,
		Functions:    fns,
	}
}

// EnsureAssistant returns the id of an assistant named Definition.Name, updating it
// to the current definition when it already exists and creating it otherwise.
func (p *Provisioner) EnsureAssistant(ctx context.Context) (string, error) {
	if p.AssistantID != "" {
		return p.AssistantID, nil
	}
	if p.Definition.Name == "" {
		return "", errors.New("assistant name is empty")
	}

	spec := p.Spec()
	id, found, err := p.API.FindAssistant(ctx, spec.Name)
	if err != nil {
		return "", fmt.Errorf("look up assistant %q: %w", spec.Name, err)
	}
	if found {
		if err := p.API.UpdateAssistant(ctx, id, spec); err != nil {
			return "", fmt.Errorf("update assistant %q: %w", spec.Name, err)
		}
		return id, nil
	}

	id, err = p.API.CreateAssistant(ctx, spec)
	if err != nil {
		return "", fmt.Errorf("create assistant %q: %w", spec.Name, err)
	}
	return id, nil
}
