package usecase

import (
	"context"
	"strings"

	"ContentStudio/internal/domain"
)

// BriefSuggestion is a single idea proposed for a manually added item.
type BriefSuggestion struct {
	Title  string
	Brief  string
	Format domain.Format
	Pillar string
}

// AssistBrief asks the generator for one post idea about topic. The client
// profile is used for context when clientID is set.
func (w *Workflow) AssistBrief(ctx context.Context, topic, clientID string) (BriefSuggestion, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return BriefSuggestion{}, &domain.ValidationError{Field: "topic", Reason: "must not be empty"}
	}

	var client *domain.Client
	if clientID != "" {
		c, err := w.clients.GetClient(ctx, clientID)
		if err != nil {
			return BriefSuggestion{}, persistence("load client", err)
		}
		client = &c
	}

	raw, err := w.generator.GenerateJSON(ctx, briefAssistPrompt(topic, client), w.preferredModel)
	if err != nil {
		return BriefSuggestion{}, &domain.GenerationError{Op: "brief", Err: err}
	}
	idea, err := decodeIdea(raw)
	if err != nil {
		return BriefSuggestion{}, &domain.GenerationError{Op: "brief", Err: err}
	}

	content := idea.content()
	pillar := content.Pillar
	if pillar == "" {
		pillar = domain.DefaultPillar
	}
	return BriefSuggestion{
		Title:  content.Title,
		Brief:  content.Brief,
		Format: content.Format,
		Pillar: pillar,
	}, nil
}
